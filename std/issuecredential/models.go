/*
Taken from aries-framework-go, and heavily modified. Only the message shapes
are here, the credential content is carried in attachments as is.

Most important modification were 1) renaming structures: removing Credential
word which is already in the package name, and 2) adding thread decorators to
all, and 3) IDs.
*/

// Package issuecredential is package for Aries protocol messages for same name.
package issuecredential

import (
	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/findy-network/findy-didexchange/std/decorator"
	"github.com/google/uuid"
)

// Propose is an optional message sent by the potential Holder to the Issuer
// to initiate the protocol or in response to a offer-credential message when the Holder
// wants some adjustments made to the credential data offered by Issuer.
type Propose struct {
	Type    pltype.MessageType `json:"@type"`
	ID      string             `json:"@id"`
	Comment string             `json:"comment,omitempty"`
	// CredentialProposal is an optional JSON-LD object that represents
	// the credential data that the Prover wants to receive.
	CredentialProposal *PreviewCredential `json:"credential_proposal,omitempty"`
	SchemaID           string             `json:"schema_id,omitempty"`
	CredDefID          string             `json:"cred_def_id,omitempty"`

	Thread *decorator.Thread `json:"~thread,omitempty"`
}

// Offer is a message sent by the Issuer to the potential Holder,
// describing the credential they intend to offer.
type Offer struct {
	Type    pltype.MessageType `json:"@type"`
	ID      string             `json:"@id"`
	Comment string             `json:"comment,omitempty"`
	// CredentialPreview is a JSON-LD object that represents the credential data that Issuer is willing to issue.
	CredentialPreview *PreviewCredential `json:"credential_preview,omitempty"`
	// OffersAttach is a slice of attachments that further define the credential being offered.
	OffersAttach []decorator.Attachment `json:"offers~attach"`

	Thread *decorator.Thread `json:"~thread,omitempty"`
}

// Request is a message sent by the potential Holder to the Issuer,
// to request the issuance of a credential.
type Request struct {
	Type    pltype.MessageType `json:"@type"`
	ID      string             `json:"@id"`
	Comment string             `json:"comment,omitempty"`
	// RequestsAttach is a slice of attachments defining the requested formats for the credential
	RequestsAttach []decorator.Attachment `json:"requests~attach"`

	Thread *decorator.Thread `json:"~thread,omitempty"`
}

// Issue contains as attached payload the credentials being issued and is
// sent in response to a valid Request Credential message.
type Issue struct {
	Type    pltype.MessageType `json:"@type"`
	ID      string             `json:"@id"`
	Comment string             `json:"comment,omitempty"`
	// CredentialsAttach is a slice of attachments containing the issued credentials.
	CredentialsAttach []decorator.Attachment `json:"credentials~attach"`
	PleaseAck         *decorator.PleaseAck   `json:"~please_ack,omitempty"`

	Thread *decorator.Thread `json:"~thread,omitempty"`
}

// PreviewCredential is used to construct a preview of the data for the credential that is to be issued.
type PreviewCredential struct {
	Type       pltype.MessageType `json:"@type"`
	Attributes []Attribute        `json:"attributes"`
}

// Attribute describes an attribute for a Preview Credential
type Attribute struct {
	Name     string `json:"name"`
	MimeType string `json:"mime-type,omitempty"`
	Value    string `json:"value"`
}

// NewOffer returns an offer with the credential offer attached.
func NewOffer(comment string, preview []Attribute, offer *decorator.Attachment) *Offer {
	id := uuid.New().String()
	o := &Offer{
		Type:         pltype.New(pltype.CredentialIssuance, pltype.HandlerIssueCredentialOffer),
		ID:           id,
		Comment:      comment,
		OffersAttach: []decorator.Attachment{},
		Thread:       &decorator.Thread{ID: id},
	}
	if preview != nil {
		o.CredentialPreview = &PreviewCredential{
			Type:       pltype.New(pltype.CredentialIssuance, "credential-preview"),
			Attributes: preview,
		}
	}
	if offer != nil {
		o.OffersAttach = append(o.OffersAttach, *offer)
	}
	return o
}

// ThreadID returns thid of the offer.
func (o *Offer) ThreadID() string {
	return o.Thread.ThreadID(o.ID)
}
