// Package invitation is for the connection invitation data model. It
// includes the JSON struct and conversions to and from the DID document.
package invitation

import (
	"encoding/json"

	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/findy-network/findy-didexchange/std/did"
	"github.com/google/uuid"
)

// Invitation defines the connection invitation message
// https://github.com/hyperledger/aries-rfcs/tree/master/features/0160-connection-protocol#0-invitation-to-connect
type Invitation struct {
	Type            pltype.MessageType `json:"@type"`
	ID              string             `json:"@id"`
	Label           string             `json:"label"`
	RecipientKeys   []string           `json:"recipientKeys"`
	RoutingKeys     []string           `json:"routingKeys"`
	ServiceEndpoint string             `json:"serviceEndpoint"`
	ProfileURL      string             `json:"profileUrl,omitempty"`
	PublicDID       string             `json:"publicDid,omitempty"`
}

// New returns an empty invitation with a fresh @id.
func New() *Invitation {
	return &Invitation{
		Type:          pltype.New(pltype.Connections, pltype.HandlerInvitation),
		ID:            uuid.New().String(),
		RecipientKeys: []string{},
		RoutingKeys:   []string{},
	}
}

// FromDIDDoc builds the invitation from the resolved keys and the endpoint
// of the DID document. The label is not a part of the document.
func FromDIDDoc(doc *did.Doc) *Invitation {
	recipientKeys, routingKeys := doc.ResolveKeys()
	inv := New()
	inv.ID = doc.ID
	inv.ServiceEndpoint = doc.ServiceEndpoint()
	inv.RecipientKeys = recipientKeys
	inv.RoutingKeys = routingKeys
	return inv
}

// ToDIDDoc returns the DID document of the inviter. The document's id is
// the invitation's @id.
func (inv *Invitation) ToDIDDoc() *did.Doc {
	return did.NewDocWith(inv.ID, inv.ServiceEndpoint, inv.RecipientKeys, inv.RoutingKeys)
}

// Validate checks the inviter's DID document built from the invitation.
func (inv *Invitation) Validate() error {
	return inv.ToDIDDoc().Validate()
}

// UnmarshalJSON keeps the key lists non-nil. The public DID is read also
// from the public_did field older agents use.
func (inv *Invitation) UnmarshalJSON(data []byte) error {
	type plain Invitation
	var aux struct {
		plain
		LegacyPublicDID string `json:"public_did,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*inv = Invitation(aux.plain)
	if inv.PublicDID == "" {
		inv.PublicDID = aux.LegacyPublicDID
	}
	if inv.RecipientKeys == nil {
		inv.RecipientKeys = []string{}
	}
	if inv.RoutingKeys == nil {
		inv.RoutingKeys = []string{}
	}
	return nil
}
