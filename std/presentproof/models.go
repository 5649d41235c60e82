// Package presentproof is the present-proof/1.0 message model. The proof
// content travels in attachments as is.
package presentproof

import (
	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/findy-network/findy-didexchange/std/decorator"
	"github.com/google/uuid"
)

// MARK: Request

type Request struct {
	Type                 pltype.MessageType     `json:"@type"`
	ID                   string                 `json:"@id"`
	Comment              string                 `json:"comment,omitempty"`
	RequestPresentations []decorator.Attachment `json:"request_presentations~attach"`
	Thread               *decorator.Thread      `json:"~thread,omitempty"`
}

// MARK: Presentation

type Presentation struct {
	Type                 pltype.MessageType     `json:"@type"`
	ID                   string                 `json:"@id"`
	Comment              string                 `json:"comment,omitempty"`
	PresentationAttaches []decorator.Attachment `json:"presentations~attach"`
	PleaseAck            *decorator.PleaseAck   `json:"~please_ack,omitempty"`
	Thread               *decorator.Thread      `json:"~thread,omitempty"`
}

// MARK: Propose

type Propose struct {
	Type                 pltype.MessageType `json:"@type"`
	ID                   string             `json:"@id"`
	Comment              string             `json:"comment,omitempty"`
	PresentationProposal *Preview           `json:"presentation_proposal,omitempty"`
	Thread               *decorator.Thread  `json:"~thread,omitempty"`
}

// MARK: Preview

type Preview struct {
	Type       pltype.MessageType `json:"@type"`
	Attributes []Attribute        `json:"attributes"`
	Predicates []Predicate        `json:"predicates"`
}

type Attribute struct {
	Name      string `json:"name"`
	CredDefID string `json:"cred_def_id,omitempty"`

	// https://github.com/hyperledger/aries-rfcs/blob/master/features/0037-present-proof/README.md#mime-type-and-value
	MimeType string `json:"mime_type,omitempty"`
	Value    string `json:"value,omitempty"`

	// https://github.com/hyperledger/aries-rfcs/blob/master/features/0037-present-proof/README.md#referent
	Referent string `json:"referent,omitempty"`
}

// Predicate is definition type of Preview struct.
//
//	https://github.com/hyperledger/aries-rfcs/blob/master/features/0037-present-proof/README.md#predicates
type Predicate struct {
	Name      string `json:"name"`
	CredDefID string `json:"cred_def_id"`
	Predicate string `json:"predicate"` // "<", "<=", ">=", ">"
	Threshold string `json:"threshold"`
}

// NewRequest returns a presentation request with the proof request
// attached.
func NewRequest(comment string, proofReq *decorator.Attachment) *Request {
	id := uuid.New().String()
	r := &Request{
		Type:                 pltype.New(pltype.PresentProof, pltype.HandlerPresentProofRequest),
		ID:                   id,
		Comment:              comment,
		RequestPresentations: []decorator.Attachment{},
		Thread:               &decorator.Thread{ID: id},
	}
	if proofReq != nil {
		r.RequestPresentations = append(r.RequestPresentations, *proofReq)
	}
	return r
}

// ThreadID returns thid of the request.
func (r *Request) ThreadID() string {
	return r.Thread.ThreadID(r.ID)
}
