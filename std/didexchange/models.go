// Package didexchange is the message model of the connection protocol:
// request, response with its connection signature, and the problem report.
package didexchange

import (
	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/findy-network/findy-didexchange/std/decorator"
	"github.com/findy-network/findy-didexchange/std/did"
	"github.com/google/uuid"
)

// Request defines a2a DID exchange request
// https://github.com/hyperledger/aries-rfcs/tree/master/features/0160-connection-protocol#1-connection-request
type Request struct {
	Type       pltype.MessageType `json:"@type"`
	ID         string             `json:"@id"`
	Label      string             `json:"label"`
	Connection *Connection        `json:"connection"`
	Thread     *decorator.Thread  `json:"~thread,omitempty"`
}

// Response defines a2a DID exchange response. Only the signed connection
// travels on the wire.
// https://github.com/hyperledger/aries-rfcs/tree/master/features/0160-connection-protocol#2-connection-response
type Response struct {
	Type                pltype.MessageType   `json:"@type"`
	ID                  string               `json:"@id"`
	ConnectionSignature *ConnectionSignature `json:"connection~sig"`
	Thread              *decorator.Thread    `json:"~thread"`
	PleaseAck           *decorator.PleaseAck `json:"~please_ack,omitempty"`

	Connection *Connection `json:"-"` // Actual data, to be signed or verified
}

// ConnectionSignature connection signature
type ConnectionSignature struct {
	Type       pltype.MessageType `json:"@type"`
	Signature  string             `json:"signature"`
	SignedData string             `json:"sig_data"`
	SignVerKey string             `json:"signer"`
}

// Connection is a connection definition
type Connection struct {
	DID    string   `json:"DID"`
	DIDDoc *did.Doc `json:"DIDDoc"`
}

// NewConnection returns the connection data of the DID. The DID document's
// id is the DID.
func NewConnection(DID, endpoint string, recipientKeys, routingKeys []string) *Connection {
	return &Connection{
		DID:    DID,
		DIDDoc: did.NewDocWith(DID, endpoint, recipientKeys, routingKeys),
	}
}

// NewRequest returns a request with a fresh @id. The thread of the request
// starts from it.
func NewRequest(label string, conn *Connection) *Request {
	id := uuid.New().String()
	return &Request{
		Type:       pltype.New(pltype.Connections, pltype.HandlerRequest),
		ID:         id,
		Label:      label,
		Connection: conn,
		Thread:     &decorator.Thread{ID: id},
	}
}

// ThreadID returns thid of the request which is its @id when not set.
func (r *Request) ThreadID() string {
	return r.Thread.ThreadID(r.ID)
}

// NewResponse returns an unsigned response in the request's thread.
func NewResponse(conn *Connection, thread *decorator.Thread) *Response {
	return &Response{
		Type:       pltype.New(pltype.Connections, pltype.HandlerResponse),
		ID:         uuid.New().String(),
		Thread:     thread.Clone(),
		Connection: conn,
	}
}

// ThreadID returns thid of the response.
func (r *Response) ThreadID() string {
	return r.Thread.ThreadID(r.ID)
}

// ProblemCode of the connection protocol's problem report.
type ProblemCode string

const (
	RequestNotAccepted      ProblemCode = "request_not_accepted"
	RequestProcessingError  ProblemCode = "request_processing_error"
	ResponseNotAccepted     ProblemCode = "response_not_accepted"
	ResponseProcessingError ProblemCode = "response_processing_error"
)

// ProblemReport is the connections/1.0/problem_report message.
type ProblemReport struct {
	Type        pltype.MessageType `json:"@type"`
	ID          string             `json:"@id"`
	ProblemCode ProblemCode        `json:"problem-code,omitempty"`
	Explain     string             `json:"explain,omitempty"`
	L10n        *decorator.L10n    `json:"~l10n,omitempty"`
	Thread      *decorator.Thread  `json:"~thread"`
}

// NewProblemReport returns a problem report in the thread.
func NewProblemReport(code ProblemCode, explain string, thread *decorator.Thread) *ProblemReport {
	return &ProblemReport{
		Type:        pltype.New(pltype.Connections, pltype.HandlerConnProblem),
		ID:          uuid.New().String(),
		ProblemCode: code,
		Explain:     explain,
		Thread:      thread.Clone(),
	}
}
