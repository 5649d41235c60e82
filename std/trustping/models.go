// Package trustping is the trust_ping/1.0 message model.
package trustping

import (
	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/findy-network/findy-didexchange/std/decorator"
	"github.com/google/uuid"
)

// Ping asks the other end to prove that the connection works. The thread
// of the ping starts from it.
type Ping struct {
	Type              pltype.MessageType `json:"@type"`
	ID                string             `json:"@id"`
	ResponseRequested bool               `json:"response_requested"`
	Comment           string             `json:"comment,omitempty"`
	Timing            *decorator.Timing  `json:"~timing,omitempty"`
	Thread            *decorator.Thread  `json:"~thread,omitempty"`
}

// PingResponse answers a ping in its thread.
type PingResponse struct {
	Type    pltype.MessageType `json:"@type"`
	ID      string             `json:"@id"`
	Comment string             `json:"comment,omitempty"`
	Timing  *decorator.Timing  `json:"~timing,omitempty"`
	Thread  *decorator.Thread  `json:"~thread"`
}

// NewPing returns a ping which requests a response.
func NewPing(comment string) *Ping {
	id := uuid.New().String()
	return &Ping{
		Type:              pltype.New(pltype.TrustPing, pltype.HandlerPing),
		ID:                id,
		ResponseRequested: true,
		Comment:           comment,
		Thread:            &decorator.Thread{ID: id},
	}
}

// ThreadID returns thid of the ping.
func (p *Ping) ThreadID() string {
	return p.Thread.ThreadID(p.ID)
}

// NewPingResponse returns the response to the ping.
func NewPingResponse(ping *Ping) *PingResponse {
	return &PingResponse{
		Type:   pltype.New(pltype.TrustPing, pltype.HandlerPingResponse),
		ID:     uuid.New().String(),
		Thread: &decorator.Thread{ID: ping.ThreadID()},
	}
}

// ThreadID returns thid of the response.
func (p *PingResponse) ThreadID() string {
	return p.Thread.ThreadID(p.ID)
}
