package common

import (
	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/findy-network/findy-didexchange/std/decorator"
	"github.com/google/uuid"
)

// AckStatus is the status of the ack.
type AckStatus string

const (
	AckOK      AckStatus = "OK"
	AckFail    AckStatus = "FAIL"
	AckPending AckStatus = "PENDING"
)

// Ack acknowledgement struct. The same message shape is used by several
// families, that's why the family of the type can be changed.
type Ack struct {
	Type   pltype.MessageType `json:"@type"`
	ID     string             `json:"@id"`
	Status AckStatus          `json:"status"`
	Thread *decorator.Thread  `json:"~thread"`
}

// NewAck returns notification/1.0/ack for the thread with status OK.
func NewAck(thread *decorator.Thread) *Ack {
	return &Ack{
		Type:   pltype.New(pltype.Notification, pltype.HandlerAck),
		ID:     uuid.New().String(),
		Status: AckOK,
		Thread: thread.Clone(),
	}
}

// WithStatus sets the status and returns the ack.
func (a *Ack) WithStatus(s AckStatus) *Ack {
	a.Status = s
	return a
}

// WithFamily moves the ack to the family, e.g. an invite-action ack. The
// family's canonical prefix and version are used.
func (a *Ack) WithFamily(f pltype.Family) *Ack {
	prefix := a.Type.Prefix
	a.Type = pltype.New(f, pltype.HandlerAck)
	if f == pltype.InviteAction {
		prefix = pltype.PrefixEndpoint
	}
	a.Type.Prefix = prefix
	return a
}

// ThreadID returns thid of the ack's thread.
func (a *Ack) ThreadID() string {
	return a.Thread.ThreadID(a.ID)
}
