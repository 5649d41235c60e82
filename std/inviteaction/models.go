// Package inviteaction is the invite-action/0.9 protocol model.
package inviteaction

import (
	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/findy-network/findy-didexchange/std/decorator"
	"github.com/google/uuid"
)

// Invite invites the other end to do the action of the goal code.
type Invite struct {
	Type      pltype.MessageType   `json:"@type"`
	ID        string               `json:"@id"`
	GoalCode  string               `json:"goal_code"`
	PleaseAck *decorator.PleaseAck `json:"~please_ack,omitempty"`
}

// Data is the caller's input for the invite.
type Data struct {
	GoalCode string   `json:"goal_code"`
	AckOn    []string `json:"ack_on,omitempty"`
}

// NewInvite returns the invite. The ack is asked when AckOn is set.
func NewInvite(data Data) *Invite {
	inv := &Invite{
		Type:     pltype.NewEndpoint(pltype.InviteAction, pltype.HandlerInvite),
		ID:       uuid.New().String(),
		GoalCode: data.GoalCode,
	}
	if data.AckOn != nil {
		inv.PleaseAck = &decorator.PleaseAck{On: data.AckOn}
	}
	return inv
}
