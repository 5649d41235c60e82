// Package common has the messages shared by several protocol families: the
// routing forward, the notification ack and the report-problem message.
package common

import (
	"encoding/json"

	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/google/uuid"
)

// Forward route forward message. Msg is the inner envelope as is, it's
// never parsed on the way.
// nolint:lll // url in the next line is long
// https://github.com/hyperledger/aries-rfcs/blob/main/concepts/0094-cross-domain-messaging/README.md#corerouting10forward
type Forward struct {
	Type pltype.MessageType `json:"@type"`
	ID   string             `json:"@id,omitempty"`
	To   string             `json:"to"`
	Msg  json.RawMessage    `json:"msg"`
}

// NewForward wraps the envelope to the Forward addressed to the key.
func NewForward(to string, msg []byte) *Forward {
	return &Forward{
		Type: pltype.New(pltype.Routing, pltype.HandlerForward),
		ID:   uuid.New().String(),
		To:   to,
		Msg:  json.RawMessage(msg),
	}
}
