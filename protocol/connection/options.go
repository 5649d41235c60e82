package connection

import (
	"encoding/json"
	"strings"

	"github.com/findy-network/findy-didexchange/agent/pairwise"
	"github.com/findy-network/findy-didexchange/core"
)

// ConnectionType tells how the invitation is delivered to the invitee.
type ConnectionType string

const (
	TypeQR  ConnectionType = "QR"
	TypeSMS ConnectionType = "SMS"
)

// Options of Connect. Zero value is the default.
type Options struct {
	ConnectionType ConnectionType `json:"connection_type,omitempty"`
	Phone          string         `json:"phone,omitempty"`
	UsePublicDID   bool           `json:"use_public_did,omitempty"`

	// UpdateAgentInfo rotates the inviter's pairwise agent when the request
	// arrives. Nil means true.
	UpdateAgentInfo *bool `json:"update_agent_info,omitempty"`

	// PairwiseAgentInfo is used instead of creating a new pairwise agent.
	PairwiseAgentInfo *pairwise.AgentInfo `json:"pairwise_agent_info,omitempty"`
}

// ParseOptions reads the options JSON. Empty string gives the defaults.
func ParseOptions(data string) (*Options, error) {
	opts := new(Options)
	if strings.TrimSpace(data) == "" {
		return opts, nil
	}
	if err := json.Unmarshal([]byte(data), opts); err != nil {
		return nil, core.Wrap(core.KindInvalidOption, err, "connection options")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *Options) Validate() error {
	if o == nil {
		return nil
	}
	switch o.ConnectionType {
	case "", TypeQR:
	case TypeSMS:
		if o.Phone == "" {
			return core.Errorf(core.KindInvalidOption, "SMS connection needs a phone number")
		}
	default:
		return core.Errorf(core.KindInvalidOption, "connection type %q", o.ConnectionType)
	}
	if ai := o.PairwiseAgentInfo; ai != nil && (ai.PwVK == "" || ai.AgentDID == "") {
		return core.Errorf(core.KindInvalidOption, "pairwise agent info is incomplete")
	}
	return nil
}

func (o *Options) updateAgentInfo() bool {
	return o == nil || o.UpdateAgentInfo == nil || *o.UpdateAgentInfo
}

func (o *Options) usePublicDID() bool {
	return o != nil && o.UsePublicDID
}
