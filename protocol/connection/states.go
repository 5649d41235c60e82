package connection

import (
	"encoding/json"

	"github.com/findy-network/findy-didexchange/agent/aries"
	"github.com/findy-network/findy-didexchange/agent/pairwise"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/findy-network/findy-didexchange/std/decorator"
	"github.com/findy-network/findy-didexchange/std/did"
	"github.com/findy-network/findy-didexchange/std/didexchange"
	"github.com/findy-network/findy-didexchange/std/didexchange/invitation"
	"github.com/findy-network/findy-didexchange/std/discovery"
	"github.com/findy-network/findy-didexchange/std/outofband"
)

// Actor is our role in the connection protocol.
type Actor int

const (
	Inviter Actor = 1 + iota
	Invitee
)

func (a Actor) String() string {
	switch a {
	case Inviter:
		return "Inviter"
	case Invitee:
		return "Invitee"
	}
	return "Unknown"
}

func parseActor(s string) (Actor, error) {
	switch s {
	case "Inviter":
		return Inviter, nil
	case "Invitee":
		return Invitee, nil
	}
	return 0, core.Errorf(core.KindInvalidJSON, "unknown actor %q", s)
}

// StateCode is the numeric state reported to the callers. Requested and
// Responded share the code because an actor is only in one of them.
type StateCode int

const (
	StateFailed      StateCode = 0
	StateInitialized StateCode = 1
	StateInvited     StateCode = 2
	StateRequested   StateCode = 3
	StateResponded             = StateRequested
	StateCompleted   StateCode = 4
)

// State is one of the states of the connection. Every transition builds a
// new value, the old one is never changed.
type State interface {
	Code() StateCode
	Name() string
}

// Initialized is the state after creation. An out-of-band inviter keeps the
// invitation parameters here until Connect.
type Initialized struct {
	OutOfBand *OutOfBandParams `json:"out_of_band,omitempty"`
}

// OutOfBandParams are what the inviter gives for its out-of-band invitation.
type OutOfBandParams struct {
	GoalCode      string          `json:"goal_code,omitempty"`
	Goal          string          `json:"goal,omitempty"`
	Handshake     bool            `json:"handshake"`
	RequestAttach json.RawMessage `json:"request_attach,omitempty"`
}

type Invited struct {
	Invitation Invitations `json:"invitation"`
}

// Requested is the invitee waiting for the response to its request.
type Requested struct {
	Invitation Invitations          `json:"invitation"`
	Request    *didexchange.Request `json:"request"`
	DIDDoc     *did.Doc             `json:"did_doc"`
}

// Responded is the inviter which has answered the request. PrevAgentInfo is
// the agent the invitation was made with. Messages can still arrive there
// until the invitee starts to use the DID document of the response.
type Responded struct {
	Invitation    Invitations           `json:"invitation"`
	Request       *didexchange.Request  `json:"request"`
	Response      *didexchange.Response `json:"response"`
	DIDDoc        *did.Doc              `json:"did_doc"`
	PrevAgentInfo pairwise.AgentInfo    `json:"prev_agent_info"`
}

// Completed is the working connection. DIDDoc is nil for an inviter whose
// out-of-band invitation didn't ask for a handshake. PrevAgentInfo is the
// invitation's agent of the inviter, it's kept to be deleted with the
// connection.
type Completed struct {
	Invitation    Invitations                    `json:"invitation"`
	DIDDoc        *did.Doc                       `json:"did_doc"`
	TheirLabel    string                         `json:"their_label,omitempty"`
	Protocols     []discovery.ProtocolDescriptor `json:"protocols,omitempty"`
	Thread        *decorator.Thread              `json:"thread,omitempty"`
	PrevAgentInfo pairwise.AgentInfo             `json:"prev_agent_info"`
}

type Failed struct {
	Invitation Invitations                `json:"invitation"`
	Problem    *didexchange.ProblemReport `json:"problem_report,omitempty"`
}

func (Initialized) Code() StateCode { return StateInitialized }
func (Invited) Code() StateCode     { return StateInvited }
func (Requested) Code() StateCode   { return StateRequested }
func (Responded) Code() StateCode   { return StateResponded }
func (Completed) Code() StateCode   { return StateCompleted }
func (Failed) Code() StateCode      { return StateFailed }

func (Initialized) Name() string { return "Initialized" }
func (Invited) Name() string     { return "Invited" }
func (Requested) Name() string   { return "Requested" }
func (Responded) Name() string   { return "Responded" }
func (Completed) Name() string   { return "Completed" }
func (Failed) Name() string      { return "Failed" }

// newState returns an empty state of the name for decoding.
func newState(name string) (State, error) {
	switch name {
	case "Initialized":
		return &Initialized{}, nil
	case "Invited":
		return &Invited{}, nil
	case "Requested":
		return &Requested{}, nil
	case "Responded":
		return &Responded{}, nil
	case "Completed":
		return &Completed{}, nil
	case "Failed":
		return &Failed{}, nil
	}
	return nil, core.Errorf(core.KindInvalidJSON, "unknown state %q", name)
}

// Invitations holds the invitation of the connection, either the
// connections/1.0 one or an out-of-band invitation.
type Invitations struct {
	Connection *invitation.Invitation `json:"connection,omitempty"`
	OutOfBand  *outofband.Invitation  `json:"out_of_band,omitempty"`
}

func (i Invitations) IsZero() bool {
	return i.Connection == nil && i.OutOfBand == nil
}

// ID returns the @id of the invitation.
func (i Invitations) ID() string {
	switch {
	case i.Connection != nil:
		return i.Connection.ID
	case i.OutOfBand != nil:
		return i.OutOfBand.ID
	}
	return ""
}

// DIDDoc returns the DID document of the inviter.
func (i Invitations) DIDDoc() (*did.Doc, error) {
	switch {
	case i.Connection != nil:
		return i.Connection.ToDIDDoc(), nil
	case i.OutOfBand != nil:
		return i.OutOfBand.DIDDoc()
	}
	return nil, core.Errorf(core.KindInvalidDIDDoc, "no invitation")
}

// RecipientKey returns the key the inviter signs the response with.
func (i Invitations) RecipientKey() string {
	switch {
	case i.Connection != nil && len(i.Connection.RecipientKeys) > 0:
		return i.Connection.RecipientKeys[0]
	case i.OutOfBand != nil:
		return i.OutOfBand.RecipientKey()
	}
	return ""
}

func (i Invitations) Label() string {
	switch {
	case i.Connection != nil:
		return i.Connection.Label
	case i.OutOfBand != nil:
		return i.OutOfBand.Label
	}
	return ""
}

func (i Invitations) PublicDID() string {
	switch {
	case i.Connection != nil:
		return i.Connection.PublicDID
	case i.OutOfBand != nil:
		return i.OutOfBand.PublicDID
	}
	return ""
}

// ParentThreadID is the pthid of the request: the out-of-band invitation's
// @id. A connection invitation doesn't start a parent thread.
func (i Invitations) ParentThreadID() string {
	if i.OutOfBand != nil {
		return i.OutOfBand.ID
	}
	return ""
}

// Message returns the invitation as the message to be given to the invitee.
func (i Invitations) Message() (*aries.Message, error) {
	switch {
	case i.Connection != nil:
		return aries.New(i.Connection)
	case i.OutOfBand != nil:
		return aries.New(i.OutOfBand)
	}
	return nil, core.Errorf(core.KindNotReady, "no invitation yet")
}

// invitationOf returns the invitation of the state if it has one.
func invitationOf(s State) Invitations {
	switch st := s.(type) {
	case *Invited:
		return st.Invitation
	case *Requested:
		return st.Invitation
	case *Responded:
		return st.Invitation
	case *Completed:
		return st.Invitation
	case *Failed:
		return st.Invitation
	}
	return Invitations{}
}
