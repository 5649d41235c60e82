// Package outofband is the data model of the out-of-band protocol: the
// invitation in its 1.0 and 1.1 formats and the handshake reuse messages.
package outofband

import (
	"encoding/json"
	"strings"

	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/findy-network/findy-didexchange/std/decorator"
	"github.com/findy-network/findy-didexchange/std/did"
	"github.com/google/uuid"
)

// Invitation is the out-of-band invitation. Version 1.0 carries the services
// in the service field and 1.1 in the services field, otherwise the formats
// are the same.
type Invitation struct {
	Type               pltype.MessageType     `json:"@type"`
	ID                 string                 `json:"@id"`
	Label              string                 `json:"label,omitempty"`
	GoalCode           string                 `json:"goal_code,omitempty"`
	Goal               string                 `json:"goal,omitempty"`
	HandshakeProtocols []string               `json:"handshake_protocols,omitempty"`
	RequestAttach      []decorator.Attachment `json:"request~attach,omitempty"`
	Services           []Service              `json:"-"`
	ProfileURL         string                 `json:"profileUrl,omitempty"`
	PublicDID          string                 `json:"public_did,omitempty"`
}

// Service is an inline DID document service block or a DID which refers to
// one.
type Service struct {
	did.Service
	DID string
}

func (s Service) MarshalJSON() ([]byte, error) {
	if s.DID != "" {
		return json.Marshal(s.DID)
	}
	return json.Marshal(s.Service)
}

func (s *Service) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &s.DID)
	}
	if err := json.Unmarshal(data, &s.Service); err != nil {
		return err
	}
	if s.RecipientKeys == nil {
		s.RecipientKeys = []string{}
	}
	if s.RoutingKeys == nil {
		s.RoutingKeys = []string{}
	}
	return nil
}

// IsInline tells if the service block is included instead of the DID.
func (s Service) IsInline() bool {
	return s.DID == ""
}

// NewInvitation returns a 1.1 version invitation with a fresh @id.
func NewInvitation(label string) *Invitation {
	return &Invitation{
		Type:  pltype.NewEndpoint(pltype.Outofband, pltype.HandlerInvitation).WithVersion(pltype.V11),
		ID:    uuid.New().String(),
		Label: label,
	}
}

// NewInlineService returns the out-of-band service block of the endpoint and
// keys.
func NewInlineService(endpoint string, recipientKeys, routingKeys []string) Service {
	s := did.NewService()
	s.ID = "#inline"
	s.Type = did.OutOfBandServiceType
	s.ServiceEndpoint = endpoint
	s.RecipientKeys = append(s.RecipientKeys, recipientKeys...)
	s.RoutingKeys = append(s.RoutingKeys, routingKeys...)
	return Service{Service: s}
}

type invitationV10 struct {
	jsonInvitation
	Service []Service `json:"service"`
}

type invitationV11 struct {
	jsonInvitation
	Services []Service `json:"services"`
}

type jsonInvitation Invitation

func (inv Invitation) MarshalJSON() ([]byte, error) {
	if inv.Type.Version == pltype.V10 {
		return json.Marshal(invitationV10{jsonInvitation(inv), inv.Services})
	}
	return json.Marshal(invitationV11{jsonInvitation(inv), inv.Services})
}

func (inv *Invitation) UnmarshalJSON(data []byte) error {
	var aux struct {
		jsonInvitation
		Service  []Service `json:"service"`
		Services []Service `json:"services"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*inv = Invitation(aux.jsonInvitation)
	inv.Services = aux.Services
	if len(inv.Services) == 0 {
		inv.Services = aux.Service
	}
	return nil
}

// WithoutHandshake tells if the invitation is one-time: no connection
// protocol is run and the connection is completed right away.
func (inv *Invitation) WithoutHandshake() bool {
	return len(inv.HandshakeProtocols) == 0
}

// SupportsHandshake tells if one of the handshake protocols is ours.
func (inv *Invitation) SupportsHandshake() bool {
	for _, p := range inv.HandshakeProtocols {
		if strings.HasSuffix(p, pltype.SupportedHandshakeProtocol) {
			return true
		}
	}
	return false
}

// RecipientKey returns the first recipient key of the first service.
func (inv *Invitation) RecipientKey() string {
	if len(inv.Services) == 0 || len(inv.Services[0].RecipientKeys) == 0 {
		return ""
	}
	return inv.Services[0].RecipientKeys[0]
}

// ServiceEndpoint returns the endpoint of the first service.
func (inv *Invitation) ServiceEndpoint() string {
	if len(inv.Services) == 0 {
		return ""
	}
	return inv.Services[0].ServiceEndpoint
}

// DIDDoc returns the inviter's DID document built from the first service.
func (inv *Invitation) DIDDoc() (*did.Doc, error) {
	if len(inv.Services) == 0 {
		return nil, core.Errorf(core.KindInvalidDIDDoc, "out-of-band invitation has no services")
	}
	s := inv.Services[0]
	if !s.IsInline() {
		return nil, core.Errorf(core.KindInvalidDIDDoc,
			"service DID %q cannot be resolved without a ledger", s.DID)
	}
	return did.NewDocFromService(s.Service), nil
}

// NormalizeServiceKeys converts did:key formatted service keys to base58
// verkeys.
func (inv *Invitation) NormalizeServiceKeys() error {
	for i, s := range inv.Services {
		if !s.IsInline() {
			continue
		}
		doc := &did.Doc{Service: []did.Service{s.Service}}
		doc.NormalizeServiceKeys()
		for _, key := range append(doc.Service[0].RecipientKeys, doc.Service[0].RoutingKeys...) {
			if did.IsDIDKey(key) {
				return core.Errorf(core.KindInvalidVerkey, "cannot convert service key %q", key)
			}
		}
		inv.Services[i].Service = doc.Service[0]
	}
	return nil
}

// Validate checks the invitation before it's accepted.
func (inv *Invitation) Validate() error {
	if !inv.Type.Is(pltype.Outofband, pltype.HandlerInvitation) {
		return core.Errorf(core.KindInvalidJSON, "not an out-of-band invitation: %s", inv.Type)
	}
	if inv.ID == "" {
		return core.Errorf(core.KindInvalidJSON, "out-of-band invitation: @id is missing")
	}
	if len(inv.HandshakeProtocols) == 0 && len(inv.RequestAttach) == 0 {
		return core.Errorf(core.KindInvalidJSON,
			"out-of-band invitation: one of handshake_protocols and request~attach is needed")
	}
	if !inv.WithoutHandshake() && !inv.SupportsHandshake() {
		return core.Errorf(core.KindInvalidOption,
			"out-of-band invitation: unsupported handshake protocols %v", inv.HandshakeProtocols)
	}
	if len(inv.Services) == 0 {
		return core.Errorf(core.KindInvalidJSON, "out-of-band invitation: service is missing")
	}
	c := *inv
	c.Services = append([]Service{}, inv.Services...)
	if err := c.NormalizeServiceKeys(); err != nil {
		return err
	}
	doc, err := c.DIDDoc()
	if err != nil {
		return err
	}
	return doc.Validate()
}

// HandshakeReuse is sent by the invitee when it already has a connection to
// the inviter of an out-of-band invitation.
type HandshakeReuse struct {
	Type   pltype.MessageType `json:"@type"`
	ID     string             `json:"@id"`
	Thread *decorator.Thread  `json:"~thread"`
}

// NewHandshakeReuse returns the reuse message for the invitation. Its thid
// is the message's own @id and pthid the invitation's @id.
func NewHandshakeReuse(inv *Invitation) *HandshakeReuse {
	id := uuid.New().String()
	return &HandshakeReuse{
		Type:   pltype.NewEndpoint(pltype.Outofband, pltype.HandlerHandshakeReuse).WithVersion(pltype.V11),
		ID:     id,
		Thread: &decorator.Thread{ID: id, PID: inv.ID},
	}
}

// HandshakeReuseAccepted is the inviter's reply to HandshakeReuse.
type HandshakeReuseAccepted struct {
	Type   pltype.MessageType `json:"@type"`
	ID     string             `json:"@id"`
	Thread *decorator.Thread  `json:"~thread"`
}

// NewHandshakeReuseAccepted returns the reply in the thread of the reuse
// message.
func NewHandshakeReuseAccepted(reuse *HandshakeReuse) *HandshakeReuseAccepted {
	thread := reuse.Thread.Clone()
	if thread == nil {
		thread = &decorator.Thread{}
	}
	thread.ID = reuse.Thread.ThreadID(reuse.ID)
	return &HandshakeReuseAccepted{
		Type:   pltype.NewEndpoint(pltype.Outofband, pltype.HandlerHandshakeReuseAccepted).WithVersion(pltype.V11),
		ID:     uuid.New().String(),
		Thread: thread,
	}
}
