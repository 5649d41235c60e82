package connection

import (
	"github.com/findy-network/findy-didexchange/agent/pairwise"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/findy-network/findy-didexchange/std/decorator"
	"github.com/findy-network/findy-didexchange/std/did"
	"github.com/findy-network/findy-didexchange/std/discovery"
)

// SideInfo is one end of the connection as it's reported to the user.
type SideInfo struct {
	DID             string                         `json:"did"`
	RecipientKeys   []string                       `json:"recipientKeys"`
	RoutingKeys     []string                       `json:"routingKeys"`
	ServiceEndpoint string                         `json:"serviceEndpoint"`
	Protocols       []discovery.ProtocolDescriptor `json:"protocols,omitempty"`
}

// PairwiseInfo is my side and, when it's known, their side and the
// invitation.
type PairwiseInfo struct {
	My         SideInfo     `json:"my"`
	Their      *SideInfo    `json:"their,omitempty"`
	Invitation *Invitations `json:"invitation,omitempty"`
}

// CompletedConnection is the view of a completed connection. Thread is the
// thread of the connection protocol, its pthid is the out-of-band
// invitation's @id. Service is set only when the connection was completed
// without a handshake, and it's where the other end can reply to.
type CompletedConnection struct {
	MyDID       string                         `json:"my_did"`
	MyVK        string                         `json:"my_vk"`
	TheirDID    string                         `json:"their_did"`
	TheirVK     string                         `json:"their_vk"`
	TheirLabel  string                         `json:"their_label,omitempty"`
	TheirDIDDoc *did.Doc                       `json:"their_did_doc"`
	AgentInfo   pairwise.AgentInfo             `json:"agent_info"`
	Protocols   []discovery.ProtocolDescriptor `json:"protocols,omitempty"`
	Thread      *decorator.Thread              `json:"thread,omitempty"`
	Service     *did.Service                   `json:"service,omitempty"`
}

// WithoutHandshake tells if the connection is an out-of-band invitation
// which didn't ask for a handshake.
func (cc *CompletedConnection) WithoutHandshake() bool {
	return cc.Service != nil
}

func sideOf(doc *did.Doc) *SideInfo {
	rk, routing := doc.ResolveKeys()
	return &SideInfo{
		DID:             doc.ID,
		RecipientKeys:   rk,
		RoutingKeys:     routing,
		ServiceEndpoint: doc.ServiceEndpoint(),
	}
}

// GetConnectionInfo returns both ends of the connection. Their side is
// missing until their DID document is known.
func (c *Connection) GetConnectionInfo() (*PairwiseInfo, error) {
	ai := c.sm.AgentInfo
	if ai.IsZero() {
		return nil, core.Errorf(core.KindNotReady, "no pairwise agent")
	}
	info := &PairwiseInfo{My: *sideOf(ai.DIDDoc(c.env))}
	info.My.Protocols = supported.Protocols("*")
	if doc := c.sm.theirDIDDoc(); doc != nil {
		info.Their = sideOf(doc)
		info.Their.Protocols = c.Protocols()
	}
	if inv := invitationOf(c.sm.State); !inv.IsZero() {
		info.Invitation = &inv
	}
	return info, nil
}

// GetCompletedConnection returns the view of the completed connection.
func (c *Connection) GetCompletedConnection() (*CompletedConnection, error) {
	st, ok := c.sm.State.(*Completed)
	if !ok {
		return nil, core.Errorf(core.KindConnectionNotCompleted,
			"connection %s is %s", c.sm.SourceID, c.sm.State.Name())
	}
	cc := &CompletedConnection{
		MyDID:       c.sm.AgentInfo.PwDID,
		MyVK:        c.sm.AgentInfo.PwVK,
		TheirLabel:  st.TheirLabel,
		TheirDIDDoc: st.DIDDoc,
		AgentInfo:   c.sm.AgentInfo,
		Protocols:   st.Protocols,
		Thread:      st.Thread.Clone(),
	}
	if st.DIDDoc != nil {
		cc.TheirDID = st.DIDDoc.ID
		cc.TheirVK, _ = c.RemoteVK()
	}
	if oob := st.Invitation.OutOfBand; oob != nil && oob.WithoutHandshake() && !c.sm.AgentInfo.IsZero() {
		svc := did.NewService()
		svc.ServiceEndpoint = c.sm.AgentInfo.AgencyEndpoint(c.env)
		svc.RecipientKeys = c.sm.AgentInfo.RecipientKeys()
		svc.RoutingKeys = c.sm.AgentInfo.RoutingKeys(c.env)
		cc.Service = &svc
	}
	return cc, nil
}
