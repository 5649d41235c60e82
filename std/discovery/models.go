// Package discovery is the discover-features/1.0 protocol model and the
// registry of the protocols we support.
package discovery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/findy-network/findy-didexchange/std/decorator"
	"github.com/google/uuid"
)

// Query asks which protocols the other end supports. The query is a pid
// pattern where * is a wildcard.
type Query struct {
	Type    pltype.MessageType `json:"@type"`
	ID      string             `json:"@id"`
	Query   string             `json:"query"`
	Comment string             `json:"comment,omitempty"`
}

// Disclose answers a query in its thread.
type Disclose struct {
	Type      pltype.MessageType   `json:"@type"`
	ID        string               `json:"@id"`
	Protocols []ProtocolDescriptor `json:"protocols"`
	Thread    *decorator.Thread    `json:"~thread"`
}

// ProtocolDescriptor tells the protocol and the roles we can play in it.
type ProtocolDescriptor struct {
	PID   string  `json:"pid"`
	Roles []Actor `json:"roles,omitempty"`
}

// NewQuery returns a query, empty query means all protocols.
func NewQuery(query, comment string) *Query {
	if query == "" {
		query = "*"
	}
	return &Query{
		Type:    pltype.New(pltype.DiscoveryFeatures, pltype.HandlerQuery),
		ID:      uuid.New().String(),
		Query:   query,
		Comment: comment,
	}
}

// NewDisclose returns the answer to the query.
func NewDisclose(q *Query, protocols []ProtocolDescriptor) *Disclose {
	if protocols == nil {
		protocols = []ProtocolDescriptor{}
	}
	return &Disclose{
		Type:      pltype.New(pltype.DiscoveryFeatures, pltype.HandlerDisclose),
		ID:        uuid.New().String(),
		Protocols: protocols,
		Thread:    &decorator.Thread{ID: q.ID},
	}
}

// ThreadID returns thid of the disclose.
func (d *Disclose) ThreadID() string {
	return d.Thread.ThreadID(d.ID)
}

// Actor is a role of a protocol.
type Actor string

const (
	Inviter  Actor = "inviter"
	Invitee  Actor = "invitee"
	Issuer   Actor = "issuer"
	Holder   Actor = "holder"
	Prover   Actor = "prover"
	Verifier Actor = "verifier"
	Sender   Actor = "sender"
	Receiver Actor = "receiver"
)

// AllActors is the default role set of the agent.
var AllActors = []Actor{Inviter, Invitee, Issuer, Holder, Prover, Verifier, Sender, Receiver}

var familyActors = map[pltype.Family][2]Actor{
	pltype.Connections:        {Inviter, Invitee},
	pltype.CredentialIssuance: {Issuer, Holder},
	pltype.PresentProof:       {Prover, Verifier},
	pltype.TrustPing:          {Sender, Receiver},
	pltype.DiscoveryFeatures:  {Sender, Receiver},
	pltype.Basicmessage:       {Sender, Receiver},
	pltype.Outofband:          {"", Receiver},
	pltype.QuestionAnswer:     {"", Receiver},
	pltype.Committedanswer:    {"", Receiver},
	pltype.InviteAction:       {Inviter, Invitee},
}

// Registry is the set of protocols the agent discloses. It's built from the
// roles the agent is configured to play.
type Registry struct {
	protocols []ProtocolDescriptor
}

// NewRegistry builds the registry for the actors. Nil means all actors.
func NewRegistry(actors []Actor) *Registry {
	if actors == nil {
		actors = AllActors
	}
	has := make(map[Actor]bool, len(actors))
	for _, a := range actors {
		has[a] = true
	}
	r := &Registry{}
	for _, f := range pltype.Families() {
		roles, ok := familyActors[f]
		if !ok {
			continue
		}
		pd := ProtocolDescriptor{PID: PID(f)}
		for _, role := range roles {
			if role != "" && has[role] {
				pd.Roles = append(pd.Roles, role)
			}
		}
		if len(pd.Roles) > 0 {
			r.protocols = append(r.protocols, pd)
		}
	}
	sort.Slice(r.protocols, func(i, j int) bool {
		return r.protocols[i].PID < r.protocols[j].PID
	})
	return r
}

// PID returns the protocol identifier of the family, i.e. the message type
// without the bare type.
func PID(f pltype.Family) string {
	prefix := pltype.PrefixDID
	if f == pltype.Outofband || f == pltype.InviteAction {
		prefix = pltype.PrefixEndpoint
	}
	return fmt.Sprintf("%s/%s/%s", prefix, f, f.Version())
}

// Protocols returns the protocols matching the query. A trailing * matches
// any suffix, a lone * or empty query matches everything.
func (r *Registry) Protocols(query string) []ProtocolDescriptor {
	res := make([]ProtocolDescriptor, 0, len(r.protocols))
	for _, pd := range r.protocols {
		if match(query, pd.PID) {
			res = append(res, pd)
		}
	}
	return res
}

func match(query, pid string) bool {
	switch {
	case query == "" || query == "*":
		return true
	case strings.HasSuffix(query, "*"):
		return strings.HasPrefix(pid, strings.TrimSuffix(query, "*"))
	default:
		return query == pid
	}
}
