/*
Package pairwise is my side of one pairwise relationship. AgentInfo holds my
pairwise DID and verkey, and the DID and verkey of the pairwise agent the
mediator runs for the relationship. The other end sends to us through the
mediator, and we poll the mediator for what it has received.

AgentInfo is a value type. The collaborators it needs are passed in Env.
*/
package pairwise

import (
	"context"
	"fmt"

	"github.com/findy-network/findy-didexchange/agent/agency"
	"github.com/findy-network/findy-didexchange/agent/aries"
	"github.com/findy-network/findy-didexchange/agent/envelope"
	"github.com/findy-network/findy-didexchange/agent/trans"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/findy-network/findy-didexchange/std/did"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Poster sends the packed bytes to the endpoint.
type Poster interface {
	Post(ctx context.Context, url string, body []byte, tier trans.Tier) ([]byte, error)
}

// Env is what AgentInfo needs to run its operations.
type Env struct {
	Wallet   core.Wallet
	Mediator agency.Mediator
	Poster   Poster
	Agency   agency.Info

	// PublicDID is given in the invitations which ask for it. Optional.
	PublicDID string
}

// NewEnv builds the Env and reads the mediator's identity from it.
func NewEnv(ctx context.Context, w core.Wallet, m agency.Mediator, p Poster) (env *Env, err error) {
	defer err2.Handle(&err, "pairwise env")

	info := try.To1(m.Info(ctx))
	return &Env{Wallet: w, Mediator: m, Poster: p, Agency: *info}, nil
}

func (env *Env) envelope() *envelope.Envelope {
	return envelope.New(env.Wallet)
}

type AgentInfo struct {
	PwDID    string `json:"my_pw_did"`
	PwVK     string `json:"my_pw_vk"`
	AgentDID string `json:"pw_agent_did"`
	AgentVK  string `json:"pw_agent_vk"`
}

// Item is one decoded inbox message.
type Item struct {
	UID      string
	SenderVK string
	Msg      *aries.Message
}

// New creates fresh pairwise keys and the pairwise agent of them at the
// mediator.
func New(ctx context.Context, env *Env) (ai AgentInfo, err error) {
	defer err2.Handle(&err, "new agent info")

	ai.PwDID, ai.PwVK = try.To2(env.Wallet.CreateAndStoreMyDID(""))
	ai.AgentDID, ai.AgentVK = try.To2(env.Mediator.CreatePairwiseAgent(ctx, ai.PwDID, ai.PwVK))
	glog.V(1).Infoln("pairwise", ai.PwDID, "agent", ai.AgentDID)
	return ai, nil
}

// IsZero tells if the AgentInfo is unset.
func (ai AgentInfo) IsZero() bool {
	return ai == AgentInfo{}
}

func (ai AgentInfo) String() string {
	return fmt.Sprintf("pw: %s agent: %s", ai.PwDID, ai.AgentDID)
}

// RoutingKeys returns the keys the other end wraps its messages with: the
// pairwise agent first and the mediator last.
func (ai AgentInfo) RoutingKeys(env *Env) []string {
	return []string{ai.AgentVK, env.Agency.Verkey}
}

func (ai AgentInfo) RecipientKeys() []string {
	return []string{ai.PwVK}
}

func (ai AgentInfo) AgencyEndpoint(env *Env) string {
	return env.Agency.Endpoint
}

// DIDDoc returns the DID document of my side.
func (ai AgentInfo) DIDDoc(env *Env) *did.Doc {
	return did.NewDocWith(ai.PwDID, ai.AgencyEndpoint(env), ai.RecipientKeys(), ai.RoutingKeys(env))
}

// Messages returns the unread messages of the pairwise agent in the order the
// mediator received them. The messages we cannot open are marked Reviewed so
// that they aren't returned again.
func (ai AgentInfo) Messages(ctx context.Context, env *Env) (items []Item, err error) {
	defer err2.Handle(&err, "messages")

	msgs := try.To1(env.Mediator.GetMessages(ctx, ai.AgentDID,
		[]agency.MessageStatusCode{agency.Received}, nil))

	var bad []string
	items = make([]Item, 0, len(msgs))
	e := env.envelope()
	for _, m := range msgs {
		msg, senderVK, err := e.OpenWithSender(m.Payload)
		if err != nil {
			glog.Warningln("cannot open inbox message", m.UID, "of", ai.AgentDID, ":", err)
			bad = append(bad, m.UID)
			continue
		}
		items = append(items, Item{UID: m.UID, SenderVK: senderVK, Msg: msg})
	}
	if len(bad) > 0 {
		try.To(env.Mediator.UpdateMessageStatus(ctx, ai.AgentDID, agency.Reviewed, bad))
	}
	glog.V(3).Infof("%s: %d messages", ai.AgentDID, len(items))
	return items, nil
}

// MessageByID returns the message of the uid regardless of its status.
func (ai AgentInfo) MessageByID(ctx context.Context, env *Env, uid string) (item *Item, err error) {
	defer err2.Handle(&err, "message %s", uid)

	msgs := try.To1(env.Mediator.GetMessages(ctx, ai.AgentDID, nil, []string{uid}))
	for _, m := range msgs {
		if m.UID != uid {
			continue
		}
		msg, senderVK := try.To2(env.envelope().OpenWithSender(m.Payload))
		return &Item{UID: uid, SenderVK: senderVK, Msg: msg}, nil
	}
	return nil, core.Errorf(core.KindInvalidAgencyResponse, "message not found")
}

// UpdateMessageStatus marks the messages Reviewed.
func (ai AgentInfo) UpdateMessageStatus(ctx context.Context, env *Env, uids ...string) error {
	if len(uids) == 0 {
		return nil
	}
	return env.Mediator.UpdateMessageStatus(ctx, ai.AgentDID, agency.Reviewed, uids)
}

// SendMessage packs the message with my pairwise key and posts it to the
// service endpoint of their DID document.
func (ai AgentInfo) SendMessage(ctx context.Context, env *Env, msg *aries.Message, their *did.Doc) error {
	_, err := ai.send(ctx, env, msg, ai.PwVK, their, trans.Medium)
	return err
}

// SendMessageAnonymously is SendMessage without the sender key.
func (ai AgentInfo) SendMessageAnonymously(ctx context.Context, env *Env, msg *aries.Message, their *did.Doc) error {
	_, err := ai.send(ctx, env, msg, "", their, trans.Medium)
	return err
}

// SendMessageAndWaitResult sends the message and opens the response the
// endpoint returns in the same HTTP exchange. A nil message means that the
// endpoint had nothing to return.
func (ai AgentInfo) SendMessageAndWaitResult(ctx context.Context, env *Env, msg *aries.Message, their *did.Doc) (res *aries.Message, err error) {
	defer err2.Handle(&err, "send and wait")

	data := try.To1(ai.send(ctx, env, msg, ai.PwVK, their, trans.Long))
	if len(data) == 0 {
		return nil, nil
	}
	return env.envelope().Open(data)
}

func (ai AgentInfo) send(ctx context.Context, env *Env, msg *aries.Message, senderVK string, their *did.Doc, tier trans.Tier) (res []byte, err error) {
	defer err2.Handle(&err, "send %s", msg.Kind)

	if their == nil {
		return nil, core.Errorf(core.KindInvalidDIDDoc, "no DID document of the receiver")
	}
	data := try.To1(env.envelope().Create(msg, senderVK, their))
	endpoint := their.ServiceEndpoint()
	glog.V(3).Infoln("sending", msg.Kind, "to", endpoint)
	return env.Poster.Post(ctx, endpoint, data, tier)
}

// Delete removes the pairwise agent from the mediator. The keys stay in the
// wallet.
func (ai AgentInfo) Delete(ctx context.Context, env *Env) error {
	glog.V(1).Infoln("deleting pairwise agent", ai.AgentDID)
	return env.Mediator.DeleteConnection(ctx, ai.AgentDID)
}
