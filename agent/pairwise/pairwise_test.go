package pairwise

import (
	"context"
	"errors"
	"testing"

	"github.com/findy-network/findy-didexchange/agent/agency"
	"github.com/findy-network/findy-didexchange/agent/aries"
	"github.com/findy-network/findy-didexchange/agent/envelope"
	"github.com/findy-network/findy-didexchange/agent/ssi"
	"github.com/findy-network/findy-didexchange/agent/trans"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/findy-network/findy-didexchange/std/did"
	"github.com/findy-network/findy-didexchange/std/trustping"
	gomock "github.com/golang/mock/gomock"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

// how to regenerate the mock:
// mockgen -package pairwise -destination ./agent/pairwise/mock_test.go github.com/findy-network/findy-didexchange/agent/agency Mediator

var agencyInfo = agency.Info{
	DID:      "Th7MpTaRZVRYnPiabds81Y",
	Verkey:   "FYmoFw55GeQH7SRFa37dkx1d2dZ3zUF8ckg7wmL7ofN4",
	Endpoint: "http://localhost:8080/agency/msg",
}

type posted struct {
	url  string
	body []byte
	tier trans.Tier
}

type fakePoster struct {
	calls []posted
	resp  []byte
	err   error
}

func (p *fakePoster) Post(_ context.Context, url string, body []byte, tier trans.Tier) ([]byte, error) {
	p.calls = append(p.calls, posted{url: url, body: body, tier: tier})
	return p.resp, p.err
}

func newTestEnv(t *testing.T) (*Env, *MockMediator, *fakePoster) {
	ctrl := gomock.NewController(t)
	m := NewMockMediator(ctrl)
	m.EXPECT().Info(gomock.Any()).Return(&agencyInfo, nil)
	p := &fakePoster{}
	env := try.To1(NewEnv(context.Background(), ssi.NewMemWallet(), m, p))
	return env, m, p
}

func newAgentInfo(env *Env) AgentInfo {
	pwDID, pwVK := try.To2(env.Wallet.CreateAndStoreMyDID(""))
	return AgentInfo{PwDID: pwDID, PwVK: pwVK, AgentDID: "agentDID", AgentVK: agencyInfo.Verkey}
}

type peer struct {
	w  *ssi.Wallet
	vk string
}

func newPeer() peer {
	w := ssi.NewMemWallet()
	_, vk := try.To2(w.CreateAndStoreMyDID(""))
	return peer{w: w, vk: vk}
}

func (p peer) doc() *did.Doc {
	return did.NewDocWith("did:sov:peer", "http://localhost:9999/peer", []string{p.vk}, nil)
}

func TestNewEnv_Error(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	ctrl := gomock.NewController(t)
	m := NewMockMediator(ctrl)
	m.EXPECT().Info(gomock.Any()).Return(nil, core.ErrPostMessageFailed)
	_, err := NewEnv(context.Background(), ssi.NewMemWallet(), m, &fakePoster{})
	assert.That(errors.Is(err, core.ErrPostMessageFailed))
}

func TestNew(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	env, m, _ := newTestEnv(t)

	m.EXPECT().CreatePairwiseAgent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("agentDID", "agentVK", nil)
	ai, err := New(context.Background(), env)
	assert.NoError(err)
	assert.Equal(ai.AgentDID, "agentDID")
	assert.Equal(ai.AgentVK, "agentVK")
	assert.That(env.Wallet.Has(ai.PwVK))
	assert.That(!ai.IsZero())

	m.EXPECT().CreatePairwiseAgent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", "", core.ErrPostMessageFailed)
	_, err = New(context.Background(), env)
	assert.That(errors.Is(err, core.ErrPostMessageFailed))
}

func TestAgentInfo_DIDDoc(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	env, _, _ := newTestEnv(t)
	ai := AgentInfo{PwDID: "pwDID", PwVK: "pwVK", AgentDID: "agentDID", AgentVK: "agentVK"}

	assert.DeepEqual(ai.RoutingKeys(env), []string{"agentVK", agencyInfo.Verkey})
	assert.DeepEqual(ai.RecipientKeys(), []string{"pwVK"})
	assert.Equal(ai.AgencyEndpoint(env), agencyInfo.Endpoint)

	doc := ai.DIDDoc(env)
	assert.Equal(doc.ID, "pwDID")
	assert.Equal(doc.ServiceEndpoint(), agencyInfo.Endpoint)
	recipientKeys, routingKeys := doc.ResolveKeys()
	assert.DeepEqual(recipientKeys, []string{"pwVK"})
	assert.DeepEqual(routingKeys, []string{"agentVK", agencyInfo.Verkey})
}

func TestAgentInfo_Messages(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	ctx := context.Background()
	env, m, _ := newTestEnv(t)
	ai := newAgentInfo(env)

	sender := newPeer()
	myDoc := did.NewDocWith(ai.PwDID, agencyInfo.Endpoint, ai.RecipientKeys(), nil)
	ping := try.To1(aries.New(trustping.NewPing("first")))
	payload := try.To1(envelope.New(sender.w).Create(ping, sender.vk, myDoc))

	m.EXPECT().GetMessages(gomock.Any(), "agentDID", []agency.MessageStatusCode{agency.Received}, nil).
		Return([]agency.Message{
			{UID: "1", StatusCode: agency.Received, Payload: payload},
			{UID: "2", StatusCode: agency.Received, Payload: []byte("garbage")},
		}, nil)
	m.EXPECT().UpdateMessageStatus(gomock.Any(), "agentDID", agency.Reviewed, []string{"2"}).
		Return(nil)

	items, err := ai.Messages(ctx, env)
	assert.NoError(err)
	assert.SLen(items, 1)
	assert.Equal(items[0].UID, "1")
	assert.Equal(items[0].SenderVK, sender.vk)
	assert.Equal(items[0].Msg.Kind, aries.Ping)
	assert.Equal(items[0].Msg.ID(), ping.ID())
}

func TestAgentInfo_MessageByID(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	ctx := context.Background()
	env, m, _ := newTestEnv(t)
	ai := newAgentInfo(env)

	myDoc := did.NewDocWith(ai.PwDID, agencyInfo.Endpoint, ai.RecipientKeys(), nil)
	ping := try.To1(aries.New(trustping.NewPing("")))
	payload := try.To1(envelope.New(env.Wallet).Create(ping, "", myDoc))

	m.EXPECT().GetMessages(gomock.Any(), "agentDID", nil, []string{"uid"}).
		Return([]agency.Message{{UID: "uid", StatusCode: agency.Reviewed, Payload: payload}}, nil)
	item, err := ai.MessageByID(ctx, env, "uid")
	assert.NoError(err)
	assert.Equal(item.SenderVK, "")
	assert.Equal(item.Msg.Kind, aries.Ping)

	m.EXPECT().GetMessages(gomock.Any(), "agentDID", nil, []string{"none"}).Return(nil, nil)
	_, err = ai.MessageByID(ctx, env, "none")
	assert.That(errors.Is(err, core.ErrInvalidAgencyResponse))
}

func TestAgentInfo_UpdateMessageStatus(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	env, m, _ := newTestEnv(t)
	ai := newAgentInfo(env)

	m.EXPECT().UpdateMessageStatus(gomock.Any(), "agentDID", agency.Reviewed, []string{"a", "b"}).
		Return(nil)
	assert.NoError(ai.UpdateMessageStatus(context.Background(), env, "a", "b"))
	assert.NoError(ai.UpdateMessageStatus(context.Background(), env))
}

func TestAgentInfo_SendMessage(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	ctx := context.Background()
	env, _, p := newTestEnv(t)
	ai := newAgentInfo(env)
	receiver := newPeer()

	ping := try.To1(aries.New(trustping.NewPing("hi")))
	assert.NoError(ai.SendMessage(ctx, env, ping, receiver.doc()))
	assert.NoError(ai.SendMessageAnonymously(ctx, env, ping, receiver.doc()))
	assert.SLen(p.calls, 2)
	assert.Equal(p.calls[0].url, "http://localhost:9999/peer")
	assert.Equal(p.calls[0].tier, trans.Medium)

	msg, senderVK, err := envelope.New(receiver.w).OpenWithSender(p.calls[0].body)
	assert.NoError(err)
	assert.Equal(senderVK, ai.PwVK)
	assert.Equal(msg.ID(), ping.ID())

	_, senderVK, err = envelope.New(receiver.w).OpenWithSender(p.calls[1].body)
	assert.NoError(err)
	assert.Equal(senderVK, "")

	err = ai.SendMessage(ctx, env, ping, nil)
	assert.That(errors.Is(err, core.ErrInvalidDIDDoc))

	p.err = core.ErrPostMessageFailed
	err = ai.SendMessage(ctx, env, ping, receiver.doc())
	assert.That(errors.Is(err, core.ErrPostMessageFailed))
}

func TestAgentInfo_SendMessageAndWaitResult(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	ctx := context.Background()
	env, _, p := newTestEnv(t)
	ai := newAgentInfo(env)
	receiver := newPeer()

	ping := trustping.NewPing("")
	myDoc := did.NewDocWith(ai.PwDID, agencyInfo.Endpoint, ai.RecipientKeys(), nil)
	resp := try.To1(aries.New(trustping.NewPingResponse(ping)))
	p.resp = try.To1(envelope.New(receiver.w).Create(resp, receiver.vk, myDoc))

	res, err := ai.SendMessageAndWaitResult(ctx, env, try.To1(aries.New(ping)), receiver.doc())
	assert.NoError(err)
	assert.Equal(res.Kind, aries.PingResponse)
	assert.Equal(res.ThreadID(), ping.ID)
	assert.Equal(p.calls[0].tier, trans.Long)

	p.resp = nil
	res, err = ai.SendMessageAndWaitResult(ctx, env, try.To1(aries.New(ping)), receiver.doc())
	assert.NoError(err)
	assert.That(res == nil)
}

func TestAgentInfo_Delete(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	env, m, _ := newTestEnv(t)
	ai := newAgentInfo(env)

	m.EXPECT().DeleteConnection(gomock.Any(), "agentDID").Return(nil)
	assert.NoError(ai.Delete(context.Background(), env))
}
