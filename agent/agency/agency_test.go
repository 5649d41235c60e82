package agency

import (
	"context"
	"errors"
	"flag"
	"os"
	"testing"

	"github.com/findy-network/findy-didexchange/agent/aries"
	"github.com/findy-network/findy-didexchange/agent/envelope"
	"github.com/findy-network/findy-didexchange/agent/ssi"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/findy-network/findy-didexchange/std/did"
	"github.com/findy-network/findy-didexchange/std/trustping"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

const registerFile = "agency_test_register.json"

func TestMain(m *testing.M) {
	setUp()
	code := m.Run()
	tearDown()
	os.Exit(code)
}

func setUp() {
	try.To(flag.Set("logtostderr", "true"))
	try.To(flag.Set("stderrthreshold", "WARNING"))
	try.To(flag.Set("v", "0"))
	flag.Parse()
}

func tearDown() {
	os.RemoveAll(registerFile)
}

type edge struct {
	w     *ssi.Wallet
	pwDID string
	pwVK  string
}

func newEdge() edge {
	w := ssi.NewMemWallet()
	pwDID, pwVK := try.To2(w.CreateAndStoreMyDID(""))
	return edge{w: w, pwDID: pwDID, pwVK: pwVK}
}

// sendTo packs a ping for the edge agent behind the agency the same way the
// other end of the connection does.
func sendTo(a *Agency, e edge, agentVK string) []byte {
	info := try.To1(a.Info(context.Background()))
	doc := did.NewDocWith("did:sov:"+e.pwDID, info.Endpoint,
		[]string{e.pwVK}, []string{agentVK, info.Verkey})

	sender := newEdge()
	msg := try.To1(aries.New(trustping.NewPing("hello")))
	return try.To1(envelope.New(sender.w).Create(msg, sender.pwVK, doc))
}

func TestNew(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	a, err := New(Config{HostAddr: "http://localhost:8090"})
	assert.NoError(err)
	info, err := a.Info(context.Background())
	assert.NoError(err)
	assert.NotEqual(info.DID, "")
	assert.NotEqual(info.Verkey, "")
	assert.Equal(info.Endpoint, "http://localhost:8090"+PathMsg)
	assert.Equal(a.AgentCount(), 0)

	a.SetHostAddr("http://127.0.0.1:9000")
	info, _ = a.Info(context.Background())
	assert.Equal(info.Endpoint, "http://127.0.0.1:9000"+PathMsg)

	_, err = New(Config{Seed: "too short"})
	assert.Error(err)
}

func TestAgency_Receive(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	ctx := context.Background()

	a := try.To1(New(Config{HostAddr: "http://localhost:8090"}))
	e := newEdge()
	agentDID, agentVK, err := a.CreatePairwiseAgent(ctx, e.pwDID, e.pwVK)
	assert.NoError(err)
	assert.Equal(a.AgentCount(), 1)

	assert.NoError(a.Receive(sendTo(a, e, agentVK)))
	assert.NoError(a.Receive(sendTo(a, e, agentVK)))

	msgs, err := a.GetMessages(ctx, agentDID, nil, nil)
	assert.NoError(err)
	assert.SLen(msgs, 2)
	assert.Equal(msgs[0].StatusCode, Received)
	assert.NotEqual(msgs[0].UID, msgs[1].UID)

	msg, err := envelope.New(e.w).Open(msgs[0].Payload)
	assert.NoError(err)
	assert.Equal(msg.Kind, aries.Ping)
	ping, ok := aries.As[trustping.Ping](msg)
	assert.That(ok)
	assert.Equal(ping.Comment, "hello")
}

func TestAgency_ReceiveUnknown(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	ctx := context.Background()

	a := try.To1(New(Config{HostAddr: "http://localhost:8090"}))
	info := try.To1(a.Info(ctx))

	stranger := newEdge()
	doc := did.NewDocWith("did:sov:"+stranger.pwDID, info.Endpoint,
		[]string{stranger.pwVK}, []string{info.Verkey})
	msg := try.To1(aries.New(trustping.NewPing("")))
	data := try.To1(envelope.New(stranger.w).Create(msg, "", doc))

	err := a.Receive(data)
	assert.That(errors.Is(err, ErrUnknownAgent))

	err = a.Receive([]byte(`{"not":"an envelope"}`))
	assert.Error(err)
	assert.That(!errors.Is(err, ErrUnknownAgent))
}

func TestAgency_MessageStatus(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	ctx := context.Background()

	a := try.To1(New(Config{HostAddr: "http://localhost:8090"}))
	e := newEdge()
	agentDID, agentVK := try.To2(a.CreatePairwiseAgent(ctx, e.pwDID, e.pwVK))
	for i := 0; i < 3; i++ {
		try.To(a.Receive(sendTo(a, e, agentVK)))
	}
	msgs := try.To1(a.GetMessages(ctx, agentDID, nil, nil))
	assert.SLen(msgs, 3)

	assert.NoError(a.UpdateMessageStatus(ctx, agentDID, Reviewed, []string{msgs[1].UID}))

	received := try.To1(a.GetMessages(ctx, agentDID, []MessageStatusCode{Received}, nil))
	assert.SLen(received, 2)
	reviewed := try.To1(a.GetMessages(ctx, agentDID, []MessageStatusCode{Reviewed}, nil))
	assert.SLen(reviewed, 1)
	assert.Equal(reviewed[0].UID, msgs[1].UID)

	byUID := try.To1(a.GetMessages(ctx, agentDID, nil, []string{msgs[2].UID}))
	assert.SLen(byUID, 1)
	none := try.To1(a.GetMessages(ctx, agentDID, []MessageStatusCode{Reviewed},
		[]string{msgs[2].UID}))
	assert.SLen(none, 0)

	err := a.UpdateMessageStatus(ctx, agentDID, MessageStatusCode(42), nil)
	assert.That(errors.Is(err, core.ErrInvalidOption))
	err = a.UpdateMessageStatus(ctx, "unknown", Reviewed, nil)
	assert.That(errors.Is(err, ErrUnknownAgent))
	_, err = a.GetMessages(ctx, "unknown", nil, nil)
	assert.That(errors.Is(err, ErrUnknownAgent))
}

func TestAgency_DeleteConnection(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	ctx := context.Background()

	a := try.To1(New(Config{HostAddr: "http://localhost:8090"}))
	e := newEdge()
	agentDID, agentVK := try.To2(a.CreatePairwiseAgent(ctx, e.pwDID, e.pwVK))
	data := sendTo(a, e, agentVK)

	assert.NoError(a.DeleteConnection(ctx, agentDID))
	assert.Equal(a.AgentCount(), 0)
	assert.That(errors.Is(a.DeleteConnection(ctx, agentDID), ErrUnknownAgent))
	assert.That(errors.Is(a.Receive(data), ErrUnknownAgent))
}

func TestAgency_Register(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	defer os.RemoveAll(registerFile)
	ctx := context.Background()

	w := ssi.NewMemWallet()
	cfg := Config{HostAddr: "http://localhost:8090", RegisterFile: registerFile, Wallet: w}
	a := try.To1(New(cfg))
	info := try.To1(a.Info(ctx))
	e := newEdge()
	agentDID, agentVK := try.To2(a.CreatePairwiseAgent(ctx, e.pwDID, e.pwVK))
	assert.NoError(a.Close())

	b, err := New(cfg)
	assert.NoError(err)
	assert.Equal(b.AgentCount(), 1)
	infoB := try.To1(b.Info(ctx))
	assert.Equal(infoB.DID, info.DID)
	assert.Equal(infoB.Verkey, info.Verkey)

	assert.NoError(b.Receive(sendTo(b, e, agentVK)))
	msgs := try.To1(b.GetMessages(ctx, agentDID, nil, nil))
	assert.SLen(msgs, 1)

	assert.NoError(ResetRegister(registerFile))
	c := try.To1(New(Config{RegisterFile: registerFile, Wallet: w}))
	assert.Equal(c.AgentCount(), 0)
}
