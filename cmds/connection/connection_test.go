package connection

import (
	"bytes"
	"encoding/json"
	"flag"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/findy-network/findy-didexchange/agent/agency"
	"github.com/findy-network/findy-didexchange/protocol/connection"
	"github.com/findy-network/findy-didexchange/server"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

const testKey = "15308490f1e4026284594dd08d31291bc8ef2aeac730d0daf6ff87bb92d4336c"

func TestMain(m *testing.M) {
	_ = flag.Set("logtostderr", "true")
	_ = flag.Set("v", "0")
	os.Exit(m.Run())
}

type testNet struct {
	srv *httptest.Server
	a   *agency.Agency
	dir string
}

func newTestNet(t *testing.T) *testNet {
	a := try.To1(agency.New(agency.Config{}))
	srv := httptest.NewServer(server.NewRouter(a))
	a.SetHostAddr(srv.URL)
	return &testNet{srv: srv, a: a, dir: t.TempDir()}
}

func (n *testNet) Close() {
	n.srv.Close()
	_ = n.a.Close()
}

func (n *testNet) cmd(wallet, name string) Cmd {
	return Cmd{
		Store: Store{
			AgencyURL: n.srv.URL,
			DBPath:    n.dir,
		}.withWallet(n.dir, wallet),
		Name: name,
	}
}

func (s Store) withWallet(dir, name string) Store {
	s.WalletPath, s.WalletName, s.WalletKey = dir, name, testKey
	return s
}

func TestConnectionCommands(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	n := newTestNet(t)
	defer n.Close()

	faber := n.cmd("faber", "alice")
	alice := n.cmd("alice", "faber")

	var out bytes.Buffer
	create := CreateCmd{Cmd: faber}
	assert.NoError(create.Validate())
	r := try.To1(create.Exec(&out))
	res := r.(*Result)
	assert.Equal(res.Code, connection.StateInvited)
	inv := res.Data.(json.RawMessage)
	assert.That(strings.Contains(out.String(), `"@type"`))

	_, err := create.Exec(nil)
	assert.Error(err) // name is taken

	accept := AcceptCmd{Cmd: alice, Invitation: inv}
	assert.NoError(accept.Validate())
	r = try.To1(accept.Exec(nil))
	assert.Equal(r.(*Result).Code, connection.StateInvited)

	r = try.To1(ConnectCmd{Cmd: alice}.Exec(nil))
	assert.Equal(r.(*Result).Code, connection.StateRequested)

	r = try.To1(UpdateCmd{Cmd: faber}.Exec(nil))
	assert.Equal(r.(*Result).State, "Responded")

	r = try.To1(UpdateCmd{Cmd: alice, Wait: 5 * time.Second, Interval: 20 * time.Millisecond}.Exec(nil))
	assert.Equal(r.(*Result).Code, connection.StateCompleted)
	r = try.To1(UpdateCmd{Cmd: faber}.Exec(nil))
	assert.Equal(r.(*Result).Code, connection.StateCompleted)

	out.Reset()
	r = try.To1(InfoCmd{Cmd: alice}.Exec(&out))
	info := r.(*Result).Data.(*connection.PairwiseInfo)
	assert.NotNil(info.Their)
	assert.That(strings.Contains(out.String(), `"serviceEndpoint"`))

	r = try.To1(BasicMsgCmd{Cmd: alice, Message: "hello faber"}.Exec(nil))
	assert.NotEqual(r.(*Result).Data.(string), "")

	out.Reset()
	r = try.To1(MessagesCmd{Cmd: faber, Ack: true}.Exec(&out))
	history := r.(*Result).Data.(MessagesResult)
	assert.SLen(history, 1)
	assert.Equal(history[0].Message, "hello faber")
	assert.ThatNot(history[0].SentByMe)
	assert.That(strings.Contains(out.String(), "them: hello faber"))

	// acked messages aren't read twice
	r = try.To1(MessagesCmd{Cmd: faber}.Exec(nil))
	assert.SLen(r.(*Result).Data.(MessagesResult), 1)

	r = try.To1(MessagesCmd{Cmd: alice}.Exec(nil))
	history = r.(*Result).Data.(MessagesResult)
	assert.SLen(history, 1)
	assert.That(history[0].SentByMe)

	_ = try.To1(TrustPingCmd{Cmd: alice, Comment: "are you there"}.Exec(nil))
	r = try.To1(UpdateCmd{Cmd: faber}.Exec(nil))
	assert.Equal(r.(*Result).Code, connection.StateCompleted)

	out.Reset()
	list := try.To1(ListCmd{Store: faber.Store}.Exec(&out)).(ListResult)
	assert.SLen(list, 1)
	assert.Equal(list[0].Name, "alice")
	assert.Equal(list[0].State, "Completed")
	assert.Equal(list[0].Sub, "ReadyACK")
	assert.That(list[0].Inviter)

	_ = try.To1(DeleteCmd{Cmd: faber}.Exec(nil))
	list = try.To1(ListCmd{Store: faber.Store}.Exec(nil)).(ListResult)
	assert.SLen(list, 0)

	// alice's list is in her own database
	list = try.To1(ListCmd{Store: alice.Store}.Exec(nil)).(ListResult)
	assert.SLen(list, 1)
	assert.ThatNot(list[0].Inviter)
}

func TestOutOfBandCommands(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	n := newTestNet(t)
	defer n.Close()

	faber := n.cmd("faber", "oob")
	alice := n.cmd("alice", "oob")

	r := try.To1(CreateCmd{
		Cmd:           faber,
		OutOfBand:     true,
		RequestAttach: `{"hello":"alice"}`,
	}.Exec(nil))
	assert.Equal(r.(*Result).Code, connection.StateCompleted)

	r = try.To1(AcceptCmd{Cmd: alice, Invitation: r.(*Result).Data.(json.RawMessage)}.Exec(nil))
	assert.Equal(r.(*Result).Code, connection.StateCompleted)

	_, err := ConnectCmd{Cmd: alice}.Exec(nil)
	assert.Error(err)
}

func TestValidate(t *testing.T) {
	n := &testNet{dir: t.TempDir(), srv: &httptest.Server{URL: "http://localhost:8080"}}
	valid := n.cmd("wallet", "conn")
	badKey := valid.Store
	badKey.WalletKey = "12"

	tests := []struct {
		name string
		cmd  interface{ Validate() error }
		ok   bool
	}{
		{"cmd", valid, true},
		{"no name", Cmd{Store: valid.Store}, false},
		{"no agency", Cmd{Store: Store{Cmd: valid.Store.Cmd}, Name: "conn"}, false},
		{"bad key", Cmd{Store: badKey, Name: "conn"}, false},
		{"create", CreateCmd{Cmd: valid}, true},
		{"create goal", CreateCmd{Cmd: valid, GoalCode: "issue-vc"}, false},
		{"create oob", CreateCmd{Cmd: valid, OutOfBand: true, Handshake: true, GoalCode: "issue-vc"}, true},
		{"create oob nothing", CreateCmd{Cmd: valid, OutOfBand: true}, false},
		{"create oob attach", CreateCmd{Cmd: valid, OutOfBand: true, RequestAttach: "{}"}, true},
		{"create oob bad attach", CreateCmd{Cmd: valid, OutOfBand: true, RequestAttach: "{"}, false},
		{"accept empty", AcceptCmd{Cmd: valid}, false},
		{"accept bad", AcceptCmd{Cmd: valid, Invitation: []byte(`{"@type":"x"}`)}, false},
		{"connect", ConnectCmd{Cmd: valid, Options: `{"connection_type":"QR"}`}, true},
		{"connect sms", ConnectCmd{Cmd: valid, Options: `{"connection_type":"SMS"}`}, false},
		{"update wait", UpdateCmd{Cmd: valid, Wait: time.Second, Interval: time.Millisecond}, true},
		{"update no interval", UpdateCmd{Cmd: valid, Wait: time.Second}, false},
		{"update negative", UpdateCmd{Cmd: valid, Wait: -1}, false},
		{"send", BasicMsgCmd{Cmd: valid, Message: "hi"}, true},
		{"send empty", BasicMsgCmd{Cmd: valid}, false},
		{"list", ListCmd{Store: valid.Store}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.PushTester(t)
			defer assert.PopTester()

			err := tt.cmd.Validate()
			if tt.ok {
				assert.NoError(err)
			} else {
				assert.Error(err)
			}
		})
	}
}
