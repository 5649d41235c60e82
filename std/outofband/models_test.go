package outofband

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"testing"

	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/findy-network/findy-didexchange/std/decorator"
	"github.com/findy-network/findy-didexchange/std/did"
	"github.com/lainio/err2/assert"
	"github.com/mr-tron/base58"
)

func newVerkey() string {
	pub, _, _ := ed25519.GenerateKey(nil)
	return base58.Encode(pub)
}

const invitationV10JSON = `{
  "@type": "https://didcomm.org/out-of-band/1.0/invitation",
  "@id": "69212a3a-d068-4f9d-a2dd-4741bca89af3",
  "label": "Faber College",
  "goal_code": "issue-vc",
  "handshake_protocols": ["https://didcomm.org/connections/1.0"],
  "service": [{
    "id": "#inline",
    "type": "did-communication",
    "recipientKeys": ["8KLQJNs7cJFY5vcRTWzb33zYr5zhDrcaX6jgD5Uaofcu"],
    "serviceEndpoint": "http://localhost:8020"
  }]
}`

const invitationV11JSON = `{
  "@type": "https://didcomm.org/out-of-band/1.1/invitation",
  "@id": "69212a3a-d068-4f9d-a2dd-4741bca89af3",
  "label": "Faber College",
  "request~attach": [{"@id": "request-0", "mime-type": "application/json", "data": {"base64": "e30="}}],
  "services": ["did:sov:LjgpST2rjsoxYegQDRm7EL"]
}`

func TestInvitation_JSON(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	var inv Invitation
	assert.NoError(json.Unmarshal([]byte(invitationV10JSON), &inv))
	assert.Equal(inv.Type.Version, pltype.V10)
	assert.SLen(inv.Services, 1)
	assert.That(inv.Services[0].IsInline())
	assert.That(inv.SupportsHandshake())
	assert.ThatNot(inv.WithoutHandshake())
	assert.Equal(inv.RecipientKey(), "8KLQJNs7cJFY5vcRTWzb33zYr5zhDrcaX6jgD5Uaofcu")
	assert.Equal(inv.ServiceEndpoint(), "http://localhost:8020")
	assert.NoError(inv.Validate())

	data, err := json.Marshal(inv)
	assert.NoError(err)
	var m map[string]any
	assert.NoError(json.Unmarshal(data, &m))
	_, hasService := m["service"]
	assert.That(hasService)

	var inv11 Invitation
	assert.NoError(json.Unmarshal([]byte(invitationV11JSON), &inv11))
	assert.Equal(inv11.Type.Version, pltype.V11)
	assert.SLen(inv11.Services, 1)
	assert.Equal(inv11.Services[0].DID, "did:sov:LjgpST2rjsoxYegQDRm7EL")
	assert.That(inv11.WithoutHandshake())

	_, err = inv11.DIDDoc()
	assert.That(errors.Is(err, core.ErrInvalidDIDDoc))

	data, err = json.Marshal(inv11)
	assert.NoError(err)
	var inv11b Invitation
	assert.NoError(json.Unmarshal(data, &inv11b))
	assert.DeepEqual(inv11b, inv11)
}

func TestInvitation_Validate(t *testing.T) {
	valid := func() *Invitation {
		inv := NewInvitation("faber")
		inv.HandshakeProtocols = []string{pltype.SupportedHandshakeProtocol}
		inv.Services = []Service{NewInlineService("http://localhost:8080/agency/msg",
			[]string{newVerkey()}, []string{newVerkey()})}
		return inv
	}
	tests := []struct {
		name    string
		mod     func(inv *Invitation)
		wantErr error
	}{
		{"valid", func(*Invitation) {}, nil},
		{"no handshake nor attach", func(inv *Invitation) {
			inv.HandshakeProtocols = nil
		}, core.ErrInvalidJSON},
		{"attach only", func(inv *Invitation) {
			inv.HandshakeProtocols = nil
			inv.RequestAttach = []decorator.Attachment{*decorator.NewJSONAttachment("request-0", map[string]string{})}
		}, nil},
		{"unsupported handshake", func(inv *Invitation) {
			inv.HandshakeProtocols = []string{"https://didcomm.org/didexchange/1.0"}
		}, core.ErrInvalidOption},
		{"no services", func(inv *Invitation) {
			inv.Services = nil
		}, core.ErrInvalidJSON},
		{"bad endpoint", func(inv *Invitation) {
			inv.Services[0].ServiceEndpoint = "localhost"
		}, core.ErrInvalidDIDDoc},
		{"bad type", func(inv *Invitation) {
			inv.Type = pltype.New(pltype.Connections, pltype.HandlerInvitation)
		}, core.ErrInvalidJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := valid()
			tt.mod(inv)
			err := inv.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Validate() unexpected error %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInvitation_DIDKeys(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	vk := newVerkey()
	didKey, err := did.DIDKeyFromVerkey(vk)
	assert.NoError(err)

	inv := NewInvitation("faber")
	inv.HandshakeProtocols = []string{pltype.SupportedHandshakeProtocol}
	inv.Services = []Service{NewInlineService("http://localhost:8080", []string{didKey}, nil)}

	assert.NoError(inv.Validate())
	assert.Equal(inv.RecipientKey(), didKey)

	assert.NoError(inv.NormalizeServiceKeys())
	assert.Equal(inv.RecipientKey(), vk)

	doc, err := inv.DIDDoc()
	assert.NoError(err)
	assert.DeepEqual(doc.RecipientKeys(), []string{vk})
}

func TestHandshakeReuse(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	inv := NewInvitation("faber")
	reuse := NewHandshakeReuse(inv)
	assert.Equal(reuse.Thread.ID, reuse.ID)
	assert.Equal(reuse.Thread.PID, inv.ID)
	assert.Equal(reuse.Type.String(), "https://didcomm.org/out-of-band/1.1/handshake-reuse")

	accepted := NewHandshakeReuseAccepted(reuse)
	assert.Equal(accepted.Thread.ID, reuse.ID)
	assert.Equal(accepted.Thread.PID, inv.ID)
	assert.NotEqual(accepted.ID, reuse.ID)
}
