package did

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"testing"

	"github.com/findy-network/findy-didexchange/core"
	"github.com/lainio/err2/assert"
	"github.com/mr-tron/base58"
)

const (
	testVK  = "8KLQJNs7cJFY5vcRTWzb33zYr5zhDrcaX6jgD5Uaofcu"
	testDID = "did:sov:ERYihzndieTdh4UA7Q6Y3C"
)

func newVerkey() string {
	pub, _, _ := ed25519.GenerateKey(nil)
	return base58.Encode(pub)
}

// pythonDoc is a DID document as the python agents send it
var pythonDoc = `{
  "@context": "https://w3id.org/did/v1",
  "id": "did:sov:ERYihzndieTdh4UA7Q6Y3C",
  "publicKey": [{
    "id": "did:sov:ERYihzndieTdh4UA7Q6Y3C#1",
    "type": "Ed25519VerificationKey2018",
    "controller": "did:sov:ERYihzndieTdh4UA7Q6Y3C",
    "publicKeyBase58": "8KLQJNs7cJFY5vcRTWzb33zYr5zhDrcaX6jgD5Uaofcu"
  }],
  "authentication": [{
    "type": "Ed25519SignatureAuthentication2018",
    "publicKey": "did:sov:ERYihzndieTdh4UA7Q6Y3C#1"
  }],
  "service": [{
    "id": "did:sov:ERYihzndieTdh4UA7Q6Y3C;indy",
    "type": "IndyAgent",
    "priority": 0,
    "recipientKeys": ["8KLQJNs7cJFY5vcRTWzb33zYr5zhDrcaX6jgD5Uaofcu"],
    "serviceEndpoint": "http://192.168.65.3:8030"
  }]
}`

func TestDoc_SetKeys(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	rk, routing := newVerkey(), newVerkey()
	d := NewDocWith(testDID, "http://localhost:8080/agency/msg", []string{rk}, []string{routing})

	assert.SLen(d.PublicKey, 1)
	assert.Equal(d.PublicKey[0].ID, testDID+"#1")
	assert.Equal(d.PublicKey[0].PublicKeyBase58, rk)
	assert.SLen(d.Authentication, 1)
	assert.Equal(d.Authentication[0].PublicKey, testDID+"#1")
	assert.DeepEqual(d.RecipientKeys(), []string{rk})
	assert.DeepEqual(d.RoutingKeys(), []string{routing})
	assert.Equal(d.ServiceEndpoint(), "http://localhost:8080/agency/msg")
	assert.NoError(d.Validate())
}

func TestDoc_KeyForReference(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	rk := newVerkey()
	d := NewDocWith(testDID, "http://localhost", []string{rk}, nil)

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"fragment", testDID + "#1", rk},
		{"legacy verkey as id", rk, rk},
		{"literal", testVK, testVK},
		{"unknown fragment", testDID + "#" + testVK, testVK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.PushTester(t)
			defer assert.PopTester()
			assert.Equal(d.KeyForReference(tt.ref), tt.want)
		})
	}
}

func TestDoc_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mod     func(d *Doc)
		wantErr bool
	}{
		{"valid", func(d *Doc) {}, false},
		{"context", func(d *Doc) { d.Context = "https://w3id.org/did/v0.11" }, true},
		{"endpoint", func(d *Doc) { d.SetServiceEndpoint("not an url") }, true},
		{"missing public key", func(d *Doc) {
			d.PublicKey = []PublicKey{}
		}, true},
		{"wrong key type", func(d *Doc) {
			d.PublicKey[0].Type = "RsaVerificationKey2018"
		}, true},
		{"invalid verkey", func(d *Doc) {
			d.PublicKey[0].PublicKeyBase58 = "abc"
		}, true},
		{"missing authentication", func(d *Doc) {
			d.Authentication[0].PublicKey = "did:sov:other#9"
		}, true},
		{"empty authentication", func(d *Doc) {
			d.Authentication = []VerificationMethod{}
		}, false},
		{"auth with key type", func(d *Doc) {
			d.Authentication[0].Type = KeyType
		}, false},
		{"unknown routing key reference", func(d *Doc) {
			d.SetRoutingKeys([]string{testDID + "#5"})
		}, true},
		{"invalid routing key", func(d *Doc) {
			d.SetRoutingKeys([]string{"invalid"})
		}, true},
		{"routing key reference", func(d *Doc) {
			d.SetRoutingKeys([]string{testDID + "#1"})
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDocWith(testDID, "http://localhost:8080", []string{newVerkey()}, []string{newVerkey()})
			tt.mod(d)
			err := d.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, core.ErrInvalidDIDDoc) && !errors.Is(err, core.ErrInvalidVerkey) {
				t.Errorf("Validate() error kind = %v", core.KindOf(err))
			}
		})
	}
}

func TestDoc_JSON(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	var d Doc
	assert.NoError(json.Unmarshal([]byte(pythonDoc), &d))
	assert.NoError(d.Validate())
	assert.DeepEqual(d.RecipientKeys(), []string{testVK})
	assert.SLen(d.RoutingKeys(), 0)

	// newer documents use verificationMethod for the keys
	var raw map[string]any
	assert.NoError(json.Unmarshal([]byte(pythonDoc), &raw))
	raw["verificationMethod"] = raw["publicKey"]
	delete(raw, "publicKey")
	data, err := json.Marshal(raw)
	assert.NoError(err)

	var d2 Doc
	assert.NoError(json.Unmarshal(data, &d2))
	assert.DeepEqual(d2, d)

	data, err = json.Marshal(&d)
	assert.NoError(err)
	var d3 Doc
	assert.NoError(json.Unmarshal(data, &d3))
	assert.DeepEqual(d3, d)
}

func TestDoc_Clone(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	d := NewDocWith(testDID, "http://localhost", []string{newVerkey()}, nil)
	c := d.Clone()
	assert.DeepEqual(c, d)
	c.Service[0].RecipientKeys[0] = testVK
	assert.NotEqual(d.Service[0].RecipientKeys[0], testVK)
}

func TestDIDKey(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	vk := newVerkey()
	didKey, err := DIDKeyFromVerkey(vk)
	assert.NoError(err)
	assert.That(IsDIDKey(didKey))

	got, err := VerkeyFromDIDKey(didKey + "#key-1")
	assert.NoError(err)
	assert.Equal(got, vk)

	_, err = VerkeyFromDIDKey("did:key:abc")
	assert.Error(err)

	d := NewDocWith(testDID, "http://localhost", []string{didKey}, nil)
	d.NormalizeServiceKeys()
	assert.DeepEqual(d.Service[0].RecipientKeys, []string{vk})
}

func TestValidateVerkey(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	assert.NoError(ValidateVerkey(testVK))
	assert.NoError(ValidateVerkey("~" + base58.Encode(make([]byte, 16))))
	assert.Error(ValidateVerkey("0OIl"))
	assert.Error(ValidateVerkey(base58.Encode(make([]byte, 31))))
}
