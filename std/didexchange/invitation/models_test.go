package invitation

import (
	"crypto/ed25519"
	"encoding/json"
	"testing"

	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/findy-network/findy-didexchange/std/did"
	"github.com/lainio/err2/assert"
	"github.com/mr-tron/base58"
)

func newVerkey() string {
	pub, _, _ := ed25519.GenerateKey(nil)
	return base58.Encode(pub)
}

var aliceInvitation = `{
  "@type": "did:sov:BzCbsNYhMrjHiqZDTUASHg;spec/connections/1.0/invitation",
  "@id": "3b2ca6e4-6a6e-4c7b-a8c9-1b4b4b1e3f4c",
  "label": "Alice",
  "recipientKeys": ["8KLQJNs7cJFY5vcRTWzb33zYr5zhDrcaX6jgD5Uaofcu"],
  "serviceEndpoint": "http://192.168.65.3:8030",
  "public_did": "ERYihzndieTdh4UA7Q6Y3C"
}`

func TestInvitation_JSON(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	var inv Invitation
	assert.NoError(json.Unmarshal([]byte(aliceInvitation), &inv))
	assert.That(inv.Type.Is(pltype.Connections, pltype.HandlerInvitation))
	assert.Equal(inv.Label, "Alice")
	assert.SLen(inv.RecipientKeys, 1)
	assert.That(inv.RoutingKeys != nil)
	assert.Equal(inv.PublicDID, "ERYihzndieTdh4UA7Q6Y3C")
	assert.NoError(inv.Validate())

	data, err := json.Marshal(&inv)
	assert.NoError(err)
	var inv2 Invitation
	assert.NoError(json.Unmarshal(data, &inv2))
	assert.DeepEqual(inv2, inv)
}

func TestDIDDocConversion(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	doc := did.NewDefault()
	doc.SetID("did:sov:ERYihzndieTdh4UA7Q6Y3C")
	doc.SetServiceEndpoint("http://localhost:8080/agency/msg")
	doc.SetKeys([]string{newVerkey()}, []string{newVerkey(), newVerkey()})

	inv := FromDIDDoc(doc)
	assert.Equal(inv.ID, doc.ID)
	assert.DeepEqual(inv.RecipientKeys, doc.RecipientKeys())
	assert.DeepEqual(inv.RoutingKeys, doc.RoutingKeys())
	assert.DeepEqual(inv.ToDIDDoc(), doc)

	inv.ServiceEndpoint = "::"
	assert.Error(inv.Validate())
}
