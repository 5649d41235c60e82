package committedanswer

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"testing"

	"github.com/findy-network/findy-didexchange/core"
	"github.com/lainio/err2/assert"
	"github.com/mr-tron/base58"
)

type keySigner map[string]ed25519.PrivateKey

func (s keySigner) newKey() string {
	pub, priv, _ := ed25519.GenerateKey(nil)
	vk := base58.Encode(pub)
	s[vk] = priv
	return vk
}

func (s keySigner) Sign(verkey string, data []byte) ([]byte, error) {
	return ed25519.Sign(s[verkey], data), nil
}

func (s keySigner) Verify(verkey string, data, signature []byte) (bool, error) {
	pub, err := base58.Decode(verkey)
	if err != nil {
		return false, err
	}
	return ed25519.Verify(pub, data, signature), nil
}

const questionJSON = `{
  "@type": "did:sov:BzCbsNYhMrjHiqZDTUASHg;spec/committedanswer/1.0/question",
  "@id": "518be002-de8e-456e-b3d5-8fe472477a86",
  "question_text": "Alice, are you on the phone with Bob from Faber Bank right now?",
  "question_detail": "This is optional fine-print giving context to the question and its various answers.",
  "valid_responses": [
    {"text": "Yes, it's me", "nonce": "<unique_identifier_a+2018-12-13T17:29:34+0000>"},
    {"text": "No, that's not me!", "nonce": "<unique_identifier_b+2018-12-13T17:29:34+0000>"}
  ]
}`

func TestAnswer(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	signer := keySigner{}
	vk := signer.newKey()

	var q Question
	assert.NoError(json.Unmarshal([]byte(questionJSON), &q))
	assert.SLen(q.ValidResponses, 2)

	a, err := NewAnswer(&q, q.ValidResponses[1], signer, vk)
	assert.NoError(err)
	assert.Equal(a.Thread.ID, q.ID)

	data, err := json.Marshal(a)
	assert.NoError(err)
	var m map[string]any
	assert.NoError(json.Unmarshal(data, &m))
	_, hasSig := m["response.@sig"]
	assert.That(hasSig)

	var got Answer
	assert.NoError(json.Unmarshal(data, &got))
	nonce, err := got.Nonce()
	assert.NoError(err)
	assert.Equal(nonce, q.ValidResponses[1].Nonce)
	assert.NoError(got.Verify(signer, vk))
	assert.That(errors.Is(got.Verify(signer, signer.newKey()), core.ErrInvalidVerkey))
}

func TestNewAnswer_InvalidResponse(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	signer := keySigner{}
	q := NewQuestion("ok?", "yes", "no")
	assert.SLen(q.ValidResponses, 2)
	assert.NotEqual(q.ValidResponses[0].Nonce, q.ValidResponses[1].Nonce)

	_, err := NewAnswer(q, Response{Text: "yes", Nonce: "forged"}, signer, signer.newKey())
	assert.That(errors.Is(err, core.ErrInvalidOption))
}
