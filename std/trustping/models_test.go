package trustping

import (
	"encoding/json"
	"testing"

	"github.com/lainio/err2/assert"
)

const acapyPing = `{
  "@type": "did:sov:BzCbsNYhMrjHiqZDTUASHg;spec/trust_ping/1.0/ping",
  "@id": "c1c3a1c4-5d4b-4de0-a9f8-56df4e3f23a3",
  "response_requested": true,
  "comment": "hi"
}`

func TestPing(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	var ping Ping
	assert.NoError(json.Unmarshal([]byte(acapyPing), &ping))
	assert.That(ping.ResponseRequested)
	assert.Equal(ping.ThreadID(), "c1c3a1c4-5d4b-4de0-a9f8-56df4e3f23a3")

	res := NewPingResponse(&ping)
	assert.Equal(res.ThreadID(), ping.ID)
	assert.NotEqual(res.ID, ping.ID)
	assert.Equal(res.Type.String(), "did:sov:BzCbsNYhMrjHiqZDTUASHg;spec/trust_ping/1.0/ping_response")
}

func TestNewPing(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	ping := NewPing("")
	assert.Equal(ping.ThreadID(), ping.ID)

	data, err := json.Marshal(ping)
	assert.NoError(err)
	var m map[string]any
	assert.NoError(json.Unmarshal(data, &m))
	_, hasComment := m["comment"]
	assert.ThatNot(hasComment)
	assert.Equal(m["response_requested"].(bool), true)
}
