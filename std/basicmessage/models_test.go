package basicmessage

import (
	"testing"
	"time"

	"github.com/findy-network/findy-common-go/dto"
	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/lainio/err2/assert"
)

var timeJSON = "{\"sent_time\":\"2020-03-20 12:06:36.225671Z\"}"
var timeJSONRFC3339 = "{\"sent_time\":\"2022-09-30T12:31:05.923762Z\"}"

var mbJSON = `{
    "@type": "did:sov:BzCbsNYhMrjHiqZDTUASHg;spec/basicmessage/1.0/message",
    "@id": "a70a5db1-0b35-41d2-a602-e355ec4df67f",
    "content": "test",
    "sent_time": "2020-01-20 12:06:36.225671Z"
  }`

func TestNewTimeField(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	var testMsg Basicmessage
	dto.FromJSON([]byte(timeJSON), &testMsg)
	timeValue := testMsg.SentTime

	assert.INotNil(timeValue)
	assert.Equal(timeValue.Year(), 2020)
	assert.Equal(timeValue.Month(), time.March)
	assert.Equal(timeValue.Day(), 20)
}

func TestNewTimeFieldRFC3339(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	var testMsg Basicmessage
	dto.FromJSON([]byte(timeJSONRFC3339), &testMsg)
	timeValue := testMsg.SentTime

	assert.INotNil(timeValue)
	assert.Equal(timeValue.Year(), 2022)
	assert.Equal(timeValue.Month(), time.September)
	assert.Equal(timeValue.Day(), 30)
}

func TestBasicmessage_ReadJSON(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	var msg Basicmessage
	dto.FromJSON([]byte(mbJSON), &msg)

	assert.Equal(msg.ID, "a70a5db1-0b35-41d2-a602-e355ec4df67f")
	assert.Equal(msg.Content, "test")
	assert.That(msg.Type.Is(pltype.Basicmessage, pltype.HandlerMessage))
	assert.Equal(msg.SentTime.Month(), time.January)
}

func TestNew(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	msg := New("hello")
	data := dto.ToJSONBytes(msg)

	var got Basicmessage
	dto.FromJSON(data, &got)
	assert.Equal(got.Content, "hello")
	assert.Equal(got.ID, msg.ID)
	assert.Equal(got.L10n.Locale, "en")
	assert.That(got.SentTime.Sub(msg.SentTime.Time) < time.Microsecond)
}
