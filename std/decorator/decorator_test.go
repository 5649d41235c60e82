package decorator

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/lainio/err2/assert"
)

func TestNewThread(t *testing.T) {
	type args struct {
		ID  string
		PID string
	}
	tests := []struct {
		name string
		args args
		want *Thread
	}{
		{"PID empty", args{ID: "12345", PID: ""}, &Thread{ID: "12345"}},
		{"PID same", args{ID: "12345", PID: "12345"}, &Thread{ID: "12345"}},
		{"PID different", args{ID: "12345", PID: "123456"}, &Thread{ID: "12345", PID: "123456"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewThread(tt.args.ID, tt.args.PID); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NewThread() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckThread(t *testing.T) {
	orgID := "ORG_ID_VALUE"
	id := "ID_VALUE"
	pid := "PID_VALUE"
	want := &Thread{ID: id}
	wantOrg := &Thread{ID: orgID}
	wantPID := &Thread{ID: id, PID: pid}
	wantOrgWithPID := &Thread{ID: orgID, PID: pid}

	type args struct {
		thread *Thread
		ID     string
	}
	tests := []struct {
		name string
		args args
		want *Thread
	}{
		{"was nil", args{thread: nil, ID: id}, want},
		{"was empty", args{thread: &Thread{}, ID: id}, want},
		{"was pid", args{thread: &Thread{ID: "", PID: pid}, ID: id}, wantPID},
		{"was org", args{thread: &Thread{ID: orgID}, ID: id}, wantOrg},
		{"was org and pid", args{thread: &Thread{ID: orgID, PID: pid}, ID: id}, wantOrgWithPID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckThread(tt.args.thread, tt.args.ID); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CheckThread() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestThread_IncrementReceived(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	org := &Thread{ID: "thid"}
	th := org.IncrementReceived("did1")
	assert.Equal(th.ReceivedOrders["did1"], 0)
	th2 := th.IncrementReceived("did1")
	assert.Equal(th2.ReceivedOrders["did1"], 1)

	// the originals stay untouched
	assert.That(org.ReceivedOrders == nil)
	assert.Equal(th.ReceivedOrders["did1"], 0)

	var nilThread *Thread
	assert.Equal(nilThread.ThreadID("fallback"), "fallback")
	assert.Equal(th2.ThreadID("fallback"), "thid")
}

func TestThread_JSON(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	data, err := json.Marshal(&Thread{ID: "a", PID: "b"})
	assert.NoError(err)
	assert.Equal(string(data), `{"thid":"a","pthid":"b","sender_order":0}`)
}

func TestAttachment(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	a := NewJSONAttachment("libindy-cred-offer-0", map[string]string{"key": "value"})
	data, err := a.Content()
	assert.NoError(err)
	assert.Equal(string(data), `{"key":"value"}`)

	raw := NewAttachment("id", MimeTypeText, []byte("sure."))
	data, err = raw.Content()
	assert.NoError(err)
	assert.Equal(string(data), "sure.")
}

func TestDecodeB64(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	const strPadded = "c3VyZS4="
	const strUnpadded = "c3VyZS4"

	res1, err := DecodeB64(strPadded)
	assert.NoError(err)
	res2, err := DecodeB64(strUnpadded)
	assert.NoError(err)
	assert.DeepEqual(res1, res2)

	_, err = DecodeB64("!!!")
	assert.Error(err)
}
