// Package decorator has the Aries message decorators: ~thread, ~please_ack,
// ~l10n, ~timing and the attachment format.
package decorator

import (
	"encoding/base64"
	"time"

	"github.com/findy-network/findy-common-go/dto"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Thread is the ~thread decorator. ID is the thid of the message exchange
// and PID the parent's thid, e.g. the out-of-band invitation's @id.
type Thread struct {
	ID             string         `json:"thid,omitempty"`
	PID            string         `json:"pthid,omitempty"`
	SenderOrder    int            `json:"sender_order"`
	ReceivedOrders map[string]int `json:"received_orders,omitempty"`
}

func NewThread(ID, PID string) *Thread {
	realPID := ""
	if ID != PID {
		realPID = PID
	}
	return &Thread{ID: ID, PID: realPID}
}

func CheckThread(thread *Thread, ID string) *Thread {
	if thread == nil {
		return &Thread{ID: ID}
	}
	if thread.ID == "" {
		thread.ID = ID
	}
	return thread
}

// Clone returns a deep copy. Nil stays nil.
func (t *Thread) Clone() *Thread {
	if t == nil {
		return nil
	}
	c := *t
	if t.ReceivedOrders != nil {
		c.ReceivedOrders = make(map[string]int, len(t.ReceivedOrders))
		for k, v := range t.ReceivedOrders {
			c.ReceivedOrders[k] = v
		}
	}
	return &c
}

// IncrementReceived returns a copy of the thread where the received order
// of the sender is bumped.
func (t *Thread) IncrementReceived(sender string) *Thread {
	c := t.Clone()
	if c == nil {
		c = &Thread{}
	}
	if c.ReceivedOrders == nil {
		c.ReceivedOrders = make(map[string]int)
	}
	if _, ok := c.ReceivedOrders[sender]; ok {
		c.ReceivedOrders[sender]++
	} else {
		c.ReceivedOrders[sender] = 0
	}
	return c
}

// ThreadID returns thid of the thread or the fallback when not set.
func (t *Thread) ThreadID(fallback string) string {
	if t == nil || t.ID == "" {
		return fallback
	}
	return t.ID
}

// PleaseAck is the ~please_ack decorator.
type PleaseAck struct {
	On []string `json:"on,omitempty"`
}

// L10n is the ~l10n decorator.
type L10n struct {
	Locale string `json:"locale,omitempty"`
}

// Timing is the ~timing decorator.
type Timing struct {
	ExpiresTime string `json:"expires_time,omitempty"`
	OutTime     string `json:"out_time,omitempty"`
}

// Attachment is the Aries attachment decorator, used in fields ending with
// ~attach.
type Attachment struct {
	ID       string         `json:"@id"`
	MimeType string         `json:"mime-type,omitempty"`
	Data     AttachmentData `json:"data"`
}

// AttachmentData carries the payload of the attachment as base64.
type AttachmentData struct {
	Base64 string `json:"base64,omitempty"`
}

const (
	MimeTypeJSON = "application/json"
	MimeTypeText = "text/plain"
)

// NewJSONAttachment serializes v to JSON and wraps it to an attachment.
func NewJSONAttachment(id string, v any) *Attachment {
	return &Attachment{
		ID:       id,
		MimeType: MimeTypeJSON,
		Data: AttachmentData{
			Base64: base64.StdEncoding.EncodeToString(dto.ToJSONBytes(v)),
		},
	}
}

// NewAttachment wraps raw bytes to an attachment.
func NewAttachment(id, mimeType string, data []byte) *Attachment {
	return &Attachment{
		ID:       id,
		MimeType: mimeType,
		Data:     AttachmentData{Base64: base64.StdEncoding.EncodeToString(data)},
	}
}

// Content decodes the base64 payload. Both padded and unpadded, standard
// and URL encodings are accepted.
func (a *Attachment) Content() (data []byte, err error) {
	defer err2.Handle(&err, "attachment content")
	return try.To1(DecodeB64(a.Data.Base64)), nil
}

// DecodeB64 decodes base64 which can be URL or standard encoded with or
// without padding.
func DecodeB64(s string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{
		base64.URLEncoding, base64.StdEncoding,
		base64.RawURLEncoding, base64.RawStdEncoding,
	} {
		if data, err := enc.DecodeString(s); err == nil {
			return data, nil
		}
	}
	return base64.URLEncoding.DecodeString(s)
}

// Timestamp returns the time in the RFC 3339 format the Aries messages use.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
