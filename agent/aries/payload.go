/*
Package aries is the agent-to-agent message union. Incoming JSON is mapped to
the correct Go struct by its @type with the help of the factoring system:
every known (family, type) pair has a decoder registered to Creator. Anything
else, including a missing or unparseable @type, is kept as a Generic message
which carries the raw JSON as is. We use statically typed JSON messages i.e.
known messages are always mapped to corresponding Go struct.
*/
package aries

import (
	"encoding/json"

	"github.com/findy-network/findy-common-go/dto"
	"github.com/findy-network/findy-didexchange/agent/pltype"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/findy-network/findy-didexchange/std/decorator"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Message is one agent-to-agent message. Body is a pointer to the Go struct
// of the Kind, e.g. *didexchange.Request, or json.RawMessage for Generic.
type Message struct {
	Kind Kind
	Type pltype.MessageType
	Body any
}

// Decoder builds the Go struct of the message from its JSON.
type Decoder func(data []byte) (any, error)

type factorKey struct {
	family  pltype.Family
	msgType string
}

type factor struct {
	kind   Kind
	decode Decoder
}

// Creator is the registry of the known messages.
var Creator = &Factor{factors: make(map[factorKey]factor)}

type Factor struct {
	factors map[factorKey]factor
}

// Add registers the decoder of the family's message type as the kind.
func (f *Factor) Add(family pltype.Family, msgType string, kind Kind, decode Decoder) {
	f.factors[factorKey{family, msgType}] = factor{kind: kind, decode: decode}
}

func (f *Factor) lookup(mt pltype.MessageType) (factor, bool) {
	fc, ok := f.factors[factorKey{mt.Family, mt.Type}]
	return fc, ok
}

type header struct {
	Type   json.RawMessage
	ID     string
	Thread *decorator.Thread
}

// readHeader reads the common fields of the JSON object. Fields that don't
// have their usual shape are left empty.
func readHeader(data []byte) (h header, err error) {
	var obj map[string]json.RawMessage
	if err = json.Unmarshal(data, &obj); err != nil {
		return h, core.Wrap(core.KindInvalidJSON, err, "message isn't a JSON object")
	}
	if obj == nil {
		return h, core.Errorf(core.KindInvalidJSON, "message is null")
	}
	h.Type = obj["@type"]
	_ = json.Unmarshal(obj["@id"], &h.ID)
	if t, ok := obj["~thread"]; ok {
		var thread decorator.Thread
		if json.Unmarshal(t, &thread) == nil {
			h.Thread = &thread
		}
	}
	return h, nil
}

// DecodeStrict is like Decode but a known type whose body doesn't match its
// Go struct is an InvalidJSON error.
func DecodeStrict(data []byte) (m *Message, err error) {
	defer err2.Handle(&err, "decode message")

	h, err := readHeader(data)
	if err != nil {
		if json.Valid(data) {
			return generic(data), nil
		}
		return nil, err
	}
	var typeStr string
	if json.Unmarshal(h.Type, &typeStr) != nil {
		return generic(data), nil
	}
	mt, err := pltype.Parse(typeStr)
	if err != nil {
		return generic(data), nil
	}
	fc, ok := Creator.lookup(mt)
	if !ok {
		glog.V(3).Infoln("unexpected @type, using generic:", typeStr)
		m = generic(data)
		m.Type = mt
		return m, nil
	}
	body, err := fc.decode(data)
	if err != nil {
		return nil, core.Wrap(core.KindInvalidJSON, err, mt.String())
	}
	return &Message{Kind: fc.kind, Type: mt, Body: body}, nil
}

// Decode maps the JSON to the Message of the @type. A known type with a
// malformed body degrades to Generic, like any JSON without @type. Only data
// which isn't JSON is an error.
func Decode(data []byte) (m *Message, err error) {
	m, err = DecodeStrict(data)
	if core.KindOf(err) == core.KindInvalidJSON {
		if _, hErr := readHeader(data); hErr == nil {
			glog.Warningln("malformed message body, using generic:", err)
			m = generic(data)
			m.Type, _ = pltype.Parse(typeOf(data))
			return m, nil
		}
	}
	return m, err
}

// New wraps the Go struct of a known message to Message. The kind is taken
// from its @type.
func New(body any) (m *Message, err error) {
	defer err2.Handle(&err, "new message")

	data := try.To1(json.Marshal(body))
	mt := try.To1(pltype.Parse(typeOf(data)))
	fc, ok := Creator.lookup(mt)
	if !ok {
		return nil, core.Errorf(core.KindInvalidJSON, "unknown message type %s", mt)
	}
	return &Message{Kind: fc.kind, Type: mt, Body: body}, nil
}

// NewGeneric wraps the JSON object to the Generic message.
func NewGeneric(data []byte) (m *Message, err error) {
	if _, err = readHeader(data); err != nil {
		return nil, err
	}
	return generic(data), nil
}

func generic(data []byte) *Message {
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	return &Message{Kind: Generic, Body: raw}
}

func typeOf(data []byte) string {
	var h struct {
		Type string `json:"@type"`
	}
	_ = json.Unmarshal(data, &h)
	return h.Type
}

// Encode returns the JSON of the message. Generic messages are returned as
// they were received.
func (m *Message) Encode() ([]byte, error) {
	if raw, ok := m.Body.(json.RawMessage); ok {
		return raw, nil
	}
	data, err := json.Marshal(m.Body)
	if err != nil {
		return nil, core.Wrap(core.KindInvalidJSON, err, "encode "+m.Kind.String())
	}
	return data, nil
}

// JSON is Encode for the messages we build ourselves, which always encode.
func (m *Message) JSON() []byte {
	return dto.ToJSONBytes(m.Body)
}

func (m *Message) header() header {
	data, err := m.Encode()
	if err != nil {
		return header{}
	}
	h, _ := readHeader(data)
	return h
}

// ID returns @id of the message.
func (m *Message) ID() string {
	return m.header().ID
}

// ThreadID returns thid of the message's ~thread or its @id if the message
// starts a thread.
func (m *Message) ThreadID() string {
	h := m.header()
	return h.Thread.ThreadID(h.ID)
}

// ParentThreadID returns pthid of the message's ~thread.
func (m *Message) ParentThreadID() string {
	if h := m.header(); h.Thread != nil {
		return h.Thread.PID
	}
	return ""
}

// As returns the body of the message as the type T.
func As[T any](m *Message) (*T, bool) {
	if m == nil {
		return nil, false
	}
	t, ok := m.Body.(*T)
	return t, ok
}
