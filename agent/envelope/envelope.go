/*
Package envelope builds and opens the wire payloads between the agents. The
message is packed for the recipient keys of the receiver's DID document and
then wrapped once per routing key to a Forward which is packed anonymously
for that routing key. Opening peels one layer at a time because every hop
holds only its own key.
*/
package envelope

import (
	"github.com/findy-network/findy-didexchange/agent/aries"
	"github.com/findy-network/findy-didexchange/agent/packager"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/findy-network/findy-didexchange/std/common"
	"github.com/findy-network/findy-didexchange/std/did"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type Envelope struct {
	packer *packager.Packager
}

// New returns an envelope builder which uses the keys of the key store.
func New(keys core.KeyStore) *Envelope {
	return &Envelope{packer: packager.New(keys)}
}

// Create packs the message for the recipient. Empty senderVK makes the
// innermost layer anonymous. Only the outermost ciphertext is returned.
func (e *Envelope) Create(msg *aries.Message, senderVK string, recipient *did.Doc) (out []byte, err error) {
	defer err2.Handle(&err, "envelope create")

	data := try.To1(msg.Encode())
	return e.CreateBytes(data, senderVK, recipient)
}

// CreateBytes is Create for the already encoded message.
func (e *Envelope) CreateBytes(data []byte, senderVK string, recipient *did.Doc) (out []byte, err error) {
	defer err2.Handle(&err, "envelope create")

	if recipient == nil {
		return nil, core.Errorf(core.KindInvalidDIDDoc, "no recipient DID document")
	}
	recipientKeys, routingKeys := recipient.ResolveKeys()
	if len(recipientKeys) == 0 {
		return nil, core.Errorf(core.KindInvalidDIDDoc, "no recipient keys")
	}

	out = try.To1(e.packer.Pack(data, senderVK, recipientKeys))
	to := recipientKeys[0]
	for _, routingKey := range routingKeys {
		fwd := common.NewForward(to, out)
		fwdMsg := try.To1(aries.New(fwd))
		out = try.To1(e.packer.Pack(fwdMsg.JSON(), "", []string{routingKey}))
		to = routingKey
	}
	glog.V(3).Infof("envelope created, %d routing hops", len(routingKeys))
	return out, nil
}

// Open decrypts one layer of the envelope and decodes the message in it.
// Every failure is InvalidAgencyResponse.
func (e *Envelope) Open(data []byte) (msg *aries.Message, err error) {
	msg, _, err = e.OpenWithSender(data)
	return msg, err
}

// OpenWithSender is Open which returns the sender verkey as well. It's empty
// when the layer was packed anonymously.
func (e *Envelope) OpenWithSender(data []byte) (msg *aries.Message, senderVK string, err error) {
	defer err2.Handle(&err, func(err error) error {
		return core.Wrap(core.KindInvalidAgencyResponse, err, "envelope open")
	})

	env := try.To1(e.packer.Unpack(data))
	msg = try.To1(aries.DecodeStrict(env.Message))
	return msg, env.FromKey, nil
}

// OpenForward opens one layer which must be a Forward. It returns the key the
// inner envelope is addressed to and the inner envelope.
func (e *Envelope) OpenForward(data []byte) (to string, inner []byte, err error) {
	msg, err := e.Open(data)
	if err != nil {
		return "", nil, err
	}
	fwd, ok := aries.As[common.Forward](msg)
	if !ok {
		return "", nil, core.Errorf(core.KindInvalidAgencyResponse,
			"expected forward, got %s", msg.Kind)
	}
	return fwd.To, fwd.Msg, nil
}
