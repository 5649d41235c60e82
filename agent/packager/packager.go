// Package packager packs and unpacks the JWM/1.0 envelopes of the legacy
// DIDComm wire format. Authcrypt is used when the sender key is known and
// Anoncrypt when it isn't. The format is the libsodium one, so the other
// Aries agents can read what we write.
package packager

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/bluele/gcache"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/mr-tron/base58"
	chacha "golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/nacl/box"
	"golang.org/x/crypto/poly1305"
)

const (
	encodingType = "JWM/1.0"
	encChacha    = "chacha20poly1305_ietf"
	algAuthcrypt = "Authcrypt"
	algAnoncrypt = "Anoncrypt"

	curveCacheSize = 256
)

// ErrNoRecipient is returned by Unpack when none of the recipient keys of the
// envelope is ours.
var ErrNoRecipient = errors.New("no key accessible")

type envelope struct {
	Protected  string `json:"protected"`
	IV         string `json:"iv"`
	CipherText string `json:"ciphertext"`
	Tag        string `json:"tag"`
}

type protected struct {
	Enc        string      `json:"enc"`
	Typ        string      `json:"typ"`
	Alg        string      `json:"alg"`
	Recipients []recipient `json:"recipients"`
}

type recipient struct {
	EncryptedKey string          `json:"encrypted_key"`
	Header       recipientHeader `json:"header"`
}

type recipientHeader struct {
	KID    string `json:"kid"`
	Sender string `json:"sender,omitempty"`
	IV     string `json:"iv,omitempty"`
}

// Envelope is the result of Unpack.
type Envelope struct {
	Message []byte

	// FromKey is empty for anonymous messages.
	FromKey string
	ToKey   string
}

type Packager struct {
	keys   core.KeyStore
	rand   io.Reader
	curves gcache.Cache
}

// New creates a packager which uses the keys of the key store to sign and to
// open the envelopes.
func New(keys core.KeyStore) *Packager {
	return &Packager{
		keys: keys,
		rand: rand.Reader,
		curves: gcache.New(curveCacheSize).LRU().
			LoaderFunc(func(key interface{}) (interface{}, error) {
				pub, err := base58.Decode(key.(string))
				if err != nil {
					return nil, err
				}
				return publicToCurve(pub)
			}).Build(),
	}
}

func (p *Packager) curvePub(verkey string) (*curveKey, error) {
	k, err := p.curves.Get(verkey)
	if err != nil {
		return nil, core.Wrap(core.KindInvalidVerkey, err, "verkey "+verkey)
	}
	return k.(*curveKey), nil
}

// Pack encrypts the message for all of the toKeys. Empty fromKey packs it
// anonymously.
func (p *Packager) Pack(msg []byte, fromKey string, toKeys []string) (out []byte, err error) {
	defer err2.Handle(&err, "pack")

	if len(toKeys) == 0 {
		return nil, errors.New("no recipient keys")
	}

	_, cek := try.To2(box.GenerateKey(p.rand))

	alg := algAnoncrypt
	if fromKey != "" {
		alg = algAuthcrypt
	}
	recipients := make([]recipient, 0, len(toKeys))
	for _, to := range toKeys {
		var r recipient
		if fromKey != "" {
			r = try.To1(p.authRecipient(cek, fromKey, to))
		} else {
			r = try.To1(p.anonRecipient(cek, to))
		}
		recipients = append(recipients, r)
	}

	protectedBytes := try.To1(json.Marshal(protected{
		Enc:        encChacha,
		Typ:        encodingType,
		Alg:        alg,
		Recipients: recipients,
	}))
	aad := base64.URLEncoding.EncodeToString(protectedBytes)

	nonce := make([]byte, chacha.NonceSize)
	try.To1(io.ReadFull(p.rand, nonce))
	aead := try.To1(chacha.New(cek[:]))
	sealed := aead.Seal(nil, nonce, msg, []byte(aad))
	tagStart := len(sealed) - poly1305.TagSize

	glog.V(5).Infof("packed %s for %d recipients", alg, len(toKeys))
	return json.Marshal(envelope{
		Protected:  aad,
		IV:         base64.URLEncoding.EncodeToString(nonce),
		CipherText: base64.URLEncoding.EncodeToString(sealed[:tagStart]),
		Tag:        base64.URLEncoding.EncodeToString(sealed[tagStart:]),
	})
}

func (p *Packager) authRecipient(cek *curveKey, fromKey, toKey string) (r recipient, err error) {
	defer err2.Handle(&err, "recipient %s", toKey)

	senderPriv := try.To1(p.keys.SigningKey(fromKey))
	senderSK := try.To1(secretToCurve(senderPriv))
	recPK := try.To1(p.curvePub(toKey))

	var nonce [24]byte
	try.To1(io.ReadFull(p.rand, nonce[:]))
	encCEK := box.Seal(nil, cek[:], &nonce, recPK, senderSK)
	encSender := try.To1(sealBox([]byte(fromKey), recPK, p.rand))

	return recipient{
		EncryptedKey: base64.URLEncoding.EncodeToString(encCEK),
		Header: recipientHeader{
			KID:    toKey,
			Sender: base64.URLEncoding.EncodeToString(encSender),
			IV:     base64.URLEncoding.EncodeToString(nonce[:]),
		},
	}, nil
}

func (p *Packager) anonRecipient(cek *curveKey, toKey string) (r recipient, err error) {
	defer err2.Handle(&err, "recipient %s", toKey)

	recPK := try.To1(p.curvePub(toKey))
	encCEK := try.To1(sealBox(cek[:], recPK, p.rand))
	return recipient{
		EncryptedKey: base64.URLEncoding.EncodeToString(encCEK),
		Header:       recipientHeader{KID: toKey},
	}, nil
}

// Unpack opens the envelope with the first recipient key we own.
func (p *Packager) Unpack(data []byte) (env *Envelope, err error) {
	defer err2.Handle(&err, "unpack")

	var e envelope
	try.To(json.Unmarshal(data, &e))
	protectedBytes := try.To1(base64.URLEncoding.DecodeString(e.Protected))
	var prot protected
	try.To(json.Unmarshal(protectedBytes, &prot))

	if prot.Typ != encodingType {
		return nil, fmt.Errorf("message type %s not supported", prot.Typ)
	}
	if prot.Alg != algAuthcrypt && prot.Alg != algAnoncrypt {
		return nil, fmt.Errorf("message format %s not supported", prot.Alg)
	}

	var rec *recipient
	for i := range prot.Recipients {
		if p.keys.Has(prot.Recipients[i].Header.KID) {
			rec = &prot.Recipients[i]
			break
		}
	}
	if rec == nil {
		return nil, ErrNoRecipient
	}

	recPriv := try.To1(p.keys.SigningKey(rec.Header.KID))
	recSK := try.To1(secretToCurve(recPriv))
	recPK := try.To1(p.curvePub(rec.Header.KID))
	encCEK := try.To1(base64.URLEncoding.DecodeString(rec.EncryptedKey))

	env = &Envelope{ToKey: rec.Header.KID}
	var cek []byte
	if prot.Alg == algAuthcrypt {
		encSender := try.To1(base64.URLEncoding.DecodeString(rec.Header.Sender))
		sender := try.To1(sealOpen(encSender, recPK, recSK))
		env.FromKey = string(sender)
		senderPK := try.To1(p.curvePub(env.FromKey))

		nonceBytes := try.To1(base64.URLEncoding.DecodeString(rec.Header.IV))
		if len(nonceBytes) != 24 {
			return nil, errors.New("invalid recipient nonce")
		}
		var nonce [24]byte
		copy(nonce[:], nonceBytes)
		var ok bool
		cek, ok = box.Open(nil, encCEK, &nonce, senderPK, recSK)
		if !ok {
			return nil, errors.New("failed to decrypt CEK")
		}
	} else {
		cek = try.To1(sealOpen(encCEK, recPK, recSK))
	}
	if len(cek) != chacha.KeySize {
		return nil, errors.New("invalid CEK size")
	}

	cipherText := try.To1(base64.URLEncoding.DecodeString(e.CipherText))
	tag := try.To1(base64.URLEncoding.DecodeString(e.Tag))
	nonce := try.To1(base64.URLEncoding.DecodeString(e.IV))
	if len(nonce) != chacha.NonceSize {
		return nil, errors.New("invalid content nonce")
	}
	aead := try.To1(chacha.New(cek))
	env.Message = try.To1(aead.Open(nil, nonce, append(cipherText, tag...), []byte(e.Protected)))

	glog.V(5).Infoln("unpacked", prot.Alg, "for", env.ToKey)
	return env, nil
}
