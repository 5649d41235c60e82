package did

import (
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/findy-network/findy-didexchange/core"
	b58 "github.com/mr-tron/base58"
)

const (
	didKeyPrefix    = "did:key:"
	multibaseBase58 = 'z'
	ed25519Codec    = 0xed
)

// IsDIDKey tells if the key is in did:key format.
func IsDIDKey(key string) bool {
	return strings.HasPrefix(key, didKeyPrefix)
}

// VerkeyFromDIDKey returns the base58 verkey of the did:key formatted ed25519
// key, e.g. did:key:z6MkmjY8GnV5i9YTDtPETC2uUAW6ejw3nk5mXF5yci5ab7th. A key
// fragment after '#' is ignored.
func VerkeyFromDIDKey(key string) (string, error) {
	id := strings.Split(key, "#")[0]
	parts := strings.Split(id, ":")
	if len(parts) != 3 || parts[2] == "" || parts[2][0] != multibaseBase58 {
		return "", core.Errorf(core.KindInvalidVerkey, "unsupported did:key %q", key)
	}
	bytes := base58.Decode(parts[2][1:])
	if len(bytes) < 2 || bytes[0] != ed25519Codec {
		return "", core.Errorf(core.KindInvalidVerkey, "not an ed25519 did:key %q", key)
	}
	return b58.Encode(bytes[2:]), nil
}

// DIDKeyFromVerkey is the inverse of VerkeyFromDIDKey.
func DIDKeyFromVerkey(verkey string) (string, error) {
	raw, err := b58.Decode(verkey)
	if err != nil {
		return "", core.Errorf(core.KindInvalidVerkey, "invalid base58 in %q", verkey)
	}
	data := append([]byte{ed25519Codec, 0x01}, raw...)
	return didKeyPrefix + string(multibaseBase58) + base58.Encode(data), nil
}
