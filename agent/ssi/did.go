package ssi

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// DID is our own DID with its verkey. The private key never leaves the
// wallet.
type DID struct {
	DID    string
	VerKey string
}

func (d DID) Did() string {
	return d.DID
}

func (d DID) URI() string {
	return "did:sov:" + d.DID
}

// didFromVerkey makes the Indy style DID of the public key: base58 of its
// first 16 bytes.
func didFromVerkey(pub ed25519.PublicKey) string {
	return base58.Encode(pub[:16])
}

type keyRecord struct {
	DID     string
	VerKey  string
	PrivKey []byte
}
