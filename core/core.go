// Package core holds the small set of interfaces and error kinds that the
// rest of the module depends on. It imports nothing from the module itself.
package core

// Signer signs and verifies with ed25519 keys addressed by their base58
// verkey.
type Signer interface {
	Sign(verkey string, data []byte) ([]byte, error)
	Verify(verkey string, data, signature []byte) (bool, error)
}

// KeyStore gives access to the private half of our own keys. Packing and
// unpacking of envelopes needs it.
type KeyStore interface {
	// SigningKey returns the 64 byte ed25519 private key of the verkey.
	SigningKey(verkey string) ([]byte, error)

	// Has tells if the private key of the verkey is stored.
	Has(verkey string) bool
}

// Wallet is the key management collaborator of the agent.
type Wallet interface {
	Signer
	KeyStore

	// CreateAndStoreMyDID creates a new ed25519 key pair, stores it and
	// returns the DID and verkey of it. Empty seed means a random key.
	CreateAndStoreMyDID(seed string) (did, verkey string, err error)
}
