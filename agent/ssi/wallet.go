/*
Package ssi is the key wallet of the agent. It creates and stores the ed25519
keys of our DIDs and signs with them. The keys are kept in the sealed bolt
storage and cached in memory when they are used.

A wallet without a file name lives only in memory, which is what the tests and
the short lived CLI runs need.
*/
package ssi

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/findy-network/findy-common-go/dto"
	"github.com/findy-network/findy-didexchange/agent/storage/wrapper"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/mr-tron/base58"
)

const (
	bucketKeys = "keys"
	bucketDIDs = "dids"
)

// Wallet implements core.Wallet.
type Wallet struct {
	sync.Mutex

	storage *wrapper.StorageProvider
	keys    *wrapper.Store
	dids    *wrapper.Store
	cache   Cache
	myDIDs  []DID
}

var _ core.Wallet = (*Wallet)(nil)

// NewWallet creates the wallet of the storage config. The bucket IDs of the
// config are set by the wallet. Call Open before use.
func NewWallet(cfg wrapper.Config) *Wallet {
	cfg.BucketIDs = []string{bucketKeys, bucketDIDs}
	return &Wallet{storage: wrapper.New(cfg)}
}

// NewMemWallet creates a wallet that isn't persisted.
func NewMemWallet() *Wallet {
	return &Wallet{}
}

// Open opens the storage and loads our DIDs from it.
func (w *Wallet) Open() (err error) {
	defer err2.Handle(&err, func(err error) error {
		return core.Wrap(core.KindInvalidWallet, err, "wallet open")
	})

	if w.storage == nil {
		return nil
	}
	try.To(w.storage.Init())
	w.keys = try.To1(w.storage.OpenStore(bucketKeys))
	w.dids = try.To1(w.storage.OpenStore(bucketDIDs))

	w.Lock()
	defer w.Unlock()
	w.myDIDs = w.myDIDs[:0]
	_ = try.To1(w.dids.GetAll(func(value []byte) []byte {
		var d DID
		dto.FromJSON(value, &d)
		w.myDIDs = append(w.myDIDs, d)
		return value
	}))
	glog.V(1).Infof("wallet %s opened, %d DIDs", w.storage.ID(), len(w.myDIDs))
	return nil
}

// Close closes the storage. The cached keys stay until the wallet is gone.
func (w *Wallet) Close() error {
	if w.storage == nil {
		return nil
	}
	return w.storage.Close()
}

// CreateAndStoreMyDID creates a new key pair. A seed must be 32 bytes long,
// empty seed means a random key.
func (w *Wallet) CreateAndStoreMyDID(seed string) (did, verkey string, err error) {
	defer err2.Handle(&err, "create DID")

	var priv ed25519.PrivateKey
	switch len(seed) {
	case 0:
		_, priv = try.To2(ed25519.GenerateKey(rand.Reader))
	case ed25519.SeedSize:
		priv = ed25519.NewKeyFromSeed([]byte(seed))
	default:
		return "", "", core.Errorf(core.KindInvalidOption,
			"seed length %d, must be %d", len(seed), ed25519.SeedSize)
	}
	pub := priv.Public().(ed25519.PublicKey)
	d := DID{DID: didFromVerkey(pub), VerKey: base58.Encode(pub)}

	if w.keys != nil {
		rec := keyRecord{DID: d.DID, VerKey: d.VerKey, PrivKey: priv}
		try.To(w.keys.Put(d.VerKey, dto.ToGOB(rec)))
		try.To(w.dids.Put(d.DID, dto.ToJSONBytes(d)))
	}
	w.cache.Add(d.VerKey, priv)

	w.Lock()
	w.myDIDs = append(w.myDIDs, d)
	w.Unlock()

	glog.V(7).Infoln("new DID:", d.DID, "verkey:", d.VerKey)
	return d.DID, d.VerKey, nil
}

// MyDIDs returns all of our DIDs in the order they were created or loaded.
func (w *Wallet) MyDIDs() []DID {
	w.Lock()
	defer w.Unlock()
	return append([]DID(nil), w.myDIDs...)
}

// VerkeyOf returns the verkey of our DID.
func (w *Wallet) VerkeyOf(did string) (string, bool) {
	w.Lock()
	defer w.Unlock()
	for _, d := range w.myDIDs {
		if d.DID == did {
			return d.VerKey, true
		}
	}
	return "", false
}

// SigningKey returns the 64 byte private key of the verkey.
func (w *Wallet) SigningKey(verkey string) (key []byte, err error) {
	defer err2.Handle(&err, "signing key")

	if k, ok := w.cache.Get(verkey); ok {
		return k, nil
	}
	if w.keys == nil {
		return nil, core.Errorf(core.KindInvalidVerkey, "key not found: %s", verkey)
	}
	data, err := w.keys.Get(verkey)
	if err != nil {
		return nil, core.Wrap(core.KindInvalidVerkey, err, "key not found: "+verkey)
	}
	var rec keyRecord
	dto.FromGOB(data, &rec)
	if len(rec.PrivKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("stored key of %s is corrupted", verkey)
	}
	w.cache.Add(verkey, rec.PrivKey)
	return rec.PrivKey, nil
}

// Has tells if we own the private key of the verkey.
func (w *Wallet) Has(verkey string) bool {
	if _, ok := w.cache.Get(verkey); ok {
		return true
	}
	return w.keys != nil && w.keys.Has(verkey)
}

// Sign signs the data with the private key of the verkey.
func (w *Wallet) Sign(verkey string, data []byte) (sig []byte, err error) {
	defer err2.Handle(&err, "sign")

	key := try.To1(w.SigningKey(verkey))
	return ed25519.Sign(key, data), nil
}

// Verify checks the signature with any verkey, it doesn't need to be ours.
func (w *Wallet) Verify(verkey string, data, signature []byte) (bool, error) {
	return Verify(verkey, data, signature)
}

// Verify checks the ed25519 signature of the base58 verkey.
func Verify(verkey string, data, signature []byte) (bool, error) {
	pub, err := base58.Decode(verkey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false, core.Errorf(core.KindInvalidVerkey, "verkey: %s", verkey)
	}
	return ed25519.Verify(pub, data, signature), nil
}
