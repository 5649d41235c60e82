package wrapper

import (
	"github.com/findy-network/findy-common-go/crypto/db"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Store is one bucket of the storage.
type Store struct {
	bucketID byte
	name     string
	owner    *StorageProvider
}

// Put stores the key + value pair. An existing value is overwritten.
func (b *Store) Put(key string, value []byte) (err error) {
	glog.V(level7).Infoln("Store::Put", b.name, key)

	return b.owner.addData(b.bucketID, []byte(key), value)
}

// Get fetches the value associated with the given key. If key cannot be
// found, ErrDataNotFound is returned.
func (b *Store) Get(key string) (data []byte, err error) {
	defer err2.Handle(&err)

	glog.V(level7).Infoln("Store::Get", b.name, key)

	data, found := try.To2(b.owner.getData(b.bucketID, []byte(key)))
	if !found || len(data) == 0 {
		return nil, ErrDataNotFound
	}

	return data, nil
}

// Has tells if the key is stored.
func (b *Store) Has(key string) bool {
	_, found, err := b.owner.getData(b.bucketID, []byte(key))
	return err == nil && found
}

// Delete deletes the key + value pair associated with key.
func (b *Store) Delete(key string) error {
	glog.V(level7).Infoln("Store::Delete", b.name, key)

	return b.owner.deleteData(b.bucketID, []byte(key))
}

// GetAll returns all of the values of the store. The transform is called
// for every decrypted value.
func (b *Store) GetAll(transform db.Filter) ([][]byte, error) {
	glog.V(level7).Infoln("Store::GetAll", b.name)

	return b.owner.getAll(b.bucketID, transform)
}
