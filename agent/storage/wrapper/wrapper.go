// Package wrapper is the sealed key value storage of the agent. It's a bolt
// DB file where the keys are hashed and the values encrypted with the
// storage key. Every bucket is opened as its own Store.
package wrapper

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/findy-network/findy-common-go/crypto"
	"github.com/findy-network/findy-common-go/crypto/db"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const level7 = 7

// ErrDataNotFound is returned by Get when the key isn't stored.
var ErrDataNotFound = errors.New("data not found")

type Config struct {
	// Key is the hex encoded 32 byte storage key. Empty key means that the
	// data is stored as is, which is for tests only.
	Key       string
	FileName  string
	FilePath  string
	BucketIDs []string
}

type StorageProvider struct {
	l sync.RWMutex

	conf    Config
	db      db.Handle
	buckets map[string]*Store
	cipher  *crypto.Cipher
}

func New(config Config) *StorageProvider {
	s := &StorageProvider{
		l:       sync.RWMutex{},
		conf:    config,
		db:      nil,
		buckets: make(map[string]*Store),
	}

	var bucketKey byte
	for _, name := range s.conf.BucketIDs {
		s.buckets[name] = &Store{owner: s, bucketID: bucketKey, name: name}
		bucketKey++
	}

	return s
}

// Filename returns the path of the bolt file.
func (s *StorageProvider) Filename() string {
	path := "."
	if s.conf.FilePath != "" {
		path = s.conf.FilePath
	}
	return filepath.Join(path, s.conf.FileName+".bolt")
}

func (s *StorageProvider) Init() (err error) {
	defer err2.Handle(&err, "storage open")

	s.l.Lock()
	defer s.l.Unlock()

	if s.db != nil {
		glog.V(level7).Infof("skipping storage initialization for %s, already open", s.conf.FileName)
		return nil
	}

	if len(s.conf.BucketIDs) == 0 {
		return fmt.Errorf("no buckets specified")
	}

	if s.conf.Key != "" {
		k := try.To1(hex.DecodeString(s.conf.Key))
		s.cipher = crypto.NewCipher(k)
	}

	mgdBuckets := make([][]byte, 0, len(s.conf.BucketIDs))
	var bucketKey byte
	for range s.conf.BucketIDs {
		mgdBuckets = append(mgdBuckets, []byte{bucketKey})
		bucketKey++
	}

	filename := s.Filename()
	// this will not open the file handle to db, just initializes it
	s.db = db.New(db.Cfg{
		Filename:   filename,
		Buckets:    mgdBuckets,
		BackupName: filename + "_backup",
	})
	glog.V(1).Infoln("storage initialized:", filename)

	return nil
}

func (s *StorageProvider) ID() string {
	return s.conf.FileName
}

// OpenStore returns the store of the bucket.
func (s *StorageProvider) OpenStore(name string) (*Store, error) {
	glog.V(level7).Infoln("StorageProvider::OpenStore", s.ID(), name)

	if b, ok := s.buckets[name]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("store %s not found", name)
}

func (s *StorageProvider) Close() (err error) {
	defer err2.Handle(&err, "storage close")

	s.l.Lock()
	defer s.l.Unlock()

	if s.db == nil {
		glog.V(level7).Infof("skipping storage close for %s, already closed", s.conf.FileName)
		return nil
	}

	try.To(s.db.Close())
	s.db = nil
	return nil
}

func (s *StorageProvider) addData(bucketID byte, key, value []byte) (err error) {
	s.l.RLock()
	defer s.l.RUnlock()

	if s.db == nil {
		return fmt.Errorf("storage %s isn't open", s.conf.FileName)
	}
	return s.db.AddKeyValueToBucket([]byte{bucketID},
		&db.Data{
			Data: value,
			Read: s.encrypt,
		},
		&db.Data{
			Data: key,
			Read: s.hash,
		},
	)
}

func (s *StorageProvider) hash(key []byte) (k []byte) {
	if s.cipher != nil {
		h := md5.Sum(key)
		return h[:]
	}
	return append(key[:0:0], key...)
}

func (s *StorageProvider) encrypt(value []byte) (k []byte) {
	if s.cipher != nil {
		return s.cipher.TryEncrypt(value)
	}
	return append(value[:0:0], value...)
}

func (s *StorageProvider) decrypt(value []byte) (k []byte) {
	if s.cipher != nil {
		return s.cipher.TryDecrypt(value)
	}
	return append(value[:0:0], value...)
}

func (s *StorageProvider) getData(bucketID byte, key []byte) (value []byte, found bool, err error) {
	s.l.RLock()
	defer s.l.RUnlock()

	if s.db == nil {
		return nil, false, fmt.Errorf("storage %s isn't open", s.conf.FileName)
	}
	data := &db.Data{
		Write: s.decrypt,
		Use: func(d []byte) interface{} {
			value = d
			return nil
		},
	}
	found, err = s.db.GetKeyValueFromBucket([]byte{bucketID},
		&db.Data{
			Data: key,
			Read: s.hash,
		},
		data)

	return value, found, err
}

func (s *StorageProvider) deleteData(bucketID byte, key []byte) (err error) {
	s.l.RLock()
	defer s.l.RUnlock()

	if s.db == nil {
		return fmt.Errorf("storage %s isn't open", s.conf.FileName)
	}
	return s.db.RmKeyValueFromBucket([]byte{bucketID}, &db.Data{
		Data: key,
		Read: s.hash,
	})
}

func (s *StorageProvider) getAll(bucketID byte, transform db.Filter) (res [][]byte, err error) {
	s.l.RLock()
	defer s.l.RUnlock()

	if s.db == nil {
		return nil, fmt.Errorf("storage %s isn't open", s.conf.FileName)
	}
	return s.db.GetAllValuesFromBucket([]byte{bucketID}, s.decrypt, transform)
}
