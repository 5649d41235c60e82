package psm

import (
	"errors"
	"sort"

	"github.com/findy-network/findy-didexchange/agent/storage/wrapper"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// ErrNotFound is returned when the record isn't stored.
var ErrNotFound = wrapper.ErrDataNotFound

// DB is the PSM database. It's safe for concurrent use.
type DB struct {
	sp       *wrapper.StorageProvider
	psm      *wrapper.Store
	pairwise *wrapper.Store
	basicMsg *wrapper.Store
}

func (db *DB) Close() error {
	return db.sp.Close()
}

func (db *DB) AddPSM(p *PSM) (err error) {
	defer err2.Handle(&err, "add psm %s", p.Key)

	glog.V(7).Infoln("add PSM:", p.Key, len(p.States))
	return db.psm.Put(p.Key.String(), p.Data())
}

func (db *DB) GetPSM(key StateKey) (m *PSM, err error) {
	defer err2.Handle(&err, "get psm %s", key)

	return NewPSM(try.To1(db.psm.Get(key.String()))), nil
}

// IsPSMReady tells if the connection of the key has completed or failed.
func (db *DB) IsPSMReady(key StateKey) (yes bool, err error) {
	defer err2.Handle(&err, "is ready")

	return try.To1(db.GetPSM(key)).IsReady(), nil
}

// AllPSM returns the PSMs of the owner DID which have changed since the
// timestamp, oldest first. Nil tsSince returns all of them.
func (db *DB) AllPSM(did string, tsSince *int64) (m []PSM, err error) {
	defer err2.Handle(&err, "all psm %s", did)

	_ = try.To1(db.psm.GetAll(func(value []byte) []byte {
		p := NewPSM(value)
		if p.Key.DID == did && (tsSince == nil || p.Timestamp() >= *tsSince) {
			m = append(m, *p)
		}
		return value
	}))
	sort.Slice(m, func(i, j int) bool {
		return m[i].Timestamp() < m[j].Timestamp()
	})
	return m, nil
}

// RmPSM removes the PSM and the pairwise of it.
func (db *DB) RmPSM(key StateKey) (err error) {
	defer err2.Handle(&err, "rm psm %s", key)

	glog.V(1).Infoln("--- rm PSM:", key)
	try.To(db.pairwise.Delete(key.String()))
	return db.psm.Delete(key.String())
}

func (db *DB) AddPairwiseRep(p *PairwiseRep) error {
	return db.pairwise.Put(p.Key.String(), p.Data())
}

func (db *DB) GetPairwiseRep(k StateKey) (m *PairwiseRep, err error) {
	defer err2.Handle(&err, "get pairwise %s", k)

	return NewPairwiseRep(try.To1(db.pairwise.Get(k.String()))), nil
}

func (db *DB) AddBasicMessageRep(p *BasicMessageRep) error {
	return db.basicMsg.Put(p.Key.String(), p.Data())
}

func (db *DB) GetBasicMessageRep(k StateKey) (m *BasicMessageRep, err error) {
	defer err2.Handle(&err, "get basic message %s", k)

	return NewBasicMessageRep(try.To1(db.basicMsg.Get(k.String()))), nil
}

// BasicMessages returns the basic messages of the owner's connection in the
// order of their timestamps.
func (db *DB) BasicMessages(did, pwName string) (m []BasicMessageRep, err error) {
	defer err2.Handle(&err, "basic messages %s", pwName)

	_ = try.To1(db.basicMsg.GetAll(func(value []byte) []byte {
		rep := NewBasicMessageRep(value)
		if rep.Key.DID == did && rep.PwName == pwName {
			m = append(m, *rep)
		}
		return value
	}))
	sort.Slice(m, func(i, j int) bool {
		return m[i].Timestamp < m[j].Timestamp
	})
	return m, nil
}

// IsNotFound tells if the error is about a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
