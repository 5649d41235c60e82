package utils

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type (
	keyDID    = string
	valueType = []string
)

type regMapType map[keyDID]valueType

// Reg is a JSON file backed register of DIDs and their values. The mediator
// keeps its pairwise agents in it.
type Reg struct {
	r regMapType
	l sync.Mutex
}

func newReg(data []byte) (r *regMapType, err error) {
	r = new(regMapType)
	if err = json.Unmarshal(data, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reg) Exist(key keyDID) bool {
	r.l.Lock()
	defer r.l.Unlock()
	_, ok := r.r[key]
	return ok
}

func (r *Reg) Get(key keyDID) ([]string, bool) {
	r.l.Lock()
	defer r.l.Unlock()
	v, ok := r.r[key]
	return v, ok
}

func (r *Reg) Add(key keyDID, value ...string) {
	glog.V(3).Infof("register add: %s -> %s\n", key, value)
	r.l.Lock()
	defer r.l.Unlock()
	if r.r == nil {
		r.r = make(regMapType)
	}
	r.r[key] = value
}

func (r *Reg) Delete(key keyDID) {
	glog.V(3).Infoln("register delete:", key)
	r.l.Lock()
	defer r.l.Unlock()
	delete(r.r, key)
}

func (r *Reg) Len() int {
	r.l.Lock()
	defer r.l.Unlock()
	return len(r.r)
}

// Load reads the register from the file. A missing file is created empty,
// an empty filename resets the register in memory.
func (r *Reg) Load(filename string) (err error) {
	defer err2.Handle(&err, "register load")

	r.l.Lock()
	defer r.l.Unlock()

	if filename == "" {
		r.r = make(regMapType)
		return nil
	}

	data, err := os.ReadFile(filename)
	if err != nil && os.IsNotExist(err) {
		try.To(writeJSONFile(filename, []byte("{}")))
		data, err = os.ReadFile(filename)
	}
	try.To(err)

	r.r = *try.To1(newReg(data))
	return nil
}

func (r *Reg) Save(filename string) (err error) {
	defer err2.Handle(&err, "register save")

	r.l.Lock()
	defer r.l.Unlock()

	data := try.To1(json.MarshalIndent(r.r, "", "\t"))
	return writeJSONFile(filename, data)
}

func (r *Reg) EnumValues(handler func(k keyDID, v []string) bool) {
	r.l.Lock()
	defer r.l.Unlock()
	for k, v := range r.r {
		if !handler(k, v) {
			break
		}
	}
}

func (r *Reg) Reset(filename string) (err error) {
	defer err2.Handle(&err, "resetting")
	try.To(r.Load(""))
	try.To(r.Save(filename))
	return nil
}

func writeJSONFile(name string, json []byte) error {
	return os.WriteFile(name, json, 0600)
}
