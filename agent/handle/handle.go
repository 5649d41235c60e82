/*
Package handle is a concurrent registry of live objects indexed by numeric
handles. The callers keep the handles and reach the objects through closures
so that the registry controls the locking: Get shares an entry with the other
readers and GetMut gets it exclusively. The other entries stay reachable
while one of them is locked.
*/
package handle

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/findy-network/findy-didexchange/core"
	"github.com/golang/glog"
)

type entry[T any] struct {
	sync.RWMutex
	v T
}

// Registry is safe for concurrent use. The zero value isn't usable, use New.
type Registry[T any] struct {
	l       sync.RWMutex
	name    string
	objects map[uint32]*entry[T]
}

// New returns an empty registry. The name is used in the errors and logs.
func New[T any](name string) *Registry[T] {
	return &Registry[T]{name: name, objects: make(map[uint32]*entry[T])}
}

// Add stores the object and returns its new handle which is never zero.
func (r *Registry[T]) Add(v T) uint32 {
	r.l.Lock()
	defer r.l.Unlock()

	h := r.newHandle()
	r.objects[h] = &entry[T]{v: v}
	glog.V(5).Infof("%s: handle %d added", r.name, h)
	return h
}

func (r *Registry[T]) newHandle() uint32 {
	for {
		h := rand.Uint32()
		if _, exists := r.objects[h]; h != 0 && !exists {
			return h
		}
	}
}

func (r *Registry[T]) entry(h uint32) (*entry[T], error) {
	r.l.RLock()
	defer r.l.RUnlock()

	e, ok := r.objects[h]
	if !ok {
		return nil, core.Errorf(core.KindInvalidHandle, "%s handle %d", r.name, h)
	}
	return e, nil
}

// Get calls f with the object of the handle. Other readers of the same
// object may run at the same time, so f must not modify it.
func (r *Registry[T]) Get(h uint32, f func(v *T) error) error {
	e, err := r.entry(h)
	if err != nil {
		return err
	}
	e.RLock()
	defer e.RUnlock()
	return f(&e.v)
}

// GetMut calls f with exclusive access to the object of the handle.
func (r *Registry[T]) GetMut(h uint32, f func(v *T) error) error {
	e, err := r.entry(h)
	if err != nil {
		return err
	}
	e.Lock()
	defer e.Unlock()
	return f(&e.v)
}

func (r *Registry[T]) Has(h uint32) bool {
	_, err := r.entry(h)
	return err == nil
}

// Release removes the handle. A call running on the object finishes
// normally but the handle cannot be used after Release returns.
func (r *Registry[T]) Release(h uint32) error {
	r.l.Lock()
	defer r.l.Unlock()

	if _, ok := r.objects[h]; !ok {
		return core.Errorf(core.KindInvalidHandle, "%s handle %d", r.name, h)
	}
	delete(r.objects, h)
	glog.V(5).Infof("%s: handle %d released", r.name, h)
	return nil
}

// Drain releases all of the handles.
func (r *Registry[T]) Drain() {
	r.l.Lock()
	defer r.l.Unlock()
	glog.V(1).Infof("%s: draining %d handles", r.name, len(r.objects))
	r.objects = make(map[uint32]*entry[T])
}

func (r *Registry[T]) Len() int {
	r.l.RLock()
	defer r.l.RUnlock()
	return len(r.objects)
}

// Handles returns the current handles in ascending order.
func (r *Registry[T]) Handles() []uint32 {
	r.l.RLock()
	hs := make([]uint32, 0, len(r.objects))
	for h := range r.objects {
		hs = append(hs, h)
	}
	r.l.RUnlock()

	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
	return hs
}
