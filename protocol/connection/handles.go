package connection

import (
	"context"
	"encoding/json"

	"github.com/findy-network/findy-didexchange/agent/handle"
	"github.com/findy-network/findy-didexchange/agent/pairwise"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Connections is the handle registry of the live connections. Operations on
// one connection are serialized, different connections run in parallel.
type Connections struct {
	env *pairwise.Env
	reg *handle.Registry[Connection]
}

func NewConnections(env *pairwise.Env) *Connections {
	return &Connections{env: env, reg: handle.New[Connection]("connection")}
}

// Add registers the connection and returns its handle.
func (cs *Connections) Add(c *Connection) uint32 {
	if c.env == nil {
		c.env = cs.env
	}
	return cs.reg.Add(*c)
}

func (cs *Connections) Create(sourceID string) uint32 {
	return cs.Add(Create(sourceID, cs.env))
}

func (cs *Connections) CreateOutOfBand(sourceID, goalCode, goal string, handshake bool, requestAttach string) (h uint32, err error) {
	defer err2.Handle(&err)

	return cs.Add(try.To1(CreateOutOfBand(sourceID, cs.env, goalCode, goal, handshake, requestAttach))), nil
}

// CreateWithInvite registers the invitee's connection of the invitation JSON
// which is either kind of invitation.
func (cs *Connections) CreateWithInvite(ctx context.Context, sourceID string, data []byte) (h uint32, err error) {
	defer err2.Handle(&err)

	return cs.Add(try.To1(CreateWithInviteJSON(ctx, sourceID, cs.env, data))), nil
}

// With runs f with the connection. f must not change it.
func (cs *Connections) With(h uint32, f func(c *Connection) error) error {
	return cs.reg.Get(h, f)
}

// Do runs f with the exclusive access to the connection.
func (cs *Connections) Do(h uint32, f func(c *Connection) error) error {
	return cs.reg.GetMut(h, f)
}

func (cs *Connections) Connect(ctx context.Context, h uint32, opts *Options) error {
	return cs.Do(h, func(c *Connection) error {
		return c.Connect(ctx, opts)
	})
}

func (cs *Connections) UpdateState(ctx context.Context, h uint32) error {
	return cs.Do(h, func(c *Connection) error {
		return c.UpdateState(ctx)
	})
}

func (cs *Connections) UpdateStateWithMessage(ctx context.Context, h uint32, data []byte) error {
	return cs.Do(h, func(c *Connection) error {
		return c.UpdateStateWithMessage(ctx, data)
	})
}

func (cs *Connections) StateCode(h uint32) (code StateCode, err error) {
	err = cs.With(h, func(c *Connection) error {
		code = c.StateCode()
		return nil
	})
	return code, err
}

// Serialize returns the JSON of the connection.
func (cs *Connections) Serialize(h uint32) (data []byte, err error) {
	err = cs.With(h, func(c *Connection) error {
		data, err = json.Marshal(c)
		return err
	})
	return data, err
}

// Deserialize registers the saved connection.
func (cs *Connections) Deserialize(data []byte) (h uint32, err error) {
	defer err2.Handle(&err, "deserialize")

	return cs.Add(try.To1(Load(data, cs.env))), nil
}

// Delete removes the connection's agents from the mediator and releases the
// handle.
func (cs *Connections) Delete(ctx context.Context, h uint32) (err error) {
	defer err2.Handle(&err)

	try.To(cs.Do(h, func(c *Connection) error {
		return c.Delete(ctx)
	}))
	return cs.reg.Release(h)
}

func (cs *Connections) Release(h uint32) error {
	return cs.reg.Release(h)
}

func (cs *Connections) Has(h uint32) bool {
	return cs.reg.Has(h)
}

func (cs *Connections) Len() int {
	return cs.reg.Len()
}

func (cs *Connections) Handles() []uint32 {
	return cs.reg.Handles()
}

// ReleaseAll drops every connection without touching the mediator.
func (cs *Connections) ReleaseAll() {
	cs.reg.Drain()
}
