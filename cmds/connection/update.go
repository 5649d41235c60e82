package connection

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/findy-network/findy-didexchange/cmds"
	"github.com/findy-network/findy-didexchange/protocol/connection"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// UpdateCmd handles the next message of the connection. With Wait the
// connection is polled until it's completed or failed, or the time is up.
type UpdateCmd struct {
	Cmd
	Wait     time.Duration
	Interval time.Duration
}

func (c UpdateCmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if c.Wait < 0 {
		return errors.New("wait time cannot be negative")
	}
	if c.Wait > 0 && c.Interval <= 0 {
		return errors.New("poll interval must be positive")
	}
	return nil
}

func (c UpdateCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	return c.Cmd.Exec(w, func(ctx context.Context, e *Edge, conn *connection.Connection) (any, error) {
		if c.Wait == 0 {
			return nil, conn.UpdateState(ctx)
		}
		return nil, c.wait(w, e, conn)
	})
}

func (c UpdateCmd) wait(w io.Writer, e *Edge, conn *connection.Connection) (err error) {
	defer err2.Handle(&err, "wait")

	cs := connection.NewConnections(e.Env)
	defer cs.ReleaseAll()
	h := cs.Add(conn)

	p := connection.NewPoller(cs, c.Interval)
	try.To(p.Start())
	waitErr := c.waitReady(w, cs, h)
	p.Stop()

	// the registry holds its own copy
	try.To(cs.With(h, func(polled *connection.Connection) error {
		*conn = *polled
		return nil
	}))
	return waitErr
}

func (c UpdateCmd) waitReady(w io.Writer, cs *connection.Connections, h uint32) (err error) {
	defer err2.Handle(&err)

	done := cmds.Progress(w)
	defer close(done)
	defer cmds.Fprintln(w)

	deadline := time.After(c.Wait)
	tick := time.NewTicker(c.Interval)
	defer tick.Stop()
	for {
		select {
		case <-deadline:
			return nil
		case <-tick.C:
			code := try.To1(cs.StateCode(h))
			if code == connection.StateCompleted || code == connection.StateFailed {
				return nil
			}
		}
	}
}
