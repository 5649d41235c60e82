package connection

import (
	"context"
	"io"

	"github.com/findy-network/findy-didexchange/cmds"
	"github.com/findy-network/findy-didexchange/protocol/connection"
)

// ConnectCmd sends the connection request of the accepted invitation.
type ConnectCmd struct {
	Cmd
	Options string
}

func (c ConnectCmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	_, err := connection.ParseOptions(c.Options)
	return err
}

func (c ConnectCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	opts, err := connection.ParseOptions(c.Options)
	if err != nil {
		return nil, err
	}
	return c.Cmd.Exec(w, func(ctx context.Context, _ *Edge, conn *connection.Connection) (any, error) {
		return nil, conn.Connect(ctx, opts)
	})
}
