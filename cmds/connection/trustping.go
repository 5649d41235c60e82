package connection

import (
	"context"
	"io"

	"github.com/findy-network/findy-didexchange/cmds"
	"github.com/findy-network/findy-didexchange/protocol/connection"
)

// TrustPingCmd sends a trust ping which asks for a response. The response
// is handled by the next update.
type TrustPingCmd struct {
	Cmd
	Comment string
}

func (c TrustPingCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	return c.Cmd.Exec(w, func(ctx context.Context, _ *Edge, conn *connection.Connection) (any, error) {
		ping, err := conn.SendPing(ctx, c.Comment)
		if err != nil {
			return nil, err
		}
		cmds.Fprintln(w, "ping sent:", ping.ID)
		return ping.ID, nil
	})
}
