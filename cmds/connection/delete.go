package connection

import (
	"context"
	"io"

	"github.com/findy-network/findy-didexchange/cmds"
	"github.com/findy-network/findy-didexchange/protocol/connection"
)

// DeleteCmd deletes the pairwise agent of the connection and archives the
// saved connection.
type DeleteCmd struct {
	Cmd
}

func (c DeleteCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	r, err = c.Cmd.Exec(w, func(ctx context.Context, _ *Edge, conn *connection.Connection) (any, error) {
		return nil, conn.Delete(ctx)
	})
	if err != nil {
		return nil, err
	}
	db, err := c.openDB()
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return r, connection.Archive(db, c.WalletName, c.Name)
}
