package connection

import (
	"context"
	"errors"
	"io"

	"github.com/findy-network/findy-didexchange/cmds"
	"github.com/findy-network/findy-didexchange/protocol/connection"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// AcceptCmd starts a connection as the invitee of the invitation JSON.
type AcceptCmd struct {
	Cmd
	Invitation []byte
}

func (c AcceptCmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if len(c.Invitation) == 0 {
		return errors.New("invitation cannot be empty")
	}
	if _, err := connection.ParseInvitation(c.Invitation); err != nil {
		return err
	}
	return nil
}

func (c AcceptCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "accept %s", c.Name)

	ctx := context.Background()
	e := try.To1(c.Open(ctx))
	defer e.Close()

	if try.To1(e.isSaved()) {
		return nil, errors.New("connection exists already")
	}
	conn := try.To1(connection.CreateWithInviteJSON(ctx, c.Name, e.Env, c.Invitation))
	try.To(e.Save(conn))

	res := resultOf(conn, nil)
	cmds.Fprintf(w, "connection [%s] %s\n", res.Name, res.State)
	return res, nil
}
