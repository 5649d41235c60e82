package connection

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/findy-network/findy-didexchange/cmds"
	"github.com/findy-network/findy-didexchange/protocol/connection"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// CreateCmd starts a connection as the inviter and prints the invitation.
type CreateCmd struct {
	Cmd

	OutOfBand     bool
	GoalCode      string
	Goal          string
	Handshake     bool
	RequestAttach string
}

func (c CreateCmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if !c.OutOfBand && (c.GoalCode != "" || c.Goal != "" || c.RequestAttach != "") {
		return errors.New("goal and attachment need an out-of-band invitation")
	}
	if c.OutOfBand && !c.Handshake && c.RequestAttach == "" {
		return errors.New("out-of-band invitation needs a handshake or an attachment")
	}
	if c.RequestAttach != "" && !json.Valid([]byte(c.RequestAttach)) {
		return errors.New("attachment must be JSON")
	}
	return nil
}

func (c CreateCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "create %s", c.Name)

	ctx := context.Background()
	e := try.To1(c.Open(ctx))
	defer e.Close()

	if try.To1(e.isSaved()) {
		return nil, errors.New("connection exists already")
	}
	var conn *connection.Connection
	if c.OutOfBand {
		conn = try.To1(connection.CreateOutOfBand(c.Name, e.Env,
			c.GoalCode, c.Goal, c.Handshake, c.RequestAttach))
	} else {
		conn = connection.Create(c.Name, e.Env)
	}
	try.To(conn.Connect(ctx, nil))
	try.To(e.Save(conn))

	inv := try.To1(try.To1(conn.GetInviteDetails()).Encode())
	cmds.Fprintln(w, string(inv))
	return resultOf(conn, json.RawMessage(inv)), nil
}
