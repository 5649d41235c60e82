package connection

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/findy-network/findy-didexchange/agent/aries"
	"github.com/findy-network/findy-didexchange/agent/psm"
	"github.com/findy-network/findy-didexchange/cmds"
	"github.com/findy-network/findy-didexchange/protocol/connection"
	"github.com/findy-network/findy-didexchange/std/basicmessage"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// BasicMsgCmd sends a basic message over the completed connection. The
// message is saved to the message history of the connection.
type BasicMsgCmd struct {
	Cmd
	Message string
}

func (c BasicMsgCmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if c.Message == "" {
		return errors.New("message cannot be empty")
	}
	return nil
}

func (c BasicMsgCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	return c.Cmd.Exec(w, func(ctx context.Context, e *Edge, conn *connection.Connection) (_ any, err error) {
		defer err2.Handle(&err, "send")

		msg := try.To1(conn.SendGenericMessage(ctx, c.Message))
		now := time.Now().UnixNano()
		try.To(e.DB.AddBasicMessageRep(&psm.BasicMessageRep{
			Key:           psm.NewStateKey(e.owner(), msg.ID()),
			PwName:        c.Name,
			Message:       c.Message,
			SendTimestamp: now,
			Timestamp:     now,
			SentByMe:      true,
			Delivered:     true,
		}))
		return msg.ID(), nil
	})
}

// MessagesCmd reads the unread basic messages of the connection to the
// history and prints the history. Ack marks the read messages reviewed at
// the mediator.
type MessagesCmd struct {
	Cmd
	Ack bool
}

type MessagesResult []psm.BasicMessageRep

func (c MessagesCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	return c.Cmd.Exec(w, func(ctx context.Context, e *Edge, conn *connection.Connection) (_ any, err error) {
		defer err2.Handle(&err, "messages")

		var read []string
		for _, item := range try.To1(conn.Messages(ctx)) {
			bm, ok := item.Msg.Body.(*basicmessage.Basicmessage)
			if item.Msg.Kind != aries.BasicMessage || !ok {
				continue
			}
			try.To(e.DB.AddBasicMessageRep(&psm.BasicMessageRep{
				Key:           psm.NewStateKey(e.owner(), bm.ID),
				PwName:        c.Name,
				Message:       bm.Content,
				SendTimestamp: bm.SentTime.UnixNano(),
				Timestamp:     time.Now().UnixNano(),
				Delivered:     true,
			}))
			read = append(read, item.UID)
		}
		if c.Ack && len(read) > 0 {
			try.To(conn.UpdateMessageStatus(ctx, read...))
		}

		history := try.To1(e.DB.BasicMessages(e.owner(), c.Name))
		for _, m := range history {
			from := "them"
			if m.SentByMe {
				from = "me"
			}
			cmds.Fprintf(w, "%s %-4s: %s\n",
				time.Unix(0, m.Timestamp).Format(time.RFC3339), from, m.Message)
		}
		return MessagesResult(history), nil
	})
}
