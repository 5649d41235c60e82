package connection

import (
	"context"
	"encoding/json"
	"io"

	"github.com/findy-network/findy-didexchange/cmds"
	"github.com/findy-network/findy-didexchange/protocol/connection"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// InfoCmd prints both ends of the connection.
type InfoCmd struct {
	Cmd
}

func (c InfoCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	return c.Cmd.Exec(w, func(_ context.Context, _ *Edge, conn *connection.Connection) (_ any, err error) {
		info, err := conn.GetConnectionInfo()
		if err != nil {
			return nil, err
		}
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return nil, err
		}
		cmds.Fprintln(w, string(data))
		return info, nil
	})
}

// ListCmd prints the saved connections of the wallet which aren't deleted.
type ListCmd struct {
	Store
}

// ListItem is one saved connection.
type ListItem struct {
	Name    string `json:"name"`
	State   string `json:"state"`
	Sub     string `json:"sub_state"`
	ConnDID string `json:"conn_did,omitempty"`
	Inviter bool   `json:"inviter"`
}

type ListResult []ListItem

func (r ListResult) JSON() ([]byte, error) {
	return json.Marshal(r)
}

func (c ListCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "list")

	db := try.To1(c.openDB())
	defer db.Close()

	saved := try.To1(connection.Saved(db, c.WalletName))
	list := make(ListResult, 0, len(saved))
	for _, p := range saved {
		item := ListItem{Name: p.Key.Nonce, ConnDID: p.ConnDID, Inviter: p.StartedByUs}
		if last := p.LastState(); last != nil {
			item.State, item.Sub = last.Name, last.Sub.String()
		}
		list = append(list, item)
		cmds.Fprintf(w, "%-20s %-12s %-10s %s\n", item.Name, item.State, item.Sub, item.ConnDID)
	}
	return list, nil
}
