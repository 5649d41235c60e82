package agency

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/findy-network/findy-didexchange/agent/agency"
	"github.com/findy-network/findy-didexchange/agent/trans"
	"github.com/findy-network/findy-didexchange/agent/utils"
	"github.com/findy-network/findy-didexchange/cmds"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// PingCmd reads the identity of a running mediator.
type PingCmd struct {
	BaseAddr string
}

type PingResult struct {
	agency.Info
}

func (r PingResult) JSON() ([]byte, error) {
	return json.Marshal(r.Info)
}

func (c PingCmd) Validate() error {
	if c.BaseAddr == "" {
		return errors.New("server url cannot be empty")
	}
	return nil
}

func (c PingCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "mediator ping")

	cfg := utils.DefaultConfig()
	cfg.AgencyURL = c.BaseAddr
	cfg.Retry = utils.Retry{}
	info := try.To1(agency.NewClient(cfg, trans.New(cfg)).Info(context.Background()))

	cmds.Fprintln(w, "ping ok.",
		"\nagency DID:", info.DID,
		"\nagency verkey:", info.Verkey,
		"\nendpoint:", info.Endpoint)

	return PingResult{Info: *info}, nil
}
