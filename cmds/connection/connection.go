package connection

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/findy-network/findy-didexchange/agent/agency"
	"github.com/findy-network/findy-didexchange/agent/pairwise"
	"github.com/findy-network/findy-didexchange/agent/psm"
	"github.com/findy-network/findy-didexchange/agent/ssi"
	"github.com/findy-network/findy-didexchange/agent/storage/wrapper"
	"github.com/findy-network/findy-didexchange/agent/trans"
	"github.com/findy-network/findy-didexchange/agent/utils"
	"github.com/findy-network/findy-didexchange/cmds"
	"github.com/findy-network/findy-didexchange/protocol/connection"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Store is the wallet and the connection database of the edge agent. The
// connections are saved under the wallet name.
type Store struct {
	cmds.Cmd
	AgencyURL string
	DBPath    string
}

func (s Store) Validate() error {
	if err := s.Cmd.Validate(); err != nil {
		return err
	}
	if s.AgencyURL == "" {
		return errors.New("agency url cannot be empty")
	}
	return nil
}

// Config returns the agent config of the command flags.
func (s Store) Config() *utils.Config {
	cfg := utils.DefaultConfig()
	cfg.AgencyURL = s.AgencyURL
	cfg.WalletPath = s.WalletPath
	cfg.WalletName = s.WalletName
	cfg.WalletKey = s.WalletKey
	if s.DBPath != "" {
		cfg.DBPath = s.DBPath
	}
	return cfg
}

func (s Store) openDB() (db *psm.DB, err error) {
	defer err2.Handle(&err, "connection db")

	cfg := s.Config()
	try.To(os.MkdirAll(cfg.DBPath, 0700))
	return psm.Open(wrapper.Config{
		Key:      s.WalletKey,
		FileName: s.WalletName + "_connections",
		FilePath: cfg.DBPath,
	})
}

// Cmd is a command of one named connection.
type Cmd struct {
	Store
	Name string
}

func (c Cmd) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if c.Name == "" {
		return errors.New("connection name cannot be empty")
	}
	return nil
}

// Edge is the opened edge agent.
type Edge struct {
	Cmd
	Wallet *ssi.Wallet
	DB     *psm.DB
	Env    *pairwise.Env
}

// Open opens the wallet and the connection database, and reads the
// mediator identity.
func (c Cmd) Open(ctx context.Context) (e *Edge, err error) {
	e = &Edge{Cmd: c}
	defer err2.Handle(&err, func(err error) error {
		e.Close()
		return err
	})

	cfg := c.Config()
	cfg.LogSettings()
	try.To(cfg.Validate())
	e.Wallet = try.To1(c.OpenWallet())
	e.DB = try.To1(c.openDB())
	tr := trans.New(cfg)
	e.Env = try.To1(pairwise.NewEnv(ctx, e.Wallet, agency.NewClient(cfg, tr), tr))
	return e, nil
}

func (e *Edge) Close() {
	if e.DB != nil {
		if err := e.DB.Close(); err != nil {
			glog.Errorln("close connection db:", err)
		}
	}
	if e.Wallet != nil {
		if err := e.Wallet.Close(); err != nil {
			glog.Errorln("close wallet:", err)
		}
	}
}

func (e *Edge) owner() string {
	return e.WalletName
}

// Restore loads the named connection.
func (e *Edge) Restore() (*connection.Connection, error) {
	return connection.Restore(e.DB, e.owner(), e.Name, e.Env)
}

func (e *Edge) Save(c *connection.Connection) error {
	return connection.Save(e.DB, e.owner(), c)
}

// isSaved tells if the name is taken by a connection which isn't deleted.
func (e *Edge) isSaved() (bool, error) {
	p, err := e.DB.GetPSM(psm.NewStateKey(e.owner(), e.Name))
	switch {
	case psm.IsNotFound(err):
		return false, nil
	case err != nil:
		return false, err
	}
	return !p.IsArchived(), nil
}

// Result is the state of the connection after the command.
type Result struct {
	Name  string               `json:"name"`
	State string               `json:"state"`
	Code  connection.StateCode `json:"code"`
	Data  any                  `json:"data,omitempty"`
}

func (r Result) JSON() ([]byte, error) {
	return json.Marshal(r)
}

func resultOf(c *connection.Connection, data any) *Result {
	return &Result{
		Name:  c.SourceID(),
		State: c.State().Name(),
		Code:  c.StateCode(),
		Data:  data,
	}
}

// Exec opens the edge agent, runs f with the restored connection and saves
// the connection afterwards.
func (c Cmd) Exec(w io.Writer, f func(ctx context.Context, e *Edge, conn *connection.Connection) (any, error)) (r cmds.Result, err error) {
	defer err2.Handle(&err, "connection %s", c.Name)

	ctx := context.Background()
	e := try.To1(c.Open(ctx))
	defer e.Close()

	conn := try.To1(e.Restore())
	data, err := f(ctx, e, conn)
	// the state can change even when the step fails
	try.To(e.Save(conn))
	try.To(err)

	res := resultOf(conn, data)
	cmds.Fprintf(w, "connection [%s] %s\n", res.Name, res.State)
	return res, nil
}
