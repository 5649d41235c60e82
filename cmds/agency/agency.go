package agency

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/findy-network/findy-didexchange/agent/agency"
	"github.com/findy-network/findy-didexchange/agent/ssi"
	"github.com/findy-network/findy-didexchange/cmds"
	"github.com/findy-network/findy-didexchange/server"
	"github.com/go-co-op/gocron"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Cmd starts the in-process mediator. The wallet is optional, without it the
// mediator keys live in memory and a seed keeps the agency DID stable.
type Cmd struct {
	WalletPath string
	WalletName string
	WalletKey  string

	Seed         string
	HostAddr     string
	HostScheme   string
	HostPort     uint
	ServerPort   uint
	RegisterFile string
	ResetData    bool

	RegisterBackupInterval time.Duration
}

var (
	cron = gocron.NewScheduler(time.Now().Location())
)

func (c *Cmd) Validate() error {
	if c.WalletName != "" {
		if err := cmds.ValidateKey(c.WalletKey); err != nil {
			return err
		}
	}
	if err := cmds.ValidateSeed(c.Seed); err != nil {
		return err
	}
	if c.HostAddr == "" {
		return errors.New("host address cannot be empty")
	}
	if c.HostScheme != "http" && c.HostScheme != "https" {
		return fmt.Errorf("host scheme %q isn't supported", c.HostScheme)
	}
	if c.ServerPort == 0 {
		return errors.New("server port cannot be zero")
	}
	if c.ResetData && c.RegisterFile == "" {
		return errors.New("register file must be given for reset")
	}
	if c.RegisterBackupInterval < 0 {
		return errors.New("register backup interval cannot be negative")
	}
	return nil
}

func (c *Cmd) Exec(_ io.Writer) (r cmds.Result, err error) {
	return nil, StartAgency(c)
}

// Setup builds the mediator of the command.
func (c *Cmd) Setup() (a *agency.Agency, err error) {
	defer err2.Handle(&err, "mediator setup")

	if c.HostPort == 0 {
		c.HostPort = c.ServerPort
	}
	c.printStartupArgs()
	if c.RegisterFile != "" {
		try.To(os.MkdirAll(filepath.Dir(c.RegisterFile), 0700))
	}
	if c.ResetData {
		try.To(agency.ResetRegister(c.RegisterFile))
	}
	var w *ssi.Wallet
	if c.WalletName != "" {
		w = try.To1(cmds.Cmd{
			WalletPath: c.WalletPath,
			WalletName: c.WalletName,
			WalletKey:  c.WalletKey,
		}.OpenWallet())
	}
	return agency.New(agency.Config{
		HostAddr:     server.BuildHostAddr(c.HostScheme, c.HostAddr, c.HostPort),
		Seed:         c.Seed,
		RegisterFile: c.RegisterFile,
		Wallet:       w,
	})
}

// Run serves the mediator until the server stops.
func (c *Cmd) Run(a *agency.Agency) (err error) {
	defer err2.Handle(&err, "mediator run")

	c.startBackupTasks(a)
	defer cron.Stop()
	return server.StartHTTPServer(a, c.ServerPort)
}

func (c *Cmd) startBackupTasks(a *agency.Agency) {
	if c.RegisterFile == "" || c.RegisterBackupInterval == 0 {
		return
	}
	glog.V(1).Infoln("register backup interval:", c.RegisterBackupInterval)
	_, err := cron.Every(c.RegisterBackupInterval).Do(a.SaveRegister)
	if err != nil {
		glog.Warningln("register backup start error:", err)
		return
	}
	cron.StartAsync()
}

func StartAgency(serverCmd *Cmd) (err error) {
	defer err2.Handle(&err)

	a := try.To1(serverCmd.Setup())
	defer func() {
		if cerr := a.Close(); cerr != nil {
			glog.Errorln("mediator close:", cerr)
		}
	}()
	return serverCmd.Run(a)
}

func (c *Cmd) printStartupArgs() {
	fmt.Println(
		"Register path:", c.RegisterFile,
		"\nHost address:", c.HostAddr,
		"\nHost port:", c.HostPort,
		"\nServer port:", c.ServerPort)
}

// DefaultValues are the flag defaults of the mediator command.
var DefaultValues = Cmd{
	HostAddr:               "localhost",
	HostScheme:             "http",
	HostPort:               8080,
	ServerPort:             8080,
	RegisterFile:           "findy.json",
	RegisterBackupInterval: 12 * time.Hour,
}
