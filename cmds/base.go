package cmds

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/findy-network/findy-didexchange/agent/ssi"
	"github.com/findy-network/findy-didexchange/agent/storage/wrapper"
	"github.com/lainio/err2/try"
)

// walletKeyLength is the length of the hex encoded 32 byte storage key.
const walletKeyLength = 64

var ErrInvalid = errors.New("invalid command, check arguments")

type Cmd struct {
	WalletPath string
	WalletName string `cmd_usage:"wallet name is required"`
	WalletKey  string `cmd_usage:"wallet key is required"`
}

func (c Cmd) Validate() error {
	if c.WalletName == "" {
		return errors.New("wallet name cannot be empty")
	}
	if err := c.ValidateWalletKey(); err != nil {
		return err
	}
	return nil
}

func (c Cmd) ValidateWalletKey() error {
	return ValidateKey(c.WalletKey)
}

// StorageConfig returns the storage config of the wallet file.
func (c Cmd) StorageConfig() wrapper.Config {
	return wrapper.Config{
		Key:      c.WalletKey,
		FileName: c.WalletName,
		FilePath: c.WalletPath,
	}
}

// OpenWallet opens the wallet of the command. The caller closes it.
func (c Cmd) OpenWallet() (w *ssi.Wallet, err error) {
	if err = os.MkdirAll(pathOr(c.WalletPath), 0700); err != nil {
		return nil, err
	}
	w = ssi.NewWallet(c.StorageConfig())
	if err = w.Open(); err != nil {
		return nil, err
	}
	return w, nil
}

func pathOr(p string) string {
	if p == "" {
		return "."
	}
	return p
}

func ValidateKey(k string) error {
	if k == "" {
		return errors.New("wallet key cannot be empty")
	}
	if len(k) != walletKeyLength {
		return errors.New("wallet key is not valid")
	}
	if _, err := hex.DecodeString(k); err != nil {
		return fmt.Errorf("wallet key is not valid: %w", err)
	}
	return nil
}

func ValidateSeed(seed string) error {
	if seed != "" && len(seed) != 32 {
		return errors.New("seed must be empty or length of 32")
	}
	return nil
}

type Result interface {
	JSON() ([]byte, error)
}

type Command interface {
	Validate() error
	Exec(w io.Writer) (r Result, err error)
}

// ParseLoggingArgs sets the glog flags from the string like
// "-logtostderr=true -v=2".
func ParseLoggingArgs(s string) {
	args := make([]string, 1, 12)
	args[0] = os.Args[0]
	args = append(args, strings.Fields(s)...)
	orgArgs := os.Args
	os.Args = args
	flag.Parse()
	os.Args = orgArgs
}

// Fprintln is fmt.Fprintln but it allows writer to be nil. Note! it throws an
// error.
func Fprintln(w io.Writer, a ...any) {
	if w != nil {
		_ = try.To1(fmt.Fprintln(w, a...))
	}
}

// Fprintf is fmt.Fprintf but it allows writer to be nil. Note! it throws an
// error.
func Fprintf(w io.Writer, format string, a ...any) {
	if w != nil {
		_ = try.To1(fmt.Fprintf(w, format, a...))
	}
}

// Fprint is fmt.Fprint but it allows writer to be nil. Note! it throws an
// error.
func Fprint(w io.Writer, a ...any) {
	if w != nil {
		_ = try.To1(fmt.Fprint(w, a...))
	}
}

// Progress prints dots until the returned channel is closed.
func Progress(w io.Writer) chan<- struct{} {
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(300 * time.Millisecond):
				if w != nil {
					_, _ = fmt.Fprint(w, ".")
				}
			}
		}
	}()
	return done
}
