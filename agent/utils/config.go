package utils

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/findy-network/findy-didexchange/core"
	"github.com/golang/glog"
)

const (
	DefaultProtocolVersion = "1.0"
	DefaultLabel           = "findy-didexchange"
)

// Timeouts are the per call budgets of the network calls. Short is for the
// mediator control calls, Medium for the message posts and Long for the
// calls which wait for the other end.
type Timeouts struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Retry is the exponential backoff of the retryable transport errors.
// Zero MaxElapsed disables the retries.
type Retry struct {
	MaxElapsed time.Duration
	Initial    time.Duration
}

// Config is threaded through every constructor which needs the mediator or
// the protocol settings. There is no process wide settings store.
type Config struct {
	AgencyURL    string
	AgencyDID    string
	AgencyVerkey string

	// ProtocolVersion is the version of the connection protocol we offer,
	// only 1.0 is supported.
	ProtocolVersion string

	Timeouts Timeouts
	Retry    Retry

	WalletPath string
	WalletName string
	WalletKey  string

	DBPath string

	Label        string
	PollInterval time.Duration
}

// DefaultConfig returns a config with the default timeouts and paths under
// the user's home.
func DefaultConfig() *Config {
	base := filepath.Join(BaseDir(), ".findy", "didexchange")
	return &Config{
		AgencyURL:       "http://localhost:8080",
		ProtocolVersion: DefaultProtocolVersion,
		Timeouts: Timeouts{
			Short:  5 * time.Second,
			Medium: 20 * time.Second,
			Long:   60 * time.Second,
		},
		Retry: Retry{
			MaxElapsed: 30 * time.Second,
			Initial:    500 * time.Millisecond,
		},
		WalletPath:   filepath.Join(base, "wallet"),
		WalletName:   "wallet",
		DBPath:       filepath.Join(base, "connections"),
		Label:        DefaultLabel,
		PollInterval: 2 * time.Second,
	}
}

// AgencyEndpoint returns the message endpoint of the mediator.
func (c *Config) AgencyEndpoint() string {
	return c.AgencyURL + "/agency/msg"
}

// HasAgency tells if the mediator identity is known. It's fetched from the
// mediator's info call when not configured.
func (c *Config) HasAgency() bool {
	return c.AgencyDID != "" && c.AgencyVerkey != ""
}

// Validate checks that the config can be used.
func (c *Config) Validate() error {
	u, err := url.Parse(c.AgencyURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return core.Errorf(core.KindInvalidOption, "agency URL: %q", c.AgencyURL)
	}
	if c.ProtocolVersion != DefaultProtocolVersion {
		return core.Errorf(core.KindInvalidOption,
			"protocol version %s isn't supported", c.ProtocolVersion)
	}
	if c.Timeouts.Short <= 0 || c.Timeouts.Medium <= 0 || c.Timeouts.Long <= 0 {
		return core.Errorf(core.KindInvalidOption, "timeouts must be positive")
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf("agency: %s (%s) wallet: %s/%s db: %s",
		c.AgencyURL, c.AgencyDID, c.WalletPath, c.WalletName, c.DBPath)
}

// LogSettings logs the config at the lifecycle level. The wallet key is
// never logged.
func (c *Config) LogSettings() {
	glog.V(1).Infoln("settings:", c)
	glog.V(1).Infof("timeouts: %v/%v/%v poll: %v",
		c.Timeouts.Short, c.Timeouts.Medium, c.Timeouts.Long, c.PollInterval)
}
