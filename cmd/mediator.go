package cmd

import (
	"os"

	"github.com/findy-network/findy-didexchange/cmds/agency"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
)

// MediatorCmd represents the mediator command
var MediatorCmd = &cobra.Command{
	Use:     "mediator",
	Aliases: []string{"agency"},
	Short:   "Parent command for starting and pinging mediator",
	Long: `
Parent command for starting and pinging the mediator. The mediator hosts
the pairwise agents of the edge agents and keeps their inboxes.
	`,
	Run: func(cmd *cobra.Command, args []string) {
		SubCmdNeeded(cmd)
	},
}

var mediatorStartEnvs = map[string]string{
	"host-address":             "HOST_ADDRESS",
	"host-port":                "HOST_PORT",
	"host-scheme":              "HOST_SCHEME",
	"server-port":              "SERVER_PORT",
	"seed":                     "SEED",
	"reset-register":           "RESET_REGISTER",
	"register-file":            "REGISTER_FILE",
	"register-backup-interval": "REGISTER_BACKUP_INTERVAL",
	"wallet-path":              "WALLET_PATH",
	"wallet-name":              "WALLET_NAME",
	"wallet-key":               "WALLET_KEY",
}

// startMediatorCmd represents the mediator start subcommand
var startMediatorCmd = &cobra.Command{
	Use:   "start",
	Short: "Command for starting mediator",
	Long: `
Start command for the mediator server.

Example
	findy-didexchange mediator start \
		--host-address agency.example.com \
		--host-port 443 \
		--host-scheme https \
		--server-port 8080 \
		--register-file /data/findy.json
	`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(mediatorStartEnvs, "MEDIATOR")
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err)

		try.To(aCmd.Validate())
		if !rootFlags.dryRun {
			cmd.SilenceUsage = true
			try.To1(aCmd.Exec(os.Stdout))
		}
		return nil
	},
}

var mediatorPingEnvs = map[string]string{
	"base-address": "PING_BASE_ADDRESS",
}

// pingMediatorCmd represents the mediator ping subcommand
var pingMediatorCmd = &cobra.Command{
	Use:   "ping",
	Short: "Command for pinging mediator",
	Long: `
Pings mediator.
If mediator works fine, ping ok with its DID and endpoint is printed.

Example
	findy-didexchange mediator ping \
		--base-address http://localhost:8080
	`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(mediatorPingEnvs, "MEDIATOR")
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err)
		try.To(paCmd.Validate())
		if !rootFlags.dryRun {
			cmd.SilenceUsage = true
			try.To1(paCmd.Exec(os.Stdout))
		}
		return nil
	},
}

var (
	aCmd  = agency.DefaultValues
	paCmd = agency.PingCmd{}
)

func init() {
	flags := startMediatorCmd.Flags()
	flags.StringVar(&aCmd.HostAddr, "host-address", aCmd.HostAddr, flagInfo("host address", MediatorCmd.Name(), mediatorStartEnvs["host-address"]))
	flags.UintVar(&aCmd.HostPort, "host-port", aCmd.HostPort, flagInfo("host port", MediatorCmd.Name(), mediatorStartEnvs["host-port"]))
	flags.StringVar(&aCmd.HostScheme, "host-scheme", aCmd.HostScheme, flagInfo("scheme of the mediator's host address", MediatorCmd.Name(), mediatorStartEnvs["host-scheme"]))
	flags.UintVar(&aCmd.ServerPort, "server-port", aCmd.ServerPort, flagInfo("server port", MediatorCmd.Name(), mediatorStartEnvs["server-port"]))
	flags.StringVar(&aCmd.Seed, "seed", "", flagInfo("seed of the mediator key", MediatorCmd.Name(), mediatorStartEnvs["seed"]))
	flags.BoolVar(&aCmd.ResetData, "reset-register", false, flagInfo("reset the pairwise agent register", MediatorCmd.Name(), mediatorStartEnvs["reset-register"]))
	flags.StringVar(&aCmd.RegisterFile, "register-file", aCmd.RegisterFile, flagInfo("pairwise agent register's filename", MediatorCmd.Name(), mediatorStartEnvs["register-file"]))
	flags.DurationVar(&aCmd.RegisterBackupInterval, "register-backup-interval", aCmd.RegisterBackupInterval, flagInfo("duration between register saves", MediatorCmd.Name(), mediatorStartEnvs["register-backup-interval"]))
	flags.StringVar(&aCmd.WalletPath, "wallet-path", "", flagInfo("mediator wallet directory", MediatorCmd.Name(), mediatorStartEnvs["wallet-path"]))
	flags.StringVar(&aCmd.WalletName, "wallet-name", "", flagInfo("mediator wallet name, empty keeps keys in memory", MediatorCmd.Name(), mediatorStartEnvs["wallet-name"]))
	flags.StringVar(&aCmd.WalletKey, "wallet-key", "", flagInfo("mediator wallet key, 32 bytes in hex", MediatorCmd.Name(), mediatorStartEnvs["wallet-key"]))

	p := pingMediatorCmd.Flags()
	p.StringVar(&paCmd.BaseAddr, "base-address", "http://localhost:8080", flagInfo("base address of mediator", MediatorCmd.Name(), mediatorPingEnvs["base-address"]))

	rootCmd.AddCommand(MediatorCmd)
	MediatorCmd.AddCommand(startMediatorCmd)
	MediatorCmd.AddCommand(pingMediatorCmd)
}
