package cmd

import (
	"io"
	"os"

	"github.com/findy-network/findy-didexchange/agent/utils"
	"github.com/findy-network/findy-didexchange/cmds"
	"github.com/findy-network/findy-didexchange/cmds/connection"
	"github.com/findy-network/findy-didexchange/completionhelp"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
)

var connectionEnvs = map[string]string{
	"wallet-path": "WALLET_PATH",
	"wallet-name": "WALLET_NAME",
	"wallet-key":  "WALLET_KEY",
	"agency-url":  "AGENCY_URL",
	"db-path":     "DB_PATH",
	"name":        "NAME",
}

// connectionCmd represents the connection command
var connectionCmd = &cobra.Command{
	Use:   "connection",
	Short: "Parent command for pairwise connections",
	Long: `
Parent command for the pairwise connections of the edge agent.

This command requires a subcommand so command itself does nothing.
Every connection subcommand requires --wallet-name & --wallet-key flags to be
specified. The wallet key is 32 bytes in hex. --agency-url flag is the
mediator's base address & it has default value of "http://localhost:8080".
The connections are saved between the commands by their --name.

Example
	findy-didexchange connection list \
		--wallet-name TestWallet \
		--wallet-key 15308490f1e4026284594dd08d31291bc8ef2aeac730d0daf6ff87bb92d4336c
`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(connectionEnvs, cmd.Name())
	},
	Run: func(cmd *cobra.Command, args []string) {
		SubCmdNeeded(cmd)
	},
}

// ClientFlags are the edge agent flags
type ClientFlags struct {
	WalletPath string
	WalletName string
	WalletKey  string
	AgencyURL  string
	DBPath     string
	Name       string
}

var cFlags = ClientFlags{}

func (f ClientFlags) store() connection.Store {
	return connection.Store{
		Cmd: cmds.Cmd{
			WalletPath: f.WalletPath,
			WalletName: f.WalletName,
			WalletKey:  f.WalletKey,
		},
		AgencyURL: f.AgencyURL,
		DBPath:    f.DBPath,
	}
}

func (f ClientFlags) cmd() connection.Cmd {
	return connection.Cmd{Store: f.store(), Name: f.Name}
}

// run validates the command and executes it unless it's a dry run.
func run(cmd *cobra.Command, c cmds.Command) (err error) {
	defer err2.Handle(&err)

	try.To(c.Validate())
	if !rootFlags.dryRun {
		cmd.SilenceUsage = true
		try.To1(c.Exec(os.Stdout))
	}
	return nil
}

// connCmd builds the cobra command of the connection subcommand. The
// command is built at run time when the flags are read.
func connCmd(use, short, long string, build func(args []string) (cmds.Command, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			defer err2.Handle(&err)
			return run(cmd, try.To1(build(args)))
		},
	}
}

var (
	createFlags connection.CreateCmd
	optionsFlag string
	updateFlags connection.UpdateCmd
	pingComment string
	msgText     string
	ackMessages bool
)

var createConnCmd = connCmd("create", "Command for creating an invitation", `
Creates a connection as the inviter and prints its invitation JSON. The
invitation is given to the other agent e.g. as a file.

Example
	findy-didexchange connection create \
		--wallet-name TestWallet \
		--wallet-key 15308490f1e4026284594dd08d31291bc8ef2aeac730d0daf6ff87bb92d4336c \
		--name alice > invitation.json
`, func(_ []string) (cmds.Command, error) {
	c := createFlags
	c.Cmd = cFlags.cmd()
	return c, nil
})

var acceptConnCmd = connCmd("accept <invitation file|->", "Command for accepting an invitation", `
Creates a connection as the invitee of the invitation. To use an invitation
file, pass file as command argument. Use - to read the invitation JSON from
standard input.

Example
	findy-didexchange connection accept \
		--wallet-name TestWallet \
		--wallet-key 15308490f1e4026284594dd08d31291bc8ef2aeac730d0daf6ff87bb92d4336c \
		--name faber invitation.json
`, func(args []string) (_ cmds.Command, err error) {
	defer err2.Handle(&err)

	c := connection.AcceptCmd{Cmd: cFlags.cmd()}
	if len(args) > 0 {
		c.Invitation = try.To1(readInvitation(args[0]))
	}
	return c, nil
})

var connectConnCmd = connCmd("connect", "Command for sending the connection request", `
Sends the connection request of the accepted invitation. The options are
given as JSON, e.g. {"use_public_did":true}.
`, func(_ []string) (cmds.Command, error) {
	return connection.ConnectCmd{Cmd: cFlags.cmd(), Options: optionsFlag}, nil
})

var updateConnCmd = connCmd("update", "Command for handling the next message", `
Handles the next message of the connection. With --wait the connection is
polled until it's completed or failed, or the wait time is up.
`, func(_ []string) (cmds.Command, error) {
	c := updateFlags
	c.Cmd = cFlags.cmd()
	return c, nil
})

var infoConnCmd = connCmd("info", "Command for printing both ends of the connection", ``,
	func(_ []string) (cmds.Command, error) {
		return connection.InfoCmd{Cmd: cFlags.cmd()}, nil
	})

var sendConnCmd = connCmd("send", "Command for sending basic message to another agent", `
Sends basic message to another agent over the completed connection.

Example
	findy-didexchange connection send \
		--wallet-name TestWallet \
		--wallet-key 15308490f1e4026284594dd08d31291bc8ef2aeac730d0daf6ff87bb92d4336c \
		--name alice \
		--msg "Hello world!"
`, func(_ []string) (cmds.Command, error) {
	return connection.BasicMsgCmd{Cmd: cFlags.cmd(), Message: msgText}, nil
})

var messagesConnCmd = connCmd("messages", "Command for reading the basic messages", `
Reads the unread basic messages of the connection and prints the message
history. --ack marks the read messages reviewed at the mediator.
`, func(_ []string) (cmds.Command, error) {
	return connection.MessagesCmd{Cmd: cFlags.cmd(), Ack: ackMessages}, nil
})

var pingConnCmd = connCmd("ping", "Command for sending trust ping", ``,
	func(_ []string) (cmds.Command, error) {
		return connection.TrustPingCmd{Cmd: cFlags.cmd(), Comment: pingComment}, nil
	})

var deleteConnCmd = connCmd("delete", "Command for deleting the connection", `
Deletes the pairwise agents of the connection from the mediator and archives
the saved connection.
`, func(_ []string) (cmds.Command, error) {
	return connection.DeleteCmd{Cmd: cFlags.cmd()}, nil
})

var listConnCmd = connCmd("list", "Command for listing the saved connections", ``,
	func(_ []string) (cmds.Command, error) {
		return connection.ListCmd{Store: cFlags.store()}, nil
	})

func walletNameCompletion(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	dirs := completionhelp.WalletLocations()
	if cFlags.WalletPath != "" {
		dirs = []string{cFlags.WalletPath}
	}
	return completionhelp.WalletNames(dirs...), cobra.ShellCompDirectiveNoFileComp
}

// readInvitation reads the invitation JSON of the file or standard input.
func readInvitation(name string) (d []byte, err error) {
	defer err2.Handle(&err, "read invitation")

	var r io.Reader = os.Stdin
	if name != "-" {
		f := try.To1(os.Open(name))
		defer f.Close()
		r = f
	}
	return io.ReadAll(r)
}

func init() {
	cfg := utils.DefaultConfig()

	flags := connectionCmd.PersistentFlags()
	flags.StringVar(&cFlags.WalletPath, "wallet-path", cfg.WalletPath, flagInfo("wallet directory", connectionCmd.Name(), connectionEnvs["wallet-path"]))
	flags.StringVar(&cFlags.WalletName, "wallet-name", "", flagInfo("wallet name", connectionCmd.Name(), connectionEnvs["wallet-name"]))
	flags.StringVar(&cFlags.WalletKey, "wallet-key", "", flagInfo("wallet key, 32 bytes in hex", connectionCmd.Name(), connectionEnvs["wallet-key"]))
	flags.StringVar(&cFlags.AgencyURL, "agency-url", cfg.AgencyURL, flagInfo("mediator base address", connectionCmd.Name(), connectionEnvs["agency-url"]))
	flags.StringVar(&cFlags.DBPath, "db-path", cfg.DBPath, flagInfo("connection database directory", connectionCmd.Name(), connectionEnvs["db-path"]))
	flags.StringVar(&cFlags.Name, "name", "", flagInfo("name of the connection", connectionCmd.Name(), connectionEnvs["name"]))

	c := createConnCmd.Flags()
	c.BoolVar(&createFlags.OutOfBand, "oob", false, "make an out-of-band invitation")
	c.StringVar(&createFlags.GoalCode, "goal-code", "", "goal code of the out-of-band invitation")
	c.StringVar(&createFlags.Goal, "goal", "", "goal of the out-of-band invitation")
	c.BoolVar(&createFlags.Handshake, "handshake", true, "out-of-band invitation asks for the connection handshake")
	c.StringVar(&createFlags.RequestAttach, "attach", "", "JSON request attachment of the out-of-band invitation")

	connectConnCmd.Flags().StringVar(&optionsFlag, "options", "", "connection options JSON")

	u := updateConnCmd.Flags()
	u.DurationVar(&updateFlags.Wait, "wait", 0, "poll until completed or failed, at most this long")
	u.DurationVar(&updateFlags.Interval, "interval", cfg.PollInterval, "poll interval with --wait")

	sendConnCmd.Flags().StringVar(&msgText, "msg", "", "message to be send")
	messagesConnCmd.Flags().BoolVar(&ackMessages, "ack", false, "mark the read messages reviewed")
	pingConnCmd.Flags().StringVar(&pingComment, "comment", "", "comment of the ping")

	acceptConnCmd.Args = cobra.ExactArgs(1)
	_ = connectionCmd.RegisterFlagCompletionFunc("wallet-name", walletNameCompletion)

	rootCmd.AddCommand(connectionCmd)
	connectionCmd.AddCommand(createConnCmd, acceptConnCmd, connectConnCmd,
		updateConnCmd, infoConnCmd, sendConnCmd, messagesConnCmd,
		pingConnCmd, deleteConnCmd, listConnCmd)
}
