package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notuslabs/notus-aa/command"
	"github.com/notuslabs/notus-aa/command/account"
	"github.com/notuslabs/notus-aa/command/backup"
	"github.com/notuslabs/notus-aa/command/genesis"
	"github.com/notuslabs/notus-aa/command/helper"
	"github.com/notuslabs/notus-aa/command/operation"
	"github.com/notuslabs/notus-aa/command/server"
	"github.com/notuslabs/notus-aa/command/version"
)

type RootCommand struct {
	baseCmd *cobra.Command
}

func NewRootCommand() *RootCommand {
	rootCommand := &RootCommand{
		baseCmd: &cobra.Command{
			Short: "Notus AA runs an account abstraction ledger with smart accounts and a token paymaster",
			PersistentPreRun: func(cmd *cobra.Command, _ []string) {
				command.InitializePprofServer(cmd)
			},
		},
	}

	helper.RegisterJSONOutputFlag(rootCommand.baseCmd)
	helper.RegisterPprofFlag(rootCommand.baseCmd)

	rootCommand.registerSubCommands()

	return rootCommand
}

func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(
		version.GetCommand(),
		account.GetCommand(),
		operation.GetCommand(),
		backup.GetCommand(),
		genesis.GetCommand(),
		server.GetCommand(),
	)
}

func (rc *RootCommand) Execute() {
	if err := rc.baseCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
