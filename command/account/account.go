package account

import (
	"github.com/spf13/cobra"

	"github.com/notuslabs/notus-aa/command"
	"github.com/notuslabs/notus-aa/command/helper"
)

func GetCommand() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Top level command for smart accounts. Only accepts subcommands.",
	}

	registerSubcommands(accountCmd)

	return accountCmd
}

func registerSubcommands(baseCmd *cobra.Command) {
	baseCmd.AddCommand(
		getAddressCommand(),
	)
}

func getAddressCommand() *cobra.Command {
	addressCmd := &cobra.Command{
		Use:     "address",
		Short:   "Computes the address the factory creates an account at, without a running node",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	setFlags(addressCmd)
	helper.SetRequiredFlags(addressCmd, params.getRequiredFlags())

	return addressCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&params.chainRaw,
		command.ChainFlag,
		command.DefaultChainName,
		"the preset name or genesis file the factory was deployed by",
	)

	cmd.Flags().StringVar(
		&params.ownerRaw,
		ownerFlag,
		"",
		"the owner key address of the account",
	)

	cmd.Flags().StringVar(
		&params.saltRaw,
		saltFlag,
		"0x0",
		"the 32 byte salt passed to createAccount",
	)
}

func runPreRun(_ *cobra.Command, _ []string) error {
	return params.initRawParams()
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	result, err := params.computeAddress()
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(result)
}
