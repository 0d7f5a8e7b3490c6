package backup

import (
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/notuslabs/notus-aa/command"
	"github.com/notuslabs/notus-aa/command/helper"
)

func GetCommand() *cobra.Command {
	backupCmd := &cobra.Command{
		Use:     "backup",
		Short:   "Exports the ledger of a stopped node into an archive file",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	setFlags(backupCmd)
	helper.SetRequiredFlags(backupCmd, params.getRequiredFlags())

	return backupCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&params.dataDir,
		command.DataDirFlag,
		command.DefaultDataDir,
		"the data directory of the node",
	)

	cmd.Flags().StringVar(
		&params.out,
		outFlag,
		"",
		"the export path for the archive",
	)

	cmd.Flags().BoolVar(
		&params.overwrite,
		overwriteFlag,
		false,
		"overwrite the archive if it exists",
	)

	cmd.Flags().BoolVar(
		&params.zstd,
		zstdFlag,
		false,
		"compress the archive with zstd",
	)

	cmd.Flags().IntVar(
		&params.zstdLevel,
		zstdLevelFlag,
		3,
		"the zstd compression level",
	)
}

func runPreRun(_ *cobra.Command, _ []string) error {
	return params.validateFlags()
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "backup",
		Level: hclog.Info,
	})

	if err := params.createBackup(logger); err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(params.getResult())
}
