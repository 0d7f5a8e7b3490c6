package genesis

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notuslabs/notus-aa/chain"
	"github.com/notuslabs/notus-aa/command"
	"github.com/notuslabs/notus-aa/contracts/paymaster"
)

func GetCommand() *cobra.Command {
	genesisCmd := &cobra.Command{
		Use:     "genesis",
		Short:   "Generates the genesis configuration file with the passed in parameters",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	setFlags(genesisCmd)

	return genesisCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&params.genesisPath,
		dirFlag,
		fmt.Sprintf("./%s", command.DefaultGenesisFileName),
		"the path the genesis file is written to",
	)

	cmd.Flags().StringVar(
		&params.name,
		nameFlag,
		"notus",
		"the name for the chain",
	)

	cmd.Flags().Uint64Var(
		&params.chainID,
		chainIDFlag,
		chain.DevChainID,
		"the ID of the chain",
	)

	cmd.Flags().StringArrayVar(
		&params.premine,
		premineFlag,
		[]string{},
		fmt.Sprintf(
			"the premined accounts and native balances (format: <address>[:<balance>]). Default premined balance: %s",
			command.DefaultPremineBalance,
		),
	)

	cmd.Flags().StringArrayVar(
		&params.mint,
		mintFlag,
		[]string{},
		"the initial token holders (format: <address>:<amount>). This flag can be used multiple times",
	)

	cmd.Flags().StringVar(
		&params.deployerRaw,
		deployerFlag,
		chain.DevDeployer.String(),
		"the account deploying the token, factory and paymaster",
	)

	cmd.Flags().StringVar(
		&params.operatorRaw,
		operatorFlag,
		chain.DevOperator.String(),
		"the account collecting operation fees",
	)

	cmd.Flags().StringVar(
		&params.tokenName,
		tokenNameFlag,
		command.DefaultTokenName,
		"the name of the fee token",
	)

	cmd.Flags().StringVar(
		&params.tokenSymbol,
		tokenSymbolFlag,
		command.DefaultTokenSymbol,
		"the symbol of the fee token",
	)

	cmd.Flags().Uint8Var(
		&params.tokenDecimals,
		tokenDecimalsFlag,
		18,
		"the decimals of the fee token",
	)

	cmd.Flags().BoolVar(
		&params.noPaymaster,
		noPaymasterFlag,
		false,
		"do not deploy the token paymaster",
	)

	cmd.Flags().StringVar(
		&params.paymasterReserve,
		paymasterReserveFlag,
		"0x16345785D8A0000", // 0.1 ETH
		"the native amount the deployer funds the paymaster with",
	)

	cmd.Flags().StringVar(
		&params.paymasterPrice,
		paymasterPriceFlag,
		paymaster.DefaultPrice.String(),
		"the least token amount the paymaster accepts for one sponsored operation",
	)

	cmd.Flags().BoolVar(
		&params.sponsorAny,
		sponsorAnyFlag,
		false,
		"let the paymaster sponsor accounts the factory did not create",
	)
}

func runPreRun(_ *cobra.Command, _ []string) error {
	if err := params.validateFlags(); err != nil {
		return err
	}

	return params.initRawParams()
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	if err := params.generateGenesis(); err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(params.getResult())
}
