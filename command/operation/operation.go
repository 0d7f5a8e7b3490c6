package operation

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/notuslabs/notus-aa/command"
	"github.com/notuslabs/notus-aa/command/helper"
	"github.com/notuslabs/notus-aa/crypto"
	"github.com/notuslabs/notus-aa/helper/hex"
	"github.com/notuslabs/notus-aa/types"
)

var (
	digestParams  = &operationParams{}
	signParams    = &operationParams{}
	sendParams    = &sendOperationParams{}
	receiptParams = &receiptOperationParams{}
)

func GetCommand() *cobra.Command {
	operationCmd := &cobra.Command{
		Use:   "operation",
		Short: "Top level command for building, signing and sending operations. Only accepts subcommands.",
	}

	helper.RegisterJSONRPCFlag(operationCmd)

	registerSubcommands(operationCmd)

	return operationCmd
}

func registerSubcommands(baseCmd *cobra.Command) {
	baseCmd.AddCommand(
		getDigestCommand(),
		getSignCommand(),
		getSendCommand(),
		getReceiptCommand(),
	)
}

func getDigestCommand() *cobra.Command {
	digestCmd := &cobra.Command{
		Use:   "digest",
		Short: "Prints the typed data digest an account owner signs",
		Run:   runDigestCommand,
	}

	setOperationFlags(digestCmd, digestParams)
	helper.SetRequiredFlags(digestCmd, []string{fromFlag, toFlag})

	return digestCmd
}

func runDigestCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	result, err := digestParams.digest()
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(result)
}

func (p *operationParams) digest() (*DigestResult, error) {
	op, err := p.buildOperation(nil)
	if err != nil {
		return nil, err
	}

	digest, err := crypto.NewEIP712Signer(op.ChainID).Digest(op)
	if err != nil {
		return nil, err
	}

	return &DigestResult{
		From:   op.From,
		Digest: digest,
	}, nil
}

func getSignCommand() *cobra.Command {
	signCmd := &cobra.Command{
		Use:   "sign",
		Short: "Signs an operation and prints its raw encoding",
		Run:   runSignCommand,
	}

	setOperationFlags(signCmd, signParams)
	registerKeyFlag(signCmd, signParams)
	setRequiredOperationFlags(signCmd)

	return signCmd
}

func runSignCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	op, err := signParams.signOperation()
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(&SignResult{
		Hash: op.Hash(),
		From: op.From,
		Raw:  hex.EncodeToHex(op.MarshalRLP()),
	})
}

var errRawWithFlags = errors.New("--raw can not be combined with operation fields")

type sendOperationParams struct {
	operationParams

	raw string
}

func getSendCommand() *cobra.Command {
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Submits an operation to the node, either pre-signed with --raw or signed from the flags",
		Run:   runSendCommand,
	}

	setOperationFlags(sendCmd, &sendParams.operationParams)
	registerKeyFlag(sendCmd, &sendParams.operationParams)

	sendCmd.Flags().StringVar(
		&sendParams.raw,
		rawFlag,
		"",
		"the hex encoded signed operation",
	)

	return sendCmd
}

func runSendCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	client, err := newNodeClient(helper.GetJSONRPCAddress(cmd))
	if err != nil {
		outputter.SetError(err)

		return
	}

	defer client.Close()

	hash, err := sendParams.send(client, cmd.Flags().Changed(nonceFlag), cmd.Flags().Changed(toFlag))
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(&SendResult{Hash: hash})
}

// send submits the raw operation, or signs one from the flags. An unset nonce
// is fetched from the node.
func (p *sendOperationParams) send(client *nodeClient, nonceSet, fieldsSet bool) (types.Hash, error) {
	if p.raw != "" {
		if nonceSet || fieldsSet {
			return types.ZeroHash, errRawWithFlags
		}

		raw, err := parseHex(p.raw)
		if err != nil {
			return types.ZeroHash, err
		}

		return client.sendRaw(raw)
	}

	key, err := helper.ReadPrivateKey(p.privateKeyRaw)
	if err != nil {
		return types.ZeroHash, err
	}

	op, err := p.buildOperation(key)
	if err != nil {
		return types.ZeroHash, err
	}

	if !nonceSet {
		if op.Nonce, err = client.sequenceNumber(op.From); err != nil {
			return types.ZeroHash, err
		}
	}

	signed, err := crypto.NewEIP712Signer(op.ChainID).SignOperation(op, key)
	if err != nil {
		return types.ZeroHash, err
	}

	return client.sendRaw(signed.MarshalRLP())
}

var errReceiptNotFound = errors.New("no receipt for operation")

type receiptOperationParams struct {
	hash types.Hash
}

func getReceiptCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "receipt [hash]",
		Short:   "Prints the receipt of an applied operation",
		Args:    cobra.ExactArgs(1),
		PreRunE: runReceiptPreRun,
		Run:     runReceiptCommand,
	}
}

func runReceiptPreRun(_ *cobra.Command, args []string) error {
	return receiptParams.hash.UnmarshalText([]byte(args[0]))
}

func runReceiptCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	client, err := newNodeClient(helper.GetJSONRPCAddress(cmd))
	if err != nil {
		outputter.SetError(err)

		return
	}

	defer client.Close()

	receipt, err := receiptParams.receipt(client)
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(receipt)
}

func (p *receiptOperationParams) receipt(client *nodeClient) (*ReceiptResult, error) {
	receipt, err := client.receipt(p.hash)
	if err != nil {
		return nil, err
	}

	if receipt == nil {
		return nil, errReceiptNotFound
	}

	return receipt, nil
}
