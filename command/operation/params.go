package operation

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/spf13/cobra"

	"github.com/notuslabs/notus-aa/chain"
	"github.com/notuslabs/notus-aa/command/helper"
	"github.com/notuslabs/notus-aa/contracts/paymaster"
	"github.com/notuslabs/notus-aa/crypto"
	"github.com/notuslabs/notus-aa/helper/hex"
	"github.com/notuslabs/notus-aa/types"
)

const (
	fromFlag           = "from"
	toFlag             = "to"
	nonceFlag          = "nonce"
	valueFlag          = "value"
	gasLimitFlag       = "gas-limit"
	maxFeeFlag         = "max-fee-per-gas"
	priorityFeeFlag    = "max-priority-fee-per-gas"
	gasPerPubdataFlag  = "gas-per-pubdata"
	chainIDFlag        = "chain-id"
	inputFlag          = "input"
	paymasterFlag      = "paymaster"
	paymasterInputFlag = "paymaster-input"
	approvalTokenFlag  = "approval-token"
	minAllowanceFlag   = "min-allowance"
	rawFlag            = "raw"
)

const (
	defaultGasLimit = 1000000
	defaultMaxFee   = "1000000000" // 1 gwei
)

var (
	errInvalidAddress     = errors.New("invalid address")
	errInvalidAmount      = errors.New("invalid amount")
	errInvalidHex         = errors.New("invalid hex data")
	errPaymasterInput     = errors.New("paymaster input and approval flow are mutually exclusive")
	errPaymasterFlowUnset = errors.New("a paymaster needs either --paymaster-input or --approval-token")
)

// operationParams are the fields of an operation as given on the command line
type operationParams struct {
	fromRaw        string
	toRaw          string
	nonce          uint64
	valueRaw       string
	gasLimit       uint64
	maxFeeRaw      string
	priorityFeeRaw string
	gasPerPubdata  uint64
	chainID        uint64
	inputRaw       string

	paymasterRaw      string
	paymasterInputRaw string
	approvalTokenRaw  string
	minAllowanceRaw   string

	privateKeyRaw string
}

func setOperationFlags(cmd *cobra.Command, p *operationParams) {
	cmd.Flags().StringVar(&p.fromRaw, fromFlag, "", "the sender. Defaults to the signing key address")
	cmd.Flags().StringVar(&p.toRaw, toFlag, "", "the called contract")
	cmd.Flags().Uint64Var(&p.nonce, nonceFlag, 0, "the sender sequence number")
	cmd.Flags().StringVar(&p.valueRaw, valueFlag, "0", "the native value sent along")
	cmd.Flags().Uint64Var(&p.gasLimit, gasLimitFlag, defaultGasLimit, "the gas limit of the operation")
	cmd.Flags().StringVar(&p.maxFeeRaw, maxFeeFlag, defaultMaxFee, "the max fee per gas")
	cmd.Flags().StringVar(&p.priorityFeeRaw, priorityFeeFlag, defaultMaxFee, "the max priority fee per gas")
	cmd.Flags().Uint64Var(
		&p.gasPerPubdata,
		gasPerPubdataFlag,
		types.DefaultGasPerPubdata,
		"the gas the sender pays per published byte",
	)
	cmd.Flags().Uint64Var(&p.chainID, chainIDFlag, chain.DevChainID, "the chain the operation is valid on")
	cmd.Flags().StringVar(&p.inputRaw, inputFlag, "", "the hex encoded call data")
	cmd.Flags().StringVar(&p.paymasterRaw, paymasterFlag, "", "the paymaster sponsoring the fee")
	cmd.Flags().StringVar(&p.paymasterInputRaw, paymasterInputFlag, "", "the hex encoded paymaster input")
	cmd.Flags().StringVar(
		&p.approvalTokenRaw,
		approvalTokenFlag,
		"",
		"builds an approval based paymaster input paying with this token",
	)
	cmd.Flags().StringVar(
		&p.minAllowanceRaw,
		minAllowanceFlag,
		paymaster.DefaultPrice.String(),
		"the token amount the approval based flow lets the paymaster pull",
	)

	cmd.MarkFlagsMutuallyExclusive(paymasterInputFlag, approvalTokenFlag)
}

func parseAddress(raw string) (types.Address, error) {
	if !types.IsHexAddress(raw) {
		return types.ZeroAddress, fmt.Errorf("%w: %q", errInvalidAddress, raw)
	}

	return types.StringToAddress(raw), nil
}

func parseAmount(raw string) (*big.Int, error) {
	amount, ok := math.ParseBig256(raw)
	if raw == "" || !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", errInvalidAmount, raw)
	}

	return amount, nil
}

func parseHex(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}

	buf, err := hex.DecodeHex(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidHex, err)
	}

	return buf, nil
}

// buildOperation assembles the unsigned operation. With a nil key the sender
// must be given explicitly.
func (p *operationParams) buildOperation(key *ecdsa.PrivateKey) (*types.Operation, error) {
	var (
		op  = &types.Operation{Nonce: p.nonce, GasLimit: p.gasLimit, GasPerPubdata: p.gasPerPubdata, ChainID: p.chainID}
		err error
	)

	switch {
	case p.fromRaw != "":
		if op.From, err = parseAddress(p.fromRaw); err != nil {
			return nil, fmt.Errorf("--%s: %w", fromFlag, err)
		}
	case key != nil:
		op.From = crypto.PubKeyToAddress(&key.PublicKey)
	default:
		return nil, fmt.Errorf("--%s: %w", fromFlag, errInvalidAddress)
	}

	if op.To, err = parseAddress(p.toRaw); err != nil {
		return nil, fmt.Errorf("--%s: %w", toFlag, err)
	}

	if op.Value, err = parseAmount(p.valueRaw); err != nil {
		return nil, fmt.Errorf("--%s: %w", valueFlag, err)
	}

	if op.MaxFeePerGas, err = parseAmount(p.maxFeeRaw); err != nil {
		return nil, fmt.Errorf("--%s: %w", maxFeeFlag, err)
	}

	if op.MaxPriorityFeePerGas, err = parseAmount(p.priorityFeeRaw); err != nil {
		return nil, fmt.Errorf("--%s: %w", priorityFeeFlag, err)
	}

	if op.Input, err = parseHex(p.inputRaw); err != nil {
		return nil, fmt.Errorf("--%s: %w", inputFlag, err)
	}

	if op.PaymasterParams, err = p.paymasterParams(); err != nil {
		return nil, err
	}

	return op, nil
}

func (p *operationParams) paymasterParams() (*types.PaymasterParams, error) {
	if p.paymasterRaw == "" {
		return nil, nil
	}

	paymasterAddr, err := parseAddress(p.paymasterRaw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", paymasterFlag, err)
	}

	var input []byte

	switch {
	case p.paymasterInputRaw != "" && p.approvalTokenRaw != "":
		return nil, errPaymasterInput
	case p.paymasterInputRaw != "":
		if input, err = parseHex(p.paymasterInputRaw); err != nil {
			return nil, fmt.Errorf("--%s: %w", paymasterInputFlag, err)
		}
	case p.approvalTokenRaw != "":
		token, err := parseAddress(p.approvalTokenRaw)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", approvalTokenFlag, err)
		}

		allowance, err := parseAmount(p.minAllowanceRaw)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", minAllowanceFlag, err)
		}

		if input, err = types.EncodeApprovalBasedFlow(token, allowance, nil); err != nil {
			return nil, err
		}
	default:
		return nil, errPaymasterFlowUnset
	}

	return &types.PaymasterParams{
		Paymaster:      paymasterAddr,
		PaymasterInput: input,
	}, nil
}

// signOperation builds the operation and signs it with the given or prompted key
func (p *operationParams) signOperation() (*types.Operation, error) {
	key, err := helper.ReadPrivateKey(p.privateKeyRaw)
	if err != nil {
		return nil, err
	}

	op, err := p.buildOperation(key)
	if err != nil {
		return nil, err
	}

	return crypto.NewEIP712Signer(op.ChainID).SignOperation(op, key)
}

func setRequiredOperationFlags(cmd *cobra.Command) {
	helper.SetRequiredFlags(cmd, []string{toFlag})
}

func registerKeyFlag(cmd *cobra.Command, p *operationParams) {
	helper.RegisterPrivateKeyFlag(cmd, &p.privateKeyRaw)
}
