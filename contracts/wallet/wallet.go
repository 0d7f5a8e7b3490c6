package wallet

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/notuslabs/notus-aa/contracts/abis"
	"github.com/notuslabs/notus-aa/contracts/token"
	"github.com/notuslabs/notus-aa/crypto"
	"github.com/notuslabs/notus-aa/state/runtime"
	"github.com/notuslabs/notus-aa/types"
)

// Name under which the wallet implementation is registered
const Name = "NotusWallet"

// Bytecode is the code whose fingerprint selects this implementation
var Bytecode = abis.Artifact(Name)

var slotOwner = runtime.SlotHash(0)

// Wallet is an account controlled by a single owner key
type Wallet struct{}

func New() *Wallet {
	return &Wallet{}
}

// Owner returns the owner stored by the wallet at self
func Owner(host runtime.Host, self types.Address) types.Address {
	return runtime.HashToAddress(host.GetStorage(self, slotOwner))
}

// Construct stores the abi encoded owner
func (w *Wallet) Construct(host runtime.Host, self, deployer types.Address, input []byte) error {
	args, err := abis.WalletABI.Constructor.Inputs.Unpack(input)
	if err != nil {
		return runtime.Revert("invalid constructor arguments: %v", err)
	}

	//nolint:forcetypeassert
	owner := types.Address(args[0].(common.Address))
	if owner == types.ZeroAddress {
		return runtime.Revert("owner is the zero address")
	}

	host.SetStorage(self, slotOwner, owner.Hash())

	return nil
}

func (w *Wallet) Run(host runtime.Host, call *runtime.Call) ([]byte, error) {
	if len(call.Input) == 0 {
		// plain deposit
		return nil, nil
	}

	method, _, err := abis.DecodeCall(abis.WalletABI, call.Input)
	if err != nil {
		return nil, runtime.Revert("%v", err)
	}

	switch method.Name {
	case "owner":
		return method.Outputs.Pack(common.Address(Owner(host, call.Address)))

	case "executeBatchTransaction":
		if call.Caller != call.Address {
			return nil, runtime.Revert("only the account itself can execute a batch")
		}

		calls, err := DecodeBatch(call.Input)
		if err != nil {
			return nil, err
		}

		return nil, executeBatch(host, call, calls)
	}

	return nil, runtime.Revert("method %s not implemented", method.Name)
}

// executeBatch runs the sub-calls in order and stops at the first failure
func executeBatch(host runtime.Host, call *runtime.Call, calls []SubCall) error {
	for i, sub := range calls {
		_, err := host.Call(&runtime.Call{
			Caller:  call.Address,
			Address: sub.Target,
			Value:   big.NewInt(0),
			Input:   sub.Data,
			Depth:   call.Depth + 1,
		})
		if err != nil {
			return fmt.Errorf("sub-call %d to %s: %w", i, sub.Target, err)
		}
	}

	return nil
}

func (w *Wallet) ValidateTransaction(host runtime.Host, op *types.Operation, digest types.Hash) error {
	if op.To == op.From {
		// a call to the account itself must carry at least one sub-call
		if len(op.Input) == 0 {
			return fmt.Errorf("%w: self-call without a batch", runtime.ErrMalformedBatch)
		}

		if IsBatch(op.Input) {
			if _, err := DecodeBatch(op.Input); err != nil {
				return err
			}
		}
	}

	if err := host.IncrementNonceIfEquals(op.From, op.Nonce); err != nil {
		return err
	}

	signer, err := crypto.RecoverAddress(digest.Bytes(), op.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", runtime.ErrInvalidSignature, err)
	}

	if owner := Owner(host, op.From); signer != owner {
		return fmt.Errorf("%w: signed by %s, owner is %s", runtime.ErrInvalidSignature, signer, owner)
	}

	return nil
}

func (w *Wallet) PayForTransaction(host runtime.Host, op *types.Operation) error {
	return payFee(host, op)
}

func (w *Wallet) PrepareForPaymaster(host runtime.Host, op *types.Operation) error {
	return approvePaymaster(host, op)
}

func (w *Wallet) ExecuteTransaction(host runtime.Host, op *types.Operation) error {
	return execute(host, op)
}

func payFee(host runtime.Host, op *types.Operation) error {
	return host.Transfer(op.From, runtime.BootloaderAddress, op.MaxFee())
}

// approvePaymaster grants the paymaster the allowance the flow asks for, unless
// it already holds enough
func approvePaymaster(host runtime.Host, op *types.Operation) error {
	flow, err := types.DecodePaymasterFlow(op.PaymasterInput())
	if err != nil {
		return fmt.Errorf("%w: %v", runtime.ErrUnsupportedFlow, err)
	}

	if flow.Kind != types.FlowApprovalBased {
		return nil
	}

	ledger := token.NewLedger(host, flow.Token, op.From, 0)

	allowance, err := ledger.Allowance(op.From, op.Paymaster())
	if err != nil {
		return err
	}

	if allowance.Cmp(flow.MinimalAllowance) >= 0 {
		return nil
	}

	return ledger.Approve(op.Paymaster(), flow.MinimalAllowance)
}

func execute(host runtime.Host, op *types.Operation) error {
	_, err := host.Call(&runtime.Call{
		Caller:  op.From,
		Address: op.To,
		Value:   op.Value,
		Input:   op.Input,
		Depth:   1,
	})

	return err
}
