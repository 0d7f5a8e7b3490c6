package jsonrpc

import (
	"errors"
	"fmt"

	"github.com/notuslabs/notus-aa/chain"
	"github.com/notuslabs/notus-aa/crypto"
	"github.com/notuslabs/notus-aa/state"
	"github.com/notuslabs/notus-aa/types"
)

type aaStore interface {
	// SubmitOperation applies an operation and returns its receipt
	SubmitOperation(op *types.Operation) (*types.Receipt, error)

	// GetReceipt returns ErrNotFound for an operation never applied
	GetReceipt(hash types.Hash) (*types.Receipt, error)

	GetReceiptsBySender(sender types.Address, from uint64, limit int) ([]*types.Receipt, error)

	GetSequenceNumber(addr types.Address) (uint64, error)

	ComputeAccountAddress(factory types.Address, salt types.Hash, owner types.Address) (types.Address, error)

	// Call runs a call on the committed state and discards its effects
	Call(from, to types.Address, input []byte) ([]byte, error)

	Deployments() *chain.Deployed
}

// AA is the account abstraction jsonrpc endpoint
type AA struct {
	store         aaStore
	chainID       uint64
	receiptsLimit uint64

	metrics *Metrics
}

func decodeOperation(raw argBytes) (*types.Operation, error) {
	op := new(types.Operation)
	if err := op.UnmarshalRLP(raw); err != nil {
		return nil, NewInvalidParamsError(fmt.Sprintf("invalid operation: %v", err))
	}

	return op, nil
}

// SendRawOperation applies a signed operation and returns its hash
func (a *AA) SendRawOperation(raw argBytes) (interface{}, error) {
	a.metrics.AAAPICounterInc(AASendRawOperationLabel)

	op, err := decodeOperation(raw)
	if err != nil {
		return nil, err
	}

	receipt, err := a.store.SubmitOperation(op)
	if err != nil {
		var opErr *state.OperationError
		if errors.As(err, &opErr) {
			a.metrics.RejectedCounterInc(string(opErr.Kind))

			return nil, NewRejectedOperationError(string(opErr.Kind), opErr.Error())
		}

		return nil, err
	}

	return receipt.OperationHash, nil
}

// GetOperationReceipt returns the receipt of an applied operation, or null
func (a *AA) GetOperationReceipt(hash types.Hash) (interface{}, error) {
	a.metrics.AAAPICounterInc(AAGetOperationReceiptLabel)

	receipt, err := a.store.GetReceipt(hash)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return toReceipt(receipt), nil
}

// GetReceiptsBySender returns the receipts of sender in sequence order
func (a *AA) GetReceiptsBySender(sender types.Address, from *argUint64) (interface{}, error) {
	a.metrics.AAAPICounterInc(AAGetReceiptsBySenderLabel)

	start := uint64(0)
	if from != nil {
		start = uint64(*from)
	}

	receipts, err := a.store.GetReceiptsBySender(sender, start, int(a.receiptsLimit))
	if err != nil {
		return nil, err
	}

	res := make([]*receipt, 0, len(receipts))
	for _, r := range receipts {
		res = append(res, toReceipt(r))
	}

	return res, nil
}

// GetOperationDigest returns the typed data digest the sender signs
func (a *AA) GetOperationDigest(raw argBytes) (interface{}, error) {
	a.metrics.AAAPICounterInc(AAGetOperationDigestLabel)

	op, err := decodeOperation(raw)
	if err != nil {
		return nil, err
	}

	return crypto.NewEIP712Signer(a.chainID).Digest(op)
}

// GetSequenceNumber returns the next nonce an operation of addr must carry
func (a *AA) GetSequenceNumber(addr types.Address) (interface{}, error) {
	a.metrics.AAAPICounterInc(AAGetSequenceNumberLabel)

	nonce, err := a.store.GetSequenceNumber(addr)
	if err != nil {
		return nil, err
	}

	return argUintPtr(nonce), nil
}

// ComputeAccountAddress returns the address a factory creates an account at
func (a *AA) ComputeAccountAddress(factory types.Address, salt types.Hash, owner types.Address) (interface{}, error) {
	a.metrics.AAAPICounterInc(AAComputeAccountAddressLabel)

	return a.store.ComputeAccountAddress(factory, salt, owner)
}

// Call runs a read only call and returns its output
func (a *AA) Call(arg *callArgs) (interface{}, error) {
	a.metrics.AAAPICounterInc(AACallLabel)

	if arg == nil || arg.To == nil {
		return nil, NewInvalidParamsError("missing call target")
	}

	from := types.ZeroAddress
	if arg.From != nil {
		from = *arg.From
	}

	ret, err := a.store.Call(from, *arg.To, arg.input())
	if err != nil {
		return nil, err
	}

	return argBytesPtr(ret), nil
}

// GetDeployments returns the addresses of the genesis contracts
func (a *AA) GetDeployments() (interface{}, error) {
	a.metrics.AAAPICounterInc(AAGetDeploymentsLabel)

	return a.store.Deployments(), nil
}
