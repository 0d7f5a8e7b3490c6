package state

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/notuslabs/notus-aa/crypto"
	"github.com/notuslabs/notus-aa/helper/telemetry"
	"github.com/notuslabs/notus-aa/state/runtime"
	"github.com/notuslabs/notus-aa/types"
)

const (
	TxBaseGas        uint64 = 21000
	TxDataZeroGas    uint64 = 4
	TxDataNonZeroGas uint64 = 16
)

// FailureKind names why an operation did not take full effect
type FailureKind string

const (
	AuthenticationFailure   FailureKind = "AuthenticationFailure"
	ReplayOrOrderingFailure FailureKind = "ReplayOrOrderingFailure"
	MalformedOperation      FailureKind = "MalformedOperation"
	SponsorshipRefused      FailureKind = "SponsorshipRefused"
	FeePaymentFailure       FailureKind = "FeePaymentFailure"
	SubcallFailure          FailureKind = "SubcallFailure"
)

// OperationError is returned for operations rejected before execution.
// Nothing done on behalf of a rejected operation is kept.
type OperationError struct {
	Kind FailureKind
	Err  error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func reject(kind FailureKind, err error) *OperationError {
	return &OperationError{Kind: kind, Err: err}
}

// Executor is the entrypoint of operations
type Executor struct {
	logger   hclog.Logger
	state    *State
	registry *runtime.Registry
	signer   *crypto.EIP712Signer
	operator types.Address
	metrics  *Metrics
	tracer   telemetry.Tracer
}

// NewExecutor creates a new executor. Fees are paid out to operator.
func NewExecutor(
	logger hclog.Logger,
	state *State,
	registry *runtime.Registry,
	chainID uint64,
	operator types.Address,
) *Executor {
	return &Executor{
		logger:   logger.Named("executor"),
		state:    state,
		registry: registry,
		signer:   crypto.NewEIP712Signer(chainID),
		operator: operator,
		metrics:  NilMetrics(),
		tracer:   telemetry.NewNilTracerProvider(context.Background()).NewTracer("executor"),
	}
}

func (e *Executor) SetMetrics(metrics *Metrics) {
	e.metrics = metrics
}

func (e *Executor) SetTracer(tracer telemetry.Tracer) {
	e.tracer = tracer
}

func (e *Executor) State() *State {
	return e.state
}

func (e *Executor) Registry() *runtime.Registry {
	return e.registry
}

func (e *Executor) Signer() *crypto.EIP712Signer {
	return e.signer
}

func (e *Executor) ChainID() uint64 {
	return e.signer.ChainID()
}

// BeginTxn opens a transition on top of the committed state
func (e *Executor) BeginTxn() *Transition {
	return &Transition{
		logger:   e.logger.Named("transition"),
		txn:      e.state.NewTxn(),
		state:    e.state,
		registry: e.registry,
		chainID:  e.ChainID(),
	}
}

// IntrinsicGas returns the gas charged before any code runs
func IntrinsicGas(op *types.Operation) uint64 {
	gas := TxBaseGas

	for _, b := range op.Input {
		if b == 0 {
			gas += TxDataZeroGas
		} else {
			gas += TxDataNonZeroGas
		}
	}

	return gas
}

// checkOperation runs the checks that need no state
func (e *Executor) checkOperation(op *types.Operation) error {
	if op.ChainID != e.ChainID() {
		return fmt.Errorf("%w: expected %d, got %d", crypto.ErrChainIDMismatch, e.ChainID(), op.ChainID)
	}

	if op.MaxFeePerGas == nil || op.MaxFeePerGas.Sign() < 0 {
		return errors.New("invalid max fee per gas")
	}

	if fee := op.PriorityFee(); fee.Sign() < 0 || fee.Cmp(op.MaxFeePerGas) > 0 {
		return errors.New("priority fee higher than max fee per gas")
	}

	if op.Value != nil && op.Value.Sign() < 0 {
		return errors.New("negative value")
	}

	if intrinsic := IntrinsicGas(op); op.GasLimit < intrinsic {
		return fmt.Errorf("gas limit %d below intrinsic gas %d", op.GasLimit, intrinsic)
	}

	if op.GasPerPubdata == 0 {
		return errors.New("gas per pubdata byte must be positive")
	}

	if len(op.Signature) == 0 {
		return errors.New("missing signature")
	}

	for i, dep := range op.FactoryDeps {
		hash, err := crypto.HashBytecode(dep)
		if err != nil {
			return fmt.Errorf("factory dependency %d: %w", i, err)
		}

		if _, ok := e.registry.Get(hash); !ok {
			return fmt.Errorf("factory dependency %d: %w: %s", i, runtime.ErrUnknownCode, hash)
		}
	}

	return nil
}

func (e *Executor) accountOf(t *Transition, addr types.Address) (runtime.Account, error) {
	codeHash := t.GetCodeHash(addr)
	if codeHash == types.ZeroHash {
		if account, ok := e.registry.DefaultAccount(); ok {
			return account, nil
		}

		return nil, fmt.Errorf("%w: %s has no code", runtime.ErrNotAccount, addr)
	}

	contract, ok := e.registry.Get(codeHash)
	if !ok {
		return nil, fmt.Errorf("%w: %s", runtime.ErrUnknownCode, codeHash)
	}

	account, ok := contract.(runtime.Account)
	if !ok {
		return nil, fmt.Errorf("%w: %s", runtime.ErrNotAccount, addr)
	}

	return account, nil
}

func (e *Executor) paymasterOf(t *Transition, addr types.Address) (runtime.Paymaster, error) {
	contract, ok := e.registry.Get(t.GetCodeHash(addr))
	if !ok {
		return nil, fmt.Errorf("%w: %s", runtime.ErrNotPaymaster, addr)
	}

	paymaster, ok := contract.(runtime.Paymaster)
	if !ok {
		return nil, fmt.Errorf("%w: %s", runtime.ErrNotPaymaster, addr)
	}

	return paymaster, nil
}

// validationFailure maps an account validation error to its kind
func validationFailure(err error) FailureKind {
	switch {
	case errors.Is(err, runtime.ErrNonceMismatch):
		return ReplayOrOrderingFailure
	case errors.Is(err, runtime.ErrMalformedBatch):
		return MalformedOperation
	default:
		return AuthenticationFailure
	}
}

// Apply processes one operation. It is validated and its fee collected first;
// any failure up to that point rejects the operation and leaves no trace. The
// execution runs afterwards, and if it fails only its own effects are undone.
func (e *Executor) Apply(t *Transition, op *types.Operation) (*types.Receipt, error) {
	span := e.tracer.Start("executor.Apply")
	defer span.End()

	begin := time.Now()
	defer func() {
		e.metrics.ApplyDurationObserve(time.Since(begin).Seconds())
	}()

	receipt, opErr := e.apply(t, op)
	if opErr != nil {
		e.metrics.RejectedInc(opErr.Kind)
		span.SetStatus(telemetry.Error, string(opErr.Kind))
		span.RecordError(opErr)

		e.logger.Debug("operation rejected", "kind", opErr.Kind, "err", opErr.Err)

		return nil, opErr
	}

	e.metrics.AppliedInc()

	if !receipt.Succeeded() {
		e.metrics.RevertedInc()
	}

	span.SetAttributes(map[string]interface{}{
		"hash":   receipt.OperationHash.String(),
		"from":   receipt.From.String(),
		"status": receipt.Status == types.ReceiptSuccess,
	})

	e.logger.Debug("operation applied",
		"hash", receipt.OperationHash,
		"from", receipt.From,
		"nonce", receipt.Nonce,
		"success", receipt.Succeeded(),
	)

	return receipt, nil
}

func (e *Executor) apply(t *Transition, op *types.Operation) (*types.Receipt, *OperationError) {
	if op == nil {
		return nil, reject(MalformedOperation, crypto.ErrMalformedOperation)
	}

	if err := e.checkOperation(op); err != nil {
		return nil, reject(MalformedOperation, err)
	}

	digest, err := e.signer.Digest(op)
	if err != nil {
		return nil, reject(MalformedOperation, err)
	}

	account, err := e.accountOf(t, op.From)
	if err != nil {
		return nil, reject(MalformedOperation, err)
	}

	// everything up to the fee collection is undone on rejection
	validation := t.txn.Snapshot()

	fail := func(kind FailureKind, err error) (*types.Receipt, *OperationError) {
		t.txn.RevertToSnapshot(validation)

		return nil, reject(kind, err)
	}

	escrowBefore := t.GetBalance(runtime.BootloaderAddress)

	if err := account.ValidateTransaction(t, op, digest); err != nil {
		return fail(validationFailure(err), err)
	}

	var tokenPulled *big.Int

	feeKind := FeePaymentFailure

	if op.HasPaymaster() {
		feeKind = SponsorshipRefused

		paymaster, err := e.paymasterOf(t, op.Paymaster())
		if err != nil {
			return fail(feeKind, err)
		}

		if err := account.PrepareForPaymaster(t, op); err != nil {
			return fail(feeKind, err)
		}

		if err := paymaster.ValidateAndPayForPaymasterTransaction(t, op); err != nil {
			return fail(feeKind, err)
		}

		if flow, err := types.DecodePaymasterFlow(op.PaymasterInput()); err == nil &&
			flow.Kind == types.FlowApprovalBased {
			tokenPulled = flow.MinimalAllowance
		}
	} else if err := account.PayForTransaction(t, op); err != nil {
		return fail(feeKind, err)
	}

	// the fee may only be charged once the escrow holds all of it
	fee := op.MaxFee()
	received := new(big.Int).Sub(t.GetBalance(runtime.BootloaderAddress), escrowBefore)

	if received.Cmp(fee) < 0 {
		return fail(feeKind, fmt.Errorf("%w: bootloader received %s, expected %s", runtime.ErrNotEnoughFunds, received, fee))
	}

	if err := t.Transfer(runtime.BootloaderAddress, e.operator, received); err != nil {
		return fail(feeKind, err)
	}

	if op.HasPaymaster() {
		sponsored, _ := new(big.Float).SetInt(received).Float64()
		e.metrics.AddSponsoredFee(sponsored)
	}

	receipt := &types.Receipt{
		OperationHash: op.Hash(),
		From:          op.From,
		Nonce:         op.Nonce,
		Paymaster:     op.Paymaster(),
		FeeCharged:    received,
		TokenPulled:   tokenPulled,
		Status:        types.ReceiptSuccess,
	}

	execution := t.txn.Snapshot()

	if err := account.ExecuteTransaction(t, op); err != nil {
		t.txn.RevertToSnapshot(execution)

		receipt.Status = types.ReceiptFailed
		receipt.Failure = string(SubcallFailure)
		receipt.Reason = err.Error()
	}

	receipt.Logs = t.txn.Logs()

	return receipt, nil
}

// Call runs a plain call from an externally owned address, as used by
// genesis setup and read only queries
func (e *Executor) Call(t *Transition, from, to types.Address, value *big.Int, input []byte) ([]byte, error) {
	if value == nil {
		value = big.NewInt(0)
	}

	return t.Call(&runtime.Call{
		Caller:  from,
		Address: to,
		Value:   value,
		Input:   input,
		Depth:   1,
	})
}

// Deploy creates a contract from a known fingerprint with abi encoded constructor input
func (e *Executor) Deploy(t *Transition, deployer types.Address, bytecodeHash types.Hash, input []byte) (types.Address, error) {
	return t.Create(deployer, bytecodeHash, input)
}
