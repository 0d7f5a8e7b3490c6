package types

import (
	"math/big"
	"sync/atomic"

	"github.com/notuslabs/notus-aa/helper/keccak"
)

const (
	// EIP712TxType is the typed envelope byte of an account abstraction operation
	EIP712TxType byte = 0x71

	// DefaultGasPerPubdata is the per-byte fee metadata used when none is set
	DefaultGasPerPubdata uint64 = 50000
)

// PaymasterParams names the sponsor of an Operation and the flow it is asked to run
type PaymasterParams struct {
	Paymaster      Address
	PaymasterInput []byte
}

func (p *PaymasterParams) Copy() *PaymasterParams {
	if p == nil {
		return nil
	}

	return &PaymasterParams{
		Paymaster:      p.Paymaster,
		PaymasterInput: CopyBytes(p.PaymasterInput),
	}
}

// Operation is a signed call issued by an account. The Input usually carries a
// batch of sub-calls, which the account executes atomically.
type Operation struct {
	Nonce                uint64
	From                 Address
	To                   Address
	Value                *big.Int
	GasLimit             uint64
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	ChainID              uint64
	Input                []byte

	GasPerPubdata   uint64
	FactoryDeps     [][]byte
	PaymasterParams *PaymasterParams

	// Signature is filled once the digest of every other field has been signed
	Signature []byte

	// Cache
	hash atomic.Value
}

// HasPaymaster returns true when the fee is sponsored
func (o *Operation) HasPaymaster() bool {
	return o.PaymasterParams != nil && o.PaymasterParams.Paymaster != ZeroAddress
}

// Paymaster returns the sponsor address, or the zero address for self-paid operations
func (o *Operation) Paymaster() Address {
	if !o.HasPaymaster() {
		return ZeroAddress
	}

	return o.PaymasterParams.Paymaster
}

// PaymasterInput returns the sponsorship input, if any
func (o *Operation) PaymasterInput() []byte {
	if o.PaymasterParams == nil {
		return nil
	}

	return o.PaymasterParams.PaymasterInput
}

// PriorityFee returns the priority fee, which falls back to the max fee
func (o *Operation) PriorityFee() *big.Int {
	if o.MaxPriorityFeePerGas != nil {
		return o.MaxPriorityFeePerGas
	}

	return o.MaxFeePerGas
}

// MaxFee returns gasLimit * maxFeePerGas, the most the network may charge
func (o *Operation) MaxFee() *big.Int {
	if o.MaxFeePerGas == nil {
		return big.NewInt(0)
	}

	return new(big.Int).Mul(o.MaxFeePerGas, new(big.Int).SetUint64(o.GasLimit))
}

// Hash returns the keccak hash of the signed envelope
func (o *Operation) Hash() Hash {
	if hash := o.hash.Load(); hash != nil {
		//nolint:forcetypeassert
		return hash.(Hash)
	}

	var h Hash

	keccak.Keccak256(h[:0], o.MarshalRLP())
	o.hash.Store(h)

	return h
}

// Copy returns a deep copy
func (o *Operation) Copy() *Operation {
	oo := &Operation{
		Nonce:           o.Nonce,
		From:            o.From,
		To:              o.To,
		GasLimit:        o.GasLimit,
		ChainID:         o.ChainID,
		GasPerPubdata:   o.GasPerPubdata,
		Input:           CopyBytes(o.Input),
		FactoryDeps:     CopyByteSlices(o.FactoryDeps),
		PaymasterParams: o.PaymasterParams.Copy(),
		Signature:       CopyBytes(o.Signature),
	}

	if o.Value != nil {
		oo.Value = new(big.Int).Set(o.Value)
	}

	if o.MaxFeePerGas != nil {
		oo.MaxFeePerGas = new(big.Int).Set(o.MaxFeePerGas)
	}

	if o.MaxPriorityFeePerGas != nil {
		oo.MaxPriorityFeePerGas = new(big.Int).Set(o.MaxPriorityFeePerGas)
	}

	return oo
}
