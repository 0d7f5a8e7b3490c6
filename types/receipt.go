package types

import "math/big"

type ReceiptStatus uint64

const (
	ReceiptFailed ReceiptStatus = iota
	ReceiptSuccess
)

// Receipt is the outcome of an operation that passed validation and sponsorship.
// Rejected operations never produce one.
type Receipt struct {
	OperationHash Hash
	From          Address
	Nonce         uint64
	Paymaster     Address
	Status        ReceiptStatus

	// Failure is the failure category when the execution reverted
	Failure string
	Reason  string

	// FeeCharged is the native amount moved to the operator
	FeeCharged *big.Int
	// TokenPulled is the token amount the paymaster took from the payer
	TokenPulled *big.Int

	Logs []*Log
}

func (r *Receipt) Succeeded() bool {
	return r.Status == ReceiptSuccess
}

type Log struct {
	Address Address
	Topics  []Hash
	Data    []byte
}

func (l *Log) Copy() *Log {
	ll := &Log{
		Address: l.Address,
		Topics:  make([]Hash, len(l.Topics)),
		Data:    CopyBytes(l.Data),
	}

	copy(ll.Topics, l.Topics)

	return ll
}
