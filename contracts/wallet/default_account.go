package wallet

import (
	"fmt"

	"github.com/notuslabs/notus-aa/crypto"
	"github.com/notuslabs/notus-aa/state/runtime"
	"github.com/notuslabs/notus-aa/types"
)

// DefaultAccount is the account logic of addresses without code. The address
// itself is the key that must sign.
type DefaultAccount struct{}

func NewDefaultAccount() *DefaultAccount {
	return &DefaultAccount{}
}

func (a *DefaultAccount) Run(host runtime.Host, call *runtime.Call) ([]byte, error) {
	return nil, nil
}

func (a *DefaultAccount) ValidateTransaction(host runtime.Host, op *types.Operation, digest types.Hash) error {
	if err := host.IncrementNonceIfEquals(op.From, op.Nonce); err != nil {
		return err
	}

	signer, err := crypto.RecoverAddress(digest.Bytes(), op.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", runtime.ErrInvalidSignature, err)
	}

	if signer != op.From {
		return fmt.Errorf("%w: signed by %s", runtime.ErrInvalidSignature, signer)
	}

	return nil
}

func (a *DefaultAccount) PayForTransaction(host runtime.Host, op *types.Operation) error {
	return payFee(host, op)
}

func (a *DefaultAccount) PrepareForPaymaster(host runtime.Host, op *types.Operation) error {
	return approvePaymaster(host, op)
}

func (a *DefaultAccount) ExecuteTransaction(host runtime.Host, op *types.Operation) error {
	return execute(host, op)
}
