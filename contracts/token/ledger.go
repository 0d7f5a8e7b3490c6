package token

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/notuslabs/notus-aa/contracts/abis"
	"github.com/notuslabs/notus-aa/state/runtime"
	"github.com/notuslabs/notus-aa/types"
)

// Ledger is the fungible token interface consumed by accounts and paymasters
type Ledger interface {
	Address() types.Address

	BalanceOf(account types.Address) (*big.Int, error)
	Allowance(owner, spender types.Address) (*big.Int, error)

	// Approve, Transfer, TransferFrom and Mint act on behalf of the ledger caller
	Approve(spender types.Address, amount *big.Int) error
	Transfer(to types.Address, amount *big.Int) error
	TransferFrom(from, to types.Address, amount *big.Int) error
	Mint(to types.Address, amount *big.Int) error
}

// hostLedger calls a token contract through the host
type hostLedger struct {
	host   runtime.Host
	token  types.Address
	caller types.Address
	depth  int
}

// NewLedger returns a Ledger on the token at address, acting as caller
func NewLedger(host runtime.Host, address, caller types.Address, depth int) Ledger {
	return &hostLedger{
		host:   host,
		token:  address,
		caller: caller,
		depth:  depth,
	}
}

func (l *hostLedger) Address() types.Address {
	return l.token
}

func (l *hostLedger) call(method string, args ...interface{}) ([]interface{}, error) {
	input, err := abis.TokenABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	ret, err := l.host.Call(&runtime.Call{
		Caller:  l.caller,
		Address: l.token,
		Value:   big.NewInt(0),
		Input:   input,
		Depth:   l.depth + 1,
	})
	if err != nil {
		return nil, fmt.Errorf("token %s %s: %w", l.token, method, err)
	}

	outputs, err := abis.TokenABI.Unpack(method, ret)
	if err != nil {
		return nil, fmt.Errorf("token %s %s: bad return data: %w", l.token, method, err)
	}

	return outputs, nil
}

func (l *hostLedger) amount(method string, args ...interface{}) (*big.Int, error) {
	outputs, err := l.call(method, args...)
	if err != nil {
		return nil, err
	}

	amount, ok := outputs[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("token %s %s: unexpected return type %T", l.token, method, outputs[0])
	}

	return amount, nil
}

func (l *hostLedger) succeeded(method string, args ...interface{}) error {
	outputs, err := l.call(method, args...)
	if err != nil {
		return err
	}

	if ok, _ := outputs[0].(bool); !ok {
		return runtime.Revert("token %s %s returned false", l.token, method)
	}

	return nil
}

func (l *hostLedger) BalanceOf(account types.Address) (*big.Int, error) {
	return l.amount("balanceOf", common.Address(account))
}

func (l *hostLedger) Allowance(owner, spender types.Address) (*big.Int, error) {
	return l.amount("allowance", common.Address(owner), common.Address(spender))
}

func (l *hostLedger) Approve(spender types.Address, amount *big.Int) error {
	return l.succeeded("approve", common.Address(spender), amount)
}

func (l *hostLedger) Transfer(to types.Address, amount *big.Int) error {
	return l.succeeded("transfer", common.Address(to), amount)
}

func (l *hostLedger) TransferFrom(from, to types.Address, amount *big.Int) error {
	return l.succeeded("transferFrom", common.Address(from), common.Address(to), amount)
}

func (l *hostLedger) Mint(to types.Address, amount *big.Int) error {
	_, err := l.call("mint", common.Address(to), amount)

	return err
}
