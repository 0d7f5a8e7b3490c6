package stypes

import (
	"fmt"
	"math/big"

	"github.com/dogechain-lab/fastrlp"
	"github.com/notuslabs/notus-aa/types"
)

// Account is the persisted part of a ledger entry
type Account struct {
	Nonce    uint64
	Balance  *big.Int
	CodeHash types.Hash // zero for accounts without code
}

var (
	accountArenaPool  fastrlp.ArenaPool
	accountParserPool fastrlp.ParserPool
)

func (a *Account) MarshalWith(ar *fastrlp.Arena) *fastrlp.Value {
	balance := a.Balance
	if balance == nil {
		balance = new(big.Int)
	}

	v := ar.NewArray()
	v.Set(ar.NewUint(a.Nonce))
	v.Set(ar.NewBigInt(balance))
	v.Set(ar.NewBytes(a.CodeHash.Bytes()))

	return v
}

func (a *Account) MarshalRlp() []byte {
	ar := accountArenaPool.Get()
	defer accountArenaPool.Put(ar)

	return a.MarshalWith(ar).MarshalTo(nil)
}

func (a *Account) UnmarshalRlp(b []byte) error {
	p := accountParserPool.Get()
	defer accountParserPool.Put(p)

	v, err := p.Parse(b)
	if err != nil {
		return err
	}

	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems) != 3 {
		return fmt.Errorf("incorrect number of elements to decode account, expected 3 but found %d",
			len(elems))
	}

	// nonce
	if a.Nonce, err = elems[0].GetUint64(); err != nil {
		return err
	}
	// balance
	if a.Balance == nil {
		a.Balance = new(big.Int)
	}

	if err = elems[1].GetBigInt(a.Balance); err != nil {
		return err
	}
	// codeHash
	if err = elems[2].GetHash(a.CodeHash[:]); err != nil {
		return err
	}

	return nil
}

func (a *Account) String() string {
	return fmt.Sprintf("%d %s", a.Nonce, a.Balance.String())
}

// HasCode returns true if a contract is deployed on the account
func (a *Account) HasCode() bool {
	return a.CodeHash != types.ZeroHash
}

func (a *Account) Copy() *Account {
	aa := new(Account)

	if a.Balance == nil {
		aa.Balance = new(big.Int)
	} else {
		aa.Balance = new(big.Int).Set(a.Balance)
	}

	aa.Nonce = a.Nonce
	aa.CodeHash = a.CodeHash

	return aa
}
