package state

import (
	"github.com/notuslabs/notus-aa/state/stypes"
	iradix "github.com/hashicorp/go-immutable-radix"
)

// StateObject is the internal representation of the account
type StateObject struct {
	Account   *stypes.Account
	Code      []byte
	DirtyCode bool

	// storage slots modified during this transaction, a nil value is a cleared slot
	Txn *iradix.Txn
}

func newStateObject(account *stypes.Account) *StateObject {
	if account == nil {
		account = &stypes.Account{}
	}

	return &StateObject{Account: account.Copy()}
}

func (s *StateObject) Empty() bool {
	return s.Account.Nonce == 0 && s.Account.Balance.Sign() == 0 && !s.Account.HasCode()
}

// Copy makes a copy of the state object. Objects stored in the radix tree are
// never modified in place, so snapshots keep pointing at the old values.
func (s *StateObject) Copy() *StateObject {
	ss := new(StateObject)

	ss.Account = s.Account.Copy()
	ss.DirtyCode = s.DirtyCode
	ss.Code = s.Code

	if s.Txn != nil {
		ss.Txn = s.Txn.CommitOnly().Txn()
	}

	return ss
}
