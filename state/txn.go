package state

import (
	"fmt"
	"math/big"

	"github.com/notuslabs/notus-aa/state/runtime"
	"github.com/notuslabs/notus-aa/state/stypes"
	"github.com/notuslabs/notus-aa/types"
	iradix "github.com/hashicorp/go-immutable-radix"
)

// logIndex is the index of the logs in the radix tree. Addresses are shorter, so it never collides.
var logIndex = types.BytesToHash([]byte{2}).Bytes()

// snapshotReader is the read only view of the committed ledger
type snapshotReader interface {
	GetAccount(addr types.Address) (*stypes.Account, error)
	GetStorage(addr types.Address, key types.Hash) (types.Hash, error)
	GetCode(hash types.Hash) ([]byte, bool)
}

// Txn is a reference of the state. Every modification lives in an immutable
// radix tree until Commit, so any earlier point can be restored cheaply.
type Txn struct {
	snapshot  snapshotReader
	snapshots []*iradix.Tree
	txn       *iradix.Txn
}

func NewTxn(snapshot snapshotReader) *Txn {
	return &Txn{
		snapshot:  snapshot,
		snapshots: []*iradix.Tree{},
		txn:       iradix.New().Txn(),
	}
}

// Snapshot takes a snapshot at this point in time
func (txn *Txn) Snapshot() int {
	t := txn.txn.CommitOnly()

	id := len(txn.snapshots)
	txn.snapshots = append(txn.snapshots, t)

	return id
}

// RevertToSnapshot reverts to a given snapshot. Snapshots taken after id are dropped.
func (txn *Txn) RevertToSnapshot(id int) {
	if id < 0 || id >= len(txn.snapshots) {
		panic(fmt.Sprintf("invalid snapshot id %d", id))
	}

	tree := txn.snapshots[id]
	txn.txn = tree.Txn()
	txn.snapshots = txn.snapshots[:id+1]
}

// GetAccount returns an account
func (txn *Txn) GetAccount(addr types.Address) (*stypes.Account, bool) {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return nil, false
	}

	return object.Account, true
}

func (txn *Txn) getStateObject(addr types.Address) (*StateObject, bool) {
	// Try to get state from radix tree which holds transient states first
	if val, exists := txn.txn.Get(addr.Bytes()); exists {
		obj := val.(*StateObject) //nolint:forcetypeassert

		return obj.Copy(), true
	}

	account, err := txn.snapshot.GetAccount(addr)
	if err != nil || account == nil {
		return nil, false
	}

	return newStateObject(account), true
}

func (txn *Txn) upsertAccount(addr types.Address, create bool, f func(object *StateObject)) {
	object, exists := txn.getStateObject(addr)
	if !exists {
		if !create {
			return
		}

		object = newStateObject(nil)
	}

	// run the callback to modify the account
	f(object)

	txn.txn.Insert(addr.Bytes(), object)
}

// Exist returns true if the account is known to the ledger
func (txn *Txn) Exist(addr types.Address) bool {
	_, exists := txn.getStateObject(addr)

	return exists
}

// Empty returns true if the account has no nonce, balance or code
func (txn *Txn) Empty(addr types.Address) bool {
	obj, exists := txn.getStateObject(addr)
	if !exists {
		return true
	}

	return obj.Empty()
}

// Balance

// AddBalance adds balance
func (txn *Txn) AddBalance(addr types.Address, balance *big.Int) {
	txn.upsertAccount(addr, true, func(object *StateObject) {
		object.Account.Balance.Add(object.Account.Balance, balance)
	})
}

// SubBalance reduces the balance at address addr by amount
func (txn *Txn) SubBalance(addr types.Address, amount *big.Int) error {
	// If we try to reduce balance by 0, then it's a noop
	if amount.Sign() == 0 {
		return nil
	}

	// Check if we have enough balance to deduce amount from
	if balance := txn.GetBalance(addr); balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s, needs %s", runtime.ErrNotEnoughFunds, addr, balance, amount)
	}

	txn.upsertAccount(addr, true, func(object *StateObject) {
		object.Account.Balance.Sub(object.Account.Balance, amount)
	})

	return nil
}

// Transfer moves amount of native currency from one account to another
func (txn *Txn) Transfer(from, to types.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}

	if amount.Sign() < 0 {
		return fmt.Errorf("negative transfer amount %s", amount)
	}

	if err := txn.SubBalance(from, amount); err != nil {
		return err
	}

	txn.AddBalance(to, amount)

	return nil
}

// SetBalance sets the balance
func (txn *Txn) SetBalance(addr types.Address, balance *big.Int) {
	txn.upsertAccount(addr, true, func(object *StateObject) {
		object.Account.Balance.Set(balance)
	})
}

// GetBalance returns the balance of an address
func (txn *Txn) GetBalance(addr types.Address) *big.Int {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return big.NewInt(0)
	}

	return object.Account.Balance
}

// Logs

func (txn *Txn) EmitLog(addr types.Address, topics []types.Hash, data []byte) {
	log := &types.Log{
		Address: addr,
		Topics:  append([]types.Hash{}, topics...),
	}
	log.Data = append(log.Data, data...)

	var logs []*types.Log

	if val, exists := txn.txn.Get(logIndex); exists {
		logs = val.([]*types.Log) //nolint:forcetypeassert
	}

	// the stored slice is shared with older snapshots, never append in place
	next := make([]*types.Log, 0, len(logs)+1)
	next = append(next, logs...)
	next = append(next, log)

	txn.txn.Insert(logIndex, next)
}

// Logs returns and clears the logs emitted so far
func (txn *Txn) Logs() []*types.Log {
	data, exists := txn.txn.Get(logIndex)
	if !exists {
		return nil
	}

	txn.txn.Delete(logIndex)
	//nolint:forcetypeassert
	return data.([]*types.Log)
}

// Storage

// SetState change the state of an address
func (txn *Txn) SetState(addr types.Address, key, value types.Hash) {
	txn.upsertAccount(addr, true, func(object *StateObject) {
		if object.Txn == nil {
			object.Txn = iradix.New().Txn()
		}

		if value == types.ZeroHash {
			object.Txn.Insert(key.Bytes(), nil)
		} else {
			object.Txn.Insert(key.Bytes(), value.Bytes())
		}
	})
}

// GetState returns the state of the address at a given key
func (txn *Txn) GetState(addr types.Address, key types.Hash) (types.Hash, error) {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return types.ZeroHash, nil
	}

	// the latest value is in the radix tree if it was written by this transaction
	if object.Txn != nil {
		if val, ok := object.Txn.Get(key.Bytes()); ok {
			if val == nil {
				return types.ZeroHash, nil
			}
			//nolint:forcetypeassert
			return types.BytesToHash(val.([]byte)), nil
		}
	}

	return txn.snapshot.GetStorage(addr, key)
}

// Nonce

// GetNonce returns the nonce of an addr
func (txn *Txn) GetNonce(addr types.Address) uint64 {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return 0
	}

	return object.Account.Nonce
}

// IncrementNonceIfEquals increases the nonce of addr only when it matches expected
func (txn *Txn) IncrementNonceIfEquals(addr types.Address, expected uint64) error {
	if current := txn.GetNonce(addr); current != expected {
		return fmt.Errorf("%w: expected %d, got %d", runtime.ErrNonceMismatch, current, expected)
	}

	txn.upsertAccount(addr, true, func(object *StateObject) {
		object.Account.Nonce++
	})

	return nil
}

// IncrNonce increases the nonce of the address
func (txn *Txn) IncrNonce(addr types.Address) {
	txn.upsertAccount(addr, true, func(object *StateObject) {
		object.Account.Nonce++
	})
}

// Code

// SetCode sets the code for an address
func (txn *Txn) SetCode(addr types.Address, codeHash types.Hash, code []byte) {
	txn.upsertAccount(addr, true, func(object *StateObject) {
		object.Account.CodeHash = codeHash
		object.DirtyCode = true
		object.Code = code
	})
}

func (txn *Txn) GetCode(addr types.Address) []byte {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return nil
	}

	if object.DirtyCode {
		return object.Code
	}

	code, _ := txn.snapshot.GetCode(object.Account.CodeHash)

	return code
}

func (txn *Txn) GetCodeHash(addr types.Address) types.Hash {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return types.ZeroHash
	}

	return object.Account.CodeHash
}

// Commit flattens the modified accounts so they can be persisted
func (txn *Txn) Commit() []*stypes.Object {
	x := txn.txn.Commit()

	objs := []*stypes.Object{}

	x.Root().Walk(func(k []byte, v interface{}) bool {
		a, ok := v.(*StateObject)
		if !ok {
			// We also have logs, avoid those
			return false
		}

		obj := &stypes.Object{
			Nonce:     a.Account.Nonce,
			Address:   types.BytesToAddress(k),
			Balance:   a.Account.Balance,
			CodeHash:  a.Account.CodeHash,
			DirtyCode: a.DirtyCode,
			Code:      a.Code,
		}

		if a.Txn != nil {
			a.Txn.Root().Walk(func(k []byte, v interface{}) bool {
				store := &stypes.StorageObject{Key: k}
				if v == nil {
					store.Deleted = true
				} else {
					store.Val = v.([]byte) //nolint:forcetypeassert
				}

				obj.Storage = append(obj.Storage, store)

				return false
			})
		}

		objs = append(objs, obj)

		return false
	})

	return objs
}
