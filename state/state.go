package state

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru"
	"github.com/notuslabs/notus-aa/helper/kvdb"
	"github.com/notuslabs/notus-aa/state/stypes"
	"github.com/notuslabs/notus-aa/types"
)

const defaultCodeCacheSize = 128

// State is the committed ledger, persisted in a key value store
type State struct {
	logger    hclog.Logger
	storage   kvdb.KVBatchStorage
	codeCache *lru.Cache
}

func NewState(logger hclog.Logger, storage kvdb.KVBatchStorage) *State {
	codeCache, _ := lru.New(defaultCodeCacheSize)

	return &State{
		logger:    logger.Named("state"),
		storage:   storage,
		codeCache: codeCache,
	}
}

// NewTxn opens a transaction on top of the committed ledger
func (s *State) NewTxn() *Txn {
	return NewTxn(s)
}

// GetAccount returns the committed account, or nil if it was never written
func (s *State) GetAccount(addr types.Address) (*stypes.Account, error) {
	data, ok, err := s.storage.Get(stypes.AccountKey(addr))
	if err != nil {
		return nil, err
	} else if !ok {
		return nil, nil
	}

	account := new(stypes.Account)
	if err := account.UnmarshalRlp(data); err != nil {
		return nil, fmt.Errorf("failed to decode account %s: %w", addr, err)
	}

	return account, nil
}

func (s *State) GetStorage(addr types.Address, key types.Hash) (types.Hash, error) {
	data, ok, err := s.storage.Get(stypes.StorageKey(addr, key.Bytes()))
	if err != nil {
		return types.ZeroHash, err
	} else if !ok {
		return types.ZeroHash, nil
	}

	return types.BytesToHash(data), nil
}

func (s *State) GetCode(hash types.Hash) ([]byte, bool) {
	if hash == types.ZeroHash {
		return nil, false
	}

	if code, ok := s.codeCache.Get(hash); ok {
		//nolint:forcetypeassert
		return code.([]byte), true
	}

	code, ok, err := s.storage.Get(stypes.CodeKey(hash))
	if err != nil || !ok {
		return nil, false
	}

	s.codeCache.Add(hash, code)

	return code, true
}

// GetBalance returns the committed native balance of addr
func (s *State) GetBalance(addr types.Address) (*big.Int, error) {
	account, err := s.GetAccount(addr)
	if err != nil {
		return nil, err
	} else if account == nil {
		return big.NewInt(0), nil
	}

	return account.Balance, nil
}

// GetNonce returns the committed sequence number of addr
func (s *State) GetNonce(addr types.Address) (uint64, error) {
	account, err := s.GetAccount(addr)
	if err != nil || account == nil {
		return 0, err
	}

	return account.Nonce, nil
}

// Commit writes all the objects in a single batch
func (s *State) Commit(objs []*stypes.Object) error {
	return s.CommitWith(s.storage.NewBatch(), objs)
}

// CommitWith adds the objects to batch and flushes it, so writes already
// staged in batch by the caller become durable together with the state
func (s *State) CommitWith(batch kvdb.Batch, objs []*stypes.Object) error {
	if err := stageObjects(batch, objs); err != nil {
		return err
	}

	if err := batch.Write(); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}

	// cache only after the batch is durable
	for _, obj := range objs {
		if obj.DirtyCode && obj.CodeHash != types.ZeroHash {
			s.codeCache.Add(obj.CodeHash, obj.Code)
		}
	}

	s.logger.Debug("state committed", "objects", len(objs))

	return nil
}

func stageObjects(batch kvdb.KVWriter, objs []*stypes.Object) error {
	for _, obj := range objs {
		account := &stypes.Account{
			Nonce:    obj.Nonce,
			Balance:  obj.Balance,
			CodeHash: obj.CodeHash,
		}

		if err := batch.Set(stypes.AccountKey(obj.Address), account.MarshalRlp()); err != nil {
			return err
		}

		for _, entry := range obj.Storage {
			key := stypes.StorageKey(obj.Address, entry.Key)

			var err error
			if entry.Deleted {
				err = batch.Delete(key)
			} else {
				err = batch.Set(key, entry.Val)
			}

			if err != nil {
				return err
			}
		}

		if obj.DirtyCode && obj.CodeHash != types.ZeroHash {
			if err := batch.Set(stypes.CodeKey(obj.CodeHash), obj.Code); err != nil {
				return err
			}
		}
	}

	return nil
}
