package storage

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/notuslabs/notus-aa/helper/kvdb"
	"github.com/notuslabs/notus-aa/helper/rawdb"
	"github.com/notuslabs/notus-aa/types"
	"go.uber.org/atomic"
)

const DefaultReceiptCacheSize = 1024

var ErrNotFound = rawdb.ErrNotFound

// KeyValueStorage is a generic storage for kv databases
type KeyValueStorage struct {
	db       kvdb.KVBatchStorage
	receipts *lru.Cache
	count    *atomic.Uint64
}

func NewKeyValueStorage(db kvdb.KVBatchStorage, cacheSize int) (*KeyValueStorage, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultReceiptCacheSize
	}

	receipts, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}

	return &KeyValueStorage{
		db:       db,
		receipts: receipts,
		count:    atomic.NewUint64(rawdb.ReadOperationCount(db)),
	}, nil
}

// -- genesis --

func (s *KeyValueStorage) ReadGenesisHash() (types.Hash, bool) {
	return rawdb.ReadGenesisHash(s.db)
}

func (s *KeyValueStorage) WriteGenesisHash(hash types.Hash) error {
	return rawdb.WriteGenesisHash(s.db, hash)
}

// StageGenesisHash adds the genesis marker to batch
func (s *KeyValueStorage) StageGenesisHash(batch kvdb.KVWriter, hash types.Hash) error {
	return rawdb.WriteGenesisHash(batch, hash)
}

// -- operations --

// NewBatch opens a batch on the underlying database
func (s *KeyValueStorage) NewBatch() kvdb.Batch {
	return s.db.NewBatch()
}

// WriteOperation writes the operation, its receipt and the sender lookup in one batch
func (s *KeyValueStorage) WriteOperation(op *types.Operation, receipt *types.Receipt) error {
	batch := s.db.NewBatch()

	committed, err := s.StageOperation(batch, op, receipt)
	if err != nil {
		return err
	}

	if err := batch.Write(); err != nil {
		return err
	}

	committed()

	return nil
}

// StageOperation adds the operation, its receipt, the sender lookup and the
// new operation count to batch. The returned func must be called once the
// batch is written; until then readers see none of it.
func (s *KeyValueStorage) StageOperation(
	batch kvdb.KVWriter,
	op *types.Operation,
	receipt *types.Receipt,
) (func(), error) {
	if op.Hash() != receipt.OperationHash {
		return nil, fmt.Errorf("receipt %s does not belong to operation %s", receipt.OperationHash, op.Hash())
	}

	count := s.count.Load() + 1

	if err := rawdb.WriteOperation(batch, receipt.OperationHash, op); err != nil {
		return nil, err
	}

	if err := rawdb.WriteReceipt(batch, receipt); err != nil {
		return nil, err
	}

	if err := rawdb.WriteSenderLookup(batch, receipt.From, receipt.Nonce, receipt.OperationHash); err != nil {
		return nil, err
	}

	if err := rawdb.WriteOperationCount(batch, count); err != nil {
		return nil, err
	}

	return func() {
		s.count.Store(count)
		s.receipts.Add(receipt.OperationHash, receipt)
	}, nil
}

func (s *KeyValueStorage) ReadOperation(hash types.Hash) (*types.Operation, error) {
	return rawdb.ReadOperation(s.db, hash)
}

func (s *KeyValueStorage) ReadReceipt(hash types.Hash) (*types.Receipt, error) {
	if v, ok := s.receipts.Get(hash); ok {
		//nolint:forcetypeassert
		return v.(*types.Receipt), nil
	}

	receipt, err := rawdb.ReadReceipt(s.db, hash)
	if err != nil {
		return nil, err
	}

	s.receipts.Add(hash, receipt)

	return receipt, nil
}

// ReadReceiptsBySender returns the receipts of sender from the given nonce on
func (s *KeyValueStorage) ReadReceiptsBySender(sender types.Address, from uint64, limit int) ([]*types.Receipt, error) {
	hashes, err := rawdb.ReadSenderHashes(s.db, sender, from, limit)
	if err != nil {
		return nil, err
	}

	receipts := make([]*types.Receipt, 0, len(hashes))

	for _, hash := range hashes {
		receipt, err := s.ReadReceipt(hash)
		if err != nil {
			return nil, fmt.Errorf("receipt %s: %w", hash, err)
		}

		receipts = append(receipts, receipt)
	}

	return receipts, nil
}

func (s *KeyValueStorage) OperationCount() uint64 {
	return s.count.Load()
}
