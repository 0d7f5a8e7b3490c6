package storage

import (
	"github.com/notuslabs/notus-aa/helper/kvdb"
	"github.com/notuslabs/notus-aa/types"
)

// Storage is the node bookkeeping next to the ledger: the applied
// operations, their receipts and a per sender index
type Storage interface {
	ReadGenesisHash() (types.Hash, bool)
	WriteGenesisHash(hash types.Hash) error
	StageGenesisHash(batch kvdb.KVWriter, hash types.Hash) error

	// NewBatch opens a batch the ledger state and the bookkeeping share
	NewBatch() kvdb.Batch

	// WriteOperation stores an applied operation with its receipt
	WriteOperation(op *types.Operation, receipt *types.Receipt) error
	StageOperation(batch kvdb.KVWriter, op *types.Operation, receipt *types.Receipt) (func(), error)
	ReadOperation(hash types.Hash) (*types.Operation, error)
	ReadReceipt(hash types.Hash) (*types.Receipt, error)
	ReadReceiptsBySender(sender types.Address, from uint64, limit int) ([]*types.Receipt, error)

	// OperationCount is the number of operations written so far
	OperationCount() uint64
}
