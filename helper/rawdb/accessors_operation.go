package rawdb

import (
	"github.com/notuslabs/notus-aa/helper/kvdb"
	"github.com/notuslabs/notus-aa/types"
)

func ReadReceipt(db kvdb.KVReader, hash types.Hash) (*types.Receipt, error) {
	receipt := new(types.Receipt)
	err := readRLP(db, receiptKey(hash), receipt)

	return receipt, err
}

func WriteReceipt(db kvdb.KVWriter, receipt *types.Receipt) error {
	return writeRLP(db, receiptKey(receipt.OperationHash), receipt)
}

func ReadOperation(db kvdb.KVReader, hash types.Hash) (*types.Operation, error) {
	op := new(types.Operation)
	err := readRLP(db, operationKey(hash), op)

	return op, err
}

func WriteOperation(db kvdb.KVWriter, hash types.Hash, op *types.Operation) error {
	return writeRLP(db, operationKey(hash), op)
}

func ReadSenderLookup(db kvdb.KVReader, sender types.Address, nonce uint64) (types.Hash, bool) {
	data, ok, err := db.Get(senderKey(sender, nonce))
	if err != nil || !ok || len(data) != types.HashLength {
		return types.Hash{}, false
	}

	return types.BytesToHash(data), true
}

func WriteSenderLookup(db kvdb.KVWriter, sender types.Address, nonce uint64, hash types.Hash) error {
	return db.Set(senderKey(sender, nonce), hash.Bytes())
}

// ReadSenderHashes returns the operation hashes of sender in sequence order,
// starting at nonce from and returning at most limit entries (0 is unbounded)
func ReadSenderHashes(db kvdb.KVBatchStorage, sender types.Address, from uint64, limit int) ([]types.Hash, error) {
	prefix := SenderPrefix(sender)

	iter := db.NewIterator(prefix)
	defer iter.Release()

	hashes := []types.Hash{}

	for iter.Next() {
		key := iter.Key()
		if len(key) != len(prefix)+8 || decodeUint(key[len(prefix):]) < from {
			continue
		}

		hashes = append(hashes, types.BytesToHash(iter.Value()))

		if limit > 0 && len(hashes) >= limit {
			break
		}
	}

	return hashes, iter.Error()
}
