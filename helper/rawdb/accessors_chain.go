package rawdb

import (
	"github.com/notuslabs/notus-aa/helper/kvdb"
	"github.com/notuslabs/notus-aa/types"
)

func ReadGenesisHash(db kvdb.KVReader) (types.Hash, bool) {
	data, ok, err := db.Get(genesisHashKey)
	if err != nil || !ok {
		return types.Hash{}, false
	}

	return types.BytesToHash(data), true
}

func WriteGenesisHash(db kvdb.KVWriter, hash types.Hash) error {
	return db.Set(genesisHashKey, hash.Bytes())
}

func ReadOperationCount(db kvdb.KVReader) uint64 {
	data, ok, err := db.Get(operationCountKey)
	if err != nil || !ok || len(data) != 8 {
		return 0
	}

	return decodeUint(data)
}

func WriteOperationCount(db kvdb.KVWriter, n uint64) error {
	return db.Set(operationCountKey, encodeUint(n))
}
