package rawdb

import (
	"errors"

	"github.com/notuslabs/notus-aa/helper/kvdb"
	"github.com/notuslabs/notus-aa/types"
)

var ErrNotFound = errors.New("not found")

func readRLP(db kvdb.KVReader, key []byte, raw types.RLPUnmarshaler) error {
	data, ok, err := db.Get(key)
	if err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}

	return raw.UnmarshalRLP(data)
}

func writeRLP(db kvdb.KVWriter, key []byte, raw types.RLPMarshaler) error {
	return db.Set(key, raw.MarshalRLPTo(nil))
}
