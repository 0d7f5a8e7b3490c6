package kvdb

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type levelBatch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *levelBatch) Set(k, v []byte) error {
	b.batch.Put(k, v)

	return nil
}

func (b *levelBatch) Delete(k []byte) error {
	b.batch.Delete(k)

	return nil
}

func (b *levelBatch) Write() error {
	return b.db.Write(b.batch, nil)
}

// levelDBKV is the leveldb implementation of the kv storage
type levelDBKV struct {
	db *leveldb.DB
}

func (kv *levelDBKV) NewBatch() Batch {
	return &levelBatch{db: kv.db, batch: new(leveldb.Batch)}
}

func (kv *levelDBKV) NewIterator(prefix []byte) Iterator {
	return kv.db.NewIterator(util.BytesPrefix(prefix), nil)
}

// Set sets the key-value pair in leveldb storage
func (kv *levelDBKV) Set(k []byte, v []byte) error {
	return kv.db.Put(k, v, nil)
}

func (kv *levelDBKV) Delete(k []byte) error {
	return kv.db.Delete(k, nil)
}

// Get retrieves the key-value pair in leveldb storage
func (kv *levelDBKV) Get(k []byte) ([]byte, bool, error) {
	data, err := kv.db.Get(k, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return data, true, nil
}

func (kv *levelDBKV) Has(k []byte) (bool, error) {
	return kv.db.Has(k, nil)
}

// Close closes the leveldb storage instance
func (kv *levelDBKV) Close() error {
	return kv.db.Close()
}
