package kvdb

import "io"

// KVReader wraps the read methods of a backing data store
type KVReader interface {
	// Get retrieves the given key if it's present in the key-value data store.
	Get(k []byte) ([]byte, bool, error)
	// Has retrieves if a key is present in the key-value data store.
	Has(k []byte) (bool, error)
}

// KVWriter wraps the write methods of a backing data store
type KVWriter interface {
	Set(k, v []byte) error
	Delete(k []byte) error
}

// Batch buffers writes until Write is called
type Batch interface {
	KVWriter

	// Write flushes any accumulated data to the store
	Write() error
}

type Iterator interface {
	// Next moves the iterator to the next key/value pair.
	// It returns false if the iterator is exhausted.
	Next() bool

	// Key returns the key of the current key/value pair, or nil if done.
	// The caller should not modify the contents of the returned slice.
	Key() []byte

	// Value returns the value of the current key/value pair, or nil if done.
	Value() []byte

	// Release releases associated resources. It can be called multiple times.
	Release()

	// Error returns any accumulated error
	Error() error
}

// KVBatchStorage is a k/v storage on memory or leveldb
type KVBatchStorage interface {
	KVReader
	KVWriter
	io.Closer

	// NewBatch creates a write-only batch on top of the store
	NewBatch() Batch

	// NewIterator iterates in key order over the entries with the given prefix
	NewIterator(prefix []byte) Iterator
}
