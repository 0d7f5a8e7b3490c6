package stypes

import (
	"math/big"

	"github.com/notuslabs/notus-aa/types"
)

// Object is the flattened form of a modified account, ready to be persisted
type Object struct {
	Address  types.Address
	CodeHash types.Hash
	Balance  *big.Int
	Nonce    uint64

	DirtyCode bool
	Code      []byte

	Storage []*StorageObject
}

// StorageObject is an entry in the storage
type StorageObject struct {
	Deleted bool
	Key     []byte
	Val     []byte
}
