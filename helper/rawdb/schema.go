package rawdb

import (
	"encoding/binary"

	"github.com/notuslabs/notus-aa/types"
)

// Keys of the node bookkeeping. The ledger itself lives under the
// single letter prefixes of state/stypes.
var (
	// receiptPrefix + operation hash -> receipt rlp
	receiptPrefix = []byte("r")
	// operationPrefix + operation hash -> signed operation envelope
	operationPrefix = []byte("o")
	// senderPrefix + sender + nonce -> operation hash
	senderPrefix = []byte("x")
)

var (
	// genesisHashKey tracks the hash of the genesis the store was initialized with
	genesisHashKey = []byte("genesis")
	// operationCountKey tracks the number of operations that produced a receipt
	operationCountKey = []byte("opcount")
)

func encodeUint(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)

	return b
}

func decodeUint(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

func receiptKey(hash types.Hash) []byte {
	return append(append(make([]byte, 0, len(receiptPrefix)+types.HashLength), receiptPrefix...), hash.Bytes()...)
}

func operationKey(hash types.Hash) []byte {
	return append(append(make([]byte, 0, len(operationPrefix)+types.HashLength), operationPrefix...), hash.Bytes()...)
}

// SenderPrefix returns the index prefix of all the operations sent by addr
func SenderPrefix(addr types.Address) []byte {
	return append(append(make([]byte, 0, len(senderPrefix)+types.AddressLength), senderPrefix...), addr.Bytes()...)
}

// senderKey keeps the nonce big endian so an iteration walks in sequence order
func senderKey(addr types.Address, nonce uint64) []byte {
	return append(SenderPrefix(addr), encodeUint(nonce)...)
}
