package runtime

import (
	"math/big"

	"github.com/notuslabs/notus-aa/helper/keccak"
	"github.com/notuslabs/notus-aa/types"
)

// SlotHash returns the storage key of a fixed slot
func SlotHash(slot uint64) types.Hash {
	return types.BytesToHash(new(big.Int).SetUint64(slot).Bytes())
}

// MappingSlot returns the storage key of key in the mapping at slot,
// keccak256(pad32(key) || pad32(slot)).
func MappingSlot(key types.Hash, slot types.Hash) types.Hash {
	buf := make([]byte, 0, 2*types.HashLength)
	buf = append(buf, key.Bytes()...)
	buf = append(buf, slot.Bytes()...)

	return types.BytesToHash(keccak.Keccak256(nil, buf))
}

// OffsetSlot returns slot + n, wrapping around the key space
func OffsetSlot(slot types.Hash, n uint64) types.Hash {
	v := new(big.Int).SetBytes(slot.Bytes())
	v.Add(v, new(big.Int).SetUint64(n))

	return BigToHash(v)
}

func BigToHash(v *big.Int) types.Hash {
	b := v.Bytes()
	if len(b) > types.HashLength {
		b = b[len(b)-types.HashLength:]
	}

	return types.BytesToHash(b)
}

func HashToBig(h types.Hash) *big.Int {
	return new(big.Int).SetBytes(h.Bytes())
}

// HashToAddress returns the address stored in the low bytes of a word
func HashToAddress(h types.Hash) types.Address {
	return types.BytesToAddress(h[types.HashLength-types.AddressLength:])
}
