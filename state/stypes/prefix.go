package stypes

import "github.com/notuslabs/notus-aa/types"

var (
	AccountPrefix = []byte("a") // AccountPrefix + address -> account rlp
	StoragePrefix = []byte("s") // StoragePrefix + address + slot -> storage value
	CodePrefix    = []byte("c") // CodePrefix + code hash -> code
)

func prefixed(prefix []byte, parts ...[]byte) []byte {
	size := len(prefix)
	for _, p := range parts {
		size += len(p)
	}

	key := make([]byte, 0, size)
	key = append(key, prefix...)

	for _, p := range parts {
		key = append(key, p...)
	}

	return key
}

func AccountKey(addr types.Address) []byte {
	return prefixed(AccountPrefix, addr.Bytes())
}

func StorageKey(addr types.Address, slot []byte) []byte {
	return prefixed(StoragePrefix, addr.Bytes(), slot)
}

func CodeKey(hash types.Hash) []byte {
	return prefixed(CodePrefix, hash.Bytes())
}
