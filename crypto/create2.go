package crypto

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/notuslabs/notus-aa/types"
)

const (
	// BytecodeHashVersion is the version byte of a code fingerprint
	BytecodeHashVersion = 1

	// MaxBytecodeWords is the largest code size, in 32 byte words, a fingerprint can describe
	MaxBytecodeWords = 1<<16 - 1
)

var (
	// keccak256("zksyncCreate2")
	create2Prefix = Keccak256([]byte("zksyncCreate2"))
	// keccak256("zksyncCreate")
	createPrefix = Keccak256([]byte("zksyncCreate"))
)

var (
	ErrBytecodeNotAligned  = errors.New("bytecode length in bytes must be divisible by 32")
	ErrBytecodeEvenWords   = errors.New("bytecode length in 32-byte words must be odd")
	ErrBytecodeTooLong     = errors.New("bytecode too long")
	ErrBytecodeHashVersion = errors.New("unsupported bytecode hash version")
)

// HashBytecode returns the versioned code fingerprint:
// sha256(code) with byte 0 set to the version, byte 1 zeroed and
// bytes 2..3 holding the code length in words
func HashBytecode(code []byte) (types.Hash, error) {
	if len(code)%32 != 0 {
		return types.ZeroHash, ErrBytecodeNotAligned
	}

	words := len(code) / 32
	if words > MaxBytecodeWords {
		return types.ZeroHash, fmt.Errorf("%w: %d words", ErrBytecodeTooLong, words)
	}

	if words%2 == 0 {
		return types.ZeroHash, ErrBytecodeEvenWords
	}

	hash := types.Hash(sha256.Sum256(code))
	hash[0] = BytecodeHashVersion
	hash[1] = 0
	hash[2] = byte(words >> 8)
	hash[3] = byte(words)

	return hash, nil
}

// BytecodeLength returns the code length, in bytes, encoded in a fingerprint
func BytecodeLength(hash types.Hash) (int, error) {
	if hash[0] != BytecodeHashVersion || hash[1] != 0 {
		return 0, ErrBytecodeHashVersion
	}

	return (int(hash[2])<<8 | int(hash[3])) * 32, nil
}

// CreateAddress2 derives the deterministic address of a contract deployed by sender:
// keccak256(keccak256("zksyncCreate2") || pad32(sender) || salt || bytecodeHash || keccak256(input))[12:]
func CreateAddress2(sender types.Address, bytecodeHash types.Hash, salt types.Hash, input []byte) types.Address {
	return types.BytesToAddress(Keccak256(
		create2Prefix,
		types.LeftPadBytes(sender.Bytes(), 32),
		salt.Bytes(),
		bytecodeHash.Bytes(),
		Keccak256(input),
	)[12:])
}

// CreateAddress derives the address of a contract deployed by sender at the given deployment nonce
func CreateAddress(sender types.Address, nonce uint64) types.Address {
	nonceWord := make([]byte, 32)
	for i := 0; i < 8; i++ {
		nonceWord[31-i] = byte(nonce >> (8 * i))
	}

	return types.BytesToAddress(Keccak256(
		createPrefix,
		types.LeftPadBytes(sender.Bytes(), 32),
		nonceWord,
	)[12:])
}
