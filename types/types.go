package types

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/notuslabs/notus-aa/helper/keccak"
)

const (
	HashLength    = 32
	AddressLength = 20
)

var (
	// ZeroAddress is the default address
	ZeroAddress = Address{}
	// ZeroHash is the default hash
	ZeroHash = Hash{}
	// EmptyCodeHash is the code hash of an account without code
	EmptyCodeHash = ZeroHash
)

type Hash [HashLength]byte

type Address [AddressLength]byte

func min(i, j int) int {
	if i < j {
		return i
	}

	return j
}

func BytesToHash(b []byte) Hash {
	var h Hash

	size := len(b)
	min := min(size, HashLength)

	copy(h[HashLength-min:], b[len(b)-min:])

	return h
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) Value() (driver.Value, error) {
	return h.String(), nil
}

// checksumEncode returns the checksummed address with 0x prefix, as by EIP-55
func (a Address) checksumEncode() string {
	addrBytes := a.Bytes()
	hexEncoded := hex.EncodeToString(addrBytes)
	hash := keccak.Keccak256(nil, []byte(hexEncoded))

	result := make([]rune, len(hexEncoded))

	for i, c := range hexEncoded {
		if unicode.IsDigit(c) {
			result[i] = c

			continue
		}

		// every byte of the hash covers two nibbles of the address
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}

		if nibble >= 8 {
			result[i] = unicode.ToUpper(c)
		} else {
			result[i] = c
		}
	}

	return "0x" + string(result)
}

func (a Address) Ptr() *Address {
	return &a
}

func (a Address) String() string {
	return a.checksumEncode()
}

func (a Address) Bytes() []byte {
	return a[:]
}

// Hash returns the address left padded to 32 bytes, as stored in a word
func (a Address) Hash() Hash {
	return BytesToHash(a[:])
}

func (a Address) Value() (driver.Value, error) {
	return a.String(), nil
}

func StringToHash(str string) Hash {
	return BytesToHash(StringToBytes(str))
}

func StringToAddress(str string) Address {
	return BytesToAddress(StringToBytes(str))
}

func AddressToString(address Address) string {
	return string(address[:])
}

func BytesToAddress(b []byte) Address {
	var a Address

	size := len(b)
	min := min(size, AddressLength)

	copy(a[AddressLength-min:], b[len(b)-min:])

	return a
}

// IsHexAddress reports whether str is a 20 byte hex string, with or without 0x
func IsHexAddress(str string) bool {
	str = strings.TrimPrefix(str, "0x")
	if len(str) != 2*AddressLength {
		return false
	}

	_, err := hex.DecodeString(str)

	return err == nil
}

// UnmarshalText parses a hash in hex syntax.
func (h *Hash) UnmarshalText(input []byte) error {
	*h = BytesToHash(StringToBytes(string(input)))

	return nil
}

// UnmarshalText parses an address in hex syntax.
func (a *Address) UnmarshalText(input []byte) error {
	buf := StringToBytes(string(input))
	if len(buf) != AddressLength {
		return fmt.Errorf("incorrect length for address, expected %d bytes but found %d", AddressLength, len(buf))
	}

	*a = BytesToAddress(buf)

	return nil
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}
