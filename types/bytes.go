package types

import (
	"encoding/hex"
	"strings"
)

// CopyBytes returns an exact copy of the provided bytes.
func CopyBytes(b []byte) (copiedBytes []byte) {
	if b == nil {
		return nil
	}

	copiedBytes = make([]byte, len(b))
	copy(copiedBytes, b)

	return
}

func StringToBytes(str string) []byte {
	str = strings.TrimPrefix(str, "0x")
	if len(str)%2 == 1 {
		str = "0" + str
	}

	b, _ := hex.DecodeString(str)

	return b
}

// TrimLeftZeroes returns a subslice of s without leading zeroes
func TrimLeftZeroes(s []byte) []byte {
	idx := 0
	for ; idx < len(s); idx++ {
		if s[idx] != 0 {
			break
		}
	}

	return s[idx:]
}

// LeftPadBytes zero-pads b on the left up to size. Longer slices are returned as is.
func LeftPadBytes(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}

	padded := make([]byte, size)
	copy(padded[size-len(b):], b)

	return padded
}

// CopyByteSlices deep copies a list of byte slices
func CopyByteSlices(src [][]byte) [][]byte {
	if src == nil {
		return nil
	}

	dst := make([][]byte, len(src))
	for i, b := range src {
		dst[i] = CopyBytes(b)
	}

	return dst
}
