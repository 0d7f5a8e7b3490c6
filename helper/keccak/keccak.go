package keccak

import (
	"hash"

	"github.com/dogechain-lab/fastrlp"
	"golang.org/x/crypto/sha3"
)

// Keccak is the sha256 keccak hash
type Keccak struct {
	buf  []byte // buffer to store intermediate rlp marshal values
	hash hash.Hash
}

// WriteRlp writes an RLP value
func (k *Keccak) WriteRlp(dst []byte, v *fastrlp.Value) []byte {
	k.buf = v.MarshalTo(k.buf[:0])
	k.Write(k.buf)

	return k.Sum(dst)
}

// Write implements the hash interface
func (k *Keccak) Write(b []byte) (int, error) {
	return k.hash.Write(b)
}

// Reset implements the hash interface
func (k *Keccak) Reset() {
	k.buf = k.buf[:0]
	k.hash.Reset()
}

// Sum implements the hash interface
func (k *Keccak) Sum(dst []byte) []byte {
	return k.hash.Sum(dst)
}

// Size implements the hash interface
func (k *Keccak) Size() int {
	return k.hash.Size()
}

// NewKeccak256 returns a new keccak 256
func NewKeccak256() *Keccak {
	return &Keccak{
		hash: sha3.NewLegacyKeccak256(),
	}
}

// Keccak256 hashes a src with keccak-256
func Keccak256(dst, src []byte) []byte {
	h := DefaultKeccakPool.Get()
	h.Write(src)
	dst = h.Sum(dst)
	DefaultKeccakPool.Put(h)

	return dst
}

// Keccak256Rlp hashes a fastrlp.Value with keccak-256
func Keccak256Rlp(dst []byte, src *fastrlp.Value) []byte {
	h := DefaultKeccakPool.Get()
	dst = h.WriteRlp(dst, src)
	DefaultKeccakPool.Put(h)

	return dst
}
