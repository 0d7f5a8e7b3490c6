package crypto

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec"
	"github.com/notuslabs/notus-aa/helper/hex"
	"github.com/notuslabs/notus-aa/helper/keccak"
	"github.com/notuslabs/notus-aa/types"
)

// SignatureLength is the length of an r || s || v signature
const SignatureLength = 65

var (
	secp256k1N, _  = new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
	secp256k1NHalf = new(big.Int).Div(secp256k1N, big.NewInt(2))
	one            = big.NewInt(1)
)

var (
	ErrInvalidSignatureLength = errors.New("invalid signature length")
	ErrInvalidRecoveryID      = errors.New("invalid signature recovery id")
	ErrInvalidSignatureValues = errors.New("invalid signature values")
	ErrMalleableSignature     = errors.New("signature s value is in the upper half of the curve order")
	ErrInvalidPrivateKey      = errors.New("invalid private key")
)

// S256 returns the secp256k1 curve
func S256() *btcec.KoblitzCurve {
	return btcec.S256()
}

// Keccak256 calculates the Keccak256
func Keccak256(v ...[]byte) []byte {
	h := keccak.DefaultKeccakPool.Get()
	for _, i := range v {
		h.Write(i)
	}

	res := h.Sum(nil)
	keccak.DefaultKeccakPool.Put(h)

	return res
}

// Keccak256Hash calculates the Keccak256 and returns it as a hash
func Keccak256Hash(v ...[]byte) types.Hash {
	return types.BytesToHash(Keccak256(v...))
}

// GenerateECDSAKey generates a new key based on the secp256k1 elliptic curve
func GenerateECDSAKey() (*ecdsa.PrivateKey, error) {
	key, err := btcec.NewPrivateKey(S256())
	if err != nil {
		return nil, err
	}

	return key.ToECDSA(), nil
}

// ParseECDSAPrivateKey parses a raw 32 byte private key
func ParseECDSAPrivateKey(buf []byte) (*ecdsa.PrivateKey, error) {
	if len(buf) != 32 {
		return nil, fmt.Errorf("%w: expected 32 bytes, got %d", ErrInvalidPrivateKey, len(buf))
	}

	k := new(big.Int).SetBytes(buf)
	if k.Cmp(one) < 0 || k.Cmp(secp256k1N) >= 0 {
		return nil, ErrInvalidPrivateKey
	}

	prv, _ := btcec.PrivKeyFromBytes(S256(), buf)

	return prv.ToECDSA(), nil
}

// BytesToPrivateKey parses a hex encoded private key, with or without the 0x prefix
func BytesToPrivateKey(input []byte) (*ecdsa.PrivateKey, error) {
	buf, err := hex.DecodeHex(strings.TrimSpace(string(input)))
	if err != nil {
		return nil, err
	}

	return ParseECDSAPrivateKey(buf)
}

// MarshalECDSAPrivateKey serializes the private key's D value to a []byte
func MarshalECDSAPrivateKey(priv *ecdsa.PrivateKey) []byte {
	return (*btcec.PrivateKey)(priv).Serialize()
}

// PubKeyToAddress returns the address derived from an uncompressed public key
func PubKeyToAddress(pub *ecdsa.PublicKey) types.Address {
	buf := (*btcec.PublicKey)(pub).SerializeUncompressed()

	return types.BytesToAddress(Keccak256(buf[1:])[12:])
}

// Sign produces a 65 byte r || s || v signature over the hash, with v in {27, 28}
func Sign(priv *ecdsa.PrivateKey, hash []byte) ([]byte, error) {
	sig, err := btcec.SignCompact(S256(), (*btcec.PrivateKey)(priv), hash, false)
	if err != nil {
		return nil, err
	}

	// compact signatures are v || r || s
	return append(sig[1:], sig[0]), nil
}

// ValidateSignatureValues checks r and s are in range and s is in the lower half
func ValidateSignatureValues(r, s *big.Int) error {
	if r.Cmp(one) < 0 || s.Cmp(one) < 0 || r.Cmp(secp256k1N) >= 0 || s.Cmp(secp256k1N) >= 0 {
		return ErrInvalidSignatureValues
	}

	if s.Cmp(secp256k1NHalf) > 0 {
		return ErrMalleableSignature
	}

	return nil
}

// RecoverPubkey recovers the public key of a 65 byte r || s || v signature.
// v may be expressed either as {0, 1} or as {27, 28}.
func RecoverPubkey(signature, hash []byte) (*ecdsa.PublicKey, error) {
	if len(signature) != SignatureLength {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSignatureLength, len(signature))
	}

	v := signature[SignatureLength-1]
	if v < 27 {
		v += 27
	}

	if v != 27 && v != 28 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRecoveryID, signature[SignatureLength-1])
	}

	r := new(big.Int).SetBytes(signature[:32])
	s := new(big.Int).SetBytes(signature[32:64])

	if err := ValidateSignatureValues(r, s); err != nil {
		return nil, err
	}

	compact := make([]byte, 0, SignatureLength)
	compact = append(compact, v)
	compact = append(compact, signature[:64]...)

	pub, _, err := btcec.RecoverCompact(S256(), compact, hash)
	if err != nil {
		return nil, err
	}

	return pub.ToECDSA(), nil
}

// RecoverAddress returns the address that produced the signature over hash
func RecoverAddress(hash, signature []byte) (types.Address, error) {
	pub, err := RecoverPubkey(signature, hash)
	if err != nil {
		return types.ZeroAddress, err
	}

	return PubKeyToAddress(pub), nil
}
