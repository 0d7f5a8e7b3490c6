package crypto

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/notuslabs/notus-aa/types"
)

const (
	eip712DomainName    = "zkSync"
	eip712DomainVersion = "2"

	eip712DomainType    = "EIP712Domain"
	eip712PrimaryType   = "Transaction"
	eip712TxTypeInteger = int64(types.EIP712TxType)
)

var (
	ErrMalformedOperation = errors.New("malformed operation")
	ErrChainIDMismatch    = errors.New("operation chain id does not match signer")
)

var eip712Types = apitypes.Types{
	eip712DomainType: {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
	},
	eip712PrimaryType: {
		{Name: "txType", Type: "uint256"},
		{Name: "from", Type: "uint256"},
		{Name: "to", Type: "uint256"},
		{Name: "gasLimit", Type: "uint256"},
		{Name: "gasPerPubdataByteLimit", Type: "uint256"},
		{Name: "maxFeePerGas", Type: "uint256"},
		{Name: "maxPriorityFeePerGas", Type: "uint256"},
		{Name: "paymaster", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "value", Type: "uint256"},
		{Name: "data", Type: "bytes"},
		{Name: "factoryDeps", Type: "bytes32[]"},
		{Name: "paymasterInput", Type: "bytes"},
	},
}

// TxSigner computes operation digests and recovers or attaches their signatures
type TxSigner interface {
	// Digest returns the hash the owner signs
	Digest(op *types.Operation) (types.Hash, error)

	// Sender returns the address that signed the operation
	Sender(op *types.Operation) (types.Address, error)

	// SignOperation returns a signed copy of the operation
	SignOperation(op *types.Operation, priv *ecdsa.PrivateKey) (*types.Operation, error)
}

// EIP712Signer implements the typed data digest of account abstraction operations
type EIP712Signer struct {
	chainID uint64
}

// NewEIP712Signer returns a new signer bound to a chain id
func NewEIP712Signer(chainID uint64) *EIP712Signer {
	return &EIP712Signer{chainID: chainID}
}

func (s *EIP712Signer) ChainID() uint64 {
	return s.chainID
}

func addressToInteger(addr types.Address) *big.Int {
	return new(big.Int).SetBytes(addr.Bytes())
}

func orZero(i *big.Int) *big.Int {
	if i == nil {
		return new(big.Int)
	}

	return i
}

func emptyIfNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}

	return b
}

// TypedData returns the structured form of the operation digest
func (s *EIP712Signer) TypedData(op *types.Operation) (*apitypes.TypedData, error) {
	if op == nil {
		return nil, fmt.Errorf("%w: nil operation", ErrMalformedOperation)
	}

	if op.ChainID != s.chainID {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrChainIDMismatch, s.chainID, op.ChainID)
	}

	if op.MaxFeePerGas == nil {
		return nil, fmt.Errorf("%w: max fee per gas not set", ErrMalformedOperation)
	}

	deps := make([]interface{}, 0, len(op.FactoryDeps))

	for i, dep := range op.FactoryDeps {
		hash, err := HashBytecode(dep)
		if err != nil {
			return nil, fmt.Errorf("%w: factory dependency %d: %v", ErrMalformedOperation, i, err)
		}

		deps = append(deps, hash.Bytes())
	}

	return &apitypes.TypedData{
		Types:       eip712Types,
		PrimaryType: eip712PrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:    eip712DomainName,
			Version: eip712DomainVersion,
			ChainId: s.domainChainID(),
		},
		Message: apitypes.TypedDataMessage{
			"txType":                 big.NewInt(eip712TxTypeInteger),
			"from":                   addressToInteger(op.From),
			"to":                     addressToInteger(op.To),
			"gasLimit":               new(big.Int).SetUint64(op.GasLimit),
			"gasPerPubdataByteLimit": new(big.Int).SetUint64(op.GasPerPubdata),
			"maxFeePerGas":           op.MaxFeePerGas,
			"maxPriorityFeePerGas":   orZero(op.PriorityFee()),
			"paymaster":              addressToInteger(op.Paymaster()),
			"nonce":                  new(big.Int).SetUint64(op.Nonce),
			"value":                  orZero(op.Value),
			"data":                   emptyIfNil(op.Input),
			"factoryDeps":            deps,
			"paymasterInput":         emptyIfNil(op.PaymasterInput()),
		},
	}, nil
}

// domainChainID keeps the full uint64 range of the chain id
func (s *EIP712Signer) domainChainID() *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(new(big.Int).SetUint64(s.chainID))
}

// DomainSeparator returns the hash of the signing domain
func (s *EIP712Signer) DomainSeparator() (types.Hash, error) {
	typedData := apitypes.TypedData{
		Types: eip712Types,
		Domain: apitypes.TypedDataDomain{
			Name:    eip712DomainName,
			Version: eip712DomainVersion,
			ChainId: s.domainChainID(),
		},
	}

	sep, err := typedData.HashStruct(eip712DomainType, typedData.Domain.Map())
	if err != nil {
		return types.ZeroHash, err
	}

	return types.BytesToHash(sep), nil
}

// Digest computes keccak256(0x19 0x01 || domainSeparator || hashStruct(operation))
func (s *EIP712Signer) Digest(op *types.Operation) (types.Hash, error) {
	typedData, err := s.TypedData(op)
	if err != nil {
		return types.ZeroHash, err
	}

	domainSeparator, err := typedData.HashStruct(eip712DomainType, typedData.Domain.Map())
	if err != nil {
		return types.ZeroHash, fmt.Errorf("failed to hash domain: %w", err)
	}

	structHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return types.ZeroHash, fmt.Errorf("%w: %v", ErrMalformedOperation, err)
	}

	return Keccak256Hash([]byte{0x19, 0x01}, domainSeparator, structHash), nil
}

// Sender recovers the signer of the operation
func (s *EIP712Signer) Sender(op *types.Operation) (types.Address, error) {
	digest, err := s.Digest(op)
	if err != nil {
		return types.ZeroAddress, err
	}

	return RecoverAddress(digest.Bytes(), op.Signature)
}

// SignOperation signs the digest of the operation with the given key.
// The input is left untouched, so a cached hash of it stays valid.
func (s *EIP712Signer) SignOperation(op *types.Operation, priv *ecdsa.PrivateKey) (*types.Operation, error) {
	digest, err := s.Digest(op)
	if err != nil {
		return nil, err
	}

	sig, err := Sign(priv, digest.Bytes())
	if err != nil {
		return nil, err
	}

	signed := op.Copy()
	signed.Signature = sig

	return signed, nil
}
