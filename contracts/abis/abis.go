package abis

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/notuslabs/notus-aa/helper/keccak"
	"github.com/notuslabs/notus-aa/types"
)

var (
	ErrShortInput    = errors.New("input shorter than a selector")
	ErrUnknownMethod = errors.New("unknown method")
)

var (
	TokenABI     = mustParse(TokenJSONABI)
	WalletABI    = mustParse(WalletJSONABI)
	FactoryABI   = mustParse(FactoryJSONABI)
	PaymasterABI = mustParse(PaymasterJSONABI)
)

func mustParse(data []byte) *abi.ABI {
	parsed, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		panic(fmt.Errorf("invalid abi: %w", err))
	}

	return &parsed
}

// DecodeCall resolves the method selected by input and unpacks its arguments
func DecodeCall(contract *abi.ABI, input []byte) (*abi.Method, []interface{}, error) {
	if len(input) < 4 {
		return nil, nil, ErrShortInput
	}

	method, err := contract.MethodById(input[:4])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: 0x%x", ErrUnknownMethod, input[:4])
	}

	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to unpack %s arguments: %w", method.Name, err)
	}

	return method, args, nil
}

// EventTopic returns the signature topic of a named event
func EventTopic(contract *abi.ABI, name string) types.Hash {
	return types.Hash(contract.Events[name].ID)
}

// Artifact returns the deterministic stand-in bytecode of a native contract.
// It is three words long, which keeps it a valid input for the code fingerprint.
func Artifact(name string) []byte {
	code := make([]byte, 0, 3*types.HashLength)

	for i := byte(0); i < 3; i++ {
		word := keccak.Keccak256(nil, append([]byte(name), i))
		code = append(code, word...)
	}

	return code
}
