package types

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// PaymasterFlowKind tags the sponsorship mode carried by a paymaster input
type PaymasterFlowKind int

const (
	FlowUnknown PaymasterFlowKind = iota
	FlowGeneral
	FlowApprovalBased
)

func (k PaymasterFlowKind) String() string {
	switch k {
	case FlowGeneral:
		return "general"
	case FlowApprovalBased:
		return "approvalBased"
	default:
		return "unknown"
	}
}

var (
	// approvalBased(address,uint256,bytes)
	ApprovalBasedFlowSelector = []byte{0x94, 0x94, 0x31, 0xdc}
	// general(bytes)
	GeneralFlowSelector = []byte{0x8c, 0x5a, 0x34, 0x45}

	ErrShortPaymasterInput   = errors.New("paymaster input shorter than a selector")
	ErrUnknownPaymasterFlow  = errors.New("unknown paymaster flow")
	ErrMalformedPaymasterArg = errors.New("malformed paymaster flow arguments")
)

var (
	abiAddress, _ = abi.NewType("address", "", nil)
	abiUint256, _ = abi.NewType("uint256", "", nil)
	abiBytes, _   = abi.NewType("bytes", "", nil)

	approvalBasedArgs = abi.Arguments{{Type: abiAddress}, {Type: abiUint256}, {Type: abiBytes}}
	generalArgs       = abi.Arguments{{Type: abiBytes}}
)

// PaymasterFlow is the decoded form of a paymaster input
type PaymasterFlow struct {
	Kind PaymasterFlowKind

	// approval based fields
	Token            Address
	MinimalAllowance *big.Int

	InnerInput []byte
}

// EncodeApprovalBasedFlow builds the paymaster input of the allowance based mode
func EncodeApprovalBasedFlow(token Address, minimalAllowance *big.Int, innerInput []byte) ([]byte, error) {
	if innerInput == nil {
		innerInput = []byte{}
	}

	args, err := approvalBasedArgs.Pack(common.Address(token), bigOrZero(minimalAllowance), innerInput)
	if err != nil {
		return nil, err
	}

	return append(CopyBytes(ApprovalBasedFlowSelector), args...), nil
}

// EncodeGeneralFlow builds the paymaster input of the general mode
func EncodeGeneralFlow(innerInput []byte) ([]byte, error) {
	if innerInput == nil {
		innerInput = []byte{}
	}

	args, err := generalArgs.Pack(innerInput)
	if err != nil {
		return nil, err
	}

	return append(CopyBytes(GeneralFlowSelector), args...), nil
}

// DecodePaymasterFlow parses a paymaster input into its tagged variant
func DecodePaymasterFlow(input []byte) (*PaymasterFlow, error) {
	if len(input) < 4 {
		return nil, ErrShortPaymasterInput
	}

	selector, data := input[:4], input[4:]

	switch {
	case bytes.Equal(selector, ApprovalBasedFlowSelector):
		values, err := approvalBasedArgs.Unpack(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPaymasterArg, err)
		}

		token, ok1 := values[0].(common.Address)
		minimal, ok2 := values[1].(*big.Int)
		inner, ok3 := values[2].([]byte)

		if !ok1 || !ok2 || !ok3 {
			return nil, ErrMalformedPaymasterArg
		}

		return &PaymasterFlow{
			Kind:             FlowApprovalBased,
			Token:            Address(token),
			MinimalAllowance: minimal,
			InnerInput:       inner,
		}, nil
	case bytes.Equal(selector, GeneralFlowSelector):
		values, err := generalArgs.Unpack(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPaymasterArg, err)
		}

		inner, ok := values[0].([]byte)
		if !ok {
			return nil, ErrMalformedPaymasterArg
		}

		return &PaymasterFlow{
			Kind:       FlowGeneral,
			InnerInput: inner,
		}, nil
	default:
		return nil, fmt.Errorf("%w: selector 0x%x", ErrUnknownPaymasterFlow, selector)
	}
}
