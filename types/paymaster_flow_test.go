package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymasterFlow_ApprovalBased(t *testing.T) {
	t.Parallel()

	token := StringToAddress("0x1234")

	input, err := EncodeApprovalBasedFlow(token, big.NewInt(1_000_000), []byte{0x42})
	assert.NoError(t, err)
	assert.Equal(t, ApprovalBasedFlowSelector, input[:4])
	// selector + address + uint256 + offset + length + one padded word
	assert.Len(t, input, 4+5*32)

	flow, err := DecodePaymasterFlow(input)
	assert.NoError(t, err)
	assert.Equal(t, FlowApprovalBased, flow.Kind)
	assert.Equal(t, token, flow.Token)
	assert.Equal(t, int64(1_000_000), flow.MinimalAllowance.Int64())
	assert.Equal(t, []byte{0x42}, flow.InnerInput)
}

func TestPaymasterFlow_General(t *testing.T) {
	t.Parallel()

	input, err := EncodeGeneralFlow(nil)
	assert.NoError(t, err)

	flow, err := DecodePaymasterFlow(input)
	assert.NoError(t, err)
	assert.Equal(t, FlowGeneral, flow.Kind)
	assert.Equal(t, "general", flow.Kind.String())
}

func TestPaymasterFlow_Malformed(t *testing.T) {
	t.Parallel()

	_, err := DecodePaymasterFlow([]byte{0x94})
	assert.ErrorIs(t, err, ErrShortPaymasterInput)

	_, err = DecodePaymasterFlow([]byte{0x01, 0x02, 0x03, 0x04})
	assert.ErrorIs(t, err, ErrUnknownPaymasterFlow)

	_, err = DecodePaymasterFlow(append(ApprovalBasedFlowSelector, 0x01))
	assert.ErrorIs(t, err, ErrMalformedPaymasterArg)
}
