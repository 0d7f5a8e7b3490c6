package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newSponsoredOperation(t *testing.T) *Operation {
	t.Helper()

	input, err := EncodeApprovalBasedFlow(StringToAddress("0xaa"), big.NewInt(1_000_000), nil)
	assert.NoError(t, err)

	return &Operation{
		Nonce:         3,
		From:          StringToAddress("0x01"),
		To:            StringToAddress("0x01"),
		Value:         big.NewInt(0),
		GasLimit:      97578666,
		MaxFeePerGas:  big.NewInt(250000000),
		ChainID:       270,
		Input:         []byte{0xa8, 0xaf, 0x6d, 0x84},
		GasPerPubdata: DefaultGasPerPubdata,
		PaymasterParams: &PaymasterParams{
			Paymaster:      StringToAddress("0xbb"),
			PaymasterInput: input,
		},
		Signature: []byte{0x01, 0x02, 0x03},
	}
}

func TestOperation_RLPRoundTrip(t *testing.T) {
	t.Parallel()

	op := newSponsoredOperation(t)
	op.FactoryDeps = [][]byte{{0xde, 0xad}}

	raw := op.MarshalRLP()
	assert.Equal(t, EIP712TxType, raw[0])

	decoded := &Operation{}
	assert.NoError(t, decoded.UnmarshalRLP(raw))

	assert.Equal(t, op.Nonce, decoded.Nonce)
	assert.Equal(t, op.From, decoded.From)
	assert.Equal(t, op.To, decoded.To)
	assert.Equal(t, op.GasLimit, decoded.GasLimit)
	assert.Equal(t, 0, op.MaxFeePerGas.Cmp(decoded.MaxFeePerGas))
	// the priority fee defaults to the max fee on the wire
	assert.Equal(t, 0, op.MaxFeePerGas.Cmp(decoded.MaxPriorityFeePerGas))
	assert.Equal(t, op.ChainID, decoded.ChainID)
	assert.Equal(t, op.Input, decoded.Input)
	assert.Equal(t, op.GasPerPubdata, decoded.GasPerPubdata)
	assert.Equal(t, op.FactoryDeps, decoded.FactoryDeps)
	assert.Equal(t, op.Signature, decoded.Signature)
	assert.Equal(t, op.PaymasterParams, decoded.PaymasterParams)

	assert.Equal(t, op.Hash(), decoded.Hash())
}

func TestOperation_RLPWithoutPaymaster(t *testing.T) {
	t.Parallel()

	op := newSponsoredOperation(t)
	op.PaymasterParams = nil

	decoded := &Operation{}
	assert.NoError(t, decoded.UnmarshalRLP(op.MarshalRLP()))
	assert.Nil(t, decoded.PaymasterParams)
	assert.False(t, decoded.HasPaymaster())
	assert.Equal(t, ZeroAddress, decoded.Paymaster())
}

func TestOperation_UnmarshalRejectsWrongType(t *testing.T) {
	t.Parallel()

	raw := newSponsoredOperation(t).MarshalRLP()
	raw[0] = 0x02

	assert.ErrorIs(t, (&Operation{}).UnmarshalRLP(raw), ErrInvalidTxType)
	assert.ErrorIs(t, (&Operation{}).UnmarshalRLP(nil), ErrInvalidTxType)
}

func TestOperation_HashCoversSignature(t *testing.T) {
	t.Parallel()

	a := newSponsoredOperation(t)
	b := a.Copy()
	b.Signature = []byte{0x09}

	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestOperation_MaxFee(t *testing.T) {
	t.Parallel()

	op := newSponsoredOperation(t)

	expected := new(big.Int).Mul(big.NewInt(250000000), big.NewInt(97578666))
	assert.Equal(t, 0, expected.Cmp(op.MaxFee()))

	op.MaxFeePerGas = nil
	assert.Equal(t, 0, op.MaxFee().Sign())
}

func TestOperation_CopyIsDeep(t *testing.T) {
	t.Parallel()

	op := newSponsoredOperation(t)
	cp := op.Copy()

	cp.Input[0] = 0xff
	cp.PaymasterParams.PaymasterInput[0] = 0xff
	cp.MaxFeePerGas.SetUint64(1)

	assert.Equal(t, byte(0xa8), op.Input[0])
	assert.Equal(t, ApprovalBasedFlowSelector[0], op.PaymasterParams.PaymasterInput[0])
	assert.Equal(t, int64(250000000), op.MaxFeePerGas.Int64())
}

func TestReceipt_RLPRoundTrip(t *testing.T) {
	t.Parallel()

	receipt := &Receipt{
		OperationHash: StringToHash("0x01"),
		From:          StringToAddress("0x02"),
		Nonce:         7,
		Paymaster:     StringToAddress("0x03"),
		Status:        ReceiptFailed,
		Failure:       "SubcallFailure",
		Reason:        "execution reverted",
		FeeCharged:    big.NewInt(100),
		TokenPulled:   big.NewInt(1_000_000),
		Logs: []*Log{
			{
				Address: StringToAddress("0x04"),
				Topics:  []Hash{StringToHash("0x05")},
				Data:    []byte{0x06},
			},
		},
	}

	decoded := &Receipt{}
	assert.NoError(t, decoded.UnmarshalRLP(receipt.MarshalRLP()))
	assert.Equal(t, receipt, decoded)
}
