package crypto

import (
	"math"
	"math/big"
	"testing"

	"github.com/notuslabs/notus-aa/helper/hex"
	"github.com/notuslabs/notus-aa/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChainID = 270

var testAccount = types.StringToAddress("0x36615cf349d7f6344891b1e7ca7c72883f5dc049")

func newTestOperation(t *testing.T, sponsored bool) *types.Operation {
	t.Helper()

	op := &types.Operation{
		Nonce:                0,
		From:                 testAccount,
		To:                   testAccount,
		Value:                big.NewInt(0),
		GasLimit:             97578666,
		GasPerPubdata:        types.DefaultGasPerPubdata,
		MaxFeePerGas:         big.NewInt(250000000),
		MaxPriorityFeePerGas: big.NewInt(250000000),
		ChainID:              testChainID,
		Input:                hex.MustDecodeHex("0xa8af6d84"),
	}

	if sponsored {
		input, err := types.EncodeApprovalBasedFlow(
			types.StringToAddress("0x00000000000000000000000000000000000000aa"),
			big.NewInt(1000000),
			nil,
		)
		require.NoError(t, err)

		op.PaymasterParams = &types.PaymasterParams{
			Paymaster:      types.StringToAddress("0x00000000000000000000000000000000000000bb"),
			PaymasterInput: input,
		}
	}

	return op
}

func TestEIP712Signer_DomainSeparator(t *testing.T) {
	t.Parallel()

	sep, err := NewEIP712Signer(testChainID).DomainSeparator()
	require.NoError(t, err)

	assert.Equal(t, "0x90c05efb083b1455ff9cfdbd3792b42bea87908b3a05f46c28244311c105b5a6", sep.String())
}

func TestEIP712Signer_Digest(t *testing.T) {
	t.Parallel()

	signer := NewEIP712Signer(testChainID)

	withDep := newTestOperation(t, false)
	withDep.FactoryDeps = [][]byte{testBytecode()}

	cases := []struct {
		name   string
		op     *types.Operation
		digest string
	}{
		{
			"sponsored",
			newTestOperation(t, true),
			"0xeda029c979fd75f12fb7b5a8bb8193e390d9fa0a2433f17e5860267cce8b780b",
		},
		{
			"self paid",
			newTestOperation(t, false),
			"0x4ef8aea1e0a3c8fdef52829b3ff755ace9c3d41bdb4d74969166fcb5837484b4",
		},
		{
			"factory dependency",
			withDep,
			"0x95b1ee0aca86b5b057fb68d56ea9dcace552db7f87f0fea9a5879d2bad09e93f",
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			digest, err := signer.Digest(c.op)
			require.NoError(t, err)

			assert.Equal(t, c.digest, digest.String())
		})
	}
}

func TestEIP712Signer_DigestIgnoresSignature(t *testing.T) {
	t.Parallel()

	signer := NewEIP712Signer(testChainID)

	op := newTestOperation(t, true)

	before, err := signer.Digest(op)
	require.NoError(t, err)

	op.Signature = make([]byte, SignatureLength)

	after, err := signer.Digest(op)
	require.NoError(t, err)

	assert.Equal(t, before, after)
}

func TestEIP712Signer_DigestSensitivity(t *testing.T) {
	t.Parallel()

	signer := NewEIP712Signer(testChainID)

	base, err := signer.Digest(newTestOperation(t, true))
	require.NoError(t, err)

	mutations := map[string]func(op *types.Operation){
		"nonce":     func(op *types.Operation) { op.Nonce = 1 },
		"input":     func(op *types.Operation) { op.Input = hex.MustDecodeHex("0xa8af6d85") },
		"fee":       func(op *types.Operation) { op.MaxFeePerGas = big.NewInt(250000001) },
		"paymaster": func(op *types.Operation) { op.PaymasterParams.Paymaster = types.StringToAddress("0xcc") },
		"value":     func(op *types.Operation) { op.Value = big.NewInt(1) },
	}

	for name, mutate := range mutations {
		op := newTestOperation(t, true)
		mutate(op)

		digest, err := signer.Digest(op)
		require.NoError(t, err, name)

		assert.NotEqual(t, base, digest, name)
	}
}

func TestEIP712Signer_ChainMismatch(t *testing.T) {
	t.Parallel()

	_, err := NewEIP712Signer(324).Digest(newTestOperation(t, false))
	assert.ErrorIs(t, err, ErrChainIDMismatch)
}

func TestEIP712Signer_Malformed(t *testing.T) {
	t.Parallel()

	signer := NewEIP712Signer(testChainID)

	_, err := signer.Digest(nil)
	assert.ErrorIs(t, err, ErrMalformedOperation)

	noFee := newTestOperation(t, false)
	noFee.MaxFeePerGas = nil

	_, err = signer.Digest(noFee)
	assert.ErrorIs(t, err, ErrMalformedOperation)

	badDep := newTestOperation(t, false)
	badDep.FactoryDeps = [][]byte{{0x01, 0x02}}

	_, err = signer.Digest(badDep)
	assert.ErrorIs(t, err, ErrMalformedOperation)
}

func TestEIP712Signer_SignAndSender(t *testing.T) {
	t.Parallel()

	signer := NewEIP712Signer(testChainID)

	priv, err := BytesToPrivateKey([]byte(testPrivateKey))
	require.NoError(t, err)

	op := newTestOperation(t, true)

	signed, err := signer.SignOperation(op, priv)
	require.NoError(t, err)

	assert.Nil(t, op.Signature)
	assert.Len(t, signed.Signature, SignatureLength)

	sender, err := signer.Sender(signed)
	require.NoError(t, err)

	assert.Equal(t, PubKeyToAddress(&priv.PublicKey), sender)

	// a tampered operation recovers a different address
	signed.Nonce++

	other, err := signer.Sender(signed)
	require.NoError(t, err)

	assert.NotEqual(t, sender, other)
}

func TestEIP712Signer_LargeChainID(t *testing.T) {
	t.Parallel()

	signer := NewEIP712Signer(math.MaxUint64)

	op := newTestOperation(t, false)
	op.ChainID = math.MaxUint64

	typedData, err := signer.TypedData(op)
	require.NoError(t, err)

	assert.Equal(t, "18446744073709551615", (*big.Int)(typedData.Domain.ChainId).String())

	// chain ids above the int64 range still get their own domain
	large, err := signer.DomainSeparator()
	require.NoError(t, err)

	wrapped, err := NewEIP712Signer(math.MaxInt64).DomainSeparator()
	require.NoError(t, err)

	assert.NotEqual(t, large, wrapped)

	priv, err := BytesToPrivateKey([]byte(testPrivateKey))
	require.NoError(t, err)

	signed, err := signer.SignOperation(op, priv)
	require.NoError(t, err)

	sender, err := signer.Sender(signed)
	require.NoError(t, err)

	assert.Equal(t, PubKeyToAddress(&priv.PublicKey), sender)
}
