package token

import (
	"math/big"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/notuslabs/notus-aa/contracts/abis"
	"github.com/notuslabs/notus-aa/helper/kvdb"
	"github.com/notuslabs/notus-aa/state"
	"github.com/notuslabs/notus-aa/state/runtime"
	"github.com/notuslabs/notus-aa/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = types.StringToAddress("0xa11ce")
	bob   = types.StringToAddress("0xb0b")
	carol = types.StringToAddress("0xca201")
)

func newTestToken(t *testing.T) (*state.Executor, *state.Transition, types.Address) {
	t.Helper()

	registry := runtime.NewRegistry()

	hash, err := registry.Register(Name, Bytecode, New())
	require.NoError(t, err)

	st := state.NewState(hclog.NewNullLogger(), kvdb.NewMemoryStorage())
	ex := state.NewExecutor(hclog.NewNullLogger(), st, registry, 270, types.ZeroAddress)
	tr := ex.BeginTxn()

	args, err := ConstructorArgs("Mock Token", "mToken", 18)
	require.NoError(t, err)

	addr, err := ex.Deploy(tr, alice, hash, args)
	require.NoError(t, err)

	return ex, tr, addr
}

func TestToken_Metadata(t *testing.T) {
	t.Parallel()

	ex, tr, addr := newTestToken(t)

	for method, expected := range map[string]interface{}{
		"name":     "Mock Token",
		"symbol":   "mToken",
		"decimals": uint8(18),
	} {
		input, err := abis.TokenABI.Pack(method)
		require.NoError(t, err)

		ret, err := ex.Call(tr, alice, addr, nil, input)
		require.NoError(t, err)

		outputs, err := abis.TokenABI.Unpack(method, ret)
		require.NoError(t, err)
		assert.Equal(t, expected, outputs[0], method)
	}
}

func TestToken_MintAndTransfer(t *testing.T) {
	t.Parallel()

	_, tr, addr := newTestToken(t)

	alicesLedger := NewLedger(tr, addr, alice, 0)

	require.NoError(t, alicesLedger.Mint(alice, big.NewInt(100)))
	require.NoError(t, alicesLedger.Transfer(bob, big.NewInt(30)))

	balance, err := alicesLedger.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, "70", balance.String())

	balance, err = alicesLedger.BalanceOf(bob)
	require.NoError(t, err)
	assert.Equal(t, "30", balance.String())

	err = NewLedger(tr, addr, bob, 0).Transfer(carol, big.NewInt(31))
	assert.ErrorIs(t, err, runtime.ErrExecutionReverted)
	assert.ErrorContains(t, err, "exceeds balance")

	assert.Error(t, alicesLedger.Transfer(types.ZeroAddress, big.NewInt(1)))
	assert.Error(t, alicesLedger.Mint(types.ZeroAddress, big.NewInt(1)))

	logs := tr.Txn().Logs()

	var transfers int

	for _, log := range logs {
		if log.Address == addr && log.Topics[0] == transferTopic {
			transfers++
		}
	}

	// the mint and the one successful transfer
	assert.Equal(t, 2, transfers)
}

func TestToken_Allowance(t *testing.T) {
	t.Parallel()

	_, tr, addr := newTestToken(t)

	owner := NewLedger(tr, addr, alice, 0)
	spender := NewLedger(tr, addr, bob, 0)

	require.NoError(t, owner.Mint(alice, big.NewInt(100)))
	require.NoError(t, owner.Approve(bob, big.NewInt(50)))

	allowance, err := owner.Allowance(alice, bob)
	require.NoError(t, err)
	assert.Equal(t, "50", allowance.String())

	require.NoError(t, spender.TransferFrom(alice, carol, big.NewInt(20)))

	allowance, err = owner.Allowance(alice, bob)
	require.NoError(t, err)
	assert.Equal(t, "30", allowance.String())

	err = spender.TransferFrom(alice, carol, big.NewInt(31))
	assert.ErrorIs(t, err, runtime.ErrExecutionReverted)
	assert.ErrorContains(t, err, "insufficient allowance")

	// a revoked allowance cannot be spent at all
	require.NoError(t, owner.Approve(bob, big.NewInt(0)))
	assert.Error(t, spender.TransferFrom(alice, carol, big.NewInt(1)))

	balance, err := owner.BalanceOf(carol)
	require.NoError(t, err)
	assert.Equal(t, "20", balance.String())
}

func TestToken_RejectsValue(t *testing.T) {
	t.Parallel()

	ex, tr, addr := newTestToken(t)
	tr.Txn().AddBalance(alice, big.NewInt(10))

	input, err := abis.TokenABI.Pack("totalSupply")
	require.NoError(t, err)

	_, err = ex.Call(tr, alice, addr, big.NewInt(1), input)
	assert.ErrorIs(t, err, runtime.ErrExecutionReverted)

	// the value transfer was undone with the call
	assert.Equal(t, "10", tr.GetBalance(alice).String())
	assert.Equal(t, "0", tr.GetBalance(addr).String())
}

func TestToken_UnknownMethod(t *testing.T) {
	t.Parallel()

	ex, tr, addr := newTestToken(t)

	_, err := ex.Call(tr, alice, addr, nil, []byte{0xde, 0xad, 0xbe, 0xef})
	assert.ErrorIs(t, err, runtime.ErrExecutionReverted)
}
