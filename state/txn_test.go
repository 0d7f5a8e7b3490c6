package state

import (
	"math/big"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/notuslabs/notus-aa/helper/kvdb"
	"github.com/notuslabs/notus-aa/state/runtime"
	"github.com/notuslabs/notus-aa/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	addr1 = types.StringToAddress("1")
	addr2 = types.StringToAddress("2")

	hash1 = types.StringToHash("1")
	hash2 = types.StringToHash("2")
)

func newTestState() *State {
	return NewState(hclog.NewNullLogger(), kvdb.NewMemoryStorage())
}

func TestTxn_Balances(t *testing.T) {
	t.Parallel()

	txn := newTestState().NewTxn()

	assert.Zero(t, txn.GetBalance(addr1).Sign())
	assert.True(t, txn.Empty(addr1))

	txn.AddBalance(addr1, big.NewInt(100))
	assert.False(t, txn.Empty(addr1))

	require.NoError(t, txn.Transfer(addr1, addr2, big.NewInt(40)))
	assert.Equal(t, "60", txn.GetBalance(addr1).String())
	assert.Equal(t, "40", txn.GetBalance(addr2).String())

	err := txn.SubBalance(addr2, big.NewInt(41))
	assert.ErrorIs(t, err, runtime.ErrNotEnoughFunds)
	assert.Equal(t, "40", txn.GetBalance(addr2).String())

	err = txn.Transfer(addr2, addr1, big.NewInt(41))
	assert.ErrorIs(t, err, runtime.ErrNotEnoughFunds)
	assert.Equal(t, "60", txn.GetBalance(addr1).String())
}

func TestTxn_ReadsAreCopies(t *testing.T) {
	t.Parallel()

	txn := newTestState().NewTxn()
	txn.AddBalance(addr1, big.NewInt(10))

	balance := txn.GetBalance(addr1)
	balance.SetInt64(1000)

	assert.Equal(t, "10", txn.GetBalance(addr1).String())
}

func TestTxn_Nonce(t *testing.T) {
	t.Parallel()

	txn := newTestState().NewTxn()

	require.NoError(t, txn.IncrementNonceIfEquals(addr1, 0))
	assert.Equal(t, uint64(1), txn.GetNonce(addr1))

	err := txn.IncrementNonceIfEquals(addr1, 0)
	assert.ErrorIs(t, err, runtime.ErrNonceMismatch)

	err = txn.IncrementNonceIfEquals(addr1, 2)
	assert.ErrorIs(t, err, runtime.ErrNonceMismatch)
	assert.Equal(t, uint64(1), txn.GetNonce(addr1))

	txn.IncrNonce(addr1)
	assert.Equal(t, uint64(2), txn.GetNonce(addr1))
}

func TestTxn_SnapshotRevert(t *testing.T) {
	t.Parallel()

	txn := newTestState().NewTxn()

	txn.SetState(addr1, hash1, hash1)
	txn.AddBalance(addr1, big.NewInt(5))
	txn.EmitLog(addr1, []types.Hash{hash1}, nil)

	outer := txn.Snapshot()

	txn.SetState(addr1, hash1, hash2)
	txn.AddBalance(addr1, big.NewInt(5))
	txn.IncrNonce(addr1)
	txn.EmitLog(addr1, []types.Hash{hash2}, nil)

	inner := txn.Snapshot()

	txn.SetCode(addr2, hash1, []byte{0x1})

	txn.RevertToSnapshot(inner)
	assert.Equal(t, types.ZeroHash, txn.GetCodeHash(addr2))
	assert.Equal(t, "10", txn.GetBalance(addr1).String())

	txn.RevertToSnapshot(outer)

	value, err := txn.GetState(addr1, hash1)
	require.NoError(t, err)
	assert.Equal(t, hash1, value)
	assert.Equal(t, "5", txn.GetBalance(addr1).String())
	assert.Equal(t, uint64(0), txn.GetNonce(addr1))

	logs := txn.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, []types.Hash{hash1}, logs[0].Topics)
	assert.Empty(t, txn.Logs())

	// the inner snapshot was dropped with the revert
	assert.Panics(t, func() { txn.RevertToSnapshot(inner) })
}

func TestTxn_EmitLogCopiesInput(t *testing.T) {
	t.Parallel()

	txn := newTestState().NewTxn()

	topics := []types.Hash{hash1}
	data := []byte{0x1, 0x2}

	txn.EmitLog(addr1, topics, data)

	topics[0] = hash2
	data[0] = 0xff

	logs := txn.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, hash1, logs[0].Topics[0])
	assert.Equal(t, []byte{0x1, 0x2}, logs[0].Data)
}

func TestState_Commit(t *testing.T) {
	t.Parallel()

	st := newTestState()

	txn := st.NewTxn()
	txn.AddBalance(addr1, big.NewInt(7))
	txn.IncrNonce(addr1)
	txn.SetState(addr1, hash1, hash2)
	txn.SetCode(addr2, hash1, []byte{0xaa, 0xbb})

	require.NoError(t, st.Commit(txn.Commit()))

	balance, err := st.GetBalance(addr1)
	require.NoError(t, err)
	assert.Equal(t, "7", balance.String())

	nonce, err := st.GetNonce(addr1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)

	value, err := st.GetStorage(addr1, hash1)
	require.NoError(t, err)
	assert.Equal(t, hash2, value)

	code, ok := st.GetCode(hash1)
	require.True(t, ok)
	assert.Equal(t, []byte{0xaa, 0xbb}, code)

	// a later txn reads the committed values through the state
	next := st.NewTxn()
	assert.Equal(t, "7", next.GetBalance(addr1).String())
	assert.Equal(t, hash1, next.GetCodeHash(addr2))
	assert.Equal(t, []byte{0xaa, 0xbb}, next.GetCode(addr2))

	unknown, err := st.GetAccount(types.StringToAddress("3"))
	require.NoError(t, err)
	assert.Nil(t, unknown)
}
