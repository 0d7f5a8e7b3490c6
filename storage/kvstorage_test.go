package storage

import (
	"math/big"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/notuslabs/notus-aa/helper/kvdb"
	"github.com/notuslabs/notus-aa/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sender = types.StringToAddress("0x1111111111111111111111111111111111111111")
	other  = types.StringToAddress("0x2222222222222222222222222222222222222222")
)

func newStorage(t *testing.T) *KeyValueStorage {
	t.Helper()

	db := kvdb.NewMemoryStorage()

	t.Cleanup(func() {
		db.Close()
	})

	s, err := NewKeyValueStorage(db, 4)
	require.NoError(t, err)

	return s
}

func applied(from types.Address, nonce uint64, status types.ReceiptStatus) (*types.Operation, *types.Receipt) {
	op := &types.Operation{
		Nonce:                nonce,
		From:                 from,
		To:                   from,
		Value:                big.NewInt(0),
		GasLimit:             100000,
		MaxFeePerGas:         big.NewInt(10),
		MaxPriorityFeePerGas: big.NewInt(1),
		ChainID:              270,
		Input:                []byte{0x01, 0x02},
		GasPerPubdata:        types.DefaultGasPerPubdata,
		Signature:            []byte{0xaa},
	}

	receipt := &types.Receipt{
		OperationHash: op.Hash(),
		From:          from,
		Nonce:         nonce,
		Status:        status,
		FeeCharged:    big.NewInt(1000000),
		Logs: []*types.Log{
			{Address: from, Topics: []types.Hash{types.StringToHash("0x01")}, Data: []byte{0x03}},
		},
	}

	if status == types.ReceiptFailed {
		receipt.Failure = "SubcallFailure"
		receipt.Reason = "sub-call 0 reverted"
	}

	return op, receipt
}

func TestStorage_GenesisHash(t *testing.T) {
	t.Parallel()

	s := newStorage(t)

	_, ok := s.ReadGenesisHash()
	assert.False(t, ok)

	hash := types.StringToHash("0xabcdef")
	require.NoError(t, s.WriteGenesisHash(hash))

	got, ok := s.ReadGenesisHash()
	assert.True(t, ok)
	assert.Equal(t, hash, got)
}

func TestStorage_WriteOperation(t *testing.T) {
	t.Parallel()

	s := newStorage(t)
	op, receipt := applied(sender, 0, types.ReceiptFailed)

	require.NoError(t, s.WriteOperation(op, receipt))
	assert.Equal(t, uint64(1), s.OperationCount())

	storedOp, err := s.ReadOperation(op.Hash())
	require.NoError(t, err)
	assert.Equal(t, op.Hash(), storedOp.Hash())
	assert.Equal(t, op.Signature, storedOp.Signature)

	// bypass the cache to check the persisted encoding
	s.receipts.Purge()

	stored, err := s.ReadReceipt(op.Hash())
	require.NoError(t, err)
	assert.Equal(t, receipt.From, stored.From)
	assert.Equal(t, types.ReceiptFailed, stored.Status)
	assert.Equal(t, "SubcallFailure", stored.Failure)
	assert.Equal(t, "sub-call 0 reverted", stored.Reason)
	assert.Equal(t, "1000000", stored.FeeCharged.String())
	assert.Equal(t, "0", stored.TokenPulled.String())
	require.Len(t, stored.Logs, 1)
	assert.Equal(t, receipt.Logs[0].Data, stored.Logs[0].Data)
}

func TestStorage_WriteOperationMismatch(t *testing.T) {
	t.Parallel()

	s := newStorage(t)
	op, _ := applied(sender, 0, types.ReceiptSuccess)
	_, receipt := applied(sender, 1, types.ReceiptSuccess)

	assert.Error(t, s.WriteOperation(op, receipt))
	assert.Equal(t, uint64(0), s.OperationCount())
}

func TestStorage_StageOperation(t *testing.T) {
	t.Parallel()

	s := newStorage(t)
	op, receipt := applied(sender, 0, types.ReceiptSuccess)

	batch := s.NewBatch()

	stored, err := s.StageOperation(batch, op, receipt)
	require.NoError(t, err)

	// nothing is visible before the batch is written
	_, err = s.ReadReceipt(op.Hash())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, uint64(0), s.OperationCount())

	require.NoError(t, batch.Write())
	stored()

	assert.Equal(t, uint64(1), s.OperationCount())

	got, err := s.ReadReceipt(op.Hash())
	require.NoError(t, err)
	assert.Equal(t, receipt.OperationHash, got.OperationHash)
}

func TestStorage_ReceiptNotFound(t *testing.T) {
	t.Parallel()

	s := newStorage(t)

	_, err := s.ReadReceipt(types.StringToHash("0x01"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.ReadOperation(types.StringToHash("0x01"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_ReceiptsBySender(t *testing.T) {
	t.Parallel()

	s := newStorage(t)

	// written out of order on purpose, the index walks by nonce
	for _, nonce := range []uint64{2, 0, 1, 256} {
		op, receipt := applied(sender, nonce, types.ReceiptSuccess)
		require.NoError(t, s.WriteOperation(op, receipt))
	}

	op, receipt := applied(other, 0, types.ReceiptSuccess)
	require.NoError(t, s.WriteOperation(op, receipt))

	nonces := func(receipts []*types.Receipt) []uint64 {
		res := []uint64{}
		for _, r := range receipts {
			res = append(res, r.Nonce)
		}

		return res
	}

	all, err := s.ReadReceiptsBySender(sender, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1, 2, 256}, nonces(all))

	page, err := s.ReadReceiptsBySender(sender, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, nonces(page))

	none, err := s.ReadReceiptsBySender(types.ZeroAddress, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	assert.Equal(t, uint64(5), s.OperationCount())
}

func TestStorage_LevelDBReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	open := func() kvdb.KVBatchStorage {
		db, err := kvdb.NewLevelDBBuilder(hclog.NewNullLogger(), dir).Build()
		require.NoError(t, err)

		return db
	}

	db := open()
	s, err := NewKeyValueStorage(db, 0)
	require.NoError(t, err)

	op, receipt := applied(sender, 0, types.ReceiptSuccess)
	require.NoError(t, s.WriteOperation(op, receipt))
	require.NoError(t, s.WriteGenesisHash(types.StringToHash("0x01")))
	require.NoError(t, db.Close())

	db = open()
	defer db.Close()

	s, err = NewKeyValueStorage(db, 0)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), s.OperationCount())

	stored, err := s.ReadReceipt(op.Hash())
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptSuccess, stored.Status)

	hash, ok := s.ReadGenesisHash()
	assert.True(t, ok)
	assert.Equal(t, types.StringToHash("0x01"), hash)
}
