package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/notuslabs/notus-aa/helper/kvdb"
	"github.com/notuslabs/notus-aa/helper/rawdb"
	"github.com/notuslabs/notus-aa/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testGenesis = types.StringToHash("0x1234")

func newTestDB(t *testing.T, entries int) kvdb.KVBatchStorage {
	t.Helper()

	db := kvdb.NewMemoryStorage()

	require.NoError(t, rawdb.WriteGenesisHash(db, testGenesis))
	require.NoError(t, rawdb.WriteOperationCount(db, 7))

	for i := 0; i < entries; i++ {
		// values above 56 bytes use the long list header
		value := []byte(strings.Repeat(fmt.Sprintf("%d", i), i%40+1))
		require.NoError(t, db.Set([]byte(fmt.Sprintf("a%05d", i)), value))
	}

	return db
}

func dump(t *testing.T, db kvdb.KVBatchStorage) map[string]string {
	t.Helper()

	res := map[string]string{}

	iter := db.NewIterator(nil)
	defer iter.Release()

	for iter.Next() {
		res[string(iter.Key())] = string(iter.Value())
	}

	require.NoError(t, iter.Error())

	return res
}

func TestBackupRestore(t *testing.T) {
	t.Parallel()

	for _, compressed := range []bool{false, true} {
		compressed := compressed

		t.Run(fmt.Sprintf("zstd=%v", compressed), func(t *testing.T) {
			t.Parallel()

			src := newTestDB(t, restoreBatchSize+10)
			path := filepath.Join(t.TempDir(), "ledger.dat")

			entries, err := CreateBackup(hclog.NewNullLogger(), src, path, false, compressed, 3)
			require.NoError(t, err)
			assert.Equal(t, uint64(restoreBatchSize+12), entries)

			dst := kvdb.NewMemoryStorage()

			metadata, err := RestoreDB(hclog.NewNullLogger(), dst, path)
			require.NoError(t, err)

			assert.Equal(t, testGenesis, metadata.GenesisHash)
			assert.Equal(t, uint64(7), metadata.OperationCount)
			assert.Equal(t, dump(t, src), dump(t, dst))
		})
	}
}

func TestCreateBackup_Errors(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.dat")

	_, err := CreateBackup(hclog.NewNullLogger(), kvdb.NewMemoryStorage(), path, false, false, 0)
	assert.ErrorIs(t, err, ErrNoGenesis)

	require.NoError(t, os.WriteFile(path, []byte("existing"), 0600))

	_, err = CreateBackup(hclog.NewNullLogger(), newTestDB(t, 1), path, false, false, 0)
	assert.ErrorIs(t, err, os.ErrExist)

	_, err = CreateBackup(hclog.NewNullLogger(), newTestDB(t, 1), path, true, false, 0)
	assert.NoError(t, err)
}

func TestRestoreDB_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.dat")

	_, err := CreateBackup(hclog.NewNullLogger(), newTestDB(t, 3), path, false, true, 1)
	require.NoError(t, err)

	_, err = RestoreDB(hclog.NewNullLogger(), newTestDB(t, 0), path)
	assert.ErrorIs(t, err, ErrNotEmpty)

	_, err = RestoreDB(hclog.NewNullLogger(), kvdb.NewMemoryStorage(), filepath.Join(dir, "missing.dat"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	// an archive without the genesis marker cannot be trusted
	entry := &Entry{Key: []byte("k"), Value: []byte("v")}
	metadata := &Metadata{GenesisHash: testGenesis}
	forged := filepath.Join(dir, "forged.dat")

	require.NoError(t, os.WriteFile(forged, entry.MarshalRLPTo(metadata.MarshalRLP()), 0600))

	_, err = RestoreDB(hclog.NewNullLogger(), kvdb.NewMemoryStorage(), forged)
	assert.ErrorContains(t, err, "does not match")
}

func TestMetadata_RLP(t *testing.T) {
	t.Parallel()

	metadata := &Metadata{GenesisHash: testGenesis, OperationCount: 1 << 40}

	decoded := &Metadata{}
	require.NoError(t, decoded.UnmarshalRLP(metadata.MarshalRLP()))
	assert.Equal(t, metadata, decoded)

	assert.Error(t, decoded.UnmarshalRLP((&Entry{Key: []byte{1}, Value: []byte{2}}).MarshalRLPTo(nil)))
}
