package kvdb

import (
	"fmt"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestDB(t *testing.T) KVBatchStorage {
	t.Helper()

	db, err := NewLevelDBBuilder(
		hclog.NewNullLogger(),
		t.TempDir(),
	).Build()
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func testBackends(t *testing.T) map[string]KVBatchStorage {
	t.Helper()

	return map[string]KVBatchStorage{
		"leveldb": createTestDB(t),
		"memory":  NewMemoryStorage(),
	}
}

func TestKV_GetSetDelete(t *testing.T) {
	t.Parallel()

	for name, db := range testBackends(t) {
		var (
			key   = []byte("hello")
			value = []byte("world")
		)

		_, exists, err := db.Get(key)
		require.NoError(t, err, name)
		assert.False(t, exists, name)

		require.NoError(t, db.Set(key, value), name)

		v, exists, err := db.Get(key)
		require.NoError(t, err, name)
		assert.True(t, exists, name)
		assert.Equal(t, value, v, name)

		has, err := db.Has(key)
		require.NoError(t, err, name)
		assert.True(t, has, name)

		require.NoError(t, db.Delete(key), name)

		has, err = db.Has(key)
		require.NoError(t, err, name)
		assert.False(t, has, name)
	}
}

func TestKV_BatchWrite(t *testing.T) {
	t.Parallel()

	for name, db := range testBackends(t) {
		require.NoError(t, db.Set([]byte("stale"), []byte{0x1}), name)

		batch := db.NewBatch()

		for i := 0; i < 100; i++ {
			require.NoError(t, batch.Set([]byte(fmt.Sprintf("key-%03d", i)), []byte{byte(i)}), name)
		}

		require.NoError(t, batch.Delete([]byte("stale")), name)

		// nothing is visible before the write
		_, exists, err := db.Get([]byte("key-000"))
		require.NoError(t, err, name)
		assert.False(t, exists, name)

		require.NoError(t, batch.Write(), name)

		for i := 0; i < 100; i++ {
			v, exists, err := db.Get([]byte(fmt.Sprintf("key-%03d", i)))
			require.NoError(t, err, name)
			assert.True(t, exists, name)
			assert.Equal(t, []byte{byte(i)}, v, name)
		}

		_, exists, err = db.Get([]byte("stale"))
		require.NoError(t, err, name)
		assert.False(t, exists, name)
	}
}

func TestKV_PrefixIterator(t *testing.T) {
	t.Parallel()

	for name, db := range testBackends(t) {
		require.NoError(t, db.Set([]byte("b2"), []byte("2")), name)
		require.NoError(t, db.Set([]byte("a1"), []byte("x")), name)
		require.NoError(t, db.Set([]byte("b1"), []byte("1")), name)
		require.NoError(t, db.Set([]byte("c1"), []byte("y")), name)

		iter := db.NewIterator([]byte("b"))

		keys := []string{}
		values := []string{}

		for iter.Next() {
			keys = append(keys, string(iter.Key()))
			values = append(values, string(iter.Value()))
		}

		require.NoError(t, iter.Error(), name)
		iter.Release()

		assert.Equal(t, []string{"b1", "b2"}, keys, name)
		assert.Equal(t, []string{"1", "2"}, values, name)
	}
}

func TestLevelDBSettings_Bounds(t *testing.T) {
	t.Parallel()

	options := leveldbSettings{
		cacheMiB:           1,
		handles:            2,
		bloomKeyBits:       10,
		compactionTableMiB: 8,
		compactionTotalMiB: 64,
		noSync:             true,
	}.options()

	assert.Equal(t, minLevelDBCache*1024*1024, options.BlockCacheCapacity)
	assert.Equal(t, minLevelDBHandles, options.OpenFilesCacheCapacity)
	assert.Equal(t, 16*1024*1024, options.WriteBuffer)
	assert.Equal(t, 64*1024*1024, options.CompactionTotalSize)
	assert.True(t, options.NoSync)
}
