package kvdb

import (
	"github.com/hashicorp/go-hclog"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// Lower bounds for the read cache (MiB) and the open files cache
const (
	minLevelDBCache   = 16
	minLevelDBHandles = 16
)

// Defaults used by the server flags. Sizes are in MiB.
const (
	DefaultLevelDBCache               = 1024
	DefaultLevelDBHandles             = 512
	DefaultLevelDBBloomKeyBits        = 2048
	DefaultLevelDBCompactionTableSize = 4
	DefaultLevelDBCompactionTotalSize = 40
	DefaultLevelDBNoSync              = false
)

// LevelDBBuilder tunes and opens a leveldb backed KVBatchStorage
type LevelDBBuilder interface {
	SetCacheSize(int) LevelDBBuilder
	SetHandles(int) LevelDBBuilder
	SetBloomKeyBits(int) LevelDBBuilder
	SetCompactionTableSize(int) LevelDBBuilder
	SetCompactionTotalSize(int) LevelDBBuilder
	SetNoSync(bool) LevelDBBuilder
	Build() (KVBatchStorage, error)
}

type leveldbSettings struct {
	cacheMiB           int
	handles            int
	bloomKeyBits       int
	compactionTableMiB int
	compactionTotalMiB int
	noSync             bool
}

func (s leveldbSettings) options() *opt.Options {
	cache := s.cacheMiB
	if cache < minLevelDBCache {
		cache = minLevelDBCache
	}

	handles := s.handles
	if handles < minLevelDBHandles {
		handles = minLevelDBHandles
	}

	return &opt.Options{
		BlockCacheCapacity:            cache * opt.MiB,
		OpenFilesCacheCapacity:        handles,
		Filter:                        filter.NewBloomFilter(s.bloomKeyBits),
		CompactionTableSize:           s.compactionTableMiB * opt.MiB,
		CompactionTableSizeMultiplier: 1.1,
		CompactionTotalSize:           s.compactionTotalMiB * opt.MiB,
		WriteBuffer:                   2 * s.compactionTableMiB * opt.MiB,
		NoSync:                        s.noSync,
		// receipts and operations are a few hundred bytes each
		BlockSize:              256 * opt.KiB,
		FilterBaseLg:           19,
		DisableSeeksCompaction: true,
	}
}

type leveldbBuilder struct {
	logger   hclog.Logger
	path     string
	settings leveldbSettings
}

func (b *leveldbBuilder) SetCacheSize(mib int) LevelDBBuilder {
	b.settings.cacheMiB = mib

	return b
}

func (b *leveldbBuilder) SetHandles(handles int) LevelDBBuilder {
	b.settings.handles = handles

	return b
}

func (b *leveldbBuilder) SetBloomKeyBits(bits int) LevelDBBuilder {
	b.settings.bloomKeyBits = bits

	return b
}

func (b *leveldbBuilder) SetCompactionTableSize(mib int) LevelDBBuilder {
	b.settings.compactionTableMiB = mib

	return b
}

func (b *leveldbBuilder) SetCompactionTotalSize(mib int) LevelDBBuilder {
	b.settings.compactionTotalMiB = mib

	return b
}

func (b *leveldbBuilder) SetNoSync(noSync bool) LevelDBBuilder {
	b.settings.noSync = noSync

	return b
}

func (b *leveldbBuilder) Build() (KVBatchStorage, error) {
	options := b.settings.options()

	b.logger.Info("opening leveldb",
		"path", b.path,
		"cache_mib", options.BlockCacheCapacity/opt.MiB,
		"handles", options.OpenFilesCacheCapacity,
		"compaction_table_mib", b.settings.compactionTableMiB,
		"compaction_total_mib", b.settings.compactionTotalMiB,
		"no_sync", options.NoSync,
	)

	db, err := leveldb.OpenFile(b.path, options)
	if err != nil {
		return nil, err
	}

	return &levelDBKV{db: db}, nil
}

// NewLevelDBBuilder creates a builder for a leveldb storage at path,
// preloaded with the minimal cache and the default compaction settings
func NewLevelDBBuilder(logger hclog.Logger, path string) LevelDBBuilder {
	return &leveldbBuilder{
		logger: logger.Named("leveldb"),
		path:   path,
		settings: leveldbSettings{
			cacheMiB:           minLevelDBCache,
			handles:            minLevelDBHandles,
			bloomKeyBits:       DefaultLevelDBBloomKeyBits,
			compactionTableMiB: DefaultLevelDBCompactionTableSize,
			compactionTotalMiB: DefaultLevelDBCompactionTotalSize,
			noSync:             DefaultLevelDBNoSync,
		},
	}
}
