package kvdb

import (
	"sort"
	"strings"
	"sync"
)

// memoryKV is an in memory implementation of the kv storage
type memoryKV struct {
	lock sync.RWMutex
	db   map[string][]byte
}

// NewMemoryStorage returns an empty in memory storage
func NewMemoryStorage() KVBatchStorage {
	return &memoryKV{db: map[string][]byte{}}
}

func (m *memoryKV) Set(k, v []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.db[string(k)] = append([]byte(nil), v...)

	return nil
}

func (m *memoryKV) Delete(k []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.db, string(k))

	return nil
}

func (m *memoryKV) Get(k []byte) ([]byte, bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	v, ok := m.db[string(k)]
	if !ok {
		return nil, false, nil
	}

	return append([]byte(nil), v...), true, nil
}

func (m *memoryKV) Has(k []byte) (bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	_, ok := m.db[string(k)]

	return ok, nil
}

func (m *memoryKV) Close() error {
	return nil
}

func (m *memoryKV) NewBatch() Batch {
	return &memoryBatch{db: m}
}

// NewIterator takes a point in time copy of the matching entries
func (m *memoryKV) NewIterator(prefix []byte) Iterator {
	m.lock.RLock()
	defer m.lock.RUnlock()

	it := &memoryIterator{index: -1}

	for k, v := range m.db {
		if strings.HasPrefix(k, string(prefix)) {
			it.keys = append(it.keys, k)
			it.values = append(it.values, v)
		}
	}

	sort.Sort(it)

	return it
}

type memoryOp struct {
	key    string
	value  []byte
	delete bool
}

type memoryBatch struct {
	db  *memoryKV
	ops []memoryOp
}

func (b *memoryBatch) Set(k, v []byte) error {
	b.ops = append(b.ops, memoryOp{key: string(k), value: append([]byte(nil), v...)})

	return nil
}

func (b *memoryBatch) Delete(k []byte) error {
	b.ops = append(b.ops, memoryOp{key: string(k), delete: true})

	return nil
}

func (b *memoryBatch) Write() error {
	b.db.lock.Lock()
	defer b.db.lock.Unlock()

	for _, op := range b.ops {
		if op.delete {
			delete(b.db.db, op.key)
		} else {
			b.db.db[op.key] = op.value
		}
	}

	b.ops = nil

	return nil
}

type memoryIterator struct {
	keys   []string
	values [][]byte
	index  int
}

func (it *memoryIterator) Len() int { return len(it.keys) }

func (it *memoryIterator) Less(i, j int) bool { return it.keys[i] < it.keys[j] }

func (it *memoryIterator) Swap(i, j int) {
	it.keys[i], it.keys[j] = it.keys[j], it.keys[i]
	it.values[i], it.values[j] = it.values[j], it.values[i]
}

func (it *memoryIterator) Next() bool {
	if it.index >= len(it.keys) {
		return false
	}

	it.index++

	return it.index < len(it.keys)
}

func (it *memoryIterator) Key() []byte {
	if it.index < 0 || it.index >= len(it.keys) {
		return nil
	}

	return []byte(it.keys[it.index])
}

func (it *memoryIterator) Value() []byte {
	if it.index < 0 || it.index >= len(it.keys) {
		return nil
	}

	return it.values[it.index]
}

func (it *memoryIterator) Release() {
	it.keys, it.values = nil, nil
}

func (it *memoryIterator) Error() error {
	return nil
}
