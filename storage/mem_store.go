package storage

import (
	"sync"

	"github.com/google/btree"

	"github.com/wbrown/chronicle/codec"
	"github.com/wbrown/chronicle/fact"
)

// keyItem adapts a raw key to btree.Item so MemStore can keep a single
// sorted set of encoded keys, mirroring the BTreeSet<Vec<u8>>-backed
// in-memory engine this design is grounded on.
type keyItem []byte

func (k keyItem) Less(than btree.Item) bool {
	return compareBytes(k, than.(keyItem)) < 0
}

// MemStore is an in-memory Store backed by a single B-tree of encoded keys.
// Because a key fully encodes its fact (entity/attribute/value/tx/op), no
// separate value storage is needed: the tree is, in effect, a sorted set
// shared by all three indexes.
type MemStore struct {
	mu   sync.RWMutex
	tree *btree.BTree
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{tree: btree.New(32)}
}

func (m *MemStore) Write(facts []fact.Fact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range facts {
		m.tree.ReplaceOrInsert(keyItem(codec.EncodeKey(codec.EAVT, f)))
		m.tree.ReplaceOrInsert(keyItem(codec.EncodeKey(codec.AEVT, f)))
		m.tree.ReplaceOrInsert(keyItem(codec.EncodeKey(codec.AVET, f)))
	}
	return nil
}

func (m *MemStore) Scan(index codec.Index, lower, upper []byte, restricts Restricts) (Iterator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Snapshot matching keys under the read lock; iteration proceeds
	// lock-free afterward, giving Scan's caller a consistent view even if
	// concurrent writes land later.
	var keys [][]byte
	m.tree.AscendGreaterOrEqual(keyItem(lower), func(i btree.Item) bool {
		k := []byte(i.(keyItem))
		if upper != nil && compareBytes(k, upper) >= 0 {
			return false
		}
		keys = append(keys, k)
		return true
	})

	raw := &sliceIterator{keys: keys, pos: -1}
	raw.Seek(lower)
	return newFilterIterator(raw, index, lower, upper, restricts), nil
}

func (m *MemStore) LatestEntityID() (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var maxEntity uint64
	m.tree.Ascend(func(i btree.Item) bool {
		k := []byte(i.(keyItem))
		if codec.Index(k[0]) != codec.EAVT {
			return true
		}
		f, err := codec.DecodeKey(codec.EAVT, k)
		if err != nil {
			return true
		}
		if f.Entity > maxEntity {
			maxEntity = f.Entity
		}
		return true
	})
	return maxEntity, nil
}

func (m *MemStore) Close() error { return nil }

// sliceIterator is the rawIterator over a pre-sorted, pre-filtered key
// snapshot used by MemStore.
type sliceIterator struct {
	keys [][]byte
	pos  int
}

func (s *sliceIterator) Seek(target []byte) {
	lo, hi := 0, len(s.keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if compareBytes(s.keys[mid], target) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	s.pos = lo - 1
	s.Next()
}

func (s *sliceIterator) Valid() bool { return s.pos >= 0 && s.pos < len(s.keys) }
func (s *sliceIterator) Next()       { s.pos++ }
func (s *sliceIterator) Key() []byte { return s.keys[s.pos] }
func (s *sliceIterator) Close() error { return nil }
