package storage

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/wbrown/chronicle/codec"
	"github.com/wbrown/chronicle/fact"
)

// BadgerStore implements Store on top of BadgerDB. A fact's encoded key
// already carries every field needed to reconstruct it, so values are
// written empty; the KV pairs exist only to give Badger something to sort
// and iterate.
type BadgerStore struct {
	db *badger.DB
}

// Options tunes a BadgerStore for the store's read-heavy, append-only write
// pattern. DefaultOptions reproduces the values the teacher hardcodes in its
// own BadgerDB setup; callers that need different sizing (e.g. a
// memory-constrained deployment) can override individual fields.
type Options struct {
	MemTableSize   int64
	BlockCacheSize int64
	IndexCacheSize int64
	NumCompactors  int
	ValueThreshold int64
}

// DefaultOptions returns the tuned defaults.
func DefaultOptions() Options {
	return Options{
		MemTableSize:   128 << 20, // 128MB memtables (default 64MB)
		BlockCacheSize: 256 << 20, // 256MB block cache for faster reads
		IndexCacheSize: 100 << 20, // 100MB index cache
		NumCompactors:  4,
		ValueThreshold: 1 << 10, // keep empty values inline in the LSM tree
	}
}

// OpenBadgerStore opens (creating if necessary) a BadgerDB-backed store at
// path using DefaultOptions.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	return OpenBadgerStoreWithOptions(path, DefaultOptions())
}

// OpenBadgerStoreWithOptions opens a BadgerDB-backed store at path with a
// caller-supplied Options.
func OpenBadgerStoreWithOptions(path string, options Options) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	opts.MemTableSize = options.MemTableSize
	opts.BlockCacheSize = options.BlockCacheSize
	opts.IndexCacheSize = options.IndexCacheSize
	opts.DetectConflicts = false // facts are never overwritten in place
	opts.NumCompactors = options.NumCompactors
	opts.ValueThreshold = options.ValueThreshold

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Write(facts []fact.Fact) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, f := range facts {
			for _, idx := range [...]codec.Index{codec.EAVT, codec.AEVT, codec.AVET} {
				key := codec.EncodeKey(idx, f)
				if err := txn.Set(key, nil); err != nil {
					return fmt.Errorf("storage: write %v index: %w", idx, err)
				}
			}
		}
		return nil
	})
}

func (s *BadgerStore) Scan(index codec.Index, lower, upper []byte, restricts Restricts) (Iterator, error) {
	txn := s.db.NewTransaction(false)

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false // keys alone decode to a full Fact
	opts.PrefetchSize = 1000

	raw := &badgerRawIterator{txn: txn, it: txn.NewIterator(opts)}
	raw.Seek(lower)

	return newFilterIterator(raw, index, lower, upper, restricts), nil
}

func (s *BadgerStore) LatestEntityID() (uint64, error) {
	var maxEntity uint64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte{byte(codec.EAVT)}
		// In reverse mode Seek lands on the largest key <= target. Seeking
		// to the bare next-index tag byte lands on the last EAVT key,
		// since any real AEVT key is longer and so sorts after it.
		it.Seek(codec.NextPrefix(prefix))
		if it.ValidForPrefix(prefix) {
			key := it.Item().KeyCopy(nil)
			if f, err := codec.DecodeKey(codec.EAVT, key); err == nil {
				maxEntity = f.Entity
			}
		}
		return nil
	})
	return maxEntity, err
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// badgerRawIterator adapts *badger.Iterator to rawIterator.
type badgerRawIterator struct {
	txn *badger.Txn
	it  *badger.Iterator
}

func (b *badgerRawIterator) Seek(target []byte) { b.it.Seek(target) }
func (b *badgerRawIterator) Valid() bool        { return b.it.Valid() }
func (b *badgerRawIterator) Next()              { b.it.Next() }
func (b *badgerRawIterator) Key() []byte        { return b.it.Item().KeyCopy(nil) }
func (b *badgerRawIterator) Close() error {
	b.it.Close()
	b.txn.Discard()
	return nil
}
