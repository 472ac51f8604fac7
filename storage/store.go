// Package storage implements the covering-index byte store: the Store
// interface, its BadgerDB-backed and in-memory implementations, and the
// retraction-aware forward scan shared by both (spec §4, §6).
package storage

import (
	"github.com/wbrown/chronicle/codec"
	"github.com/wbrown/chronicle/fact"
)

// Store is the durable or in-memory backing for all three covering indexes.
// A single Fact write fans out to EAVT, AEVT, and AVET keys; a Fact is never
// deleted once written, including retractions, which are written as new
// facts with Op == OpRetract (spec §3, §4.D).
type Store interface {
	// Write appends facts to every index in a single atomic batch.
	Write(facts []fact.Fact) error

	// Scan returns a retraction-aware, visibility-filtered iterator over the
	// half-open byte range [lower, upper) of the given index. A nil upper
	// means unbounded within the index. Only the most recent visible (per restricts.Tx)
	// version of each (E,A,V)/(A,V,E) triple in range is surfaced, it must
	// be an assertion rather than a retraction, and it must satisfy every
	// other bound restricts carries (for clause fields the byte range
	// doesn't already pin down).
	Scan(index codec.Index, lower, upper []byte, restricts Restricts) (Iterator, error)

	// LatestEntityID returns the highest entity id assigned so far, or 0 if
	// the store is empty. Used by the Transactor to allocate fresh entity
	// ids (spec §4.E).
	LatestEntityID() (uint64, error)

	Close() error
}

// Iterator yields facts in ascending key order for the index it was opened
// against.
type Iterator interface {
	// Next advances to the next surfaced fact, returning false at end of
	// range or on error (check Err to distinguish the two).
	Next() bool
	Fact() fact.Fact
	Err() error
	Close() error
}

// rawIterator is the minimal byte-level cursor a backend must provide; the
// retraction-aware skip logic in scan.go is implemented once, on top of
// this, and shared by every Store implementation.
type rawIterator interface {
	// Seek repositions the cursor at the first key >= target. Seeking to a
	// key derived from the cursor's current key (truncated after the value
	// field) is how the filtering iterator skips ahead within or past an
	// (E,A,V)/(A,V,E) span in one step instead of walking it entry by entry.
	Seek(target []byte)
	Valid() bool
	Next()
	Key() []byte
	Close() error
}
