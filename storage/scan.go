package storage

import (
	"encoding/binary"

	"github.com/wbrown/chronicle/codec"
	"github.com/wbrown/chronicle/fact"
)

// filterIterator wraps a rawIterator with the retraction-aware, visibility
// filtered traversal described in spec §4.C/§4.D.
//
// Keys within an index sort by (index fields..., !tx, op), so for a fixed
// (E,A,V)/(A,V,E) triple every tx/op version is contiguous and sorted with
// the newest transaction first. That means the first version of a triple
// the scan encounters is always either:
//
//   - invisible (its tx is > basisTx): an even newer write hasn't happened
//     "yet" as of this read, so the scan seeks to prefix+!basisTx, the first
//     version of the same triple with tx <= basisTx (a strict forward step,
//     since the current version's !tx is smaller than !basisTx);
//   - a visible retraction: the triple has no value as of basisTx;
//   - a visible assertion: this is the current value of the triple.
//
// In the last two cases there is nothing useful left to learn from the
// remaining, older versions of the same triple, so the scan seeks past the
// whole span in one step (via NextPrefix of the key truncated to the end of
// the value field) rather than walking each one. A "seek to prefix+!basisTx"
// key would not do here: when the visible version's tx is exactly basisTx,
// such a key can equal or precede the current key, looping the scan on the
// same entry forever. Skipping the full triple span is always a strict
// forward step.
//
// The scan ends at the upper bound, or at the first key of another index
// when the upper bound is nil.
type filterIterator struct {
	raw       rawIterator
	index     codec.Index
	upper     []byte
	restricts Restricts

	started bool
	current fact.Fact
	err     error
}

func newFilterIterator(raw rawIterator, index codec.Index, lower, upper []byte, restricts Restricts) *filterIterator {
	return &filterIterator{raw: raw, index: index, upper: upper, restricts: restricts}
}

func (it *filterIterator) Next() bool {
	if it.err != nil {
		return false
	}
	if !it.started {
		// Seek is invoked by the backend-specific Scan constructor before
		// wrapping; first call just needs raw positioned, which backends
		// guarantee by seeking to lower at open time.
		it.started = true
	} else {
		it.advancePastCurrentTriple()
	}

	for it.raw.Valid() {
		key := it.raw.Key()
		if it.upper != nil && compareBytes(key, it.upper) >= 0 {
			return false
		}
		if len(key) == 0 || codec.Index(key[0]) != it.index {
			return false
		}

		f, err := codec.DecodeKey(it.index, key)
		if err != nil {
			it.err = err
			return false
		}

		if f.Tx > it.restricts.Tx.Value() {
			// Not yet visible: this version doesn't exist as of basisTx.
			// Seek to the newest version of the same triple at or before it.
			n, err := codec.ValuePrefixLen(it.index, key)
			if err != nil {
				it.err = err
				return false
			}
			seek := append(make([]byte, 0, n+8), key[:n]...)
			it.raw.Seek(binary.BigEndian.AppendUint64(seek, ^it.restricts.Tx.Value()))
			continue
		}

		if f.Op == fact.OpRetract {
			// The most recent visible version of this triple is a
			// retraction: it currently holds no value.
			if !it.skipTriple(key) {
				return false
			}
			continue
		}

		// Most recent visible version is an assertion: this is the value.
		// The scan's byte range already narrows to the index fields fixed
		// by restricts, but a variable in a non-prefix position (e.g. an
		// unbound entity under a fixed attribute+value AVET scan's suffix)
		// needs this extra check.
		if !it.restricts.Test(f) {
			if !it.skipTriple(key) {
				return false
			}
			continue
		}

		it.current = f
		return true
	}
	return false
}

// skipTriple advances past every remaining tx/op version of the triple
// identified by key, returning false if doing so runs past the scan's upper
// bound or end of data.
func (it *filterIterator) skipTriple(key []byte) bool {
	n, err := codec.ValuePrefixLen(it.index, key)
	if err != nil {
		it.err = err
		return false
	}
	next := codec.NextPrefix(key[:n])
	if next == nil {
		return false
	}
	it.raw.Seek(next)
	return it.raw.Valid()
}

// advancePastCurrentTriple is called before resuming the scan after having
// returned an assertion from a prior Next: it skips the remainder of that
// triple's span the same way skipTriple does for invisible/retracted
// versions, since once the winning version of a triple is found there is
// nothing left to learn from its older siblings.
func (it *filterIterator) advancePastCurrentTriple() {
	key := codec.EncodeKey(it.index, it.current)
	it.skipTriple(key)
}

func (it *filterIterator) Fact() fact.Fact { return it.current }
func (it *filterIterator) Err() error      { return it.err }
func (it *filterIterator) Close() error    { return it.raw.Close() }

func compareBytes(a, b []byte) int {
	la, lb := len(a), len(b)
	for i := 0; i < la && i < lb; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case la < lb:
		return -1
	case la > lb:
		return 1
	default:
		return 0
	}
}
