package storage

import "github.com/wbrown/chronicle/fact"

// TxRestrict bounds which transaction ids a scanned fact's Tx must satisfy.
type TxRestrict struct {
	exact    bool
	value    uint64 // Exact: tx must equal value. AtMost: tx must be <= value.
}

// ExactTx restricts to a single transaction.
func ExactTx(tx uint64) TxRestrict { return TxRestrict{exact: true, value: tx} }

// AtMostTx restricts to the visible-as-of basis_tx (spec §2: bitemporal
// visibility means a fact is visible iff its tx is <= basis_tx).
func AtMostTx(basisTx uint64) TxRestrict { return TxRestrict{exact: false, value: basisTx} }

// Value returns the transaction id carried by the restriction, regardless
// of whether it is exact or a visibility ceiling.
func (r TxRestrict) Value() uint64 { return r.value }

func (r TxRestrict) test(tx uint64) bool {
	if r.exact {
		return tx == r.value
	}
	return tx <= r.value
}

// Restricts narrows a scan to facts matching fixed entity/attribute/value
// fields and a transaction bound. A nil pointer field means "any". It is
// built from a query clause plus the partial variable assignment bound so
// far (spec §5.B), and also doubles as the test predicate applied to every
// candidate fact the retraction-aware iterator surfaces.
type Restricts struct {
	Entity    *uint64
	Attribute *uint64
	Value     *fact.Value
	Tx        TxRestrict
}

// NewRestricts returns a Restricts bounded only by visibility as of basisTx.
func NewRestricts(basisTx uint64) Restricts {
	return Restricts{Tx: AtMostTx(basisTx)}
}

func (r Restricts) WithEntity(e uint64) Restricts {
	r.Entity = &e
	return r
}

func (r Restricts) WithAttribute(a uint64) Restricts {
	r.Attribute = &a
	return r
}

func (r Restricts) WithValue(v fact.Value) Restricts {
	r.Value = &v
	return r
}

func (r Restricts) WithTx(tx uint64) Restricts {
	r.Tx = ExactTx(tx)
	return r
}

// Test reports whether an asserted fact (the iterator never surfaces
// retracted facts past the visibility filter, see scan.go) satisfies every
// bound in r.
func (r Restricts) Test(f fact.Fact) bool {
	if f.Op != fact.OpAssert {
		return false
	}
	if r.Entity != nil && f.Entity != *r.Entity {
		return false
	}
	if r.Attribute != nil && f.Attribute != *r.Attribute {
		return false
	}
	if r.Value != nil && !f.Value.Equal(*r.Value) {
		return false
	}
	return r.Tx.test(f.Tx)
}
