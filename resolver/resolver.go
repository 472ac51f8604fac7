// Package resolver executes a query's clauses against a store: a
// backtracking Resolver produces complete variable assignments, which a
// Projector or Aggregator then reduces to result rows (spec §5).
package resolver

import (
	"errors"

	"github.com/wbrown/chronicle/codec"
	"github.com/wbrown/chronicle/fact"
	"github.com/wbrown/chronicle/query"
	"github.com/wbrown/chronicle/schema"
	"github.com/wbrown/chronicle/storage"
)

// ErrInvalidFindVariable is returned when a query's find list names a
// variable no clause ever binds.
var ErrInvalidFindVariable = errors.New("resolver: find variable is never bound by a clause")

// frame is one level of the resolver's explicit backtracking stack: the
// clause index it is scanning, the assignment built by every shallower
// clause, and the still-open storage iterator positioned mid-scan for that
// clause. Recursion is avoided (a query with many clauses, or a clause
// whose candidate set is large, would otherwise grow the Go call stack
// unboundedly) in favor of this stack, with the iterator itself carried in
// each frame so backtracking resumes an outer clause's scan exactly where
// it left off instead of restarting it (spec §5.B).
type frame struct {
	clauseIndex int
	assignment  query.PartialAssignment
	it          storage.Iterator
}

// Resolver is a pull-style iterator over every complete PartialAssignment
// that satisfies a query's clauses and predicates.
type Resolver struct {
	store      storage.Store
	resolver   *schema.Resolver
	clauses    []query.Clause
	predicates []query.Predicate
	basisTx    uint64

	stack  []frame
	result query.PartialAssignment
	err    error
	closed bool
}

// New returns a Resolver over clauses, filtered by predicates, reading
// store as of basisTx. attrs resolves attribute idents appearing in
// clauses to ids.
func New(store storage.Store, attrs *schema.Resolver, clauses []query.Clause, predicates []query.Predicate, basisTx uint64) (*Resolver, error) {
	r := &Resolver{
		store:      store,
		resolver:   attrs,
		clauses:    clauses,
		predicates: predicates,
		basisTx:    basisTx,
	}
	if len(clauses) == 0 {
		return r, nil
	}
	first := frame{clauseIndex: 0, assignment: query.AssignmentFromClauses(clauses)}
	it, err := r.openIterator(first)
	if err != nil {
		return nil, err
	}
	first.it = it
	r.stack = append(r.stack, first)
	return r, nil
}

// Next advances to the next satisfying assignment, returning false when
// resolution is exhausted or an error occurred (check Err).
func (r *Resolver) Next() bool {
	for len(r.stack) > 0 {
		if r.err != nil {
			return false
		}
		top := &r.stack[len(r.stack)-1]

		if !top.it.Next() {
			if err := top.it.Err(); err != nil {
				r.err = err
				return false
			}
			top.it.Close()
			r.stack = r.stack[:len(r.stack)-1]
			continue
		}

		clause := r.clauses[top.clauseIndex]
		assignment := top.assignment.UpdateWith(clause, top.it.Fact())
		if !assignment.Satisfies(r.predicates) {
			continue
		}
		if assignment.IsComplete() {
			r.result = assignment
			return true
		}

		nextIndex := top.clauseIndex + 1
		if nextIndex >= len(r.clauses) {
			// Every clause has contributed a binding but the query's
			// assignment still tracks a variable no clause ever
			// constrained further (it was free from the start); nothing
			// more to resolve on this branch.
			r.result = assignment
			return true
		}

		child := frame{clauseIndex: nextIndex, assignment: assignment}
		it, err := r.openIterator(child)
		if err != nil {
			r.err = err
			return false
		}
		child.it = it
		r.stack = append(r.stack, child)
	}
	return false
}

// Assignment returns the most recently produced complete assignment.
func (r *Resolver) Assignment() query.PartialAssignment { return r.result }

func (r *Resolver) Err() error { return r.err }

// Close releases every iterator still open on the backtracking stack.
func (r *Resolver) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	var first error
	for _, f := range r.stack {
		if err := f.it.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (r *Resolver) openIterator(f frame) (storage.Iterator, error) {
	clause := r.clauses[f.clauseIndex]
	restricts, index, lower, upper, err := keyRangeFor(r.store, r.resolver, clause, f.assignment, r.basisTx)
	if err != nil {
		return nil, err
	}
	return r.store.Scan(index, lower, upper, restricts)
}

// keyRangeFor picks the most selective index for clause given what
// assignment already binds, and derives the scan's byte range and
// Restricts filter from it (spec §5.B).
func keyRangeFor(store storage.Store, attrs *schema.Resolver, clause query.Clause, assignment query.PartialAssignment, basisTx uint64) (storage.Restricts, codec.Index, []byte, []byte, error) {
	restricts := storage.NewRestricts(basisTx)

	entity, hasEntity := boundUint64(clause.Entity, assignment)
	if hasEntity {
		restricts = restricts.WithEntity(entity)
	}

	var attribute uint64
	hasAttribute := false
	if v, ok := clause.Attribute.Constant(); ok {
		id, err := resolveAttributeIdent(store, attrs, v, basisTx)
		if err != nil {
			return storage.Restricts{}, 0, nil, nil, err
		}
		attribute = id
		hasAttribute = true
	} else if v, ok := clause.Attribute.Variable(); ok {
		if bound, ok := assignment.GetRef(v); ok {
			attribute = bound
			hasAttribute = true
		}
	}
	if hasAttribute {
		restricts = restricts.WithAttribute(attribute)
	}

	var value fact.Value
	hasValue := false
	if v, ok := clause.Value.Constant(); ok {
		value = v
		hasValue = true
	} else if v, ok := clause.Value.Variable(); ok {
		if bound, ok := assignment.Get(v); ok {
			value = bound
			hasValue = true
		}
	}
	if hasValue {
		restricts = restricts.WithValue(value)
	}

	if tx, ok := clause.Tx.Constant(); ok {
		restricts = restricts.WithTx(tx)
	} else if v, ok := clause.Tx.Variable(); ok {
		if bound, ok := assignment.GetRef(v); ok {
			restricts = restricts.WithTx(bound)
		}
	}

	// Choose the index whose key prefix is most fully pinned down by what
	// we know: entity-first when the entity is known, attribute+value when
	// the value is known but the entity isn't, attribute-only otherwise.
	switch {
	case hasEntity:
		lower := codec.EncodeKey(codec.EAVT, fact.Assert(entity, 0, fact.U64(0), 0))[:9]
		if hasAttribute {
			lower = codec.EncodeKey(codec.EAVT, fact.Assert(entity, attribute, fact.U64(0), 0))[:17]
		}
		return restricts, codec.EAVT, lower, codec.NextPrefix(lower), nil
	case hasAttribute && hasValue:
		full := codec.EncodeKey(codec.AVET, fact.Assert(0, attribute, value, 0))
		n, err := codec.ValuePrefixLen(codec.AVET, full)
		if err != nil {
			return storage.Restricts{}, 0, nil, nil, err
		}
		lower := full[:n]
		return restricts, codec.AVET, lower, codec.NextPrefix(lower), nil
	case hasAttribute:
		lower := codec.EncodeKey(codec.AEVT, fact.Assert(0, attribute, fact.U64(0), 0))[:9]
		return restricts, codec.AEVT, lower, codec.NextPrefix(lower), nil
	default:
		// Nothing pins the scan down: fall back to a full EAVT scan.
		lower := []byte{byte(codec.EAVT)}
		return restricts, codec.EAVT, lower, codec.NextPrefix(lower), nil
	}
}

func boundUint64(p query.Pattern[uint64], assignment query.PartialAssignment) (uint64, bool) {
	if v, ok := p.Constant(); ok {
		return v, true
	}
	if v, ok := p.Variable(); ok {
		return assignment.GetRef(v)
	}
	return 0, false
}

func resolveAttributeIdent(store storage.Store, attrs *schema.Resolver, ident query.AttributeIdent, basisTx uint64) (uint64, error) {
	if ident.ByID {
		return ident.ID, nil
	}
	attr, err := attrs.ResolveIdent(store, ident.Ident, basisTx)
	if err != nil {
		return 0, err
	}
	return attr.ID, nil
}
