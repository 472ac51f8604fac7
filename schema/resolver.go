package schema

import (
	"fmt"
	"sync"

	"github.com/wbrown/chronicle/codec"
	"github.com/wbrown/chronicle/fact"
	"github.com/wbrown/chronicle/storage"
)

// ResolveError reports that an attribute ident or id could not be resolved.
type ResolveError struct {
	Ident string
	ID    uint64
	byID  bool
}

func (e *ResolveError) Error() string {
	if e.byID {
		return fmt.Sprintf("schema: no attribute with id %d", e.ID)
	}
	return fmt.Sprintf("schema: no attribute with ident %q", e.Ident)
}

// Resolver resolves attribute idents and ids to Attribute values, caching
// both positive and negative lookups behind an RWMutex so concurrent
// readers don't serialize on storage once an ident is known — or known
// absent (spec §4.A: resolution happens on every clause and every
// transacted fact, so it must not re-scan storage each time).
type Resolver struct {
	mu       sync.RWMutex
	byIdent  map[string]*Attribute // nil entry: looked up, ident does not exist
	byID     map[uint64]*Attribute
}

// NewResolver returns an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{
		byIdent: make(map[string]*Attribute),
		byID:    make(map[uint64]*Attribute),
	}
}

// ResolveIdent resolves ident against store as of basisTx, using the cache
// when possible.
func (r *Resolver) ResolveIdent(store storage.Store, ident string, basisTx uint64) (Attribute, error) {
	r.mu.RLock()
	if cached, ok := r.byIdent[ident]; ok {
		r.mu.RUnlock()
		if cached == nil {
			return Attribute{}, &ResolveError{Ident: ident}
		}
		return *cached, nil
	}
	r.mu.RUnlock()

	attr, found, err := findByIdent(store, ident, basisTx)
	if err != nil {
		return Attribute{}, err
	}

	r.mu.Lock()
	if found {
		r.byIdent[ident] = &attr
		r.byID[attr.ID] = &attr
	} else {
		r.byIdent[ident] = nil
	}
	r.mu.Unlock()

	if !found {
		return Attribute{}, &ResolveError{Ident: ident}
	}
	return attr, nil
}

// ResolveID resolves an attribute id against store as of basisTx, using the
// cache when possible.
func (r *Resolver) ResolveID(store storage.Store, id uint64, basisTx uint64) (Attribute, error) {
	r.mu.RLock()
	if cached, ok := r.byID[id]; ok {
		r.mu.RUnlock()
		if cached == nil {
			return Attribute{}, &ResolveError{ID: id, byID: true}
		}
		return *cached, nil
	}
	r.mu.RUnlock()

	attr, found, err := findByID(store, id, basisTx)
	if err != nil {
		return Attribute{}, err
	}

	r.mu.Lock()
	if found {
		r.byID[id] = &attr
		r.byIdent[attr.Ident] = &attr
	} else {
		r.byID[id] = nil
	}
	r.mu.Unlock()

	if !found {
		return Attribute{}, &ResolveError{ID: id, byID: true}
	}
	return attr, nil
}

func findByIdent(store storage.Store, ident string, basisTx uint64) (Attribute, bool, error) {
	restricts := storage.NewRestricts(basisTx).WithAttribute(AttrIdentID).WithValue(fact.Str(ident))
	lower := codec.EncodeKey(codec.AVET, fact.Assert(0, AttrIdentID, fact.Str(ident), 0))
	// AVET groups by (attribute, value): truncate to that prefix for the scan bound.
	n, err := codec.ValuePrefixLen(codec.AVET, lower)
	if err != nil {
		return Attribute{}, false, err
	}
	lower = lower[:n]
	upper := codec.NextPrefix(lower)

	it, err := store.Scan(codec.AVET, lower, upper, restricts)
	if err != nil {
		return Attribute{}, false, err
	}
	defer it.Close()

	if !it.Next() {
		return Attribute{}, false, it.Err()
	}
	return findByID(store, it.Fact().Entity, basisTx)
}

func findByID(store storage.Store, id uint64, basisTx uint64) (Attribute, bool, error) {
	restricts := storage.NewRestricts(basisTx).WithEntity(id)
	lower := codec.EncodeKey(codec.EAVT, fact.Assert(id, 0, fact.U64(0), 0))
	lower = lower[:1+8] // EAVT prefix through entity field only
	upper := codec.NextPrefix(lower)

	it, err := store.Scan(codec.EAVT, lower, upper, restricts)
	if err != nil {
		return Attribute{}, false, err
	}
	defer it.Close()

	builder := NewAttributeBuilder(id)
	for it.Next() {
		builder.Consume(it.Fact())
	}
	if err := it.Err(); err != nil {
		return Attribute{}, false, err
	}
	attr, ok := builder.Build()
	return attr, ok, nil
}
