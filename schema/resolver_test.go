package schema

import (
	"testing"

	"github.com/wbrown/chronicle/fact"
	"github.com/wbrown/chronicle/storage"
)

func newBootstrappedStore(t *testing.T) *storage.MemStore {
	t.Helper()
	s := storage.NewMemStore()
	if err := s.Write(Bootstrap()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return s
}

func TestResolverResolvesWellKnownIdent(t *testing.T) {
	s := newBootstrappedStore(t)
	r := NewResolver()

	attr, err := r.ResolveIdent(s, AttrIdentIdent, 100)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if attr.ID != AttrIdentID || attr.ValueType != fact.KindStr {
		t.Fatalf("unexpected attribute: %+v", attr)
	}
}

func TestResolverResolvesByID(t *testing.T) {
	s := newBootstrappedStore(t)
	r := NewResolver()

	attr, err := r.ResolveID(s, AttrCardinalityID, 100)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if attr.Ident != AttrCardinalityIdent {
		t.Fatalf("unexpected ident: %+v", attr)
	}
}

func TestResolverCachesNegativeLookup(t *testing.T) {
	s := newBootstrappedStore(t)
	r := NewResolver()

	_, err := r.ResolveIdent(s, "does/not-exist", 100)
	if err == nil {
		t.Fatalf("expected error resolving unknown ident")
	}

	// Second call must hit the negative cache, not rescan storage; we can't
	// observe call counts through the Store interface directly, so this
	// just asserts repeatability of the miss.
	_, err = r.ResolveIdent(s, "does/not-exist", 100)
	if err == nil {
		t.Fatalf("expected repeated error resolving unknown ident")
	}
}

func TestResolverCustomAttribute(t *testing.T) {
	s := newBootstrappedStore(t)
	def := NewDefinition("person/name", fact.KindStr).WithDoc("a person's name").WithUnique()
	if err := s.Write(def.Facts(100, 1)); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewResolver()
	attr, err := r.ResolveIdent(s, "person/name", 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !attr.Unique || attr.Doc != "a person's name" || attr.Cardinality != CardinalityOne {
		t.Fatalf("unexpected attribute: %+v", attr)
	}
}

