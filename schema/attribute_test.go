package schema

import (
	"testing"

	"github.com/wbrown/chronicle/fact"
)

func TestAttributeBuilderRequiresIdentTypeAndCardinality(t *testing.T) {
	b := NewAttributeBuilder(100)
	if _, ok := b.Build(); ok {
		t.Fatalf("expected build to fail before ident/type/cardinality are consumed")
	}
	b.Consume(fact.Assert(100, AttrIdentID, "foo/bar", 1))
	if _, ok := b.Build(); ok {
		t.Fatalf("expected build to still fail without a type")
	}
	b.Consume(fact.Assert(100, AttrTypeID, uint64(fact.KindI64), 1))
	if _, ok := b.Build(); ok {
		t.Fatalf("expected build to still fail without a cardinality")
	}
	b.Consume(fact.Assert(100, AttrCardinalityID, uint64(CardinalityOne), 1))
	attr, ok := b.Build()
	if !ok {
		t.Fatalf("expected build to succeed")
	}
	if attr.Ident != "foo/bar" || attr.ValueType != fact.KindI64 || attr.Cardinality != CardinalityOne {
		t.Fatalf("unexpected attribute: %+v", attr)
	}
}

func TestAttributeBuilderIgnoresOtherEntities(t *testing.T) {
	b := NewAttributeBuilder(100)
	b.Consume(fact.Assert(200, AttrIdentID, "other", 1))
	if _, ok := b.Build(); ok {
		t.Fatalf("expected facts for a different entity to be ignored")
	}
}

func TestDefinitionFacts(t *testing.T) {
	def := NewDefinition("order/total", fact.KindDecimal).Many()
	facts := def.Facts(50, 7)

	b := NewAttributeBuilder(50)
	for _, f := range facts {
		b.Consume(f)
	}
	attr, ok := b.Build()
	if !ok {
		t.Fatalf("expected definition facts to build a complete attribute")
	}
	if attr.Cardinality != CardinalityMany || attr.ValueType != fact.KindDecimal {
		t.Fatalf("unexpected attribute: %+v", attr)
	}
}

func TestBootstrapIsSelfDescribing(t *testing.T) {
	facts := Bootstrap()
	b := NewAttributeBuilder(AttrIdentID)
	for _, f := range facts {
		b.Consume(f)
	}
	attr, ok := b.Build()
	if !ok || attr.Ident != AttrIdentIdent || !attr.Unique {
		t.Fatalf("expected db/attr/ident to describe itself, got %+v ok=%v", attr, ok)
	}
}
