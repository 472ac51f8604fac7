// Package schema implements attribute resolution: attributes are
// themselves entities, bootstrapped at well-known ids, and are resolved by
// ident or id through a cache in front of the store (spec §4.A).
package schema

import "github.com/wbrown/chronicle/fact"

// Well-known bootstrapped attribute ids (spec §7). Every database carries
// these from its first transaction.
const (
	AttrIdentID        uint64 = 1
	AttrCardinalityID  uint64 = 2
	AttrTypeID         uint64 = 3
	AttrDocID          uint64 = 4
	AttrUniqueID       uint64 = 5
	TxTimeID           uint64 = 6
)

const (
	AttrIdentIdent       = "db/attr/ident"
	AttrCardinalityIdent = "db/attr/cardinality"
	AttrTypeIdent        = "db/attr/type"
	AttrDocIdent         = "db/attr/doc"
	AttrUniqueIdent      = "db/attr/unique"
	TxTimeIdent          = "db/tx/time"
)

// Cardinality controls whether asserting a new value for an (entity,
// attribute) pair retracts the old one.
type Cardinality uint64

const (
	CardinalityOne Cardinality = iota
	CardinalityMany
)

func (c Cardinality) String() string {
	if c == CardinalityMany {
		return "many"
	}
	return "one"
}

// CardinalityFromU64 decodes a stored cardinality value, reporting ok=false
// for anything else.
func CardinalityFromU64(v uint64) (Cardinality, bool) {
	switch v {
	case uint64(CardinalityOne):
		return CardinalityOne, true
	case uint64(CardinalityMany):
		return CardinalityMany, true
	default:
		return 0, false
	}
}

// ValueTypeFromU64 decodes a stored value-type tag, reporting ok=false for
// anything outside fact.KindI64..fact.KindRef.
func ValueTypeFromU64(v uint64) (fact.Kind, bool) {
	k := fact.Kind(v)
	switch k {
	case fact.KindI64, fact.KindU64, fact.KindDecimal, fact.KindStr, fact.KindRef:
		return k, true
	default:
		return 0, false
	}
}

// Attribute is the resolved, typed view of an attribute entity: its ident,
// declared value type, cardinality, optional doc string, and uniqueness.
type Attribute struct {
	ID          uint64
	Ident       string
	ValueType   fact.Kind
	Cardinality Cardinality
	Doc         string
	Unique      bool
}

// AttributeBuilder accumulates the facts of an attribute entity as they are
// scanned from storage (in arbitrary order) and produces an Attribute once
// the required fields have been seen.
type AttributeBuilder struct {
	id             uint64
	ident          string
	hasIdent       bool
	valueType      fact.Kind
	hasType        bool
	cardinality    Cardinality
	hasCardinality bool
	doc            string
	unique         bool
}

// NewAttributeBuilder starts a builder for the attribute entity id.
func NewAttributeBuilder(id uint64) *AttributeBuilder {
	return &AttributeBuilder{id: id}
}

// Consume folds one fact of the attribute entity into the builder. Facts
// for attributes other than b's id are ignored.
func (b *AttributeBuilder) Consume(f fact.Fact) {
	if f.Entity != b.id {
		return
	}
	switch f.Attribute {
	case AttrIdentID:
		b.ident = f.Value.Str
		b.hasIdent = true
	case AttrTypeID:
		if k, ok := ValueTypeFromU64(f.Value.U64); ok {
			b.valueType = k
			b.hasType = true
		}
	case AttrCardinalityID:
		if c, ok := CardinalityFromU64(f.Value.U64); ok {
			b.cardinality = c
			b.hasCardinality = true
		}
	case AttrDocID:
		b.doc = f.Value.Str
	case AttrUniqueID:
		b.unique = f.Value.U64 != 0
	}
}

// Build returns the assembled Attribute, or ok=false if any of the
// mandatory ident/value-type/cardinality facts were never seen (spec §4.E
// step 3: "If any of type, cardinality, or ident are missing after
// aggregation, fail").
func (b *AttributeBuilder) Build() (Attribute, bool) {
	if !b.hasIdent || !b.hasType || !b.hasCardinality {
		return Attribute{}, false
	}
	return Attribute{
		ID:          b.id,
		Ident:       b.ident,
		ValueType:   b.valueType,
		Cardinality: b.cardinality,
		Doc:         b.doc,
		Unique:      b.unique,
	}, true
}

// Definition describes a new attribute to be created by the Transactor
// (spec's "Supplemented features": a declarative schema-definition helper,
// mirroring rustomic's Attribute builder, since spec.md leaves attribute
// creation as raw facts against the well-known ids).
type Definition struct {
	Ident       string
	ValueType   fact.Kind
	Cardinality Cardinality
	Doc         string
	Unique      bool
}

// NewDefinition starts a single-valued, non-unique, undocumented attribute
// definition.
func NewDefinition(ident string, valueType fact.Kind) Definition {
	return Definition{Ident: ident, ValueType: valueType, Cardinality: CardinalityOne}
}

func (d Definition) WithDoc(doc string) Definition {
	d.Doc = doc
	return d
}

func (d Definition) Many() Definition {
	d.Cardinality = CardinalityMany
	return d
}

func (d Definition) WithUnique() Definition {
	d.Unique = true
	return d
}

// Facts expands d into the raw facts that create it, entity being the
// temp-id or allocated id for the new attribute and tx the transaction id
// that will own them.
func (d Definition) Facts(entity, tx uint64) []fact.Fact {
	facts := []fact.Fact{
		fact.Assert(entity, AttrIdentID, d.Ident, tx),
		fact.Assert(entity, AttrTypeID, uint64(d.ValueType), tx),
		fact.Assert(entity, AttrCardinalityID, uint64(d.Cardinality), tx),
	}
	if d.Doc != "" {
		facts = append(facts, fact.Assert(entity, AttrDocID, d.Doc, tx))
	}
	if d.Unique {
		facts = append(facts, fact.Assert(entity, AttrUniqueID, uint64(1), tx))
	}
	return facts
}
