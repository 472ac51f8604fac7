// Package tx implements the schema-aware assertion/retraction pipeline: a
// Transaction of EntityOperations enters the Transactor, which resolves
// temp-ids and attribute idents, enforces cardinality and uniqueness, and
// emits the fact batch the Store writes (spec §4.I).
package tx

import "github.com/wbrown/chronicle/fact"

// EntityRef names the target of an EntityOperation: a brand new entity, an
// existing entity by id, or a temp-id that other operations of the same
// Transaction can refer to.
type EntityRef struct {
	isNew  bool
	id     uint64
	hasID  bool
	tempID string
}

// NewEntity allocates a fresh entity id for this operation.
func NewEntity() EntityRef { return EntityRef{isNew: true} }

// ExistingEntity targets an already-allocated entity.
func ExistingEntity(id uint64) EntityRef { return EntityRef{id: id, hasID: true} }

// TempEntity targets a temp-id, allocated a fresh entity id when the
// Transaction commits. Other operations in the same Transaction refer to
// it through a ref-typed attribute's value; naming the same tempID as the
// target of two operations fails with ErrDuplicateTempID.
func TempEntity(tempID string) EntityRef { return EntityRef{tempID: tempID} }

func (e EntityRef) tempid() (string, bool) {
	if !e.isNew && !e.hasID && e.tempID != "" {
		return e.tempID, true
	}
	return "", false
}

// AttributeValue pairs an attribute ident with the value to assert or
// retract (or, for a ref-typed attribute, a temp-id string to resolve to
// the entity it names), plus the fact.Op the Transactor should emit for it
// (spec §4.A: an attribute-operation carries `{attribute_ident,
// value_or_tempid, op}`).
type AttributeValue struct {
	Attribute string
	Value     any
	Op        fact.Op
}

// EntityOperation asserts or retracts a set of attribute values against one
// entity.
type EntityOperation struct {
	Entity     EntityRef
	Attributes []AttributeValue
}

// Op builds an EntityOperation over attrs against entity.
func Op(entity EntityRef, attrs ...AttributeValue) EntityOperation {
	return EntityOperation{Entity: entity, Attributes: attrs}
}

// Attr builds an attribute/value pair that asserts value for attribute.
func Attr(attribute string, value any) AttributeValue {
	return AttributeValue{Attribute: attribute, Value: value, Op: fact.OpAssert}
}

// AttrRetract builds an attribute/value pair that explicitly retracts value
// from attribute, rather than asserting it.
func AttrRetract(attribute string, value any) AttributeValue {
	return AttributeValue{Attribute: attribute, Value: value, Op: fact.OpRetract}
}

// Transaction is a batch of entity operations to commit atomically.
type Transaction struct {
	Operations []EntityOperation
}

// New returns a Transaction over ops.
func New(ops ...EntityOperation) Transaction {
	return Transaction{Operations: ops}
}

// Result is what a successful Transact call returns: the transaction
// entity's id, every fact it wrote (including the tx-time fact and any
// cardinality-One retractions), and the temp-id -> allocated-id mapping.
type Result struct {
	TxID    uint64
	TxData  []fact.Fact
	TempIDs map[string]uint64
}
