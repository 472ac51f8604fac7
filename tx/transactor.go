package tx

import (
	"sync"

	"github.com/wbrown/chronicle/clock"
	"github.com/wbrown/chronicle/codec"
	"github.com/wbrown/chronicle/fact"
	"github.com/wbrown/chronicle/schema"
	"github.com/wbrown/chronicle/storage"
)

// Transactor runs the five-step commit pipeline of spec §4.I: temp-id
// allocation, fact generation (with attribute resolution and type
// coercion), cardinality-One retraction of superseded values, uniqueness
// enforcement, and an atomic write. Commits are serialized by a single
// mutex, mirroring the teacher's single-writer discipline around shared
// mutable transaction state.
type Transactor struct {
	mu         sync.Mutex
	store      storage.Store
	attrs      *schema.Resolver
	clock      clock.Clock
	nextEntity uint64
}

// NewTransactor returns a Transactor writing to store, resolving attributes
// through attrs, and stamping transactions with c.
func NewTransactor(store storage.Store, attrs *schema.Resolver, c clock.Clock) (*Transactor, error) {
	latest, err := store.LatestEntityID()
	if err != nil {
		return nil, err
	}
	floor := latest
	if floor < schema.TxTimeID {
		floor = schema.TxTimeID // never allocate below the bootstrapped well-known ids
	}
	return &Transactor{store: store, attrs: attrs, clock: c, nextEntity: floor + 1}, nil
}

func (t *Transactor) allocate() uint64 {
	id := t.nextEntity
	t.nextEntity++
	return id
}

// Transact commits transaction, returning the written facts and temp-id
// mapping, or an error and zero writes if any step fails (spec §4.I: "any
// error above yields zero writes").
func (t *Transactor) Transact(transaction Transaction) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	lastTx := t.nextEntity - 1

	tempIDs, err := t.generateTempIDs(transaction)
	if err != nil {
		return Result{}, err
	}

	datoms, txID, err := t.transactionFacts(transaction, tempIDs, lastTx)
	if err != nil {
		return Result{}, err
	}

	if err := t.store.Write(datoms); err != nil {
		return Result{}, err
	}

	return Result{TxID: txID, TxData: datoms, TempIDs: tempIDs}, nil
}

// generateTempIDs walks every operation, allocating one entity id per
// distinct temp-id the Transaction names (step 1).
func (t *Transactor) generateTempIDs(transaction Transaction) (map[string]uint64, error) {
	tempIDs := make(map[string]uint64)
	for _, op := range transaction.Operations {
		id, ok := op.Entity.tempid()
		if !ok {
			continue
		}
		if _, exists := tempIDs[id]; exists {
			return nil, &DuplicateTempIDError{TempID: id}
		}
		tempIDs[id] = t.allocate()
	}
	return tempIDs, nil
}

// transactionFacts resolves every operation to facts sharing one new
// transaction entity, performing steps 2-4 (fact generation, cardinality-One
// retraction, uniqueness enforcement) along the way.
func (t *Transactor) transactionFacts(transaction Transaction, tempIDs map[string]uint64, lastTx uint64) ([]fact.Fact, uint64, error) {
	txID := t.allocate()
	txTime := t.clock.Now()
	datoms := []fact.Fact{fact.Assert(txID, schema.TxTimeID, txTime.Millis(), txID)}

	for _, op := range transaction.Operations {
		entity, err := t.resolveEntity(op.Entity, tempIDs)
		if err != nil {
			return nil, 0, err
		}

		var cardinalityOneAttrs []uint64
		for _, av := range op.Attributes {
			attr, err := t.attrs.ResolveIdent(t.store, av.Attribute, lastTx)
			if err != nil {
				return nil, 0, err
			}

			value, err := t.coerceValue(av.Value, attr, tempIDs)
			if err != nil {
				return nil, 0, err
			}
			if !value.MatchesType(attr.ValueType) {
				return nil, 0, &InvalidAttributeTypeError{Attribute: attr.Ident}
			}

			if av.Op == fact.OpRetract {
				datoms = append(datoms, fact.Retract(entity, attr.ID, value, txID))
				continue
			}

			if attr.Unique {
				if owner, conflicts, err := t.findUniqueConflict(attr.ID, value, entity, lastTx); err != nil {
					return nil, 0, err
				} else if conflicts {
					return nil, 0, &DuplicateUniqueValueError{Attribute: attr.Ident, ExistingOwner: owner}
				}
			}

			datoms = append(datoms, fact.Assert(entity, attr.ID, value, txID))
			if attr.Cardinality == schema.CardinalityOne {
				cardinalityOneAttrs = append(cardinalityOneAttrs, attr.ID)
			}
		}

		if !op.Entity.isNew {
			// A New entity is allocated fresh by this very operation and so
			// cannot already hold a prior value; only New skips the scan,
			// an existing id or a temp-id target still gets it (spec §4.I
			// step 3).
			for _, attrID := range cardinalityOneAttrs {
				retracted, err := t.retractSupersededValues(entity, attrID, lastTx, txID, datoms)
				if err != nil {
					return nil, 0, err
				}
				datoms = append(datoms, retracted...)
			}
		}
	}

	return datoms, txID, nil
}

func (t *Transactor) resolveEntity(ref EntityRef, tempIDs map[string]uint64) (uint64, error) {
	if ref.isNew {
		return t.allocate(), nil
	}
	if ref.hasID {
		return ref.id, nil
	}
	id, ok := tempIDs[ref.tempID]
	if !ok {
		return 0, &TempIDNotFoundError{TempID: ref.tempID}
	}
	return id, nil
}

// coerceValue turns a raw Go value into a fact.Value, substituting a
// temp-id string with its allocated entity id when the attribute is
// ref-typed (spec §4.I step 2).
func (t *Transactor) coerceValue(raw any, attr schema.Attribute, tempIDs map[string]uint64) (fact.Value, error) {
	if s, ok := raw.(string); ok && attr.ValueType == fact.KindRef {
		if id, ok := tempIDs[s]; ok {
			return fact.RefVal(id), nil
		}
		return fact.Value{}, &TempIDNotFoundError{TempID: s}
	}
	if v, ok := raw.(fact.Value); ok {
		return v, nil
	}
	return coercePrimitive(raw), nil
}

func coercePrimitive(raw any) fact.Value {
	switch v := raw.(type) {
	case int64:
		return fact.I64(v)
	case int:
		return fact.I64(int64(v))
	case uint64:
		return fact.U64(v)
	case string:
		return fact.Str(v)
	case fact.Decimal:
		return fact.Dec(v.Unscaled, v.Scale)
	default:
		return fact.Value{}
	}
}

// retractSupersededValues scans for every visible (entity, attribute, *)
// fact as of lastTx and emits a Retract for each value not already about to
// be (re)asserted by this same transaction (spec §4.I step 3). Skipped
// entirely for a New entity, which by construction has no prior facts.
func (t *Transactor) retractSupersededValues(entity, attribute, lastTx, txID uint64, pending []fact.Fact) ([]fact.Fact, error) {
	newValue, hasNewValue := latestAssertedValue(pending, entity, attribute, txID)

	restricts := storage.NewRestricts(lastTx).WithEntity(entity).WithAttribute(attribute)
	lower := codec.EncodeKey(codec.EAVT, fact.Assert(entity, attribute, fact.U64(0), 0))[:17]
	upper := codec.NextPrefix(lower)

	it, err := t.store.Scan(codec.EAVT, lower, upper, restricts)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var retractions []fact.Fact
	for it.Next() {
		old := it.Fact()
		if hasNewValue && old.Value.Equal(newValue) {
			continue
		}
		retractions = append(retractions, fact.Retract(entity, attribute, old.Value, txID))
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return retractions, nil
}

// latestAssertedValue finds the value this transaction itself just asserted
// for (entity, attribute), so retractSupersededValues doesn't immediately
// retract the value it was just asked to set.
func latestAssertedValue(pending []fact.Fact, entity, attribute, txID uint64) (fact.Value, bool) {
	for i := len(pending) - 1; i >= 0; i-- {
		f := pending[i]
		if f.Tx == txID && f.Entity == entity && f.Attribute == attribute && f.Op == fact.OpAssert {
			return f.Value, true
		}
	}
	return fact.Value{}, false
}

// findUniqueConflict scans for a visible (*, attribute, value) fact owned by
// an entity other than entity (spec §4.I step 4).
func (t *Transactor) findUniqueConflict(attribute uint64, value fact.Value, entity, lastTx uint64) (uint64, bool, error) {
	restricts := storage.NewRestricts(lastTx).WithAttribute(attribute).WithValue(value)
	full := codec.EncodeKey(codec.AVET, fact.Assert(0, attribute, value, 0))
	n, err := codec.ValuePrefixLen(codec.AVET, full)
	if err != nil {
		return 0, false, err
	}
	lower := full[:n]
	upper := codec.NextPrefix(lower)

	it, err := t.store.Scan(codec.AVET, lower, upper, restricts)
	if err != nil {
		return 0, false, err
	}
	defer it.Close()

	for it.Next() {
		owner := it.Fact().Entity
		if owner != entity {
			return owner, true, nil
		}
	}
	if err := it.Err(); err != nil {
		return 0, false, err
	}
	return 0, false, nil
}
