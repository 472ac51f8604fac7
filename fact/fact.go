package fact

import "fmt"

// Op is the assertion/retraction marker carried by every Fact.
type Op uint8

const (
	OpAssert Op = iota
	OpRetract
)

func (o Op) String() string {
	if o == OpRetract {
		return "retract"
	}
	return "assert"
}

// Fact is the immutable five-field record at the core of the store: an
// (entity, attribute, value, tx) triple plus the operation that produced it.
// Facts are never mutated after being written; "retraction" is a new Fact
// with Op == OpRetract (spec §3).
type Fact struct {
	Entity    uint64
	Attribute uint64
	Value     Value
	Tx        uint64
	Op        Op
}

// Assert builds an asserted Fact, coercing common Go primitives to Value.
func Assert(entity, attribute uint64, value any, tx uint64) Fact {
	return Fact{Entity: entity, Attribute: attribute, Value: coerce(value), Tx: tx, Op: OpAssert}
}

// Retract builds a retracted Fact, coercing common Go primitives to Value.
func Retract(entity, attribute uint64, value any, tx uint64) Fact {
	return Fact{Entity: entity, Attribute: attribute, Value: coerce(value), Tx: tx, Op: OpRetract}
}

func coerce(value any) Value {
	switch v := value.(type) {
	case Value:
		return v
	case int64:
		return I64(v)
	case int:
		return I64(int64(v))
	case uint64:
		return U64(v)
	case string:
		return Str(v)
	case Decimal:
		return Dec(v.Unscaled, v.Scale)
	default:
		panic(fmt.Sprintf("fact: cannot coerce %T to Value", value))
	}
}

// Equal reports whether two facts are identical in all five fields.
func (f Fact) Equal(o Fact) bool {
	return f.Entity == o.Entity &&
		f.Attribute == o.Attribute &&
		f.Value.Equal(o.Value) &&
		f.Tx == o.Tx &&
		f.Op == o.Op
}

// Compare gives a total order over facts by (entity, attribute, value, tx, op),
// all ascending. EAVT keys differ in that they place newer transactions of
// the same triple first.
func (f Fact) Compare(o Fact) int {
	if f.Entity != o.Entity {
		return cmpU64(f.Entity, o.Entity)
	}
	if f.Attribute != o.Attribute {
		return cmpU64(f.Attribute, o.Attribute)
	}
	if c := f.Value.Compare(o.Value); c != 0 {
		return c
	}
	if f.Tx != o.Tx {
		return cmpU64(f.Tx, o.Tx)
	}
	return int(f.Op) - int(o.Op)
}

func (f Fact) String() string {
	return fmt.Sprintf("(%d %d %s %d %s)", f.Entity, f.Attribute, f.Value, f.Tx, f.Op)
}
