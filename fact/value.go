// Package fact defines the value and fact types at the bottom of the store:
// the tagged Value union and the immutable Fact record built from it.
package fact

import "fmt"

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindI64 Kind = iota + 1
	KindU64
	KindDecimal
	KindStr
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindI64:
		return "i64"
	case KindU64:
		return "u64"
	case KindDecimal:
		return "decimal"
	case KindStr:
		return "str"
	case KindRef:
		return "ref"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Decimal is a fixed-precision decimal: unscaled * 10^-Scale.
type Decimal struct {
	Unscaled int64
	Scale    uint8
}

// Value is a closed tagged union over the payload types the store can hold.
// Only the field matching Kind is meaningful.
type Value struct {
	Kind    Kind
	I64     int64
	U64     uint64
	Decimal Decimal
	Str     string
	Ref     uint64
}

func I64(v int64) Value     { return Value{Kind: KindI64, I64: v} }
func U64(v uint64) Value    { return Value{Kind: KindU64, U64: v} }
func Str(v string) Value    { return Value{Kind: KindStr, Str: v} }
func RefVal(v uint64) Value { return Value{Kind: KindRef, Ref: v} }
func Dec(unscaled int64, scale uint8) Value {
	return Value{Kind: KindDecimal, Decimal: Decimal{Unscaled: unscaled, Scale: scale}}
}

// MatchesType reports whether the value's kind is exactly t. Used by the
// Transactor to validate an asserted value against its attribute's declared
// type (spec §4.A).
func (v Value) MatchesType(t Kind) bool {
	return v.Kind == t
}

// Equal reports structural equality.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindI64:
		return v.I64 == o.I64
	case KindU64:
		return v.U64 == o.U64
	case KindDecimal:
		return v.Decimal == o.Decimal
	case KindStr:
		return v.Str == o.Str
	case KindRef:
		return v.Ref == o.Ref
	default:
		return false
	}
}

// Compare gives a total order over Values: first by Kind, then by payload.
// The byte codec preserves this order for every kind except strings, whose
// encodings order by length first (spec §4.B).
func (v Value) Compare(o Value) int {
	if v.Kind != o.Kind {
		if v.Kind < o.Kind {
			return -1
		}
		return 1
	}
	switch v.Kind {
	case KindI64:
		return cmpI64(v.I64, o.I64)
	case KindU64:
		return cmpU64(v.U64, o.U64)
	case KindDecimal:
		if v.Decimal.Scale != o.Decimal.Scale {
			return cmpU64(uint64(v.Decimal.Scale), uint64(o.Decimal.Scale))
		}
		return cmpI64(v.Decimal.Unscaled, o.Decimal.Unscaled)
	case KindStr:
		if v.Str < o.Str {
			return -1
		} else if v.Str > o.Str {
			return 1
		}
		return 0
	case KindRef:
		return cmpU64(v.Ref, o.Ref)
	default:
		return 0
	}
}

func cmpI64(a, b int64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func cmpU64(a, b uint64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

// Size returns the on-disk size of the value's codec encoding, without
// serializing it (spec §4.A).
func (v Value) Size() int {
	const tag = 1
	switch v.Kind {
	case KindI64, KindU64, KindRef:
		return tag + 8
	case KindDecimal:
		return tag + 16
	case KindStr:
		return tag + 2 + len(v.Str)
	default:
		return tag
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindI64:
		return fmt.Sprintf("%d", v.I64)
	case KindU64:
		return fmt.Sprintf("%d", v.U64)
	case KindDecimal:
		return fmt.Sprintf("%d/10^%d", v.Decimal.Unscaled, v.Decimal.Scale)
	case KindStr:
		return fmt.Sprintf("%q", v.Str)
	case KindRef:
		return fmt.Sprintf("#%d", v.Ref)
	default:
		return "<invalid>"
	}
}
