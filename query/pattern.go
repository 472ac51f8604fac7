// Package query defines the declarative query types: patterns, clauses,
// find specifications, and the partial variable assignment the resolver
// builds up while matching clauses against storage (spec §5.A).
package query

// patternKind tags which variant of Pattern[T] is populated.
type patternKind uint8

const (
	patternBlank patternKind = iota
	patternVariable
	patternConstant
)

// Pattern is a clause field: either a bound Constant, a named Variable to
// be solved for, or Blank (matches anything, binds nothing). It is generic
// so the same type serves entity/tx (uint64), attribute (AttributeIdent),
// and value (fact.Value) clause positions with no boxing or type
// assertions at the call site — the one place this module diverges from
// its model's per-field concrete pattern types, justified by Go generics
// making the single-type version both safe and exactly as ergonomic.
type Pattern[T any] struct {
	kind     patternKind
	variable string
	constant T
}

// Var returns a variable pattern named name.
func Var[T any](name string) Pattern[T] {
	return Pattern[T]{kind: patternVariable, variable: name}
}

// Const returns a pattern bound to a fixed value.
func Const[T any](value T) Pattern[T] {
	return Pattern[T]{kind: patternConstant, constant: value}
}

// Blank returns a pattern that matches any value without binding it.
func Blank[T any]() Pattern[T] {
	return Pattern[T]{kind: patternBlank}
}

func (p Pattern[T]) IsVariable() bool { return p.kind == patternVariable }
func (p Pattern[T]) IsConstant() bool { return p.kind == patternConstant }
func (p Pattern[T]) IsBlank() bool    { return p.kind == patternBlank }

// Variable returns the pattern's variable name, if it is a Variable.
func (p Pattern[T]) Variable() (string, bool) {
	if p.kind != patternVariable {
		return "", false
	}
	return p.variable, true
}

// Constant returns the pattern's bound value, if it is a Constant.
func (p Pattern[T]) Constant() (T, bool) {
	if p.kind != patternConstant {
		var zero T
		return zero, false
	}
	return p.constant, true
}

// AttributeIdent identifies an attribute clause position either by its
// numeric id or by its human-readable ident string; exactly one is
// meaningful, selected by ByID.
type AttributeIdent struct {
	ByID  bool
	ID    uint64
	Ident string
}

// AttrID builds an attribute identifier bound by numeric id.
func AttrID(id uint64) AttributeIdent { return AttributeIdent{ByID: true, ID: id} }

// AttrName builds an attribute identifier bound by ident string, resolved
// against the schema at query time.
func AttrName(ident string) AttributeIdent { return AttributeIdent{Ident: ident} }
