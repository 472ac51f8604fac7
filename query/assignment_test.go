package query

import (
	"testing"

	"github.com/wbrown/chronicle/fact"
)

func TestAssignmentFromClauses(t *testing.T) {
	clause := NewClause().
		WithEntity(Var[uint64]("foo")).
		WithAttribute(Var[AttributeIdent]("bar")).
		WithValue(Var[fact.Value]("baz"))

	a := AssignmentFromClauses([]Clause{clause})
	if a.IsComplete() {
		t.Fatalf("expected incomplete assignment before any binding")
	}

	updated := a.UpdateWith(clause, fact.Assert(1, 2, int64(3), 4))
	if !updated.IsComplete() {
		t.Fatalf("expected complete assignment after binding all free variables")
	}
	entity, _ := updated.Get("foo")
	if entity.U64 != 1 {
		t.Fatalf("expected foo bound to entity 1, got %v", entity)
	}
	value, _ := updated.Get("baz")
	if value.I64 != 3 {
		t.Fatalf("expected baz bound to value 3, got %v", value)
	}
}

func TestAssignmentUpdateWithDoesNotMutateOriginal(t *testing.T) {
	clause := NewClause().WithEntity(Var[uint64]("e"))
	a := AssignmentFromClauses([]Clause{clause})
	_ = a.UpdateWith(clause, fact.Assert(1, 2, int64(3), 4))

	if _, ok := a.Get("e"); ok {
		t.Fatalf("expected original assignment to remain unbound")
	}
}

func TestAssignmentIgnoresUnknownVariable(t *testing.T) {
	a := NewPartialAssignment([]string{"e"})
	a.assign("not-tracked", fact.I64(1))
	if _, ok := a.Get("not-tracked"); ok {
		t.Fatalf("expected assign to no-op for an untracked variable")
	}
}

func TestPredicateSatisfies(t *testing.T) {
	clause := NewClause().WithValue(Var[fact.Value]("v"))
	a := AssignmentFromClauses([]Clause{clause}).UpdateWith(clause, fact.Assert(1, 1, int64(10), 1))

	positive := func(a PartialAssignment) bool {
		v, ok := a.Get("v")
		return !ok || v.I64 > 0
	}
	negative := func(a PartialAssignment) bool {
		v, ok := a.Get("v")
		return !ok || v.I64 < 0
	}
	if !a.Satisfies([]Predicate{positive}) {
		t.Fatalf("expected positive predicate to pass")
	}
	if a.Satisfies([]Predicate{negative}) {
		t.Fatalf("expected negative predicate to fail")
	}
}
