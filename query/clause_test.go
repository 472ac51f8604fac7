package query

import (
	"reflect"
	"testing"

	"github.com/wbrown/chronicle/fact"
)

func TestClauseFreeVariables(t *testing.T) {
	c := NewClause().
		WithEntity(Var[uint64]("e")).
		WithAttribute(Var[AttributeIdent]("a")).
		WithValue(Var[fact.Value]("v"))

	got := c.FreeVariables()
	want := []string{"e", "a", "v"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestClauseConstantFieldsAreNotFree(t *testing.T) {
	c := NewClause().
		WithEntity(Const[uint64](1)).
		WithAttribute(Const(AttrID(2))).
		WithValue(Blank[fact.Value]())
	if len(c.FreeVariables()) != 0 {
		t.Fatalf("expected no free variables, got %v", c.FreeVariables())
	}
}

func TestPatternAccessors(t *testing.T) {
	p := Var[uint64]("x")
	if name, ok := p.Variable(); !ok || name != "x" {
		t.Fatalf("expected variable x, got %q %v", name, ok)
	}
	if _, ok := p.Constant(); ok {
		t.Fatalf("expected variable pattern not to report a constant")
	}

	c := Const(uint64(42))
	if v, ok := c.Constant(); !ok || v != 42 {
		t.Fatalf("expected constant 42, got %v %v", v, ok)
	}
}
