package query

import "github.com/wbrown/chronicle/fact"

// PartialAssignment tracks variable bindings accumulated while the
// resolver walks a query's clauses: which variables are still unassigned,
// and the values assigned so far (spec §5.B). It is immutable from the
// caller's point of view — UpdateWith returns a new assignment, letting the
// backtracking resolver hold many divergent assignments (one per stack
// frame) without them aliasing each other's state.
type PartialAssignment struct {
	assigned   map[string]fact.Value
	unassigned map[string]struct{}
}

// NewPartialAssignment returns an assignment with every named variable
// unassigned.
func NewPartialAssignment(variables []string) PartialAssignment {
	unassigned := make(map[string]struct{}, len(variables))
	for _, v := range variables {
		unassigned[v] = struct{}{}
	}
	return PartialAssignment{
		assigned:   make(map[string]fact.Value, len(variables)),
		unassigned: unassigned,
	}
}

// AssignmentFromClauses collects every free variable across clauses into a
// fresh, fully-unassigned PartialAssignment.
func AssignmentFromClauses(clauses []Clause) PartialAssignment {
	var vars []string
	for _, c := range clauses {
		vars = append(vars, c.FreeVariables()...)
	}
	return NewPartialAssignment(vars)
}

// Get returns the value bound to variable, if any.
func (a PartialAssignment) Get(variable string) (fact.Value, bool) {
	v, ok := a.assigned[variable]
	return v, ok
}

// GetRef returns the value bound to variable as a uint64, accepting either
// a KindU64 or a KindRef binding. Entity/attribute/tx positions always bind
// as KindU64 (see UpdateWith), but a ref-typed attribute's value position
// binds as KindRef — and the same variable name can appear in both roles
// when a query joins across a reference (spec §5.A), so resolving such a
// join has to treat the two interchangeably.
func (a PartialAssignment) GetRef(variable string) (uint64, bool) {
	v, ok := a.assigned[variable]
	if !ok {
		return 0, false
	}
	switch v.Kind {
	case fact.KindU64:
		return v.U64, true
	case fact.KindRef:
		return v.Ref, true
	default:
		return 0, false
	}
}

// IsComplete reports whether every variable tracked by a has been assigned.
func (a PartialAssignment) IsComplete() bool {
	return len(a.unassigned) == 0
}

// clone returns a deep-enough copy for UpdateWith to mutate without
// aliasing the receiver's maps.
func (a PartialAssignment) clone() PartialAssignment {
	assigned := make(map[string]fact.Value, len(a.assigned)+1)
	for k, v := range a.assigned {
		assigned[k] = v
	}
	unassigned := make(map[string]struct{}, len(a.unassigned))
	for k := range a.unassigned {
		unassigned[k] = struct{}{}
	}
	return PartialAssignment{assigned: assigned, unassigned: unassigned}
}

func (a *PartialAssignment) assign(variable string, value fact.Value) {
	if _, ok := a.unassigned[variable]; !ok {
		return
	}
	delete(a.unassigned, variable)
	a.assigned[variable] = value
}

// UpdateWith folds a candidate fact matched against clause's pattern into a
// new assignment, binding whichever of clause's fields are variables.
func (a PartialAssignment) UpdateWith(clause Clause, f fact.Fact) PartialAssignment {
	next := a.clone()
	if v, ok := clause.Entity.Variable(); ok {
		next.assign(v, fact.U64(f.Entity))
	}
	if v, ok := clause.Attribute.Variable(); ok {
		next.assign(v, fact.U64(f.Attribute))
	}
	if v, ok := clause.Value.Variable(); ok {
		next.assign(v, f.Value)
	}
	if v, ok := clause.Tx.Variable(); ok {
		next.assign(v, fact.U64(f.Tx))
	}
	return next
}

// Complete returns the assignment's bindings as a plain map, for callers
// that have already checked IsComplete.
func (a PartialAssignment) Complete() map[string]fact.Value {
	out := make(map[string]fact.Value, len(a.assigned))
	for k, v := range a.assigned {
		out[k] = v
	}
	return out
}

// Predicate filters candidate assignments mid-resolution (spec §5.C): it
// may inspect any variable already bound and should treat an unbound
// variable as "not yet decided" rather than a failure.
type Predicate func(PartialAssignment) bool

// Satisfies reports whether every predicate in preds accepts a.
func (a PartialAssignment) Satisfies(preds []Predicate) bool {
	for _, p := range preds {
		if !p(a) {
			return false
		}
	}
	return true
}
