package query

import "github.com/wbrown/chronicle/fact"

// Query is a complete declarative query: the output specification, the
// where-clauses that produce candidate bindings, and any extra predicates
// that filter them (spec §5).
type Query struct {
	Find       []Find
	Clauses    []Clause
	Predicates []Predicate
}

// New returns an empty query.
func New() Query {
	return Query{}
}

func (q Query) WithFind(f Find) Query {
	q.Find = append(append([]Find{}, q.Find...), f)
	return q
}

func (q Query) Where(c Clause) Query {
	q.Clauses = append(append([]Clause{}, q.Clauses...), c)
	return q
}

func (q Query) Pred(p Predicate) Query {
	q.Predicates = append(append([]Predicate{}, q.Predicates...), p)
	return q
}

// ValuePred adds a predicate that rejects rows whose binding for variable
// fails check; unbound is treated as passing, matching how predicates over
// not-yet-assigned variables behave mid-resolution.
func (q Query) ValuePred(variable string, check func(fact.Value) bool) Query {
	return q.Pred(func(a PartialAssignment) bool {
		v, ok := a.Get(variable)
		if !ok {
			return true
		}
		return check(v)
	})
}

// FindVariables returns the plain (non-aggregate) variable names in Find.
func (q Query) FindVariables() []string {
	var vars []string
	for _, f := range q.Find {
		if f.IsVariable() {
			vars = append(vars, f.Variable())
		}
	}
	return vars
}

// HasAggregates reports whether any Find entry is an aggregate, which
// determines whether results run through the Aggregator or the plain
// Projector (spec §5.D).
func (q Query) HasAggregates() bool {
	for _, f := range q.Find {
		if f.IsAggregate() {
			return true
		}
	}
	return false
}
