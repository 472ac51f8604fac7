package resolver

import (
	"github.com/wbrown/chronicle/fact"
	"github.com/wbrown/chronicle/query"
)

// Results is the minimal interface a Projector or Aggregator consumes: a
// pull-style source of complete assignments, matching what a Resolver (or
// a stub in tests) provides.
type Results interface {
	Next() bool
	Assignment() query.PartialAssignment
	Err() error
}

// Projector reduces each assignment a Results source produces down to the
// ordered row of values a plain (non-aggregate) query's find list names
// (spec §5.D).
type Projector struct {
	finds   []query.Find
	results Results
	row     []fact.Value
	err     error
}

// NewProjector returns a Projector over results, projecting each complete
// assignment onto finds in order.
func NewProjector(finds []query.Find, results Results) *Projector {
	return &Projector{finds: finds, results: results}
}

func (p *Projector) Next() bool {
	if p.err != nil {
		return false
	}
	if !p.results.Next() {
		if err := p.results.Err(); err != nil {
			p.err = err
		}
		return false
	}
	assignment := p.results.Assignment()
	row := make([]fact.Value, 0, len(p.finds))
	for _, f := range p.finds {
		if !f.IsVariable() {
			continue
		}
		v, ok := assignment.Get(f.Variable())
		if !ok {
			p.err = ErrInvalidFindVariable
			return false
		}
		row = append(row, v)
	}
	p.row = row
	return true
}

func (p *Projector) Row() []fact.Value { return p.row }
func (p *Projector) Err() error        { return p.err }
