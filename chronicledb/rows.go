package chronicledb

import (
	"github.com/wbrown/chronicle/fact"
	"github.com/wbrown/chronicle/resolver"
)

// Rows is a pull-style result stream: repeated Next/Row calls yield one
// output row per call until Next returns false (check Err to distinguish
// exhaustion from failure). Callers must call Close when done to release
// the underlying storage iterators.
type Rows interface {
	Next() bool
	Row() []fact.Value
	Err() error
	Close() error
}

// projectorRows adapts a lazy Projector, closing its backing Resolver too.
type projectorRows struct {
	p *resolver.Projector
	r *resolver.Resolver
}

func (p projectorRows) Next() bool        { return p.p.Next() }
func (p projectorRows) Row() []fact.Value { return p.p.Row() }
func (p projectorRows) Err() error        { return p.p.Err() }
func (p projectorRows) Close() error      { return p.r.Close() }

// aggregatorRows adapts an already-drained Aggregator; its backing Resolver
// was already closed by the time it's constructed.
type aggregatorRows struct {
	a *resolver.Aggregator
}

func (a aggregatorRows) Next() bool        { return a.a.Next() }
func (a aggregatorRows) Row() []fact.Value { return a.a.Row() }
func (a aggregatorRows) Err() error        { return a.a.Err() }
func (a aggregatorRows) Close() error      { return nil }
