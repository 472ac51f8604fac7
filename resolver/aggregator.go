package resolver

import (
	"github.com/wbrown/chronicle/codec"
	"github.com/wbrown/chronicle/fact"
	"github.com/wbrown/chronicle/query"
)

// aggregationKey is the encoded tuple of values bound to a query's
// non-aggregate find variables, used to group rows before applying
// aggregate functions (spec §5.D: "Count, Sum, and CountDistinct grouped
// by non-aggregate find-variable tuples"). Encoding with the order-
// preserving value codec gives Value, which isn't otherwise comparable
// across its variant payloads, a usable map key.
type aggregationKey string

func encodeKey(values []fact.Value) aggregationKey {
	var buf []byte
	for _, v := range values {
		buf = codec.EncodeValue(buf, v)
	}
	return aggregationKey(buf)
}

// aggregateState accumulates one Find aggregate's running result across
// every row sharing an aggregationKey.
type aggregateState struct {
	fn       query.AggregateFn
	variable string

	count    uint64
	sum      int64
	sumSet   bool
	min      int64
	minSet   bool
	max      int64
	maxSet   bool
	seen     map[string]struct{}
}

func newAggregateState(find query.Find) *aggregateState {
	return &aggregateState{fn: find.Fn(), variable: find.Variable(), seen: map[string]struct{}{}}
}

func (s *aggregateState) update(assignment query.PartialAssignment) {
	switch s.fn {
	case query.AggCount:
		s.count++
	case query.AggSum:
		if v, ok := assignment.Get(s.variable); ok {
			s.sum += v.I64
		}
	case query.AggCountDistinct:
		if v, ok := assignment.Get(s.variable); ok {
			s.seen[string(codec.EncodeValue(nil, v))] = struct{}{}
		}
	case query.AggMin:
		if v, ok := assignment.Get(s.variable); ok {
			if !s.minSet || v.I64 < s.min {
				s.min, s.minSet = v.I64, true
			}
		}
	case query.AggMax:
		if v, ok := assignment.Get(s.variable); ok {
			if !s.maxSet || v.I64 > s.max {
				s.max, s.maxSet = v.I64, true
			}
		}
	case query.AggAverage:
		if v, ok := assignment.Get(s.variable); ok {
			s.sum += v.I64
			s.count++
		}
	}
}

func (s *aggregateState) result() fact.Value {
	switch s.fn {
	case query.AggCount:
		return fact.U64(s.count)
	case query.AggSum:
		return fact.I64(s.sum)
	case query.AggCountDistinct:
		return fact.U64(uint64(len(s.seen)))
	case query.AggMin:
		return fact.I64(s.min)
	case query.AggMax:
		return fact.I64(s.max)
	case query.AggAverage:
		if s.count == 0 {
			return fact.I64(0)
		}
		return fact.I64(s.sum / int64(s.count))
	default:
		return fact.I64(0)
	}
}

// group holds the per-find-entry output row for one aggregationKey: the
// grouping variables' values verbatim, and one aggregateState per
// aggregate find entry, interleaved back into find-list order when read.
type group struct {
	variableValues []fact.Value
	aggregates     []*aggregateState
}

// Aggregator groups the rows a Results source produces by their
// non-aggregate find-variable bindings and reduces each group through its
// aggregate find entries, producing one output row per distinct group
// (spec §5.D).
type Aggregator struct {
	finds        []query.Find
	variableIdxs []int // index into finds of each plain variable entry, in finds order
	groupOrder   []aggregationKey
	groups       map[aggregationKey]*group
	err          error

	rows []row
	pos  int
}

type row struct {
	values []fact.Value
}

// NewAggregator drains results into grouped aggregate rows. Draining
// happens eagerly (not lazily like Resolver/Projector) because every
// group's final aggregate result depends on having seen every one of its
// rows.
func NewAggregator(finds []query.Find, results Results) (*Aggregator, error) {
	a := &Aggregator{finds: finds, groups: map[aggregationKey]*group{}}
	for i, f := range finds {
		if f.IsVariable() {
			a.variableIdxs = append(a.variableIdxs, i)
		}
	}

	for results.Next() {
		assignment := results.Assignment()
		values := make([]fact.Value, len(a.variableIdxs))
		for i, idx := range a.variableIdxs {
			v, ok := assignment.Get(finds[idx].Variable())
			if !ok {
				return nil, ErrInvalidFindVariable
			}
			values[i] = v
		}
		key := encodeKey(values)
		g, ok := a.groups[key]
		if !ok {
			g = &group{variableValues: values}
			for _, f := range finds {
				if f.IsAggregate() {
					g.aggregates = append(g.aggregates, newAggregateState(f))
				}
			}
			a.groups[key] = g
			a.groupOrder = append(a.groupOrder, key)
		}
		for _, agg := range g.aggregates {
			agg.update(assignment)
		}
	}
	if err := results.Err(); err != nil {
		return nil, err
	}

	a.rows = make([]row, 0, len(a.groupOrder))
	for _, key := range a.groupOrder {
		g := a.groups[key]
		values := make([]fact.Value, 0, len(finds))
		varIdx, aggIdx := 0, 0
		for _, f := range finds {
			if f.IsVariable() {
				values = append(values, g.variableValues[varIdx])
				varIdx++
			} else {
				values = append(values, g.aggregates[aggIdx].result())
				aggIdx++
			}
		}
		a.rows = append(a.rows, row{values: values})
	}
	a.pos = -1
	return a, nil
}

func (a *Aggregator) Next() bool {
	if a.pos+1 >= len(a.rows) {
		return false
	}
	a.pos++
	return true
}

func (a *Aggregator) Row() []fact.Value { return a.rows[a.pos].values }
func (a *Aggregator) Err() error        { return a.err }
