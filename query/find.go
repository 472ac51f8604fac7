package query

// findKind tags a Find entry as a plain output variable or an aggregate
// over the rows sharing the other output variables' values (spec §5.D).
type findKind uint8

const (
	findVariable findKind = iota
	findAggregate
)

// AggregateFn names an aggregation function applicable to a find variable.
// Count, Sum, and CountDistinct are the model's set; Min, Max, and Average
// are carried over from the reference implementation's aggregation module,
// which defines them alongside the rest even though the distilled
// specification only calls out the first three.
type AggregateFn uint8

const (
	AggCount AggregateFn = iota
	AggSum
	AggCountDistinct
	AggMin
	AggMax
	AggAverage
)

func (f AggregateFn) String() string {
	switch f {
	case AggCount:
		return "count"
	case AggSum:
		return "sum"
	case AggCountDistinct:
		return "count-distinct"
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	case AggAverage:
		return "avg"
	default:
		return "unknown"
	}
}

// Find is one entry of a query's find list: either a bare output variable
// or an aggregate function over a variable.
type Find struct {
	kind     findKind
	variable string
	fn       AggregateFn
}

// FindVar returns a plain output-variable find entry.
func FindVar(variable string) Find {
	return Find{kind: findVariable, variable: variable}
}

// FindCount returns a row-count aggregate; it has no source variable.
func FindCount() Find {
	return Find{kind: findAggregate, fn: AggCount}
}

// FindSum returns a sum-over-variable aggregate.
func FindSum(variable string) Find {
	return Find{kind: findAggregate, fn: AggSum, variable: variable}
}

// FindCountDistinct returns a distinct-value-count aggregate.
func FindCountDistinct(variable string) Find {
	return Find{kind: findAggregate, fn: AggCountDistinct, variable: variable}
}

// FindMin returns a minimum-over-variable aggregate.
func FindMin(variable string) Find {
	return Find{kind: findAggregate, fn: AggMin, variable: variable}
}

// FindMax returns a maximum-over-variable aggregate.
func FindMax(variable string) Find {
	return Find{kind: findAggregate, fn: AggMax, variable: variable}
}

// FindAverage returns an arithmetic-mean-over-variable aggregate.
func FindAverage(variable string) Find {
	return Find{kind: findAggregate, fn: AggAverage, variable: variable}
}

func (f Find) IsVariable() bool  { return f.kind == findVariable }
func (f Find) IsAggregate() bool { return f.kind == findAggregate }
func (f Find) Variable() string  { return f.variable }
func (f Find) Fn() AggregateFn   { return f.fn }
