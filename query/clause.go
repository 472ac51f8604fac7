package query

import "github.com/wbrown/chronicle/fact"

// Clause is one (entity, attribute, value, tx) data pattern in a query's
// where-clause list (spec §5.A).
type Clause struct {
	Entity    Pattern[uint64]
	Attribute Pattern[AttributeIdent]
	Value     Pattern[fact.Value]
	Tx        Pattern[uint64]
}

// NewClause returns an all-blank clause.
func NewClause() Clause {
	return Clause{}
}

func (c Clause) WithEntity(p Pattern[uint64]) Clause {
	c.Entity = p
	return c
}

func (c Clause) WithAttribute(p Pattern[AttributeIdent]) Clause {
	c.Attribute = p
	return c
}

func (c Clause) WithValue(p Pattern[fact.Value]) Clause {
	c.Value = p
	return c
}

func (c Clause) WithTx(p Pattern[uint64]) Clause {
	c.Tx = p
	return c
}

// FreeVariables returns the names of every variable position in c, in
// entity/attribute/value/tx order.
func (c Clause) FreeVariables() []string {
	vars := make([]string, 0, 4)
	if v, ok := c.Entity.Variable(); ok {
		vars = append(vars, v)
	}
	if v, ok := c.Attribute.Variable(); ok {
		vars = append(vars, v)
	}
	if v, ok := c.Value.Variable(); ok {
		vars = append(vars, v)
	}
	if v, ok := c.Tx.Variable(); ok {
		vars = append(vars, v)
	}
	return vars
}
