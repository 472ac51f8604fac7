package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wbrown/chronicle/fact"
	"github.com/wbrown/chronicle/query"
)

// rowsByTeam builds assignments for three rows split across two "team"
// groups, each carrying a "score" value for the aggregate find entries to
// reduce over.
func rowsByTeam(t *testing.T) []query.PartialAssignment {
	t.Helper()
	return []query.PartialAssignment{
		assignOf(t, map[string]fact.Value{"team": fact.Str("red"), "score": fact.I64(10)}),
		assignOf(t, map[string]fact.Value{"team": fact.Str("red"), "score": fact.I64(20)}),
		assignOf(t, map[string]fact.Value{"team": fact.Str("blue"), "score": fact.I64(5)}),
	}
}

func TestAggregatorGroupsByPlainVariable(t *testing.T) {
	finds := []query.Find{query.FindVar("team"), query.FindCount()}
	a, err := NewAggregator(finds, newStubResults(rowsByTeam(t)...))
	require.NoError(t, err)

	got := map[string]uint64{}
	for a.Next() {
		row := a.Row()
		got[row[0].Str] = row[1].U64
	}
	require.NoError(t, a.Err())
	require.Equal(t, map[string]uint64{"red": 2, "blue": 1}, got)
}

func TestAggregatorSumMinMaxAverage(t *testing.T) {
	finds := []query.Find{
		query.FindVar("team"),
		query.FindSum("score"),
		query.FindMin("score"),
		query.FindMax("score"),
		query.FindAverage("score"),
	}
	a, err := NewAggregator(finds, newStubResults(rowsByTeam(t)...))
	require.NoError(t, err)

	rows := map[string][]fact.Value{}
	for a.Next() {
		row := a.Row()
		rows[row[0].Str] = row[1:]
	}
	require.NoError(t, a.Err())

	red := rows["red"]
	require.Equal(t, int64(30), red[0].I64) // sum
	require.Equal(t, int64(10), red[1].I64) // min
	require.Equal(t, int64(20), red[2].I64) // max
	require.Equal(t, int64(15), red[3].I64) // average

	blue := rows["blue"]
	require.Equal(t, int64(5), blue[0].I64)
	require.Equal(t, int64(5), blue[1].I64)
	require.Equal(t, int64(5), blue[2].I64)
	require.Equal(t, int64(5), blue[3].I64)
}

func TestAggregatorCountDistinct(t *testing.T) {
	rows := []query.PartialAssignment{
		assignOf(t, map[string]fact.Value{"team": fact.Str("red"), "score": fact.I64(10)}),
		assignOf(t, map[string]fact.Value{"team": fact.Str("red"), "score": fact.I64(10)}),
		assignOf(t, map[string]fact.Value{"team": fact.Str("red"), "score": fact.I64(20)}),
	}
	finds := []query.Find{query.FindVar("team"), query.FindCountDistinct("score")}
	a, err := NewAggregator(finds, newStubResults(rows...))
	require.NoError(t, err)

	require.True(t, a.Next())
	row := a.Row()
	require.Equal(t, "red", row[0].Str)
	require.Equal(t, uint64(2), row[1].U64)
	require.False(t, a.Next())
	require.NoError(t, a.Err())
}

func TestAggregatorNoGroupingVariableProducesSingleRow(t *testing.T) {
	finds := []query.Find{query.FindCount()}
	a, err := NewAggregator(finds, newStubResults(rowsByTeam(t)...))
	require.NoError(t, err)

	require.True(t, a.Next())
	require.Equal(t, uint64(3), a.Row()[0].U64)
	require.False(t, a.Next())
}

func TestAggregatorReturnsErrInvalidFindVariable(t *testing.T) {
	finds := []query.Find{query.FindVar("missing")}
	_, err := NewAggregator(finds, newStubResults(rowsByTeam(t)...))
	require.ErrorIs(t, err, ErrInvalidFindVariable)
}
