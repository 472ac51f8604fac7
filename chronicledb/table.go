package chronicledb

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/wbrown/chronicle/fact"
)

// FormatTable renders rows as a markdown table headed by columns, the same
// shape the teacher's Relation.Table() produces for query-result display.
func FormatTable(columns []string, rows [][]fact.Value) string {
	if len(rows) == 0 {
		return fmt.Sprintf("_Columns: %v_\n\n_No rows_", columns)
	}

	out := &strings.Builder{}
	alignment := make([]tw.Align, len(columns))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(out,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(columns)

	for _, row := range rows {
		rendered := make([]string, len(row))
		for i, v := range row {
			rendered[i] = formatValue(v)
		}
		table.Append(rendered)
	}
	table.Render()

	fmt.Fprintf(out, "\n_%d rows_\n", len(rows))
	return out.String()
}

func formatValue(v fact.Value) string {
	switch v.Kind {
	case fact.KindI64:
		return fmt.Sprintf("%d", v.I64)
	case fact.KindU64:
		return fmt.Sprintf("%d", v.U64)
	case fact.KindDecimal:
		return fmt.Sprintf("%d/10^%d", v.Decimal.Unscaled, v.Decimal.Scale)
	case fact.KindStr:
		return v.Str
	case fact.KindRef:
		return fmt.Sprintf("#%d", v.Ref)
	default:
		return ""
	}
}
