package format

import (
	"fmt"
	"strings"

	"github.com/arloliu/tally/errs"
)

// Column describes one data column of the text format.
//
// A column is either an outcome-count column ("plus count"), an
// outcome-frequency column ("plus frequency"), or the row-total column
// ("count total"). Total columns carry no outcome label.
type Column struct {
	// Label is the outcome label the column refers to. Empty for ColumnTotal.
	Label string
	// Kind selects how the column's values map onto counts.
	Kind ColumnKind
}

// CountColumn returns a count column for the given outcome label.
func CountColumn(label string) Column {
	return Column{Label: label, Kind: ColumnCount}
}

// FrequencyColumn returns a frequency column for the given outcome label.
func FrequencyColumn(label string) Column {
	return Column{Label: label, Kind: ColumnFrequency}
}

// TotalColumn returns the row-total column.
func TotalColumn() Column {
	return Column{Kind: ColumnTotal}
}

// String renders the column the way it appears in a "## Columns =" header.
func (c Column) String() string {
	switch c.Kind {
	case ColumnCount:
		return c.Label + " count"
	case ColumnFrequency:
		return c.Label + " frequency"
	case ColumnTotal:
		return "count total"
	default:
		return "unknown"
	}
}

// ParseColumn parses a single column descriptor as it appears in a
// "## Columns =" header, e.g. "plus count", "1 frequency", "count total".
//
// The final token selects the kind; everything before it is the outcome
// label. The exact phrase "count total" denotes the row-total column.
func ParseColumn(s string) (Column, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return Column{}, fmt.Errorf("%w: %q", errs.ErrColumnSyntax, s)
	}

	if len(fields) == 2 && fields[0] == "count" && fields[1] == "total" {
		return TotalColumn(), nil
	}

	label := strings.Join(fields[:len(fields)-1], " ")
	switch fields[len(fields)-1] {
	case "count":
		return CountColumn(label), nil
	case "frequency":
		return FrequencyColumn(label), nil
	default:
		return Column{}, fmt.Errorf("%w: %q", errs.ErrColumnSyntax, s)
	}
}

// CountColumns returns plain count columns for the given outcome labels,
// in order. It is the default column set when none is declared.
func CountColumns(labels []string) []Column {
	cols := make([]Column, 0, len(labels))
	for _, label := range labels {
		cols = append(cols, CountColumn(label))
	}

	return cols
}
