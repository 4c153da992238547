package entity

import (
	"fmt"
	"sort"
	"time"

	"github.com/diillson/aws-cost-insights-go/internal/shared/types"
)

// Granularity values accepted by the Cost Explorer API.
const (
	GranularityDaily   = "DAILY"
	GranularityMonthly = "MONTHLY"
)

// Cost metrics accepted by the Cost Explorer API.
const (
	MetricAmortizedCost    = "AmortizedCost"
	MetricBlendedCost      = "BlendedCost"
	MetricNetAmortizedCost = "NetAmortizedCost"
	MetricNetUnblendedCost = "NetUnblendedCost"
	MetricUnblendedCost    = "UnblendedCost"
)

// ValidGranularity reports whether g is a granularity this engine supports.
func ValidGranularity(g string) bool {
	return g == GranularityDaily || g == GranularityMonthly
}

// ValidMetric reports whether m is a cost metric this engine supports.
func ValidMetric(m string) bool {
	switch m {
	case MetricAmortizedCost, MetricBlendedCost, MetricNetAmortizedCost,
		MetricNetUnblendedCost, MetricUnblendedCost:
		return true
	}
	return false
}

// Canonical dimension column names produced by the result transform.
const (
	ColumnService   = "Service"
	ColumnRegion    = "Region"
	ColumnUsageType = "UsageType"
	ColumnTag       = "Tag"
)

// CostRow is a single flat cost observation covering one time period. The
// dimension values are keyed by the table's column names; Cost is always the
// parsed metric amount.
type CostRow struct {
	StartDate  time.Time         `json:"start_date"`
	EndDate    time.Time         `json:"end_date"`
	Dimensions map[string]string `json:"dimensions"`
	Cost       float64           `json:"cost"`
}

// Dimension returns the row's value for a dimension column, or "" when absent.
func (r CostRow) Dimension(column string) string {
	return r.Dimensions[column]
}

// PeriodLabel returns the row's period start in ISO form, used as the pivot
// column label in reports.
func (r CostRow) PeriodLabel() string {
	return r.StartDate.Format(dateLayout)
}

// CostTable is an ordered collection of CostRows sharing one dimension-column
// schema. The schema is fixed at construction so an empty table still knows
// its columns, which keeps concatenation safe downstream.
type CostTable struct {
	Columns []string  `json:"columns"`
	Rows    []CostRow `json:"rows"`
}

// NewCostTable creates an empty table with the given dimension columns.
func NewCostTable(columns ...string) CostTable {
	return CostTable{Columns: append([]string{}, columns...)}
}

// Empty reports whether the table has no rows.
func (t CostTable) Empty() bool {
	return len(t.Rows) == 0
}

// Append adds rows to the table.
func (t *CostTable) Append(rows ...CostRow) {
	t.Rows = append(t.Rows, rows...)
}

// SameSchema reports whether two tables share an identical ordered column set.
func (t CostTable) SameSchema(other CostTable) bool {
	if len(t.Columns) != len(other.Columns) {
		return false
	}
	for i, c := range t.Columns {
		if other.Columns[i] != c {
			return false
		}
	}
	return true
}

// Concat appends another table's rows to a copy of this one. The schemas must
// be identical.
func (t CostTable) Concat(other CostTable) (CostTable, error) {
	if !t.SameSchema(other) {
		return CostTable{}, fmt.Errorf("%w: %v vs %v", types.ErrSchemaMismatch, t.Columns, other.Columns)
	}
	out := NewCostTable(t.Columns...)
	out.Rows = make([]CostRow, 0, len(t.Rows)+len(other.Rows))
	out.Rows = append(out.Rows, t.Rows...)
	out.Rows = append(out.Rows, other.Rows...)
	return out, nil
}

// RenameColumn renames a dimension column in the schema and in every row.
func (t *CostTable) RenameColumn(from, to string) {
	for i, c := range t.Columns {
		if c == from {
			t.Columns[i] = to
		}
	}
	for i := range t.Rows {
		if value, ok := t.Rows[i].Dimensions[from]; ok {
			delete(t.Rows[i].Dimensions, from)
			t.Rows[i].Dimensions[to] = value
		}
	}
}

// SetColumn attaches a constant-valued dimension column to every row, adding
// it to the schema when missing. Used by the fan-out planner to reattach the
// region consumed as a filter.
func (t *CostTable) SetColumn(column, value string) {
	present := false
	for _, c := range t.Columns {
		if c == column {
			present = true
			break
		}
	}
	if !present {
		t.Columns = append(t.Columns, column)
	}
	for i := range t.Rows {
		if t.Rows[i].Dimensions == nil {
			t.Rows[i].Dimensions = map[string]string{}
		}
		t.Rows[i].Dimensions[column] = value
	}
}

// PeriodLabels returns the sorted distinct period labels present in the table.
func (t CostTable) PeriodLabels() []string {
	seen := map[string]bool{}
	labels := []string{}
	for _, row := range t.Rows {
		label := row.PeriodLabel()
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}
