package entity

// ReportSelector controls which pivot rows a cost report keeps individually.
// TopN > 0 keeps each period's top N entities (unioned across periods);
// Names keeps an explicit allow-list. When both are zero-valued every entity
// is kept.
type ReportSelector struct {
	TopN  int
	Names []string
}

// SelectAll reports whether the selector keeps every entity.
func (s ReportSelector) SelectAll() bool {
	return s.TopN <= 0 && len(s.Names) == 0
}

// ReportRow is one entity row of a pivoted cost report, with one cost per
// period column.
type ReportRow struct {
	Label string    `json:"label"`
	Costs []float64 `json:"costs"`
}

// CostReport is a pivoted period-by-entity cost matrix for presentation.
// Periods are the column labels (ISO period start dates, ascending); each
// row carries exactly len(Periods) costs.
type CostReport struct {
	Periods []string    `json:"periods"`
	Rows    []ReportRow `json:"rows"`
}

// Empty reports whether the report has no rows.
func (r CostReport) Empty() bool {
	return len(r.Rows) == 0
}

// OtherRowLabel is the label of the synthesized remainder row in reports and
// of the fallback category in usage categorization.
const OtherRowLabel = "Other"

// TotalRowLabel is the label of the single row in the totals table.
const TotalRowLabel = "Total"

// CategorizedRow is a CostRow tagged with a semantic category and subtype by
// a service classifier. Source is the row's position in the originating
// table, kept so category groups can be diffed against the ungrouped input.
type CategorizedRow struct {
	Row      CostRow `json:"row"`
	Category string  `json:"category"`
	Subtype  string  `json:"subtype"`
	Source   int     `json:"source"`
}

// CategorizedTable is the output of a service classifier: category groups
// concatenated in extractor order with a clean sequential index.
type CategorizedTable struct {
	Columns []string         `json:"columns"`
	Rows    []CategorizedRow `json:"rows"`
}

// Empty reports whether the table has no rows.
func (t CategorizedTable) Empty() bool {
	return len(t.Rows) == 0
}

// Categories returns the distinct category labels in first-appearance order.
func (t CategorizedTable) Categories() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, row := range t.Rows {
		if !seen[row.Category] {
			seen[row.Category] = true
			out = append(out, row.Category)
		}
	}
	return out
}
