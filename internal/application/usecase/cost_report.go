package usecase

import (
	"math"
	"sort"

	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
	"github.com/diillson/aws-cost-insights-go/internal/shared/types"
)

// remainderTolerance is how far the "Other" remainder may drift from zero
// before it earns its own row. Anything closer is float noise.
const remainderTolerance = 0.01

// GenerateCostReport pivots a flat cost table into an entity-by-period
// report, keeps the rows picked by the selector, folds the rest into an
// "Other" row and returns the report together with a single-row totals
// table. The totals always come from the unfiltered input, so they stay
// correct no matter what the selection kept.
//
// Rows are sorted by the latest period's cost, descending. An empty input
// yields two empty reports. A selector that resolves to nothing fails with
// types.ErrNoRowsSelected.
func GenerateCostReport(raw entity.CostTable, rowLabel string, selector entity.ReportSelector) (entity.CostReport, entity.CostReport, error) {
	if raw.Empty() {
		return entity.CostReport{}, entity.CostReport{}, nil
	}

	periods := raw.PeriodLabels()

	// Pivot entity x period, absent combinations filled with 0.
	pivot := map[string]map[string]float64{}
	totals := make(map[string]float64, len(periods))
	for _, row := range raw.Rows {
		label := row.Dimension(rowLabel)
		period := row.PeriodLabel()
		if pivot[label] == nil {
			pivot[label] = map[string]float64{}
		}
		pivot[label][period] += row.Cost
		totals[period] += row.Cost
	}

	selected, err := resolveSelection(pivot, periods, selector)
	if err != nil {
		return entity.CostReport{}, entity.CostReport{}, err
	}

	report := entity.CostReport{Periods: periods}
	subTotals := make([]float64, len(periods))
	for _, label := range selected {
		costs := make([]float64, len(periods))
		for i, period := range periods {
			costs[i] = pivot[label][period]
			subTotals[i] += costs[i]
		}
		report.Rows = append(report.Rows, entity.ReportRow{Label: label, Costs: costs})
	}

	// Remainder per period against the true totals. When the selection
	// already covers everything the row would be all zeros, so skip it.
	remainders := make([]float64, len(periods))
	meaningful := false
	for i, period := range periods {
		r := totals[period] - subTotals[i]
		if math.Abs(r) < remainderTolerance {
			r = 0
		} else {
			meaningful = true
		}
		remainders[i] = r
	}
	if meaningful {
		report.Rows = append(report.Rows, entity.ReportRow{Label: entity.OtherRowLabel, Costs: remainders})
	}

	latest := len(periods) - 1
	sort.SliceStable(report.Rows, func(i, j int) bool {
		if report.Rows[i].Costs[latest] != report.Rows[j].Costs[latest] {
			return report.Rows[i].Costs[latest] > report.Rows[j].Costs[latest]
		}
		return report.Rows[i].Label < report.Rows[j].Label
	})

	totalCosts := make([]float64, len(periods))
	for i, period := range periods {
		totalCosts[i] = totals[period]
	}
	totalsReport := entity.CostReport{
		Periods: periods,
		Rows:    []entity.ReportRow{{Label: entity.TotalRowLabel, Costs: totalCosts}},
	}

	return report, totalsReport, nil
}

// resolveSelection turns a selector into the ordered set of entity labels to
// keep. Top-N is computed per period and unioned, so an entity only needs to
// make the cut in one period. Explicit names are intersected with what is
// actually present; unknown names are silently dropped.
func resolveSelection(pivot map[string]map[string]float64, periods []string, selector entity.ReportSelector) ([]string, error) {
	labels := make([]string, 0, len(pivot))
	for label := range pivot {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var selected []string
	switch {
	case selector.TopN > 0:
		keep := map[string]bool{}
		for _, period := range periods {
			ranked := append([]string{}, labels...)
			sort.SliceStable(ranked, func(i, j int) bool {
				if pivot[ranked[i]][period] != pivot[ranked[j]][period] {
					return pivot[ranked[i]][period] > pivot[ranked[j]][period]
				}
				return ranked[i] < ranked[j]
			})
			n := selector.TopN
			if n > len(ranked) {
				n = len(ranked)
			}
			for _, label := range ranked[:n] {
				keep[label] = true
			}
		}
		for _, label := range labels {
			if keep[label] {
				selected = append(selected, label)
			}
		}
	case len(selector.Names) > 0:
		for _, name := range selector.Names {
			if _, ok := pivot[name]; ok {
				selected = append(selected, name)
			}
		}
	default:
		selected = labels
	}

	if len(selected) == 0 {
		return nil, types.ErrNoRowsSelected
	}
	return selected, nil
}
