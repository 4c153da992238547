package usecase

import (
	"sort"

	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
)

// NormalizeUsageCosts rescales a usage-type cost breakdown so that each
// (period, region) group sums exactly to the authoritative total for that
// group. Cost Explorer apportions some usage-type amounts proportionally, so
// the raw breakdown rarely reconciles with the official service totals; this
// keeps each row's share of its group while pinning the group sum.
//
// The join is a left join on the usage table: no usage row is ever dropped.
// A (period, region) group with no authoritative total resolves to 0 cost
// and its key is reported back so the caller can flag the inconsistency.
func NormalizeUsageCosts(usage, authoritative entity.CostTable) (entity.CostTable, []string) {
	usageSums := map[string]float64{}
	for _, row := range usage.Rows {
		usageSums[groupKey(row)] += row.Cost
	}

	authTotals := map[string]float64{}
	for _, row := range authoritative.Rows {
		authTotals[groupKey(row)] += row.Cost
	}

	out := entity.NewCostTable(usage.Columns...)
	out.Rows = make([]entity.CostRow, 0, len(usage.Rows))
	missing := map[string]bool{}
	for _, row := range usage.Rows {
		key := groupKey(row)
		total, ok := authTotals[key]
		if !ok {
			missing[key] = true
		}
		scaled := row
		dims := make(map[string]string, len(row.Dimensions))
		for k, v := range row.Dimensions {
			dims[k] = v
		}
		scaled.Dimensions = dims
		if sum := usageSums[key]; sum != 0 && ok {
			scaled.Cost = row.Cost / sum * total
		} else {
			scaled.Cost = 0
		}
		out.Rows = append(out.Rows, scaled)
	}

	missingKeys := make([]string, 0, len(missing))
	for key := range missing {
		missingKeys = append(missingKeys, key)
	}
	sort.Strings(missingKeys)

	return out, missingKeys
}

func groupKey(row entity.CostRow) string {
	return row.PeriodLabel() + "/" + row.Dimension(entity.ColumnRegion)
}
