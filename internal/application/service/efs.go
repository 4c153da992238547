package service

import (
	"strings"

	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
)

// IA marks infrequent-access storage classes; the match is case sensitive on
// purpose, lowercase "ia" shows up inside unrelated words.
func isInfrequentAccess(usageType string) bool {
	return strings.Contains(usageType, "IA")
}

func extractEFSStandardCosts(rows []IndexedRow) []entity.CategorizedRow {
	var out []entity.CategorizedRow
	for _, ir := range rows {
		usageType := ir.Row.Dimension(entity.ColumnUsageType)
		if isInfrequentAccess(usageType) {
			continue
		}
		out = append(out, tagged(ir, stripRegionPrefix(usageType), "Standard"))
	}
	return out
}

func extractEFSInfrequentCosts(rows []IndexedRow) []entity.CategorizedRow {
	var out []entity.CategorizedRow
	for _, ir := range rows {
		usageType := ir.Row.Dimension(entity.ColumnUsageType)
		if !isInfrequentAccess(usageType) {
			continue
		}
		out = append(out, tagged(ir, stripRegionPrefix(usageType), "Infrequent"))
	}
	return out
}

var efsExtractors = []NamedExtractor{
	{Category: "Standard", Extract: extractEFSStandardCosts},
	{Category: "Infrequent", Extract: extractEFSInfrequentCosts},
}

// EFS categorizes usage costs for Amazon Elastic File System.
type EFS struct{}

func (EFS) Name() string      { return "Amazon Elastic File System" }
func (EFS) ShortName() string { return "EFS" }

func (EFS) CategorizeUsage(t entity.CostTable) entity.CategorizedTable {
	return CategorizeByExtractors(t, efsExtractors, DefaultMinCost)
}
