package service

import (
	"strings"

	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
)

// extractEC2UsageCosts claims the instance usage rows of an EC2 usage table.
// The region prefix is stripped from the usage type and the subtype is the
// portion before the first ":" (e.g. "BoxUsage", "SpotUsage").
func extractEC2UsageCosts(rows []IndexedRow) []entity.CategorizedRow {
	var out []entity.CategorizedRow
	for _, ir := range rows {
		usageType := ir.Row.Dimension(entity.ColumnUsageType)
		if !containsFold(usageType, "Usage") {
			continue
		}
		cleaned := stripRegionPrefix(usageType)
		subtype, _, _ := strings.Cut(cleaned, ":")
		out = append(out, tagged(ir, cleaned, subtype))
	}
	return out
}

// extractEC2DataTransferCosts claims data transfer rows; those usage types
// all end with "Bytes".
func extractEC2DataTransferCosts(rows []IndexedRow) []entity.CategorizedRow {
	var out []entity.CategorizedRow
	for _, ir := range rows {
		if !containsFold(ir.Row.Dimension(entity.ColumnUsageType), "Byte") {
			continue
		}
		out = append(out, tagged(ir, "", "Data Transfer"))
	}
	return out
}

var ec2Extractors = []NamedExtractor{
	{Category: "Usage", Extract: extractEC2UsageCosts},
	{Category: "Data Transfer", Extract: extractEC2DataTransferCosts},
}

// EC2 categorizes usage costs for Amazon Elastic Compute Cloud.
type EC2 struct{}

func (EC2) Name() string      { return "Amazon Elastic Compute Cloud" }
func (EC2) ShortName() string { return "EC2" }

func (EC2) CategorizeUsage(t entity.CostTable) entity.CategorizedTable {
	return CategorizeByExtractors(t, ec2Extractors, DefaultMinCost)
}
