package service

import (
	"strings"

	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
)

func extractS3StorageCosts(rows []IndexedRow) []entity.CategorizedRow {
	var out []entity.CategorizedRow
	for _, ir := range rows {
		usageType := ir.Row.Dimension(entity.ColumnUsageType)
		if !containsFold(usageType, "TimedStorage") {
			continue
		}
		out = append(out, tagged(ir, stripRegionPrefix(usageType), "Storage"))
	}
	return out
}

func extractS3RequestCosts(rows []IndexedRow) []entity.CategorizedRow {
	var out []entity.CategorizedRow
	for _, ir := range rows {
		usageType := ir.Row.Dimension(entity.ColumnUsageType)
		if !containsFold(usageType, "Requests-Tier") {
			continue
		}
		out = append(out, tagged(ir, stripRegionPrefix(usageType), "Request"))
	}
	return out
}

func extractS3DataTransferCosts(rows []IndexedRow) []entity.CategorizedRow {
	var out []entity.CategorizedRow
	for _, ir := range rows {
		if !strings.HasSuffix(ir.Row.Dimension(entity.ColumnUsageType), "Bytes") {
			continue
		}
		out = append(out, tagged(ir, "", "Data Transfer"))
	}
	return out
}

var s3Extractors = []NamedExtractor{
	{Category: "Storage", Extract: extractS3StorageCosts},
	{Category: "Request", Extract: extractS3RequestCosts},
	{Category: "Data Transfer", Extract: extractS3DataTransferCosts},
}

// S3 categorizes usage costs for Amazon Simple Storage Service.
type S3 struct{}

func (S3) Name() string      { return "Amazon Simple Storage Service" }
func (S3) ShortName() string { return "S3" }

func (S3) CategorizeUsage(t entity.CostTable) entity.CategorizedTable {
	return CategorizeByExtractors(t, s3Extractors, DefaultMinCost)
}
