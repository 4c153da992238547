package service

import (
	"strings"

	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
)

func extractRDSBackupCosts(rows []IndexedRow) []entity.CategorizedRow {
	var out []entity.CategorizedRow
	for _, ir := range rows {
		usageType := ir.Row.Dimension(entity.ColumnUsageType)
		if !containsFold(usageType, "BackupUsage") {
			continue
		}
		out = append(out, tagged(ir, stripRegionPrefix(usageType), "Backup"))
	}
	return out
}

func extractRDSStorageCosts(rows []IndexedRow) []entity.CategorizedRow {
	var out []entity.CategorizedRow
	for _, ir := range rows {
		usageType := ir.Row.Dimension(entity.ColumnUsageType)
		if !containsFold(usageType, "Storage") {
			continue
		}
		out = append(out, tagged(ir, stripRegionPrefix(usageType), "Storage"))
	}
	return out
}

func extractRDSComputeCosts(rows []IndexedRow) []entity.CategorizedRow {
	var out []entity.CategorizedRow
	for _, ir := range rows {
		usageType := ir.Row.Dimension(entity.ColumnUsageType)
		if !containsFold(usageType, "InstanceUsage") && !containsFold(usageType, "Serverless") {
			continue
		}
		out = append(out, tagged(ir, stripRegionPrefix(usageType), "Compute"))
	}
	return out
}

func extractRDSDataTransferCosts(rows []IndexedRow) []entity.CategorizedRow {
	var out []entity.CategorizedRow
	for _, ir := range rows {
		if !strings.HasSuffix(ir.Row.Dimension(entity.ColumnUsageType), "Bytes") {
			continue
		}
		out = append(out, tagged(ir, "", "Data Transfer"))
	}
	return out
}

var rdsExtractors = []NamedExtractor{
	{Category: "Backup", Extract: extractRDSBackupCosts},
	{Category: "Storage", Extract: extractRDSStorageCosts},
	{Category: "Compute", Extract: extractRDSComputeCosts},
	{Category: "Data Transfer", Extract: extractRDSDataTransferCosts},
}

// RDS categorizes usage costs for Amazon Relational Database Service.
type RDS struct{}

func (RDS) Name() string      { return "Amazon Relational Database Service" }
func (RDS) ShortName() string { return "RDS" }

func (RDS) CategorizeUsage(t entity.CostTable) entity.CategorizedTable {
	return CategorizeByExtractors(t, rdsExtractors, DefaultMinCost)
}
