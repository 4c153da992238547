package service

import (
	"strings"

	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
)

// trimToMarker discards everything before the first occurrence of marker in
// the usage type, mirroring how Cost Explorer prefixes these labels with the
// region code.
func trimToMarker(usageType, marker string) string {
	if idx := strings.Index(usageType, marker); idx >= 0 {
		return usageType[idx:]
	}
	return usageType
}

// extractEBSCosts claims EBS rows (volumes, snapshots, throughput/IOPS).
// EBSOptimized is instance bandwidth, not storage, so it is excluded.
func extractEBSCosts(rows []IndexedRow) []entity.CategorizedRow {
	var out []entity.CategorizedRow
	for _, ir := range rows {
		usageType := ir.Row.Dimension(entity.ColumnUsageType)
		if !strings.Contains(usageType, "EBS") || strings.Contains(usageType, "EBSOptimized") {
			continue
		}
		cleaned := trimToMarker(usageType, "EBS:")
		subtype := entity.OtherRowLabel
		switch {
		case containsFold(cleaned, "VolumeUsage"):
			subtype = "EBS Volume"
		case containsFold(cleaned, "SnapshotUsage"):
			subtype = "EBS Snapshot"
		case containsFold(cleaned, "Throughput") || containsFold(cleaned, "IOPS"):
			subtype = "EBS Throughput"
		}
		out = append(out, tagged(ir, cleaned, subtype))
	}
	return out
}

// extractNatGatewayCosts claims NAT Gateway rows, split into hourly and
// per-byte charges.
func extractNatGatewayCosts(rows []IndexedRow) []entity.CategorizedRow {
	var out []entity.CategorizedRow
	for _, ir := range rows {
		usageType := ir.Row.Dimension(entity.ColumnUsageType)
		if !containsFold(usageType, "NatGateway") {
			continue
		}
		cleaned := trimToMarker(usageType, "NatGateway")
		subtype := entity.OtherRowLabel
		switch {
		case containsFold(cleaned, "Hours"):
			subtype = "NAT Gateway Hours"
		case containsFold(cleaned, "Bytes"):
			subtype = "NAT Gateway Bytes"
		}
		out = append(out, tagged(ir, cleaned, subtype))
	}
	return out
}

// extractEC2OtherDataTransferCosts claims data transfer and VPC peering rows.
func extractEC2OtherDataTransferCosts(rows []IndexedRow) []entity.CategorizedRow {
	var out []entity.CategorizedRow
	for _, ir := range rows {
		usageType := ir.Row.Dimension(entity.ColumnUsageType)
		var cleaned string
		switch {
		case containsFold(usageType, "DataTransfer"):
			cleaned = trimToMarker(usageType, "DataTransfer")
		case containsFold(usageType, "VpcPeering"):
			cleaned = trimToMarker(usageType, "VpcPeering")
		default:
			continue
		}
		out = append(out, tagged(ir, cleaned, "Data Transfer"))
	}
	return out
}

var ec2OtherExtractors = []NamedExtractor{
	{Category: "EBS", Extract: extractEBSCosts},
	{Category: "VPC", Extract: extractNatGatewayCosts},
	{Category: "Data Transfer", Extract: extractEC2OtherDataTransferCosts},
}

// EC2Other categorizes usage costs for the "EC2 - Other" catch-all service,
// where Cost Explorer buckets EBS, NAT Gateway and inter-AZ transfer charges.
type EC2Other struct{}

func (EC2Other) Name() string      { return "EC2 - Other" }
func (EC2Other) ShortName() string { return "EC2 Other" }

func (EC2Other) CategorizeUsage(t entity.CostTable) entity.CategorizedTable {
	return CategorizeByExtractors(t, ec2OtherExtractors, DefaultMinCost)
}
