package usecase

import (
	"math"
	"testing"
	"time"

	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
)

func usageRow(period, region, usageType string, cost float64) entity.CostRow {
	start, _ := time.Parse("2006-01-02", period)
	return entity.CostRow{
		StartDate: start,
		EndDate:   start.AddDate(0, 1, 0),
		Dimensions: map[string]string{
			entity.ColumnUsageType: usageType,
			entity.ColumnRegion:    region,
		},
		Cost: cost,
	}
}

func regionTotalRow(period, region string, cost float64) entity.CostRow {
	start, _ := time.Parse("2006-01-02", period)
	return entity.CostRow{
		StartDate: start,
		EndDate:   start.AddDate(0, 1, 0),
		Dimensions: map[string]string{
			entity.ColumnService: "Amazon Elastic Compute Cloud",
			entity.ColumnRegion:  region,
		},
		Cost: cost,
	}
}

func TestNormalizeUsageCostsRescalesToAuthoritativeTotal(t *testing.T) {
	usage := entity.NewCostTable(entity.ColumnUsageType, entity.ColumnRegion)
	usage.Append(
		usageRow("2025-01-01", "us-east-1", "BoxUsage", 60),
		usageRow("2025-01-01", "us-east-1", "DataTransfer-Out-Bytes", 20),
	)

	authoritative := entity.NewCostTable(entity.ColumnService, entity.ColumnRegion)
	authoritative.Append(regionTotalRow("2025-01-01", "us-east-1", 100))

	out, missing := NormalizeUsageCosts(usage, authoritative)
	if len(missing) != 0 {
		t.Fatalf("unexpected missing keys: %v", missing)
	}

	// O grupo somava 80 e o total oficial é 100: cada linha mantém a sua
	// proporção.
	if math.Abs(out.Rows[0].Cost-75) > 1e-9 {
		t.Errorf("BoxUsage: got %v, want 75", out.Rows[0].Cost)
	}
	if math.Abs(out.Rows[1].Cost-25) > 1e-9 {
		t.Errorf("DataTransfer: got %v, want 25", out.Rows[1].Cost)
	}

	// A entrada não muda.
	if usage.Rows[0].Cost != 60 {
		t.Fatalf("input mutated: %v", usage.Rows[0].Cost)
	}
}

func TestNormalizeUsageCostsGroupsArePinnedIndependently(t *testing.T) {
	usage := entity.NewCostTable(entity.ColumnUsageType, entity.ColumnRegion)
	usage.Append(
		usageRow("2025-01-01", "us-east-1", "BoxUsage", 10),
		usageRow("2025-01-01", "eu-west-1", "BoxUsage", 10),
		usageRow("2025-02-01", "us-east-1", "BoxUsage", 10),
	)

	authoritative := entity.NewCostTable(entity.ColumnService, entity.ColumnRegion)
	authoritative.Append(
		regionTotalRow("2025-01-01", "us-east-1", 30),
		regionTotalRow("2025-01-01", "eu-west-1", 5),
		regionTotalRow("2025-02-01", "us-east-1", 7),
	)

	out, missing := NormalizeUsageCosts(usage, authoritative)
	if len(missing) != 0 {
		t.Fatalf("unexpected missing keys: %v", missing)
	}

	want := []float64{30, 5, 7}
	for i, w := range want {
		if math.Abs(out.Rows[i].Cost-w) > 1e-9 {
			t.Errorf("row %d: got %v, want %v", i, out.Rows[i].Cost, w)
		}
	}
}

func TestNormalizeUsageCostsMissingGroupZeroesAndReports(t *testing.T) {
	usage := entity.NewCostTable(entity.ColumnUsageType, entity.ColumnRegion)
	usage.Append(
		usageRow("2025-01-01", "us-east-1", "BoxUsage", 60),
		usageRow("2025-01-01", "ap-south-1", "BoxUsage", 40),
	)

	authoritative := entity.NewCostTable(entity.ColumnService, entity.ColumnRegion)
	authoritative.Append(regionTotalRow("2025-01-01", "us-east-1", 100))

	out, missing := NormalizeUsageCosts(usage, authoritative)

	if len(missing) != 1 || missing[0] != "2025-01-01/ap-south-1" {
		t.Fatalf("missing keys: %v", missing)
	}
	// Nenhuma linha é descartada; a órfã vai a zero.
	if len(out.Rows) != 2 {
		t.Fatalf("got %d rows", len(out.Rows))
	}
	if out.Rows[1].Cost != 0 {
		t.Fatalf("orphan row cost: %v", out.Rows[1].Cost)
	}
	if math.Abs(out.Rows[0].Cost-100) > 1e-9 {
		t.Fatalf("us-east-1 row cost: %v", out.Rows[0].Cost)
	}
}

func TestNormalizeUsageCostsEmptyInputs(t *testing.T) {
	out, missing := NormalizeUsageCosts(
		entity.NewCostTable(entity.ColumnUsageType, entity.ColumnRegion),
		entity.NewCostTable(entity.ColumnService, entity.ColumnRegion),
	)
	if !out.Empty() || len(missing) != 0 {
		t.Fatalf("got %+v / %v", out, missing)
	}
	if len(out.Columns) != 2 {
		t.Fatalf("schema lost: %v", out.Columns)
	}
}
