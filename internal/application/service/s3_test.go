package service

import (
	"testing"

	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
)

func TestS3Categories(t *testing.T) {
	table := usageTable(map[string]float64{
		"USE1-TimedStorage-ByteHrs":    10,
		"EUC1-Requests-Tier1":          2,
		"USE1-DataTransfer-Out-Bytes":  3,
		"USE1-StorageAnalytics-ObjCnt": 1,
	})

	out := S3{}.CategorizeUsage(table)
	counts := countByCategory(out)

	if counts["Storage"] != 1 || counts["Request"] != 1 || counts["Data Transfer"] != 1 {
		t.Fatalf("got %v", counts)
	}
	if counts[entity.OtherRowLabel] != 1 {
		t.Fatalf("analytics row should fall through to Other: %v", counts)
	}
}

func TestS3StorageStripsRegionPrefix(t *testing.T) {
	table := usageTable(map[string]float64{"EUC1-TimedStorage-ByteHrs": 10})

	out := S3{}.CategorizeUsage(table)
	for _, row := range out.Rows {
		if row.Category == "Storage" {
			if got := row.Row.Dimension(entity.ColumnUsageType); got != "TimedStorage-ByteHrs" {
				t.Fatalf("got %q", got)
			}
			return
		}
	}
	t.Fatal("no Storage row")
}
