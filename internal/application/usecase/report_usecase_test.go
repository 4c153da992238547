package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
	"github.com/diillson/aws-cost-insights-go/internal/shared/types"
)

func fixedToday(t *testing.T, day time.Time) {
	t.Helper()
	orig := entity.Today
	entity.Today = func() time.Time { return day }
	t.Cleanup(func() { entity.Today = orig })
}

func TestBuildQueryDefaults(t *testing.T) {
	fixedToday(t, time.Date(2025, time.November, 5, 0, 0, 0, 0, time.UTC))

	query, err := buildQuery(&types.CLIArgs{})
	if err != nil {
		t.Fatal(err)
	}
	if query.Granularity != entity.GranularityMonthly {
		t.Errorf("granularity: %q", query.Granularity)
	}
	if query.Metric != entity.MetricUnblendedCost {
		t.Errorf("metric: %q", query.Metric)
	}
	// Padrão: últimos 6 meses fechados.
	if query.Dates.StartISO() != "2025-05-01" || query.Dates.EndISO() != "2025-11-05" {
		t.Errorf("dates: %s", query.Dates)
	}
}

func TestBuildQueryNormalizesGranularityCase(t *testing.T) {
	fixedToday(t, time.Date(2025, time.November, 5, 0, 0, 0, 0, time.UTC))

	query, err := buildQuery(&types.CLIArgs{Granularity: "daily"})
	if err != nil {
		t.Fatal(err)
	}
	if query.Granularity != entity.GranularityDaily {
		t.Fatalf("got %q", query.Granularity)
	}
}

func TestBuildQueryRejectsBadArguments(t *testing.T) {
	cases := []types.CLIArgs{
		{Granularity: "HOURLY"},
		{Metric: "MadeUpCost"},
		{StartDate: "2025-02-01", EndDate: "2025-01-01"},
		{StartDate: "bad-date", EndDate: "2025-01-01"},
	}
	for _, args := range cases {
		if _, err := buildQuery(&args); err == nil {
			t.Errorf("args %+v: expected error", args)
		}
	}

	if _, err := buildQuery(&types.CLIArgs{Granularity: "HOURLY"}); !errors.Is(err, types.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestResolveDatesPrecedence(t *testing.T) {
	fixedToday(t, time.Date(2025, time.November, 5, 0, 0, 0, 0, time.UTC))

	// Datas explícitas ganham de days e months.
	r, err := resolveDates(&types.CLIArgs{StartDate: "2025-01-01", EndDate: "2025-02-01", Days: 7, Months: 3})
	if err != nil {
		t.Fatal(err)
	}
	if r.StartISO() != "2025-01-01" {
		t.Fatalf("got %s", r)
	}

	// Days ganha de months.
	r, err = resolveDates(&types.CLIArgs{Days: 7, Months: 3})
	if err != nil {
		t.Fatal(err)
	}
	if r.StartISO() != "2025-10-29" || r.EndISO() != "2025-11-05" {
		t.Fatalf("got %s", r)
	}

	r, err = resolveDates(&types.CLIArgs{Months: 3})
	if err != nil {
		t.Fatal(err)
	}
	if r.StartISO() != "2025-08-01" {
		t.Fatalf("got %s", r)
	}
}

func TestApplyConfigOnlyFillsZeroValues(t *testing.T) {
	args := &types.CLIArgs{Profile: "cli-profile", TopN: 3}
	config := &types.Config{
		Profile:     "file-profile",
		Granularity: "DAILY",
		TopN:        9,
		Months:      2,
		ReportType:  []string{"csv", "pdf"},
	}

	applyConfig(args, config)

	if args.Profile != "cli-profile" {
		t.Errorf("explicit flag overridden: %q", args.Profile)
	}
	if args.TopN != 3 {
		t.Errorf("explicit flag overridden: %d", args.TopN)
	}
	if args.Granularity != "DAILY" {
		t.Errorf("config not applied: %q", args.Granularity)
	}
	if args.Months != 2 {
		t.Errorf("config not applied: %d", args.Months)
	}
	if len(args.ReportType) != 2 {
		t.Errorf("config not applied: %v", args.ReportType)
	}
}

func TestApplyConfigDoesNotOverrideExplicitDays(t *testing.T) {
	args := &types.CLIArgs{Days: 14}
	applyConfig(args, &types.Config{Months: 6})

	if args.Months != 0 || args.Days != 14 {
		t.Fatalf("got months=%d days=%d", args.Months, args.Days)
	}
}

func TestFilterByDimension(t *testing.T) {
	table := entity.NewCostTable(entity.ColumnService, entity.ColumnRegion)
	table.Append(
		serviceRow("2025-01-01", "A", 1),
		serviceRow("2025-01-01", "B", 2),
		serviceRow("2025-02-01", "A", 3),
	)

	out := filterByDimension(table, entity.ColumnService, "A")
	if len(out.Rows) != 2 {
		t.Fatalf("got %d rows", len(out.Rows))
	}
	if len(out.Columns) != 2 {
		t.Fatalf("schema lost: %v", out.Columns)
	}
}
