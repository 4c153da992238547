package aws

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	sdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	ceTypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
	"github.com/diillson/aws-cost-insights-go/internal/domain/repository"
	"github.com/diillson/aws-cost-insights-go/internal/shared/types"
)

// fakeCostExplorer devolve respostas roteadas pela definição do group-by e
// grava cada input recebido, para os testes inspecionarem filtros e tokens.
type fakeCostExplorer struct {
	costPages     map[string][]*costexplorer.GetCostAndUsageOutput
	costInputs    []*costexplorer.GetCostAndUsageInput
	costErr       error
	costCallCount map[string]int

	dimensionPages []*costexplorer.GetDimensionValuesOutput
	dimensionCalls int

	tagPages []*costexplorer.GetTagsOutput
	tagCalls int
	tagErr   error
}

// routeKey identifies a GetCostAndUsage call shape by its group-by keys.
func routeKey(input *costexplorer.GetCostAndUsageInput) string {
	key := ""
	for _, g := range input.GroupBy {
		key += sdk.ToString(g.Key) + ","
	}
	return key
}

func (f *fakeCostExplorer) GetCostAndUsage(ctx context.Context, input *costexplorer.GetCostAndUsageInput, _ ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error) {
	f.costInputs = append(f.costInputs, input)
	if f.costErr != nil {
		return nil, f.costErr
	}
	if f.costCallCount == nil {
		f.costCallCount = map[string]int{}
	}
	key := routeKey(input)
	pages := f.costPages[key]
	page := f.costCallCount[key]
	f.costCallCount[key]++
	if page >= len(pages) {
		return &costexplorer.GetCostAndUsageOutput{}, nil
	}
	return pages[page], nil
}

func (f *fakeCostExplorer) GetDimensionValues(ctx context.Context, input *costexplorer.GetDimensionValuesInput, _ ...func(*costexplorer.Options)) (*costexplorer.GetDimensionValuesOutput, error) {
	if f.dimensionCalls >= len(f.dimensionPages) {
		return &costexplorer.GetDimensionValuesOutput{}, nil
	}
	out := f.dimensionPages[f.dimensionCalls]
	f.dimensionCalls++
	return out, nil
}

func (f *fakeCostExplorer) GetTags(ctx context.Context, input *costexplorer.GetTagsInput, _ ...func(*costexplorer.Options)) (*costexplorer.GetTagsOutput, error) {
	if f.tagErr != nil {
		return nil, f.tagErr
	}
	if f.tagCalls >= len(f.tagPages) {
		return &costexplorer.GetTagsOutput{}, nil
	}
	out := f.tagPages[f.tagCalls]
	f.tagCalls++
	return out, nil
}

func resultPage(period string, nextToken string, groups ...ceTypes.Group) *costexplorer.GetCostAndUsageOutput {
	out := &costexplorer.GetCostAndUsageOutput{
		ResultsByTime: []ceTypes.ResultByTime{
			{
				TimePeriod: &ceTypes.DateInterval{
					Start: sdk.String(period),
					End:   sdk.String(period),
				},
				Groups: groups,
			},
		},
	}
	if nextToken != "" {
		out.NextPageToken = sdk.String(nextToken)
	}
	return out
}

func group(cost string, keys ...string) ceTypes.Group {
	return ceTypes.Group{
		Keys: keys,
		Metrics: map[string]ceTypes.MetricValue{
			entity.MetricUnblendedCost: {Amount: sdk.String(cost)},
		},
	}
}

func testQuery(t *testing.T, tagKey string) repository.CostQuery {
	t.Helper()
	dates, err := entity.ParseDateRange("2025-01-01", "2025-03-01")
	if err != nil {
		t.Fatal(err)
	}
	return repository.CostQuery{
		Dates:       dates,
		Granularity: entity.GranularityMonthly,
		Metric:      entity.MetricUnblendedCost,
		TagKey:      tagKey,
	}
}

func TestFetchServiceCostsFollowsPagination(t *testing.T) {
	fake := &fakeCostExplorer{
		costPages: map[string][]*costexplorer.GetCostAndUsageOutput{
			"SERVICE,REGION,": {
				resultPage("2025-01-01", "page-2", group("10.5", "Amazon Elastic Compute Cloud", "us-east-1")),
				resultPage("2025-02-01", "", group("4.25", "Amazon Simple Storage Service", "eu-west-1")),
			},
		},
	}
	repo := NewAWSRepositoryWithClient(fake, func(time.Duration) {})

	table, err := repo.FetchServiceCosts(context.Background(), "", testQuery(t, ""))
	if err != nil {
		t.Fatal(err)
	}

	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows", len(table.Rows))
	}
	if got := table.Rows[0].Dimension(entity.ColumnService); got != "Amazon Elastic Compute Cloud" {
		t.Fatalf("got %q", got)
	}
	if table.Rows[0].Cost != 10.5 {
		t.Fatalf("got %v", table.Rows[0].Cost)
	}
	if !reflect.DeepEqual(table.Columns, []string{entity.ColumnService, entity.ColumnRegion}) {
		t.Fatalf("schema: %v", table.Columns)
	}

	// O token da primeira página tem de ser repassado.
	if len(fake.costInputs) != 2 {
		t.Fatalf("%d calls", len(fake.costInputs))
	}
	if sdk.ToString(fake.costInputs[1].NextPageToken) != "page-2" {
		t.Fatalf("second call token: %v", fake.costInputs[1].NextPageToken)
	}
}

func TestFetchServiceCostsWrapsAPIErrors(t *testing.T) {
	cause := errors.New("throttled")
	fake := &fakeCostExplorer{costErr: cause}
	repo := NewAWSRepositoryWithClient(fake, func(time.Duration) {})

	_, err := repo.FetchServiceCosts(context.Background(), "", testQuery(t, ""))
	var fetchErr *types.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost: %v", err)
	}
}

func TestFetchServiceCostsTagFanOut(t *testing.T) {
	sleeps := 0
	fake := &fakeCostExplorer{
		costPages: map[string][]*costexplorer.GetCostAndUsageOutput{
			// Descoberta de regiões: eu-west-1 fica abaixo do limiar.
			"REGION,": {
				resultPage("2025-01-01", "",
					group("50", "us-east-1"),
					group("30", "sa-east-1"),
					group("0.005", "eu-west-1"),
				),
			},
			// Uma página por região com breakdown por tag.
			"SERVICE,Team,": {
				resultPage("2025-01-01", "", group("20", "Amazon Elastic Compute Cloud", "Team$devops")),
				resultPage("2025-02-01", "", group("12", "Amazon Elastic Compute Cloud", "Team$")),
			},
		},
	}
	repo := NewAWSRepositoryWithClient(fake, func(time.Duration) { sleeps++ })

	table, err := repo.FetchServiceCosts(context.Background(), "", testQuery(t, "Team"))
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(table.Columns, []string{entity.ColumnService, entity.ColumnTag, entity.ColumnRegion}) {
		t.Fatalf("schema: %v", table.Columns)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows", len(table.Rows))
	}

	// O prefixo "chave$" é removido e a região filtrada volta como coluna.
	if got := table.Rows[0].Dimension(entity.ColumnTag); got != "devops" {
		t.Fatalf("tag value: %q", got)
	}
	if got := table.Rows[1].Dimension(entity.ColumnTag); got != "" {
		t.Fatalf("untagged value: %q", got)
	}
	regions := map[string]bool{}
	for _, row := range table.Rows {
		regions[row.Dimension(entity.ColumnRegion)] = true
	}
	if !regions["sa-east-1"] || !regions["us-east-1"] {
		t.Fatalf("regions: %v", regions)
	}

	// Uma pausa por região ativa, mesmo quando a consulta volta vazia.
	if sleeps != 2 {
		t.Fatalf("got %d sleeps", sleeps)
	}

	// Cada consulta de fan-out é filtrada à sua região.
	for _, input := range fake.costInputs {
		if routeKey(input) != "SERVICE,Team," {
			continue
		}
		if input.Filter == nil || len(input.Filter.And) == 0 {
			t.Fatalf("fan-out call without composite filter: %+v", input.Filter)
		}
	}
}

func TestFetchServiceCostsTagFanOutNoActiveRegions(t *testing.T) {
	fake := &fakeCostExplorer{
		costPages: map[string][]*costexplorer.GetCostAndUsageOutput{
			"REGION,": {resultPage("2025-01-01", "", group("0.001", "us-east-1"))},
		},
	}
	repo := NewAWSRepositoryWithClient(fake, func(time.Duration) {})

	table, err := repo.FetchServiceCosts(context.Background(), "", testQuery(t, "Team"))
	if err != nil {
		t.Fatal(err)
	}
	if !table.Empty() {
		t.Fatalf("got %d rows", len(table.Rows))
	}
	if !reflect.DeepEqual(table.Columns, []string{entity.ColumnService, entity.ColumnTag, entity.ColumnRegion}) {
		t.Fatalf("schema: %v", table.Columns)
	}
}

func TestFetchServiceCostsByUsageFiltersService(t *testing.T) {
	fake := &fakeCostExplorer{
		costPages: map[string][]*costexplorer.GetCostAndUsageOutput{
			"USAGE_TYPE,REGION,": {
				resultPage("2025-01-01", "", group("7", "USE1-BoxUsage:t3.micro", "us-east-1")),
			},
		},
	}
	repo := NewAWSRepositoryWithClient(fake, func(time.Duration) {})

	table, err := repo.FetchServiceCostsByUsage(context.Background(), "", "Amazon Elastic Compute Cloud", testQuery(t, ""))
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("got %d rows", len(table.Rows))
	}

	input := fake.costInputs[0]
	if input.Filter == nil || input.Filter.Dimensions == nil {
		t.Fatalf("missing service filter: %+v", input.Filter)
	}
	if input.Filter.Dimensions.Key != ceTypes.DimensionService ||
		input.Filter.Dimensions.Values[0] != "Amazon Elastic Compute Cloud" {
		t.Fatalf("filter: %+v", input.Filter.Dimensions)
	}
}

func TestFetchActiveRegionsDegradesOnError(t *testing.T) {
	fake := &fakeCostExplorer{costErr: errors.New("no")}
	repo := NewAWSRepositoryWithClient(fake, func(time.Duration) {})

	dates, _ := entity.ParseDateRange("2025-01-01", "2025-02-01")
	regions := repo.FetchActiveRegions(context.Background(), "", dates, entity.GranularityMonthly, minRegionCost)
	if regions != nil {
		t.Fatalf("got %v", regions)
	}
}

func TestGetTagKeysFiltersAWSTags(t *testing.T) {
	fake := &fakeCostExplorer{
		tagPages: []*costexplorer.GetTagsOutput{
			{Tags: []string{"Team", "aws:createdBy", "", "Env"}},
		},
	}
	repo := NewAWSRepositoryWithClient(fake, func(time.Duration) {})

	dates, _ := entity.ParseDateRange("2025-01-01", "2025-02-01")
	keys := repo.GetTagKeys(context.Background(), "", dates)
	if !reflect.DeepEqual(keys, []string{"Env", "Team"}) {
		t.Fatalf("got %v", keys)
	}
}

func TestGetTagKeysDegradesOnError(t *testing.T) {
	fake := &fakeCostExplorer{tagErr: errors.New("denied")}
	repo := NewAWSRepositoryWithClient(fake, func(time.Duration) {})

	dates, _ := entity.ParseDateRange("2025-01-01", "2025-02-01")
	if keys := repo.GetTagKeys(context.Background(), "", dates); keys != nil {
		t.Fatalf("got %v", keys)
	}
}

func TestGetAllServicesPaginatesAndSorts(t *testing.T) {
	fake := &fakeCostExplorer{
		dimensionPages: []*costexplorer.GetDimensionValuesOutput{
			{
				DimensionValues: []ceTypes.DimensionValuesWithAttributes{
					{Value: sdk.String("Amazon Simple Storage Service")},
				},
				NextPageToken: sdk.String("more"),
			},
			{
				DimensionValues: []ceTypes.DimensionValuesWithAttributes{
					{Value: sdk.String("Amazon Elastic Compute Cloud")},
				},
			},
		},
	}
	repo := NewAWSRepositoryWithClient(fake, func(time.Duration) {})

	dates, _ := entity.ParseDateRange("2025-01-01", "2025-02-01")
	services, err := repo.GetAllServices(context.Background(), "", dates)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Amazon Elastic Compute Cloud", "Amazon Simple Storage Service"}
	if !reflect.DeepEqual(services, want) {
		t.Fatalf("got %v", services)
	}
}
