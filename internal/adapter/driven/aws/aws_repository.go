package aws

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	ceTypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
	"github.com/diillson/aws-cost-insights-go/internal/domain/repository"
	"github.com/diillson/aws-cost-insights-go/internal/shared/types"
)

// apiSleep é a pausa entre chamadas por região no fan-out. A API do Cost
// Explorer aceita algo entre 1 e 10 requisições por segundo.
const apiSleep = 200 * time.Millisecond

// minRegionCost is the spend threshold below which a region is ignored by
// region discovery. Keeps the per-region fan-out small.
const minRegionCost = 0.01

// AWSRepositoryImpl implementa o AWSRepository sobre a API do Cost Explorer,
// com cache de clientes por perfil.
type AWSRepositoryImpl struct {
	clientCache map[string]CostExplorerAPI
	mu          sync.Mutex
	sleep       func(time.Duration)
}

// NewAWSRepository cria uma nova implementação do AWSRepository.
func NewAWSRepository() repository.AWSRepository {
	return &AWSRepositoryImpl{
		clientCache: make(map[string]CostExplorerAPI),
		sleep:       time.Sleep,
	}
}

// NewAWSRepositoryWithClient injeta um cliente fixo e uma função de espera;
// usado pelos testes para observar paginação e rate limiting.
func NewAWSRepositoryWithClient(client CostExplorerAPI, sleep func(time.Duration)) *AWSRepositoryImpl {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &AWSRepositoryImpl{
		clientCache: map[string]CostExplorerAPI{"": client},
		sleep:       sleep,
	}
}

func (r *AWSRepositoryImpl) getClient(ctx context.Context, profile string) (CostExplorerAPI, error) {
	r.mu.Lock()
	if client, ok := r.clientCache[profile]; ok {
		r.mu.Unlock()
		return client, nil
	}
	r.mu.Unlock()

	client, err := newCostExplorerClient(ctx, profile)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.clientCache[profile] = client
	r.mu.Unlock()

	return client, nil
}

// costPager follows the continuation token of GetCostAndUsage, in the manner
// of the SDK's paginators: one network call per page, no retry, a finite and
// non-restartable sequence.
type costPager struct {
	client    CostExplorerAPI
	input     *costexplorer.GetCostAndUsageInput
	firstPage bool
	nextToken *string
}

func newCostPager(client CostExplorerAPI, input *costexplorer.GetCostAndUsageInput) *costPager {
	return &costPager{client: client, input: input, firstPage: true}
}

func (p *costPager) HasMorePages() bool {
	return p.firstPage || p.nextToken != nil
}

func (p *costPager) NextPage(ctx context.Context) (*costexplorer.GetCostAndUsageOutput, error) {
	p.input.NextPageToken = p.nextToken
	output, err := p.client.GetCostAndUsage(ctx, p.input)
	if err != nil {
		return nil, err
	}
	p.firstPage = false
	p.nextToken = output.NextPageToken
	return output, nil
}

func timePeriod(dates entity.DateRange) *ceTypes.DateInterval {
	return &ceTypes.DateInterval{
		Start: aws.String(dates.StartISO()),
		End:   aws.String(dates.EndISO()),
	}
}

// GetTagKeys retorna as chaves de tag de alocação de custo disponíveis no
// período, sem as tags "aws:". Falhas degradam para uma lista vazia: um
// relatório menor é melhor do que nenhum relatório.
func (r *AWSRepositoryImpl) GetTagKeys(ctx context.Context, profile string, dates entity.DateRange) []string {
	return r.listTags(ctx, profile, dates, "")
}

// GetTagValues retorna os valores de uma chave de tag no período, sem os
// valores "aws:". Falhas degradam para uma lista vazia.
func (r *AWSRepositoryImpl) GetTagValues(ctx context.Context, profile, tagKey string, dates entity.DateRange) []string {
	return r.listTags(ctx, profile, dates, tagKey)
}

func (r *AWSRepositoryImpl) listTags(ctx context.Context, profile string, dates entity.DateRange, tagKey string) []string {
	client, err := r.getClient(ctx, profile)
	if err != nil {
		return nil
	}

	input := &costexplorer.GetTagsInput{TimePeriod: timePeriod(dates)}
	if tagKey != "" {
		input.TagKey = aws.String(tagKey)
	}

	seen := map[string]bool{}
	var tags []string
	for {
		output, err := client.GetTags(ctx, input)
		if err != nil {
			return nil
		}
		for _, tag := range output.Tags {
			if tag == "" || strings.HasPrefix(tag, "aws:") || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
		if output.NextPageToken == nil {
			break
		}
		input.NextPageToken = output.NextPageToken
	}

	sort.Strings(tags)
	return tags
}

// GetAllServices retorna os nomes de serviço conhecidos pelo Cost Explorer
// no período, ordenados.
func (r *AWSRepositoryImpl) GetAllServices(ctx context.Context, profile string, dates entity.DateRange) ([]string, error) {
	client, err := r.getClient(ctx, profile)
	if err != nil {
		return nil, err
	}

	input := &costexplorer.GetDimensionValuesInput{
		TimePeriod: timePeriod(dates),
		Dimension:  ceTypes.DimensionService,
		Context:    ceTypes.ContextCostAndUsage,
	}

	var services []string
	for {
		output, err := client.GetDimensionValues(ctx, input)
		if err != nil {
			return nil, &types.FetchError{Op: "get dimension values", Err: err}
		}
		for _, value := range output.DimensionValues {
			services = append(services, aws.ToString(value.Value))
		}
		if output.NextPageToken == nil {
			break
		}
		input.NextPageToken = output.NextPageToken
	}

	sort.Strings(services)
	return services, nil
}

// FetchActiveRegions retorna as regiões com gasto acima do limiar no
// período. Usada para limitar o fan-out por região quando um breakdown por
// tag é pedido; falhas degradam para uma lista vazia.
func (r *AWSRepositoryImpl) FetchActiveRegions(ctx context.Context, profile string, dates entity.DateRange, granularity string, minCost float64) []string {
	client, err := r.getClient(ctx, profile)
	if err != nil {
		return nil
	}

	// A métrica não importa aqui, só queremos saber onde houve gasto.
	const metric = entity.MetricUnblendedCost

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod:  timePeriod(dates),
		Granularity: ceTypes.Granularity(granularity),
		Metrics:     []string{metric},
		GroupBy: []ceTypes.GroupDefinition{
			{Type: ceTypes.GroupDefinitionTypeDimension, Key: aws.String("REGION")},
		},
	}

	totals := map[string]float64{}
	pager := newCostPager(client, input)
	for pager.HasMorePages() {
		output, err := pager.NextPage(ctx)
		if err != nil {
			return nil
		}
		for _, row := range resultPageRows(output, []string{entity.ColumnRegion}, metric) {
			totals[row.Dimension(entity.ColumnRegion)] += row.Cost
		}
	}

	var regions []string
	for region, cost := range totals {
		if cost > minCost {
			regions = append(regions, region)
		}
	}
	sort.Strings(regions)
	return regions
}

// fetchGroupByCost é o worker de busca: executa uma consulta paginada com o
// group-by e filtro dados e devolve a tabela achatada correspondente.
func (r *AWSRepositoryImpl) fetchGroupByCost(
	ctx context.Context,
	client CostExplorerAPI,
	dates entity.DateRange,
	groupBy []ceTypes.GroupDefinition,
	filter *ceTypes.Expression,
	metric, granularity string,
) (entity.CostTable, error) {
	columns := groupByColumns(groupBy)
	table := entity.NewCostTable(columns...)

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod:  timePeriod(dates),
		Granularity: ceTypes.Granularity(granularity),
		Metrics:     []string{metric},
		GroupBy:     groupBy,
		Filter:      filter,
	}

	pager := newCostPager(client, input)
	for pager.HasMorePages() {
		output, err := pager.NextPage(ctx)
		if err != nil {
			return entity.CostTable{}, &types.FetchError{Op: "get cost and usage", Err: err}
		}
		table.Append(resultPageRows(output, columns, metric)...)
	}

	return table, nil
}

// marketplaceExclusion: gasto de Marketplace normalmente não interessa no
// monitoramento de custos.
var marketplaceExclusion = notFilter(dimensionFilter(ceTypes.DimensionBillingEntity, "AWS Marketplace"))

// FetchServiceCosts busca os custos por serviço e região e, quando uma chave
// de tag é pedida, também por tag. A API aceita no máximo duas dimensões no
// group-by, então o breakdown por tag é decomposto em uma consulta por
// região ativa, com a região reanexada como coluna literal.
func (r *AWSRepositoryImpl) FetchServiceCosts(ctx context.Context, profile string, query repository.CostQuery) (entity.CostTable, error) {
	client, err := r.getClient(ctx, profile)
	if err != nil {
		return entity.CostTable{}, err
	}

	if query.TagKey == "" {
		return r.fetchGroupByCost(ctx, client, query.Dates,
			[]ceTypes.GroupDefinition{
				{Type: ceTypes.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
				{Type: ceTypes.GroupDefinitionTypeDimension, Key: aws.String("REGION")},
			},
			marketplaceExclusion, query.Metric, query.Granularity)
	}

	return r.fanOutByRegion(ctx, client, profile, query, "SERVICE", entity.ColumnService, marketplaceExclusion)
}

// FetchServiceCostsByUsage busca os custos de um serviço por tipo de uso e
// região e, quando uma chave de tag é pedida, também por tag, usando o mesmo
// fan-out por região.
func (r *AWSRepositoryImpl) FetchServiceCostsByUsage(ctx context.Context, profile, service string, query repository.CostQuery) (entity.CostTable, error) {
	client, err := r.getClient(ctx, profile)
	if err != nil {
		return entity.CostTable{}, err
	}

	serviceFilter := dimensionFilter(ceTypes.DimensionService, service)

	if query.TagKey == "" {
		return r.fetchGroupByCost(ctx, client, query.Dates,
			[]ceTypes.GroupDefinition{
				{Type: ceTypes.GroupDefinitionTypeDimension, Key: aws.String("USAGE_TYPE")},
				{Type: ceTypes.GroupDefinitionTypeDimension, Key: aws.String("REGION")},
			},
			serviceFilter, query.Metric, query.Granularity)
	}

	return r.fanOutByRegion(ctx, client, profile, query, "USAGE_TYPE", entity.ColumnUsageType, serviceFilter)
}

// fanOutByRegion emite uma consulta {primária, TAG:chave} por região ativa,
// filtrada à região, e concatena os resultados. Entre cada chamada há uma
// pausa fixa de segurança contra o rate limit da API. Zero regiões ativas
// resultam em uma tabela vazia com o esquema completo.
func (r *AWSRepositoryImpl) fanOutByRegion(
	ctx context.Context,
	client CostExplorerAPI,
	profile string,
	query repository.CostQuery,
	primaryKey, primaryColumn string,
	baseFilter *ceTypes.Expression,
) (entity.CostTable, error) {
	regions := r.FetchActiveRegions(ctx, profile, query.Dates, query.Granularity, minRegionCost)

	result := entity.NewCostTable(primaryColumn, entity.ColumnTag, entity.ColumnRegion)

	groupBy := []ceTypes.GroupDefinition{
		{Type: ceTypes.GroupDefinitionTypeDimension, Key: aws.String(primaryKey)},
		{Type: ceTypes.GroupDefinitionTypeTag, Key: aws.String(query.TagKey)},
	}

	for _, region := range regions {
		regionFilter := dimensionFilter(ceTypes.DimensionRegion, region)
		table, err := r.fetchGroupByCost(ctx, client, query.Dates, groupBy,
			andFilter(regionFilter, baseFilter), query.Metric, query.Granularity)
		if err != nil {
			return entity.CostTable{}, err
		}

		if !table.Empty() {
			// A região foi consumida como filtro, não como group-by;
			// reanexa como coluna literal.
			table.SetColumn(entity.ColumnRegion, region)
			normalizeTagColumn(&table, query.TagKey)
			result, err = result.Concat(table)
			if err != nil {
				return entity.CostTable{}, err
			}
		}

		r.sleep(apiSleep)
	}

	return result, nil
}

// normalizeTagColumn renomeia a coluna da chave de tag para a coluna
// genérica Tag e remove o prefixo "chave$" que o Cost Explorer devolve nos
// valores.
func normalizeTagColumn(table *entity.CostTable, tagKey string) {
	table.RenameColumn(tagKey, entity.ColumnTag)
	prefix := tagKey + "$"
	for i := range table.Rows {
		if value, ok := table.Rows[i].Dimensions[entity.ColumnTag]; ok {
			table.Rows[i].Dimensions[entity.ColumnTag] = strings.TrimPrefix(value, prefix)
		}
	}
}
