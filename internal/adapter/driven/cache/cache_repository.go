package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
	"github.com/diillson/aws-cost-insights-go/internal/domain/repository"
)

// DefaultTTL é o tempo de vida padrão das tabelas em cache. Dados de custo
// mudam no máximo algumas vezes por dia.
const DefaultTTL = 4 * time.Hour

type cachedTable struct {
	table     entity.CostTable
	fetchedAt time.Time
}

// CachedAWSRepository decora um AWSRepository com um cache TTL das buscas de
// custo, chaveado pelo perfil e pelos parâmetros normalizados da consulta.
// Só as buscas primárias são cacheadas; as chamadas de descoberta são
// baratas.
type CachedAWSRepository struct {
	inner repository.AWSRepository
	ttl   time.Duration
	now   func() time.Time

	mu     sync.Mutex
	tables map[string]cachedTable
}

// NewCachedAWSRepository cria o decorador de cache em volta de um repositório.
func NewCachedAWSRepository(inner repository.AWSRepository, ttl time.Duration) *CachedAWSRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedAWSRepository{
		inner:  inner,
		ttl:    ttl,
		now:    time.Now,
		tables: make(map[string]cachedTable),
	}
}

// Clear descarta todas as entradas do cache.
func (c *CachedAWSRepository) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables = make(map[string]cachedTable)
}

func queryKey(op, profile, service string, query repository.CostQuery) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s",
		op, profile, service, query.Dates, query.Granularity, query.Metric, query.TagKey)
}

func (c *CachedAWSRepository) lookup(key string) (entity.CostTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.tables[key]
	if !ok || c.now().Sub(entry.fetchedAt) > c.ttl {
		delete(c.tables, key)
		return entity.CostTable{}, false
	}
	return entry.table, true
}

func (c *CachedAWSRepository) store(key string, table entity.CostTable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[key] = cachedTable{table: table, fetchedAt: c.now()}
}

func (c *CachedAWSRepository) FetchServiceCosts(ctx context.Context, profile string, query repository.CostQuery) (entity.CostTable, error) {
	key := queryKey("service-costs", profile, "", query)
	if table, ok := c.lookup(key); ok {
		return table, nil
	}
	table, err := c.inner.FetchServiceCosts(ctx, profile, query)
	if err != nil {
		return entity.CostTable{}, err
	}
	c.store(key, table)
	return table, nil
}

func (c *CachedAWSRepository) FetchServiceCostsByUsage(ctx context.Context, profile, service string, query repository.CostQuery) (entity.CostTable, error) {
	key := queryKey("usage-costs", profile, service, query)
	if table, ok := c.lookup(key); ok {
		return table, nil
	}
	table, err := c.inner.FetchServiceCostsByUsage(ctx, profile, service, query)
	if err != nil {
		return entity.CostTable{}, err
	}
	c.store(key, table)
	return table, nil
}

func (c *CachedAWSRepository) GetTagKeys(ctx context.Context, profile string, dates entity.DateRange) []string {
	return c.inner.GetTagKeys(ctx, profile, dates)
}

func (c *CachedAWSRepository) GetTagValues(ctx context.Context, profile, tagKey string, dates entity.DateRange) []string {
	return c.inner.GetTagValues(ctx, profile, tagKey, dates)
}

func (c *CachedAWSRepository) GetAllServices(ctx context.Context, profile string, dates entity.DateRange) ([]string, error) {
	return c.inner.GetAllServices(ctx, profile, dates)
}

func (c *CachedAWSRepository) FetchActiveRegions(ctx context.Context, profile string, dates entity.DateRange, granularity string, minCost float64) []string {
	return c.inner.FetchActiveRegions(ctx, profile, dates, granularity, minCost)
}
