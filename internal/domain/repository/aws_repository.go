package repository

import (
	"context"

	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
)

// CostQuery carries the shared parameters of every cost fetch.
type CostQuery struct {
	Dates       entity.DateRange
	Granularity string
	Metric      string
	TagKey      string
}

// AWSRepository defines the interface for Cost Explorer interactions.
type AWSRepository interface {
	// Discovery operations. Failures degrade to empty results; a smaller
	// report beats a hard failure when only discovery is affected.
	GetTagKeys(ctx context.Context, profile string, dates entity.DateRange) []string
	GetTagValues(ctx context.Context, profile, tagKey string, dates entity.DateRange) []string
	GetAllServices(ctx context.Context, profile string, dates entity.DateRange) ([]string, error)
	FetchActiveRegions(ctx context.Context, profile string, dates entity.DateRange, granularity string, minCost float64) []string

	// Cost fetch operations. Failures propagate as *types.FetchError.
	FetchServiceCosts(ctx context.Context, profile string, query CostQuery) (entity.CostTable, error)
	FetchServiceCostsByUsage(ctx context.Context, profile, service string, query CostQuery) (entity.CostTable, error)
}
