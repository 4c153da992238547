package aws

import (
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	ceTypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
)

// dimensionColumn maps a Cost Explorer dimension key to the canonical column
// name used in cost tables.
func dimensionColumn(key string) string {
	switch key {
	case "SERVICE":
		return entity.ColumnService
	case "REGION":
		return entity.ColumnRegion
	case "USAGE_TYPE":
		return entity.ColumnUsageType
	}
	return key
}

// groupByColumns derives the table schema implied by a group-by definition.
// Tag groupings keep the tag key as the column name until the fan-out
// planner renames it.
func groupByColumns(groupBy []ceTypes.GroupDefinition) []string {
	columns := make([]string, 0, len(groupBy))
	for _, g := range groupBy {
		if g.Type == ceTypes.GroupDefinitionTypeTag {
			columns = append(columns, aws.ToString(g.Key))
			continue
		}
		columns = append(columns, dimensionColumn(aws.ToString(g.Key)))
	}
	return columns
}

// resultPageRows flattens one response page into cost rows: one row per
// (time period, group), with the group keys mapped onto the given columns
// and the metric amount parsed as a float.
func resultPageRows(page *costexplorer.GetCostAndUsageOutput, columns []string, metric string) []entity.CostRow {
	var rows []entity.CostRow
	for _, period := range page.ResultsByTime {
		start := parseAPIDate(aws.ToString(period.TimePeriod.Start))
		end := parseAPIDate(aws.ToString(period.TimePeriod.End))
		for _, group := range period.Groups {
			dims := make(map[string]string, len(columns))
			for i, column := range columns {
				if i < len(group.Keys) {
					dims[column] = group.Keys[i]
				}
			}
			var cost float64
			if metricValue, ok := group.Metrics[metric]; ok {
				cost, _ = strconv.ParseFloat(aws.ToString(metricValue.Amount), 64)
			}
			rows = append(rows, entity.CostRow{
				StartDate:  start,
				EndDate:    end,
				Dimensions: dims,
				Cost:       cost,
			})
		}
	}
	return rows
}

func parseAPIDate(value string) time.Time {
	parsed, _ := time.Parse("2006-01-02", value)
	return parsed
}

// Filter expression builders.

func dimensionFilter(key ceTypes.Dimension, values ...string) *ceTypes.Expression {
	return &ceTypes.Expression{
		Dimensions: &ceTypes.DimensionValues{Key: key, Values: values},
	}
}

func notFilter(expr *ceTypes.Expression) *ceTypes.Expression {
	return &ceTypes.Expression{Not: expr}
}

func andFilter(exprs ...*ceTypes.Expression) *ceTypes.Expression {
	combined := make([]ceTypes.Expression, 0, len(exprs))
	for _, e := range exprs {
		combined = append(combined, *e)
	}
	return &ceTypes.Expression{And: combined}
}
