package repository

import (
	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
)

type ExportRepository interface {
	ExportReportToCSV(report, totals entity.CostReport, filename, outputDir string) (string, error)
	ExportReportToJSON(report, totals entity.CostReport, filename, outputDir string) (string, error)
	ExportReportToPDF(report, totals entity.CostReport, title, filename, outputDir string) (string, error)

	// Categorized usage breakdowns
	ExportUsageToCSV(usage entity.CategorizedTable, filename, outputDir string) (string, error)
	ExportUsageToJSON(usage entity.CategorizedTable, filename, outputDir string) (string, error)
}
