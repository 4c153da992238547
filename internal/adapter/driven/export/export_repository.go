package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
	"github.com/diillson/aws-cost-insights-go/internal/domain/repository"
	"github.com/jung-kurt/gofpdf"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

// --- Exportação do relatório de custos pivotado ---

func (r *ExportRepositoryImpl) ExportReportToCSV(report, totals entity.CostReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := append([]string{""}, report.Periods...)
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	writeRows := func(rows []entity.ReportRow) error {
		for _, row := range rows {
			record := make([]string, 0, len(row.Costs)+1)
			record = append(record, row.Label)
			for _, cost := range row.Costs {
				record = append(record, fmt.Sprintf("%.2f", cost))
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("error writing CSV row: %w", err)
			}
		}
		return nil
	}
	if err := writeRows(report.Rows); err != nil {
		return "", err
	}
	if err := writeRows(totals.Rows); err != nil {
		return "", err
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportReportToJSON(report, totals entity.CostReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	payload := struct {
		Report entity.CostReport `json:"report"`
		Totals entity.CostReport `json:"totals"`
	}{Report: report, Totals: totals}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportReportToPDF(report, totals entity.CostReport, title, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}
	if len(report.Periods) == 0 {
		return "", fmt.Errorf("cannot render an empty report to PDF")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("  %s", title)), "", 1, "L", true, 0, "")
	pdf.Ln(6)

	labelWidth := 90.0
	pageWidth, _ := pdf.GetPageSize()
	usable := pageWidth - 20 - labelWidth
	columnWidth := usable / float64(len(report.Periods))

	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(labelWidth, 7, "", "B", 0, "L", false, 0, "")
	for _, period := range report.Periods {
		pdf.CellFormat(columnWidth, 7, tr(period), "B", 0, "R", false, 0, "")
	}
	pdf.Ln(-1)

	writeRows := func(rows []entity.ReportRow, bold bool) {
		font := ""
		if bold {
			font = "B"
		}
		pdf.SetFont("Arial", font, 9)
		for _, row := range rows {
			label := row.Label
			if len(label) > 60 {
				label = label[:57] + "..."
			}
			pdf.CellFormat(labelWidth, 6, tr(label), "", 0, "L", false, 0, "")
			for _, cost := range row.Costs {
				pdf.CellFormat(columnWidth, 6, fmt.Sprintf("$%.2f", cost), "", 0, "R", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}
	writeRows(report.Rows, false)
	pdf.Line(10, pdf.GetY(), 10+labelWidth+usable, pdf.GetY())
	writeRows(totals.Rows, true)

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Exportação do breakdown de uso categorizado ---

func (r *ExportRepositoryImpl) ExportUsageToCSV(usage entity.CategorizedTable, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := append([]string{"Category", "Subtype", "StartDate", "EndDate"}, usage.Columns...)
	headers = append(headers, "Cost")
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, row := range usage.Rows {
		record := []string{
			row.Category,
			row.Subtype,
			row.Row.StartDate.Format("2006-01-02"),
			row.Row.EndDate.Format("2006-01-02"),
		}
		for _, column := range usage.Columns {
			record = append(record, row.Row.Dimension(column))
		}
		record = append(record, fmt.Sprintf("%.2f", row.Row.Cost))
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV row: %w", err)
		}
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportUsageToJSON(usage entity.CategorizedTable, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(usage); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}
