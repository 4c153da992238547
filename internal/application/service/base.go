package service

import (
	"regexp"
	"strings"

	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
)

// DefaultMinCost é o custo mínimo para uma linha de uso participar da
// categorização. Linhas abaixo disso são ruído de billing.
const DefaultMinCost = 0.01

// Service is a per-AWS-service usage classifier. Name must match the display
// string Cost Explorer returns for the service, exactly, because it doubles
// as the API filter value. ShortName is the presentation label.
type Service interface {
	Name() string
	ShortName() string
	CategorizeUsage(t entity.CostTable) entity.CategorizedTable
}

// IndexedRow pairs a cost row with its position in the originating table, so
// extractor claims can be compared against the ungrouped input.
type IndexedRow struct {
	Source int
	Row    entity.CostRow
}

// Extractor selects the usage rows it owns from the filtered table and
// returns copies tagged with a subtype. Extractors decide ownership
// independently; nothing enforces mutual exclusivity, and a row claimed by
// two extractors appears twice in the categorized output.
type Extractor func(rows []IndexedRow) []entity.CategorizedRow

// NamedExtractor binds a category label to its extractor. Extractors are
// applied in slice order so the categorized output is deterministic.
type NamedExtractor struct {
	Category string
	Extract  Extractor
}

// CategorizeByExtractors reduces a usage cost table into category groups:
// rows below minCost are dropped, each extractor claims its rows, and any
// row claimed by no extractor lands in an implicit "Other" category with
// subtype "Other". The groups are concatenated in extractor order with the
// category attached and a clean sequential index.
func CategorizeByExtractors(t entity.CostTable, extractors []NamedExtractor, minCost float64) entity.CategorizedTable {
	out := entity.CategorizedTable{Columns: append([]string{}, t.Columns...)}
	if t.Empty() {
		return out
	}

	filtered := make([]IndexedRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		if row.Cost >= minCost {
			filtered = append(filtered, IndexedRow{Source: i, Row: row})
		}
	}

	claimed := map[int]bool{}
	for _, ex := range extractors {
		rows := ex.Extract(filtered)
		for _, row := range rows {
			row.Category = ex.Category
			claimed[row.Source] = true
			out.Rows = append(out.Rows, row)
		}
	}

	for _, ir := range filtered {
		if !claimed[ir.Source] {
			out.Rows = append(out.Rows, entity.CategorizedRow{
				Row:      cloneRow(ir.Row),
				Category: entity.OtherRowLabel,
				Subtype:  entity.OtherRowLabel,
				Source:   ir.Source,
			})
		}
	}

	return out
}

// Slug normalizes a short name to a filesystem-friendly form: lowercase,
// alphanumeric runs separated by single hyphens.
func Slug(shortname string) string {
	text := strings.ToLower(shortname)
	text = nonAlnum.ReplaceAllString(text, "-")
	return strings.Trim(text, "-")
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Usage types carry a region prefix like "USE1-" or "EUC1-": two or more
// letters followed by a digit and a hyphen.
var regionPrefix = regexp.MustCompile(`^[a-zA-Z]{2}(?:[a-zA-Z]+)?\d-`)

func stripRegionPrefix(usageType string) string {
	return regionPrefix.ReplaceAllString(usageType, "")
}

func cloneRow(row entity.CostRow) entity.CostRow {
	dims := make(map[string]string, len(row.Dimensions))
	for k, v := range row.Dimensions {
		dims[k] = v
	}
	row.Dimensions = dims
	return row
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// tagged copies an indexed row into a categorized row, optionally rewriting
// its usage type, and sets the subtype.
func tagged(ir IndexedRow, usageType, subtype string) entity.CategorizedRow {
	row := cloneRow(ir.Row)
	if usageType != "" {
		row.Dimensions[entity.ColumnUsageType] = usageType
	}
	return entity.CategorizedRow{Row: row, Subtype: subtype, Source: ir.Source}
}
