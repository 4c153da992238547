package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/diillson/aws-cost-insights-go/internal/application/service"
	"github.com/diillson/aws-cost-insights-go/internal/domain/entity"
	"github.com/diillson/aws-cost-insights-go/internal/domain/repository"
	"github.com/diillson/aws-cost-insights-go/internal/shared/types"
)

// ReportUseCase handles the cost report workflows.
type ReportUseCase struct {
	awsRepo    repository.AWSRepository
	exportRepo repository.ExportRepository
	configRepo repository.ConfigRepository
	console    types.ConsoleInterface
}

// NewReportUseCase creates a new report use case.
func NewReportUseCase(
	awsRepo repository.AWSRepository,
	exportRepo repository.ExportRepository,
	configRepo repository.ConfigRepository,
	console types.ConsoleInterface,
) *ReportUseCase {
	return &ReportUseCase{
		awsRepo:    awsRepo,
		exportRepo: exportRepo,
		configRepo: configRepo,
		console:    console,
	}
}

// RunReport é o ponto de entrada principal: resolve os argumentos, decide o
// fluxo (relatório por serviço, relatório de uso, ou listagens) e delega.
func (uc *ReportUseCase) RunReport(ctx context.Context, args *types.CLIArgs) error {
	if args.ConfigFile != "" {
		config, err := uc.configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return err
		}
		applyConfig(args, config)
	}

	query, err := buildQuery(args)
	if err != nil {
		return err
	}

	if args.NoCache {
		if cache, ok := uc.awsRepo.(interface{ Clear() }); ok {
			cache.Clear()
		}
	}

	if args.ListServices {
		return uc.listServices(ctx, args.Profile, query.Dates)
	}
	if args.ListTags {
		uc.listTags(ctx, args.Profile, args.TagKey, query.Dates)
		return nil
	}
	if args.Service != "" {
		return uc.runUsageReport(ctx, args, query)
	}
	return uc.runServiceReport(ctx, args, query)
}

// applyConfig preenche os argumentos zerados com os valores do arquivo de
// configuração; flags explícitas da CLI sempre ganham.
func applyConfig(args *types.CLIArgs, config *types.Config) {
	if args.Profile == "" {
		args.Profile = config.Profile
	}
	if args.Granularity == "" {
		args.Granularity = config.Granularity
	}
	if args.Metric == "" {
		args.Metric = config.Metric
	}
	if args.TagKey == "" {
		args.TagKey = config.TagKey
	}
	if args.TopN == 0 {
		args.TopN = config.TopN
	}
	if args.Months == 0 && args.Days == 0 {
		args.Months = config.Months
		args.Days = config.Days
	}
	if args.ReportName == "" {
		args.ReportName = config.ReportName
	}
	if len(args.ReportType) == 0 {
		args.ReportType = config.ReportType
	}
	if args.Dir == "" {
		args.Dir = config.Dir
	}
}

// buildQuery valida granularidade, métrica e intervalo de datas antes de
// qualquer chamada de rede.
func buildQuery(args *types.CLIArgs) (repository.CostQuery, error) {
	granularity := strings.ToUpper(args.Granularity)
	if granularity == "" {
		granularity = entity.GranularityMonthly
	}
	if !entity.ValidGranularity(granularity) {
		return repository.CostQuery{}, fmt.Errorf("%w: granularity %q (want daily or monthly)",
			types.ErrInvalidArgument, args.Granularity)
	}

	metric := args.Metric
	if metric == "" {
		metric = entity.MetricUnblendedCost
	}
	if !entity.ValidMetric(metric) {
		return repository.CostQuery{}, fmt.Errorf("%w: unknown cost metric %q",
			types.ErrInvalidArgument, args.Metric)
	}

	dates, err := resolveDates(args)
	if err != nil {
		return repository.CostQuery{}, err
	}

	return repository.CostQuery{
		Dates:       dates,
		Granularity: granularity,
		Metric:      metric,
		TagKey:      args.TagKey,
	}, nil
}

func resolveDates(args *types.CLIArgs) (entity.DateRange, error) {
	switch {
	case args.StartDate != "" || args.EndDate != "":
		return entity.ParseDateRange(args.StartDate, args.EndDate)
	case args.Days > 0:
		return entity.DateRangeFromDays(args.Days, entity.Today())
	case args.Months > 0:
		return entity.DateRangeFromMonths(args.Months, entity.Today())
	default:
		// Últimos 6 meses fechados, o recorte mais útil no dia a dia.
		return entity.DateRangeFromMonths(6, entity.Today())
	}
}

func (uc *ReportUseCase) listServices(ctx context.Context, profile string, dates entity.DateRange) error {
	services, err := uc.awsRepo.GetAllServices(ctx, profile, dates)
	if err != nil {
		return err
	}
	uc.console.LogInfo("Services with cost data between %s:", dates)
	for _, name := range services {
		uc.console.Println("  " + name)
	}
	return nil
}

func (uc *ReportUseCase) listTags(ctx context.Context, profile, tagKey string, dates entity.DateRange) {
	if tagKey == "" {
		keys := uc.awsRepo.GetTagKeys(ctx, profile, dates)
		if len(keys) == 0 {
			uc.console.LogWarning("No cost allocation tag keys found for %s", dates)
			return
		}
		uc.console.LogInfo("Cost allocation tag keys:")
		for _, key := range keys {
			uc.console.Println("  " + key)
		}
		return
	}

	values := uc.awsRepo.GetTagValues(ctx, profile, tagKey, dates)
	if len(values) == 0 {
		uc.console.LogWarning("No values found for tag key %q in %s", tagKey, dates)
		return
	}
	uc.console.LogInfo("Values for tag key %q:", tagKey)
	for _, value := range values {
		uc.console.Println("  " + value)
	}
}

// runServiceReport busca os custos por serviço (ou por tag, quando uma chave
// é pedida) e apresenta o relatório pivotado top-N com linha Other e totais.
func (uc *ReportUseCase) runServiceReport(ctx context.Context, args *types.CLIArgs, query repository.CostQuery) error {
	status := uc.console.Status(fmt.Sprintf("Fetching service costs for %s...", query.Dates))
	table, err := uc.awsRepo.FetchServiceCosts(ctx, args.Profile, query)
	status.Stop()
	if err != nil {
		return err
	}

	if table.Empty() {
		uc.console.LogWarning("No cost data found for %s", query.Dates)
		return nil
	}

	rowLabel := entity.ColumnService
	title := "Cost by service"
	if query.TagKey != "" {
		rowLabel = entity.ColumnTag
		title = fmt.Sprintf("Cost by tag %q", query.TagKey)
	}

	report, totals, err := GenerateCostReport(table, rowLabel, entity.ReportSelector{TopN: args.TopN})
	if err != nil {
		return err
	}

	uc.displayReport(title, rowLabel, report, totals)
	uc.displayPeriodBars(totals)

	return uc.exportReport(args, report, totals, title, args.ReportName)
}

// runUsageReport busca o breakdown por tipo de uso de um serviço, normaliza
// contra os totais oficiais do serviço e categoriza com o plugin registrado.
func (uc *ReportUseCase) runUsageReport(ctx context.Context, args *types.CLIArgs, query repository.CostQuery) error {
	classifier, err := service.Find(args.Service)
	if err != nil {
		return err
	}

	status := uc.console.Status(fmt.Sprintf("Fetching usage costs for %s...", classifier.ShortName()))
	usage, err := uc.awsRepo.FetchServiceCostsByUsage(ctx, args.Profile, classifier.Name(), query)
	status.Stop()
	if err != nil {
		return err
	}

	if usage.Empty() {
		uc.console.LogWarning("No usage cost data found for %s in %s", classifier.ShortName(), query.Dates)
		return nil
	}

	// Totais oficiais por (período, região) do mesmo serviço; a busca é
	// agregada (sem tag) porque a normalização agrupa só por região.
	totalsQuery := query
	totalsQuery.TagKey = ""
	status = uc.console.Status("Fetching authoritative service totals...")
	serviceCosts, err := uc.awsRepo.FetchServiceCosts(ctx, args.Profile, totalsQuery)
	status.Stop()
	if err != nil {
		return err
	}
	authoritative := filterByDimension(serviceCosts, entity.ColumnService, classifier.Name())

	normalized, missing := NormalizeUsageCosts(usage, authoritative)
	for _, key := range missing {
		uc.console.LogWarning("No authoritative total for %s; usage contribution zeroed", key)
	}

	categorized := classifier.CategorizeUsage(normalized)

	title := fmt.Sprintf("%s cost by usage type", classifier.ShortName())
	report, totals, err := GenerateCostReport(normalized, entity.ColumnUsageType, entity.ReportSelector{TopN: args.TopN})
	if err != nil {
		return err
	}

	uc.displayReport(title, entity.ColumnUsageType, report, totals)
	uc.displayCategorySummary(classifier.ShortName(), categorized)

	name := args.ReportName
	if name == "" {
		name = service.Slug(classifier.ShortName()) + "-usage"
	}
	if err := uc.exportReport(args, report, totals, title, name); err != nil {
		return err
	}
	return uc.exportUsage(args, categorized, name)
}

// filterByDimension keeps the rows whose dimension column equals value,
// preserving the schema.
func filterByDimension(t entity.CostTable, column, value string) entity.CostTable {
	out := entity.NewCostTable(t.Columns...)
	for _, row := range t.Rows {
		if row.Dimension(column) == value {
			out.Append(row)
		}
	}
	return out
}

// displayReport renders the pivoted report plus the totals row as a console
// table, one column per period.
func (uc *ReportUseCase) displayReport(title, rowLabel string, report, totals entity.CostReport) {
	if report.Empty() {
		return
	}

	uc.console.LogInfo("%s", title)
	table := uc.console.CreateTable()
	table.AddColumn(rowLabel)
	for _, period := range report.Periods {
		table.AddColumn(period)
	}

	addRows := func(rows []entity.ReportRow) {
		for _, row := range rows {
			cells := make([]interface{}, 0, len(row.Costs)+1)
			cells = append(cells, row.Label)
			for _, cost := range row.Costs {
				cells = append(cells, fmt.Sprintf("$%.2f", cost))
			}
			table.AddRow(cells...)
		}
	}
	addRows(report.Rows)
	addRows(totals.Rows)

	uc.console.Println(table.Render())
}

// displayCategorySummary mostra o total por categoria e período do breakdown
// categorizado.
func (uc *ReportUseCase) displayCategorySummary(shortname string, categorized entity.CategorizedTable) {
	if categorized.Empty() {
		return
	}

	periods := []string{}
	seen := map[string]bool{}
	sums := map[string]map[string]float64{}
	for _, row := range categorized.Rows {
		period := row.Row.PeriodLabel()
		if !seen[period] {
			seen[period] = true
			periods = append(periods, period)
		}
		if sums[row.Category] == nil {
			sums[row.Category] = map[string]float64{}
		}
		sums[row.Category][period] += row.Row.Cost
	}
	sort.Strings(periods)

	uc.console.LogInfo("%s cost by category", shortname)
	table := uc.console.CreateTable()
	table.AddColumn("Category")
	for _, period := range periods {
		table.AddColumn(period)
	}
	for _, category := range categorized.Categories() {
		cells := make([]interface{}, 0, len(periods)+1)
		cells = append(cells, category)
		for _, period := range periods {
			cells = append(cells, fmt.Sprintf("$%.2f", sums[category][period]))
		}
		table.AddRow(cells...)
	}
	uc.console.Println(table.Render())
}

func (uc *ReportUseCase) displayPeriodBars(totals entity.CostReport) {
	if totals.Empty() {
		return
	}
	periodCosts := make([]types.PeriodCost, 0, len(totals.Periods))
	for i, period := range totals.Periods {
		periodCosts = append(periodCosts, types.PeriodCost{Period: period, Cost: totals.Rows[0].Costs[i]})
	}
	uc.console.DisplayPeriodBars(periodCosts)
}

// exportReport grava o relatório nos formatos pedidos; uma falha de export
// não derruba o relatório já exibido, só é registrada.
func (uc *ReportUseCase) exportReport(args *types.CLIArgs, report, totals entity.CostReport, title, name string) error {
	if name == "" || len(args.ReportType) == 0 {
		return nil
	}

	for _, reportType := range args.ReportType {
		var path string
		var err error
		switch strings.ToLower(reportType) {
		case "csv":
			path, err = uc.exportRepo.ExportReportToCSV(report, totals, name, args.Dir)
		case "json":
			path, err = uc.exportRepo.ExportReportToJSON(report, totals, name, args.Dir)
		case "pdf":
			path, err = uc.exportRepo.ExportReportToPDF(report, totals, title, name, args.Dir)
		default:
			uc.console.LogWarning("Unknown report type: %s", reportType)
			continue
		}
		if err != nil {
			uc.console.LogError("Failed to export %s report: %v", reportType, err)
			continue
		}
		uc.console.LogSuccess("Report saved to %s", path)
	}
	return nil
}

func (uc *ReportUseCase) exportUsage(args *types.CLIArgs, categorized entity.CategorizedTable, name string) error {
	if name == "" || len(args.ReportType) == 0 || categorized.Empty() {
		return nil
	}

	for _, reportType := range args.ReportType {
		var path string
		var err error
		switch strings.ToLower(reportType) {
		case "csv":
			path, err = uc.exportRepo.ExportUsageToCSV(categorized, name+"-categorized", args.Dir)
		case "json":
			path, err = uc.exportRepo.ExportUsageToJSON(categorized, name+"-categorized", args.Dir)
		default:
			continue
		}
		if err != nil {
			uc.console.LogError("Failed to export categorized usage (%s): %v", reportType, err)
			continue
		}
		uc.console.LogSuccess("Categorized usage saved to %s", path)
	}
	return nil
}
