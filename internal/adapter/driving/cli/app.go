package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/diillson/aws-cost-insights-go/pkg/version"

	"github.com/diillson/aws-cost-insights-go/internal/application/usecase"
	"github.com/diillson/aws-cost-insights-go/internal/shared/types"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd       *cobra.Command
	reportUseCase *usecase.ReportUseCase
	version       string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
	}

	// Obtem a versão formatada
	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:     "aws-cost-insights",
		Short:   "AWS Cost Insights CLI",
		Version: formattedVersion,
		RunE:    app.runCommand,
	}

	// Personaliza a template para incluir mais informações de versão
	rootCmd.SetVersionTemplate(`{{printf "AWS Cost Insights version: %s\n" .Version}}`)

	// Adiciona flags de linha de comando
	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().StringP("profile", "p", "", "AWS profile to use (default: environment credentials)")
	rootCmd.PersistentFlags().StringP("granularity", "g", "", "Report granularity: DAILY or MONTHLY (default: MONTHLY)")
	rootCmd.PersistentFlags().StringP("metric", "m", "", "Cost metric: UnblendedCost, AmortizedCost, BlendedCost, NetUnblendedCost, NetAmortizedCost")
	rootCmd.PersistentFlags().StringP("tag", "t", "", "Cost allocation tag key to break down costs by")
	rootCmd.PersistentFlags().StringP("service", "s", "", "Show a usage-type breakdown for a single service, e.g. --service EC2")
	rootCmd.PersistentFlags().IntP("top", "T", 0, "Keep only the top N rows per period, folding the rest into Other")
	rootCmd.PersistentFlags().Int("months", 0, "Report on the last N whole months")
	rootCmd.PersistentFlags().Int("days", 0, "Report on the last N days")
	rootCmd.PersistentFlags().String("start", "", "Report start date (YYYY-MM-DD, inclusive)")
	rootCmd.PersistentFlags().String("end", "", "Report end date (YYYY-MM-DD, exclusive)")
	rootCmd.PersistentFlags().StringP("report-name", "n", "", "Specify the base name for the report file (without extension)")
	rootCmd.PersistentFlags().StringSliceP("report-type", "y", nil, "Specify report types: csv, json, pdf")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	rootCmd.PersistentFlags().Bool("list-services", false, "List the services with cost data in the period and exit")
	rootCmd.PersistentFlags().Bool("list-tags", false, "List cost allocation tag keys (or values, with --tag) and exit")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Bypass the query cache and fetch fresh data")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs() (*types.CLIArgs, error) {
	configFile, _ := app.rootCmd.Flags().GetString("config-file")
	profile, _ := app.rootCmd.Flags().GetString("profile")
	granularity, _ := app.rootCmd.Flags().GetString("granularity")
	metric, _ := app.rootCmd.Flags().GetString("metric")
	tagKey, _ := app.rootCmd.Flags().GetString("tag")
	serviceName, _ := app.rootCmd.Flags().GetString("service")
	topN, _ := app.rootCmd.Flags().GetInt("top")
	months, _ := app.rootCmd.Flags().GetInt("months")
	days, _ := app.rootCmd.Flags().GetInt("days")
	startDate, _ := app.rootCmd.Flags().GetString("start")
	endDate, _ := app.rootCmd.Flags().GetString("end")
	reportName, _ := app.rootCmd.Flags().GetString("report-name")
	reportType, _ := app.rootCmd.Flags().GetStringSlice("report-type")
	dir, _ := app.rootCmd.Flags().GetString("dir")
	listServices, _ := app.rootCmd.Flags().GetBool("list-services")
	listTags, _ := app.rootCmd.Flags().GetBool("list-tags")
	noCache, _ := app.rootCmd.Flags().GetBool("no-cache")

	// Set default directory to current working directory if not specified
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = cwd
	} else {
		// Convert to absolute path
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	args := &types.CLIArgs{
		ConfigFile:   configFile,
		Profile:      profile,
		Granularity:  granularity,
		Metric:       metric,
		TagKey:       tagKey,
		Service:      serviceName,
		TopN:         topN,
		Months:       months,
		Days:         days,
		StartDate:    startDate,
		EndDate:      endDate,
		ReportName:   reportName,
		ReportType:   reportType,
		Dir:          dir,
		ListServices: listServices,
		ListTags:     listTags,
		NoCache:      noCache,
	}

	return args, nil
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	if noColor, _ := app.rootCmd.Flags().GetBool("no-color"); noColor {
		color.NoColor = true
		pterm.DisableColor()
	}

	// Exibe o banner de boas-vindas
	displayWelcomeBanner(app.version)

	// Verifica a versão mais recente disponível
	go version.CheckLatestVersion(app.version)

	// Analisa os argumentos da linha de comando
	cliArgs, err := app.parseArgs()
	if err != nil {
		return err
	}

	ctx := context.Background()
	return app.reportUseCase.RunReport(ctx, cliArgs)
}

// SetReportUseCase sets the report use case for the CLI app.
func (app *CLIApp) SetReportUseCase(useCase *usecase.ReportUseCase) {
	app.reportUseCase = useCase
}
