package main

import (
	"fmt"
	"os"

	"github.com/diillson/aws-cost-insights-go/internal/adapter/driven/aws"
	"github.com/diillson/aws-cost-insights-go/internal/adapter/driven/cache"
	"github.com/diillson/aws-cost-insights-go/internal/adapter/driven/config"
	"github.com/diillson/aws-cost-insights-go/internal/adapter/driven/export"
	"github.com/diillson/aws-cost-insights-go/internal/adapter/driving/cli"
	"github.com/diillson/aws-cost-insights-go/internal/application/usecase"
	"github.com/diillson/aws-cost-insights-go/pkg/console"
	"github.com/diillson/aws-cost-insights-go/pkg/version"
)

func main() {
	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version)

	// Inicializa os repositórios
	awsRepo := cache.NewCachedAWSRepository(aws.NewAWSRepository(), cache.DefaultTTL)
	exportRepo := export.NewExportRepository()
	configRepo := config.NewConfigRepository()
	consoleImpl := console.NewConsole()

	// Inicializa o caso de uso
	reportUseCase := usecase.NewReportUseCase(
		awsRepo,
		exportRepo,
		configRepo,
		consoleImpl,
	)

	// Define o caso de uso no aplicativo CLI
	app.SetReportUseCase(reportUseCase)

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
