package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// CostExplorerAPI é o subconjunto do cliente Cost Explorer consumido por este
// adaptador. Manter a interface estreita permite substituir o cliente real
// por um fake nos testes.
type CostExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
	GetDimensionValues(ctx context.Context, params *costexplorer.GetDimensionValuesInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetDimensionValuesOutput, error)
	GetTags(ctx context.Context, params *costexplorer.GetTagsInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetTagsOutput, error)
}

// newCostExplorerClient carrega a configuração AWS do perfil, valida as
// credenciais com uma chamada ao STS e cria o cliente Cost Explorer. O Cost
// Explorer é hospedado apenas em us-east-1.
func newCostExplorerClient(ctx context.Context, profile string) (CostExplorerAPI, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion("us-east-1"),
	}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for profile %q: %w", profile, err)
	}

	if err := checkAuth(ctx, cfg); err != nil {
		return nil, err
	}

	return costexplorer.NewFromConfig(cfg), nil
}

// checkAuth verifica se as credenciais do perfil ainda são válidas antes de
// qualquer chamada de custo, para falhar cedo com uma mensagem clara.
func checkAuth(ctx context.Context, cfg aws.Config) error {
	stsClient := sts.NewFromConfig(cfg)
	if _, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{}); err != nil {
		return fmt.Errorf("AWS credentials are not valid (try 'aws sso login'): %w", err)
	}
	return nil
}
