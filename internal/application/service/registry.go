package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/diillson/aws-cost-insights-go/internal/shared/types"
)

// Registro explícito montado em tempo de inicialização. Para suportar um novo
// serviço basta implementar Service e adicioná-lo aqui.
var registry = buildRegistry(
	EC2{},
	EC2Other{},
	EFS{},
	RDS{},
	S3{},
)

func buildRegistry(services ...Service) map[string]Service {
	m := make(map[string]Service, len(services))
	for _, s := range services {
		m[s.Name()] = s
	}
	return m
}

// Names returns the Cost Explorer display names of all registered services,
// sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the classifier registered for a service display name.
func Get(name string) (Service, error) {
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownService, name)
	}
	return s, nil
}

// Find resolve um serviço pelo nome completo, pelo nome curto ou pelo slug,
// para aceitar "EC2", "ec2-other" etc. na linha de comando.
func Find(name string) (Service, error) {
	if s, ok := registry[name]; ok {
		return s, nil
	}
	for _, s := range registry {
		if strings.EqualFold(name, s.ShortName()) || name == Slug(s.ShortName()) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", types.ErrUnknownService, name)
}
