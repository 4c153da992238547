package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFileTOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
profile = "prod"
granularity = "DAILY"
top_n = 5
report_type = ["csv", "pdf"]
`)

	config, err := NewConfigRepository().LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if config.Profile != "prod" || config.Granularity != "DAILY" || config.TopN != 5 {
		t.Fatalf("got %+v", config)
	}
	if len(config.ReportType) != 2 {
		t.Fatalf("got %+v", config.ReportType)
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
profile: staging
metric: AmortizedCost
months: 3
`)

	config, err := NewConfigRepository().LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if config.Profile != "staging" || config.Metric != "AmortizedCost" || config.Months != 3 {
		t.Fatalf("got %+v", config)
	}
}

func TestLoadConfigFileJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"profile": "dev", "tag_key": "Team"}`)

	config, err := NewConfigRepository().LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if config.Profile != "dev" || config.TagKey != "Team" {
		t.Fatalf("got %+v", config)
	}
}

func TestLoadConfigFileRejectsUnknownExtension(t *testing.T) {
	path := writeFile(t, "config.ini", "profile=prod")

	if _, err := NewConfigRepository().LoadConfigFile(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoadConfigFileMissingFile(t *testing.T) {
	if _, err := NewConfigRepository().LoadConfigFile(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
