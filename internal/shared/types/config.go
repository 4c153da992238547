package types

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	Profile     string   `json:"profile" yaml:"profile" toml:"profile"`
	Granularity string   `json:"granularity" yaml:"granularity" toml:"granularity"`
	Metric      string   `json:"metric" yaml:"metric" toml:"metric"`
	TagKey      string   `json:"tag_key" yaml:"tag_key" toml:"tag_key"`
	TopN        int      `json:"top_n" yaml:"top_n" toml:"top_n"`
	Months      int      `json:"months" yaml:"months" toml:"months"`
	Days        int      `json:"days" yaml:"days" toml:"days"`
	ReportName  string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType  []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir         string   `json:"dir" yaml:"dir" toml:"dir"`
}
