package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile   string
	Profile      string
	Granularity  string
	Metric       string
	TagKey       string
	Service      string
	TopN         int
	Months       int
	Days         int
	StartDate    string
	EndDate      string
	ReportName   string
	ReportType   []string
	Dir          string
	ListServices bool
	ListTags     bool
	NoCache      bool
}
