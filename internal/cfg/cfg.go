package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// Config adds scanner-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	ScanDays              int
	MaxScanDays           int
	SimilarityThreshold   float64
	DedupWindowHours      int
	SignalsFile           string
	FeedsFile             string
	IncidentDBEndpoint    string
	ClaudeAPIKey          string
	ClaudeModel           string
	SlackWebhookURL       string
	APIKey                string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.IntVar(&c.ScanDays, "scan-days", 7, "default lookback window in days for scans that name none (1..max-scan-days)")
	fs.IntVar(&c.MaxScanDays, "max-scan-days", 90, "largest lookback window a scan request may ask for (1..365)")
	fs.Float64Var(&c.SimilarityThreshold, "similarity-threshold", 0.55, "token overlap ratio above which two events merge (0..1 exclusive)")
	fs.IntVar(&c.DedupWindowHours, "dedup-window-hours", 72, "widest publication gap in hours for fuzzy event merging (>= 1)")
	fs.StringVar(&c.SignalsFile, "signals-file", "", "YAML file overriding the built-in classification signal tables (empty = built-ins)")
	fs.StringVar(&c.FeedsFile, "feeds-file", "", "YAML file replacing the built-in RSS feed list (empty = built-ins)")
	fs.StringVar(&c.IncidentDBEndpoint, "incidentdb-endpoint", "https://incidentdatabase.ai", "AI Incident Database base URL (empty = source disabled)")
	fs.StringVar(&c.ClaudeAPIKey, "claude-api-key", "", "Anthropic API key for scan briefings (empty = briefings disabled)")
	fs.StringVar(&c.ClaudeModel, "claude-model", "claude-sonnet-4-5", "Claude model used for scan briefings")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for scan digests (empty = notifications disabled)")
	fs.StringVar(&c.APIKey, "api-key", "", "key required in the X-API-Key header (empty = open API)")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// Scan window bounds
	if c.MaxScanDays <= 0 || c.MaxScanDays > 365 {
		errs = append(errs, fmt.Errorf("invalid MAX_SCAN_DAYS %d (must be 1..365)", c.MaxScanDays))
	}
	if c.ScanDays <= 0 || (c.MaxScanDays > 0 && c.ScanDays > c.MaxScanDays) {
		errs = append(errs, fmt.Errorf("invalid SCAN_DAYS %d (must be 1..MAX_SCAN_DAYS)", c.ScanDays))
	}

	// Dedup knobs
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold >= 1 {
		errs = append(errs, fmt.Errorf("invalid SIMILARITY_THRESHOLD %v (must be between 0 and 1 exclusive)", c.SimilarityThreshold))
	}
	if c.DedupWindowHours <= 0 {
		errs = append(errs, fmt.Errorf("invalid DEDUP_WINDOW_HOURS %d (must be >= 1)", c.DedupWindowHours))
	}

	// Briefings need a model once a key is configured
	if c.ClaudeAPIKey != "" && c.ClaudeModel == "" {
		errs = append(errs, errors.New("CLAUDE_MODEL is required when CLAUDE_API_KEY is set"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
