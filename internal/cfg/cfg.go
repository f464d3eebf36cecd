package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// Config adds service-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	ClaudeAPIKey          string
	ClaudeModel           string
	SlackWebhookURL       string
	DetectIntervalSeconds int
	DetectSeeds           int
	DetectCatalogPath     string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.ClaudeAPIKey, "claude-api-key", "", "API key for accessing the Claude LLM provider (empty = analysis returns a configuration notice)")
	fs.StringVar(&c.ClaudeModel, "claude-model", "claude-sonnet-4-20250514", "Claude model to use")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for notifications")
	fs.IntVar(&c.DetectIntervalSeconds, "detect-interval-seconds", 15, "seconds between simulated alert emissions (0 = seed batch only)")
	fs.IntVar(&c.DetectSeeds, "detect-seeds", 3, "number of alerts emitted at startup (0..100)")
	fs.StringVar(&c.DetectCatalogPath, "detect-catalog", "", "path to a YAML signature catalog (empty = built-in catalog)")
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

	// Claude model is required even when the key is absent; the key itself
	// is optional and its absence is surfaced to operators in the analysis
	// text rather than refused at startup.
	if c.ClaudeModel == "" {
		errs = append(errs, errors.New("CLAUDE_MODEL is required"))
	}

	if c.DetectIntervalSeconds < 0 {
		errs = append(errs, fmt.Errorf("invalid DETECT_INTERVAL_SECONDS %d (must be >= 0)", c.DetectIntervalSeconds))
	}
	if c.DetectSeeds < 0 || c.DetectSeeds > 100 {
		errs = append(errs, fmt.Errorf("invalid DETECT_SEEDS %d (must be 0..100)", c.DetectSeeds))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
