package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/getdriftd/driftd/pkg/throttle"
)

// Config is the root driftd configuration.
type Config struct {
	// APIURL is the base URL of the API under discovery. The
	// DRIFTD_API_URL environment variable overrides it.
	APIURL string `json:"api_url" yaml:"api_url"`

	// AuthToken is sent as a bearer token on every sample request. The
	// DRIFTD_API_TOKEN environment variable overrides it.
	AuthToken string `json:"auth_token,omitempty" yaml:"auth_token,omitempty"`

	RateLimit   RateLimit   `json:"rate_limit" yaml:"rate_limit"`
	Exploration Exploration `json:"exploration" yaml:"exploration"`
	Diff        Diff        `json:"diff" yaml:"diff"`
	Specs       Specs       `json:"specs" yaml:"specs"`
	Output      Output      `json:"output" yaml:"output"`
	Log         Log         `json:"log" yaml:"log"`
}

// RateLimit mirrors throttle.Config with backoff durations in seconds,
// the form used in config files.
type RateLimit struct {
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	BurstLimit        int     `json:"burst_limit" yaml:"burst_limit"`
	BackoffBase       float64 `json:"backoff_base" yaml:"backoff_base"`
	BackoffMax        float64 `json:"backoff_max" yaml:"backoff_max"`
	BackoffMultiplier float64 `json:"backoff_multiplier" yaml:"backoff_multiplier"`
	RetryAttempts     int     `json:"retry_attempts" yaml:"retry_attempts"`
}

// ToThrottle converts the seconds-based config into throttle durations.
func (r RateLimit) ToThrottle() throttle.Config {
	return throttle.Config{
		RequestsPerSecond: r.RequestsPerSecond,
		BurstLimit:        r.BurstLimit,
		BackoffBase:       time.Duration(r.BackoffBase * float64(time.Second)),
		BackoffMax:        time.Duration(r.BackoffMax * float64(time.Second)),
		BackoffMultiplier: r.BackoffMultiplier,
		RetryAttempts:     r.RetryAttempts,
	}
}

// Exploration bounds which endpoints a sweep touches and how.
type Exploration struct {
	Namespaces         []string `json:"namespaces" yaml:"namespaces"`
	Methods            []string `json:"methods" yaml:"methods"`
	TimeoutSeconds     int      `json:"timeout_seconds" yaml:"timeout_seconds"`
	MaxEndpoints       int      `json:"max_endpoints_per_run" yaml:"max_endpoints_per_run"`
	SamplesPerEndpoint int      `json:"samples_per_endpoint" yaml:"samples_per_endpoint"`

	// SkipPatterns drops endpoints whose path contains any entry.
	SkipPatterns []string `json:"skip_patterns,omitempty" yaml:"skip_patterns,omitempty"`

	// Filter is an expr-lang expression over path, method, operation_id
	// and namespace; endpoints it evaluates false for are dropped.
	Filter string `json:"filter,omitempty" yaml:"filter,omitempty"`
}

// Timeout returns the per-request timeout as a duration.
func (e Exploration) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// Diff configures the schema comparison pass.
type Diff struct {
	// IgnorePaths suppresses diffs whose field path ends with any entry.
	IgnorePaths []string `json:"ignore_paths,omitempty" yaml:"ignore_paths,omitempty"`
}

// Specs points at the published contracts to compare against.
type Specs struct {
	Dir      string   `json:"dir" yaml:"dir"`
	Patterns []string `json:"patterns,omitempty" yaml:"patterns,omitempty"`
}

// Output controls where and how results are written.
type Output struct {
	Dir             string `json:"base_dir" yaml:"base_dir"`
	ReportDir       string `json:"report_dir" yaml:"report_dir"`
	PrettyPrint     bool   `json:"pretty_print" yaml:"pretty_print"`
	IncludeExamples bool   `json:"include_examples" yaml:"include_examples"`
}

// Log configures the process logger.
type Log struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		RateLimit: RateLimit{
			RequestsPerSecond: 5,
			BurstLimit:        10,
			BackoffBase:       1,
			BackoffMax:        60,
			BackoffMultiplier: 2,
			RetryAttempts:     3,
		},
		Exploration: Exploration{
			Namespaces:         []string{"system", "shared"},
			Methods:            []string{"GET", "OPTIONS"},
			TimeoutSeconds:     30,
			MaxEndpoints:       500,
			SamplesPerEndpoint: 1,
		},
		Specs: Specs{Dir: "specs/published"},
		Output: Output{
			Dir:             "specs/discovered",
			ReportDir:       "reports",
			PrettyPrint:     true,
			IncludeExamples: true,
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// ApplyEnv overlays the environment variables that take precedence over
// file values.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DRIFTD_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("DRIFTD_API_TOKEN"); v != "" {
		c.AuthToken = v
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
}

// Validate checks every field that would otherwise fail mid-sweep.
// APIURL is deliberately not required here: commands that do not touch
// the network run fine without it.
func (c *Config) Validate() error {
	if err := c.RateLimit.ToThrottle().Validate(); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	if c.Exploration.TimeoutSeconds <= 0 {
		return fmt.Errorf("exploration: timeout_seconds must be positive, got %d", c.Exploration.TimeoutSeconds)
	}
	if c.Exploration.MaxEndpoints < 1 {
		return fmt.Errorf("exploration: max_endpoints_per_run must be at least 1, got %d", c.Exploration.MaxEndpoints)
	}
	if c.Exploration.SamplesPerEndpoint < 1 {
		return fmt.Errorf("exploration: samples_per_endpoint must be at least 1, got %d", c.Exploration.SamplesPerEndpoint)
	}
	if len(c.Exploration.Namespaces) == 0 {
		return fmt.Errorf("exploration: at least one namespace is required")
	}
	if _, err := CompileFilter(c.Exploration.Filter); err != nil {
		return fmt.Errorf("exploration: %w", err)
	}
	return nil
}

// FilterEnv builds the variable set a filter expression sees.
func FilterEnv(path, method, operationID, namespace string) map[string]any {
	return map[string]any{
		"path":         path,
		"method":       method,
		"operation_id": operationID,
		"namespace":    namespace,
	}
}

// CompileFilter compiles a filter expression, returning (nil, nil) for
// the empty expression.
func CompileFilter(expression string) (*vm.Program, error) {
	if expression == "" {
		return nil, nil
	}
	program, err := expr.Compile(expression, expr.Env(FilterEnv("", "", "", "")), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expression, err)
	}
	return program, nil
}
