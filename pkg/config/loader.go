package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading and saving.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("configuration file is empty")
)

// Load reads configuration from a JSON or YAML file, overlays it onto
// the defaults, and validates the result. The format is detected from
// the file extension (.yaml and .yml for YAML, otherwise JSON). A file
// that nests everything under a top-level discovery key is unwrapped,
// so a section of a larger shared config file loads as-is.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	cfg := Default()
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		err = parseYAML(data, cfg)
	} else {
		err = parseJSON(data, cfg)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return cfg, nil
}

func parseYAML(data []byte, cfg *Config) error {
	var probe struct {
		Discovery yaml.Node `yaml:"discovery"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if !probe.Discovery.IsZero() {
		if err := probe.Discovery.Decode(cfg); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return nil
}

func parseJSON(data []byte, cfg *Config) error {
	if !json.Valid(data) {
		return ErrInvalidJSON
	}
	var probe struct {
		Discovery json.RawMessage `json:"discovery"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	if len(probe.Discovery) > 0 {
		data = probe.Discovery
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// Save writes the configuration to a file using an atomic rename. The
// format follows the file extension, YAML by default. Parent
// directories are created as needed.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}

	var data []byte
	var err error
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// StarterConfig is the annotated configuration written by driftd init.
// It spells out every default so a new project has one obvious place to
// tune behavior.
const StarterConfig = `# driftd configuration
api_url: ""      # Base URL of the API to sample, or set DRIFTD_API_URL
auth_token: ""   # Bearer token, or set DRIFTD_API_TOKEN

rate_limit:
  requests_per_second: 5
  burst_limit: 10
  backoff_base: 1       # seconds, first backoff after a throttle response
  backoff_max: 60       # seconds, backoff ceiling
  backoff_multiplier: 2
  retry_attempts: 3     # consecutive throttled retries before giving up

exploration:
  namespaces: [system, shared]
  methods: [GET, OPTIONS]
  timeout_seconds: 30
  max_endpoints_per_run: 500
  samples_per_endpoint: 1
  skip_patterns: []     # substrings; matching paths are never sampled
  filter: ""            # expression over path, method, operation_id, namespace

diff:
  ignore_paths: []      # path suffixes excluded from comparison

specs:
  dir: specs/published
  patterns: ["**/*.json", "**/*.yaml", "**/*.yml"]

output:
  base_dir: specs/discovered
  report_dir: reports
  pretty_print: true
  include_examples: true

log:
  level: info
  format: text
`

// WriteStarter writes the starter configuration for driftd init. An
// existing file is preserved unless force is set.
func WriteStarter(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, []byte(StarterConfig), 0o644)
}
