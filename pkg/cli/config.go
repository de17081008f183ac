package cli

import (
	"os"

	"github.com/getdriftd/driftd/pkg/config"
)

// loadConfig resolves the effective configuration for a command. An
// explicit path must exist; otherwise driftd.yaml in the working
// directory is used when present, and built-in defaults when not.
// Environment overrides apply in every case.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	var cfg *config.Config
	if path == "" {
		cfg = config.Default()
	} else {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.ApplyEnv()
	return cfg, nil
}
