// Package config loads server configuration from environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server needs to start.
type Config struct {
	// DataDir is where the ticket database lives. Defaults to
	// ~/.boardwalk when unset.
	DataDir string `env:"BOARDWALK_DATA_DIR"`

	// OperationTimeout bounds each lifecycle operation end to end.
	OperationTimeout time.Duration `env:"BOARDWALK_OP_TIMEOUT" envDefault:"20s"`

	// ProbeTimeout bounds a single remote repository existence check.
	ProbeTimeout time.Duration `env:"BOARDWALK_PROBE_TIMEOUT" envDefault:"10s"`

	// RemoteProbe enables the GitHub existence probe for migration
	// targets, in addition to the local store probe.
	RemoteProbe bool `env:"BOARDWALK_REMOTE_PROBE"`

	GitHubAPIURL string `env:"BOARDWALK_GITHUB_API_URL" envDefault:"https://api.github.com"`
	GitHubToken  string `env:"BOARDWALK_GITHUB_TOKEN"`
}

// Load reads configuration from the environment and fills in the
// data-dir default.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("config: resolve home dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".boardwalk")
	}
	if cfg.GitHubToken == "" {
		cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}
	return cfg, nil
}
