package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the CLI/SDK configuration. Values are resolved in order:
// defaults, then the YAML config file, then environment variables.
type Config struct {
	ServerURL  string        `yaml:"server_url"`
	Timeout    time.Duration `yaml:"timeout"`
	SessionDir string        `yaml:"session_dir"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		ServerURL: "http://localhost:8080",
		Timeout:   30 * time.Second,
	}
}

// Load reads the config file at path, or ~/.skybook/config.yaml when path is
// empty. A missing file is not an error. A .env file in the working
// directory is loaded first so env overrides work in development.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, ".skybook", "config.yaml")
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if v := os.Getenv("SKYBOOK_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("SKYBOOK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid SKYBOOK_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("SKYBOOK_SESSION_DIR"); v != "" {
		cfg.SessionDir = v
	}

	return cfg, nil
}
