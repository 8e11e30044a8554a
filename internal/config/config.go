package config

import (
	"fmt"
	"os"
	"path/filepath"

	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	HTTPAddr string `json:"httpAddr" yaml:"httpAddr"`
	GRPCAddr string `json:"grpcAddr" yaml:"grpcAddr"`

	// Fsync is "always", "interval", or "never".
	Fsync           string `json:"fsync" yaml:"fsync"`
	FsyncIntervalMs int    `json:"fsyncIntervalMs" yaml:"fsyncIntervalMs"`

	// ReclaimAfterMs re-queues items stuck in assigned for longer than this.
	// Zero disables reclaim: an abandoned assignment is held forever.
	ReclaimAfterMs int64 `json:"reclaimAfterMs" yaml:"reclaimAfterMs"`
	// ReclaimSweepMs is the sweep interval when reclaim is enabled.
	ReclaimSweepMs int64 `json:"reclaimSweepMs" yaml:"reclaimSweepMs"`

	LogLevel  string `json:"logLevel" yaml:"logLevel"`
	LogFormat string `json:"logFormat" yaml:"logFormat"`

	// RecordPageSize bounds record listing pages.
	RecordPageSize int `json:"recordPageSize" yaml:"recordPageSize"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		HTTPAddr:        "127.0.0.1:8080",
		GRPCAddr:        "127.0.0.1:9090",
		Fsync:           "interval",
		FsyncIntervalMs: 5,
		ReclaimAfterMs:  0,
		ReclaimSweepMs:  30_000,
		LogLevel:        "info",
		LogFormat:       "text",
		RecordPageSize:  50,
	}
}

// Load reads configuration from a JSON or YAML file (by extension).
// If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}
