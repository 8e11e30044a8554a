package config

import (
	"os"
	"strconv"
)

// FromEnv overlays QLOGIC_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("QLOGIC_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("QLOGIC_GRPC_ADDR"); v != "" {
		cfg.GRPCAddr = v
	}
	if v := os.Getenv("QLOGIC_FSYNC"); v != "" {
		cfg.Fsync = v
	}
	if v := os.Getenv("QLOGIC_FSYNC_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FsyncIntervalMs = n
		}
	}
	if v := os.Getenv("QLOGIC_RECLAIM_AFTER_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.ReclaimAfterMs = n
		}
	}
	if v := os.Getenv("QLOGIC_RECLAIM_SWEEP_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.ReclaimSweepMs = n
		}
	}
	if v := os.Getenv("QLOGIC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("QLOGIC_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("QLOGIC_RECORD_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RecordPageSize = n
		}
	}
}
