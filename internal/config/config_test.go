package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.HTTPAddr == "" || cfg.GRPCAddr == "" {
		t.Fatalf("default addrs must be set")
	}
	if cfg.Fsync != "interval" {
		t.Fatalf("default fsync = %q", cfg.Fsync)
	}
	if cfg.ReclaimAfterMs != 0 {
		t.Fatalf("reclaim must default to disabled")
	}
	if cfg.RecordPageSize != 50 {
		t.Fatalf("record page size default")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "qlogic.json")
	data := []byte(`{"httpAddr":"0.0.0.0:8000","fsync":"always","reclaimAfterMs":60000}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != "0.0.0.0:8000" {
		t.Fatalf("httpAddr = %q", cfg.HTTPAddr)
	}
	if cfg.Fsync != "always" {
		t.Fatalf("fsync = %q", cfg.Fsync)
	}
	if cfg.ReclaimAfterMs != 60000 {
		t.Fatalf("reclaimAfterMs = %d", cfg.ReclaimAfterMs)
	}
	// untouched fields keep defaults
	if cfg.GRPCAddr != Default().GRPCAddr {
		t.Fatalf("grpcAddr should keep default")
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "qlogic.yaml")
	data := []byte("httpAddr: 0.0.0.0:8001\nlogFormat: json\n")
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != "0.0.0.0:8001" {
		t.Fatalf("httpAddr = %q", cfg.HTTPAddr)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("logFormat = %q", cfg.LogFormat)
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	t.Setenv("QLOGIC_HTTP_ADDR", "127.0.0.1:9999")
	t.Setenv("QLOGIC_RECLAIM_AFTER_MS", "1500")
	t.Setenv("QLOGIC_LOG_LEVEL", "debug")
	FromEnv(&cfg)
	if cfg.HTTPAddr != "127.0.0.1:9999" {
		t.Fatalf("env http addr")
	}
	if cfg.ReclaimAfterMs != 1500 {
		t.Fatalf("env reclaim")
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("env log level")
	}
}
