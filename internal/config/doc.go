// Package config provides loading and environment overlay for the q-logic
// engine configuration. It exposes a Default() baseline, file loading from
// JSON or YAML, and a QLOGIC_* env overlay.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/qlogic.yaml"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	rt, _ := runtime.Open(runtime.Options{DataDir: dir, Config: cfg})
//	defer rt.Close()
package config
