package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	serverrun "github.com/lowmanm/q-logic/internal/cmd/server"
	cfgpkg "github.com/lowmanm/q-logic/internal/config"
	logpkg "github.com/lowmanm/q-logic/pkg/log"
)

func main() {
	level := os.Getenv("QLOGIC_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "qlogic",
		Short: "qlogic task queue and workforce engine CLI",
		Long:  "qlogic is a single-binary task queue and workforce state engine. This CLI manages the server and basic operations.",
	}

	// init
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				path = filepath.Join(cfgpkg.DefaultDataDir(), "config.json")
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			b, err := json.MarshalIndent(cfgpkg.Default(), "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, b, 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	initCmd.Flags().String("config", "", "Config file path (default <data-dir>/config.json)")
	rootCmd.AddCommand(initCmd)

	// start
	startCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the qlogic server (HTTP and gRPC)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			httpAddr, _ := cmd.Flags().GetString("http")
			grpcAddr, _ := cmd.Flags().GetString("grpc")
			configPath, _ := cmd.Flags().GetString("config")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")
			reclaimAfterMs, _ := cmd.Flags().GetInt64("reclaim-after-ms")

			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return err
			}
			cfgpkg.FromEnv(&cfg)
			if fsyncMode != "" {
				switch fsyncMode {
				case "always", "interval", "never":
					cfg.Fsync = fsyncMode
				default:
					return fmt.Errorf("invalid --fsync; use always|interval|never")
				}
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if logFormat != "" {
				cfg.LogFormat = logFormat
			}
			if reclaimAfterMs > 0 {
				cfg.ReclaimAfterMs = reclaimAfterMs
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := serverrun.Run(ctx, serverrun.Options{
				DataDir:  dataDir,
				HTTPAddr: httpAddr,
				GRPCAddr: grpcAddr,
				Config:   cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	startCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	startCmd.Flags().String("http", "", "HTTP listen address (default from config)")
	startCmd.Flags().String("grpc", "", "gRPC listen address (default from config)")
	startCmd.Flags().String("config", "", "Config file (JSON or YAML)")
	startCmd.Flags().String("fsync", "", "Fsync mode: always|interval|never")
	startCmd.Flags().String("log-level", os.Getenv("QLOGIC_LOG_LEVEL"), "Log level: debug|info|warn|error")
	startCmd.Flags().String("log-format", os.Getenv("QLOGIC_LOG_FORMAT"), "Log format: text|json")
	startCmd.Flags().Int64("reclaim-after-ms", 0, "Re-queue assignments older than this; 0 disables reclaim")
	rootCmd.AddCommand(startCmd)

	// status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get(apiURL() + "/v1/healthz")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			fmt.Printf("%s %s", resp.Status, body)
			return nil
		},
	}
	rootCmd.AddCommand(statusCmd)

	// enqueue
	enqueueCmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Enqueue a project's unqueued records",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, _ := cmd.Flags().GetString("project")
			if projectID == "" {
				return fmt.Errorf("--project is required")
			}
			resp, err := http.Post(fmt.Sprintf("%s/v1/projects/%s/enqueue", apiURL(), projectID), "application/json", bytes.NewReader(nil))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			fmt.Printf("%s %s", resp.Status, body)
			return nil
		},
	}
	enqueueCmd.Flags().String("project", "", "Project id")
	rootCmd.AddCommand(enqueueCmd)

	// stats
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show queue stats (one project, or all)",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, _ := cmd.Flags().GetString("project")
			url := apiURL() + "/v1/metrics/queue-stats"
			if projectID != "" {
				url = fmt.Sprintf("%s/v1/projects/%s/queue-stats", apiURL(), projectID)
			}
			resp, err := http.Get(url)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			fmt.Printf("%s %s", resp.Status, body)
			return nil
		},
	}
	statsCmd.Flags().String("project", "", "Project id (omit for all projects)")
	rootCmd.AddCommand(statsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("QLOGIC_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
