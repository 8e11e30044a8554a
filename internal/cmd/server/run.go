package serverrun

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	cfgpkg "github.com/lowmanm/q-logic/internal/config"
	"github.com/lowmanm/q-logic/internal/runtime"
	grpcserver "github.com/lowmanm/q-logic/internal/server/grpc"
	httpserver "github.com/lowmanm/q-logic/internal/server/http"
	"github.com/lowmanm/q-logic/internal/services/dispatch"
	logpkg "github.com/lowmanm/q-logic/pkg/log"
)

// Options for running the combined server process.
type Options struct {
	DataDir  string
	HTTPAddr string
	GRPCAddr string
	Config   cfgpkg.Config
}

// Run starts the HTTP and gRPC servers and blocks until ctx is cancelled or
// a termination signal arrives.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	if opts.HTTPAddr == "" {
		opts.HTTPAddr = opts.Config.HTTPAddr
	}
	if opts.GRPCAddr == "" {
		opts.GRPCAddr = opts.Config.GRPCAddr
	}

	storeDir := filepath.Join(opts.DataDir, "store")
	rt, err := runtime.Open(runtime.Options{DataDir: storeDir, Config: opts.Config})
	if err != nil {
		return err
	}
	defer rt.Close()

	procLogger, err := logpkg.ApplyConfig(&logpkg.Config{
		Level:  opts.Config.LogLevel,
		Format: opts.Config.LogFormat,
	})
	if err != nil {
		procLogger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}

	// Redirect stdlib logs (e.g. Pebble) to our logger
	logpkg.RedirectStdLog(procLogger)

	procLogger.Info("starting qlogic server",
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("grpc", opts.GRPCAddr),
		logpkg.Str("data_dir", storeDir),
		logpkg.Str("fsync", opts.Config.Fsync),
		logpkg.Int64("reclaim_after_ms", opts.Config.ReclaimAfterMs),
	)

	dispatchSvc := dispatch.NewWithLogger(rt, procLogger.With(logpkg.Component("dispatch")))
	dispatchSvc.StartReclaimer()
	defer dispatchSvc.StopReclaimer()

	gsrv := grpcserver.New(rt)
	hsrv := httpserver.New(rt)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := gsrv.ListenAndServe(sctx, opts.GRPCAddr); err != nil && sctx.Err() == nil {
			log.Printf("grpc error: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, opts.HTTPAddr); err != nil && sctx.Err() == nil {
			log.Printf("http error: %v", err)
		}
	}()

	<-sctx.Done()
	// shut servers down before closing the runtime to avoid use-after-close
	gsrv.Close()
	hsrv.Close()
	wg.Wait()
	return nil
}
