package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/papyrus/internal/config"
)

// Server timeouts. Write covers the slowest request, a PDF render.
const (
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 5 * time.Minute
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// runServe runs the HTTP API until ctx is cancelled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if err := applyServeFlags(flags, cfg); err != nil {
		return err
	}

	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.UploadDir} {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
	}

	logger := newLogger(env.Stderr, true, flags.common.verbose)
	defer func() { _ = logger.Sync() }()

	workers := flags.workers
	if workers == 0 {
		workers = envWorkers()
	}
	svc, err := newServices(cfg, logger, serviceOptions{
		workers:       workers,
		removeUploads: true,
		now:           env.Now,
	})
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(svc, env.Now),
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Server.Addr),
			zap.String("output_dir", cfg.Paths.OutputDir),
			zap.Int("compilers", svc.pool.Size()),
			zap.Bool("llm", svc.llmReady))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

// applyServeFlags lets flags override the loaded configuration.
func applyServeFlags(f *serveFlags, cfg *config.Config) error {
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.outputDir != "" {
		cfg.Paths.OutputDir = f.outputDir
	}
	if f.corsOrigin != "" {
		cfg.Server.CORSOrigin = f.corsOrigin
	}
	if err := applyTimeoutFlag(f.timeout, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}
