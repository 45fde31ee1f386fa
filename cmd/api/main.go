package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"repair-desk/internal/config"
	"repair-desk/internal/logger"
	"repair-desk/internal/server"
	"repair-desk/internal/tracing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Money is rendered as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

// run serves until SIGINT or SIGTERM, then drains in-flight requests and
// releases the store, redis and tracer
func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting repair desk API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Driver),
	)

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, log)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	srv, err := server.NewServer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer srv.Close()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		stop() // a second signal kills the process
		log.Info("Shutting down gracefully, press Ctrl+C again to force")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to flush traces", zap.Error(err))
	}

	log.Info("Graceful shutdown complete")
	return nil
}
