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

	"surya-backend/internal/auth"
	"surya-backend/internal/config"
	"surya-backend/internal/database"
	"surya-backend/internal/handlers"
	"surya-backend/internal/logger"
	"surya-backend/internal/report"
	"surya-backend/internal/storage"
	"surya-backend/internal/store"
	"surya-backend/internal/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	os.Exit(start(logger.New))
}

// start runs the server and returns the process exit code. Logs are flushed
// before it returns.
func start(newLogger func(level, format, service string) (*zap.Logger, error)) int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	log, err := newLogger(cfg.LogLevel, cfg.LogFormat, "surya-backend")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	db, err := database.Open(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	entities := store.New(db)

	docs, err := newDocumentStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	gate, err := auth.NewGate(cfg)
	if err != nil {
		return err
	}
	if !gate.Configured() {
		log.Warn("ADMIN_USER/ADMIN_PASS not set; login and protected routes will reject every request")
	}
	if !cfg.AdminAuthRequired {
		log.Warn("ADMIN_AUTH_REQUIRED=false; write routes are open to anyone who can reach the server")
	}

	generator := report.NewGenerator(entities, token.NewIssuer(entities), docs, report.NewRenderer(), cfg.BaseURL, cfg.LabName, log)
	h := handlers.NewHandlers(entities, generator, docs, gate, cfg.AdminAuthRequired, log)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:              ":" + cfg.ListenPort,
		Handler:           handlers.NewRouter(cfg, log, h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", zap.String("address", server.Addr), zap.String("base_url", cfg.BaseURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	log.Info("shutting down, waiting for in-flight requests")
	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server exiting")
	return nil
}

func newDocumentStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.Store, error) {
	if cfg.StorageBackend == config.StorageMinio {
		return storage.NewMinio(ctx, cfg.Minio, log)
	}
	return storage.NewLocalStore(cfg.StorageDir, log)
}
