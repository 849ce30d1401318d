package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"deadgrid/server/config"
	"deadgrid/server/handlers"
	"deadgrid/server/logging"
	"deadgrid/server/persistence"
	"deadgrid/server/services"
)

const pruneInterval = time.Minute

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("init logging: %v", err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Error("server stopped")
		stop()
		logCloser.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *logrus.Logger) error {
	log := logging.Component(logger, "server")

	db, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreKind, err)
	}
	defer db.Close()
	log.WithField("store", cfg.StoreKind).Info("persistence initialized")

	runs, err := services.NewRunService(db, cfg.LeaderboardTTL, logging.Component(logger, "runs"))
	if err != nil {
		return err
	}
	defer runs.Close()

	sessions := services.NewSessionService(cfg.Rules, runs, cfg.MaxSessions, logging.Component(logger, "sessions"))
	clients := handlers.NewClientManager(logging.Component(logger, "clients"))
	go sessions.RunPruner(ctx, pruneInterval, cfg.SessionIdleAfter)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: handlers.NewRouter(handlers.Deps{
			Sessions:       sessions,
			Runs:           runs,
			Clients:        clients,
			Log:            logging.Component(logger, "http"),
			AllowedOrigins: cfg.AllowedOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		// WebSocket handlers close their connections when ctx is cancelled.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr).Info("server starting")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Shutdown.
	clients.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (persistence.Storage, error) {
	switch cfg.StoreKind {
	case config.StorePostgres:
		return persistence.NewPostgresStore(ctx, cfg.PostgresDSN)
	case config.StoreSQLite:
		return persistence.NewSQLiteStore(ctx, cfg.SQLitePath)
	default:
		return persistence.NewJSONStore(cfg.JSONPath)
	}
}
