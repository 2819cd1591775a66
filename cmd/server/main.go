package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gambition/combat-server-go/internal/config"
	"github.com/gambition/combat-server-go/internal/repository"
	"github.com/gambition/combat-server-go/internal/run"
	"github.com/gambition/combat-server-go/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting combat server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Persistence is optional: without a database URL, runs play without an
	// archive and without meta progression.
	var sessions run.SessionStore
	var meta run.MetaStore
	if cfg.Database.URL != "" {
		db, dbErr := repository.NewDB(ctx, cfg.Database, logger)
		if dbErr != nil {
			logger.Fatal("failed to connect to database", zap.Error(dbErr))
		}
		defer db.Close()
		if schemaErr := db.EnsureSchema(ctx); schemaErr != nil {
			logger.Fatal("failed to ensure schema", zap.Error(schemaErr))
		}
		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)
		sessions = repository.NewSessionArchive(db)
		meta = repository.NewPlayerRepository(db)
	} else {
		logger.Warn("no database configured; session archive and meta progression disabled")
	}

	runMgr := run.NewManager(run.Config{
		PlayerHP:     cfg.Combat.PlayerHP,
		HandSize:     cfg.Combat.HandSize,
		DiscardLimit: cfg.Combat.DiscardLimit,
		Stages:       cfg.Combat.RunStages,
	}, sessions, meta, logger)
	logger.Info("run manager initialized", zap.Int("stages", cfg.Combat.RunStages))

	wsServer := server.New(cfg, runMgr, version, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: wsServer.Handler(),
	}

	go func() {
		logger.Info("starting websocket server", zap.String("address", cfg.Server.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("websocket server error", zap.Error(serveErr))
		}
	}()

	logger.Info("combat server initialized",
		zap.String("version", version),
		zap.String("address", cfg.Server.Address),
		zap.Int("max_sessions", cfg.Server.MaxSessions),
	)

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("combat server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("unknown log level: %s", cfg.Level)
	}

	var zapCfg zap.Config
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
