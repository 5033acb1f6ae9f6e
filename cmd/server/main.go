package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/mcoot/tallyledger/internal/api"
	"github.com/mcoot/tallyledger/internal/config"
	"github.com/mcoot/tallyledger/internal/factory"
	"github.com/mcoot/tallyledger/internal/services/credentials"
	redisstorage "github.com/mcoot/tallyledger/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Error("invalid timezone", slog.String("error", err.Error()))
		os.Exit(1)
	}
	engine, err := config.LoadEngine(cfg.EnginePath)
	if err != nil {
		logger.Error("failed to load engine config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	credCfg := credentials.DefaultConfig()
	if engine.PinIterations > 0 {
		credCfg.Iterations = engine.PinIterations
	}

	factoryCfg := factory.Config{
		Logger:         logger,
		StorageType:    cfg.StorageType,
		Location:       loc,
		AuditDir:       cfg.AuditDir(),
		BackupDir:      cfg.BackupDir(),
		Persons:        engine.Persons,
		Drinks:         engine.Drinks,
		Ledger:         engine.Ledger(),
		Credentials:    credCfg,
		BackupPolicies: engine.BackupPolicies(),
		BackupSchedule: cfg.BackupSchedule,
	}
	if cfg.StorageType == config.StorageRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Restore(ctx); err != nil {
		logger.Error("failed to restore ledger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	app.Start()

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Directory:      app.Directory,
		Ledger:         app.Ledger,
		Exporter:       app.Exporter,
		BackupPolicies: app.BackupPolicies,
		Hub:            app.Hub,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)
	server.OnShutdown(app.Hub.Close)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	if err := app.Stop(context.Background()); err != nil {
		logger.Error("failed to stop application", slog.String("error", err.Error()))
		exitCode = 1
	}

	logger.Info("server stopped")
	stop()
	os.Exit(exitCode)
}
