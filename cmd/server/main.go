package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpsarena/rps-arena-go/internal/api"
	"github.com/rpsarena/rps-arena-go/internal/config"
	"github.com/rpsarena/rps-arena-go/internal/factory"
	"github.com/rpsarena/rps-arena-go/internal/services/auth"
	redisstorage "github.com/rpsarena/rps-arena-go/internal/storage/redis"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (optional)")
	flag.Parse()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Build factory config
	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		DatabaseURL: cfg.DatabaseURL,
		AuthConfig: auth.Config{
			Secret:        cfg.JWTSecret,
			TokenDuration: cfg.TokenDuration,
		},
		BroadcastInterval: cfg.BroadcastInterval,
	}
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start the periodic global broadcasts
	if err := app.Broadcaster.Start(); err != nil {
		logger.Error("failed to start broadcaster", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Broadcaster.Stop(); err != nil {
			logger.Warn("broadcaster stop failed", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		Storage:         app.Storage,
		AuthService:     app.AuthService,
		MatchController: app.MatchController,
		RankingService:  app.RankingService,
		Broadcaster:     app.Broadcaster,
		HubManager:      app.HubManager,
		GlobalHub:       app.GlobalHub,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
