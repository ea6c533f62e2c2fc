package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/makkenzo/content-cms-api/internal/config"
	"github.com/makkenzo/content-cms-api/internal/storage/postgres"
	"github.com/makkenzo/content-cms-api/pkg/logger"
)

func main() {
	configPath := flag.String("config", "./configs/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("database.url is required")
	}

	appLogger, err := logger.NewZapLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := postgres.Migrate(ctx, cfg.Database.URL, command, appLogger); err != nil {
		appLogger.Sugar().Fatalf("Migration failed: %v", err)
	}
	appLogger.Sugar().Infof("Migration command %q finished", command)
}
