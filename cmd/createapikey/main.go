package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/config"
	"github.com/makkenzo/content-cms-api/internal/handler/dto"
	"github.com/makkenzo/content-cms-api/internal/service"
	"github.com/makkenzo/content-cms-api/internal/storage/postgres"
	"github.com/makkenzo/content-cms-api/pkg/logger"
)

func main() {
	configPath := flag.String("config", "./configs/config.dev.yaml", "Path to configuration file")
	ownerFlag := flag.String("owner", "", "Owner (user id) the key acts for")
	scopesFlag := flag.String("scopes", "read:collections", "Comma separated scopes")
	description := flag.String("description", "", "Free-form description")
	ttl := flag.Duration("ttl", 0, "Optional lifetime, e.g. 720h")
	flag.Parse()

	owner, err := uuid.Parse(*ownerFlag)
	if err != nil {
		log.Fatalf("A valid -owner is required: %v", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewZapLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	ctx := context.Background()
	pool, err := postgres.NewPgxPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	req := &dto.CreateAPIKeyRequest{}
	for _, s := range strings.Split(*scopesFlag, ",") {
		if s = strings.TrimSpace(s); s != "" {
			req.Scopes = append(req.Scopes, s)
		}
	}
	if *description != "" {
		req.Description = description
	}
	if *ttl > 0 {
		exp := time.Now().Add(*ttl).UTC()
		req.ExpiresAt = &exp
	}

	svc := service.NewAPIKeyService(postgres.NewAPIKeyRepository(pool, appLogger), appLogger)
	key, plaintext, err := svc.CreateAPIKey(ctx, owner, req)
	if err != nil {
		log.Fatalf("Failed to create API key: %v", err)
	}

	fmt.Printf("Generated API Key (SAVE THIS securely, it is not stored):\n%s\n\n", plaintext)
	fmt.Printf("ID:     %s\n", key.ID)
	fmt.Printf("Hint:   %s\n", key.KeyHint)
	fmt.Printf("Scopes: %s\n", strings.Join(key.Scopes, ","))
}
