// Command invoke runs a single cloud-function style invocation: it reads the
// event JSON from stdin and prints the response JSON to stdout.
package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"

	"github.com/honeynil/nft-marketplace/internal/config"
	"github.com/honeynil/nft-marketplace/internal/handler"
	infraobs "github.com/honeynil/nft-marketplace/internal/infrastructure/observability"
	core "github.com/honeynil/nft-marketplace/internal/repository/postgres"
	service "github.com/honeynil/nft-marketplace/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	// stdout carries the response, so logs go to stderr.
	slog.SetDefault(infraobs.NewLogger(os.Stderr, cfg.LogLevel))

	var event handler.Request
	if err := json.NewDecoder(os.Stdin).Decode(&event); err != nil {
		log.Fatalf("Failed to decode event: %v", err)
	}

	ctx := context.Background()
	db, err := core.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer db.Close()

	svc := service.NewMarketplaceService(
		core.NewPostgresNFTRepository(db),
		core.NewPostgresUserRepository(db),
		core.NewPostgresTransactionRepository(db),
		nil, nil, cfg.CacheTTL,
	)

	resp := handler.NewHandler(svc).Handle(ctx, &event)
	if err := json.NewEncoder(os.Stdout).Encode(resp); err != nil {
		log.Fatalf("Failed to encode response: %v", err)
	}
}
