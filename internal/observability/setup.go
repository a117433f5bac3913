package observability

import (
	"context"
	"log/slog"

	"github.com/honeynil/nft-marketplace/internal/config"
	"github.com/honeynil/nft-marketplace/internal/infrastructure/observability"
)

// Setup configures logging and tracing for the process and returns the tracer shutdown hook.
func Setup(ctx context.Context, cfg *config.Config) func(context.Context) error {
	observability.InitLogger(cfg.LogLevel)

	shutdown, err := observability.InitTracing(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to init tracing, continuing without export", "error", err)
		return func(context.Context) error { return nil }
	}
	return shutdown
}
