package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/honeynil/nft-marketplace/internal/config"
	"github.com/honeynil/nft-marketplace/internal/infrastructure/observability"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Open connects to Postgres with the pool limits from cfg and verifies the connection.
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	slog.Info("connected to Postgres", "max_open_conns", cfg.MaxOpenConns, "max_idle_conns", cfg.MaxIdleConns)
	return db, nil
}

// track records the call counter, duration and span status for one repository method.
// Call it deferred with a pointer to the method's named error.
func track(span trace.Span, method string, start time.Time, errp *error) {
	status := "success"
	if err := *errp; err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	observability.RepositoryCalls.WithLabelValues(method, status).Inc()
	observability.RepositoryDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	span.End()
}

func idAttr(key string, id int64) attribute.KeyValue {
	return attribute.Int64(key, id)
}
