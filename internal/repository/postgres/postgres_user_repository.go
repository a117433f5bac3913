package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/honeynil/nft-marketplace/internal/models"
	pkgerrors "github.com/honeynil/nft-marketplace/pkg/errors"
	"go.opentelemetry.io/otel"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (user *models.User, err error) {
	ctx, span := otel.Tracer("user-repository").Start(ctx, "GetUserByID")
	span.SetAttributes(idAttr("user_id", id))
	defer track(span, "GetUserByID", time.Now(), &err)

	var u models.User
	err = r.db.QueryRowContext(ctx, `SELECT id, balance FROM users WHERE id = $1`, id).Scan(&u.ID, &u.Balance)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		err = pkgerrors.ErrUserNotFound
		return nil, err
	case err != nil:
		slog.Error("failed to get user by id", "method", "GetByID", "user_id", id, "error", err)
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

func (r *PostgresUserRepository) ListOwned(ctx context.Context, userID int64) (owned []models.OwnedNFT, err error) {
	ctx, span := otel.Tracer("user-repository").Start(ctx, "ListOwnedNFTs")
	span.SetAttributes(idAttr("user_id", userID))
	defer track(span, "ListOwnedNFTs", time.Now(), &err)

	query := `
		SELECT n.id, n.emoji, n.name, COALESCE(n.description, ''), n.price, n.rarity, COALESCE(n.gradient, ''), un.acquired_at
		FROM user_nfts un
		JOIN nfts n ON un.nft_id = n.id
		WHERE un.user_id = $1
		ORDER BY un.acquired_at, n.id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Error("failed to list owned nfts", "method", "ListOwned", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list owned nfts: %w", err)
	}
	defer rows.Close()

	owned = make([]models.OwnedNFT, 0)
	for rows.Next() {
		var o models.OwnedNFT
		err = rows.Scan(&o.ID, &o.Emoji, &o.Name, &o.Description, &o.Price, &o.Rarity, &o.Gradient, &o.AcquiredAt)
		if err != nil {
			slog.Error("failed to scan owned nft", "method", "ListOwned", "user_id", userID, "error", err)
			return nil, fmt.Errorf("failed to scan owned nft: %w", err)
		}
		owned = append(owned, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list owned nfts: %w", err)
	}

	slog.Debug("owned nfts listed", "method", "ListOwned", "user_id", userID, "count", len(owned))
	return owned, nil
}
