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
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type PostgresTransactionRepository struct {
	db *sql.DB
}

func NewPostgresTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

// Purchase runs the whole purchase in one database transaction. The balance
// check and the debit are a single conditional UPDATE, so two concurrent
// purchases cannot both spend the same funds.
func (r *PostgresTransactionRepository) Purchase(ctx context.Context, userID, nftID int64) (tx *models.Transaction, err error) {
	ctx, span := otel.Tracer("transaction-repository").Start(ctx, "Purchase")
	span.SetAttributes(idAttr("user_id", userID), idAttr("nft_id", nftID))
	defer track(span, "Purchase", time.Now(), &err)

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "method", "Purchase", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := dbTx.Rollback(); rbErr != nil && !stderrors.Is(rbErr, sql.ErrTxDone) {
			slog.Error("rollback failed", "method", "Purchase", "user_id", userID, "nft_id", nftID, "error", rbErr)
		}
	}()

	var price decimal.Decimal
	err = dbTx.QueryRowContext(ctx, `SELECT price FROM nfts WHERE id = $1`, nftID).Scan(&price)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrNFTNotFound
		slog.Warn("nft not found", "method", "Purchase", "nft_id", nftID)
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get nft price", "method", "Purchase", "nft_id", nftID, "error", err)
		return nil, fmt.Errorf("failed to get nft price: %w", err)
	}
	span.SetAttributes(attribute.String("price", price.String()))

	var balance decimal.Decimal
	err = dbTx.QueryRowContext(ctx,
		`UPDATE users SET balance = balance - $1 WHERE id = $2 AND balance >= $1 RETURNING balance`,
		price, userID,
	).Scan(&balance)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrInsufficientBalance
		slog.Warn("insufficient balance", "method", "Purchase", "user_id", userID, "nft_id", nftID, "price", price)
		return nil, err
	}
	if err != nil {
		slog.Error("failed to debit balance", "method", "Purchase", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to debit balance: %w", err)
	}

	_, err = dbTx.ExecContext(ctx,
		`INSERT INTO user_nfts (user_id, nft_id) VALUES ($1, $2) ON CONFLICT (user_id, nft_id) DO NOTHING`,
		userID, nftID,
	)
	if err != nil {
		slog.Error("failed to record ownership", "method", "Purchase", "user_id", userID, "nft_id", nftID, "error", err)
		return nil, fmt.Errorf("failed to record ownership: %w", err)
	}

	tx = &models.Transaction{
		ToUserID: userID,
		NFTID:    nftID,
		Type:     models.TypePurchase,
		Amount:   price,
	}
	err = dbTx.QueryRowContext(ctx,
		`INSERT INTO transactions (to_user_id, nft_id, transaction_type, amount) VALUES ($1, $2, 'purchase', $3) RETURNING id, created_at`,
		userID, nftID, price,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		slog.Error("failed to create transaction", "method", "Purchase", "user_id", userID, "nft_id", nftID, "error", err)
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if err = dbTx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "method", "Purchase", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("nft purchased", "method", "Purchase", "transaction_id", tx.ID, "user_id", userID, "nft_id", nftID, "amount", price, "balance", balance)
	return tx, nil
}

func (r *PostgresTransactionRepository) GetStats(ctx context.Context) (stats *models.Stats, err error) {
	ctx, span := otel.Tracer("transaction-repository").Start(ctx, "GetStats")
	defer track(span, "GetStats", time.Now(), &err)

	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM nfts),
			(SELECT COUNT(*) FROM transactions WHERE transaction_type = 'purchase'),
			(SELECT COUNT(*) FROM transactions)`

	var s models.Stats
	err = r.db.QueryRowContext(ctx, query).Scan(&s.TotalUsers, &s.TotalNFTs, &s.TotalSales, &s.TotalTransactions)
	if err != nil {
		slog.Error("failed to get stats", "method", "GetStats", "error", err)
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &s, nil
}

func (r *PostgresTransactionRepository) ListByUser(ctx context.Context, userID int64) (history []models.UserTransaction, err error) {
	ctx, span := otel.Tracer("transaction-repository").Start(ctx, "ListByUser")
	span.SetAttributes(idAttr("user_id", userID))
	defer track(span, "ListByUser", time.Now(), &err)

	query := `
		SELECT t.id, t.transaction_type, t.amount, t.created_at, COALESCE(n.emoji, ''), COALESCE(n.name, '') AS nft_name
		FROM transactions t
		LEFT JOIN nfts n ON n.id = t.nft_id
		WHERE t.to_user_id = $1
		ORDER BY t.created_at DESC, t.id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Error("failed to list transactions", "method", "ListByUser", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	history = make([]models.UserTransaction, 0)
	for rows.Next() {
		var t models.UserTransaction
		err = rows.Scan(&t.ID, &t.Type, &t.Amount, &t.CreatedAt, &t.Emoji, &t.NFTName)
		if err != nil {
			slog.Error("failed to scan transaction", "method", "ListByUser", "user_id", userID, "error", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		history = append(history, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	slog.Debug("transactions listed", "method", "ListByUser", "user_id", userID, "count", len(history))
	return history, nil
}
