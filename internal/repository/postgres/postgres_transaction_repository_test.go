package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/honeynil/nft-marketplace/internal/models"
	repository "github.com/honeynil/nft-marketplace/internal/repository/postgres"
	pkgerrors "github.com/honeynil/nft-marketplace/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	selectPriceQuery   = `SELECT price FROM nfts WHERE id = $1`
	debitBalanceQuery  = `UPDATE users SET balance = balance - $1 WHERE id = $2 AND balance >= $1 RETURNING balance`
	insertOwnedQuery   = `INSERT INTO user_nfts (user_id, nft_id) VALUES ($1, $2) ON CONFLICT (user_id, nft_id) DO NOTHING`
	insertPurchaseStmt = `INSERT INTO transactions (to_user_id, nft_id, transaction_type, amount) VALUES ($1, $2, 'purchase', $3) RETURNING id, created_at`
)

func TestPostgresTransactionRepository_Purchase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresTransactionRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		createdAt := time.Now().UTC()
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(selectPriceQuery)).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow("500"))
		mock.ExpectQuery(regexp.QuoteMeta(debitBalanceQuery)).
			WithArgs("500", int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("500"))
		mock.ExpectExec(regexp.QuoteMeta(insertOwnedQuery)).
			WithArgs(int64(1), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta(insertPurchaseStmt)).
			WithArgs(int64(1), int64(2), "500").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(17, createdAt))
		mock.ExpectCommit()

		tx, err := repo.Purchase(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(17), tx.ID)
		assert.Equal(t, int64(1), tx.ToUserID)
		assert.Equal(t, int64(2), tx.NFTID)
		assert.Equal(t, models.TypePurchase, tx.Type)
		assert.Equal(t, "500", tx.Amount.String())
		assert.WithinDuration(t, createdAt, tx.CreatedAt, time.Second)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyOwned", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(selectPriceQuery)).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow("100"))
		mock.ExpectQuery(regexp.QuoteMeta(debitBalanceQuery)).
			WithArgs("100", int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("0"))
		mock.ExpectExec(regexp.QuoteMeta(insertOwnedQuery)).
			WithArgs(int64(1), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta(insertPurchaseStmt)).
			WithArgs(int64(1), int64(2), "100").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(18, time.Now()))
		mock.ExpectCommit()

		tx, err := repo.Purchase(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(18), tx.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NFTNotFound", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(selectPriceQuery)).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		tx, err := repo.Purchase(ctx, 1, 99)
		assert.Nil(t, tx)
		assert.ErrorIs(t, err, pkgerrors.ErrNFTNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(selectPriceQuery)).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow("5000"))
		mock.ExpectQuery(regexp.QuoteMeta(debitBalanceQuery)).
			WithArgs("5000", int64(1)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		tx, err := repo.Purchase(ctx, 1, 2)
		assert.Nil(t, tx)
		assert.ErrorIs(t, err, pkgerrors.ErrInsufficientBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("BeginError", func(t *testing.T) {
		mock.ExpectBegin().WillReturnError(fmt.Errorf("connection refused"))

		tx, err := repo.Purchase(ctx, 1, 2)
		assert.Nil(t, tx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("OwnershipError", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(selectPriceQuery)).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow("100"))
		mock.ExpectQuery(regexp.QuoteMeta(debitBalanceQuery)).
			WithArgs("100", int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("900"))
		mock.ExpectExec(regexp.QuoteMeta(insertOwnedQuery)).
			WithArgs(int64(1), int64(2)).
			WillReturnError(fmt.Errorf("database error"))
		mock.ExpectRollback()

		tx, err := repo.Purchase(ctx, 1, 2)
		assert.Nil(t, tx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to record ownership")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CommitError", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(selectPriceQuery)).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow("100"))
		mock.ExpectQuery(regexp.QuoteMeta(debitBalanceQuery)).
			WithArgs("100", int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("900"))
		mock.ExpectExec(regexp.QuoteMeta(insertOwnedQuery)).
			WithArgs(int64(1), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta(insertPurchaseStmt)).
			WithArgs(int64(1), int64(2), "100").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(19, time.Now()))
		mock.ExpectCommit().WillReturnError(fmt.Errorf("commit error"))

		tx, err := repo.Purchase(ctx, 1, 2)
		assert.Nil(t, tx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to commit transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTransactionRepository_GetStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresTransactionRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`(SELECT COUNT(*) FROM transactions WHERE transaction_type = 'purchase')`)).
			WillReturnRows(sqlmock.NewRows([]string{"users", "nfts", "sales", "transactions"}).AddRow(3, 12, 7, 9))

		stats, err := repo.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, &models.Stats{TotalUsers: 3, TotalNFTs: 12, TotalSales: 7, TotalTransactions: 9}, stats)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`(SELECT COUNT(*) FROM users)`)).
			WillReturnError(fmt.Errorf("database error"))

		stats, err := repo.GetStats(ctx)
		assert.Nil(t, stats)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get stats")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTransactionRepository_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresTransactionRepository(db)
	ctx := context.Background()
	columns := []string{"id", "transaction_type", "amount", "created_at", "emoji", "nft_name"}
	historyQuery := regexp.QuoteMeta(`LEFT JOIN nfts n ON n.id = t.nft_id`)

	t.Run("Success", func(t *testing.T) {
		newer := time.Now().UTC()
		older := newer.Add(-time.Hour)
		mock.ExpectQuery(historyQuery).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(9, "purchase", "500", newer, "💎", "Diamond").
				AddRow(4, "purchase", "100.50", older, "", ""))

		history, err := repo.ListByUser(ctx, 1)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, int64(9), history[0].ID)
		assert.Equal(t, models.TypePurchase, history[0].Type)
		assert.Equal(t, "500", history[0].Amount.String())
		assert.Equal(t, "💎", history[0].Emoji)
		assert.Equal(t, "Diamond", history[0].NFTName)
		assert.WithinDuration(t, newer, history[0].CreatedAt, time.Second)
		assert.Equal(t, "100.5", history[1].Amount.String())
		assert.Empty(t, history[1].Emoji)
		assert.Empty(t, history[1].NFTName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyHistory", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY t.created_at DESC, t.id DESC`)).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(columns))

		history, err := repo.ListByUser(ctx, 3)
		require.NoError(t, err)
		assert.NotNil(t, history)
		assert.Empty(t, history)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		mock.ExpectQuery(historyQuery).
			WithArgs(int64(1)).
			WillReturnError(fmt.Errorf("database error"))

		history, err := repo.ListByUser(ctx, 1)
		assert.Nil(t, history)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list transactions")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ScanError", func(t *testing.T) {
		mock.ExpectQuery(historyQuery).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(columns).AddRow("bad", "purchase", "1", time.Now(), "", ""))

		history, err := repo.ListByUser(ctx, 1)
		assert.Nil(t, history)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to scan transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
