package repository

import (
	"context"

	"github.com/honeynil/nft-marketplace/internal/models"
)

//go:generate mockgen -source=transaction_repository.go -destination=mocks/transaction_repository_mock.go -package=mocks

type TransactionRepository interface {
	// Purchase debits the buyer, records ownership and appends a purchase
	// transaction in a single database transaction.
	Purchase(ctx context.Context, userID, nftID int64) (*models.Transaction, error)
	GetStats(ctx context.Context) (*models.Stats, error)
	// ListByUser returns the transactions addressed to userID, newest first.
	ListByUser(ctx context.Context, userID int64) ([]models.UserTransaction, error)
}
