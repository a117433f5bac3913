package repository

import (
	"context"

	"github.com/honeynil/nft-marketplace/internal/models"
)

//go:generate mockgen -source=user_repository.go -destination=mocks/user_repository_mock.go -package=mocks

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ListOwned(ctx context.Context, userID int64) ([]models.OwnedNFT, error)
}
