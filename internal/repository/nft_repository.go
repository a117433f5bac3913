package repository

import (
	"context"

	"github.com/honeynil/nft-marketplace/internal/models"
)

//go:generate mockgen -source=nft_repository.go -destination=mocks/nft_repository_mock.go -package=mocks

type NFTRepository interface {
	// List returns NFTs ordered by id. An empty rarity returns every row.
	List(ctx context.Context, rarity models.Rarity) ([]models.NFT, error)
	GetByID(ctx context.Context, id int64) (*models.NFT, error)
	Create(ctx context.Context, nft *models.NFT) error
}
