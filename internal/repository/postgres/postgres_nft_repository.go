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
	"go.opentelemetry.io/otel/attribute"
)

const nftColumns = `id, emoji, name, COALESCE(description, ''), price, rarity, COALESCE(gradient, '')`

type PostgresNFTRepository struct {
	db *sql.DB
}

func NewPostgresNFTRepository(db *sql.DB) *PostgresNFTRepository {
	return &PostgresNFTRepository{db: db}
}

func (r *PostgresNFTRepository) List(ctx context.Context, rarity models.Rarity) (nfts []models.NFT, err error) {
	ctx, span := otel.Tracer("nft-repository").Start(ctx, "ListNFTs")
	span.SetAttributes(attribute.String("rarity", string(rarity)))
	defer track(span, "ListNFTs", time.Now(), &err)

	var rows *sql.Rows
	if rarity == "" {
		rows, err = r.db.QueryContext(ctx, `SELECT `+nftColumns+` FROM nfts ORDER BY id`)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT `+nftColumns+` FROM nfts WHERE rarity = $1 ORDER BY id`, rarity)
	}
	if err != nil {
		slog.Error("failed to list nfts", "method", "List", "rarity", rarity, "error", err)
		return nil, fmt.Errorf("failed to list nfts: %w", err)
	}
	defer rows.Close()

	nfts = make([]models.NFT, 0)
	for rows.Next() {
		var nft models.NFT
		if err = scanNFT(rows, &nft); err != nil {
			slog.Error("failed to scan nft", "method", "List", "error", err)
			return nil, fmt.Errorf("failed to scan nft: %w", err)
		}
		nfts = append(nfts, nft)
	}
	if err = rows.Err(); err != nil {
		slog.Error("failed to iterate nfts", "method", "List", "error", err)
		return nil, fmt.Errorf("failed to list nfts: %w", err)
	}

	slog.Debug("nfts listed", "method", "List", "rarity", rarity, "count", len(nfts))
	return nfts, nil
}

func (r *PostgresNFTRepository) GetByID(ctx context.Context, id int64) (nft *models.NFT, err error) {
	ctx, span := otel.Tracer("nft-repository").Start(ctx, "GetNFTByID")
	span.SetAttributes(idAttr("nft_id", id))
	defer track(span, "GetNFTByID", time.Now(), &err)

	var row models.NFT
	err = scanNFT(r.db.QueryRowContext(ctx, `SELECT `+nftColumns+` FROM nfts WHERE id = $1`, id), &row)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrNFTNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get nft by id", "method", "GetByID", "nft_id", id, "error", err)
		return nil, fmt.Errorf("failed to get nft by id: %w", err)
	}
	return &row, nil
}

func (r *PostgresNFTRepository) Create(ctx context.Context, nft *models.NFT) (err error) {
	ctx, span := otel.Tracer("nft-repository").Start(ctx, "CreateNFT")
	defer track(span, "CreateNFT", time.Now(), &err)

	if nft == nil {
		err = pkgerrors.ErrNilNFT
		slog.Error("failed to create nft", "method", "Create", "error", err)
		return err
	}

	span.SetAttributes(
		attribute.String("name", nft.Name),
		attribute.String("rarity", string(nft.Rarity)),
		attribute.String("price", nft.Price.String()),
	)

	query := `INSERT INTO nfts (emoji, name, description, price, rarity, gradient) VALUES ($1, $2, $3, $4, $5, $6) RETURNING ` + nftColumns
	err = scanNFT(r.db.QueryRowContext(ctx, query, nft.Emoji, nft.Name, nft.Description, nft.Price, nft.Rarity, nft.Gradient), nft)
	if err != nil {
		slog.Error("failed to create nft", "method", "Create", "name", nft.Name, "rarity", nft.Rarity, "error", err)
		return fmt.Errorf("failed to create nft: %w", err)
	}

	slog.Info("nft created", "method", "Create", "nft_id", nft.ID, "name", nft.Name, "rarity", nft.Rarity, "price", nft.Price)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNFT(s scanner, nft *models.NFT) error {
	return s.Scan(&nft.ID, &nft.Emoji, &nft.Name, &nft.Description, &nft.Price, &nft.Rarity, &nft.Gradient)
}
