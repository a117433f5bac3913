package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID        int64           `json:"id"`
	ToUserID  int64           `json:"to_user_id"`
	NFTID     int64           `json:"nft_id"`
	Type      TransactionType `json:"transaction_type"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

type TransactionType string

const (
	TypePurchase TransactionType = "purchase"
)

type Stats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalNFTs         int64 `json:"total_nfts"`
	TotalSales        int64 `json:"total_sales"`
	TotalTransactions int64 `json:"total_transactions"`
}

// UserTransaction is one row of a user's transaction history. Emoji and
// NFTName are empty when the NFT no longer exists.
type UserTransaction struct {
	ID        int64           `json:"id"`
	Type      TransactionType `json:"transaction_type"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	Emoji     string          `json:"emoji"`
	NFTName   string          `json:"nft_name"`
}
