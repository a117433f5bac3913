package kafka

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventNFTPurchased EventType = "nft.purchased"
	EventNFTMinted    EventType = "nft.minted"
)

// Event is the JSON payload published for every committed marketplace change.
type Event struct {
	Type          EventType       `json:"type"`
	TransactionID int64           `json:"transaction_id,omitempty"`
	UserID        int64           `json:"user_id,omitempty"`
	NFTID         int64           `json:"nft_id"`
	Rarity        string          `json:"rarity,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
