package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices and balances are rendered as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"

	// RarityAll disables the rarity filter when listing.
	RarityAll Rarity = "all"
)

// Rarities lists every rarity an NFT can be minted with.
var Rarities = []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}

func (r Rarity) Valid() bool {
	for _, known := range Rarities {
		if r == known {
			return true
		}
	}
	return false
}

// DefaultGradient is applied to minted NFTs that do not specify one.
const DefaultGradient = "bg-gradient-to-br from-blue-400 to-purple-500"

type NFT struct {
	ID          int64           `json:"id"`
	Emoji       string          `json:"emoji"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Rarity      Rarity          `json:"rarity"`
	Gradient    string          `json:"gradient"`
}

type OwnedNFT struct {
	NFT
	AcquiredAt time.Time `json:"acquired_at"`
}
