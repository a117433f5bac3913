package models

import (
	"github.com/shopspring/decimal"
)

type User struct {
	ID      int64           `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

// UserProfile is the user row together with the NFTs the user owns and the
// transactions credited to the user, newest first.
type UserProfile struct {
	User         *User             `json:"user"`
	OwnedNFTs    []OwnedNFT        `json:"owned_nfts"`
	Transactions []UserTransaction `json:"transactions"`
}
