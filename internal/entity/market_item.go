package entity

import (
	"fmt"
	"math/big"

	"github.com/gosimple/slug"
)

// MarketItem is the ledger record of a single asset.
type MarketItem struct {
	TokenId           uint64   `json:"tokenId"`
	Creator           string   `json:"creator"`
	CurrentOwner      string   `json:"currentOwner"`
	Price             *big.Int `json:"price"`
	RoyaltyFeePercent uint8    `json:"royaltyFeePercent"`
	IsListed          bool     `json:"isListed"`
}

const MaxRoyaltyFeePercent = 25

func (i MarketItem) Slug() string {
	return CreateItemSlug(i.TokenId)
}

func CreateItemSlug(tokenId uint64) string {
	return slug.Make(fmt.Sprintf("item-%d", tokenId))
}

// Valid reports whether the item satisfies the listing invariant: a listed item has a positive price.
func (i MarketItem) Valid() bool {
	if !i.IsListed {
		return true
	}

	return i.Price != nil && i.Price.Sign() > 0
}

func (i MarketItem) OwnedBy(account string) bool {
	return SameAccount(i.CurrentOwner, account)
}
