package market

import (
	"math/big"
	"strconv"

	"animalrogue/crypto"
)

const (
	// EventTypePriceSet is emitted when an admin quotes a price.
	EventTypePriceSet = "market.price_set"
	// EventTypePurchased is emitted once per successful buy.
	EventTypePurchased = "market.purchased"
)

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// PriceSet captures a price upsert.
type PriceSet struct {
	TokenID uint64
	Price   *big.Int
}

func (PriceSet) EventType() string { return EventTypePriceSet }

func (e PriceSet) Attributes() map[string]string {
	return map[string]string{
		"tokenId": strconv.FormatUint(e.TokenID, 10),
		"price":   formatAmount(e.Price),
	}
}

// Purchased captures one completed buy.
type Purchased struct {
	Buyer   [20]byte
	TokenID uint64
	Amount  *big.Int
	Price   *big.Int
}

func (Purchased) EventType() string { return EventTypePurchased }

func (e Purchased) Attributes() map[string]string {
	return map[string]string{
		"buyer":   crypto.NewAddress(e.Buyer).String(),
		"tokenId": strconv.FormatUint(e.TokenID, 10),
		"amount":  formatAmount(e.Amount),
		"price":   formatAmount(e.Price),
	}
}
