package gold

import (
	"math/big"

	"animalrogue/crypto"
)

const (
	// EventTypeMinted is emitted when a mint changed the balance map.
	EventTypeMinted = "gold.minted"
	// EventTypeBurned is emitted when a burn changed the balance map.
	EventTypeBurned = "gold.burned"
)

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// Minted captures a gold mint.
type Minted struct {
	To    [20]byte
	Value *big.Int
}

func (Minted) EventType() string { return EventTypeMinted }

func (e Minted) Attributes() map[string]string {
	return map[string]string{
		"to":    crypto.NewAddress(e.To).String(),
		"value": formatAmount(e.Value),
	}
}

// Burned captures a gold burn.
type Burned struct {
	From  [20]byte
	Value *big.Int
}

func (Burned) EventType() string { return EventTypeBurned }

func (e Burned) Attributes() map[string]string {
	return map[string]string{
		"from":  crypto.NewAddress(e.From).String(),
		"value": formatAmount(e.Value),
	}
}
