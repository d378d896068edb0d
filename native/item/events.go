package item

import (
	"math/big"
	"strconv"
	"strings"

	"animalrogue/crypto"
)

const (
	// EventTypeMinted is emitted once per mint call, batched over all ids.
	EventTypeMinted = "item.minted"
	// EventTypeBurned is emitted once per burn call, batched over all ids.
	EventTypeBurned = "item.burned"
)

func formatIDs(ids []uint64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return strings.Join(parts, ",")
}

func formatAmounts(amounts []*big.Int) string {
	parts := make([]string, len(amounts))
	for i, amount := range amounts {
		if amount == nil {
			parts[i] = "0"
			continue
		}
		parts[i] = amount.String()
	}
	return strings.Join(parts, ",")
}

// Minted captures one item mint call.
type Minted struct {
	To      [20]byte
	IDs     []uint64
	Amounts []*big.Int
}

func (Minted) EventType() string { return EventTypeMinted }

func (e Minted) Attributes() map[string]string {
	return map[string]string{
		"to":      crypto.NewAddress(e.To).String(),
		"ids":     formatIDs(e.IDs),
		"amounts": formatAmounts(e.Amounts),
	}
}

// Burned captures one item burn call.
type Burned struct {
	From    [20]byte
	IDs     []uint64
	Amounts []*big.Int
}

func (Burned) EventType() string { return EventTypeBurned }

func (e Burned) Attributes() map[string]string {
	return map[string]string{
		"from":    crypto.NewAddress(e.From).String(),
		"ids":     formatIDs(e.IDs),
		"amounts": formatAmounts(e.Amounts),
	}
}
