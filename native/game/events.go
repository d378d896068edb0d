package game

import (
	"math/big"
	"strconv"

	"animalrogue/crypto"
)

const (
	// EventTypeGameCreated is emitted when a session is allocated.
	EventTypeGameCreated = "game.created"
	// EventTypeGameUpdated is emitted when a session settles.
	EventTypeGameUpdated = "game.updated"
)

// GameCreated captures a new session.
type GameCreated struct {
	GameID  uint64
	Creator [20]byte
}

func (GameCreated) EventType() string { return EventTypeGameCreated }

func (e GameCreated) Attributes() map[string]string {
	return map[string]string{
		"gameId":  strconv.FormatUint(e.GameID, 10),
		"creator": crypto.NewAddress(e.Creator).String(),
	}
}

// GameUpdated captures a settled session. Earn carries the clamped amount
// that was actually minted.
type GameUpdated struct {
	GameID uint64
	Score  int64
	Earn   *big.Int
}

func (GameUpdated) EventType() string { return EventTypeGameUpdated }

func (e GameUpdated) Attributes() map[string]string {
	earn := "0"
	if e.Earn != nil {
		earn = e.Earn.String()
	}
	return map[string]string{
		"gameId": strconv.FormatUint(e.GameID, 10),
		"score":  strconv.FormatInt(e.Score, 10),
		"earn":   earn,
	}
}
