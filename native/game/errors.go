package game

import "errors"

var (
	// ErrPlayerNotRegistered aborts operations that require a prior
	// RegisterPlayer call.
	ErrPlayerNotRegistered = errors.New("game: player not registered")
	// ErrNotEnoughStamina aborts CreateGame when stamina is exhausted even
	// after recovery.
	ErrNotEnoughStamina = errors.New("game: not enough stamina to start a game")
	// ErrVerifierKeyNotSet aborts settlement when no verifier public key has
	// been configured.
	ErrVerifierKeyNotSet = errors.New("game: verifier public key not set")
	// ErrLengthMismatch aborts settlement when token ids and amounts differ
	// in length.
	ErrLengthMismatch = errors.New("game: token ids and amounts length mismatch")
	// ErrPlayerNotFound aborts settlement when the game creator has no player
	// record.
	ErrPlayerNotFound = errors.New("game: player not found")
	// ErrNilLedger indicates the engine was not wired to both ledgers.
	ErrNilLedger = errors.New("game: ledgers not configured")
)
