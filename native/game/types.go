package game

// GameStatus is the lifecycle state of a session. The engine only ever
// performs the Created -> Ended transition; InProgress exists for clients
// that want to mark sessions externally.
type GameStatus uint8

const (
	StatusCreated GameStatus = iota
	StatusInProgress
	StatusEnded
)

func (s GameStatus) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusInProgress:
		return "in_progress"
	case StatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// GameInfo is one game session record. Records are retained indefinitely,
// keyed by a monotonically increasing id.
type GameInfo struct {
	ID      uint64
	Stage   uint32
	Time    uint32
	Status  GameStatus
	Score   int64
	Creator [20]byte
}

// Settings is the singleton game configuration, admin-mutable field by field.
// The recovery interval is expressed in the same time units as the engine's
// clock (milliseconds in production).
type Settings struct {
	VerifierPublicKey       []byte
	GameTime                uint32
	MaxEarn                 uint64
	InitialMaxStamina       uint64
	StaminaRecoveryInterval uint64
}

// Player is one registered player record. LastStaminaCheckpoint == 0 is a
// sentinel meaning stamina has never been consumed and no recovery math is
// needed yet.
type Player struct {
	Name                  string
	AvatarID              uint32
	AvatarIcon            string
	HighestScore          int64
	GamesPlayed           uint32
	Stamina               uint64
	MaxStamina            uint64
	LastStaminaCheckpoint uint64
}

// PlayerEntry pairs a player record with its account for listings.
type PlayerEntry struct {
	Account [20]byte
	Player  Player
}

// LeaderboardEntry is one row of the highest-score projection.
type LeaderboardEntry struct {
	Account      [20]byte
	HighestScore int64
}
