package game

import (
	"math/big"
	"sort"
	"time"

	"animalrogue/core/events"
	"animalrogue/crypto"
	"animalrogue/native/common"
)

// goldLedger is the slice of the gold engine settlement needs: the
// notify-suppressing privileged mint.
type goldLedger interface {
	MintQuiet(to [20]byte, value *big.Int) bool
}

// itemLedger is the slice of the item engine settlement needs: the
// all-or-nothing notify-suppressing batch burn.
type itemLedger interface {
	BurnBatchQuiet(from [20]byte, ids []uint64, amounts []*big.Int) error
}

// Engine owns the game records, player records and settings. It is the only
// component that fans out to both ledgers in a single operation: settlement
// burns item stock and mints gold through the privileged quiet paths, then
// emits its own composite event.
type Engine struct {
	settings Settings
	players  map[[20]byte]*Player
	games    map[uint64]*GameInfo
	gold     goldLedger
	item     itemLedger
	admins   common.AdminView
	emitter  events.Emitter
	nowFn    func() uint64
}

// NewEngine constructs a game engine with the supplied settings.
func NewEngine(settings Settings, gold goldLedger, item itemLedger) *Engine {
	return &Engine{
		settings: settings,
		players:  make(map[[20]byte]*Player),
		games:    make(map[uint64]*GameInfo),
		gold:     gold,
		item:     item,
		emitter:  events.NoopEmitter{},
		nowFn:    func() uint64 { return uint64(time.Now().UnixMilli()) },
	}
}

// SetAdmins configures the admin membership view gating the settings setters.
func (e *Engine) SetAdmins(view common.AdminView) { e.admins = view }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source for deterministic testing.
func (e *Engine) SetNowFunc(now func() uint64) {
	if now == nil {
		e.nowFn = func() uint64 { return uint64(time.Now().UnixMilli()) }
		return
	}
	e.nowFn = now
}

// --- Settings ---

// SetVerifierPublicKey configures the settlement verifier key.
func (e *Engine) SetVerifierPublicKey(caller [20]byte, publicKey []byte) error {
	if err := common.RequireAdmin(e.admins, caller); err != nil {
		return err
	}
	key := make([]byte, len(publicKey))
	copy(key, publicKey)
	e.settings.VerifierPublicKey = key
	return nil
}

// SetGameTime configures the session duration handed to new games.
func (e *Engine) SetGameTime(caller [20]byte, gameTime uint32) error {
	if err := common.RequireAdmin(e.admins, caller); err != nil {
		return err
	}
	e.settings.GameTime = gameTime
	return nil
}

// SetMaxEarn configures the per-settlement reward cap.
func (e *Engine) SetMaxEarn(caller [20]byte, maxEarn uint64) error {
	if err := common.RequireAdmin(e.admins, caller); err != nil {
		return err
	}
	e.settings.MaxEarn = maxEarn
	return nil
}

// SetInitialMaxStamina configures the stamina granted at registration.
func (e *Engine) SetInitialMaxStamina(caller [20]byte, stamina uint64) error {
	if err := common.RequireAdmin(e.admins, caller); err != nil {
		return err
	}
	e.settings.InitialMaxStamina = stamina
	return nil
}

// SetStaminaRecoveryRate configures the time units needed per +1 stamina.
func (e *Engine) SetStaminaRecoveryRate(caller [20]byte, interval uint64) error {
	if err := common.RequireAdmin(e.admins, caller); err != nil {
		return err
	}
	e.settings.StaminaRecoveryInterval = interval
	return nil
}

// GetSettings returns a copy of the current settings.
func (e *Engine) GetSettings() Settings {
	out := e.settings
	out.VerifierPublicKey = make([]byte, len(e.settings.VerifierPublicKey))
	copy(out.VerifierPublicKey, e.settings.VerifierPublicKey)
	return out
}

// --- Players ---

// RegisterPlayer unconditionally (re)creates the caller's player record with
// full stamina. Re-registration discards prior stamina and score history.
func (e *Engine) RegisterPlayer(caller [20]byte, name string, avatarID uint32, avatarIcon string) {
	e.players[caller] = &Player{
		Name:                  name,
		AvatarID:              avatarID,
		AvatarIcon:            avatarIcon,
		Stamina:               e.settings.InitialMaxStamina,
		MaxStamina:            e.settings.InitialMaxStamina,
		LastStaminaCheckpoint: 0,
	}
}

// UpdatePlayerInfo updates only the provided fields. An unregistered caller
// is a silent no-op.
func (e *Engine) UpdatePlayerInfo(caller [20]byte, name *string, avatarID *uint32, avatarIcon *string) {
	player, ok := e.players[caller]
	if !ok {
		return
	}
	if name != nil {
		player.Name = *name
	}
	if avatarID != nil {
		player.AvatarID = *avatarID
	}
	if avatarIcon != nil {
		player.AvatarIcon = *avatarIcon
	}
}

// GetPlayer returns a copy of the player record for the account.
func (e *Engine) GetPlayer(account [20]byte) (Player, bool) {
	player, ok := e.players[account]
	if !ok {
		return Player{}, false
	}
	return *player, true
}

// GetPlayers returns every player record in ascending account order.
func (e *Engine) GetPlayers() []PlayerEntry {
	out := make([]PlayerEntry, 0, len(e.players))
	for account, player := range e.players {
		out = append(out, PlayerEntry{Account: account, Player: *player})
	}
	sort.Slice(out, func(i, j int) bool {
		return lessAccount(out[i].Account, out[j].Account)
	})
	return out
}

// GetLeaderboard projects all players to (account, highestScore) sorted by
// score descending. Ties fall back to ascending account order to keep the
// projection deterministic.
func (e *Engine) GetLeaderboard() []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(e.players))
	for account, player := range e.players {
		out = append(out, LeaderboardEntry{Account: account, HighestScore: player.HighestScore})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HighestScore != out[j].HighestScore {
			return out[i].HighestScore > out[j].HighestScore
		}
		return lessAccount(out[i].Account, out[j].Account)
	})
	return out
}

func lessAccount(a, b [20]byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// --- Stamina ---

// calculateStamina derives how much stamina has recovered since the player's
// checkpoint. It returns the whole units recovered, the fractional remainder
// in time units, and the current time.
func (e *Engine) calculateStamina(player *Player) (recovered, remainder, now uint64) {
	now = e.nowFn()
	interval := e.settings.StaminaRecoveryInterval
	if interval == 0 || now < player.LastStaminaCheckpoint {
		return 0, 0, now
	}
	elapsed := now - player.LastStaminaCheckpoint
	return elapsed / interval, elapsed % interval, now
}

// GetPlayerStamina projects the caller's stamina after lazy recovery without
// mutating checkpoint state. It agrees with what CreateGame would compute at
// the same instant.
func (e *Engine) GetPlayerStamina(caller [20]byte) (uint64, error) {
	player, ok := e.players[caller]
	if !ok {
		return 0, ErrPlayerNotRegistered
	}
	if player.LastStaminaCheckpoint == 0 {
		return player.Stamina, nil
	}
	recovered, _, _ := e.calculateStamina(player)
	return minUint64(player.Stamina+recovered, player.MaxStamina), nil
}

// GetPlayerRecoveredBlock reports the time units already banked toward the
// next stamina point, zero when the player is at cap or has never consumed.
func (e *Engine) GetPlayerRecoveredBlock(caller [20]byte) (uint64, error) {
	player, ok := e.players[caller]
	if !ok {
		return 0, ErrPlayerNotRegistered
	}
	if player.LastStaminaCheckpoint == 0 {
		return 0, nil
	}
	recovered, remainder, _ := e.calculateStamina(player)
	if minUint64(player.Stamina+recovered, player.MaxStamina) >= player.MaxStamina {
		return 0, nil
	}
	return e.settings.StaminaRecoveryInterval - remainder, nil
}

func minUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// --- Sessions ---

// CreateGame recovers the caller's stamina from the checkpoint, consumes one
// point, and allocates a new game record. The player record is only mutated
// once the stamina check has passed, so a failed call leaves no trace.
func (e *Engine) CreateGame(caller [20]byte) (uint64, error) {
	player, ok := e.players[caller]
	if !ok {
		return 0, ErrPlayerNotRegistered
	}

	stamina := player.Stamina
	checkpoint := player.LastStaminaCheckpoint
	if checkpoint == 0 {
		// Never consumed before: stamina is full, just anchor the clock.
		checkpoint = e.nowFn()
	} else {
		recovered, remainder, now := e.calculateStamina(player)
		stamina = minUint64(stamina+recovered, player.MaxStamina)
		if stamina >= player.MaxStamina {
			checkpoint = now
		} else {
			// Carry the fractional progress so partial recovery is not lost.
			checkpoint = now - remainder
		}
	}
	if stamina == 0 {
		return 0, ErrNotEnoughStamina
	}
	player.Stamina = stamina - 1
	player.LastStaminaCheckpoint = checkpoint

	gameID := uint64(len(e.games)) + 1
	e.games[gameID] = &GameInfo{
		ID:      gameID,
		Stage:   0,
		Time:    e.settings.GameTime,
		Status:  StatusCreated,
		Score:   0,
		Creator: caller,
	}
	e.emitter.Emit(GameCreated{GameID: gameID, Creator: caller})
	return gameID, nil
}

// GetGame returns a copy of the game record for the id.
func (e *Engine) GetGame(gameID uint64) (GameInfo, bool) {
	game, ok := e.games[gameID]
	if !ok {
		return GameInfo{}, false
	}
	return *game, true
}

// UpdateGame settles a session: it verifies the off-chain attestation over
// (gameId, score, unclamped earn), burns the listed item stock from the
// creator, mints the clamped earn in gold, and finalizes the game record. A
// nonexistent game id is a silent no-op. Every validation runs before any
// state is touched, so a hard failure leaves the game, both ledgers and the
// player record unchanged.
func (e *Engine) UpdateGame(gameID uint64, score int64, earn *big.Int, signature []byte, tokenIDs []uint64, amounts []*big.Int) error {
	game, ok := e.games[gameID]
	if !ok {
		return nil
	}
	if e.gold == nil || e.item == nil {
		return ErrNilLedger
	}
	if earn == nil {
		earn = big.NewInt(0)
	}
	newEarn := new(big.Int).Set(earn)
	maxEarn := new(big.Int).SetUint64(e.settings.MaxEarn)
	if newEarn.Cmp(maxEarn) > 0 {
		newEarn = maxEarn
	}

	// The signature covers the original, unclamped earn.
	if len(e.settings.VerifierPublicKey) == 0 {
		return ErrVerifierKeyNotSet
	}
	if err := crypto.VerifySettlement(e.settings.VerifierPublicKey, gameID, score, earn, signature); err != nil {
		return err
	}
	if len(tokenIDs) != len(amounts) {
		return ErrLengthMismatch
	}
	player, ok := e.players[game.Creator]
	if !ok {
		return ErrPlayerNotFound
	}

	// The batch burn pre-checks the whole batch before debiting any of it.
	if err := e.item.BurnBatchQuiet(game.Creator, tokenIDs, amounts); err != nil {
		return err
	}
	e.gold.MintQuiet(game.Creator, newEarn)

	game.Score = score
	game.Status = StatusEnded
	player.GamesPlayed++
	if score > player.HighestScore {
		player.HighestScore = score
	}
	e.emitter.Emit(GameUpdated{GameID: gameID, Score: score, Earn: newEarn})
	return nil
}

// --- Snapshots ---

// Games returns a copy of every game record. Exposed for state snapshots.
func (e *Engine) Games() map[uint64]GameInfo {
	out := make(map[uint64]GameInfo, len(e.games))
	for id, game := range e.games {
		out[id] = *game
	}
	return out
}

// Players returns a copy of every player record keyed by account. Exposed for
// state snapshots.
func (e *Engine) Players() map[[20]byte]Player {
	out := make(map[[20]byte]Player, len(e.players))
	for account, player := range e.players {
		out[account] = *player
	}
	return out
}

// Restore replaces settings, players and games from a snapshot.
func (e *Engine) Restore(settings Settings, players map[[20]byte]Player, games map[uint64]GameInfo) {
	e.settings = settings
	e.players = make(map[[20]byte]*Player, len(players))
	for account, player := range players {
		p := player
		e.players[account] = &p
	}
	e.games = make(map[uint64]*GameInfo, len(games))
	for id, game := range games {
		g := game
		e.games[id] = &g
	}
}
