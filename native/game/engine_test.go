package game

import (
	"errors"
	"math/big"
	"testing"

	"animalrogue/core/events"
	"animalrogue/crypto"
	"animalrogue/native/common"
	"animalrogue/native/gold"
	"animalrogue/native/item"
	"animalrogue/native/token"
)

type adminSet map[[20]byte]bool

func (s adminSet) IsAdmin(account [20]byte) bool { return s[account] }

func addr(b byte) [20]byte {
	var out [20]byte
	out[19] = b
	return out
}

type fixture struct {
	engine   *Engine
	gold     *gold.Engine
	item     *item.Engine
	recorder *events.Recorder
	verifier *crypto.PrivateKey
	now      uint64
}

const recoveryInterval = 1000

func newFixture(t *testing.T, initialStamina uint64) *fixture {
	t.Helper()
	verifier, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	goldEngine := gold.NewEngine(token.NewFungible("Game Gold", "GOLD", 2))
	itemEngine := item.NewEngine(token.NewMultiToken("GameItem", "Item", 0))
	settings := Settings{
		VerifierPublicKey:       verifier.PubKey().CompressedBytes(),
		GameTime:                60,
		MaxEarn:                 1000,
		InitialMaxStamina:       initialStamina,
		StaminaRecoveryInterval: recoveryInterval,
	}
	engine := NewEngine(settings, goldEngine, itemEngine)
	engine.SetAdmins(adminSet{addr(1): true})
	recorder := events.NewRecorder()
	engine.SetEmitter(recorder)

	f := &fixture{engine: engine, gold: goldEngine, item: itemEngine, recorder: recorder, verifier: verifier, now: 5_000_000}
	engine.SetNowFunc(func() uint64 { return f.now })
	return f
}

func (f *fixture) advance(units uint64) { f.now += units }

func (f *fixture) sign(t *testing.T, gameID uint64, score int64, earn *big.Int) []byte {
	t.Helper()
	sig, err := crypto.SignSettlement(f.verifier, gameID, score, earn)
	if err != nil {
		t.Fatalf("sign settlement: %v", err)
	}
	return sig
}

func TestSettingsSettersRequireAdmin(t *testing.T) {
	f := newFixture(t, 5)
	if err := f.engine.SetMaxEarn(addr(9), 10); !errors.Is(err, common.ErrNotAdmin) {
		t.Fatalf("err = %v, want not admin", err)
	}
	if got := f.engine.GetSettings().MaxEarn; got != 1000 {
		t.Fatalf("declined setter must not mutate, MaxEarn = %d", got)
	}
	if err := f.engine.SetMaxEarn(addr(1), 10); err != nil {
		t.Fatalf("SetMaxEarn: %v", err)
	}
	if got := f.engine.GetSettings().MaxEarn; got != 10 {
		t.Fatalf("MaxEarn = %d, want 10", got)
	}
}

func TestRegisterPlayerResetsRecord(t *testing.T) {
	f := newFixture(t, 5)
	f.engine.RegisterPlayer(addr(2), "ada", 3, "cat")

	player, ok := f.engine.GetPlayer(addr(2))
	if !ok || player.Stamina != 5 || player.MaxStamina != 5 || player.LastStaminaCheckpoint != 0 {
		t.Fatalf("unexpected record %+v", player)
	}

	if _, err := f.engine.CreateGame(addr(2)); err != nil {
		t.Fatalf("create game: %v", err)
	}
	// Re-registration silently discards history.
	f.engine.RegisterPlayer(addr(2), "ada", 3, "cat")
	player, _ = f.engine.GetPlayer(addr(2))
	if player.Stamina != 5 || player.GamesPlayed != 0 || player.LastStaminaCheckpoint != 0 {
		t.Fatalf("re-registration should reset, got %+v", player)
	}
}

func TestUpdatePlayerInfoPartialAndSilent(t *testing.T) {
	f := newFixture(t, 5)
	name := "grace"
	// Unregistered caller is a silent no-op.
	f.engine.UpdatePlayerInfo(addr(2), &name, nil, nil)
	if _, ok := f.engine.GetPlayer(addr(2)); ok {
		t.Fatalf("no record should appear")
	}

	f.engine.RegisterPlayer(addr(2), "ada", 3, "cat")
	icon := "owl"
	f.engine.UpdatePlayerInfo(addr(2), &name, nil, &icon)
	player, _ := f.engine.GetPlayer(addr(2))
	if player.Name != "grace" || player.AvatarID != 3 || player.AvatarIcon != "owl" {
		t.Fatalf("unexpected record %+v", player)
	}
}

func TestCreateGameRequiresRegistration(t *testing.T) {
	f := newFixture(t, 5)
	if _, err := f.engine.CreateGame(addr(2)); !errors.Is(err, ErrPlayerNotRegistered) {
		t.Fatalf("err = %v, want not registered", err)
	}
}

func TestCreateGameConsumesStamina(t *testing.T) {
	f := newFixture(t, 5)
	f.engine.RegisterPlayer(addr(2), "ada", 0, "")

	gameID, err := f.engine.CreateGame(addr(2))
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if gameID != 1 {
		t.Fatalf("gameID = %d, want 1", gameID)
	}
	player, _ := f.engine.GetPlayer(addr(2))
	if player.Stamina != 4 {
		t.Fatalf("stamina = %d, want 4", player.Stamina)
	}
	if player.LastStaminaCheckpoint != f.now {
		t.Fatalf("first consumption should anchor the checkpoint")
	}

	game, ok := f.engine.GetGame(gameID)
	if !ok || game.Status != StatusCreated || game.Time != 60 || game.Creator != addr(2) {
		t.Fatalf("unexpected game %+v", game)
	}
	recorded := f.recorder.Events(0, 0)
	if len(recorded) != 1 || recorded[0].Type != EventTypeGameCreated {
		t.Fatalf("expected one %s event, got %+v", EventTypeGameCreated, recorded)
	}
}

func TestStaminaExhaustion(t *testing.T) {
	f := newFixture(t, 1)
	f.engine.RegisterPlayer(addr(2), "ada", 0, "")

	if _, err := f.engine.CreateGame(addr(2)); err != nil {
		t.Fatalf("first game: %v", err)
	}
	// Elapsed < recovery interval: no stamina back yet.
	f.advance(recoveryInterval - 1)
	if _, err := f.engine.CreateGame(addr(2)); !errors.Is(err, ErrNotEnoughStamina) {
		t.Fatalf("err = %v, want not enough stamina", err)
	}
	// A failed attempt must not move the checkpoint.
	player, _ := f.engine.GetPlayer(addr(2))
	if player.LastStaminaCheckpoint != f.now-(recoveryInterval-1) {
		t.Fatalf("failed attempt moved checkpoint to %d", player.LastStaminaCheckpoint)
	}
}

func TestRecoveryFormulaExactness(t *testing.T) {
	f := newFixture(t, 5)
	f.engine.RegisterPlayer(addr(2), "ada", 0, "")

	// Burn down to 1 stamina: 4 games back to back.
	for i := 0; i < 4; i++ {
		if _, err := f.engine.CreateGame(addr(2)); err != nil {
			t.Fatalf("game %d: %v", i, err)
		}
	}
	player, _ := f.engine.GetPlayer(addr(2))
	if player.Stamina != 1 {
		t.Fatalf("stamina = %d, want 1", player.Stamina)
	}
	checkpoint := player.LastStaminaCheckpoint

	// After exactly 2R units, two points recover.
	f.advance(2 * recoveryInterval)
	stamina, err := f.engine.GetPlayerStamina(addr(2))
	if err != nil || stamina != 3 {
		t.Fatalf("projected stamina = (%d, %v), want 3", stamina, err)
	}

	// CreateGame must agree with the projection: 3 recovered -> 2 after the
	// deduction, and the checkpoint advances by exactly 2R (no remainder).
	if _, err := f.engine.CreateGame(addr(2)); err != nil {
		t.Fatalf("create game: %v", err)
	}
	player, _ = f.engine.GetPlayer(addr(2))
	if player.Stamina != 2 {
		t.Fatalf("stamina = %d, want 2", player.Stamina)
	}
	if player.LastStaminaCheckpoint != checkpoint+2*recoveryInterval {
		t.Fatalf("checkpoint = %d, want %d", player.LastStaminaCheckpoint, checkpoint+2*recoveryInterval)
	}
}

func TestRecoveryCarriesFractionalProgress(t *testing.T) {
	f := newFixture(t, 5)
	f.engine.RegisterPlayer(addr(2), "ada", 0, "")
	for i := 0; i < 3; i++ {
		if _, err := f.engine.CreateGame(addr(2)); err != nil {
			t.Fatalf("game %d: %v", i, err)
		}
	}
	checkpoint := f.now

	// 1.5 intervals: one point recovers, half an interval carries forward.
	f.advance(recoveryInterval + recoveryInterval/2)
	if _, err := f.engine.CreateGame(addr(2)); err != nil {
		t.Fatalf("create game: %v", err)
	}
	player, _ := f.engine.GetPlayer(addr(2))
	if player.LastStaminaCheckpoint != checkpoint+recoveryInterval {
		t.Fatalf("checkpoint = %d, want %d (fraction carried)", player.LastStaminaCheckpoint, checkpoint+recoveryInterval)
	}

	banked, err := f.engine.GetPlayerRecoveredBlock(addr(2))
	if err != nil || banked != recoveryInterval/2 {
		t.Fatalf("recovered block = (%d, %v), want %d", banked, err, recoveryInterval/2)
	}
}

func TestRecoveryCapResetsCheckpoint(t *testing.T) {
	f := newFixture(t, 2)
	f.engine.RegisterPlayer(addr(2), "ada", 0, "")
	if _, err := f.engine.CreateGame(addr(2)); err != nil {
		t.Fatalf("create game: %v", err)
	}

	// Far more elapsed time than needed: stamina caps and the checkpoint
	// re-syncs to now with no fractional carry.
	f.advance(10*recoveryInterval + 123)
	if _, err := f.engine.CreateGame(addr(2)); err != nil {
		t.Fatalf("create game: %v", err)
	}
	player, _ := f.engine.GetPlayer(addr(2))
	if player.Stamina != 1 {
		t.Fatalf("stamina = %d, want 1 (capped at 2, then one consumed)", player.Stamina)
	}
	if player.LastStaminaCheckpoint != f.now {
		t.Fatalf("checkpoint = %d, want %d", player.LastStaminaCheckpoint, f.now)
	}

	// At cap the banked progress projection reports zero.
	f2 := newFixture(t, 2)
	f2.engine.RegisterPlayer(addr(2), "ada", 0, "")
	f2.engine.CreateGame(addr(2))
	f2.advance(10 * recoveryInterval)
	banked, err := f2.engine.GetPlayerRecoveredBlock(addr(2))
	if err != nil || banked != 0 {
		t.Fatalf("recovered block = (%d, %v), want 0 at cap", banked, err)
	}
}

func TestUpdateGameSettlement(t *testing.T) {
	f := newFixture(t, 5)
	f.engine.RegisterPlayer(addr(2), "ada", 0, "")
	gameID, err := f.engine.CreateGame(addr(2))
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	f.item.MintQuiet(addr(2), 110, big.NewInt(10))
	f.gold.MintQuiet(addr(2), big.NewInt(7))

	earn := big.NewInt(50)
	sig := f.sign(t, gameID, 100, earn)
	if err := f.engine.UpdateGame(gameID, 100, earn, sig, []uint64{110}, []*big.Int{big.NewInt(10)}); err != nil {
		t.Fatalf("update game: %v", err)
	}

	if got := f.item.BalanceOf(addr(2), 110); got.Sign() != 0 {
		t.Fatalf("item balance = %s, want 0", got)
	}
	if got := f.gold.BalanceOf(addr(2)); got.Cmp(big.NewInt(57)) != 0 {
		t.Fatalf("gold balance = %s, want 57", got)
	}
	game, _ := f.engine.GetGame(gameID)
	if game.Status != StatusEnded || game.Score != 100 {
		t.Fatalf("unexpected game %+v", game)
	}
	player, _ := f.engine.GetPlayer(addr(2))
	if player.GamesPlayed != 1 || player.HighestScore != 100 {
		t.Fatalf("unexpected player %+v", player)
	}

	recorded := f.recorder.Events(0, 0)
	last := recorded[len(recorded)-1]
	if last.Type != EventTypeGameUpdated {
		t.Fatalf("last event = %s, want %s", last.Type, EventTypeGameUpdated)
	}
	if last.Attributes["score"] != "100" || last.Attributes["earn"] != "50" {
		t.Fatalf("unexpected payload %+v", last.Attributes)
	}
}

func TestUpdateGameClampsEarnButVerifiesOriginal(t *testing.T) {
	f := newFixture(t, 5)
	f.engine.RegisterPlayer(addr(2), "ada", 0, "")
	gameID, _ := f.engine.CreateGame(addr(2))

	// Signed over the unclamped 5000; only 1000 is minted.
	earn := big.NewInt(5000)
	sig := f.sign(t, gameID, 10, earn)
	if err := f.engine.UpdateGame(gameID, 10, earn, sig, nil, nil); err != nil {
		t.Fatalf("update game: %v", err)
	}
	if got := f.gold.BalanceOf(addr(2)); got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("gold = %s, want clamped 1000", got)
	}

	// A signature over the clamped value must not verify.
	sig = f.sign(t, gameID, 10, big.NewInt(1000))
	err := f.engine.UpdateGame(gameID, 10, earn, sig, nil, nil)
	if !errors.Is(err, crypto.ErrVerificationFailed) {
		t.Fatalf("err = %v, want verification failure", err)
	}
}

func TestUpdateGameInvalidSignatureLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t, 5)
	f.engine.RegisterPlayer(addr(2), "ada", 0, "")
	gameID, _ := f.engine.CreateGame(addr(2))
	f.item.MintQuiet(addr(2), 110, big.NewInt(10))

	earn := big.NewInt(50)
	sig := f.sign(t, gameID, 999, earn) // wrong score
	err := f.engine.UpdateGame(gameID, 100, earn, sig, []uint64{110}, []*big.Int{big.NewInt(10)})
	if !errors.Is(err, crypto.ErrVerificationFailed) {
		t.Fatalf("err = %v, want verification failure", err)
	}
	if got := f.item.BalanceOf(addr(2), 110); got.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("item balance mutated to %s", got)
	}
	if f.gold.BalanceOf(addr(2)).Sign() != 0 {
		t.Fatalf("gold balance mutated")
	}
	game, _ := f.engine.GetGame(gameID)
	if game.Status != StatusCreated || game.Score != 0 {
		t.Fatalf("game mutated: %+v", game)
	}
	player, _ := f.engine.GetPlayer(addr(2))
	if player.GamesPlayed != 0 {
		t.Fatalf("player mutated: %+v", player)
	}
}

func TestUpdateGameMissingKeyAndLengthMismatch(t *testing.T) {
	f := newFixture(t, 5)
	f.engine.RegisterPlayer(addr(2), "ada", 0, "")
	gameID, _ := f.engine.CreateGame(addr(2))
	earn := big.NewInt(1)
	sig := f.sign(t, gameID, 1, earn)

	if err := f.engine.UpdateGame(gameID, 1, earn, sig, []uint64{110}, nil); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("err = %v, want length mismatch", err)
	}

	f.engine.SetVerifierPublicKey(addr(1), nil)
	if err := f.engine.UpdateGame(gameID, 1, earn, sig, nil, nil); !errors.Is(err, ErrVerifierKeyNotSet) {
		t.Fatalf("err = %v, want verifier key not set", err)
	}
}

func TestUpdateGameUnknownIDIsSilent(t *testing.T) {
	f := newFixture(t, 5)
	if err := f.engine.UpdateGame(42, 1, big.NewInt(1), nil, nil, nil); err != nil {
		t.Fatalf("unknown game must be a silent no-op, got %v", err)
	}
}

func TestUpdateGameInsufficientItemsLeavesLedgersUntouched(t *testing.T) {
	f := newFixture(t, 5)
	f.engine.RegisterPlayer(addr(2), "ada", 0, "")
	gameID, _ := f.engine.CreateGame(addr(2))
	f.item.MintQuiet(addr(2), 110, big.NewInt(3))

	earn := big.NewInt(50)
	sig := f.sign(t, gameID, 100, earn)
	err := f.engine.UpdateGame(gameID, 100, earn, sig, []uint64{110}, []*big.Int{big.NewInt(10)})
	if !errors.Is(err, token.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want insufficient balance", err)
	}
	if got := f.item.BalanceOf(addr(2), 110); got.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("item balance mutated to %s", got)
	}
	if f.gold.BalanceOf(addr(2)).Sign() != 0 {
		t.Fatalf("gold minted despite failed burn")
	}
}

func TestUpdateGameRepeatedTokenIDBatchStaysAtomic(t *testing.T) {
	f := newFixture(t, 5)
	f.engine.RegisterPlayer(addr(2), "ada", 0, "")
	gameID, _ := f.engine.CreateGame(addr(2))
	f.item.MintQuiet(addr(2), 110, big.NewInt(5))

	// The signature covers only gameId/score/earn, so the burn list is caller
	// chosen. A batch naming the id twice, each entry affordable alone but not
	// together, must leave items and the game record untouched.
	earn := big.NewInt(50)
	sig := f.sign(t, gameID, 100, earn)
	err := f.engine.UpdateGame(gameID, 100, earn, sig,
		[]uint64{110, 110}, []*big.Int{big.NewInt(5), big.NewInt(5)})
	if !errors.Is(err, token.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want insufficient balance", err)
	}
	if got := f.item.BalanceOf(addr(2), 110); got.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("item balance mutated to %s, want 5", got)
	}
	if f.gold.BalanceOf(addr(2)).Sign() != 0 {
		t.Fatalf("gold minted despite failed burn")
	}
	if game, _ := f.engine.GetGame(gameID); game.Status != StatusCreated {
		t.Fatalf("game status = %v, want created", game.Status)
	}
}

func TestDoubleSettlementIsNotPrevented(t *testing.T) {
	f := newFixture(t, 5)
	f.engine.RegisterPlayer(addr(2), "ada", 0, "")
	gameID, _ := f.engine.CreateGame(addr(2))

	earn := big.NewInt(50)
	sig := f.sign(t, gameID, 100, earn)
	if err := f.engine.UpdateGame(gameID, 100, earn, sig, nil, nil); err != nil {
		t.Fatalf("first settlement: %v", err)
	}
	// Settling an already-Ended game runs the whole sequence again.
	if err := f.engine.UpdateGame(gameID, 100, earn, sig, nil, nil); err != nil {
		t.Fatalf("second settlement: %v", err)
	}
	if got := f.gold.BalanceOf(addr(2)); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("gold = %s, want 100 after double mint", got)
	}
	player, _ := f.engine.GetPlayer(addr(2))
	if player.GamesPlayed != 2 {
		t.Fatalf("gamesPlayed = %d, want 2", player.GamesPlayed)
	}
}

func TestLeaderboardSortedByScoreDescending(t *testing.T) {
	f := newFixture(t, 5)
	for i, score := range []int64{30, 10, 30, 50} {
		account := addr(byte(2 + i))
		f.engine.RegisterPlayer(account, "p", 0, "")
		gameID, err := f.engine.CreateGame(account)
		if err != nil {
			t.Fatalf("create game: %v", err)
		}
		earn := big.NewInt(0)
		sig := f.sign(t, gameID, score, earn)
		if err := f.engine.UpdateGame(gameID, score, earn, sig, nil, nil); err != nil {
			t.Fatalf("settle: %v", err)
		}
	}

	board := f.engine.GetLeaderboard()
	if len(board) != 4 {
		t.Fatalf("len = %d, want 4", len(board))
	}
	wantScores := []int64{50, 30, 30, 10}
	for i, want := range wantScores {
		if board[i].HighestScore != want {
			t.Fatalf("board[%d] = %d, want %d", i, board[i].HighestScore, want)
		}
	}
	// Equal scores fall back to ascending account order.
	if !lessAccount(board[1].Account, board[2].Account) {
		t.Fatalf("tie order not deterministic: %v before %v", board[1].Account, board[2].Account)
	}
}
