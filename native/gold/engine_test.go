package gold

import (
	"errors"
	"math/big"
	"testing"

	"animalrogue/core/events"
	"animalrogue/native/token"
)

type adminSet map[[20]byte]bool

func (s adminSet) IsAdmin(account [20]byte) bool { return s[account] }

func addr(b byte) [20]byte {
	var out [20]byte
	out[19] = b
	return out
}

func newTestEngine() (*Engine, *events.Recorder) {
	engine := NewEngine(token.NewFungible("Game Gold", "GOLD", 2))
	engine.SetAdmins(adminSet{addr(1): true})
	recorder := events.NewRecorder()
	engine.SetEmitter(recorder)
	return engine, recorder
}

func TestMintGatedOnAdmin(t *testing.T) {
	engine, recorder := newTestEngine()

	if engine.Mint(addr(9), addr(2), big.NewInt(100)) {
		t.Fatalf("non-admin mint must be declined")
	}
	if engine.BalanceOf(addr(2)).Sign() != 0 {
		t.Fatalf("declined mint must not mutate")
	}
	if !engine.Mint(addr(1), addr(2), big.NewInt(100)) {
		t.Fatalf("admin mint should succeed")
	}
	if got := engine.BalanceOf(addr(2)); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("balance = %s, want 100", got)
	}
	recorded := recorder.Events(0, 0)
	if len(recorded) != 1 || recorded[0].Type != EventTypeMinted {
		t.Fatalf("expected one %s event, got %+v", EventTypeMinted, recorded)
	}
	if recorded[0].Attributes["value"] != "100" {
		t.Fatalf("event value = %q", recorded[0].Attributes["value"])
	}
}

func TestBurnInsufficientBalanceIsHardFailure(t *testing.T) {
	engine, recorder := newTestEngine()
	engine.MintQuiet(addr(2), big.NewInt(50))

	_, err := engine.Burn(addr(1), addr(2), big.NewInt(51))
	if !errors.Is(err, token.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want insufficient balance", err)
	}
	if got := engine.BalanceOf(addr(2)); got.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("failed burn must not mutate, balance = %s", got)
	}
	if recorder.Len() != 0 {
		t.Fatalf("failed burn must not emit")
	}
}

func TestBurnNonAdminDeclined(t *testing.T) {
	engine, _ := newTestEngine()
	engine.MintQuiet(addr(2), big.NewInt(50))

	mutated, err := engine.Burn(addr(9), addr(2), big.NewInt(10))
	if err != nil || mutated {
		t.Fatalf("non-admin burn must be declined without error, got (%v, %v)", mutated, err)
	}
	if got := engine.BalanceOf(addr(2)); got.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("declined burn must not mutate, balance = %s", got)
	}
}

func TestSupplyConservation(t *testing.T) {
	engine, _ := newTestEngine()

	engine.Mint(addr(1), addr(2), big.NewInt(300))
	engine.Mint(addr(1), addr(3), big.NewInt(200))
	if _, err := engine.Burn(addr(1), addr(2), big.NewInt(120)); err != nil {
		t.Fatalf("burn: %v", err)
	}

	sum := new(big.Int).Add(engine.BalanceOf(addr(2)), engine.BalanceOf(addr(3)))
	if engine.TotalSupply().Cmp(sum) != 0 {
		t.Fatalf("total supply %s != balance sum %s", engine.TotalSupply(), sum)
	}
	if engine.TotalSupply().Cmp(big.NewInt(380)) != 0 {
		t.Fatalf("total supply = %s, want 380", engine.TotalSupply())
	}
}

func TestZeroValueMintDoesNotEmit(t *testing.T) {
	engine, recorder := newTestEngine()
	if engine.Mint(addr(1), addr(2), big.NewInt(0)) {
		t.Fatalf("zero mint should report unchanged")
	}
	if recorder.Len() != 0 {
		t.Fatalf("zero mint must not emit")
	}
}
