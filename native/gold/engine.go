package gold

import (
	"math/big"

	"animalrogue/core/events"
	"animalrogue/native/common"
	"animalrogue/native/token"
)

// Engine is the fungible "Gold" ledger. It delegates balance bookkeeping to a
// generic fungible token store and layers the admin-gated public surface plus
// the privileged internal mint/burn paths used by the market and game
// engines.
type Engine struct {
	token   *token.Fungible
	admins  common.AdminView
	emitter events.Emitter
}

// NewEngine wraps a fungible token store in the gold ledger surface.
func NewEngine(tok *token.Fungible) *Engine {
	return &Engine{token: tok, emitter: events.NoopEmitter{}}
}

// SetAdmins configures the admin membership view gating the public surface.
func (e *Engine) SetAdmins(view common.AdminView) { e.admins = view }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// Token returns the wrapped fungible store. Exposed for state snapshots.
func (e *Engine) Token() *token.Fungible { return e.token }

// Mint is the admin-gated public mint. Non-admin callers are declined with
// false, never a hard failure.
func (e *Engine) Mint(caller, to [20]byte, value *big.Int) bool {
	if common.RequireAdmin(e.admins, caller) != nil {
		return false
	}
	return e.MintInternal(to, value)
}

// Burn is the admin-gated public burn. Non-admin callers are declined with
// false; an unaffordable burn aborts the invocation.
func (e *Engine) Burn(caller, from [20]byte, value *big.Int) (bool, error) {
	if common.RequireAdmin(e.admins, caller) != nil {
		return false, nil
	}
	return e.BurnInternal(from, value)
}

// MintInternal bypasses the admin check for trusted in-process callers and
// emits gold.minted when the balance map changed.
func (e *Engine) MintInternal(to [20]byte, value *big.Int) bool {
	mutated := e.token.Mint(to, value)
	if mutated {
		e.emitter.Emit(Minted{To: to, Value: value})
	}
	return mutated
}

// BurnInternal bypasses the admin check and emits gold.burned when the
// balance map changed. An unaffordable burn leaves the ledger untouched.
func (e *Engine) BurnInternal(from [20]byte, value *big.Int) (bool, error) {
	mutated, err := e.token.Burn(from, value)
	if err != nil {
		return false, err
	}
	if mutated {
		e.emitter.Emit(Burned{From: from, Value: value})
	}
	return mutated, nil
}

// MintQuiet is the notify-suppressing internal mint used when the caller
// emits its own composite event.
func (e *Engine) MintQuiet(to [20]byte, value *big.Int) bool {
	return e.token.Mint(to, value)
}

// BurnQuiet is the notify-suppressing internal burn.
func (e *Engine) BurnQuiet(from [20]byte, value *big.Int) (bool, error) {
	return e.token.Burn(from, value)
}

// BalanceOf returns the account's gold balance, zero for unknown accounts.
func (e *Engine) BalanceOf(account [20]byte) *big.Int {
	return e.token.BalanceOf(account)
}

// TotalSupply returns the current gold supply.
func (e *Engine) TotalSupply() *big.Int {
	return e.token.TotalSupply()
}
