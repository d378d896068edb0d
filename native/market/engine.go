package market

import (
	"errors"
	"math/big"

	"animalrogue/core/events"
	"animalrogue/native/common"
	"animalrogue/native/token"
)

var (
	// ErrPriceNotSet aborts a buy for a token id with no quoted price.
	ErrPriceNotSet = errors.New("market: price not set for token id")
	// ErrNilLedger indicates the market was not wired to both ledgers.
	ErrNilLedger = errors.New("market: ledgers not configured")
	// ErrInvalidAmount aborts a buy for a nil, zero or negative amount.
	ErrInvalidAmount = errors.New("market: amount must be positive")
)

// goldLedger is the slice of the gold engine the market needs: a balance read
// and the notify-suppressing privileged burn.
type goldLedger interface {
	BalanceOf(account [20]byte) *big.Int
	BurnQuiet(from [20]byte, value *big.Int) (bool, error)
}

// itemLedger is the slice of the item engine the market needs: the
// notify-suppressing privileged mint.
type itemLedger interface {
	MintQuiet(to [20]byte, id uint64, amount *big.Int) error
}

// Engine quotes prices per token id and executes a buy as one coordinated
// gold debit / item credit. The buy path never emits the ledgers' own events;
// it emits a single composite market.purchased event instead.
type Engine struct {
	prices  map[uint64]*big.Int
	gold    goldLedger
	item    itemLedger
	admins  common.AdminView
	emitter events.Emitter
}

// NewEngine constructs a market with an empty price list.
func NewEngine(gold goldLedger, item itemLedger) *Engine {
	return &Engine{
		prices:  make(map[uint64]*big.Int),
		gold:    gold,
		item:    item,
		emitter: events.NoopEmitter{},
	}
}

// SetAdmins configures the admin membership view gating SetPrice.
func (e *Engine) SetAdmins(view common.AdminView) { e.admins = view }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetPrice upserts the gold price of a token id. Non-admin callers abort the
// invocation.
func (e *Engine) SetPrice(caller [20]byte, tokenID uint64, price *big.Int) error {
	if err := common.RequireAdmin(e.admins, caller); err != nil {
		return err
	}
	if price == nil {
		price = big.NewInt(0)
	}
	e.prices[tokenID] = new(big.Int).Set(price)
	e.emitter.Emit(PriceSet{TokenID: tokenID, Price: price})
	return nil
}

// GetPrice returns the quoted price for a token id. An absent price means
// the item is not purchasable.
func (e *Engine) GetPrice(tokenID uint64) (*big.Int, bool) {
	price, ok := e.prices[tokenID]
	if !ok {
		return nil, false
	}
	return new(big.Int).Set(price), true
}

// Buy debits price*amount gold from the buyer and credits amount of the token
// id, as one all-or-nothing operation. The affordability check runs before
// either ledger is touched.
func (e *Engine) Buy(buyer [20]byte, tokenID uint64, amount *big.Int) error {
	if e.gold == nil || e.item == nil {
		return ErrNilLedger
	}
	price, ok := e.prices[tokenID]
	if !ok {
		return ErrPriceNotSet
	}
	// A buy that moves nothing must not settle or emit.
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	totalCost := new(big.Int).Mul(price, amount)
	if e.gold.BalanceOf(buyer).Cmp(totalCost) < 0 {
		return token.ErrInsufficientBalance
	}
	if _, err := e.gold.BurnQuiet(buyer, totalCost); err != nil {
		return err
	}
	if err := e.item.MintQuiet(buyer, tokenID, amount); err != nil {
		return err
	}
	e.emitter.Emit(Purchased{Buyer: buyer, TokenID: tokenID, Amount: amount, Price: price})
	return nil
}

// Prices returns a copy of the price list. Exposed for state snapshots.
func (e *Engine) Prices() map[uint64]*big.Int {
	out := make(map[uint64]*big.Int, len(e.prices))
	for id, price := range e.prices {
		out[id] = new(big.Int).Set(price)
	}
	return out
}

// RestorePrices replaces the price list from a snapshot.
func (e *Engine) RestorePrices(prices map[uint64]*big.Int) {
	e.prices = make(map[uint64]*big.Int, len(prices))
	for id, price := range prices {
		if price == nil {
			price = big.NewInt(0)
		}
		e.prices[id] = new(big.Int).Set(price)
	}
}
