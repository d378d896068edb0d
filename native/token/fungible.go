package token

import (
	"errors"
	"math/big"
)

// ErrInsufficientBalance indicates a debit larger than the account's balance.
var ErrInsufficientBalance = errors.New("token: insufficient balance")

// Fungible is the balance-per-account currency store the gold ledger
// delegates to. It maintains the conservation invariant
// totalSupply == sum of all balances through mint and burn alone.
type Fungible struct {
	name        string
	symbol      string
	decimals    uint8
	balances    map[[20]byte]*big.Int
	totalSupply *big.Int
}

// NewFungible constructs an empty fungible token store. Name, symbol and
// decimals are fixed for the lifetime of the store.
func NewFungible(name, symbol string, decimals uint8) *Fungible {
	return &Fungible{
		name:        name,
		symbol:      symbol,
		decimals:    decimals,
		balances:    make(map[[20]byte]*big.Int),
		totalSupply: big.NewInt(0),
	}
}

func (f *Fungible) Name() string    { return f.name }
func (f *Fungible) Symbol() string  { return f.symbol }
func (f *Fungible) Decimals() uint8 { return f.decimals }

// BalanceOf returns the balance of the account, zero for unknown accounts.
func (f *Fungible) BalanceOf(account [20]byte) *big.Int {
	if balance, ok := f.balances[account]; ok {
		return new(big.Int).Set(balance)
	}
	return big.NewInt(0)
}

// TotalSupply returns the current total supply.
func (f *Fungible) TotalSupply() *big.Int {
	return new(big.Int).Set(f.totalSupply)
}

// Mint credits the account and grows the total supply. It reports whether the
// balance map actually changed, which is false for zero-value mints.
func (f *Fungible) Mint(to [20]byte, value *big.Int) bool {
	if value == nil || value.Sign() <= 0 {
		return false
	}
	balance, ok := f.balances[to]
	if !ok {
		balance = big.NewInt(0)
	}
	f.balances[to] = new(big.Int).Add(balance, value)
	f.totalSupply = new(big.Int).Add(f.totalSupply, value)
	return true
}

// Burn debits the account and shrinks the total supply. The affordability
// check runs before any mutation; a failed burn leaves the store untouched.
func (f *Fungible) Burn(from [20]byte, value *big.Int) (bool, error) {
	if value == nil || value.Sign() <= 0 {
		return false, nil
	}
	balance, ok := f.balances[from]
	if !ok || balance.Cmp(value) < 0 {
		return false, ErrInsufficientBalance
	}
	f.balances[from] = new(big.Int).Sub(balance, value)
	f.totalSupply = new(big.Int).Sub(f.totalSupply, value)
	return true, nil
}

// Accounts returns every account with a recorded balance. Exposed for state
// snapshots.
func (f *Fungible) Accounts() [][20]byte {
	out := make([][20]byte, 0, len(f.balances))
	for account := range f.balances {
		out = append(out, account)
	}
	return out
}
