package token

import "math/big"

// MultiToken is the balance-per-(token,account) store the item ledger
// delegates to. Each token id keeps its own supply, and for each id
// totalSupply[id] == sum over accounts of balances[(id,account)].
type MultiToken struct {
	name        string
	symbol      string
	decimals    uint8
	balances    map[uint64]map[[20]byte]*big.Int
	totalSupply map[uint64]*big.Int
}

// NewMultiToken constructs an empty multi-token store.
func NewMultiToken(name, symbol string, decimals uint8) *MultiToken {
	return &MultiToken{
		name:        name,
		symbol:      symbol,
		decimals:    decimals,
		balances:    make(map[uint64]map[[20]byte]*big.Int),
		totalSupply: make(map[uint64]*big.Int),
	}
}

func (m *MultiToken) Name() string    { return m.name }
func (m *MultiToken) Symbol() string  { return m.symbol }
func (m *MultiToken) Decimals() uint8 { return m.decimals }

// BalanceOf returns the balance of account for the given token id, zero when
// either is unknown.
func (m *MultiToken) BalanceOf(account [20]byte, id uint64) *big.Int {
	if holders, ok := m.balances[id]; ok {
		if balance, ok := holders[account]; ok {
			return new(big.Int).Set(balance)
		}
	}
	return big.NewInt(0)
}

// TotalSupply returns the supply of a single token id.
func (m *MultiToken) TotalSupply(id uint64) *big.Int {
	if supply, ok := m.totalSupply[id]; ok {
		return new(big.Int).Set(supply)
	}
	return big.NewInt(0)
}

// Credit adds amount to (id, account) and to the id's supply.
func (m *MultiToken) Credit(to [20]byte, id uint64, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	holders, ok := m.balances[id]
	if !ok {
		holders = make(map[[20]byte]*big.Int)
		m.balances[id] = holders
	}
	balance, ok := holders[to]
	if !ok {
		balance = big.NewInt(0)
	}
	holders[to] = new(big.Int).Add(balance, amount)
	supply, ok := m.totalSupply[id]
	if !ok {
		supply = big.NewInt(0)
	}
	m.totalSupply[id] = new(big.Int).Add(supply, amount)
}

// Debit removes amount from (id, account) and from the id's supply. The
// affordability check runs before any mutation.
func (m *MultiToken) Debit(from [20]byte, id uint64, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	holders, ok := m.balances[id]
	if !ok {
		return ErrInsufficientBalance
	}
	balance, ok := holders[from]
	if !ok || balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	holders[from] = new(big.Int).Sub(balance, amount)
	m.totalSupply[id] = new(big.Int).Sub(m.totalSupply[id], amount)
	return nil
}

// TokenIDs returns every token id with a recorded supply. Exposed for state
// snapshots.
func (m *MultiToken) TokenIDs() []uint64 {
	out := make([]uint64, 0, len(m.totalSupply))
	for id := range m.totalSupply {
		out = append(out, id)
	}
	return out
}

// Holders returns every account holding a balance for the token id. Exposed
// for state snapshots.
func (m *MultiToken) Holders(id uint64) [][20]byte {
	holders, ok := m.balances[id]
	if !ok {
		return nil
	}
	out := make([][20]byte, 0, len(holders))
	for account := range holders {
		out = append(out, account)
	}
	return out
}
