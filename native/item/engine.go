package item

import (
	"errors"
	"math/big"

	"animalrogue/core/events"
	"animalrogue/native/common"
	"animalrogue/native/token"
)

var (
	// ErrZeroAddress rejects mints to the zero account.
	ErrZeroAddress = errors.New("item: mint to zero address")
	// ErrLengthMismatch rejects batches whose id and amount slices differ in
	// length.
	ErrLengthMismatch = errors.New("item: ids and amounts length mismatch")
	// ErrDuplicateTokenID rejects a batch mint naming the same id twice.
	ErrDuplicateTokenID = errors.New("item: duplicate token id in batch")
)

var zeroAddress [20]byte

// Engine is the multi-token "Item" ledger. It delegates balance bookkeeping
// to a generic multi-token store and owns the per-id metadata and the
// single-owner map for metadata-bearing ids. Owner bookkeeping is
// best-effort: a burn clears the owner entry even when the remaining balance
// is nonzero, and nothing enforces amount == 1 for metadata-bearing ids.
type Engine struct {
	token    *token.MultiToken
	metadata map[uint64]TokenMetadata
	owners   map[uint64][20]byte
	admins   common.AdminView
	emitter  events.Emitter
}

// NewEngine wraps a multi-token store in the item ledger surface.
func NewEngine(tok *token.MultiToken) *Engine {
	return &Engine{
		token:    tok,
		metadata: make(map[uint64]TokenMetadata),
		owners:   make(map[uint64][20]byte),
		emitter:  events.NoopEmitter{},
	}
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

// Token returns the wrapped multi-token store. Exposed for state snapshots.
func (e *Engine) Token() *token.MultiToken { return e.token }

// CreateTokenMetadata upserts metadata for a token id. Uniqueness of titles
// or content is not validated.
func (e *Engine) CreateTokenMetadata(caller [20]byte, id uint64, metadata TokenMetadata) error {
	if err := common.RequireAdmin(e.admins, caller); err != nil {
		return err
	}
	e.metadata[id] = metadata
	return nil
}

// Metadata returns the metadata registered for a token id, if any.
func (e *Engine) Metadata(id uint64) (TokenMetadata, bool) {
	meta, ok := e.metadata[id]
	return meta, ok
}

// OwnerOf returns the most recent recorded holder of a metadata-bearing id.
func (e *Engine) OwnerOf(id uint64) ([20]byte, bool) {
	owner, ok := e.owners[id]
	return owner, ok
}

// Mint is the admin-gated public single mint. Non-admin callers are declined
// with false, never a hard failure.
func (e *Engine) Mint(caller, to [20]byte, id uint64, amount *big.Int) (bool, error) {
	if common.RequireAdmin(e.admins, caller) != nil {
		return false, nil
	}
	if err := e.MintInternal(to, id, amount); err != nil {
		return false, err
	}
	return true, nil
}

// MintBatch is the admin-gated public batch mint.
func (e *Engine) MintBatch(caller, to [20]byte, ids []uint64, amounts []*big.Int) (bool, error) {
	if common.RequireAdmin(e.admins, caller) != nil {
		return false, nil
	}
	if err := e.MintBatchInternal(to, ids, amounts); err != nil {
		return false, err
	}
	return true, nil
}

// Burn is the admin-gated public single burn.
func (e *Engine) Burn(caller, from [20]byte, id uint64, amount *big.Int) (bool, error) {
	if common.RequireAdmin(e.admins, caller) != nil {
		return false, nil
	}
	if err := e.BurnInternal(from, id, amount); err != nil {
		return false, err
	}
	return true, nil
}

// BurnBatch is the admin-gated public batch burn.
func (e *Engine) BurnBatch(caller, from [20]byte, ids []uint64, amounts []*big.Int) (bool, error) {
	if common.RequireAdmin(e.admins, caller) != nil {
		return false, nil
	}
	if err := e.BurnBatchInternal(from, ids, amounts); err != nil {
		return false, err
	}
	return true, nil
}

// MintInternal bypasses the admin check for trusted in-process callers and
// emits one batched item.minted event.
func (e *Engine) MintInternal(to [20]byte, id uint64, amount *big.Int) error {
	return e.MintBatchInternal(to, []uint64{id}, []*big.Int{amount})
}

// MintBatchInternal validates the whole batch before crediting anything, then
// emits one batched item.minted event.
func (e *Engine) MintBatchInternal(to [20]byte, ids []uint64, amounts []*big.Int) error {
	if err := e.mint(to, ids, amounts); err != nil {
		return err
	}
	e.emitter.Emit(Minted{To: to, IDs: ids, Amounts: amounts})
	return nil
}

// MintQuiet is the notify-suppressing internal mint used when the caller
// emits its own composite event.
func (e *Engine) MintQuiet(to [20]byte, id uint64, amount *big.Int) error {
	return e.mint(to, []uint64{id}, []*big.Int{amount})
}

// BurnInternal bypasses the admin check and emits one batched item.burned
// event.
func (e *Engine) BurnInternal(from [20]byte, id uint64, amount *big.Int) error {
	return e.BurnBatchInternal(from, []uint64{id}, []*big.Int{amount})
}

// BurnBatchInternal pre-checks every (id, amount) pair before debiting any of
// them, then emits one batched item.burned event.
func (e *Engine) BurnBatchInternal(from [20]byte, ids []uint64, amounts []*big.Int) error {
	if err := e.burn(from, ids, amounts); err != nil {
		return err
	}
	e.emitter.Emit(Burned{From: from, IDs: ids, Amounts: amounts})
	return nil
}

// BurnBatchQuiet is the notify-suppressing internal burn used by session
// settlement, which emits its own composite event.
func (e *Engine) BurnBatchQuiet(from [20]byte, ids []uint64, amounts []*big.Int) error {
	return e.burn(from, ids, amounts)
}

func (e *Engine) mint(to [20]byte, ids []uint64, amounts []*big.Int) error {
	if to == zeroAddress {
		return ErrZeroAddress
	}
	if len(ids) != len(amounts) {
		return ErrLengthMismatch
	}
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return ErrDuplicateTokenID
		}
		seen[id] = struct{}{}
	}
	for i, id := range ids {
		if _, hasMeta := e.metadata[id]; hasMeta {
			e.owners[id] = to
		}
		e.token.Credit(to, id, amounts[i])
	}
	return nil
}

func (e *Engine) burn(from [20]byte, ids []uint64, amounts []*big.Int) error {
	if len(ids) != len(amounts) {
		return ErrLengthMismatch
	}
	// Pre-check pass: the batch mutates only if every id's total requested
	// amount is affordable. Repeated ids count once against the balance, so a
	// batch naming the same id twice cannot fail mid-mutation.
	totals := make(map[uint64]*big.Int, len(ids))
	for i, id := range ids {
		amount := amounts[i]
		if amount == nil || amount.Sign() <= 0 {
			continue
		}
		total, ok := totals[id]
		if !ok {
			total = new(big.Int)
			totals[id] = total
		}
		total.Add(total, amount)
	}
	for id, total := range totals {
		if e.token.BalanceOf(from, id).Cmp(total) < 0 {
			return token.ErrInsufficientBalance
		}
	}
	for i, id := range ids {
		delete(e.owners, id)
		if err := e.token.Debit(from, id, amounts[i]); err != nil {
			return err
		}
	}
	return nil
}

// BalanceOf returns the account's balance for a token id.
func (e *Engine) BalanceOf(account [20]byte, id uint64) *big.Int {
	return e.token.BalanceOf(account, id)
}

// TotalSupply returns the supply of a token id.
func (e *Engine) TotalSupply(id uint64) *big.Int {
	return e.token.TotalSupply(id)
}

// MetadataIDs returns every token id with registered metadata. Exposed for
// state snapshots.
func (e *Engine) MetadataIDs() []uint64 {
	out := make([]uint64, 0, len(e.metadata))
	for id := range e.metadata {
		out = append(out, id)
	}
	return out
}

// Owners returns a copy of the single-owner map. Exposed for state snapshots.
func (e *Engine) Owners() map[uint64][20]byte {
	out := make(map[uint64][20]byte, len(e.owners))
	for id, owner := range e.owners {
		out[id] = owner
	}
	return out
}

// RestoreMetadata replaces the metadata map from a snapshot.
func (e *Engine) RestoreMetadata(metadata map[uint64]TokenMetadata) {
	e.metadata = make(map[uint64]TokenMetadata, len(metadata))
	for id, meta := range metadata {
		e.metadata[id] = meta
	}
}

// RestoreOwners replaces the owners map from a snapshot.
func (e *Engine) RestoreOwners(owners map[uint64][20]byte) {
	e.owners = make(map[uint64][20]byte, len(owners))
	for id, owner := range owners {
		e.owners[id] = owner
	}
}
