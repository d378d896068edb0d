package core

import (
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"animalrogue/core/events"
	"animalrogue/native/admin"
	"animalrogue/native/game"
	"animalrogue/native/gold"
	"animalrogue/native/item"
	"animalrogue/native/market"
	"animalrogue/native/token"
	"animalrogue/storage"
)

// Node is the top-level aggregate owning every engine's state. The original
// program kept each store as a process-global singleton protected by the
// host's one-invocation-at-a-time contract; here a single mutex reintroduces
// that serialization explicitly, so every operation runs to completion before
// the next one starts and no partial mutation is ever observable.
//
// Engines pre-validate before mutating, which is what makes a hard failure
// equivalent to "no state changed" without a transactional store underneath.
type Node struct {
	mu sync.Mutex

	admin  *admin.Engine
	gold   *gold.Engine
	item   *item.Engine
	market *market.Engine
	game   *game.Engine

	recorder *events.Recorder
	db       storage.Database
	logger   *slog.Logger
}

// NewNode seeds a node from the genesis spec, then restores a persisted
// snapshot if the database carries one. Construction is the single
// initialization point: once NewNode returns, every operation is reachable
// and the seed can never run again.
func NewNode(gen *Genesis, db storage.Database) (*Node, error) {
	if gen == nil {
		return nil, fmt.Errorf("genesis spec required")
	}
	deployer, err := gen.deployerAddress()
	if err != nil {
		return nil, err
	}
	settings, err := gen.gameSettings()
	if err != nil {
		return nil, err
	}
	prices, err := gen.marketPrices()
	if err != nil {
		return nil, err
	}

	recorder := events.NewRecorder()

	adminEngine := admin.NewEngine(deployer)
	goldEngine := gold.NewEngine(token.NewFungible(gen.Gold.Name, gen.Gold.Symbol, gen.Gold.Decimals))
	itemEngine := item.NewEngine(token.NewMultiToken(gen.Item.Name, gen.Item.Symbol, gen.Item.Decimals))
	marketEngine := market.NewEngine(goldEngine, itemEngine)
	gameEngine := game.NewEngine(settings, goldEngine, itemEngine)

	goldEngine.SetAdmins(adminEngine)
	itemEngine.SetAdmins(adminEngine)
	marketEngine.SetAdmins(adminEngine)
	gameEngine.SetAdmins(adminEngine)

	adminEngine.SetEmitter(recorder)
	goldEngine.SetEmitter(recorder)
	itemEngine.SetEmitter(recorder)
	marketEngine.SetEmitter(recorder)
	gameEngine.SetEmitter(recorder)

	itemEngine.RestoreMetadata(gen.itemMetadata())
	marketEngine.RestorePrices(prices)

	node := &Node{
		admin:    adminEngine,
		gold:     goldEngine,
		item:     itemEngine,
		market:   marketEngine,
		game:     gameEngine,
		recorder: recorder,
		db:       db,
		logger:   slog.Default(),
	}

	if db != nil {
		ok, err := db.Has(stateKey)
		if err != nil {
			return nil, fmt.Errorf("probe state snapshot: %w", err)
		}
		if ok {
			payload, err := db.Get(stateKey)
			if err != nil {
				return nil, fmt.Errorf("load state snapshot: %w", err)
			}
			if err := node.restore(payload); err != nil {
				return nil, err
			}
			node.logger.Info("state snapshot restored")
		}
	}
	return node, nil
}

// SetLogger overrides the node logger.
func (n *Node) SetLogger(logger *slog.Logger) {
	if logger != nil {
		n.logger = logger
	}
}

// Game exposes the game engine for deterministic-clock test setups.
func (n *Node) Game() *game.Engine { return n.game }

// Events returns recorded events after the given sequence number.
func (n *Node) Events(after uint64, limit int) []events.Recorded {
	return n.recorder.Events(after, limit)
}

// --- Access control ---

func (n *Node) IsAdmin(account [20]byte) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.admin.IsAdmin(account)
}

func (n *Node) AddAdmin(caller, account [20]byte) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ok := n.admin.AddAdmin(caller, account)
	if !ok {
		return false, nil
	}
	return true, n.persist()
}

func (n *Node) Admins() [][20]byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.admin.Admins()
}

func (n *Node) RemoveAdmin(caller, account [20]byte) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ok := n.admin.RemoveAdmin(caller, account)
	if !ok {
		return false, nil
	}
	return true, n.persist()
}

// --- Gold ledger ---

func (n *Node) GoldMint(caller, to [20]byte, value *big.Int) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ok := n.gold.Mint(caller, to, value)
	if !ok {
		return false, nil
	}
	return true, n.persist()
}

func (n *Node) GoldBurn(caller, from [20]byte, value *big.Int) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ok, err := n.gold.Burn(caller, from, value)
	if err != nil || !ok {
		return ok, err
	}
	return true, n.persist()
}

func (n *Node) GoldBalance(account [20]byte) *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gold.BalanceOf(account)
}

func (n *Node) GoldTotalSupply() *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gold.TotalSupply()
}

// --- Item ledger ---

func (n *Node) ItemCreateMetadata(caller [20]byte, id uint64, metadata item.TokenMetadata) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.item.CreateTokenMetadata(caller, id, metadata); err != nil {
		return err
	}
	return n.persist()
}

func (n *Node) ItemMint(caller, to [20]byte, id uint64, amount *big.Int) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ok, err := n.item.Mint(caller, to, id, amount)
	if err != nil || !ok {
		return ok, err
	}
	return true, n.persist()
}

func (n *Node) ItemMintBatch(caller, to [20]byte, ids []uint64, amounts []*big.Int) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ok, err := n.item.MintBatch(caller, to, ids, amounts)
	if err != nil || !ok {
		return ok, err
	}
	return true, n.persist()
}

func (n *Node) ItemBurn(caller, from [20]byte, id uint64, amount *big.Int) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ok, err := n.item.Burn(caller, from, id, amount)
	if err != nil || !ok {
		return ok, err
	}
	return true, n.persist()
}

func (n *Node) ItemBurnBatch(caller, from [20]byte, ids []uint64, amounts []*big.Int) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ok, err := n.item.BurnBatch(caller, from, ids, amounts)
	if err != nil || !ok {
		return ok, err
	}
	return true, n.persist()
}

func (n *Node) ItemBalance(account [20]byte, id uint64) *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.item.BalanceOf(account, id)
}

func (n *Node) ItemMetadata(id uint64) (item.TokenMetadata, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.item.Metadata(id)
}

// --- Market ---

func (n *Node) MarketSetPrice(caller [20]byte, tokenID uint64, price *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.market.SetPrice(caller, tokenID, price); err != nil {
		return err
	}
	return n.persist()
}

func (n *Node) MarketGetPrice(tokenID uint64) (*big.Int, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.market.GetPrice(tokenID)
}

func (n *Node) MarketBuy(buyer [20]byte, tokenID uint64, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.market.Buy(buyer, tokenID, amount); err != nil {
		return err
	}
	return n.persist()
}

// --- Game ---

func (n *Node) SetVerifierPublicKey(caller [20]byte, publicKey []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.game.SetVerifierPublicKey(caller, publicKey); err != nil {
		return err
	}
	return n.persist()
}

func (n *Node) SetGameTime(caller [20]byte, gameTime uint32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.game.SetGameTime(caller, gameTime); err != nil {
		return err
	}
	return n.persist()
}

func (n *Node) SetMaxEarn(caller [20]byte, maxEarn uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.game.SetMaxEarn(caller, maxEarn); err != nil {
		return err
	}
	return n.persist()
}

func (n *Node) SetInitialMaxStamina(caller [20]byte, stamina uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.game.SetInitialMaxStamina(caller, stamina); err != nil {
		return err
	}
	return n.persist()
}

func (n *Node) SetStaminaRecoveryRate(caller [20]byte, interval uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.game.SetStaminaRecoveryRate(caller, interval); err != nil {
		return err
	}
	return n.persist()
}

func (n *Node) GetSettings() game.Settings {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.game.GetSettings()
}

func (n *Node) RegisterPlayer(caller [20]byte, name string, avatarID uint32, avatarIcon string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.game.RegisterPlayer(caller, name, avatarID, avatarIcon)
	return n.persist()
}

func (n *Node) UpdatePlayerInfo(caller [20]byte, name *string, avatarID *uint32, avatarIcon *string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.game.UpdatePlayerInfo(caller, name, avatarID, avatarIcon)
	return n.persist()
}

func (n *Node) CreateGame(caller [20]byte) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	gameID, err := n.game.CreateGame(caller)
	if err != nil {
		return 0, err
	}
	return gameID, n.persist()
}

func (n *Node) UpdateGame(gameID uint64, score int64, earn *big.Int, signature []byte, tokenIDs []uint64, amounts []*big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.game.UpdateGame(gameID, score, earn, signature, tokenIDs, amounts); err != nil {
		return err
	}
	return n.persist()
}

func (n *Node) GetGame(gameID uint64) (game.GameInfo, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.game.GetGame(gameID)
}

func (n *Node) GetPlayer(account [20]byte) (game.Player, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.game.GetPlayer(account)
}

func (n *Node) GetPlayers() []game.PlayerEntry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.game.GetPlayers()
}

func (n *Node) GetLeaderboard() []game.LeaderboardEntry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.game.GetLeaderboard()
}

func (n *Node) GetPlayerStamina(caller [20]byte) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.game.GetPlayerStamina(caller)
}

func (n *Node) GetPlayerRecoveredBlock(caller [20]byte) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.game.GetPlayerRecoveredBlock(caller)
}
