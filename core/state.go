package core

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"animalrogue/crypto"
	"animalrogue/native/game"
	"animalrogue/native/item"
)

// stateKey is the storage slot the node's full state snapshot lives under.
var stateKey = []byte("animalrogue/state")

// stateSnapshot is the JSON shape of the whole core state, written after
// every mutating invocation and restored on start. Addresses are bech32
// strings and amounts decimal strings so snapshots stay diffable.
type stateSnapshot struct {
	Admins       []string                      `json:"admins"`
	GoldBalances map[string]string             `json:"goldBalances"`
	ItemBalances map[string]map[string]string  `json:"itemBalances"`
	ItemMetadata map[string]item.TokenMetadata `json:"itemMetadata"`
	ItemOwners   map[string]string             `json:"itemOwners"`
	Prices       map[string]string             `json:"prices"`
	Settings     settingsSnapshot              `json:"settings"`
	Players      map[string]playerSnapshot     `json:"players"`
	Games        map[string]gameSnapshot       `json:"games"`
}

type settingsSnapshot struct {
	VerifierPublicKey       string `json:"verifierPublicKey"`
	GameTime                uint32 `json:"gameTime"`
	MaxEarn                 uint64 `json:"maxEarn"`
	InitialMaxStamina       uint64 `json:"initialMaxStamina"`
	StaminaRecoveryInterval uint64 `json:"staminaRecoveryInterval"`
}

type playerSnapshot struct {
	Name                  string `json:"name"`
	AvatarID              uint32 `json:"avatarId"`
	AvatarIcon            string `json:"avatarIcon"`
	HighestScore          int64  `json:"highestScore"`
	GamesPlayed           uint32 `json:"gamesPlayed"`
	Stamina               uint64 `json:"stamina"`
	MaxStamina            uint64 `json:"maxStamina"`
	LastStaminaCheckpoint uint64 `json:"lastStaminaCheckpoint"`
}

type gameSnapshot struct {
	ID      uint64 `json:"id"`
	Stage   uint32 `json:"stage"`
	Time    uint32 `json:"time"`
	Status  uint8  `json:"status"`
	Score   int64  `json:"score"`
	Creator string `json:"creator"`
}

func formatID(id uint64) string { return strconv.FormatUint(id, 10) }

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token id %q: %w", s, err)
	}
	return id, nil
}

func parseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

func parseAccount(s string) ([20]byte, error) {
	addr, err := crypto.DecodeAddress(s)
	if err != nil {
		return [20]byte{}, err
	}
	return addr.Bytes(), nil
}

func (n *Node) snapshot() *stateSnapshot {
	snap := &stateSnapshot{
		GoldBalances: make(map[string]string),
		ItemBalances: make(map[string]map[string]string),
		ItemMetadata: make(map[string]item.TokenMetadata),
		ItemOwners:   make(map[string]string),
		Prices:       make(map[string]string),
		Players:      make(map[string]playerSnapshot),
		Games:        make(map[string]gameSnapshot),
	}
	for _, admin := range n.admin.Admins() {
		snap.Admins = append(snap.Admins, crypto.NewAddress(admin).String())
	}
	goldToken := n.gold.Token()
	for _, account := range goldToken.Accounts() {
		if balance := goldToken.BalanceOf(account); balance.Sign() > 0 {
			snap.GoldBalances[crypto.NewAddress(account).String()] = balance.String()
		}
	}
	itemToken := n.item.Token()
	for _, id := range itemToken.TokenIDs() {
		holders := make(map[string]string)
		for _, account := range itemToken.Holders(id) {
			if balance := itemToken.BalanceOf(account, id); balance.Sign() > 0 {
				holders[crypto.NewAddress(account).String()] = balance.String()
			}
		}
		if len(holders) > 0 {
			snap.ItemBalances[formatID(id)] = holders
		}
	}
	for _, id := range n.item.MetadataIDs() {
		meta, _ := n.item.Metadata(id)
		snap.ItemMetadata[formatID(id)] = meta
	}
	for id, owner := range n.item.Owners() {
		snap.ItemOwners[formatID(id)] = crypto.NewAddress(owner).String()
	}
	for id, price := range n.market.Prices() {
		snap.Prices[formatID(id)] = price.String()
	}
	settings := n.game.GetSettings()
	snap.Settings = settingsSnapshot{
		VerifierPublicKey:       hex.EncodeToString(settings.VerifierPublicKey),
		GameTime:                settings.GameTime,
		MaxEarn:                 settings.MaxEarn,
		InitialMaxStamina:       settings.InitialMaxStamina,
		StaminaRecoveryInterval: settings.StaminaRecoveryInterval,
	}
	for account, player := range n.game.Players() {
		snap.Players[crypto.NewAddress(account).String()] = playerSnapshot{
			Name:                  player.Name,
			AvatarID:              player.AvatarID,
			AvatarIcon:            player.AvatarIcon,
			HighestScore:          player.HighestScore,
			GamesPlayed:           player.GamesPlayed,
			Stamina:               player.Stamina,
			MaxStamina:            player.MaxStamina,
			LastStaminaCheckpoint: player.LastStaminaCheckpoint,
		}
	}
	for id, g := range n.game.Games() {
		snap.Games[formatID(id)] = gameSnapshot{
			ID:      g.ID,
			Stage:   g.Stage,
			Time:    g.Time,
			Status:  uint8(g.Status),
			Score:   g.Score,
			Creator: crypto.NewAddress(g.Creator).String(),
		}
	}
	return snap
}

// persist writes the current state snapshot to the configured database. A
// node without a database skips persistence entirely.
func (n *Node) persist() error {
	if n.db == nil {
		return nil
	}
	payload, err := json.Marshal(n.snapshot())
	if err != nil {
		return fmt.Errorf("encode state snapshot: %w", err)
	}
	if err := n.db.Put(stateKey, payload); err != nil {
		return fmt.Errorf("persist state snapshot: %w", err)
	}
	return nil
}

// restore loads a previously persisted snapshot into the freshly seeded
// engines, replacing the genesis state wholesale.
func (n *Node) restore(payload []byte) error {
	snap := &stateSnapshot{}
	if err := json.Unmarshal(payload, snap); err != nil {
		return fmt.Errorf("decode state snapshot: %w", err)
	}

	admins := make([][20]byte, 0, len(snap.Admins))
	for _, encoded := range snap.Admins {
		account, err := parseAccount(encoded)
		if err != nil {
			return err
		}
		admins = append(admins, account)
	}
	n.admin.Restore(admins)

	goldToken := n.gold.Token()
	for encoded, raw := range snap.GoldBalances {
		account, err := parseAccount(encoded)
		if err != nil {
			return err
		}
		amount, err := parseAmount(raw)
		if err != nil {
			return err
		}
		goldToken.Mint(account, amount)
	}

	metadata := make(map[uint64]item.TokenMetadata, len(snap.ItemMetadata))
	for encoded, meta := range snap.ItemMetadata {
		id, err := parseID(encoded)
		if err != nil {
			return err
		}
		metadata[id] = meta
	}
	n.item.RestoreMetadata(metadata)

	owners := make(map[uint64][20]byte, len(snap.ItemOwners))
	for encoded, rawOwner := range snap.ItemOwners {
		id, err := parseID(encoded)
		if err != nil {
			return err
		}
		owner, err := parseAccount(rawOwner)
		if err != nil {
			return err
		}
		owners[id] = owner
	}
	n.item.RestoreOwners(owners)

	itemToken := n.item.Token()
	for encodedID, holders := range snap.ItemBalances {
		id, err := parseID(encodedID)
		if err != nil {
			return err
		}
		for encodedAccount, raw := range holders {
			account, err := parseAccount(encodedAccount)
			if err != nil {
				return err
			}
			amount, err := parseAmount(raw)
			if err != nil {
				return err
			}
			itemToken.Credit(account, id, amount)
		}
	}

	prices := make(map[uint64]*big.Int, len(snap.Prices))
	for encoded, raw := range snap.Prices {
		id, err := parseID(encoded)
		if err != nil {
			return err
		}
		price, err := parseAmount(raw)
		if err != nil {
			return err
		}
		prices[id] = price
	}
	n.market.RestorePrices(prices)

	verifierKey, err := hex.DecodeString(snap.Settings.VerifierPublicKey)
	if err != nil {
		return fmt.Errorf("decode verifier key: %w", err)
	}
	settings := game.Settings{
		VerifierPublicKey:       verifierKey,
		GameTime:                snap.Settings.GameTime,
		MaxEarn:                 snap.Settings.MaxEarn,
		InitialMaxStamina:       snap.Settings.InitialMaxStamina,
		StaminaRecoveryInterval: snap.Settings.StaminaRecoveryInterval,
	}
	players := make(map[[20]byte]game.Player, len(snap.Players))
	for encoded, player := range snap.Players {
		account, err := parseAccount(encoded)
		if err != nil {
			return err
		}
		players[account] = game.Player{
			Name:                  player.Name,
			AvatarID:              player.AvatarID,
			AvatarIcon:            player.AvatarIcon,
			HighestScore:          player.HighestScore,
			GamesPlayed:           player.GamesPlayed,
			Stamina:               player.Stamina,
			MaxStamina:            player.MaxStamina,
			LastStaminaCheckpoint: player.LastStaminaCheckpoint,
		}
	}
	games := make(map[uint64]game.GameInfo, len(snap.Games))
	for encoded, g := range snap.Games {
		id, err := parseID(encoded)
		if err != nil {
			return err
		}
		creator, err := parseAccount(g.Creator)
		if err != nil {
			return err
		}
		games[id] = game.GameInfo{
			ID:      g.ID,
			Stage:   g.Stage,
			Time:    g.Time,
			Status:  game.GameStatus(g.Status),
			Score:   g.Score,
			Creator: creator,
		}
	}
	n.game.Restore(settings, players, games)
	return nil
}
