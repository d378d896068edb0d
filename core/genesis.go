package core

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"animalrogue/crypto"
	"animalrogue/native/game"
	"animalrogue/native/item"
)

// Genesis is the one-shot seed of the economy core: the deploying admin, the
// token identities, the sample item classes, the opening price list and the
// game settings defaults. The original program hardcoded these; here they are
// configuration loaded from a TOML file.
type Genesis struct {
	Deployer string      `toml:"Deployer"`
	Gold     GoldGenesis `toml:"Gold"`
	Item     ItemGenesis `toml:"Item"`
	Items    []ItemSeed  `toml:"Items"`
	Prices   []PriceSeed `toml:"Prices"`
	Game     GameGenesis `toml:"Game"`
}

type GoldGenesis struct {
	Name     string `toml:"Name"`
	Symbol   string `toml:"Symbol"`
	Decimals uint8  `toml:"Decimals"`
}

type ItemGenesis struct {
	Name     string `toml:"Name"`
	Symbol   string `toml:"Symbol"`
	Decimals uint8  `toml:"Decimals"`
}

type ItemSeed struct {
	ID          uint64 `toml:"Id"`
	Title       string `toml:"Title"`
	Description string `toml:"Description"`
	Media       string `toml:"Media"`
	Reference   string `toml:"Reference"`
}

type PriceSeed struct {
	ID    uint64 `toml:"Id"`
	Price string `toml:"Price"`
}

type GameGenesis struct {
	VerifierPublicKey       string `toml:"VerifierPublicKey"`
	GameTime                uint32 `toml:"GameTime"`
	MaxEarn                 uint64 `toml:"MaxEarn"`
	InitialMaxStamina       uint64 `toml:"InitialMaxStamina"`
	StaminaRecoveryInterval uint64 `toml:"StaminaRecoveryInterval"`
}

// DefaultGenesis returns the stock seed: gold as "Game Gold"/GOLD with two
// decimals, the Candy and Hummer item classes, their opening prices, and the
// original game defaults. No verifier key is seeded; settlements are refused
// until the operator configures one, either in the genesis file or through
// the admin surface.
func DefaultGenesis(deployer crypto.Address) *Genesis {
	return &Genesis{
		Deployer: deployer.String(),
		Gold:     GoldGenesis{Name: "Game Gold", Symbol: "GOLD", Decimals: 2},
		Item:     ItemGenesis{Name: "GameItem", Symbol: "Item", Decimals: 0},
		Items: []ItemSeed{
			{ID: 110, Title: "Candy", Description: "Candy"},
			{ID: 220, Title: "Hummer", Description: "Hummer"},
		},
		Prices: []PriceSeed{
			{ID: 110, Price: "100"},
			{ID: 220, Price: "200"},
		},
		Game: GameGenesis{
			GameTime:                60,
			MaxEarn:                 2000,
			InitialMaxStamina:       5,
			StaminaRecoveryInterval: 1_800_000,
		},
	}
}

// LoadGenesis reads a genesis spec from a TOML file.
func LoadGenesis(path string) (*Genesis, error) {
	gen := &Genesis{}
	if _, err := toml.DecodeFile(path, gen); err != nil {
		return nil, fmt.Errorf("decode genesis %s: %w", path, err)
	}
	return gen, nil
}

// WriteFile stores the genesis spec as TOML.
func (g *Genesis) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(g)
}

func (g *Genesis) deployerAddress() ([20]byte, error) {
	addr, err := crypto.DecodeAddress(strings.TrimSpace(g.Deployer))
	if err != nil {
		return [20]byte{}, fmt.Errorf("genesis deployer: %w", err)
	}
	return addr.Bytes(), nil
}

func (g *Genesis) verifierKey() ([]byte, error) {
	trimmed := strings.TrimSpace(g.Game.VerifierPublicKey)
	if trimmed == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(strings.TrimPrefix(trimmed, "0x"))
	if err != nil {
		return nil, fmt.Errorf("genesis verifier key: %w", err)
	}
	return key, nil
}

func (g *Genesis) gameSettings() (game.Settings, error) {
	key, err := g.verifierKey()
	if err != nil {
		return game.Settings{}, err
	}
	return game.Settings{
		VerifierPublicKey:       key,
		GameTime:                g.Game.GameTime,
		MaxEarn:                 g.Game.MaxEarn,
		InitialMaxStamina:       g.Game.InitialMaxStamina,
		StaminaRecoveryInterval: g.Game.StaminaRecoveryInterval,
	}, nil
}

func (g *Genesis) itemMetadata() map[uint64]item.TokenMetadata {
	out := make(map[uint64]item.TokenMetadata, len(g.Items))
	for _, seed := range g.Items {
		out[seed.ID] = item.TokenMetadata{
			Title:       seed.Title,
			Description: seed.Description,
			Media:       seed.Media,
			Reference:   seed.Reference,
		}
	}
	return out
}

func (g *Genesis) marketPrices() (map[uint64]*big.Int, error) {
	out := make(map[uint64]*big.Int, len(g.Prices))
	for _, seed := range g.Prices {
		price, ok := new(big.Int).SetString(strings.TrimSpace(seed.Price), 10)
		if !ok || price.Sign() < 0 {
			return nil, fmt.Errorf("genesis price for id %d: invalid amount %q", seed.ID, seed.Price)
		}
		out[seed.ID] = price
	}
	return out, nil
}
