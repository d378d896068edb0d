package core

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"animalrogue/crypto"
	"animalrogue/native/game"
	"animalrogue/storage"
)

func newTestKey(t *testing.T) (*crypto.PrivateKey, [20]byte) {
	t.Helper()
	key, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	return key, key.PubKey().Address().Bytes()
}

func newTestNode(t *testing.T, db storage.Database) (*Node, [20]byte) {
	t.Helper()
	_, deployer := newTestKey(t)
	gen := DefaultGenesis(crypto.NewAddress(deployer))
	node, err := NewNode(gen, db)
	require.NoError(t, err)
	return node, deployer
}

func TestGenesisSeeding(t *testing.T) {
	node, deployer := newTestNode(t, nil)

	require.True(t, node.IsAdmin(deployer))

	meta, ok := node.ItemMetadata(110)
	require.True(t, ok)
	require.Equal(t, "Candy", meta.Title)
	_, ok = node.ItemMetadata(220)
	require.True(t, ok)

	price, ok := node.MarketGetPrice(110)
	require.True(t, ok)
	require.Equal(t, int64(100), price.Int64())
	price, ok = node.MarketGetPrice(220)
	require.True(t, ok)
	require.Equal(t, int64(200), price.Int64())

	settings := node.GetSettings()
	require.Equal(t, uint32(60), settings.GameTime)
	require.Equal(t, uint64(2000), settings.MaxEarn)
	require.Equal(t, uint64(5), settings.InitialMaxStamina)
	require.Equal(t, uint64(1_800_000), settings.StaminaRecoveryInterval)
	require.Empty(t, settings.VerifierPublicKey)
}

func TestDefaultGenesisRefusesSettlements(t *testing.T) {
	node, _ := newTestNode(t, nil)
	_, player := newTestKey(t)

	require.NoError(t, node.RegisterPlayer(player, "ada", 1, "cat"))
	gameID, err := node.CreateGame(player)
	require.NoError(t, err)

	// Vouchers signed with a well-known scalar must not settle anything while
	// no verifier key is configured.
	weakKey, err := crypto.PrivateKeyFromBytes(append(make([]byte, 31), 1))
	require.NoError(t, err)
	earn := big.NewInt(2000)
	sig, err := crypto.SignSettlement(weakKey, gameID, 100, earn)
	require.NoError(t, err)

	err = node.UpdateGame(gameID, 100, earn, sig, nil, nil)
	require.ErrorIs(t, err, game.ErrVerifierKeyNotSet)
	require.Equal(t, int64(0), node.GoldBalance(player).Int64())
	settled, ok := node.GetGame(gameID)
	require.True(t, ok)
	require.Equal(t, game.StatusCreated, settled.Status)
}

func TestPurchaseScenario(t *testing.T) {
	node, deployer := newTestNode(t, nil)
	_, buyer := newTestKey(t)

	ok, err := node.GoldMint(deployer, buyer, big.NewInt(1000))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, node.MarketBuy(buyer, 110, big.NewInt(5)))
	require.Equal(t, int64(500), node.GoldBalance(buyer).Int64())
	require.Equal(t, int64(5), node.ItemBalance(buyer, 110).Int64())

	recorded := node.Events(0, 0)
	last := recorded[len(recorded)-1]
	require.Equal(t, "market.purchased", last.Type)
	require.Equal(t, "110", last.Attributes["tokenId"])
	require.Equal(t, "5", last.Attributes["amount"])
	require.Equal(t, "100", last.Attributes["price"])
}

func TestSettlementScenario(t *testing.T) {
	node, deployer := newTestNode(t, nil)
	verifier, player := newTestKey(t)

	require.NoError(t, node.SetVerifierPublicKey(deployer, verifier.PubKey().CompressedBytes()))
	require.NoError(t, node.SetMaxEarn(deployer, 1000))

	require.NoError(t, node.RegisterPlayer(player, "ada", 1, "cat"))
	ok, err := node.ItemMint(deployer, player, 110, big.NewInt(10))
	require.NoError(t, err)
	require.True(t, ok)

	gameID, err := node.CreateGame(player)
	require.NoError(t, err)

	earn := big.NewInt(50)
	sig, err := crypto.SignSettlement(verifier, gameID, 100, earn)
	require.NoError(t, err)
	require.NoError(t, node.UpdateGame(gameID, 100, earn, sig, []uint64{110}, []*big.Int{big.NewInt(10)}))

	require.Equal(t, int64(0), node.ItemBalance(player, 110).Int64())
	require.Equal(t, int64(50), node.GoldBalance(player).Int64())

	settled, ok := node.GetGame(gameID)
	require.True(t, ok)
	require.Equal(t, game.StatusEnded, settled.Status)
	require.Equal(t, int64(100), settled.Score)

	record, ok := node.GetPlayer(player)
	require.True(t, ok)
	require.Equal(t, uint32(1), record.GamesPlayed)
	require.Equal(t, int64(100), record.HighestScore)
}

func TestAdminGatingAcrossSurfaces(t *testing.T) {
	node, _ := newTestNode(t, nil)
	_, outsider := newTestKey(t)

	ok, err := node.GoldMint(outsider, outsider, big.NewInt(10))
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, int64(0), node.GoldBalance(outsider).Int64())

	require.Error(t, node.MarketSetPrice(outsider, 999, big.NewInt(1)))
	require.Error(t, node.SetMaxEarn(outsider, 1))

	added, err := node.AddAdmin(outsider, outsider)
	require.NoError(t, err)
	require.False(t, added)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	db := storage.NewMemDB()
	node, deployer := newTestNode(t, db)
	_, buyer := newTestKey(t)

	_, err := node.GoldMint(deployer, buyer, big.NewInt(1000))
	require.NoError(t, err)
	require.NoError(t, node.MarketBuy(buyer, 110, big.NewInt(2)))
	require.NoError(t, node.RegisterPlayer(buyer, "ada", 1, "cat"))
	_, err = node.CreateGame(buyer)
	require.NoError(t, err)

	// A second node over the same database resumes from the snapshot, not
	// from genesis.
	gen := DefaultGenesis(crypto.NewAddress(deployer))
	restored, err := NewNode(gen, db)
	require.NoError(t, err)

	require.Equal(t, node.GoldBalance(buyer).String(), restored.GoldBalance(buyer).String())
	require.Equal(t, node.ItemBalance(buyer, 110).String(), restored.ItemBalance(buyer, 110).String())
	require.Equal(t, node.GoldTotalSupply().String(), restored.GoldTotalSupply().String())

	original, ok := node.GetPlayer(buyer)
	require.True(t, ok)
	resumed, ok := restored.GetPlayer(buyer)
	require.True(t, ok)
	require.Equal(t, original, resumed)

	restoredGame, ok := restored.GetGame(1)
	require.True(t, ok)
	require.Equal(t, buyer, restoredGame.Creator)
}
