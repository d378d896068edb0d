package main

import (
	"encoding/hex"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"animalrogue/config"
	"animalrogue/core"
	"animalrogue/crypto"
	"animalrogue/observability/logging"
	"animalrogue/rpc"
	"animalrogue/storage"
)

const envVar = "ARO_ENV"

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	genesisFlag := flag.String("genesis", "", "Path to a genesis TOML file (overrides config GenesisFile)")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv(envVar))
	logger := logging.Setup("animalrogued", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	gen, err := resolveGenesis(logger, cfg, *genesisFlag)
	if err != nil {
		logger.Error("failed to resolve genesis", slog.Any("error", err))
		os.Exit(1)
	}

	node, err := core.NewNode(gen, db)
	if err != nil {
		logger.Error("failed to initialise node", slog.Any("error", err))
		os.Exit(1)
	}
	node.SetLogger(logger)

	logger.Info("node ready", "network", cfg.NetworkName, "dataDir", cfg.DataDir)

	if strings.TrimSpace(os.Getenv("ARO_RPC_TOKEN")) == "" {
		logger.Warn("ARO_RPC_TOKEN not set; mutating RPC methods will be refused")
	}

	server := rpc.NewServer(node)
	server.SetLogger(logger)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("rpc server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

// resolveGenesis loads the configured genesis file, or bootstraps one with
// freshly generated deployer and settlement verifier keys when none exists
// yet. Both keys are written next to the genesis file so the operator keeps
// admin control and can sign settlements.
func resolveGenesis(logger *slog.Logger, cfg *config.Config, override string) (*core.Genesis, error) {
	path := strings.TrimSpace(override)
	if path == "" {
		path = strings.TrimSpace(cfg.GenesisFile)
	}
	if path == "" {
		path = "./genesis.toml"
	}

	if _, err := os.Stat(path); err == nil {
		return core.LoadGenesis(path)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	verifier, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	deployer := key.PubKey().Address()
	gen := core.DefaultGenesis(deployer)
	gen.Game.VerifierPublicKey = hex.EncodeToString(verifier.PubKey().CompressedBytes())
	if err := gen.WriteFile(path); err != nil {
		return nil, err
	}

	keyPath := filepath.Join(filepath.Dir(path), "deployer.key")
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key.Bytes())), 0o600); err != nil {
		return nil, err
	}
	verifierPath := filepath.Join(filepath.Dir(path), "verifier.key")
	if err := os.WriteFile(verifierPath, []byte(hex.EncodeToString(verifier.Bytes())), 0o600); err != nil {
		return nil, err
	}

	logger.Info("generated genesis",
		"path", path,
		"deployer", deployer.String(),
		"deployerKey", keyPath,
		"verifierKey", verifierPath,
	)
	return gen, nil
}
