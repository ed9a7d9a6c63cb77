package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"basketchain/config"
	"basketchain/core"
	"basketchain/crypto"
	"basketchain/native/basket"
	"basketchain/observability/logging"
	"basketchain/rpc"
	"basketchain/storage"
)

const envVar = "BASKET_ENV"

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv(envVar))
	logger := logging.Setup("basketd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	var db storage.Database
	if strings.TrimSpace(cfg.DataDir) == "" {
		logger.Warn("no DataDir configured, running with in-memory storage")
		db = storage.NewMemDB()
	} else {
		leveldb, err := storage.NewLevelDB(cfg.DataDir)
		if err != nil {
			panic(fmt.Sprintf("Failed to open database: %v", err))
		}
		db = leveldb
	}
	defer db.Close()

	node := core.NewNode(db, logger)
	authority := node.Authority()
	logger.Info("settlement node ready",
		"network", cfg.NetworkName,
		"authority", crypto.NewAddress(crypto.BKTPrefix, authority[:]).String(),
	)

	if err := bootstrapController(node, cfg, logger); err != nil {
		logger.Error("controller bootstrap failed", slog.Any("error", err))
		os.Exit(1)
	}

	server := rpc.NewServer(node, logger)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

// bootstrapController initializes the controller singleton from the
// configured owner on first boot. An already-initialized controller wins over
// the config value.
func bootstrapController(node *core.Node, cfg *config.Config, logger *slog.Logger) error {
	owner := strings.TrimSpace(cfg.OwnerAddress)
	if owner == "" {
		return nil
	}
	addr, err := crypto.DecodeAddress(owner)
	if err != nil {
		return fmt.Errorf("invalid OwnerAddress: %w", err)
	}
	var raw [20]byte
	copy(raw[:], addr.Bytes())
	if _, err := node.Initialize(raw); err != nil {
		if errors.Is(err, basket.ErrControllerExists) {
			logger.Info("controller already initialized, ignoring configured owner")
			return nil
		}
		return err
	}
	logger.Info("controller initialized", "owner", owner)
	return nil
}
