package config

import (
	"errors"

	"github.com/andrew-solarstorm/go-packages/common"
)

type EngineConfig struct {
	// FeeBps is the trading fee in basis points, retained in the pool.
	// Default: 30
	FeeBps int

	// DBPath is the path to the BoltDB file for pool persistence.
	// Default: "./data/pool-engine.db"
	DBPath string

	// PersistenceEnabled controls whether pools are persisted to disk.
	// Default: true
	PersistenceEnabled bool

	// PersistInterval is how often pools are batch-saved to disk (in seconds).
	// Default: 30
	PersistInterval int
}

func (c *EngineConfig) Key() string {
	return ENGINE_CONFIG_KEY
}

func (c *EngineConfig) Load() error {
	c.FeeBps = common.GetEnvOrDefaultInt("ENGINE_FEE_BPS", 30)
	c.DBPath = common.GetEnvOrDefault("ENGINE_DB_PATH", "./data/pool-engine.db")
	c.PersistenceEnabled = common.GetEnvOrDefault("ENGINE_PERSISTENCE_ENABLED", "true") == "true"
	c.PersistInterval = common.GetEnvOrDefaultInt("ENGINE_PERSIST_INTERVAL", 30)
	return c.Validate()
}

func (c *EngineConfig) Validate() error {
	if c.FeeBps < 0 || c.FeeBps >= 10_000 {
		return errors.New("engine fee must be in [0, 10000) basis points")
	}
	if c.PersistInterval <= 0 {
		return errors.New("persist interval must be positive")
	}
	return nil
}
