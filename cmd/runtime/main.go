package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/pool-engine/internal/bank"
	"github.com/hxuan190/pool-engine/internal/common"
	"github.com/hxuan190/pool-engine/internal/config"
	"github.com/hxuan190/pool-engine/internal/engine"
	"github.com/hxuan190/pool-engine/internal/http"
)

// @title Pool Engine API
// @version 1.0
// @description Constant-product liquidity pool engine with atomic swaps and proportional share accounting.
// @description
// @description ## - Features
// @description - **One pool per pair**: deterministic pool identifiers derived from the unordered token pair
// @description - **Constant-product pricing**: fee-bearing swaps with floor rounding, fees accrue to the pool
// @description - **Atomic settlement**: swap and liquidity operations commit fully or leave no trace
// @description - **Durable snapshots**: pool state batch-saved to disk and restored on start
// @description
// @description ## - Usage Tips
// @description - Token and account addresses are 20-byte hex strings, with or without the 0x prefix
// @description - Amounts are unsigned decimal strings in smallest token units
// @description - Spot prices are scaled by 1e18
// @description - Default trading fee is 30 bps (0.3%)
// @description - Rate limit: 10 requests/second (burst: 20)
// @BasePath /
// @schemes http
// @tag.name pools
// @tag.description Create pools and query reserves, prices, and provider positions
// @tag.name quote
// @tag.description Calculate swap outputs without executing
// @tag.name swap
// @tag.description Execute atomic constant-product swaps
// @tag.name liquidity
// @tag.description Add and remove pool liquidity
// @tag.name bank
// @tag.description Custody ledger balances and the dev mint faucet

func main() {
	common.InitRuntimeTuning()

	// load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded, using process environment")
	}

	generalConf := &config.GeneralConfig{}

	// di container config
	conf := container.NewConf(
		generalConf,
		&config.EngineConfig{},
	)

	// di container
	dic, err := container.New(
		// config
		conf,

		// services
		&bank.Service{},
		&engine.Service{},

		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}

	common.InitLogging(generalConf.LogLevel)

	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run di container")
		return
	}

	// Run() doesn't call Stop(), we must do it manually
	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
}
