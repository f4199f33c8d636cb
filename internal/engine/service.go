package engine

import (
	"time"

	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/pool-engine/internal/adapters/persistence"
	"github.com/hxuan190/pool-engine/internal/bank"
	"github.com/hxuan190/pool-engine/internal/config"
	"github.com/hxuan190/pool-engine/internal/events"
	"github.com/hxuan190/pool-engine/internal/metrics"
)

const ENGINE_SERVICE = "engine-service"

// Service owns the engine's lifecycle: wiring the custody ledger and event
// sink in, restoring persisted pools on start, and batch-saving snapshots on
// an interval and at shutdown.
type Service struct {
	container.BaseDIInstance
	config  *config.EngineConfig
	engine  *Engine
	storage *persistence.Storage

	stopPersist chan struct{}
	persistDone chan struct{}
}

func (svc *Service) ID() string {
	return ENGINE_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.config = c.GetConfig(config.ENGINE_CONFIG_KEY).(*config.EngineConfig)
	bankSvc := c.Instance(bank.BANK_SERVICE).(*bank.Service)

	svc.engine = New(uint64(svc.config.FeeBps), bankSvc.Ledger(), events.NewLogSink())
	return nil
}

func (svc *Service) Start() error {
	if svc.config.PersistenceEnabled {
		storage, err := persistence.NewStorage(svc.config.DBPath)
		if err != nil {
			return err
		}
		svc.storage = storage

		pools, err := storage.LoadAllPools()
		if err != nil {
			return err
		}
		restored := 0
		for _, pool := range pools {
			if err := svc.engine.Registry().Restore(pool); err != nil {
				log.Error().Err(err).Str("key", pool.Key.String()).Msg("[engineService] failed to restore pool, skipping")
				continue
			}
			restored++
		}
		if restored > 0 {
			log.Info().Int("count", restored).Msg("[engineService] restored pools from disk")
		}

		svc.stopPersist = make(chan struct{})
		svc.persistDone = make(chan struct{})
		go svc.persistLoop()
	}

	metrics.PoolCount.Set(float64(svc.engine.Registry().Len()))

	log.Info().
		Uint64("feeBps", svc.engine.FeeBps()).
		Bool("persistence", svc.config.PersistenceEnabled).
		Msg("[engineService] started")
	return nil
}

func (svc *Service) Stop() error {
	if svc.storage == nil {
		return nil
	}
	close(svc.stopPersist)
	<-svc.persistDone

	if err := svc.saveSnapshot(); err != nil {
		log.Error().Err(err).Msg("[engineService] final snapshot save failed")
	}
	return svc.storage.Close()
}

func (svc *Service) Engine() *Engine {
	return svc.engine
}

func (svc *Service) persistLoop() {
	defer close(svc.persistDone)
	ticker := time.NewTicker(time.Duration(svc.config.PersistInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := svc.saveSnapshot(); err != nil {
				log.Error().Err(err).Msg("[engineService] periodic snapshot save failed")
			}
		case <-svc.stopPersist:
			return
		}
	}
}

func (svc *Service) saveSnapshot() error {
	pools := svc.engine.Pools()
	metrics.PoolCount.Set(float64(len(pools)))
	if err := svc.storage.SavePoolBatch(pools); err != nil {
		metrics.SnapshotSaves.WithLabelValues("error").Inc()
		return err
	}
	metrics.SnapshotSaves.WithLabelValues("success").Inc()
	return nil
}
