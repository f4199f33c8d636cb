package persistence

import (
	"fmt"
	"os"
	"path/filepath"

	boltdb "github.com/andrew-solarstorm/bolt-db"
	"github.com/bytedance/sonic"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/pool-engine/internal/domain"
)

const (
	PoolsBucket = "pools"

	DefaultDBPath = "./data/pool-engine.db"
)

// StoredPool is the on-disk pool record. Numeric fields are decimal strings
// so snapshots stay readable and survive width changes.
type StoredPool struct {
	Key         string            `json:"key"`
	Token0      string            `json:"token0"`
	Token1      string            `json:"token1"`
	Reserve0    string            `json:"reserve0"`
	Reserve1    string            `json:"reserve1"`
	TotalShares string            `json:"totalShares"`
	Shares      map[string]string `json:"shares,omitempty"`
}

type Storage struct {
	db     *boltdb.BoltDatabase
	dbPath string
}

func NewStorage(dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	os.MkdirAll(filepath.Dir(dbPath), 0755)

	db := boltdb.NewBoltDatabase(dbPath)
	if db == nil {
		return nil, fmt.Errorf("failed to open database at %s", dbPath)
	}

	log.Info().Str("path", dbPath).Msg("[poolStorage] opened database")

	return &Storage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) SavePool(pool domain.Pool) error {
	data, err := sonic.Marshal(poolToStored(pool))
	if err != nil {
		return fmt.Errorf("failed to marshal pool: %w", err)
	}

	return s.db.Set(PoolsBucket, []byte(pool.Key.String()), data)
}

func (s *Storage) SavePoolBatch(pools []domain.Pool) error {
	if len(pools) == 0 {
		return nil
	}

	batch := s.db.NewBatch()
	for _, pool := range pools {
		data, err := sonic.Marshal(poolToStored(pool))
		if err != nil {
			return fmt.Errorf("failed to marshal pool %s: %w", pool.Key.String(), err)
		}

		value := data
		op := &boltdb.WriteOperation{
			Bucket: []byte(PoolsBucket),
			Key:    []byte(pool.Key.String()),
			Value:  &value,
			Op:     boltdb.OpSet,
		}
		if err := batch.Add(op); err != nil {
			return fmt.Errorf("failed to add pool %s to batch: %w", pool.Key.String(), err)
		}
	}

	if err := batch.Execute(); err != nil {
		log.Error().Err(err).Int("count", len(pools)).Msg("[poolStorage] FAILED to execute batch")
		return err
	}

	log.Info().Int("count", len(pools)).Msg("[poolStorage] saved pool batch")
	return nil
}

func (s *Storage) LoadAllPools() ([]domain.Pool, error) {
	data, err := s.db.List(PoolsBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}

	pools := make([]domain.Pool, 0, len(data))
	unmarshalFailed := 0
	conversionFailed := 0

	for key, value := range data {
		var stored StoredPool
		if err := sonic.Unmarshal(value, &stored); err != nil {
			log.Error().Str("key", key).Err(err).Msg("[poolStorage] failed to unmarshal pool, skipping")
			unmarshalFailed++
			continue
		}

		pool, err := storedToPool(&stored)
		if err != nil {
			log.Error().Str("key", key).Err(err).Msg("[poolStorage] failed to convert stored pool, skipping")
			conversionFailed++
			continue
		}

		pools = append(pools, pool)
	}

	if unmarshalFailed > 0 || conversionFailed > 0 {
		log.Error().
			Int("total_in_db", len(data)).
			Int("loaded", len(pools)).
			Int("unmarshal_failed", unmarshalFailed).
			Int("conversion_failed", conversionFailed).
			Msg("[poolStorage] pool loading completed with errors")
	} else {
		log.Info().
			Int("total_in_db", len(data)).
			Int("loaded", len(pools)).
			Msg("[poolStorage] pool loading completed successfully")
	}

	return pools, nil
}

func (s *Storage) GetPoolCount() (int, error) {
	data, err := s.db.List(PoolsBucket)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

func poolToStored(pool domain.Pool) *StoredPool {
	shares := make(map[string]string, len(pool.Shares))
	for provider, s := range pool.Shares {
		shares[provider.String()] = s.Dec()
	}

	return &StoredPool{
		Key:         pool.Key.String(),
		Token0:      pool.Token0.String(),
		Token1:      pool.Token1.String(),
		Reserve0:    pool.Reserve0.Dec(),
		Reserve1:    pool.Reserve1.Dec(),
		TotalShares: pool.TotalShares.Dec(),
		Shares:      shares,
	}
}

func storedToPool(stored *StoredPool) (domain.Pool, error) {
	key, err := domain.ParsePoolKey(stored.Key)
	if err != nil {
		return domain.Pool{}, fmt.Errorf("invalid key: %w", err)
	}

	token0, err := domain.ParseAddress(stored.Token0)
	if err != nil {
		return domain.Pool{}, fmt.Errorf("invalid token0: %w", err)
	}

	token1, err := domain.ParseAddress(stored.Token1)
	if err != nil {
		return domain.Pool{}, fmt.Errorf("invalid token1: %w", err)
	}

	reserve0, err := uint256.FromDecimal(stored.Reserve0)
	if err != nil {
		return domain.Pool{}, fmt.Errorf("invalid reserve0: %w", err)
	}

	reserve1, err := uint256.FromDecimal(stored.Reserve1)
	if err != nil {
		return domain.Pool{}, fmt.Errorf("invalid reserve1: %w", err)
	}

	totalShares, err := uint256.FromDecimal(stored.TotalShares)
	if err != nil {
		return domain.Pool{}, fmt.Errorf("invalid totalShares: %w", err)
	}

	shares := make(map[domain.Address]*uint256.Int, len(stored.Shares))
	for providerStr, balanceStr := range stored.Shares {
		provider, err := domain.ParseAddress(providerStr)
		if err != nil {
			return domain.Pool{}, fmt.Errorf("invalid provider %s: %w", providerStr, err)
		}
		balance, err := uint256.FromDecimal(balanceStr)
		if err != nil {
			return domain.Pool{}, fmt.Errorf("invalid share balance for %s: %w", providerStr, err)
		}
		shares[provider] = balance
	}

	return domain.Pool{
		Key:         key,
		Token0:      token0,
		Token1:      token1,
		Reserve0:    reserve0,
		Reserve1:    reserve1,
		TotalShares: totalShares,
		Shares:      shares,
	}, nil
}
