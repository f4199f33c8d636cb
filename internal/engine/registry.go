package engine

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/hxuan190/pool-engine/internal/domain"
)

// poolState is the authoritative record of one pool: canonical token pair,
// reserves, and the provider share ledger. Owned exclusively by the Registry;
// mutated only through Registry methods while the engine serializes writers.
type poolState struct {
	key         domain.PoolKey
	token0      domain.Address
	token1      domain.Address
	reserve0    uint256.Int
	reserve1    uint256.Int
	totalShares uint256.Int
	shares      map[domain.Address]*uint256.Int
}

func (p *poolState) snapshot() domain.Pool {
	shares := make(map[domain.Address]*uint256.Int, len(p.shares))
	for provider, s := range p.shares {
		shares[provider] = s.Clone()
	}
	return domain.Pool{
		Key:         p.key,
		Token0:      p.token0,
		Token1:      p.token1,
		Reserve0:    p.reserve0.Clone(),
		Reserve1:    p.reserve1.Clone(),
		TotalShares: p.totalShares.Clone(),
		Shares:      shares,
	}
}

// Registry holds every pool for the engine's lifetime. Pools are created,
// never destroyed; a drained pool stays registered with zero reserves.
// Reads take the shared lock and copy, so callers never observe a torn
// reserve pair while a writer is mid-commit.
type Registry struct {
	mu    sync.RWMutex
	pools map[domain.PoolKey]*poolState
}

func NewRegistry() *Registry {
	return &Registry{pools: make(map[domain.PoolKey]*poolState)}
}

// Create registers an empty pool for the unordered pair (a, b).
func (r *Registry) Create(a, b domain.Address) (domain.PoolKey, error) {
	if a.IsZero() || b.IsZero() {
		return domain.PoolKey{}, ErrInvalidToken
	}
	ord, err := domain.Canonicalize(a, b)
	if err != nil {
		return domain.PoolKey{}, err
	}
	key, err := domain.NewPoolKey(a, b)
	if err != nil {
		return domain.PoolKey{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pools[key]; ok {
		return domain.PoolKey{}, ErrPoolAlreadyExists
	}
	r.pools[key] = &poolState{
		key:    key,
		token0: ord.Token0,
		token1: ord.Token1,
		shares: make(map[domain.Address]*uint256.Int),
	}
	return key, nil
}

// Exists reports whether a pool is registered for the unordered pair.
func (r *Registry) Exists(a, b domain.Address) bool {
	key, err := domain.NewPoolKey(a, b)
	if err != nil {
		return false
	}
	r.mu.RLock()
	_, ok := r.pools[key]
	r.mu.RUnlock()
	return ok
}

// Len returns the number of registered pools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pools)
}

// lookup resolves the pair to its pool and canonical orientation.
func (r *Registry) lookup(a, b domain.Address) (*poolState, domain.Ordered, error) {
	ord, err := domain.Canonicalize(a, b)
	if err != nil {
		return nil, domain.Ordered{}, err
	}
	key, err := domain.NewPoolKey(a, b)
	if err != nil {
		return nil, domain.Ordered{}, err
	}
	r.mu.RLock()
	pool, ok := r.pools[key]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.Ordered{}, ErrPoolNotFound
	}
	return pool, ord, nil
}

// Reserves returns the pool's reserves re-oriented to the caller's token
// order: the first value is the reserve of a, the second the reserve of b.
func (r *Registry) Reserves(a, b domain.Address) (*uint256.Int, *uint256.Int, error) {
	pool, ord, err := r.lookup(a, b)
	if err != nil {
		return nil, nil, err
	}
	r.mu.RLock()
	reserve0, reserve1 := pool.reserve0.Clone(), pool.reserve1.Clone()
	r.mu.RUnlock()
	if ord.Swapped {
		return reserve1, reserve0, nil
	}
	return reserve0, reserve1, nil
}

// ProviderShares returns a provider's share balance, zero for providers with
// no recorded position in an existing pool.
func (r *Registry) ProviderShares(a, b, provider domain.Address) (*uint256.Int, error) {
	pool, _, err := r.lookup(a, b)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := pool.shares[provider]; ok {
		return s.Clone(), nil
	}
	return new(uint256.Int), nil
}

// TotalShares returns the pool's outstanding share supply.
func (r *Registry) TotalShares(a, b domain.Address) (*uint256.Int, error) {
	pool, _, err := r.lookup(a, b)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return pool.totalShares.Clone(), nil
}

// Snapshot copies every pool in canonical order. Used for persistence and the
// list query surface.
func (r *Registry) Snapshot() []domain.Pool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Pool, 0, len(r.pools))
	for _, pool := range r.pools {
		out = append(out, pool.snapshot())
	}
	return out
}

// applySwap commits a settled swap: the input reserve grows by amountIn, the
// output reserve shrinks by amountOut. inIsToken0 orients the legs.
func (r *Registry) applySwap(pool *poolState, inIsToken0 bool, amountIn, amountOut *uint256.Int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inIsToken0 {
		pool.reserve0.Add(&pool.reserve0, amountIn)
		pool.reserve1.Sub(&pool.reserve1, amountOut)
	} else {
		pool.reserve1.Add(&pool.reserve1, amountIn)
		pool.reserve0.Sub(&pool.reserve0, amountOut)
	}
}

// applyDeposit commits a settled liquidity add in canonical order.
func (r *Registry) applyDeposit(pool *poolState, provider domain.Address, amount0, amount1, minted *uint256.Int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pool.reserve0.Add(&pool.reserve0, amount0)
	pool.reserve1.Add(&pool.reserve1, amount1)
	pool.totalShares.Add(&pool.totalShares, minted)
	held, ok := pool.shares[provider]
	if !ok {
		held = new(uint256.Int)
		pool.shares[provider] = held
	}
	held.Add(held, minted)
}

// applyWithdrawal commits a settled liquidity removal in canonical order.
// A provider whose balance reaches zero is dropped from the share map so
// sum(shares) == totalShares stays cheap to audit.
func (r *Registry) applyWithdrawal(pool *poolState, provider domain.Address, amount0, amount1, burned *uint256.Int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pool.reserve0.Sub(&pool.reserve0, amount0)
	pool.reserve1.Sub(&pool.reserve1, amount1)
	pool.totalShares.Sub(&pool.totalShares, burned)
	held := pool.shares[provider]
	held.Sub(held, burned)
	if held.IsZero() {
		delete(pool.shares, provider)
	}
}

// Restore loads a persisted pool snapshot, re-validating the share invariant.
func (r *Registry) Restore(p domain.Pool) error {
	ord, err := domain.Canonicalize(p.Token0, p.Token1)
	if err != nil {
		return err
	}
	if ord.Swapped {
		return fmt.Errorf("%w: tokens not in canonical order", domain.ErrInvalidPoolKey)
	}
	key, err := domain.NewPoolKey(p.Token0, p.Token1)
	if err != nil {
		return err
	}
	if key != p.Key {
		return fmt.Errorf("%w: key does not match token pair", domain.ErrInvalidPoolKey)
	}

	sum := new(uint256.Int)
	shares := make(map[domain.Address]*uint256.Int, len(p.Shares))
	for provider, s := range p.Shares {
		shares[provider] = s.Clone()
		sum.Add(sum, s)
	}
	if !sum.Eq(p.TotalShares) {
		return fmt.Errorf("%w: share ledger does not sum to total supply", domain.ErrInvalidPoolKey)
	}
	if p.TotalShares.IsZero() != (p.Reserve0.IsZero() && p.Reserve1.IsZero()) {
		return fmt.Errorf("%w: empty-pool invariant violated", domain.ErrInvalidPoolKey)
	}

	state := &poolState{
		key:    key,
		token0: p.Token0,
		token1: p.Token1,
		shares: shares,
	}
	state.reserve0.Set(p.Reserve0)
	state.reserve1.Set(p.Reserve1)
	state.totalShares.Set(p.TotalShares)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pools[key]; ok {
		return ErrPoolAlreadyExists
	}
	r.pools[key] = state
	return nil
}
