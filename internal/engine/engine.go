package engine

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/pool-engine/internal/domain"
	"github.com/hxuan190/pool-engine/internal/metrics"
)

// Engine is the constant-product pool engine: a registry of token-pair pools
// with fee-bearing swaps and proportional share accounting.
//
// Mutating operations (CreatePool, Swap, AddLiquidity, RemoveLiquidity) are
// globally serialized: one in-flight operation at a time, each committing
// fully or failing with zero observable state change. Queries run
// concurrently and observe consistent snapshots.
type Engine struct {
	feeBps uint64
	bank   domain.Transferor
	sink   domain.EventSink
	reg    *Registry

	// opMu serializes mutating operations. inTransfer is raised while the
	// custody collaborator runs; mutating entry points check it before
	// locking so a callback from inside a transfer is rejected instead of
	// deadlocking on opMu.
	opMu       sync.Mutex
	inTransfer atomic.Bool

	swapCount      atomic.Uint64
	liquidityCount atomic.Uint64
}

func New(feeBps uint64, bank domain.Transferor, sink domain.EventSink) *Engine {
	return &Engine{
		feeBps: feeBps,
		bank:   bank,
		sink:   sink,
		reg:    NewRegistry(),
	}
}

// FeeBps returns the protocol trading fee in basis points.
func (e *Engine) FeeBps() uint64 { return e.feeBps }

// Registry exposes the pool registry for persistence adapters.
func (e *Engine) Registry() *Registry { return e.reg }

func (e *Engine) begin() error {
	if e.inTransfer.Load() {
		metrics.ReentrancyRejections.Inc()
		return ErrReentrancyRejected
	}
	e.opMu.Lock()
	return nil
}

func (e *Engine) end() {
	e.opMu.Unlock()
}

// transferIn invokes the custody collaborator with the reentrancy flag
// raised; the flag is cleared on every exit path.
func (e *Engine) transferIn(token, from domain.Address, amount *uint256.Int) error {
	e.inTransfer.Store(true)
	defer e.inTransfer.Store(false)
	if err := e.bank.TransferIn(token, from, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	return nil
}

func (e *Engine) transferOut(token, to domain.Address, amount *uint256.Int) error {
	e.inTransfer.Store(true)
	defer e.inTransfer.Store(false)
	if err := e.bank.TransferOut(token, to, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	return nil
}

func (e *Engine) emit(ev domain.Event) {
	if e.sink != nil {
		e.sink.Publish(ev)
	}
}

// CreatePool registers an empty pool for the unordered pair (a, b) and emits
// PoolCreated. One pool per pair for the engine's lifetime.
func (e *Engine) CreatePool(a, b domain.Address) (domain.PoolKey, error) {
	if err := e.begin(); err != nil {
		return domain.PoolKey{}, err
	}
	defer e.end()

	key, err := e.reg.Create(a, b)
	if err != nil {
		return domain.PoolKey{}, err
	}

	ord, _ := domain.Canonicalize(a, b)
	e.emit(domain.PoolCreated{
		Token0: ord.Token0.String(),
		Token1: ord.Token1.String(),
		Key:    key.String(),
	})
	log.Info().
		Str("token0", ord.Token0.String()).
		Str("token1", ord.Token1.String()).
		Str("poolKey", key.String()).
		Msg("[engine] pool created")
	return key, nil
}

// PoolID derives the pool identifier for an unordered pair. Pure; does not
// require the pool to exist.
func (e *Engine) PoolID(a, b domain.Address) (domain.PoolKey, error) {
	return domain.NewPoolKey(a, b)
}

// PoolExists reports pool existence; never fails.
func (e *Engine) PoolExists(a, b domain.Address) bool {
	return e.reg.Exists(a, b)
}

// Reserves returns the pool reserves in the caller's token order.
func (e *Engine) Reserves(a, b domain.Address) (*uint256.Int, *uint256.Int, error) {
	return e.reg.Reserves(a, b)
}

// Price returns the spot price of one unit of tokenIn denominated in
// tokenOut, scaled by PriceScale.
func (e *Engine) Price(tokenIn, tokenOut domain.Address) (*uint256.Int, error) {
	reserveIn, reserveOut, err := e.reg.Reserves(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	return SpotPrice(reserveIn, reserveOut, PriceScale)
}

// Liquidity returns a provider's share balance in an existing pool.
func (e *Engine) Liquidity(a, b, provider domain.Address) (*uint256.Int, error) {
	return e.reg.ProviderShares(a, b, provider)
}

// AmountOut quotes the swap output for amountIn of tokenIn, without mutating
// any state. Exposed on the query surface as getAmountOut.
func (e *Engine) AmountOut(tokenIn, tokenOut domain.Address, amountIn *uint256.Int) (*uint256.Int, error) {
	reserveIn, reserveOut, err := e.reg.Reserves(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	return QuoteOutput(reserveIn, reserveOut, amountIn, e.feeBps)
}

// Pools returns a snapshot of every registered pool.
func (e *Engine) Pools() []domain.Pool {
	return e.reg.Snapshot()
}

// Stats returns the pool count and the number of settled mutating operations.
func (e *Engine) Stats() (pools int, swaps, liquidityOps uint64) {
	return e.reg.Len(), e.swapCount.Load(), e.liquidityCount.Load()
}

// Swap exchanges amountIn of tokenIn for tokenOut against the pair's pool.
//
// The output is quoted and bounds-checked before any custody moves; the
// inbound leg is acquired first and refunded if the outbound leg fails, so
// reserves are only touched once both legs have settled.
func (e *Engine) Swap(tokenIn, tokenOut domain.Address, amountIn *uint256.Int, caller domain.Address) (*uint256.Int, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()

	pool, ord, err := e.reg.lookup(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	if amountIn == nil || amountIn.IsZero() {
		return nil, ErrInvalidAmount
	}

	// ord.Swapped means the caller's tokenIn is the canonical token1.
	inIsToken0 := !ord.Swapped
	var reserveIn, reserveOut *uint256.Int
	if inIsToken0 {
		reserveIn, reserveOut = &pool.reserve0, &pool.reserve1
	} else {
		reserveIn, reserveOut = &pool.reserve1, &pool.reserve0
	}

	amountOut, err := QuoteOutput(reserveIn, reserveOut, amountIn, e.feeBps)
	if err != nil {
		return nil, err
	}
	// An input too small to buy a single output unit is rejected before any
	// custody moves; it could never settle.
	if amountOut.IsZero() {
		return nil, ErrInvalidAmount
	}
	// A swap may never drain a reserve side to zero.
	if !amountOut.Lt(reserveOut) {
		return nil, ErrInsufficientLiquidity
	}

	if err := e.transferIn(tokenIn, caller, amountIn); err != nil {
		return nil, err
	}
	if err := e.transferOut(tokenOut, caller, amountOut); err != nil {
		if refundErr := e.transferOut(tokenIn, caller, amountIn); refundErr != nil {
			log.Error().Err(refundErr).
				Str("caller", caller.String()).
				Str("tokenIn", tokenIn.String()).
				Msg("[engine] swap refund failed, custody out of sync")
		}
		return nil, err
	}

	e.reg.applySwap(pool, inIsToken0, amountIn, amountOut)
	e.swapCount.Add(1)

	e.emit(domain.Swapped{
		Caller:    caller.String(),
		Key:       pool.key.String(),
		TokenIn:   tokenIn.String(),
		AmountIn:  amountIn.Dec(),
		AmountOut: amountOut.Dec(),
	})
	return amountOut, nil
}

// AddLiquidity deposits (amountA of a, amountB of b) into the pair's pool and
// mints shares to caller. Both inbound legs settle or neither does.
func (e *Engine) AddLiquidity(a, b domain.Address, amountA, amountB *uint256.Int, caller domain.Address) (*uint256.Int, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()

	pool, ord, err := e.reg.lookup(a, b)
	if err != nil {
		return nil, err
	}

	// Re-orient the caller's amounts onto the canonical pair.
	amount0, amount1 := amountA, amountB
	if ord.Swapped {
		amount0, amount1 = amountB, amountA
	}

	minted, err := SharesForDeposit(amount0, amount1, &pool.reserve0, &pool.reserve1, &pool.totalShares)
	if err != nil {
		return nil, err
	}
	if minted.IsZero() {
		// Deposit too small to mint a single share; rejecting keeps the
		// empty-pool invariant intact.
		return nil, ErrInvalidAmount
	}

	if err := e.transferIn(a, caller, amountA); err != nil {
		return nil, err
	}
	if err := e.transferIn(b, caller, amountB); err != nil {
		if refundErr := e.transferOut(a, caller, amountA); refundErr != nil {
			log.Error().Err(refundErr).
				Str("caller", caller.String()).
				Msg("[engine] deposit refund failed, custody out of sync")
		}
		return nil, err
	}

	e.reg.applyDeposit(pool, caller, amount0, amount1, minted)
	e.liquidityCount.Add(1)

	e.emit(domain.LiquidityAdded{
		Provider:     caller.String(),
		Key:          pool.key.String(),
		Amount0:      amount0.Dec(),
		Amount1:      amount1.Dec(),
		SharesMinted: minted.Dec(),
	})
	return minted, nil
}

// RemoveLiquidity burns sharesToBurn of caller's position and pays out the
// proportional reserve amounts (in canonical order). Bookkeeping is committed
// only after both outbound legs settle; a failed second leg is compensated by
// re-acquiring the first.
func (e *Engine) RemoveLiquidity(a, b domain.Address, sharesToBurn *uint256.Int, caller domain.Address) (*uint256.Int, *uint256.Int, error) {
	if err := e.begin(); err != nil {
		return nil, nil, err
	}
	defer e.end()

	pool, _, err := e.reg.lookup(a, b)
	if err != nil {
		return nil, nil, err
	}
	if sharesToBurn == nil || sharesToBurn.IsZero() {
		return nil, nil, ErrInvalidAmount
	}
	held, ok := pool.shares[caller]
	if !ok || sharesToBurn.Gt(held) {
		return nil, nil, ErrInsufficientShares
	}

	amount0, amount1, err := AmountsForWithdrawal(sharesToBurn, &pool.totalShares, &pool.reserve0, &pool.reserve1)
	if err != nil {
		return nil, nil, err
	}

	if !amount0.IsZero() {
		if err := e.transferOut(pool.token0, caller, amount0); err != nil {
			return nil, nil, err
		}
	}
	if !amount1.IsZero() {
		if err := e.transferOut(pool.token1, caller, amount1); err != nil {
			if !amount0.IsZero() {
				if rollbackErr := e.transferIn(pool.token0, caller, amount0); rollbackErr != nil {
					log.Error().Err(rollbackErr).
						Str("caller", caller.String()).
						Msg("[engine] withdrawal rollback failed, custody out of sync")
				}
			}
			return nil, nil, err
		}
	}

	e.reg.applyWithdrawal(pool, caller, amount0, amount1, sharesToBurn)
	e.liquidityCount.Add(1)

	e.emit(domain.LiquidityRemoved{
		Provider:     caller.String(),
		Key:          pool.key.String(),
		Amount0:      amount0.Dec(),
		Amount1:      amount1.Dec(),
		SharesBurned: sharesToBurn.Dec(),
	})
	return amount0, amount1, nil
}
