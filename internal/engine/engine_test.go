package engine

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/hxuan190/pool-engine/internal/bank"
	"github.com/hxuan190/pool-engine/internal/domain"
	"github.com/hxuan190/pool-engine/internal/events"
)

func newTestEngine(t *testing.T) (*Engine, *bank.Ledger, *events.MemorySink) {
	t.Helper()
	ledger := bank.NewLedger()
	sink := events.NewMemorySink()
	return New(DefaultFeeBps, ledger, sink), ledger, sink
}

func fund(t *testing.T, ledger *bank.Ledger, holder domain.Address, amount uint64) {
	t.Helper()
	for _, token := range []domain.Address{testTokenA, testTokenB} {
		if err := ledger.Mint(token, holder, u(amount)); err != nil {
			t.Fatalf("Mint: %v", err)
		}
	}
}

func TestCreatePoolEmitsEvent(t *testing.T) {
	e, _, sink := newTestEngine(t)

	key, err := e.CreatePool(testTokenA, testTokenB)
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}

	ev, ok := sink.Last().(domain.PoolCreated)
	if !ok {
		t.Fatalf("expected PoolCreated event, got %T", sink.Last())
	}
	if ev.Key != key.String() {
		t.Errorf("event key %s, want %s", ev.Key, key)
	}
	if ev.Token0 != testTokenA.String() || ev.Token1 != testTokenB.String() {
		t.Errorf("event pair (%s, %s)", ev.Token0, ev.Token1)
	}

	if _, err := e.CreatePool(testTokenB, testTokenA); !errors.Is(err, ErrPoolAlreadyExists) {
		t.Errorf("expected ErrPoolAlreadyExists, got %v", err)
	}
	if len(sink.Events()) != 1 {
		t.Errorf("failed create must not emit, got %d events", len(sink.Events()))
	}
}

func TestAddLiquidityBootstrap(t *testing.T) {
	e, ledger, sink := newTestEngine(t)
	e.CreatePool(testTokenA, testTokenB)
	fund(t, ledger, alice, 1_000_000)

	minted, err := e.AddLiquidity(testTokenA, testTokenB, u(1_000), u(2_000), alice)
	if err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}
	if !minted.Eq(u(3_000)) {
		t.Errorf("bootstrap minted %s, want 3000", minted.Dec())
	}

	reserveA, reserveB, _ := e.Reserves(testTokenA, testTokenB)
	if !reserveA.Eq(u(1_000)) || !reserveB.Eq(u(2_000)) {
		t.Errorf("reserves (%s, %s)", reserveA.Dec(), reserveB.Dec())
	}

	// Custody holds exactly the reserves.
	if !ledger.CustodyBalance(testTokenA).Eq(u(1_000)) {
		t.Errorf("custody of tokenA = %s", ledger.CustodyBalance(testTokenA).Dec())
	}
	if !ledger.BalanceOf(testTokenA, alice).Eq(u(999_000)) {
		t.Errorf("alice tokenA = %s", ledger.BalanceOf(testTokenA, alice).Dec())
	}

	ev, ok := sink.Last().(domain.LiquidityAdded)
	if !ok {
		t.Fatalf("expected LiquidityAdded event, got %T", sink.Last())
	}
	if ev.SharesMinted != "3000" {
		t.Errorf("event sharesMinted = %s", ev.SharesMinted)
	}
}

func TestAddLiquidityReversedOrder(t *testing.T) {
	e, ledger, _ := newTestEngine(t)
	e.CreatePool(testTokenA, testTokenB)
	fund(t, ledger, alice, 1_000_000)
	fund(t, ledger, bob, 1_000_000)

	if _, err := e.AddLiquidity(testTokenA, testTokenB, u(1_000), u(2_000), alice); err != nil {
		t.Fatalf("AddLiquidity(alice): %v", err)
	}

	// Bob deposits the same amounts with the pair reversed.
	minted, err := e.AddLiquidity(testTokenB, testTokenA, u(2_000), u(1_000), bob)
	if err != nil {
		t.Fatalf("AddLiquidity(bob): %v", err)
	}
	if !minted.Eq(u(3_000)) {
		t.Errorf("bob minted %s, want 3000", minted.Dec())
	}

	reserveA, reserveB, _ := e.Reserves(testTokenA, testTokenB)
	if !reserveA.Eq(u(2_000)) || !reserveB.Eq(u(4_000)) {
		t.Errorf("reserves (%s, %s)", reserveA.Dec(), reserveB.Dec())
	}
}

func TestAddLiquiditySecondLegFailureRefundsFirst(t *testing.T) {
	e, ledger, sink := newTestEngine(t)
	e.CreatePool(testTokenA, testTokenB)

	// Alice holds only tokenA, so the second deposit leg must fail.
	if err := ledger.Mint(testTokenA, alice, u(10_000)); err != nil {
		t.Fatalf("Mint: %v", err)
	}

	_, err := e.AddLiquidity(testTokenA, testTokenB, u(1_000), u(2_000), alice)
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}

	if !ledger.BalanceOf(testTokenA, alice).Eq(u(10_000)) {
		t.Errorf("first leg not refunded: alice tokenA = %s", ledger.BalanceOf(testTokenA, alice).Dec())
	}
	reserveA, _, _ := e.Reserves(testTokenA, testTokenB)
	if !reserveA.IsZero() {
		t.Errorf("reserves mutated by failed deposit: %s", reserveA.Dec())
	}
	for _, ev := range sink.Events() {
		if _, ok := ev.(domain.LiquidityAdded); ok {
			t.Error("failed deposit must not emit LiquidityAdded")
		}
	}
}

func TestSwapMatchesQuote(t *testing.T) {
	e, ledger, sink := newTestEngine(t)
	e.CreatePool(testTokenA, testTokenB)
	fund(t, ledger, alice, 1_000_000)
	fund(t, ledger, bob, 1_000_000)

	if _, err := e.AddLiquidity(testTokenA, testTokenB, u(100_000), u(200_000), alice); err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}

	quoted, err := e.AmountOut(testTokenA, testTokenB, u(1_000))
	if err != nil {
		t.Fatalf("AmountOut: %v", err)
	}

	settled, err := e.Swap(testTokenA, testTokenB, u(1_000), bob)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if !settled.Eq(quoted) {
		t.Errorf("settled %s != quoted %s", settled.Dec(), quoted.Dec())
	}

	reserveA, reserveB, _ := e.Reserves(testTokenA, testTokenB)
	wantA := u(101_000)
	wantB := new(uint256.Int).Sub(u(200_000), quoted)
	if !reserveA.Eq(wantA) || !reserveB.Eq(wantB) {
		t.Errorf("reserves (%s, %s), want (%s, %s)", reserveA.Dec(), reserveB.Dec(), wantA.Dec(), wantB.Dec())
	}

	if !ledger.BalanceOf(testTokenB, bob).Eq(new(uint256.Int).Add(u(1_000_000), quoted)) {
		t.Errorf("bob tokenB = %s", ledger.BalanceOf(testTokenB, bob).Dec())
	}

	ev, ok := sink.Last().(domain.Swapped)
	if !ok {
		t.Fatalf("expected Swapped event, got %T", sink.Last())
	}
	if ev.AmountOut != quoted.Dec() || ev.TokenIn != testTokenA.String() || ev.Caller != bob.String() {
		t.Errorf("unexpected Swapped payload: %+v", ev)
	}
}

func TestSwapErrors(t *testing.T) {
	e, ledger, _ := newTestEngine(t)
	fund(t, ledger, alice, 1_000_000)

	if _, err := e.Swap(testTokenA, testTokenB, u(100), alice); !errors.Is(err, ErrPoolNotFound) {
		t.Errorf("expected ErrPoolNotFound, got %v", err)
	}

	e.CreatePool(testTokenA, testTokenB)
	if _, err := e.Swap(testTokenA, testTokenB, u(100), alice); !errors.Is(err, ErrInsufficientLiquidity) {
		t.Errorf("expected ErrInsufficientLiquidity on empty pool, got %v", err)
	}

	e.AddLiquidity(testTokenA, testTokenB, u(1_000), u(2_000), alice)
	if _, err := e.Swap(testTokenA, testTokenB, u(0), alice); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := e.Swap(testTokenA, testTokenA, u(100), alice); !errors.Is(err, ErrIdenticalTokens) {
		t.Errorf("expected ErrIdenticalTokens, got %v", err)
	}
}

// countingBank wraps the real ledger and counts custody invocations.
type countingBank struct {
	inner *bank.Ledger
	calls int
}

func (cb *countingBank) TransferIn(token, from domain.Address, amount *uint256.Int) error {
	cb.calls++
	return cb.inner.TransferIn(token, from, amount)
}

func (cb *countingBank) TransferOut(token, to domain.Address, amount *uint256.Int) error {
	cb.calls++
	return cb.inner.TransferOut(token, to, amount)
}

func TestSwapZeroOutputRejectedBeforeTransfer(t *testing.T) {
	ledger := bank.NewLedger()
	cb := &countingBank{inner: ledger}
	sink := events.NewMemorySink()
	e := New(DefaultFeeBps, cb, sink)

	e.CreatePool(testTokenA, testTokenB)
	for _, token := range []domain.Address{testTokenA, testTokenB} {
		ledger.Mint(token, alice, u(1_000_000))
	}
	if _, err := e.AddLiquidity(testTokenA, testTokenB, u(100_000), u(200_000), alice); err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}

	callsBefore := cb.calls
	eventsBefore := len(sink.Events())

	// 1 in at 30 bps floors the fee-adjusted input to zero output.
	_, err := e.Swap(testTokenA, testTokenB, u(1), alice)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero-output swap, got %v", err)
	}

	if cb.calls != callsBefore {
		t.Errorf("custody invoked %d times for a swap that can never settle", cb.calls-callsBefore)
	}
	if !ledger.BalanceOf(testTokenA, alice).Eq(u(900_000)) {
		t.Errorf("caller balance mutated: %s", ledger.BalanceOf(testTokenA, alice).Dec())
	}
	reserveA, reserveB, _ := e.Reserves(testTokenA, testTokenB)
	if !reserveA.Eq(u(100_000)) || !reserveB.Eq(u(200_000)) {
		t.Errorf("reserves mutated: (%s, %s)", reserveA.Dec(), reserveB.Dec())
	}
	if len(sink.Events()) != eventsBefore {
		t.Error("rejected swap must not emit")
	}
}

func TestSwapInsufficientCallerBalance(t *testing.T) {
	e, ledger, sink := newTestEngine(t)
	e.CreatePool(testTokenA, testTokenB)
	fund(t, ledger, alice, 1_000_000)
	e.AddLiquidity(testTokenA, testTokenB, u(100_000), u(200_000), alice)

	before := len(sink.Events())

	// Bob was never funded.
	_, err := e.Swap(testTokenA, testTokenB, u(1_000), bob)
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}

	reserveA, reserveB, _ := e.Reserves(testTokenA, testTokenB)
	if !reserveA.Eq(u(100_000)) || !reserveB.Eq(u(200_000)) {
		t.Errorf("reserves mutated by failed swap: (%s, %s)", reserveA.Dec(), reserveB.Dec())
	}
	if len(sink.Events()) != before {
		t.Error("failed swap must not emit")
	}
}

func TestRemoveLiquidity(t *testing.T) {
	e, ledger, sink := newTestEngine(t)
	e.CreatePool(testTokenA, testTokenB)
	fund(t, ledger, alice, 1_000_000)
	e.AddLiquidity(testTokenA, testTokenB, u(1_000), u(2_000), alice)

	amount0, amount1, err := e.RemoveLiquidity(testTokenA, testTokenB, u(1_500), alice)
	if err != nil {
		t.Fatalf("RemoveLiquidity: %v", err)
	}
	if !amount0.Eq(u(500)) || !amount1.Eq(u(1_000)) {
		t.Errorf("got (%s, %s), want (500, 1000)", amount0.Dec(), amount1.Dec())
	}

	shares, _ := e.Liquidity(testTokenA, testTokenB, alice)
	if !shares.Eq(u(1_500)) {
		t.Errorf("remaining shares = %s, want 1500", shares.Dec())
	}

	if _, ok := sink.Last().(domain.LiquidityRemoved); !ok {
		t.Fatalf("expected LiquidityRemoved event, got %T", sink.Last())
	}

	// Full exit drains the pool but keeps it registered.
	if _, _, err := e.RemoveLiquidity(testTokenA, testTokenB, u(1_500), alice); err != nil {
		t.Fatalf("full exit: %v", err)
	}
	if !ledger.BalanceOf(testTokenA, alice).Eq(u(1_000_000)) || !ledger.BalanceOf(testTokenB, alice).Eq(u(1_000_000)) {
		t.Error("full round trip must return all deposited tokens")
	}
	if !e.PoolExists(testTokenA, testTokenB) {
		t.Error("drained pool must stay registered")
	}

	if _, _, err := e.RemoveLiquidity(testTokenA, testTokenB, u(1), alice); !errors.Is(err, ErrInsufficientShares) {
		t.Errorf("expected ErrInsufficientShares after full exit, got %v", err)
	}
}

func TestRemoveLiquidityOverBurn(t *testing.T) {
	e, ledger, _ := newTestEngine(t)
	e.CreatePool(testTokenA, testTokenB)
	fund(t, ledger, alice, 1_000_000)
	e.AddLiquidity(testTokenA, testTokenB, u(1_000), u(2_000), alice)

	if _, _, err := e.RemoveLiquidity(testTokenA, testTokenB, u(3_001), alice); !errors.Is(err, ErrInsufficientShares) {
		t.Errorf("expected ErrInsufficientShares, got %v", err)
	}
	if _, _, err := e.RemoveLiquidity(testTokenA, testTokenB, u(100), bob); !errors.Is(err, ErrInsufficientShares) {
		t.Errorf("expected ErrInsufficientShares for non-provider, got %v", err)
	}
}

// reentrantBank wraps the real ledger and calls back into the engine from
// inside a transfer leg.
type reentrantBank struct {
	inner   *bank.Ledger
	eng     *Engine
	nested  error
	invoked bool
}

func (r *reentrantBank) TransferIn(token, from domain.Address, amount *uint256.Int) error {
	if !r.invoked {
		r.invoked = true
		_, r.nested = r.eng.Swap(testTokenA, testTokenB, uint256.NewInt(1), alice)
	}
	return r.inner.TransferIn(token, from, amount)
}

func (r *reentrantBank) TransferOut(token, to domain.Address, amount *uint256.Int) error {
	return r.inner.TransferOut(token, to, amount)
}

func TestReentrantTransferRejected(t *testing.T) {
	ledger := bank.NewLedger()
	rb := &reentrantBank{inner: ledger}
	e := New(DefaultFeeBps, rb, events.NewMemorySink())
	rb.eng = e

	e.CreatePool(testTokenA, testTokenB)
	for _, token := range []domain.Address{testTokenA, testTokenB} {
		ledger.Mint(token, alice, u(1_000_000))
	}
	if _, err := e.AddLiquidity(testTokenA, testTokenB, u(100_000), u(200_000), alice); err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}

	rb.invoked = false
	if _, err := e.Swap(testTokenA, testTokenB, u(1_000), alice); err != nil {
		t.Fatalf("outer swap: %v", err)
	}
	if !rb.invoked {
		t.Fatal("callback never ran")
	}
	if !errors.Is(rb.nested, ErrReentrancyRejected) {
		t.Errorf("nested call: expected ErrReentrancyRejected, got %v", rb.nested)
	}
}

func TestConcurrentReads(t *testing.T) {
	e, ledger, _ := newTestEngine(t)
	e.CreatePool(testTokenA, testTokenB)
	fund(t, ledger, alice, 100_000_000)
	e.AddLiquidity(testTokenA, testTokenB, u(1_000_000), u(2_000_000), alice)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			e.Swap(testTokenA, testTokenB, u(100), alice)
		}
	}()

	for i := 0; i < 500; i++ {
		reserveA, reserveB, err := e.Reserves(testTokenA, testTokenB)
		if err != nil {
			t.Fatalf("Reserves: %v", err)
		}
		// Both sides of a snapshot must be internally consistent: the pool
		// product never drops below the bootstrap product.
		k := new(uint256.Int).Mul(reserveA, reserveB)
		if k.Lt(new(uint256.Int).Mul(u(1_000_000), u(2_000_000))) {
			t.Fatalf("torn read: product %s below bootstrap", k.Dec())
		}
	}
	<-done
}

func TestStats(t *testing.T) {
	e, ledger, _ := newTestEngine(t)
	e.CreatePool(testTokenA, testTokenB)
	fund(t, ledger, alice, 1_000_000)
	e.AddLiquidity(testTokenA, testTokenB, u(100_000), u(200_000), alice)
	e.Swap(testTokenA, testTokenB, u(1_000), alice)
	e.Swap(testTokenB, testTokenA, u(1_000), alice)

	pools, swaps, liquidityOps := e.Stats()
	if pools != 1 || swaps != 2 || liquidityOps != 1 {
		t.Errorf("Stats() = (%d, %d, %d), want (1, 2, 1)", pools, swaps, liquidityOps)
	}
}

func BenchmarkSwap(b *testing.B) {
	ledger := bank.NewLedger()
	e := New(DefaultFeeBps, ledger, nil)
	e.CreatePool(testTokenA, testTokenB)
	ledger.Mint(testTokenA, alice, uint256.MustFromDecimal("1000000000000000000000000"))
	ledger.Mint(testTokenB, alice, uint256.MustFromDecimal("1000000000000000000000000"))
	e.AddLiquidity(testTokenA, testTokenB, uint256.MustFromDecimal("1000000000000000000"), uint256.MustFromDecimal("2000000000000000000"), alice)

	amountIn := u(1_000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := e.Swap(testTokenA, testTokenB, amountIn, alice); err != nil {
			b.Fatal(err)
		}
	}
}
