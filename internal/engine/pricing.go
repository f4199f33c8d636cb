package engine

import (
	"github.com/holiman/uint256"
)

const (
	// FeeDenominator expresses fees in basis points.
	FeeDenominator = 10_000

	// DefaultFeeBps is the protocol trading fee (0.3%), retained in the pool.
	DefaultFeeBps = 30
)

// PriceScale is the fixed-point scale of spot prices (1e18).
var PriceScale = uint256.MustFromDecimal("1000000000000000000")

// QuoteOutput computes the constant-product swap output for amountIn against
// reserves (reserveIn, reserveOut) with a basis-point fee. Floor division at
// every step; the fee remainder stays in the pool, so reserveIn*reserveOut
// never decreases across a swap.
func QuoteOutput(reserveIn, reserveOut, amountIn *uint256.Int, feeBps uint64) (*uint256.Int, error) {
	if amountIn == nil || amountIn.IsZero() {
		return nil, ErrInvalidAmount
	}
	if feeBps >= FeeDenominator {
		return nil, ErrInvalidAmount
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrInsufficientLiquidity
	}

	afterFee := new(uint256.Int)
	if _, overflow := afterFee.MulOverflow(amountIn, uint256.NewInt(FeeDenominator-feeBps)); overflow {
		return nil, ErrAmountTooLarge
	}
	afterFee.Div(afterFee, uint256.NewInt(FeeDenominator))

	numerator := new(uint256.Int)
	if _, overflow := numerator.MulOverflow(afterFee, reserveOut); overflow {
		return nil, ErrAmountTooLarge
	}

	denominator := new(uint256.Int)
	if _, overflow := denominator.AddOverflow(reserveIn, afterFee); overflow {
		return nil, ErrAmountTooLarge
	}

	return numerator.Div(numerator, denominator), nil
}

// SpotPrice returns reserveOut*scale/reserveIn. An empty input reserve is a
// liquidity error, never an arithmetic trap.
func SpotPrice(reserveIn, reserveOut, scale *uint256.Int) (*uint256.Int, error) {
	if reserveIn.IsZero() {
		return nil, ErrInsufficientLiquidity
	}
	price := new(uint256.Int)
	if _, overflow := price.MulOverflow(reserveOut, scale); overflow {
		return nil, ErrAmountTooLarge
	}
	return price.Div(price, reserveIn), nil
}

// SharesForDeposit computes the liquidity shares minted for a deposit of
// (amount0, amount1) into a pool with the given reserves and share supply.
//
// Bootstrap deposits mint amount0+amount1. Later deposits are sum-proportional:
// (amount0+amount1) * totalShares / (reserve0+reserve1). Unbalanced deposits
// are accepted; the caller's amounts are not forced onto the pool ratio.
func SharesForDeposit(amount0, amount1, reserve0, reserve1, totalShares *uint256.Int) (*uint256.Int, error) {
	if amount0 == nil || amount1 == nil || amount0.IsZero() || amount1.IsZero() {
		return nil, ErrInvalidAmount
	}

	contributed := new(uint256.Int)
	if _, overflow := contributed.AddOverflow(amount0, amount1); overflow {
		return nil, ErrAmountTooLarge
	}

	if totalShares.IsZero() {
		return contributed, nil
	}

	pooled := new(uint256.Int)
	if _, overflow := pooled.AddOverflow(reserve0, reserve1); overflow {
		return nil, ErrAmountTooLarge
	}
	if pooled.IsZero() {
		// totalShares > 0 with empty reserves violates the pool invariant.
		return nil, ErrInsufficientLiquidity
	}

	shares := new(uint256.Int)
	if _, overflow := shares.MulOverflow(contributed, totalShares); overflow {
		return nil, ErrAmountTooLarge
	}
	return shares.Div(shares, pooled), nil
}

// AmountsForWithdrawal computes the token amounts owed for burning shares:
// floor(reserveX * shares / totalShares) on each side.
func AmountsForWithdrawal(shares, totalShares, reserve0, reserve1 *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	if shares == nil || shares.IsZero() {
		return nil, nil, ErrInvalidAmount
	}
	if totalShares.IsZero() || shares.Gt(totalShares) {
		return nil, nil, ErrInsufficientShares
	}

	amount0 := new(uint256.Int)
	if _, overflow := amount0.MulOverflow(reserve0, shares); overflow {
		return nil, nil, ErrAmountTooLarge
	}
	amount0.Div(amount0, totalShares)

	amount1 := new(uint256.Int)
	if _, overflow := amount1.MulOverflow(reserve1, shares); overflow {
		return nil, nil, ErrAmountTooLarge
	}
	amount1.Div(amount1, totalShares)

	return amount0, amount1, nil
}
