package engine

import (
	"errors"

	"github.com/hxuan190/pool-engine/internal/domain"
)

var (
	ErrIdenticalTokens       = domain.ErrIdenticalTokens
	ErrInvalidToken          = errors.New("invalid token address")
	ErrPoolAlreadyExists     = errors.New("pool already exists")
	ErrPoolNotFound          = errors.New("pool does not exist")
	ErrInvalidAmount         = errors.New("invalid input amount")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrInsufficientShares    = errors.New("insufficient liquidity shares")
	ErrAmountTooLarge        = errors.New("amount exceeds supported range")
	ErrTransferFailed        = errors.New("transfer failed")
	ErrReentrancyRejected    = errors.New("reentrant call rejected")
)
