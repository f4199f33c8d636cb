package bank

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/hxuan190/pool-engine/internal/domain"
)

var (
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrInvalidTransfer     = errors.New("invalid transfer")
)

// custodyAccount is the synthetic holder for all balances under engine
// custody. The zero address is reserved as invalid, so the custody account
// uses a fixed non-zero marker.
var custodyAccount = domain.Address{0xee, 0xee, 0xee, 0xee}

// Ledger is an in-memory token balance book. It backs the engine's custody
// moves and the admin mint faucet; balances are keyed token first, holder
// second.
type Ledger struct {
	mu       sync.RWMutex
	balances map[domain.Address]map[domain.Address]*uint256.Int
}

func NewLedger() *Ledger {
	return &Ledger{balances: make(map[domain.Address]map[domain.Address]*uint256.Int)}
}

func (l *Ledger) balanceRef(token, holder domain.Address) *uint256.Int {
	holders, ok := l.balances[token]
	if !ok {
		holders = make(map[domain.Address]*uint256.Int)
		l.balances[token] = holders
	}
	bal, ok := holders[holder]
	if !ok {
		bal = new(uint256.Int)
		holders[holder] = bal
	}
	return bal
}

// Mint credits amount of token to the holder.
func (l *Ledger) Mint(token, holder domain.Address, amount *uint256.Int) error {
	if token.IsZero() || holder.IsZero() || amount == nil || amount.IsZero() {
		return ErrInvalidTransfer
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	bal := l.balanceRef(token, holder)
	sum := new(uint256.Int)
	if _, overflow := sum.AddOverflow(bal, amount); overflow {
		return fmt.Errorf("%w: balance overflow", ErrInvalidTransfer)
	}
	bal.Set(sum)
	return nil
}

// BalanceOf returns the holder's balance of token; zero for unknown pairs.
func (l *Ledger) BalanceOf(token, holder domain.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if holders, ok := l.balances[token]; ok {
		if bal, ok := holders[holder]; ok {
			return bal.Clone()
		}
	}
	return new(uint256.Int)
}

// CustodyBalance returns the amount of token held under engine custody.
func (l *Ledger) CustodyBalance(token domain.Address) *uint256.Int {
	return l.BalanceOf(token, custodyAccount)
}

func (l *Ledger) move(token, from, to domain.Address, amount *uint256.Int) error {
	if token.IsZero() || from.IsZero() || to.IsZero() || amount == nil || amount.IsZero() {
		return ErrInvalidTransfer
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	src := l.balanceRef(token, from)
	if amount.Gt(src) {
		return fmt.Errorf("%w: token %s holder %s", ErrInsufficientBalance, token.String(), from.String())
	}
	dst := l.balanceRef(token, to)
	src.Sub(src, amount)
	dst.Add(dst, amount)
	return nil
}

// TransferIn moves amount of token from the holder into custody. The debit
// and credit happen under one lock, so a failure leaves both sides untouched.
func (l *Ledger) TransferIn(token, from domain.Address, amount *uint256.Int) error {
	return l.move(token, from, custodyAccount, amount)
}

// TransferOut moves amount of token from custody to the recipient.
func (l *Ledger) TransferOut(token, to domain.Address, amount *uint256.Int) error {
	return l.move(token, custodyAccount, to, amount)
}

var _ domain.Transferor = (*Ledger)(nil)
