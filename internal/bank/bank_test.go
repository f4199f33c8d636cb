package bank

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/hxuan190/pool-engine/internal/domain"
)

var (
	token  = domain.MustParseAddress("0x1111111111111111111111111111111111111111")
	holder = domain.MustParseAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func TestMintAndBalance(t *testing.T) {
	l := NewLedger()

	if !l.BalanceOf(token, holder).IsZero() {
		t.Error("fresh ledger must report zero balances")
	}

	if err := l.Mint(token, holder, u(500)); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := l.Mint(token, holder, u(250)); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if !l.BalanceOf(token, holder).Eq(u(750)) {
		t.Errorf("balance = %s, want 750", l.BalanceOf(token, holder).Dec())
	}
}

func TestMintValidation(t *testing.T) {
	l := NewLedger()

	if err := l.Mint(domain.Address{}, holder, u(1)); !errors.Is(err, ErrInvalidTransfer) {
		t.Errorf("expected ErrInvalidTransfer for zero token, got %v", err)
	}
	if err := l.Mint(token, holder, u(0)); !errors.Is(err, ErrInvalidTransfer) {
		t.Errorf("expected ErrInvalidTransfer for zero amount, got %v", err)
	}
}

func TestMintOverflowLeavesBalanceUntouched(t *testing.T) {
	l := NewLedger()

	max := new(uint256.Int).Not(uint256.NewInt(0))
	if err := l.Mint(token, holder, max); err != nil {
		t.Fatalf("Mint(max): %v", err)
	}

	if err := l.Mint(token, holder, u(5)); !errors.Is(err, ErrInvalidTransfer) {
		t.Fatalf("expected ErrInvalidTransfer on overflow, got %v", err)
	}
	if !l.BalanceOf(token, holder).Eq(max) {
		t.Errorf("failed Mint mutated balance: got %s", l.BalanceOf(token, holder).Dec())
	}
}

func TestTransferInOut(t *testing.T) {
	l := NewLedger()
	l.Mint(token, holder, u(1_000))

	if err := l.TransferIn(token, holder, u(400)); err != nil {
		t.Fatalf("TransferIn: %v", err)
	}
	if !l.BalanceOf(token, holder).Eq(u(600)) {
		t.Errorf("holder balance = %s, want 600", l.BalanceOf(token, holder).Dec())
	}
	if !l.CustodyBalance(token).Eq(u(400)) {
		t.Errorf("custody balance = %s, want 400", l.CustodyBalance(token).Dec())
	}

	if err := l.TransferOut(token, holder, u(400)); err != nil {
		t.Fatalf("TransferOut: %v", err)
	}
	if !l.BalanceOf(token, holder).Eq(u(1_000)) || !l.CustodyBalance(token).IsZero() {
		t.Error("round trip must restore both balances")
	}
}

func TestTransferInsufficientLeavesBalancesUntouched(t *testing.T) {
	l := NewLedger()
	l.Mint(token, holder, u(100))

	if err := l.TransferIn(token, holder, u(101)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if !l.BalanceOf(token, holder).Eq(u(100)) {
		t.Errorf("holder balance mutated: %s", l.BalanceOf(token, holder).Dec())
	}
	if !l.CustodyBalance(token).IsZero() {
		t.Errorf("custody balance mutated: %s", l.CustodyBalance(token).Dec())
	}

	if err := l.TransferOut(token, holder, u(1)); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance from empty custody, got %v", err)
	}
}
