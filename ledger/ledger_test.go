package ledger

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/fracvault-xyz/go-fracvault/chain"
)

var (
	alice = chain.BytesToAddress([]byte{0xa1})
	bob   = chain.BytesToAddress([]byte{0xb0})
)

func TestMintAndBalance(t *testing.T) {
	l := New()
	if err := l.Mint(alice, uint256.NewInt(100)); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if got := l.BalanceOf(alice); got.Uint64() != 100 {
		t.Errorf("balance = %s, want 100", got.Dec())
	}
	if got := l.TotalSupply(); got.Uint64() != 100 {
		t.Errorf("supply = %s, want 100", got.Dec())
	}
	if err := l.Audit(); err != nil {
		t.Errorf("Audit: %v", err)
	}
}

func TestMintZeroAddress(t *testing.T) {
	l := New()
	if err := l.Mint(chain.Address{}, uint256.NewInt(1)); !errors.Is(err, ErrZeroAddress) {
		t.Errorf("expected ErrZeroAddress, got %v", err)
	}
}

func TestTransfer(t *testing.T) {
	l := New()
	if err := l.Mint(alice, uint256.NewInt(100)); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := l.Transfer(alice, bob, uint256.NewInt(40)); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if got := l.BalanceOf(alice); got.Uint64() != 60 {
		t.Errorf("alice = %s, want 60", got.Dec())
	}
	if got := l.BalanceOf(bob); got.Uint64() != 40 {
		t.Errorf("bob = %s, want 40", got.Dec())
	}
	if l.Transfers() != 2 {
		t.Errorf("transfers = %d, want 2", l.Transfers())
	}
	if err := l.Audit(); err != nil {
		t.Errorf("Audit: %v", err)
	}
}

func TestTransferInsufficient(t *testing.T) {
	l := New()
	if err := l.Transfer(alice, bob, uint256.NewInt(1)); !errors.Is(err, ErrInsufficientShares) {
		t.Errorf("expected ErrInsufficientShares, got %v", err)
	}
	if err := l.Mint(alice, uint256.NewInt(10)); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := l.Transfer(alice, bob, uint256.NewInt(11)); !errors.Is(err, ErrInsufficientShares) {
		t.Errorf("expected ErrInsufficientShares, got %v", err)
	}
}

func TestBurn(t *testing.T) {
	l := New()
	if err := l.Mint(alice, uint256.NewInt(100)); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := l.Burn(alice, uint256.NewInt(100)); err != nil {
		t.Fatalf("Burn: %v", err)
	}
	if got := l.BalanceOf(alice); !got.IsZero() {
		t.Errorf("balance = %s, want 0", got.Dec())
	}
	if got := l.TotalSupply(); !got.IsZero() {
		t.Errorf("supply = %s, want 0", got.Dec())
	}
	if l.Holders() != 0 {
		t.Errorf("holders = %d, want 0", l.Holders())
	}
	if err := l.Burn(alice, uint256.NewInt(1)); !errors.Is(err, ErrInsufficientShares) {
		t.Errorf("expected ErrInsufficientShares, got %v", err)
	}
}

func TestBalanceCopiesDoNotAlias(t *testing.T) {
	l := New()
	if err := l.Mint(alice, uint256.NewInt(5)); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	bal := l.BalanceOf(alice)
	bal.SetUint64(999)
	if got := l.BalanceOf(alice); got.Uint64() != 5 {
		t.Error("BalanceOf should return a copy, not a reference")
	}
}

func TestMeterCountsEveryOperation(t *testing.T) {
	l := New()
	_ = l.Mint(alice, uint256.NewInt(10))
	_ = l.Transfer(alice, bob, uint256.NewInt(5))
	_ = l.Burn(bob, uint256.NewInt(5))
	if l.Transfers() != 3 {
		t.Errorf("transfers = %d, want 3", l.Transfers())
	}
	// Failed operations do not tick the meter.
	_ = l.Transfer(alice, bob, uint256.NewInt(1000))
	if l.Transfers() != 3 {
		t.Errorf("transfers after failed op = %d, want 3", l.Transfers())
	}
}
