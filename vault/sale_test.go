package vault_test

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/fracvault-xyz/go-fracvault/auction"
	"github.com/fracvault-xyz/go-fracvault/chain"
	"github.com/fracvault-xyz/go-fracvault/vault"
)

func TestConfigureAuctionCuratorOnly(t *testing.T) {
	e := newEnv(t, 1000)
	s := auction.Settings{
		StartingPrice: uint256.NewInt(100),
		ReservePrice:  uint256.NewInt(20),
		DeltaPrice:    uint256.NewInt(10),
		RoundBlocks:   5,
		StartingBlock: 100,
	}
	if err := e.v.ConfigureAuction(e.call(player(1), 2), s); !errors.Is(err, vault.ErrNotCurator) {
		t.Errorf("expected ErrNotCurator, got %v", err)
	}
	if err := e.v.ConfigureAuction(e.call(e.curatorAddr, 2), s); err != nil {
		t.Errorf("ConfigureAuction by curator: %v", err)
	}
}

func TestConfigureAuctionKeepsPriorSettingsOnRejection(t *testing.T) {
	e := newEnv(t, 1000)
	e.configure()

	bad := auction.Settings{
		StartingPrice: uint256.NewInt(10),
		ReservePrice:  uint256.NewInt(20), // inverted
		DeltaPrice:    uint256.NewInt(1),
		RoundBlocks:   5,
		StartingBlock: 200,
	}
	if err := e.v.ConfigureAuction(e.call(e.curatorAddr, 3), bad); !errors.Is(err, auction.ErrPriceBounds) {
		t.Errorf("expected ErrPriceBounds, got %v", err)
	}
	if got := e.v.Settings(); got.StartingPrice.Uint64() != 100 {
		t.Errorf("prior settings lost: starting price = %s", got.StartingPrice.Dec())
	}
}

func TestConfigureAuctionAfterSaleFails(t *testing.T) {
	e := newEnv(t, 1000)
	e.configure()
	e.settle(player(9), 100, 100)

	s := e.v.Settings()
	s.StartingBlock = 500
	if err := e.v.ConfigureAuction(e.call(e.curatorAddr, 101), s); !errors.Is(err, vault.ErrSoldOut) {
		t.Errorf("expected ErrSoldOut, got %v", err)
	}
}

func TestPriceFreezesAtFinalPrice(t *testing.T) {
	e := newEnv(t, 1000)
	e.configure()

	// Spec schedule: at startingBlock+12, round 2, price 80.
	price, err := e.v.Price(112)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if price.Uint64() != 80 {
		t.Fatalf("price at +12 = %s, want 80", price.Dec())
	}

	e.settle(player(9), 112, 80)

	for _, block := range []uint64{112, 150, 100000} {
		price, err := e.v.Price(block)
		if err != nil {
			t.Fatalf("Price(%d): %v", block, err)
		}
		if price.Uint64() != 80 {
			t.Errorf("price at %d = %s, want frozen 80", block, price.Dec())
		}
	}

	next, err := e.v.NextPriceChangeBlock(150)
	if err != nil {
		t.Fatalf("NextPriceChangeBlock: %v", err)
	}
	if next != 0 {
		t.Errorf("next price change after sale = %d, want 0", next)
	}
}

func TestSettleRejectsUnderpayment(t *testing.T) {
	e := newEnv(t, 1000)
	e.configure()
	err := e.v.Settle(e.paidCall(player(9), 112, 79)) // price is 80
	if !errors.Is(err, vault.ErrInsufficientPayment) {
		t.Errorf("expected ErrInsufficientPayment, got %v", err)
	}
	sold, err := e.v.SoldOut()
	if err != nil {
		t.Fatalf("SoldOut: %v", err)
	}
	if sold {
		t.Error("failed settle should not transfer the asset")
	}
}

func TestSettleRequiresConfiguredAuction(t *testing.T) {
	e := newEnv(t, 1000)
	err := e.v.Settle(e.paidCall(player(9), 10, 0))
	if !errors.Is(err, vault.ErrAuctionNotStarted) {
		t.Errorf("expected ErrAuctionNotStarted, got %v", err)
	}
}

func TestSettleTransfersAssetAndRefundsOverpayment(t *testing.T) {
	e := newEnv(t, 1000)
	e.configure()
	buyer := player(9)
	e.settle(buyer, 112, 95) // price 80, overpaid by 15

	owner, err := e.registry.OwnerOf(e.asset.TokenID)
	if err != nil {
		t.Fatalf("OwnerOf: %v", err)
	}
	if owner != buyer {
		t.Errorf("asset owner = %s, want buyer %s", owner, buyer)
	}
	sold, err := e.v.SoldOut()
	if err != nil {
		t.Fatalf("SoldOut: %v", err)
	}
	if !sold {
		t.Error("vault should report sold out")
	}
	if got := e.v.FinalPrice(); got.Uint64() != 80 {
		t.Errorf("final price = %s, want 80", got.Dec())
	}
	if got := e.v.Funds(); got.Uint64() != 80 {
		t.Errorf("held funds = %s, want 80", got.Dec())
	}
	if got := e.payouts.TotalTo(buyer); got.Uint64() != 15 {
		t.Errorf("refund = %s, want 15", got.Dec())
	}

	// The sale is final: a second buyer cannot settle.
	err = e.v.Settle(e.paidCall(player(8), 113, 1000))
	if !errors.Is(err, vault.ErrSoldOut) {
		t.Errorf("expected ErrSoldOut, got %v", err)
	}
}

func TestWithdrawProportionalPayout(t *testing.T) {
	e := newEnv(t, 1000)
	a, b := player(1), player(2)
	e.configure()
	e.redeem(0, a, 400, 10)
	e.redeem(1, b, 600, 11)
	e.settle(player(9), 112, 80)

	wa, err := e.v.WithdrawableFrom(a)
	if err != nil {
		t.Fatalf("WithdrawableFrom: %v", err)
	}
	if wa.Uint64() != 32 { // 80 * 400/1000
		t.Errorf("withdrawable(a) = %s, want 32", wa.Dec())
	}
	wb, err := e.v.WithdrawableFrom(b)
	if err != nil {
		t.Fatalf("WithdrawableFrom: %v", err)
	}
	if wb.Uint64() != 48 {
		t.Errorf("withdrawable(b) = %s, want 48", wb.Dec())
	}

	if err := e.v.Withdraw(e.call(a, 113)); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	e.mustHoldInvariants()
	if got := e.payouts.TotalTo(a); got.Uint64() != 32 {
		t.Errorf("paid(a) = %s, want 32", got.Dec())
	}
	if got := e.v.BalanceOf(a); !got.IsZero() {
		t.Errorf("withdraw should burn the whole balance, left %s", got.Dec())
	}
	if got := e.v.Funds(); got.Uint64() != 48 {
		t.Errorf("held funds = %s, want 48", got.Dec())
	}
	if got := e.v.Stats().TotalWithdrawals; got != 1 {
		t.Errorf("withdrawals = %d, want 1", got)
	}

	// Second withdraw with no balance fails.
	if err := e.v.Withdraw(e.call(a, 114)); !errors.Is(err, vault.ErrNoShares) {
		t.Errorf("expected ErrNoShares, got %v", err)
	}
}

func TestWithdrawBeforeSaleFails(t *testing.T) {
	e := newEnv(t, 1000)
	a := player(1)
	e.redeem(0, a, 400, 10)
	if err := e.v.Withdraw(e.call(a, 11)); !errors.Is(err, vault.ErrNotSoldOut) {
		t.Errorf("expected ErrNotSoldOut, got %v", err)
	}
	w, err := e.v.WithdrawableFrom(a)
	if err != nil {
		t.Fatalf("WithdrawableFrom: %v", err)
	}
	if !w.IsZero() {
		t.Errorf("withdrawable before sale = %s, want 0", w.Dec())
	}
}

func TestWithdrawRoundingLossStaysInVault(t *testing.T) {
	e := newEnv(t, 3)
	a, b := player(1), player(2)
	s := auction.Settings{
		StartingPrice: uint256.NewInt(100),
		ReservePrice:  uint256.NewInt(100),
		DeltaPrice:    uint256.NewInt(0),
		RoundBlocks:   5,
		StartingBlock: 100,
	}
	if err := e.v.ConfigureAuction(e.call(e.curatorAddr, 2), s); err != nil {
		t.Fatalf("ConfigureAuction: %v", err)
	}
	e.redeem(0, a, 1, 10)
	e.redeem(1, b, 2, 11)
	e.settle(player(9), 100, 100)

	// 100*1/3 = 33, 100*2/3 = 66; one unit of rounding loss remains.
	sum := new(uint256.Int)
	for _, holder := range []chain.Address{a, b} {
		w, err := e.v.WithdrawableFrom(holder)
		if err != nil {
			t.Fatalf("WithdrawableFrom: %v", err)
		}
		sum.Add(sum, w)
	}
	if sum.Uint64() != 99 {
		t.Errorf("sum of withdrawables = %s, want 99", sum.Dec())
	}
	if sum.Gt(e.v.FinalPrice()) {
		t.Error("withdrawable sum exceeds the final price")
	}

	if err := e.v.Withdraw(e.call(a, 101)); err != nil {
		t.Fatalf("Withdraw(a): %v", err)
	}
	if err := e.v.Withdraw(e.call(b, 102)); err != nil {
		t.Fatalf("Withdraw(b): %v", err)
	}
	if got := e.v.Funds(); got.Uint64() != 1 {
		t.Errorf("residue = %s, want 1", got.Dec())
	}
}

func TestWithdrawPayFailureLeavesNoTrace(t *testing.T) {
	e := newEnv(t, 1000)
	a := player(1)
	e.configure()
	e.redeem(0, a, 400, 10)
	e.settle(player(9), 112, 80)

	boom := errors.New("sink offline")
	e.payouts.Hook = func(chain.Address, *uint256.Int) error { return boom }
	if err := e.v.Withdraw(e.call(a, 113)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped pay failure, got %v", err)
	}
	e.payouts.Hook = nil

	// Balance, funds, and counters are back where they were.
	if got := e.v.BalanceOf(a); got.IsZero() {
		t.Error("failed payout burned the balance")
	}
	if got := e.v.Funds(); got.Uint64() != 80 {
		t.Errorf("funds = %s, want 80", got.Dec())
	}
	if got := e.v.Stats().TotalWithdrawals; got != 0 {
		t.Errorf("withdrawals = %d, want 0", got)
	}
	e.mustHoldInvariants()

	if err := e.v.Withdraw(e.call(a, 114)); err != nil {
		t.Fatalf("retry after sink recovery: %v", err)
	}
}

func TestWithdrawReentrancyBlocked(t *testing.T) {
	e := newEnv(t, 1000)
	a := player(1)
	e.configure()
	e.redeem(0, a, 400, 10)
	e.settle(player(9), 112, 80)

	var reentrant error
	e.payouts.Hook = func(to chain.Address, _ *uint256.Int) error {
		// Recipient code calling back into the vault mid-payout.
		reentrant = e.v.Withdraw(e.call(to, 113))
		return nil
	}
	if err := e.v.Withdraw(e.call(a, 113)); err != nil {
		t.Fatalf("outer Withdraw: %v", err)
	}
	if !errors.Is(reentrant, vault.ErrReentrantCall) {
		t.Errorf("nested call = %v, want ErrReentrantCall", reentrant)
	}
	if got := e.payouts.TotalTo(a); got.Uint64() != 32 {
		t.Errorf("paid = %s, want a single 32 payout", got.Dec())
	}
	e.mustHoldInvariants()
}
