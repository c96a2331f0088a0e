package vault

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/fracvault-xyz/go-fracvault/auction"
	"github.com/fracvault-xyz/go-fracvault/chain"
	"github.com/fracvault-xyz/go-fracvault/eventlog"
)

// ConfigureAuction replaces the Dutch auction settings. Curator only,
// and only while the parent asset is still in custody. Invalid
// settings are rejected wholesale and the prior configuration stays in
// effect.
func (v *Vault) ConfigureAuction(call Call, s auction.Settings) error {
	if err := v.enter(); err != nil {
		return err
	}
	defer v.exit()

	if err := v.requireInit(); err != nil {
		return err
	}
	if err := v.requireCurator(call.Caller); err != nil {
		return err
	}
	if err := v.requireNotSoldOut(); err != nil {
		return err
	}
	if err := s.Validate(call.Block); err != nil {
		return err
	}

	v.settings = s.Clone()
	v.journal(eventlog.New(eventlog.OpConfigure, call.Caller.Hex(), call.Block).
		WithAttr("starting_price", v.settings.StartingPrice.Dec()).
		WithAttr("reserve_price", v.settings.ReservePrice.Dec()).
		WithAttr("delta_price", v.settings.DeltaPrice.Dec()).
		WithAttr("round_blocks", fmt.Sprint(v.settings.RoundBlocks)).
		WithAttr("starting_block", fmt.Sprint(v.settings.StartingBlock)))
	return nil
}

// Settings returns a copy of the auction configuration.
func (v *Vault) Settings() auction.Settings {
	return v.settings.Clone()
}

// Price returns the asset price at the given block: the starting price
// before the auction opens, the recorded final price after a sale, and
// the descending schedule in between.
func (v *Vault) Price(block uint64) (*uint256.Int, error) {
	if err := v.requireInit(); err != nil {
		return nil, err
	}
	if block >= v.settings.StartingBlock && v.finalPrice != nil {
		return v.finalPrice.Clone(), nil
	}
	return v.settings.PriceAt(block), nil
}

// NextPriceChangeBlock returns the block at which the price next
// changes, or 0 once the asset is sold.
func (v *Vault) NextPriceChangeBlock(block uint64) (uint64, error) {
	if err := v.requireInit(); err != nil {
		return 0, err
	}
	if v.finalPrice != nil {
		return 0, nil
	}
	return v.settings.NextPriceChangeBlock(block), nil
}

// FinalPrice returns the recorded sale price, or zero while the parent
// asset is still in custody.
func (v *Vault) FinalPrice() *uint256.Int {
	if v.finalPrice == nil {
		return new(uint256.Int)
	}
	return v.finalPrice.Clone()
}

// Settle is the auction buy-now action: the caller pays at least the
// current price, the parent asset is transferred out to them, the
// computed price is recorded permanently as the final price and held
// for shareholders, and any overpayment is refunded. Once the asset
// has left custody the sale cannot be unwound, so a refund failure
// after the transfer is reported with the sale recorded.
func (v *Vault) Settle(call Call) error {
	if err := v.enter(); err != nil {
		return err
	}
	defer v.exit()

	if err := v.requireInit(); err != nil {
		return err
	}
	if err := v.requireNotSoldOut(); err != nil {
		return err
	}
	// An unconfigured schedule would price the asset at zero.
	if v.settings.RoundBlocks == 0 {
		return ErrAuctionNotStarted
	}

	price, err := v.Price(call.Block)
	if err != nil {
		return err
	}
	value := call.value()
	if value.Lt(price) {
		return ErrInsufficientPayment
	}

	if err := v.cfg.Registry.TransferFrom(v.cfg.Self, call.Caller, v.asset.TokenID); err != nil {
		return fmt.Errorf("vault: transfer parent asset: %w", err)
	}
	v.finalPrice = price.Clone()
	v.funds.Add(v.funds, price)

	v.journal(eventlog.New(eventlog.OpSettle, call.Caller.Hex(), call.Block).
		WithAmount(price.Dec()))

	if overpaid := new(uint256.Int).Sub(value, price); !overpaid.IsZero() {
		if err := v.cfg.Payer.Pay(call.Caller, overpaid); err != nil {
			return fmt.Errorf("vault: refund overpayment: %w", err)
		}
	}
	return nil
}

// Withdraw pays out the caller's proportional claim on the sale
// proceeds and burns their whole balance. Partial withdrawal is not
// supported; a second call with no balance fails.
func (v *Vault) Withdraw(call Call) error {
	if err := v.enter(); err != nil {
		return err
	}
	defer v.exit()

	if err := v.requireInit(); err != nil {
		return err
	}
	sold, err := v.SoldOut()
	if err != nil {
		return err
	}
	if !sold {
		return ErrNotSoldOut
	}

	balance := v.shares.BalanceOf(call.Caller)
	if balance.IsZero() {
		return ErrNoShares
	}
	owed, err := v.owedFor(balance)
	if err != nil {
		return err
	}
	if v.funds.Lt(owed) {
		return ErrInsufficientFunds
	}

	if err := v.shares.Burn(call.Caller, balance); err != nil {
		return fmt.Errorf("vault: burn shares: %w", err)
	}
	v.funds.Sub(v.funds, owed)
	v.stats.TotalWithdrawals++

	if err := v.cfg.Payer.Pay(call.Caller, owed); err != nil {
		// Restore the pre-call state so a failed payout leaves no trace.
		_ = v.shares.Mint(call.Caller, balance)
		v.funds.Add(v.funds, owed)
		v.stats.TotalWithdrawals--
		return fmt.Errorf("vault: pay withdrawal: %w", err)
	}

	v.journal(eventlog.New(eventlog.OpWithdraw, call.Caller.Hex(), call.Block).
		WithAmount(owed.Dec()))
	return nil
}

// WithdrawableFrom returns the amount an address could withdraw right
// now: zero before the sale, otherwise finalPrice * balance /
// totalSupplyUnits. It never mutates state.
func (v *Vault) WithdrawableFrom(a chain.Address) (*uint256.Int, error) {
	if err := v.requireInit(); err != nil {
		return nil, err
	}
	if v.finalPrice == nil {
		return new(uint256.Int), nil
	}
	balance := v.shares.BalanceOf(a)
	if balance.IsZero() {
		return new(uint256.Int), nil
	}
	return v.owedFor(balance)
}

func (v *Vault) owedFor(balance *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(v.FinalPrice(), balance)
	if overflow {
		return nil, fmt.Errorf("vault: payout arithmetic overflow")
	}
	return product.Div(product, v.totalSupply), nil
}
