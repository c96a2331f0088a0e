// Package ledger implements fungible share accounting for a vault:
// balances, total supply, and the transfer meter.
package ledger

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/fracvault-xyz/go-fracvault/chain"
)

var (
	ErrZeroAddress        = errors.New("ledger: zero address")
	ErrInsufficientShares = errors.New("ledger: insufficient share balance")
	ErrSupplyOverflow     = errors.New("ledger: supply overflow")
	ErrSupplyUnderflow    = errors.New("ledger: burn exceeds supply")
)

// Ledger tracks share balances in base units. Every balance-moving
// operation (mint, burn, transfer) ticks the transfer meter.
type Ledger struct {
	balances  map[chain.Address]*uint256.Int
	supply    *uint256.Int
	transfers uint64
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		balances: make(map[chain.Address]*uint256.Int),
		supply:   new(uint256.Int),
	}
}

// Mint credits amount to an address and grows the supply.
func (l *Ledger) Mint(to chain.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	if _, overflow := new(uint256.Int).AddOverflow(l.supply, amount); overflow {
		return ErrSupplyOverflow
	}
	l.supply.Add(l.supply, amount)
	l.credit(to, amount)
	l.transfers++
	return nil
}

// Burn debits amount from an address and shrinks the supply.
func (l *Ledger) Burn(from chain.Address, amount *uint256.Int) error {
	bal, ok := l.balances[from]
	if !ok || bal.Lt(amount) {
		return ErrInsufficientShares
	}
	if l.supply.Lt(amount) {
		return ErrSupplyUnderflow
	}
	bal.Sub(bal, amount)
	if bal.IsZero() {
		delete(l.balances, from)
	}
	l.supply.Sub(l.supply, amount)
	l.transfers++
	return nil
}

// Transfer moves amount between two addresses.
func (l *Ledger) Transfer(from, to chain.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	bal, ok := l.balances[from]
	if !ok || bal.Lt(amount) {
		return ErrInsufficientShares
	}
	bal.Sub(bal, amount)
	if bal.IsZero() {
		delete(l.balances, from)
	}
	l.credit(to, amount)
	l.transfers++
	return nil
}

func (l *Ledger) credit(to chain.Address, amount *uint256.Int) {
	if bal, ok := l.balances[to]; ok {
		bal.Add(bal, amount)
		return
	}
	l.balances[to] = amount.Clone()
}

// BalanceOf returns a copy of the balance held by an address.
func (l *Ledger) BalanceOf(a chain.Address) *uint256.Int {
	if bal, ok := l.balances[a]; ok {
		return bal.Clone()
	}
	return new(uint256.Int)
}

// TotalSupply returns a copy of the outstanding supply.
func (l *Ledger) TotalSupply() *uint256.Int {
	return l.supply.Clone()
}

// Transfers returns the transfer meter: the number of balance-moving
// operations applied since creation.
func (l *Ledger) Transfers() uint64 {
	return l.transfers
}

// Holders returns the number of addresses with a nonzero balance.
func (l *Ledger) Holders() int {
	return len(l.balances)
}

// HolderAddresses returns every address with a nonzero balance, in
// unspecified order.
func (l *Ledger) HolderAddresses() []chain.Address {
	out := make([]chain.Address, 0, len(l.balances))
	for a := range l.balances {
		out = append(out, a)
	}
	return out
}

// Audit verifies that the sum of all balances equals the recorded
// supply.
func (l *Ledger) Audit() error {
	sum := new(uint256.Int)
	for _, bal := range l.balances {
		sum.Add(sum, bal)
	}
	if !sum.Eq(l.supply) {
		return errors.New("ledger: balance sum does not match supply")
	}
	return nil
}
