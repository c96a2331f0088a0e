package vault

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/fracvault-xyz/go-fracvault/chain"
)

// Curator returns the address authorized to configure the auction and
// request randomization.
func (v *Vault) Curator() chain.Address {
	return v.curator
}

// Asset returns the locked parent asset reference.
func (v *Vault) Asset() AssetRef {
	return AssetRef{Contract: v.asset.Contract, TokenID: cloneOrZero(v.asset.TokenID)}
}

// TotalSupplyUnits returns the fixed share supply the vault was
// initialized with, in base units.
func (v *Vault) TotalSupplyUnits() *uint256.Int {
	return v.totalSupply.Clone()
}

// TotalScore returns the parent artwork's total score: the pixel
// capacity the share supply was minted against.
func (v *Vault) TotalScore() uint64 {
	return v.stats.TotalPixels
}

// Stats returns the vault's counters, including the share ledger's
// transfer meter.
func (v *Vault) Stats() Stats {
	s := v.stats
	s.TotalTransfers = v.shares.Transfers()
	return s
}

// BalanceOf returns the share balance of an address in base units.
func (v *Vault) BalanceOf(a chain.Address) *uint256.Int {
	return v.shares.BalanceOf(a)
}

// Funds returns the proceeds currently held for shareholders.
func (v *Vault) Funds() *uint256.Int {
	return v.funds.Clone()
}

// PlayerAt returns the redemption recorded at a player index.
func (v *Vault) PlayerAt(index uint64) (Player, bool) {
	p, ok := v.players[index]
	return p, ok
}

// LegacyPixelsOf returns the cumulative pixels an address has redeemed
// across all its deeds.
func (v *Vault) LegacyPixelsOf(a chain.Address) uint64 {
	return v.legacyPixels[a]
}

// ContestantsCount returns the number of distinct authors eligible for
// the jackpot draw.
func (v *Vault) ContestantsCount() uint64 {
	return uint64(len(v.authors))
}

// ContestantAddresses returns a page of the author pool. Offset and
// size are clamped to the pool bounds.
func (v *Vault) ContestantAddresses(offset, size uint64) []chain.Address {
	total := uint64(len(v.authors))
	if offset >= total {
		return nil
	}
	end := offset + size
	if end < offset || end > total {
		end = total
	}
	out := make([]chain.Address, end-offset)
	copy(out, v.authors[offset:end])
	return out
}

// JackpotsCount returns the number of jackpots escrowed on the parent
// asset.
func (v *Vault) JackpotsCount() (uint64, error) {
	if err := v.requireInit(); err != nil {
		return 0, err
	}
	return v.cfg.Parent.JackpotsCount(v.asset.TokenID)
}

// JackpotByIndex returns one escrowed jackpot.
func (v *Vault) JackpotByIndex(index uint64) (Jackpot, error) {
	if err := v.requireInit(); err != nil {
		return Jackpot{}, err
	}
	return v.cfg.Parent.JackpotByIndex(v.asset.TokenID, index)
}

// JackpotsTotalValue sums the value of every escrowed jackpot.
func (v *Vault) JackpotsTotalValue() (*uint256.Int, error) {
	count, err := v.JackpotsCount()
	if err != nil {
		return nil, err
	}
	total := new(uint256.Int)
	for i := uint64(0); i < count; i++ {
		jp, err := v.JackpotByIndex(i)
		if err != nil {
			return nil, fmt.Errorf("vault: jackpot %d: %w", i, err)
		}
		if jp.Value != nil {
			total.Add(total, jp.Value)
		}
	}
	return total, nil
}

// JackpotByWinner returns the winner record for an address. The second
// return is false for addresses the draw never selected.
func (v *Vault) JackpotByWinner(a chain.Address) (WinnerRecord, bool) {
	record, ok := v.winners[a]
	return record, ok
}
