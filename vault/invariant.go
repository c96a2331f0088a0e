package vault

import (
	"fmt"

	"github.com/fracvault-xyz/go-fracvault/chain"
)

// CheckInvariants verifies the vault's structural invariants:
// redemption accounting balances, the author pool holds no duplicates,
// winners were drawn from the pool, claims imply awards, and the
// recorded final price agrees with registry custody. Intended for
// tests and simulations after every mutation.
func (v *Vault) CheckInvariants() error {
	if !v.initialized {
		return nil
	}

	if v.stats.RedeemedPixels > v.stats.TotalPixels {
		return fmt.Errorf("vault: redeemed %d pixels exceeds capacity %d",
			v.stats.RedeemedPixels, v.stats.TotalPixels)
	}

	var legacySum, playerSum uint64
	for _, px := range v.legacyPixels {
		legacySum += px
	}
	for _, p := range v.players {
		playerSum += p.Pixels
	}
	if legacySum != v.stats.RedeemedPixels {
		return fmt.Errorf("vault: legacy pixel sum %d != redeemed %d", legacySum, v.stats.RedeemedPixels)
	}
	if playerSum != v.stats.RedeemedPixels {
		return fmt.Errorf("vault: player pixel sum %d != redeemed %d", playerSum, v.stats.RedeemedPixels)
	}

	seen := make(map[chain.Address]bool, len(v.authors))
	for _, a := range v.authors {
		if seen[a] {
			return fmt.Errorf("vault: duplicate author %s", a)
		}
		seen[a] = true
		if _, ok := v.legacyPixels[a]; !ok {
			return fmt.Errorf("vault: author %s has no redemption record", a)
		}
	}
	if len(v.authors) != len(v.legacyPixels) {
		return fmt.Errorf("vault: %d authors but %d redemption records", len(v.authors), len(v.legacyPixels))
	}

	for a, w := range v.winners {
		if w.Claimed && !w.Awarded {
			return fmt.Errorf("vault: winner %s claimed without award", a)
		}
		if !seen[a] {
			return fmt.Errorf("vault: winner %s is not in the author pool", a)
		}
	}

	if err := v.shares.Audit(); err != nil {
		return err
	}
	if v.shares.TotalSupply().Gt(v.totalSupply) {
		return fmt.Errorf("vault: outstanding shares exceed the fixed supply")
	}

	sold, err := v.SoldOut()
	if err != nil {
		return err
	}
	if sold != (v.finalPrice != nil) {
		return fmt.Errorf("vault: custody (sold=%v) disagrees with final price record", sold)
	}
	return nil
}
