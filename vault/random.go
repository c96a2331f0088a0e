package vault

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/fracvault-xyz/go-fracvault/chain"
	"github.com/fracvault-xyz/go-fracvault/eventlog"
	"github.com/fracvault-xyz/go-fracvault/jackpot"
)

// RequestRandomization asks the oracle for randomness to draw jackpot
// winners with. Curator only, once per vault: after a successful
// request the vault is committed to the randomizing state until
// SettleWinners succeeds. Requires an open auction, at least one
// configured jackpot, and enough distinct authors to cover every
// jackpot without repetition. Payment is forwarded to the oracle and
// the unused remainder refunded.
func (v *Vault) RequestRandomization(call Call) error {
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
	if v.randomnessBlock != 0 || v.randomized {
		return ErrRandomizationStarted
	}
	if v.settings.StartingBlock == 0 || call.Block < v.settings.StartingBlock {
		return ErrAuctionNotStarted
	}

	count, err := v.cfg.Parent.JackpotsCount(v.asset.TokenID)
	if err != nil {
		return fmt.Errorf("vault: query jackpots: %w", err)
	}
	if count == 0 {
		return ErrNoJackpots
	}
	if uint64(len(v.authors)) < count {
		return ErrNotEnoughContestants
	}

	value := call.value()
	used, err := v.cfg.Oracle.RequestRandomness(value)
	if err != nil {
		return fmt.Errorf("vault: request randomness: %w", err)
	}
	v.randomnessBlock = call.Block

	v.journal(eventlog.New(eventlog.OpRequestRandom, call.Caller.Hex(), call.Block).
		WithAmount(used.Dec()))

	if refund := new(uint256.Int).Sub(value, used); value.Gt(used) && !refund.IsZero() {
		if err := v.cfg.Payer.Pay(call.Caller, refund); err != nil {
			// The oracle already consumed its fee; the request stands.
			return fmt.Errorf("vault: refund oracle payment: %w", err)
		}
	}
	return nil
}

// SettleWinners finalizes the draw once the oracle reports the
// randomness for the request block is available. Callable by anyone,
// once. Each jackpot index draws one winner from the remaining author
// pool (swap-and-shrink, no replacement), so no author wins twice and
// every draw is uniform over the still-eligible pool.
func (v *Vault) SettleWinners(call Call) error {
	if err := v.enter(); err != nil {
		return err
	}
	defer v.exit()

	if err := v.requireInit(); err != nil {
		return err
	}
	if v.randomized {
		return ErrAlreadyRandomized
	}
	if v.randomnessBlock == 0 {
		return ErrNotRandomizing
	}
	if !v.cfg.Oracle.IsReady(v.randomnessBlock) {
		return ErrRandomnessNotReady
	}

	randomness, err := v.cfg.Oracle.RandomnessFor(v.randomnessBlock)
	if err != nil {
		return fmt.Errorf("vault: fetch randomness: %w", err)
	}
	count, err := v.cfg.Parent.JackpotsCount(v.asset.TokenID)
	if err != nil {
		return fmt.Errorf("vault: query jackpots: %w", err)
	}

	winners, err := jackpot.Draw(randomness, count, v.authors)
	if err != nil {
		return err
	}
	for _, w := range winners {
		v.winners[w.Address] = WinnerRecord{Awarded: true, Index: w.Index}
	}
	v.randomness = randomness
	v.randomized = true

	v.journal(eventlog.New(eventlog.OpSettleWinners, call.Caller.Hex(), call.Block).
		WithAttr("jackpots", fmt.Sprint(count)))
	return nil
}

// ClaimJackpot pays the caller's jackpot through the parent asset
// contract. Exactly-once per address: the claimed flag is what
// enforces it, not the parent contract.
func (v *Vault) ClaimJackpot(call Call) error {
	if err := v.enter(); err != nil {
		return err
	}
	defer v.exit()

	if err := v.requireInit(); err != nil {
		return err
	}
	if !v.randomized {
		return ErrNotRandomized
	}
	record, ok := v.winners[call.Caller]
	if !ok || !record.Awarded {
		return ErrNotAwarded
	}
	if record.Claimed {
		return ErrAlreadyClaimed
	}

	record.Claimed = true
	v.winners[call.Caller] = record

	if err := v.cfg.Parent.TransferJackpot(v.asset.TokenID, record.Index, call.Caller); err != nil {
		record.Claimed = false
		v.winners[call.Caller] = record
		return fmt.Errorf("vault: transfer jackpot: %w", err)
	}

	v.journal(eventlog.New(eventlog.OpClaimJackpot, call.Caller.Hex(), call.Block).
		WithAttr("jackpot_index", fmt.Sprint(record.Index)))
	return nil
}

// IsRandomizing reports whether a randomness request is pending.
func (v *Vault) IsRandomizing() bool {
	return v.randomnessBlock != 0 && !v.randomized
}

// IsRandomized reports whether winners have been settled.
func (v *Vault) IsRandomized() bool {
	return v.randomized
}

// RandomizationBlock returns the block the randomness request was made
// at, or 0 if none was made.
func (v *Vault) RandomizationBlock() uint64 {
	return v.randomnessBlock
}

// Randomness returns the recorded oracle randomness; the zero hash
// until winners are settled.
func (v *Vault) Randomness() chain.Hash {
	return v.randomness
}
