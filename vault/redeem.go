package vault

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/fracvault-xyz/go-fracvault/chain"
	"github.com/fracvault-xyz/go-fracvault/deed"
	"github.com/fracvault-xyz/go-fracvault/eventlog"
)

// Redeem exchanges a curator-signed deed for shares. The deed is
// validated in full before any write: signature, asset binding, player
// address, index availability, capacity, and finally the score proof
// against the parent asset contract. On success the contributor is
// recorded (first redemption also enrolls them as an author) and
// pixels scaled by SharesPerPixel are minted to the player.
func (v *Vault) Redeem(call Call, d *deed.Deed) error {
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
	if err := v.verifyDeed(d); err != nil {
		return err
	}

	if _, known := v.legacyPixels[d.Player]; !known {
		v.authors = append(v.authors, d.Player)
	}
	v.legacyPixels[d.Player] += d.Pixels
	v.players[d.PlayerIndex] = Player{Address: d.Player, Pixels: d.Pixels}
	v.stats.RedeemedPixels += d.Pixels
	v.stats.RedeemedPlayers++

	amount := new(uint256.Int).Mul(uint256.NewInt(d.Pixels), SharesPerPixel)
	if err := v.shares.Mint(d.Player, amount); err != nil {
		// Unreachable after verifyDeed; restore the records anyway so a
		// failed mint leaves no trace.
		v.rollbackRedeem(d)
		return fmt.Errorf("vault: mint shares: %w", err)
	}

	v.journal(eventlog.New(eventlog.OpRedeem, d.Player.Hex(), call.Block).
		WithAmount(amount.Dec()).
		WithAttr("player_index", fmt.Sprint(d.PlayerIndex)).
		WithAttr("pixels", fmt.Sprint(d.Pixels)))
	return nil
}

// verifyDeed runs the full validation chain. It performs no writes.
func (v *Vault) verifyDeed(d *deed.Deed) error {
	if err := d.VerifySignature(v.curator); err != nil {
		return err
	}
	if err := d.CheckParent(v.asset.Contract, v.asset.TokenID); err != nil {
		return err
	}
	if err := d.CheckPlayer(); err != nil {
		return err
	}
	if _, taken := v.players[d.PlayerIndex]; taken {
		return ErrIndexTaken
	}
	if d.Pixels > v.stats.TotalPixels-v.stats.RedeemedPixels {
		return ErrOverbooked
	}
	if err := v.cfg.Parent.VerifyPlayerScore(v.asset.TokenID, d.PlayerIndex, d.Pixels, d.ScoreProof); err != nil {
		return fmt.Errorf("%w: %v", ErrScoreRejected, err)
	}
	return nil
}

func (v *Vault) rollbackRedeem(d *deed.Deed) {
	v.legacyPixels[d.Player] -= d.Pixels
	if v.legacyPixels[d.Player] == 0 {
		delete(v.legacyPixels, d.Player)
		v.authors = removeAddress(v.authors, d.Player)
	}
	delete(v.players, d.PlayerIndex)
	v.stats.RedeemedPixels -= d.Pixels
	v.stats.RedeemedPlayers--
}

func removeAddress(pool []chain.Address, a chain.Address) []chain.Address {
	for i, cur := range pool {
		if cur == a {
			return append(pool[:i], pool[i+1:]...)
		}
	}
	return pool
}

// TransferShares moves share units between holders, ticking the
// vault's transfer meter.
func (v *Vault) TransferShares(call Call, to chain.Address, amount *uint256.Int) error {
	if err := v.enter(); err != nil {
		return err
	}
	defer v.exit()

	if err := v.requireInit(); err != nil {
		return err
	}
	if err := v.shares.Transfer(call.Caller, to, amount); err != nil {
		return err
	}
	v.journal(eventlog.New(eventlog.OpTransfer, call.Caller.Hex(), call.Block).
		WithAmount(amount.Dec()).
		WithAttr("to", to.Hex()))
	return nil
}
