// Package auction implements the block-indexed Dutch price schedule
// for a vault's parent asset sale. The schedule is a pure function of
// the configured settings and a block height; whether the asset is
// already sold is the vault's concern and layered on top.
package auction

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	ErrZeroStartingPrice = errors.New("auction: starting price must be positive")
	ErrPriceBounds       = errors.New("auction: starting price below reserve price")
	ErrDeltaTooLarge     = errors.New("auction: delta exceeds the price range")
	ErrZeroRoundBlocks   = errors.New("auction: round length must be positive")
	ErrStartNotFuture    = errors.New("auction: starting block must be in the future")
)

// Settings configure the descending price schedule: the price starts
// at StartingPrice when StartingBlock is reached and drops by
// DeltaPrice every RoundBlocks blocks until it floors at ReservePrice.
type Settings struct {
	StartingPrice *uint256.Int
	ReservePrice  *uint256.Int
	DeltaPrice    *uint256.Int
	RoundBlocks   uint64
	StartingBlock uint64
}

// Clone returns a deep copy of the settings.
func (s Settings) Clone() Settings {
	return Settings{
		StartingPrice: cloneOrZero(s.StartingPrice),
		ReservePrice:  cloneOrZero(s.ReservePrice),
		DeltaPrice:    cloneOrZero(s.DeltaPrice),
		RoundBlocks:   s.RoundBlocks,
		StartingBlock: s.StartingBlock,
	}
}

// Validate checks the settings against the current block height.
// Invalid settings are rejected wholesale; the caller keeps whatever
// configuration was previously in effect.
func (s Settings) Validate(currentBlock uint64) error {
	if s.StartingPrice == nil || s.StartingPrice.IsZero() {
		return ErrZeroStartingPrice
	}
	reserve := valueOrZero(s.ReservePrice)
	if s.StartingPrice.Lt(reserve) {
		return ErrPriceBounds
	}
	span := new(uint256.Int).Sub(s.StartingPrice, reserve)
	if delta := valueOrZero(s.DeltaPrice); delta.Gt(span) {
		return ErrDeltaTooLarge
	}
	if s.RoundBlocks == 0 {
		return ErrZeroRoundBlocks
	}
	if s.StartingBlock == 0 || s.StartingBlock <= currentBlock {
		return ErrStartNotFuture
	}
	return nil
}

// PriceAt returns the scheduled price at the given block. Before the
// starting block (or with an unconfigured schedule) the price is the
// starting price; afterwards it drops by DeltaPrice per elapsed round
// and floors at the reserve.
func (s Settings) PriceAt(block uint64) *uint256.Int {
	starting := valueOrZero(s.StartingPrice)
	if block < s.StartingBlock || s.RoundBlocks == 0 {
		return starting.Clone()
	}
	reserve := valueOrZero(s.ReservePrice)
	round := (block - s.StartingBlock) / s.RoundBlocks

	drop, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(round), valueOrZero(s.DeltaPrice))
	span := new(uint256.Int).Sub(starting, reserve)
	if overflow || drop.Gt(span) {
		return reserve.Clone()
	}
	return new(uint256.Int).Sub(starting, drop)
}

// NextPriceChangeBlock returns the block at which the schedule next
// changes: the starting block if the auction has not opened, otherwise
// the first block of the next round. Freezing after a sale is the
// vault's concern.
func (s Settings) NextPriceChangeBlock(block uint64) uint64 {
	if block < s.StartingBlock || s.RoundBlocks == 0 {
		return s.StartingBlock
	}
	round := (block - s.StartingBlock) / s.RoundBlocks
	return s.StartingBlock + s.RoundBlocks*(round+1)
}

func cloneOrZero(x *uint256.Int) *uint256.Int {
	if x == nil {
		return new(uint256.Int)
	}
	return x.Clone()
}

func valueOrZero(x *uint256.Int) *uint256.Int {
	if x == nil {
		return new(uint256.Int)
	}
	return x
}
