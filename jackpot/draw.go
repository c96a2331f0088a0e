// Package jackpot draws jackpot winners without replacement from a
// vault's author pool using externally supplied randomness.
package jackpot

import (
	"encoding/binary"
	"errors"

	"github.com/holiman/uint256"

	"github.com/fracvault-xyz/go-fracvault/chain"
)

var ErrPoolTooSmall = errors.New("jackpot: fewer contestants than jackpots")

// Winner pairs a drawn address with the jackpot index it won.
type Winner struct {
	Address chain.Address
	Index   uint64
}

// Seed derives the draw value for one jackpot index from the shared
// randomness. Each index gets an independent value so a single oracle
// response covers every jackpot.
func Seed(randomness chain.Hash, index uint64) *uint256.Int {
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], index)
	h := chain.Keccak256(randomness[:], idx[:])
	return new(uint256.Int).SetBytes(h[:])
}

// Draw selects count distinct winners from pool: for each jackpot
// index the seed is reduced modulo the remaining pool size, the picked
// address is swapped to the end of the active range, and the range
// shrinks by one. The pool is reordered in place; no address can win
// twice. The pool is never mutated on error.
func Draw(randomness chain.Hash, count uint64, pool []chain.Address) ([]Winner, error) {
	if uint64(len(pool)) < count {
		return nil, ErrPoolTooSmall
	}

	winners := make([]Winner, 0, count)
	active := uint64(len(pool))
	for i := uint64(0); i < count; i++ {
		pick := new(uint256.Int).Mod(Seed(randomness, i), uint256.NewInt(active)).Uint64()
		winners = append(winners, Winner{Address: pool[pick], Index: i})
		pool[pick], pool[active-1] = pool[active-1], pool[pick]
		active--
	}
	return winners, nil
}
