package vault

import (
	"github.com/holiman/uint256"

	"github.com/fracvault-xyz/go-fracvault/chain"
)

// AssetRegistry is the non-fungible registry holding the parent asset.
// Custody recorded here is the single source of truth for whether the
// asset has been sold.
type AssetRegistry interface {
	OwnerOf(tokenID *uint256.Int) (chain.Address, error)
	TransferFrom(from, to chain.Address, tokenID *uint256.Int) error
}

// Jackpot describes one sponsor-funded prize escrowed on the parent
// asset contract.
type Jackpot struct {
	Sponsor   chain.Address
	Recipient chain.Address
	Value     *uint256.Int
	Text      string
}

// ParentAsset is the contract the parent token was minted on. It
// authenticates score proofs and escrows jackpots; the vault never
// holds jackpot value itself.
type ParentAsset interface {
	VerifyPlayerScore(tokenID *uint256.Int, playerIndex, pixels uint64, proof []byte) error
	JackpotsCount(tokenID *uint256.Int) (uint64, error)
	JackpotByIndex(tokenID *uint256.Int, index uint64) (Jackpot, error)
	TransferJackpot(tokenID *uint256.Int, index uint64, to chain.Address) error
}

// RandomnessOracle supplies verifiable randomness asynchronously. A
// request is keyed by the block it was made at; callers poll IsReady
// until the value for that block is available.
type RandomnessOracle interface {
	IsReady(requestBlock uint64) bool
	RequestRandomness(payment *uint256.Int) (used *uint256.Int, err error)
	RandomnessFor(requestBlock uint64) (chain.Hash, error)
}

// Payer moves value out of the vault. Implementations may run
// arbitrary recipient code; the vault holds its reentrancy lock across
// every call.
type Payer interface {
	Pay(to chain.Address, amount *uint256.Int) error
}
