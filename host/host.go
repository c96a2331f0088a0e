// Package host provides in-memory implementations of the vault's
// external collaborators: the asset registry, the parent asset
// contract, the randomness oracle, and an outbound payment recorder.
// They back the simulator CLI and the test suites.
package host

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/fracvault-xyz/go-fracvault/chain"
	"github.com/fracvault-xyz/go-fracvault/vault"
)

var (
	ErrUnknownAsset    = errors.New("host: unknown asset")
	ErrNotOwner        = errors.New("host: transfer from non-owner")
	ErrUnknownScore    = errors.New("host: no score registered for index")
	ErrScoreMismatch   = errors.New("host: score proof mismatch")
	ErrUnknownJackpot  = errors.New("host: jackpot index out of range")
	ErrJackpotDrained  = errors.New("host: jackpot already transferred")
	ErrOracleUnderpaid = errors.New("host: payment below oracle fee")
	ErrNoRandomness    = errors.New("host: no randomness published for block")
)

func tokenKey(tokenID *uint256.Int) [32]byte {
	if tokenID == nil {
		return [32]byte{}
	}
	return tokenID.Bytes32()
}

// Registry is an in-memory non-fungible asset registry.
type Registry struct {
	owners map[[32]byte]chain.Address
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{owners: make(map[[32]byte]chain.Address)}
}

// MintAsset records an asset owned by the given address.
func (r *Registry) MintAsset(owner chain.Address, tokenID *uint256.Int) {
	r.owners[tokenKey(tokenID)] = owner
}

// OwnerOf returns the current custodian of an asset.
func (r *Registry) OwnerOf(tokenID *uint256.Int) (chain.Address, error) {
	owner, ok := r.owners[tokenKey(tokenID)]
	if !ok {
		return chain.Address{}, ErrUnknownAsset
	}
	return owner, nil
}

// TransferFrom moves an asset between owners, enforcing that from is
// the current custodian.
func (r *Registry) TransferFrom(from, to chain.Address, tokenID *uint256.Int) error {
	owner, ok := r.owners[tokenKey(tokenID)]
	if !ok {
		return ErrUnknownAsset
	}
	if owner != from {
		return ErrNotOwner
	}
	r.owners[tokenKey(tokenID)] = to
	return nil
}

type scoreRecord struct {
	pixels    uint64
	proofHash chain.Hash
}

// Asset is an in-memory parent asset contract: it authenticates score
// proofs against registered commitments and escrows jackpots.
type Asset struct {
	scores   map[uint64]scoreRecord
	jackpots []vault.Jackpot
	drained  map[uint64]chain.Address
}

// NewAsset creates a parent asset with no scores or jackpots.
func NewAsset() *Asset {
	return &Asset{
		scores:  make(map[uint64]scoreRecord),
		drained: make(map[uint64]chain.Address),
	}
}

// RegisterScore commits a player index to a pixel count and proof.
// Deeds redeeming that index must present the same pixels and proof.
func (a *Asset) RegisterScore(playerIndex, pixels uint64, proof []byte) {
	a.scores[playerIndex] = scoreRecord{pixels: pixels, proofHash: chain.Keccak256(proof)}
}

// AddJackpot escrows one sponsor-funded jackpot and returns its index.
func (a *Asset) AddJackpot(jp vault.Jackpot) uint64 {
	a.jackpots = append(a.jackpots, jp)
	return uint64(len(a.jackpots) - 1)
}

// VerifyPlayerScore implements vault.ParentAsset.
func (a *Asset) VerifyPlayerScore(tokenID *uint256.Int, playerIndex, pixels uint64, proof []byte) error {
	record, ok := a.scores[playerIndex]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownScore, playerIndex)
	}
	if record.pixels != pixels || record.proofHash != chain.Keccak256(proof) {
		return ErrScoreMismatch
	}
	return nil
}

// JackpotsCount implements vault.ParentAsset.
func (a *Asset) JackpotsCount(tokenID *uint256.Int) (uint64, error) {
	return uint64(len(a.jackpots)), nil
}

// JackpotByIndex implements vault.ParentAsset.
func (a *Asset) JackpotByIndex(tokenID *uint256.Int, index uint64) (vault.Jackpot, error) {
	if index >= uint64(len(a.jackpots)) {
		return vault.Jackpot{}, ErrUnknownJackpot
	}
	return a.jackpots[index], nil
}

// TransferJackpot implements vault.ParentAsset. Each jackpot can be
// transferred once.
func (a *Asset) TransferJackpot(tokenID *uint256.Int, index uint64, to chain.Address) error {
	if index >= uint64(len(a.jackpots)) {
		return ErrUnknownJackpot
	}
	if _, done := a.drained[index]; done {
		return ErrJackpotDrained
	}
	a.drained[index] = to
	a.jackpots[index].Recipient = to
	return nil
}

// JackpotRecipient returns who a jackpot was transferred to, if it was.
func (a *Asset) JackpotRecipient(index uint64) (chain.Address, bool) {
	to, ok := a.drained[index]
	return to, ok
}

// Oracle is a scripted randomness oracle. Requests consume a flat fee;
// randomness becomes available for a block once Publish is called.
type Oracle struct {
	Fee    *uint256.Int
	values map[uint64]chain.Hash
}

// NewOracle creates an oracle charging the given fee per request.
func NewOracle(fee *uint256.Int) *Oracle {
	return &Oracle{Fee: fee.Clone(), values: make(map[uint64]chain.Hash)}
}

// RequestRandomness implements vault.RandomnessOracle.
func (o *Oracle) RequestRandomness(payment *uint256.Int) (*uint256.Int, error) {
	if payment.Lt(o.Fee) {
		return nil, ErrOracleUnderpaid
	}
	return o.Fee.Clone(), nil
}

// Publish derives and stores the randomness for a request block,
// making it ready.
func (o *Oracle) Publish(requestBlock uint64, entropy []byte) chain.Hash {
	var blk [8]byte
	binary.BigEndian.PutUint64(blk[:], requestBlock)
	value := chain.Keccak256(blk[:], entropy)
	o.values[requestBlock] = value
	return value
}

// IsReady implements vault.RandomnessOracle.
func (o *Oracle) IsReady(requestBlock uint64) bool {
	_, ok := o.values[requestBlock]
	return ok
}

// RandomnessFor implements vault.RandomnessOracle.
func (o *Oracle) RandomnessFor(requestBlock uint64) (chain.Hash, error) {
	value, ok := o.values[requestBlock]
	if !ok {
		return chain.Hash{}, ErrNoRandomness
	}
	return value, nil
}

// Payment records one outbound transfer from the vault.
type Payment struct {
	To     chain.Address
	Amount *uint256.Int
}

// Payouts records outbound vault payments. An optional hook runs
// before each payment is recorded, letting tests inject failures or
// reentrant callbacks.
type Payouts struct {
	Payments []Payment
	Hook     func(to chain.Address, amount *uint256.Int) error
}

// Pay implements vault.Payer.
func (p *Payouts) Pay(to chain.Address, amount *uint256.Int) error {
	if p.Hook != nil {
		if err := p.Hook(to, amount); err != nil {
			return err
		}
	}
	p.Payments = append(p.Payments, Payment{To: to, Amount: amount.Clone()})
	return nil
}

// TotalTo sums the recorded payments to an address.
func (p *Payouts) TotalTo(a chain.Address) *uint256.Int {
	total := new(uint256.Int)
	for _, pay := range p.Payments {
		if pay.To == a {
			total.Add(total, pay.Amount)
		}
	}
	return total
}
