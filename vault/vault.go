// Package vault implements a fractional-ownership settlement vault: a
// single non-fungible parent asset is locked in, a fixed supply of
// fungible shares is minted against it through curator-signed deeds,
// the asset is sold through a block-indexed Dutch auction, proceeds
// are paid out proportionally, and sponsor-funded jackpots are drawn
// among the original contributors with oracle randomness.
package vault

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/fracvault-xyz/go-fracvault/auction"
	"github.com/fracvault-xyz/go-fracvault/chain"
	"github.com/fracvault-xyz/go-fracvault/eventlog"
	"github.com/fracvault-xyz/go-fracvault/ledger"
)

// SharesPerPixel is the share-unit scale: each redeemed pixel mints
// 10^18 base units.
var SharesPerPixel = uint256.MustFromDecimal("1000000000000000000")

// AssetRef identifies the locked parent asset.
type AssetRef struct {
	Contract chain.Address
	TokenID  *uint256.Int
}

// Stats are the vault's monotonic counters.
type Stats struct {
	TotalPixels      uint64
	RedeemedPixels   uint64
	RedeemedPlayers  uint64
	TotalTransfers   uint64
	TotalWithdrawals uint64
}

// Player records one redeemed deed slot. Each player index is written
// at most once.
type Player struct {
	Address chain.Address
	Pixels  uint64
}

// WinnerRecord tracks a drawn jackpot winner. An address enters the
// winner set at most once.
type WinnerRecord struct {
	Awarded bool
	Claimed bool
	Index   uint64
}

// Call carries the host execution context for one operation: who is
// calling, at what block height, and how much value was paid in.
type Call struct {
	Caller chain.Address
	Block  uint64
	Value  *uint256.Int // nil means zero
}

func (c Call) value() *uint256.Int {
	if c.Value == nil {
		return new(uint256.Int)
	}
	return c.Value.Clone()
}

// Config wires a vault instance to its host environment. The same
// collaborators can back many isolated instances; each New call stamps
// out independent state.
type Config struct {
	Self     chain.Address // the vault's own address in the registry
	Registry AssetRegistry
	Parent   ParentAsset
	Oracle   RandomnessOracle
	Payer    Payer
	Journal  eventlog.Sink // optional operation journal
}

// Vault is a single settlement vault instance. All operations run
// sequentially; the only concurrency hazard is reentrancy through
// outbound value transfers, which the internal lock guards against.
type Vault struct {
	cfg Config

	initialized bool
	locked      bool

	curator chain.Address
	asset   AssetRef

	totalSupply *uint256.Int // fixed at initialization
	shares      *ledger.Ledger
	funds       *uint256.Int // proceeds held for shareholders

	settings   auction.Settings
	finalPrice *uint256.Int // nil until the parent asset is sold

	stats        Stats
	players      map[uint64]Player
	legacyPixels map[chain.Address]uint64
	authors      []chain.Address

	winners         map[chain.Address]WinnerRecord
	randomnessBlock uint64
	randomness      chain.Hash
	randomized      bool
}

// New stamps out an uninitialized vault wired to the given
// collaborators.
func New(cfg Config) *Vault {
	return &Vault{
		cfg:          cfg,
		shares:       ledger.New(),
		funds:        new(uint256.Int),
		totalSupply:  new(uint256.Int),
		players:      make(map[uint64]Player),
		legacyPixels: make(map[chain.Address]uint64),
		winners:      make(map[chain.Address]WinnerRecord),
	}
}

// Initialize locks in the vault's identity: curator, parent asset, and
// pixel capacity. It runs at most once per instance and must run
// before any other operation. The total share supply is fixed here as
// totalPixels scaled by SharesPerPixel and never changes.
func (v *Vault) Initialize(call Call, curator chain.Address, asset AssetRef, totalPixels uint64) error {
	if err := v.enter(); err != nil {
		return err
	}
	defer v.exit()

	if v.initialized {
		return ErrAlreadyInitialized
	}
	if curator.IsZero() {
		return ErrZeroCurator
	}
	if totalPixels == 0 {
		return ErrZeroPixels
	}

	v.curator = curator
	v.asset = AssetRef{Contract: asset.Contract, TokenID: cloneOrZero(asset.TokenID)}
	v.stats.TotalPixels = totalPixels
	v.totalSupply = new(uint256.Int).Mul(uint256.NewInt(totalPixels), SharesPerPixel)
	v.settings = auction.Settings{}.Clone()
	v.initialized = true

	v.journal(eventlog.New(eventlog.OpInitialize, call.Caller.Hex(), call.Block).
		WithAttr("curator", curator.Hex()).
		WithAttr("total_pixels", fmt.Sprint(totalPixels)))
	return nil
}

// enter acquires the reentrancy lock. Operations that transfer value
// hold it across the outbound call so recipient code cannot reenter.
func (v *Vault) enter() error {
	if v.locked {
		return ErrReentrantCall
	}
	v.locked = true
	return nil
}

func (v *Vault) exit() {
	v.locked = false
}

func (v *Vault) requireInit() error {
	if !v.initialized {
		return ErrNotInitialized
	}
	return nil
}

func (v *Vault) requireCurator(caller chain.Address) error {
	if caller != v.curator {
		return ErrNotCurator
	}
	return nil
}

// SoldOut reports whether the parent asset has left vault custody,
// queried from the asset registry.
func (v *Vault) SoldOut() (bool, error) {
	if err := v.requireInit(); err != nil {
		return false, err
	}
	owner, err := v.cfg.Registry.OwnerOf(v.asset.TokenID)
	if err != nil {
		return false, fmt.Errorf("vault: query custodian: %w", err)
	}
	return owner != v.cfg.Self, nil
}

func (v *Vault) requireNotSoldOut() error {
	sold, err := v.SoldOut()
	if err != nil {
		return err
	}
	if sold {
		return ErrSoldOut
	}
	return nil
}

// journal records an event on the configured sink. Journal failures do
// not roll back settled state; the journal is an observer, not a
// participant.
func (v *Vault) journal(e eventlog.Event) {
	if v.cfg.Journal == nil {
		return
	}
	_ = v.cfg.Journal.Append(e)
}

func cloneOrZero(x *uint256.Int) *uint256.Int {
	if x == nil {
		return new(uint256.Int)
	}
	return x.Clone()
}
