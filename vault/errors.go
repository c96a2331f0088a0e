package vault

import "errors"

// Precondition violations. Every failed operation leaves the vault
// state exactly as it was.
var (
	ErrNotInitialized     = errors.New("vault: not initialized")
	ErrAlreadyInitialized = errors.New("vault: already initialized")
	ErrNotCurator         = errors.New("vault: caller is not the curator")
	ErrReentrantCall      = errors.New("vault: reentrant call")
	ErrSoldOut            = errors.New("vault: parent asset already sold")
	ErrNotSoldOut         = errors.New("vault: parent asset not sold")
)

// Redemption validation failures.
var (
	ErrIndexTaken    = errors.New("vault: player index already redeemed")
	ErrOverbooked    = errors.New("vault: allocation exceeds pixel capacity")
	ErrScoreRejected = errors.New("vault: score proof rejected by parent asset")
)

// Funds failures.
var (
	ErrInsufficientPayment = errors.New("vault: paid value below current price")
	ErrInsufficientFunds   = errors.New("vault: vault funds below owed amount")
	ErrNoShares            = errors.New("vault: caller holds no shares")
)

// Randomization failures.
var (
	ErrAuctionNotStarted    = errors.New("vault: auction has not started")
	ErrRandomizationStarted = errors.New("vault: randomization already requested")
	ErrNotRandomizing       = errors.New("vault: randomization not requested")
	ErrNotRandomized        = errors.New("vault: winners not settled")
	ErrAlreadyRandomized    = errors.New("vault: winners already settled")
	ErrRandomnessNotReady   = errors.New("vault: randomness not ready")
	ErrNoJackpots           = errors.New("vault: no jackpots configured")
	ErrNotEnoughContestants = errors.New("vault: fewer contestants than jackpots")
	ErrNotAwarded           = errors.New("vault: caller was not awarded a jackpot")
	ErrAlreadyClaimed       = errors.New("vault: jackpot already claimed")
)

// Initialization failures.
var (
	ErrZeroCurator = errors.New("vault: zero curator address")
	ErrZeroPixels  = errors.New("vault: zero pixel capacity")
)
