// Package deed defines the curator-signed claims contributors redeem
// for vault shares. A deed is validated and discarded; nothing in it
// is persisted.
package deed

import (
	"encoding/binary"
	"errors"

	"github.com/consensys/gnark-crypto/ecc/secp256k1/ecdsa"
	"github.com/holiman/uint256"

	"github.com/fracvault-xyz/go-fracvault/chain"
)

var (
	ErrBadSignature = errors.New("deed: signature does not recover to the curator")
	ErrZeroPlayer   = errors.New("deed: zero player address")
	ErrWrongParent  = errors.New("deed: parent asset mismatch")
)

// Deed binds a contributor to a pixel allocation on the parent asset.
// The curator signs the canonical digest of every field; the score
// proof is additionally authenticated by the parent asset contract.
type Deed struct {
	ParentContract chain.Address
	ParentTokenID  *uint256.Int
	PlayerIndex    uint64
	Player         chain.Address
	Pixels         uint64
	ScoreProof     []byte
	Signature      []byte // 65 bytes r||s||v over Digest
}

// Digest returns the canonical hash the curator signs: fixed-width
// big-endian packing of every field, with the variable-length score
// proof collapsed to its own Keccak-256 digest.
func (d *Deed) Digest() chain.Hash {
	tokenID := new(uint256.Int)
	if d.ParentTokenID != nil {
		tokenID.Set(d.ParentTokenID)
	}
	tok := tokenID.Bytes32()

	var idx, px [8]byte
	binary.BigEndian.PutUint64(idx[:], d.PlayerIndex)
	binary.BigEndian.PutUint64(px[:], d.Pixels)

	proof := chain.Keccak256(d.ScoreProof)
	return chain.Keccak256(d.ParentContract[:], tok[:], idx[:], d.Player[:], px[:], proof[:])
}

// VerifySignature checks that the deed's signature over its canonical
// digest recovers to the curator.
func (d *Deed) VerifySignature(curator chain.Address) error {
	signer, err := chain.RecoverAddress(d.Digest(), d.Signature)
	if err != nil {
		return ErrBadSignature
	}
	if signer != curator {
		return ErrBadSignature
	}
	return nil
}

// CheckParent verifies the deed targets the given parent asset.
func (d *Deed) CheckParent(contract chain.Address, tokenID *uint256.Int) error {
	if d.ParentContract != contract {
		return ErrWrongParent
	}
	deedToken := new(uint256.Int)
	if d.ParentTokenID != nil {
		deedToken.Set(d.ParentTokenID)
	}
	if !deedToken.Eq(tokenID) {
		return ErrWrongParent
	}
	return nil
}

// CheckPlayer verifies the claimed player address is usable.
func (d *Deed) CheckPlayer() error {
	if d.Player.IsZero() {
		return ErrZeroPlayer
	}
	return nil
}

// Sign signs the deed's canonical digest with the curator key and
// attaches the recoverable signature.
func (d *Deed) Sign(curator *ecdsa.PrivateKey) error {
	sig, err := chain.Sign(d.Digest(), curator)
	if err != nil {
		return err
	}
	d.Signature = sig
	return nil
}
