package chain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/secp256k1/ecdsa"
)

// SignatureLength is r (32) || s (32) || recovery id (1).
const SignatureLength = 65

var (
	ErrSignatureLength = errors.New("chain: signature must be 65 bytes")
	ErrRecoverFailed   = errors.New("chain: public key recovery failed")
)

// PubKeyAddress derives the account address of a secp256k1 public key:
// the Keccak-256 of the uncompressed curve point with the first 12
// bytes dropped.
func PubKeyAddress(pk *ecdsa.PublicKey) Address {
	x := pk.A.X.Bytes()
	y := pk.A.Y.Bytes()
	h := Keccak256(x[:], y[:])
	return BytesToAddress(h[12:])
}

// RecoverAddress recovers the address that produced a 65-byte signature
// over digest.
func RecoverAddress(digest Hash, sig []byte) (Address, error) {
	if len(sig) != SignatureLength {
		return Address{}, ErrSignatureLength
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	v := uint(sig[64])

	var pk ecdsa.PublicKey
	if err := pk.RecoverFrom(digest[:], v, r, s); err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrRecoverFailed, err)
	}
	return PubKeyAddress(&pk), nil
}

// Sign signs a digest and returns a 65-byte recoverable signature. The
// underlying signer does not report the recovery id, so both parities
// are tried until one round-trips through RecoverAddress.
func Sign(digest Hash, priv *ecdsa.PrivateKey) ([]byte, error) {
	raw, err := priv.Sign(digest[:], nil)
	if err != nil {
		return nil, fmt.Errorf("chain: sign: %w", err)
	}

	want := PubKeyAddress(&priv.PublicKey)
	sig := make([]byte, SignatureLength)
	copy(sig, raw[:64])
	for v := byte(0); v < 2; v++ {
		sig[64] = v
		if addr, err := RecoverAddress(digest, sig); err == nil && addr == want {
			return sig, nil
		}
	}
	return nil, ErrRecoverFailed
}
