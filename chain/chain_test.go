package chain

import (
	"crypto/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/secp256k1/ecdsa"
)

func TestKeccak256EmptyVector(t *testing.T) {
	// Known Keccak-256 digest of the empty input.
	want := "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	got := Keccak256().Hex()
	if got != want {
		t.Errorf("Keccak256() = %s, want %s", got, want)
	}
}

func TestKeccak256Concatenation(t *testing.T) {
	a := Keccak256([]byte("ab"), []byte("c"))
	b := Keccak256([]byte("abc"))
	if a != b {
		t.Error("Keccak256 should hash the concatenation of its arguments")
	}
	if a == Keccak256([]byte("abd")) {
		t.Error("different inputs should not collide")
	}
}

func TestHexToAddressRoundTrip(t *testing.T) {
	addr := BytesToAddress([]byte{0xde, 0xad, 0xbe, 0xef})
	parsed, err := HexToAddress(addr.Hex())
	if err != nil {
		t.Fatalf("HexToAddress: %v", err)
	}
	if parsed != addr {
		t.Errorf("round trip mismatch: %s != %s", parsed, addr)
	}
}

func TestHexToAddressRejectsBadInput(t *testing.T) {
	cases := []string{"0x1234", "nothex", "0x" + "00" + "112233445566778899aabbccddeeff0011223344"}
	for _, c := range cases {
		if _, err := HexToAddress(c); err == nil {
			t.Errorf("HexToAddress(%q) should fail", c)
		}
	}
}

func TestIsZero(t *testing.T) {
	var zero Address
	if !zero.IsZero() {
		t.Error("zero address should report IsZero")
	}
	if BytesToAddress([]byte{1}).IsZero() {
		t.Error("nonzero address should not report IsZero")
	}
}

func TestSignRecoverRoundTrip(t *testing.T) {
	priv, err := ecdsa.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	digest := Keccak256([]byte("settlement digest"))

	sig, err := Sign(digest, priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(sig) != SignatureLength {
		t.Fatalf("signature length = %d, want %d", len(sig), SignatureLength)
	}

	got, err := RecoverAddress(digest, sig)
	if err != nil {
		t.Fatalf("RecoverAddress: %v", err)
	}
	if want := PubKeyAddress(&priv.PublicKey); got != want {
		t.Errorf("recovered %s, want %s", got, want)
	}
}

func TestRecoverAddressWrongDigest(t *testing.T) {
	priv, err := ecdsa.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	digest := Keccak256([]byte("signed"))
	sig, err := Sign(digest, priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	other := Keccak256([]byte("not signed"))
	got, err := RecoverAddress(other, sig)
	if err == nil && got == PubKeyAddress(&priv.PublicKey) {
		t.Error("recovery over a different digest should not yield the signer")
	}
}

func TestRecoverAddressLengthCheck(t *testing.T) {
	if _, err := RecoverAddress(Hash{}, make([]byte, 64)); err != ErrSignatureLength {
		t.Errorf("expected ErrSignatureLength, got %v", err)
	}
}
