package winternitz

import (
	"testing"

	"github.com/lassemoldrup/hashsig/u256"
)

func TestDerivedLengths(t *testing.T) {
	p := New(16)
	if p.len1 != 64 {
		t.Fatalf("len1 = %d, want 64", p.len1)
	}
	if p.len2 != 3 {
		t.Fatalf("len2 = %d, want 3", p.len2)
	}
	if p.Len() != 67 {
		t.Fatalf("Len() = %d, want 67", p.Len())
	}
}

func TestNewRejectsNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("New(6) did not panic")
		}
	}()
	New(6)
}

func TestRoundtrip(t *testing.T) {
	msg1 := []byte("My OS update")
	msg2 := []byte("My important message")

	p := New(16)
	priv, pub := p.GenKeys(nil)

	sig1 := p.Sign(msg1, priv)
	if !p.Verify(msg1, pub, sig1) {
		t.Fatalf("Verify(msg1) = false, want true")
	}

	sig2 := p.Sign(msg2, priv)
	if !p.Verify(msg2, pub, sig2) {
		t.Fatalf("Verify(msg2) = false, want true")
	}

	if p.Verify(msg1, pub, sig2) {
		t.Fatalf("cross-verification succeeded, want failure")
	}
}

func TestDeterministicGenKeys(t *testing.T) {
	seed := u256.Hash([]byte("winternitz-determinism-seed"))
	p := New(16)

	_, pub1 := p.GenKeys(&seed)
	_, pub2 := p.GenKeys(&seed)

	if string(pub1.Bytes()) != string(pub2.Bytes()) {
		t.Fatalf("GenKeys(seed) produced different public keys across calls")
	}
}
