package horst

import (
	"testing"

	"github.com/lassemoldrup/hashsig/u256"
)

func TestDerivedParams(t *testing.T) {
	p := New(16, 32)
	if p.NumLeaves() != 1<<16 {
		t.Fatalf("NumLeaves() = %d, want %d", p.NumLeaves(), 1<<16)
	}
	if p.X() != 6 {
		t.Fatalf("X() = %d, want 6", p.X())
	}
}

func TestRoundtrip(t *testing.T) {
	msg1 := []byte("My OS update")
	msg2 := []byte("My important message")

	p := New(16, 32)
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
	seed := u256.Hash([]byte("horst-determinism-seed"))
	p := New(10, 16)

	_, pub1 := p.GenKeys(&seed)
	_, pub2 := p.GenKeys(&seed)

	if pub1.root != pub2.root {
		t.Fatalf("GenKeys(seed) produced different roots across calls")
	}
}

func TestSignRejectsOversizedMessage(t *testing.T) {
	p := New(4, 4) // k*height = 16 bits = 2 bytes
	priv, _ := p.GenKeys(nil)

	defer func() {
		if recover() == nil {
			t.Fatalf("Sign() did not panic on an oversized message")
		}
	}()
	p.Sign([]byte("this message is far too long"), priv)
}
