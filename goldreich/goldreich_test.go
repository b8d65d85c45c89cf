package goldreich

import (
	"testing"

	"github.com/lassemoldrup/hashsig/lamport"
	"github.com/lassemoldrup/hashsig/u256"
)

func newTestParams() Params[lamport.Key, lamport.Key, lamport.Signature] {
	return Params[lamport.Key, lamport.Key, lamport.Signature]{
		Height: 5,
		OTS:    lamport.Params{MsgLen: 64},
	}
}

func TestRoundtrip(t *testing.T) {
	p := newTestParams()
	priv, pub := p.GenKeys(nil)

	sig1 := p.Sign([]byte("My OS update"), priv)
	if !p.Verify([]byte("My OS update"), pub, sig1) {
		t.Fatalf("Verify() of first signature = false, want true")
	}

	sig2 := p.Sign([]byte("My important message"), priv)
	if !p.Verify([]byte("My important message"), pub, sig2) {
		t.Fatalf("Verify() of second signature = false, want true")
	}

	if p.Verify([]byte("My important message"), pub, sig1) {
		t.Fatalf("cross-verification of sig1 against msg2 succeeded, want failure")
	}
}

func TestLeafIndexValidity(t *testing.T) {
	p := newTestParams()
	priv, _ := p.GenKeys(nil)

	lo := p.numLeaves() - 1
	hi := 2*p.numLeaves() - 1
	for i := 0; i < 20; i++ {
		sig := p.Sign([]byte("message"), priv)
		if sig.LeafIdx < lo || sig.LeafIdx >= hi {
			t.Fatalf("LeafIdx = %d, want in [%d, %d)", sig.LeafIdx, lo, hi)
		}
		if len(sig.Path) != p.Height {
			t.Fatalf("len(Path) = %d, want %d", len(sig.Path), p.Height)
		}
	}
}

func TestLeafIndicesAreFreshlyDrawn(t *testing.T) {
	p := newTestParams()
	priv, _ := p.GenKeys(nil)

	seen := make(map[uint64]bool)
	distinct := false
	for i := 0; i < 50 && !distinct; i++ {
		sig := p.Sign([]byte("message"), priv)
		if seen[sig.LeafIdx] {
			continue
		}
		seen[sig.LeafIdx] = true
		if len(seen) > 1 {
			distinct = true
		}
	}
	if !distinct {
		t.Fatalf("50 signatures all landed on the same leaf index, want variety from fresh entropy")
	}
}

func TestDeterministicGenKeys(t *testing.T) {
	seed := u256.Hash([]byte("goldreich-determinism-seed"))
	p := newTestParams()

	_, pub1 := p.GenKeys(&seed)
	_, pub2 := p.GenKeys(&seed)

	if string(pub1.RootPublic.Bytes()) != string(pub2.RootPublic.Bytes()) {
		t.Fatalf("GenKeys(seed) produced different root public keys across calls")
	}
}
