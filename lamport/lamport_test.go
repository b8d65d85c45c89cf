package lamport

import (
	"testing"

	"github.com/lassemoldrup/hashsig/u256"
)

func TestRoundtrip(t *testing.T) {
	msg := []byte("My OS update")

	p := Params{MsgLen: 64}
	priv, pub := p.GenKeys(nil)

	sig := p.Sign(msg, priv)
	if !p.Verify(msg, pub, sig) {
		t.Fatalf("Verify() = false, want true")
	}

	if p.Verify([]byte("My OS apdate"), pub, sig) {
		t.Fatalf("Verify() of tampered message = true, want false")
	}
}

func TestDeterministicGenKeys(t *testing.T) {
	seed := u256.Hash([]byte("lamport-determinism-seed"))

	p := Params{MsgLen: 32}
	priv1, pub1 := p.GenKeys(&seed)
	priv2, pub2 := p.GenKeys(&seed)

	if string(priv1.Bytes()) != string(priv2.Bytes()) {
		t.Fatalf("GenKeys(seed) produced different private keys across calls")
	}
	if string(pub1.Bytes()) != string(pub2.Bytes()) {
		t.Fatalf("GenKeys(seed) produced different public keys across calls")
	}
}

func TestSoundness(t *testing.T) {
	p := Params{MsgLen: 64}
	priv, pub := p.GenKeys(nil)

	sig1 := p.Sign([]byte("message one"), priv)
	if p.Verify([]byte("message two!"), pub, sig1) {
		t.Fatalf("Verify() accepted a signature for the wrong message")
	}
}

func TestVerifyRejectsWrongLength(t *testing.T) {
	p := Params{MsgLen: 64}
	priv, pub := p.GenKeys(nil)
	sig := p.Sign([]byte("short"), priv)

	if p.Verify([]byte("longer message"), pub, sig) {
		t.Fatalf("Verify() accepted a signature of mismatched length")
	}
}
