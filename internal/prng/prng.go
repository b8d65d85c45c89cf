// Package prng provides the single deterministic pseudorandom source
// hashsig uses everywhere a scheme expands a 32-byte seed into secret key
// material: ChaCha20 keyed by the 32-byte seed, via decred.org/cspp's
// chacha20prng. Using one fixed construction everywhere keeps key
// generation byte-for-byte reproducible across Lamport, Winternitz,
// HORST, Merkle, Goldreich and SPHINCS alike.
package prng

import (
	"crypto/rand"
	"io"

	"decred.org/cspp/chacha20prng"

	"github.com/lassemoldrup/hashsig/herr"
	"github.com/lassemoldrup/hashsig/u256"
)

// Source is a deterministic byte stream keyed by a 32-byte seed.
type Source struct {
	r io.Reader
}

// New derives a Source deterministically from seed. Two Sources created
// from the same seed produce byte-identical streams.
func New(seed u256.U256) *Source {
	return &Source{r: chacha20prng.New(seed[:], 0)}
}

// NewFromEntropy draws a fresh 32-byte seed from the operating system's
// entropy source and derives a Source from it. It panics with an
// *herr.Error of Kind herr.Entropy if the OS entropy source is
// unavailable.
func NewFromEntropy() *Source {
	var seed u256.U256
	if _, err := rand.Read(seed[:]); err != nil {
		panic(herr.Wrapf(herr.Entropy, err, "prng: OS entropy unavailable"))
	}
	return New(seed)
}

// Read fills p with pseudorandom bytes. It never errors.
func (s *Source) Read(p []byte) (int, error) { return s.r.Read(p) }

// FillU256 draws a single U256 from the stream.
func (s *Source) FillU256() u256.U256 {
	var out u256.U256
	_, _ = s.Read(out[:])
	return out
}

// FillU256Slice draws n consecutive U256 values from the stream.
func (s *Source) FillU256Slice(n int) []u256.U256 {
	out := make([]u256.U256, n)
	for i := range out {
		out[i] = s.FillU256()
	}
	return out
}
