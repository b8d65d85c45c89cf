// Package winternitz implements the Winternitz one-time signature scheme
// with checksum: a base-w compression of Lamport that trades signature
// size for a handful of extra hash-chain steps per signing/verification.
package winternitz

import (
	"math/big"
	"math/bits"

	"github.com/lassemoldrup/hashsig/herr"
	"github.com/lassemoldrup/hashsig/internal/prng"
	"github.com/lassemoldrup/hashsig/u256"
)

// Params fixes the Winternitz compression parameter w, which must be a
// power of two at least 2. len1, len2 and len are the derived chain
// counts, cached on the Params value by New (len is exposed via Len).
type Params struct {
	W    uint32 // Winternitz parameter
	logW uint
	len1 int
	len2 int
	len  int
}

// New validates w and precomputes the derived chain-length parameters.
func New(w uint32) Params {
	if w < 2 || w&(w-1) != 0 {
		herr.Panicf("winternitz: w=%d is not a power of two >= 2", w)
	}
	logW := uint(bits.Len32(w) - 1)
	len1 := ceilDiv(256, int(logW))
	x := len1 * (int(w) - 1)
	len2 := (bits.Len(uint(x))-1)/int(logW) + 1
	return Params{W: w, logW: logW, len1: len1, len2: len2, len: len1 + len2}
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// Len returns the total number of hash chains (len1 + len2).
func (p Params) Len() int { return p.len }

// Private is a Winternitz private key: the 32-byte seed from which all
// len per-chain secrets are expanded. A Private must only ever sign one
// message.
type Private struct {
	seed u256.U256
}

// Public is an ordered sequence of len chain-top values.
type Public struct {
	chains []u256.U256
}

// Bytes serializes the chain values in order, satisfying scheme.Bytes.
func (pk Public) Bytes() []byte {
	out := make([]byte, 0, len(pk.chains)*u256.Size)
	for _, c := range pk.chains {
		out = append(out, c[:]...)
	}
	return out
}

// Signature is an ordered sequence of len chain values.
type Signature struct {
	chains []u256.U256
}

// expandChains derives the len per-chain secrets from seed via the shared
// deterministic PRNG (internal/prng).
func (p Params) expandChains(seed u256.U256) []u256.U256 {
	return prng.New(seed).FillU256Slice(p.len)
}

// GenKeys derives a Winternitz keypair. If seed is nil, a fresh seed is
// drawn from OS entropy.
func (p Params) GenKeys(seed *u256.U256) (Private, Public) {
	var s u256.U256
	if seed == nil {
		s = prng.NewFromEntropy().FillU256()
	} else {
		s = *seed
	}

	sk := p.expandChains(s)
	pub := Public{chains: make([]u256.U256, p.len)}
	for i, c := range sk {
		pub.chains[i] = u256.HashN(c, int(p.W)-1)
	}
	return Private{seed: s}, pub
}

// leToBigInt interprets data as a little-endian unsigned integer.
func leToBigInt(data []byte) *big.Int {
	rev := make([]byte, len(data))
	for i, b := range data {
		rev[len(data)-1-i] = b
	}
	return new(big.Int).SetBytes(rev)
}

// baseWDigits extracts exactly numDigits base-w digits from value, least
// significant first, via repeated mod/divide. Continuing the loop past the
// point where value hits zero pads the result to a fixed numDigits with
// high-order zero digits, matching the WOTS+ convention.
func baseWDigits(value *big.Int, w uint32, numDigits int) []uint32 {
	v := new(big.Int).Set(value)
	wBig := big.NewInt(int64(w))
	digits := make([]uint32, numDigits)
	mod := new(big.Int)
	for i := 0; i < numDigits; i++ {
		v.DivMod(v, wBig, mod)
		digits[i] = uint32(mod.Int64())
	}
	return digits
}

// chainLengths computes the len Winternitz chain lengths (message digits
// followed by checksum digits) for msg: the message is hashed, base-w
// encoded to len1 digits, a checksum of (w-1-digit) over those digits is
// computed and itself base-w encoded to len2 digits.
func (p Params) chainLengths(msg []byte) []uint32 {
	digest := u256.Hash(msg)
	msgDigits := baseWDigits(leToBigInt(digest[:]), p.W, p.len1)

	var checksum uint64
	for _, d := range msgDigits {
		checksum += uint64(p.W) - 1 - uint64(d)
	}
	checksumBytes := make([]byte, 8)
	for i := range checksumBytes {
		checksumBytes[i] = byte(checksum >> (8 * uint(i)))
	}
	checksumDigits := baseWDigits(leToBigInt(checksumBytes), p.W, p.len2)

	return append(msgDigits, checksumDigits...)
}

// Sign signs msg under sk. sk must only ever be used to sign one message.
func (p Params) Sign(msg []byte, sk Private) Signature {
	digits := p.chainLengths(msg)
	secrets := p.expandChains(sk.seed)

	sig := Signature{chains: make([]u256.U256, p.len)}
	for i, c := range digits {
		sig.chains[i] = u256.HashN(secrets[i], int(c))
	}
	return sig
}

// Verify reports whether sig is a valid Winternitz signature of msg under
// pk.
func (p Params) Verify(msg []byte, pk Public, sig Signature) bool {
	if len(sig.chains) != p.len || len(pk.chains) != p.len {
		return false
	}
	digits := p.chainLengths(msg)
	for i, c := range digits {
		if u256.HashN(sig.chains[i], int(p.W)-1-int(c)) != pk.chains[i] {
			return false
		}
	}
	return true
}
