// Package lamport implements Lamport one-time signatures: the simplest
// member of hashsig's scheme family and the inner OTS the Merkle and
// Goldreich tests build on.
package lamport

import (
	"github.com/lassemoldrup/hashsig/herr"
	"github.com/lassemoldrup/hashsig/internal/prng"
	"github.com/lassemoldrup/hashsig/u256"
)

// Params fixes the maximum signable message length, in bytes, for a
// Lamport instance. A single instance may be reused to generate many
// independent keypairs; each keypair must only ever sign one message.
type Params struct {
	// MsgLen is the maximum length, in bytes, of a signable message.
	MsgLen int
}

// Key is the shape shared by both private and public Lamport keys:
// 8*MsgLen pairs of 32-byte values, one pair per message bit position.
// For a private key both entries of pair i are independent secrets; for
// the corresponding public key they are the SHA-256 hash of those
// secrets.
type Key struct {
	pairs [][2]u256.U256
}

// Bytes serializes the key's pairs in index order, satisfying
// scheme.Bytes so a Key can be folded into a composite scheme's tree.
func (k Key) Bytes() []byte {
	out := make([]byte, 0, len(k.pairs)*2*u256.Size)
	for _, p := range k.pairs {
		out = append(out, p[0][:]...)
		out = append(out, p[1][:]...)
	}
	return out
}

// Len reports the number of signable bits this key covers.
func (k Key) Len() int { return len(k.pairs) }

// Signature is one U256 per signed message bit.
type Signature struct {
	values []u256.U256
}

// Len reports the number of signed bits.
func (s Signature) Len() int { return len(s.values) }

// GenKeys derives a Lamport keypair. If seed is nil, a fresh seed is drawn
// from OS entropy.
func (p Params) GenKeys(seed *u256.U256) (Key, Key) {
	bits := p.MsgLen * 8

	var src *prng.Source
	if seed == nil {
		src = prng.NewFromEntropy()
	} else {
		src = prng.New(*seed)
	}

	priv := Key{pairs: make([][2]u256.U256, bits)}
	for i := range priv.pairs {
		priv.pairs[i][0] = src.FillU256()
		priv.pairs[i][1] = src.FillU256()
	}

	pub := Key{pairs: make([][2]u256.U256, bits)}
	for i, pair := range priv.pairs {
		pub.pairs[i][0] = u256.Hash(pair[0][:])
		pub.pairs[i][1] = u256.Hash(pair[1][:])
	}

	return priv, pub
}

// bitAt returns the bit at position i of msg, using little-endian bit
// order within each byte: bit 0 is the LSB of byte 0.
func bitAt(msg []byte, i int) int {
	byteIdx := i / 8
	bitIdx := uint(i % 8)
	return int((msg[byteIdx] >> bitIdx) & 1)
}

// Sign signs msg, which must be at most p.MsgLen bytes, under sk. sk must
// only ever be used to sign one message.
func (p Params) Sign(msg []byte, sk Key) Signature {
	if len(msg) > p.MsgLen {
		herr.Panicf("lamport: message of %d bytes exceeds MsgLen %d", len(msg), p.MsgLen)
	}
	if sk.Len() != p.MsgLen*8 {
		herr.Panicf("lamport: private key has %d bit positions, want %d", sk.Len(), p.MsgLen*8)
	}

	bits := len(msg) * 8
	sig := Signature{values: make([]u256.U256, bits)}
	for i := 0; i < bits; i++ {
		sig.values[i] = sk.pairs[i][bitAt(msg, i)]
	}
	return sig
}

// Verify reports whether sig is a valid Lamport signature of msg under pk.
func (p Params) Verify(msg []byte, pk Key, sig Signature) bool {
	if len(msg)*8 != sig.Len() {
		return false
	}
	if pk.Len() != p.MsgLen*8 {
		return false
	}
	for i, v := range sig.values {
		if u256.Hash(v[:]) != pk.pairs[i][bitAt(msg, i)] {
			return false
		}
	}
	return true
}
