// Package sphincs implements a SPHINCS-style hypertree signature: d
// stacked Merkle subtrees of height h, each over an OTS, rooted in one
// FTS keypair drawn at a pseudo-random leaf of the virtual (2^h)^d-leaf
// hypertree. Unlike Merkle or Goldreich alone, SPHINCS is stateless (like
// Goldreich) yet avoids Goldreich's per-signature two-OTS-signature cost
// by using an FTS, at the price of one Merkle signature per hypertree
// level.
package sphincs

import (
	"crypto/sha512"

	"github.com/lassemoldrup/hashsig/cache"
	"github.com/lassemoldrup/hashsig/herr"
	"github.com/lassemoldrup/hashsig/internal/addr"
	"github.com/lassemoldrup/hashsig/internal/prng"
	"github.com/lassemoldrup/hashsig/merkle"
	"github.com/lassemoldrup/hashsig/scheme"
	"github.com/lassemoldrup/hashsig/u256"
)

// Params is a SPHINCS instance: a hypertree of Depth stacked Merkle
// subtrees of height Height over the OTS scheme OTS, with an FTS keypair
// (scheme FTS) at each virtual hypertree leaf. OPub and FPub must be
// byte-addressable so subtree/FTS public keys fold into the next level up.
type Params[OPriv any, OPub scheme.Bytes, OSig any, FPriv any, FPub scheme.Bytes, FSig any] struct {
	Depth   int
	Height  int
	OTS     scheme.Scheme[OPriv, OPub, OSig]
	FTS     scheme.Scheme[FPriv, FPub, FSig]
	Threads int
	Cache   *cache.TreeCache
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// idxLen is ⌈(Depth·Height+1)/8⌉, the fixed width the remaining-subtree
// index is zero-padded to inside subtreeSeed.
func (p Params[OPriv, OPub, OSig, FPriv, FPub, FSig]) idxLen() int {
	return ceilDiv(p.Depth*p.Height+1, 8)
}

func (p Params[OPriv, OPub, OSig, FPriv, FPub, FSig]) validate() {
	if p.Depth <= 0 {
		herr.Panicf("sphincs: depth must be positive, got %d", p.Depth)
	}
	if p.Height <= 0 {
		herr.Panicf("sphincs: height must be positive, got %d", p.Height)
	}
	if p.Depth*p.Height > 63 {
		herr.Panicf("sphincs: depth*height = %d exceeds the 63-bit leaf-index budget", p.Depth*p.Height)
	}
}

// Private is a SPHINCS private key: sk1 seeds every subtree/FTS
// derivation, sk2 seeds the per-message deterministic randomness used to
// pick a signature's hypertree leaf.
type Private struct {
	sk1 u256.U256
	sk2 u256.U256
}

// Public is the root of the topmost (depth-1) subtree.
type Public struct {
	root u256.U256
}

// Bytes satisfies scheme.Bytes.
func (pk Public) Bytes() []byte { return pk.root[:] }

// PathEntry is one hypertree level: the subtree's Merkle public key
// (root) and the Merkle signature of the node one level below it.
type PathEntry[OPub any, OSig any] struct {
	SubtreePublic merkle.Public
	SubtreeSig    merkle.Signature[OPub, OSig]
}

// Signature carries the FTS keypair's public half and signature, the
// Depth-entry path of subtree (public, signature) pairs from the FTS leaf
// up to the topmost subtree, and the per-message random value mixed into
// the signed digest.
type Signature[OPub any, OSig any, FPub any, FSig any] struct {
	FtsPublic FPub
	FtsSig    FSig
	Path      []PathEntry[OPub, OSig]
	Random    u256.U256
}

func (p Params[OPriv, OPub, OSig, FPriv, FPub, FSig]) merkleParams() merkle.Params[OPriv, OPub, OSig] {
	return merkle.Params[OPriv, OPub, OSig]{Height: p.Height, OTS: p.OTS, Threads: p.Threads, Cache: p.Cache}
}

// subtreeSeed derives the seed for the Merkle subtree at hypertree level
// depth, remaining-index idx: SHA-256(sk1 ‖ le_bytes(idx) zero-padded to
// idx_len ‖ bytes_of(depth)).
func (p Params[OPriv, OPub, OSig, FPriv, FPub, FSig]) subtreeSeed(sk1 u256.U256, depth int, idx uint64) u256.U256 {
	il := p.idxLen()
	buf := make([]byte, 0, u256.Size+il+8)
	buf = append(buf, sk1[:]...)
	buf = append(buf, addr.LE64(idx, il)...)
	buf = append(buf, addr.LE64(uint64(depth), 8)...)
	return u256.HashTagged(u256.TagPRFSeed, buf)
}

// subtreeKeys derives the Merkle subtree rooted at hypertree level depth,
// remaining-index idx, returning a Private addressing leafIdx directly and
// the subtree's Public root.
func (p Params[OPriv, OPub, OSig, FPriv, FPub, FSig]) subtreeKeys(sk1 u256.U256, depth int, idx, leafIdx uint64) (merkle.Private, merkle.Public) {
	seed := p.subtreeSeed(sk1, depth, idx)
	_, pub := p.merkleParams().GenKeys(&seed)
	return merkle.NewPrivate(seed, leafIdx), pub
}

// ftsSeed derives the seed for the FTS keypair at the hypertree leaf
// ftsIdx: hash_pair(sk1, le_bytes(fts_idx)).
func ftsSeed(sk1 u256.U256, ftsIdx uint64) u256.U256 {
	return u256.HashPairTagged(u256.TagPRFAddr, sk1[:], addr.LE64(ftsIdx, 8))
}

func (p Params[OPriv, OPub, OSig, FPriv, FPub, FSig]) ftsKeys(sk1 u256.U256, ftsIdx uint64) (FPriv, FPub) {
	s := ftsSeed(sk1, ftsIdx)
	return p.FTS.GenKeys(&s)
}

// transformMsg computes the 64-byte SHA-512 digest of random ‖ msg, the
// payload actually signed by the FTS.
func transformMsg(msg []byte, random u256.U256) []byte {
	h := sha512.New()
	h.Write(random[:])
	h.Write(msg)
	return h.Sum(nil)
}

// numHypertreeLeaves is (2^Height)^Depth = 2^(Height*Depth).
func (p Params[OPriv, OPub, OSig, FPriv, FPub, FSig]) numHypertreeLeaves() uint64 {
	return uint64(1) << (p.Height * p.Depth)
}

// GenKeys derives (sk1, sk2) from a seed-keyed PRNG and the public root of
// the topmost subtree. If seed is nil, a fresh seed is drawn from OS
// entropy.
func (p Params[OPriv, OPub, OSig, FPriv, FPub, FSig]) GenKeys(seed *u256.U256) (Private, Public) {
	p.validate()
	var s u256.U256
	if seed == nil {
		s = prng.NewFromEntropy().FillU256()
	} else {
		s = *seed
	}

	src := prng.New(s)
	sk1 := src.FillU256()
	sk2 := src.FillU256()

	_, topPub := p.subtreeKeys(sk1, p.Depth-1, 0, 0)
	return Private{sk1: sk1, sk2: sk2}, Public{root: u256.FromBytes(topPub.Bytes())}
}

// randUint64Below draws a value uniformly in [0, n) from src via
// rejection sampling over 64-bit words read off its stream.
func randUint64Below(src *prng.Source, n uint64) uint64 {
	if n == 0 {
		herr.Panicf("sphincs: cannot sample from an empty range")
	}
	limit := (^uint64(0) / n) * n
	for {
		v := src.FillU256()
		var x uint64
		for i := 0; i < 8; i++ {
			x |= uint64(v[i]) << (8 * uint(i))
		}
		if x < limit {
			return x % n
		}
	}
}

// Sign signs msg under priv. The hypertree leaf and the per-message
// random value are both drawn from a PRNG keyed by a tagged hash of
// sk2 ‖ msg, so repeated
// calls for the same message are byte-identical but distinct messages
// land on independent, unpredictable leaves.
func (p Params[OPriv, OPub, OSig, FPriv, FPub, FSig]) Sign(msg []byte, priv Private) Signature[OPub, OSig, FPub, FSig] {
	p.validate()
	msgSeed := u256.HashPairTagged(u256.TagMessage, priv.sk2[:], msg)
	src := prng.New(msgSeed)

	ftsIdx := randUint64Below(src, p.numHypertreeLeaves())
	random := src.FillU256()

	ftsSk, ftsPub := p.ftsKeys(priv.sk1, ftsIdx)
	msgPrime := transformMsg(msg, random)
	ftsSig := p.FTS.Sign(msgPrime, ftsSk)

	numSubLeaves := uint64(1) << p.Height
	node := ftsPub.Bytes()
	idx := ftsIdx
	path := make([]PathEntry[OPub, OSig], p.Depth)
	for depth := 0; depth < p.Depth; depth++ {
		subIdx := idx % numSubLeaves
		idx /= numSubLeaves

		mpriv, mpub := p.subtreeKeys(priv.sk1, depth, idx, subIdx)
		sig := p.merkleParams().Sign(node, mpriv)

		path[depth] = PathEntry[OPub, OSig]{SubtreePublic: mpub, SubtreeSig: sig}
		node = mpub.Bytes()
	}

	return Signature[OPub, OSig, FPub, FSig]{
		FtsPublic: ftsPub,
		FtsSig:    ftsSig,
		Path:      path,
		Random:    random,
	}
}

// Verify reports whether sig is a valid SPHINCS signature of msg under
// root.
func (p Params[OPriv, OPub, OSig, FPriv, FPub, FSig]) Verify(msg []byte, root Public, sig Signature[OPub, OSig, FPub, FSig]) bool {
	if len(sig.Path) != p.Depth {
		return false
	}

	msgPrime := transformMsg(msg, sig.Random)
	if !p.FTS.Verify(msgPrime, sig.FtsPublic, sig.FtsSig) {
		return false
	}

	node := sig.FtsPublic.Bytes()
	mp := p.merkleParams()
	for _, entry := range sig.Path {
		if !mp.Verify(node, entry.SubtreePublic, entry.SubtreeSig) {
			return false
		}
		node = entry.SubtreePublic.Bytes()
	}

	return u256.FromBytes(node) == root.root
}
