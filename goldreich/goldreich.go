// Package goldreich implements the Goldreich many-time stateless signature
// scheme: a virtual complete binary tree of OTS keypairs, all derived on
// demand from a single seed, where each signature samples a fresh random
// leaf from OS entropy instead of advancing a counter.
package goldreich

import (
	"github.com/lassemoldrup/hashsig/herr"
	"github.com/lassemoldrup/hashsig/internal/addr"
	"github.com/lassemoldrup/hashsig/internal/prng"
	"github.com/lassemoldrup/hashsig/scheme"
	"github.com/lassemoldrup/hashsig/u256"
)

// Params is a Goldreich instance over a virtual complete binary tree of
// height Height (2·2^Height − 1 nodes, heap-indexed: root is 0, node j's
// children are 2j+1 and 2j+2), with OTS keypairs at every node derived from
// OTS. Pub must be byte-addressable so composite signatures (the root's
// signature over its two children's public keys) can hash it.
type Params[Priv any, Pub scheme.Bytes, Sig any] struct {
	Height int
	OTS    scheme.Scheme[Priv, Pub, Sig]
}

// numLeaves is 2^Height; node indices [numLeaves-1, 2*numLeaves-1) are
// leaves.
func (p Params[Priv, Pub, Sig]) numLeaves() uint64 { return uint64(1) << p.Height }

// Private is the single seed from which every node's OTS keypair is
// derived. Unlike Merkle, Goldreich carries no state between signatures.
type Private struct {
	seed u256.U256
}

// Public is the root node's OTS public key together with its signature
// over hash_pair(pub(1), pub(2)), the public keys of the root's two
// children.
type Public[Pub any, Sig any] struct {
	RootPublic Pub
	RootSig    Sig
}

// pathEntry is one step of the authentication path from a signed leaf up
// to (but not including) the root: the two children of the current node's
// parent, and a signature over the previous hash under the current node's
// OTS key.
type pathEntry[Pub any, Sig any] struct {
	LeftSibling  Pub
	RightSibling Pub
	Sig          Sig
}

// Signature carries the randomly-sampled leaf index and the path of
// (sibling pair, signature) entries from that leaf to just below the root.
type Signature[Pub any, Sig any] struct {
	LeafIdx uint64
	Path    []pathEntry[Pub, Sig]
}

// nodeSeed derives the PRNG seed for the OTS keypair at heap-index idx:
// hash_pair(σ, bytes_of(idx)).
func nodeSeed(seed u256.U256, idx uint64) u256.U256 {
	return u256.HashPairTagged(u256.TagPRFSeed, seed[:], addr.LE64(idx, 8))
}

func (p Params[Priv, Pub, Sig]) keysAt(seed u256.U256, idx uint64) (Priv, Pub) {
	s := nodeSeed(seed, idx)
	return p.OTS.GenKeys(&s)
}

// GenKeys derives a Goldreich keypair: the root's OTS keypair, and the
// root's signature over hash_pair of its two children's public keys. If
// seed is nil, a fresh seed is drawn from OS entropy.
func (p Params[Priv, Pub, Sig]) GenKeys(seed *u256.U256) (Private, Public[Pub, Sig]) {
	var s u256.U256
	if seed == nil {
		s = prng.NewFromEntropy().FillU256()
	} else {
		s = *seed
	}

	rootSk, rootPub := p.keysAt(s, 0)
	_, leftPub := p.keysAt(s, 1)
	_, rightPub := p.keysAt(s, 2)

	h := u256.HashPairTagged(u256.TagNode, leftPub.Bytes(), rightPub.Bytes())
	rootSig := p.OTS.Sign(h[:], rootSk)

	return Private{seed: s}, Public[Pub, Sig]{RootPublic: rootPub, RootSig: rootSig}
}

// Sign samples a uniformly random leaf from OS entropy, never from
// priv.seed: reusing a seed-derived leaf across repeated calls would
// break the scheme's many-time security, since the same leaf's OTS key
// would eventually sign two distinct messages. It signs msg under that
// leaf's OTS key, then walks up to (but not including) the root, signing
// each intermediate hash under the current node's OTS key.
func (p Params[Priv, Pub, Sig]) Sign(msg []byte, priv Private) Signature[Pub, Sig] {
	if p.Height < 1 {
		herr.Panicf("goldreich: height must be positive, got %d", p.Height)
	}

	n := p.numLeaves()
	leafIdx := n - 1 + randUint64Below(n)

	leafSk, _ := p.keysAt(priv.seed, leafIdx)
	prevHash := msg
	prevSig := p.OTS.Sign(prevHash, leafSk)

	var path []pathEntry[Pub, Sig]
	node := leafIdx
	for node > 0 {
		parent := (node - 1) / 2
		leftIdx := 2*parent + 1
		rightIdx := 2*parent + 2

		_, leftPub := p.keysAt(priv.seed, leftIdx)
		_, rightPub := p.keysAt(priv.seed, rightIdx)

		path = append(path, pathEntry[Pub, Sig]{
			LeftSibling:  leftPub,
			RightSibling: rightPub,
			Sig:          prevSig,
		})

		h := u256.HashPairTagged(u256.TagNode, leftPub.Bytes(), rightPub.Bytes())
		parentSk, _ := p.keysAt(priv.seed, parent)
		prevSig = p.OTS.Sign(h[:], parentSk)

		node = parent
	}

	return Signature[Pub, Sig]{LeafIdx: leafIdx, Path: path}
}

// randUint64Below draws a uniform value in [0, n) from OS entropy via
// rejection sampling over 64-bit words.
func randUint64Below(n uint64) uint64 {
	if n == 0 {
		herr.Panicf("goldreich: cannot sample from an empty range")
	}
	limit := (^uint64(0) / n) * n
	src := prng.NewFromEntropy()
	for {
		x := u256ToUint64(src.FillU256())
		if x < limit {
			return x % n
		}
	}
}

func u256ToUint64(v u256.U256) uint64 {
	var x uint64
	for i := 0; i < 8; i++ {
		x |= uint64(v[i]) << (8 * uint(i))
	}
	return x
}

// Verify reports whether sig is a valid Goldreich signature of msg under
// pk.
func (p Params[Priv, Pub, Sig]) Verify(msg []byte, pk Public[Pub, Sig], sig Signature[Pub, Sig]) bool {
	n := p.numLeaves()
	if sig.LeafIdx < n-1 || sig.LeafIdx >= 2*n-1 {
		return false
	}
	if len(sig.Path) != p.Height {
		return false
	}

	hash := msg
	idx := sig.LeafIdx
	for _, entry := range sig.Path {
		var nodePub Pub
		if idx%2 == 1 {
			nodePub = entry.LeftSibling
		} else {
			nodePub = entry.RightSibling
		}
		if !p.OTS.Verify(hash, nodePub, entry.Sig) {
			return false
		}
		h := u256.HashPairTagged(u256.TagNode, entry.LeftSibling.Bytes(), entry.RightSibling.Bytes())
		hash = h[:]
		idx = (idx - 1) / 2
	}

	return p.OTS.Verify(hash, pk.RootPublic, pk.RootSig)
}
