// Package merkle implements the stateful Merkle many-time signature
// scheme: a Merkle tree of one-time-signature keypairs, all derived on
// demand from a single 32-byte seed, with the caller responsible for
// advancing the leaf index between signatures.
package merkle

import (
	"golang.org/x/sync/errgroup"

	"github.com/lassemoldrup/hashsig/cache"
	"github.com/lassemoldrup/hashsig/herr"
	"github.com/lassemoldrup/hashsig/internal/addr"
	"github.com/lassemoldrup/hashsig/internal/prng"
	"github.com/lassemoldrup/hashsig/scheme"
	"github.com/lassemoldrup/hashsig/u256"
)

// Params is a Merkle instance of the given tree height over an inner
// one-time-signature scheme OTS. Pub must be byte-addressable (scheme.Bytes)
// so OTS public keys can be folded into tree leaves.
//
// Threads bounds how many goroutines are used to derive leaves in
// parallel. Cache, if non-nil, memoizes recomputed tree nodes keyed by
// (seed, height, index) so that signing many messages in sequence from
// the same private key doesn't pay the full O(2^h) subtree recomputation
// every time; it is safe to share one Cache across many seeds. Keys do not
// include Height or OTS, so Params sharing a Cache and a seed must agree on
// both.
type Params[Priv any, Pub scheme.Bytes, Sig any] struct {
	Height  int
	OTS     scheme.Scheme[Priv, Pub, Sig]
	Threads int
	Cache   *cache.TreeCache
}

// Private is a Merkle private key: the tree-derivation seed and the index
// of the next unused leaf. The caller must advance it with NextKey after
// every Sign and must never reuse a leaf index.
type Private struct {
	seed    u256.U256
	leafIdx uint64
}

// NewPrivate constructs a Private key at an explicit leaf index, letting a
// composite scheme (sphincs) address a specific subtree leaf directly
// instead of always starting at index 0.
func NewPrivate(seed u256.U256, leafIdx uint64) Private {
	return Private{seed: seed, leafIdx: leafIdx}
}

// Public is the Merkle tree root.
type Public struct {
	root u256.U256
}

// Bytes satisfies scheme.Bytes.
func (pk Public) Bytes() []byte { return pk.root[:] }

// Signature carries the leaf index used, that leaf's OTS public key and
// signature, and the authentication path from leaf to root.
type Signature[Pub any, Sig any] struct {
	LeafIdx    uint64
	LeafPublic Pub
	LeafSig    Sig
	Path       []u256.U256
}

// otsSeed derives the seed fed to OTS.GenKeys for the leaf at idx:
// hash_pair(σ, bytes_of(i)).
func otsSeed(seed u256.U256, idx uint64) u256.U256 {
	return u256.HashPairTagged(u256.TagPRFSeed, seed[:], addr.LE64(idx, 8))
}

func (p Params[Priv, Pub, Sig]) deriveOTS(seed u256.U256, idx uint64) (Priv, Pub) {
	s := otsSeed(seed, idx)
	return p.OTS.GenKeys(&s)
}

func (p Params[Priv, Pub, Sig]) cacheKey(seed u256.U256, height int, idx uint64) cache.Key {
	var a addr.Address
	a.SetHeight(uint32(height)).SetIndex(idx)
	return cache.Key(u256.HashPairTagged(u256.TagNode, seed[:], a.Bytes()))
}

// node returns the tree node at (height, idx), deriving OTS keypairs and
// hashing on demand (memoizing through p.Cache when configured).
func (p Params[Priv, Pub, Sig]) node(seed u256.U256, height int, idx uint64) u256.U256 {
	if p.Cache != nil {
		if v, ok := p.Cache.Get(p.cacheKey(seed, height, idx)); ok {
			return v
		}
	}

	var v u256.U256
	if height == p.Height {
		_, pub := p.deriveOTS(seed, idx)
		v = scheme.HashPublic[Pub](pub)
	} else {
		left := p.node(seed, height+1, idx*2)
		right := p.node(seed, height+1, idx*2+1)
		v = u256.HashPairTagged(u256.TagNode, left[:], right[:])
	}

	if p.Cache != nil {
		p.Cache.Put(p.cacheKey(seed, height, idx), v)
	}
	return v
}

// root computes the tree root, optionally deriving the bottom level of
// leaves in parallel across p.Threads goroutines.
func (p Params[Priv, Pub, Sig]) root(seed u256.U256) u256.U256 {
	numLeaves := uint64(1) << p.Height
	if p.Threads <= 1 || numLeaves < 256 {
		return p.node(seed, 0, 0)
	}

	leaves := make([]u256.U256, numLeaves)
	workers := p.Threads
	chunk := (int(numLeaves) + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < int(numLeaves); start += chunk {
		start := start
		end := start + chunk
		if end > int(numLeaves) {
			end = int(numLeaves)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				leaves[i] = p.node(seed, p.Height, uint64(i))
			}
			return nil
		})
	}
	_ = g.Wait()

	cur := leaves
	for h := p.Height - 1; h >= 0; h-- {
		next := make([]u256.U256, len(cur)/2)
		for i := range next {
			next[i] = u256.HashPairTagged(u256.TagNode, cur[2*i][:], cur[2*i+1][:])
		}
		cur = next
	}
	return cur[0]
}

// GenKeys derives a Merkle keypair at leaf index 0. If seed is nil, a
// fresh seed is drawn from OS entropy.
func (p Params[Priv, Pub, Sig]) GenKeys(seed *u256.U256) (Private, Public) {
	var s u256.U256
	if seed == nil {
		s = prng.NewFromEntropy().FillU256()
	} else {
		s = *seed
	}
	return Private{seed: s, leafIdx: 0}, Public{root: p.root(s)}
}

// NextKey advances priv to the following leaf index. It panics if the
// tree is exhausted: that is a fatal precondition violation, not a
// recoverable condition.
func (p Params[Priv, Pub, Sig]) NextKey(priv Private) Private {
	next := priv.leafIdx + 1
	if next >= uint64(1)<<p.Height {
		herr.Panicf("merkle: tree of height %d exhausted at leaf %d", p.Height, priv.leafIdx)
	}
	return Private{seed: priv.seed, leafIdx: next}
}

// Sign signs msg under priv's current leaf. priv.leafIdx must never be
// reused across signatures from the same seed.
func (p Params[Priv, Pub, Sig]) Sign(msg []byte, priv Private) Signature[Pub, Sig] {
	if priv.leafIdx >= uint64(1)<<p.Height {
		herr.Panicf("merkle: leaf index %d out of range for height %d", priv.leafIdx, p.Height)
	}

	sk, pk := p.deriveOTS(priv.seed, priv.leafIdx)
	leafSig := p.OTS.Sign(msg, sk)

	path := make([]u256.U256, p.Height)
	idx := priv.leafIdx
	for s := 0; s < p.Height; s++ {
		siblingIdx := idx ^ 1
		path[s] = p.node(priv.seed, p.Height-s, siblingIdx)
		idx /= 2
	}

	return Signature[Pub, Sig]{
		LeafIdx:    priv.leafIdx,
		LeafPublic: pk,
		LeafSig:    leafSig,
		Path:       path,
	}
}

// Verify reports whether sig is a valid Merkle signature of msg under
// root.
func (p Params[Priv, Pub, Sig]) Verify(msg []byte, root Public, sig Signature[Pub, Sig]) bool {
	if len(sig.Path) != p.Height {
		return false
	}
	if !p.OTS.Verify(msg, sig.LeafPublic, sig.LeafSig) {
		return false
	}

	cur := scheme.HashPublic[Pub](sig.LeafPublic)
	idx := sig.LeafIdx
	for s := 0; s < p.Height; s++ {
		sibling := sig.Path[s]
		if idx&1 == 0 {
			cur = u256.HashPairTagged(u256.TagNode, cur[:], sibling[:])
		} else {
			cur = u256.HashPairTagged(u256.TagNode, sibling[:], cur[:])
		}
		idx /= 2
	}

	return cur == root.root
}
