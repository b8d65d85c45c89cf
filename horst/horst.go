// Package horst implements HORST, a few-time signature scheme over a
// binary hash tree: a fixed number of leaf secrets are revealed per
// signature, each accompanied by an authentication path up to a shared
// "top node" cut, below which individual paths are transmitted and above
// which the remaining tree nodes are sent in full.
package horst

import (
	"math/big"
	"math/bits"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lassemoldrup/hashsig/herr"
	"github.com/lassemoldrup/hashsig/internal/prng"
	"github.com/lassemoldrup/hashsig/u256"
)

// Params fixes a HORST instance's tree height τ and key count k.
// NumLeaves (t = 2^τ) and X (the top-cut ⌊log2 k⌋+1) are derived by New.
//
// Threads bounds how many goroutines Params uses to build the leaf-secret
// hash tree in GenKeys/Sign, since every leaf is an independent
// function of the seed and can be derived in parallel. Zero means "use
// GOMAXPROCS".
type Params struct {
	Height int // τ
	K      int
	Threads int

	numLeaves int
	x         int
}

// New validates (height, k) and precomputes NumLeaves and X.
func New(height, k int) Params {
	if height <= 0 {
		herr.Panicf("horst: height must be positive, got %d", height)
	}
	if k <= 0 {
		herr.Panicf("horst: k must be positive, got %d", k)
	}
	x := bits.Len(uint(k)) // floor(log2 k) + 1
	return Params{Height: height, K: k, numLeaves: 1 << height, x: x}
}

// NumLeaves returns t = 2^τ.
func (p Params) NumLeaves() int { return p.numLeaves }

// X returns the top-cut height ⌊log2 k⌋+1.
func (p Params) X() int { return p.x }

// Private is the sequence of t leaf secrets.
type Private struct {
	secrets []u256.U256
}

// Public is the root of the HORST hash tree.
type Public struct {
	root u256.U256
}

// Bytes satisfies scheme.Bytes.
func (pk Public) Bytes() []byte { return pk.root[:] }

// pathEntry is one (secret, authentication path) pair revealed for one of
// the k transformed message indices.
type pathEntry struct {
	secret u256.U256
	path   []u256.U256
}

// Signature carries k (secret, path) pairs plus the 2^x top nodes shared
// by all of them.
type Signature struct {
	entries   []pathEntry
	topNodes  []u256.U256
}

// tree is the full leaf-to-root hash tree, built once per key-generation
// or signing call and reused for every path lookup instead of
// recomputing each ancestor from scratch.
type tree struct {
	levels [][]u256.U256 // levels[0] = hashed leaves, levels[height] = root
}

func (p Params) buildTree(secrets []u256.U256) tree {
	levels := make([][]u256.U256, p.Height+1)
	levels[0] = make([]u256.U256, p.numLeaves)

	if p.Threads == 1 || p.numLeaves < 4096 {
		for i, s := range secrets {
			levels[0][i] = u256.HashTagged(u256.TagLeaf, s[:])
		}
	} else {
		workers := p.Threads
		if workers <= 0 {
			workers = runtime.GOMAXPROCS(0)
		}
		var g errgroup.Group
		chunk := (p.numLeaves + workers - 1) / workers
		for start := 0; start < p.numLeaves; start += chunk {
			start := start
			end := start + chunk
			if end > p.numLeaves {
				end = p.numLeaves
			}
			g.Go(func() error {
				for i := start; i < end; i++ {
					levels[0][i] = u256.HashTagged(u256.TagLeaf, secrets[i][:])
				}
				return nil
			})
		}
		_ = g.Wait() // leaf hashing never errors
	}

	for h := 1; h <= p.Height; h++ {
		prev := levels[h-1]
		cur := make([]u256.U256, len(prev)/2)
		for i := range cur {
			cur[i] = u256.HashPairTagged(u256.TagNode, prev[2*i][:], prev[2*i+1][:])
		}
		levels[h] = cur
	}
	return tree{levels: levels}
}

func (t tree) root() u256.U256 { return t.levels[len(t.levels)-1][0] }

// authPath returns the sibling values from leafIdx up to (but not
// including) height.
func (t tree) authPath(leafIdx, height int) []u256.U256 {
	path := make([]u256.U256, height)
	idx := leafIdx
	for h := 0; h < height; h++ {
		path[h] = t.levels[h][idx^1]
		idx /= 2
	}
	return path
}

// GenKeys derives a HORST keypair. If seed is nil, a fresh seed is drawn
// from OS entropy.
func (p Params) GenKeys(seed *u256.U256) (Private, Public) {
	var src *prng.Source
	if seed == nil {
		src = prng.NewFromEntropy()
	} else {
		src = prng.New(*seed)
	}
	secrets := src.FillU256Slice(p.numLeaves)
	t := p.buildTree(secrets)
	return Private{secrets: secrets}, Public{root: t.root()}
}

// leToBigInt interprets data as a little-endian unsigned integer.
func leToBigInt(data []byte) *big.Int {
	rev := make([]byte, len(data))
	for i, b := range data {
		rev[len(data)-1-i] = b
	}
	return new(big.Int).SetBytes(rev)
}

// transformMsg yields k indices in [0, τ): the modulus is the tree height τ
// rather than the leaf count t = 2^τ, a deliberate deviation from the
// published HORST construction.
func (p Params) transformMsg(msg []byte) []int {
	m := leToBigInt(msg)
	heightBig := big.NewInt(int64(p.Height))
	mod := new(big.Int)
	out := make([]int, p.K)
	for i := range out {
		m.DivMod(m, heightBig, mod)
		out[i] = int(mod.Int64())
	}
	return out
}

// Sign signs msg under sk. msg must be at most K*Height bits long. sk
// must only ever be used to sign a small, security-parameter-bounded
// number of messages.
func (p Params) Sign(msg []byte, sk Private) Signature {
	if len(msg)*8 > p.K*p.Height {
		herr.Panicf("horst: message of %d bits exceeds k*height = %d", len(msg)*8, p.K*p.Height)
	}

	indices := p.transformMsg(msg)
	t := p.buildTree(sk.secrets)

	pathLen := p.Height - p.x
	entries := make([]pathEntry, p.K)
	for i, idx := range indices {
		entries[i] = pathEntry{
			secret: sk.secrets[idx],
			path:   t.authPath(idx, pathLen),
		}
	}

	topHeight := p.Height - p.x
	topNodes := make([]u256.U256, len(t.levels[topHeight]))
	copy(topNodes, t.levels[topHeight])

	return Signature{entries: entries, topNodes: topNodes}
}

// rootFromTopNodes folds the 2^x top nodes up to the tree root.
func rootFromTopNodes(topNodes []u256.U256) u256.U256 {
	cur := topNodes
	for len(cur) > 1 {
		next := make([]u256.U256, len(cur)/2)
		for i := range next {
			next[i] = u256.HashPairTagged(u256.TagNode, cur[2*i][:], cur[2*i+1][:])
		}
		cur = next
	}
	return cur[0]
}

// Verify reports whether sig is a valid HORST signature of msg under pk.
func (p Params) Verify(msg []byte, pk Public, sig Signature) bool {
	if len(sig.entries) != p.K {
		return false
	}
	if len(sig.topNodes) != 1<<p.x {
		return false
	}
	if len(msg)*8 > p.K*p.Height {
		return false
	}

	indices := p.transformMsg(msg)
	if len(indices) != len(sig.entries) {
		return false
	}

	for i, idx := range indices {
		entry := sig.entries[i]
		if len(entry.path) != p.Height-p.x {
			return false
		}

		node := u256.HashTagged(u256.TagLeaf, entry.secret[:])
		cur := idx
		for _, sibling := range entry.path {
			if cur%2 == 0 {
				node = u256.HashPairTagged(u256.TagNode, node[:], sibling[:])
			} else {
				node = u256.HashPairTagged(u256.TagNode, sibling[:], node[:])
			}
			cur /= 2
		}

		if cur >= len(sig.topNodes) || node != sig.topNodes[cur] {
			return false
		}
	}

	return rootFromTopNodes(sig.topNodes) == pk.root
}
