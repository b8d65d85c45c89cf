// Package addr implements the packed node-address encoding (an 8-word
// address serialized into a 32-byte buffer, used by merkle to build its
// node-cache keys) and LE64, the fixed-width little-endian index encoding
// that the schemes concatenate into their seed derivations.
package addr

import "encoding/binary"

// Kind identifies what an Address addresses: an OTS/FTS keypair, an
// internal hash-tree node, or a SPHINCS subtree.
type Kind uint32

const (
	KindOTS      Kind = 0
	KindTreeNode Kind = 1
	KindSubtree  Kind = 2
)

// Address is a structured, fixed-width coordinate into one of hashsig's
// trees or hypertrees. It is never transmitted; its serialization is
// hashed into a cache.Key by merkle's node cache.
//
// Layout (8 concerns packed into 8 uint32 words):
//
//	word 0: layer     (SPHINCS hypertree depth, or 0)
//	word 1-2: tree    (subtree index, split across two words)
//	word 3: kind
//	word 4: index     (leaf / OTS / FTS index within the (sub)tree)
//	word 5: height    (height within a tree, leaf=0)
//	word 6: chain     (Winternitz-style chain index, when applicable)
//	word 7: reserved
type Address [8]uint32

// SetLayer sets the hypertree layer.
func (a *Address) SetLayer(layer uint32) *Address { a[0] = layer; return a }

// SetTree sets the 64-bit subtree index.
func (a *Address) SetTree(tree uint64) *Address {
	a[1] = uint32(tree >> 32)
	a[2] = uint32(tree)
	return a
}

// SetKind sets the address kind.
func (a *Address) SetKind(k Kind) *Address { a[3] = uint32(k); return a }

// SetIndex sets the leaf/OTS/FTS index.
func (a *Address) SetIndex(i uint64) *Address { a[4] = uint32(i); return a }

// SetHeight sets the tree height of the addressed node.
func (a *Address) SetHeight(h uint32) *Address { a[5] = h; return a }

// SetChain sets the chain index (used by Winternitz-family derivations).
func (a *Address) SetChain(c uint32) *Address { a[6] = c; return a }

// Bytes serializes the address into a fresh 32-byte big-endian buffer.
func (a *Address) Bytes() []byte {
	buf := make([]byte, 32)
	a.WriteInto(buf)
	return buf
}

// WriteInto serializes the address into buf, which must be at least 32
// bytes long.
func (a *Address) WriteInto(buf []byte) {
	for i := 0; i < 8; i++ {
		binary.BigEndian.PutUint32(buf[i*4:(i+1)*4], a[i])
	}
}

// LE64 encodes x as a fixed-width w-byte little-endian buffer, the
// machine-independent index encoding used when deriving leaf seeds.
func LE64(x uint64, w int) []byte {
	buf := make([]byte, w)
	for i := 0; i < w && i < 8; i++ {
		buf[i] = byte(x >> (8 * uint(i)))
	}
	return buf
}
