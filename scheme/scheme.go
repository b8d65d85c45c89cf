// Package scheme defines the single abstract signature-scheme contract
// every concrete scheme in hashsig implements, and the extra capability a
// primitive scheme must offer before a composite scheme (Merkle, Goldreich,
// SPHINCS) can be built over it: its public key must be byte-addressable,
// since composites hash it as part of tree construction.
package scheme

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/lassemoldrup/hashsig/herr"
	"github.com/lassemoldrup/hashsig/u256"
)

// Scheme is the pseudo-signature capability every concrete scheme
// implements: key generation, signing, verification. Priv, Pub and Sig
// are the three associated types fixed per concrete scheme.
type Scheme[Priv, Pub, Sig any] interface {
	// GenKeys derives a keypair. If seed is nil, a fresh seed is drawn
	// from OS entropy; otherwise key generation is a pure function of
	// seed.
	GenKeys(seed *u256.U256) (Priv, Pub)

	// Sign signs msg under sk. Preconditions such as a message-length
	// bound are programmer errors and panic.
	Sign(msg []byte, sk Priv) Sig

	// Verify reports whether sig is a valid signature of msg under pk.
	// Total and side-effect free: it never panics on a malformed
	// signature produced under a different key, it simply returns false.
	Verify(msg []byte, pk Pub, sig Sig) bool
}

// Bytes is the "byte-addressable public key" capability a composite
// scheme's inner OTS/FTS public key type must satisfy so the composite can
// hash it into a tree node.
type Bytes interface {
	Bytes() []byte
}

// HashPublic is a small helper composites use to fold a byte-addressable
// public key into a single U256 leaf value.
func HashPublic[P Bytes](pub P) u256.U256 {
	return u256.Hash(pub.Bytes())
}

// VerifyBatch verifies a batch of (msg, pk, sig) triples under s, one
// pk/sig pair in pks/sigs per entry in msgs, and reports every failing
// index rather than stopping at the first one: a caller re-validating a
// large set of recorded signatures wants the full list of what broke, not
// just the first failure. Returns nil if every entry verifies.
func VerifyBatch[Priv, Pub, Sig any](s Scheme[Priv, Pub, Sig], msgs [][]byte, pks []Pub, sigs []Sig) error {
	if len(msgs) != len(pks) || len(msgs) != len(sigs) {
		herr.Panicf("scheme: VerifyBatch called with mismatched slice lengths")
	}

	var result *multierror.Error
	for i := range msgs {
		if !s.Verify(msgs[i], pks[i], sigs[i]) {
			result = multierror.Append(result, fmt.Errorf("entry %d: signature does not verify", i))
		}
	}
	return result.ErrorOrNil()
}
