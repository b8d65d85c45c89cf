package scheme_test

import (
	"strings"
	"testing"

	"github.com/lassemoldrup/hashsig/lamport"
	"github.com/lassemoldrup/hashsig/scheme"
)

func TestVerifyBatchAllValid(t *testing.T) {
	p := lamport.Params{MsgLen: 8}
	sk, pk := p.GenKeys(nil)

	msgs := [][]byte{[]byte("aaaaaaaa"), []byte("bbbbbbbb")}
	var sigs []lamport.Signature
	var pks []lamport.Key
	for _, m := range msgs {
		sigs = append(sigs, p.Sign(m, sk))
		pks = append(pks, pk)
	}

	if err := scheme.VerifyBatch[lamport.Key, lamport.Key, lamport.Signature](p, msgs, pks, sigs); err != nil {
		t.Fatalf("VerifyBatch returned %v, want nil", err)
	}
}

func TestVerifyBatchReportsEachFailure(t *testing.T) {
	p := lamport.Params{MsgLen: 8}
	sk, pk := p.GenKeys(nil)
	_, otherPk := p.GenKeys(nil)

	msgs := [][]byte{[]byte("aaaaaaaa"), []byte("bbbbbbbb"), []byte("cccccccc")}
	sig0 := p.Sign(msgs[0], sk)
	sig1 := p.Sign(msgs[1], sk)
	sig2 := p.Sign(msgs[2], sk)

	sigs := []lamport.Signature{sig0, sig1, sig2}
	pks := []lamport.Key{otherPk, pk, otherPk}

	err := scheme.VerifyBatch[lamport.Key, lamport.Key, lamport.Signature](p, msgs, pks, sigs)
	if err == nil {
		t.Fatal("VerifyBatch returned nil, want an error naming entries 0 and 2")
	}
	msg := err.Error()
	if !strings.Contains(msg, "entry 0") || !strings.Contains(msg, "entry 2") {
		t.Fatalf("error %q does not name both failing entries", msg)
	}
	if strings.Contains(msg, "entry 1") {
		t.Fatalf("error %q names entry 1, which verified correctly", msg)
	}
}
