package addr

import "testing"

func TestBytesIsFixedWidth(t *testing.T) {
	var a Address
	a.SetLayer(1).SetTree(0x1122334455).SetKind(KindSubtree).SetIndex(7).SetHeight(3).SetChain(9)

	b := a.Bytes()
	if len(b) != 32 {
		t.Fatalf("Bytes() has length %d, want 32", len(b))
	}
}

func TestDistinctAddressesSerializeDifferently(t *testing.T) {
	var a, b Address
	a.SetKind(KindOTS).SetIndex(1)
	b.SetKind(KindOTS).SetIndex(2)

	if string(a.Bytes()) == string(b.Bytes()) {
		t.Fatal("two addresses differing only in index serialized identically")
	}
}

func TestLE64PadsToWidth(t *testing.T) {
	got := LE64(1, 8)
	if len(got) != 8 {
		t.Fatalf("len(LE64(1, 8)) = %d, want 8", len(got))
	}
	want := []byte{1, 0, 0, 0, 0, 0, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("LE64(1, 8) = %v, want %v", got, want)
		}
	}
}

func TestLE64Truncates(t *testing.T) {
	got := LE64(0x0102030405060708, 2)
	want := []byte{0x08, 0x07}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("LE64(x, 2) = %v, want %v", got, want)
	}
}
