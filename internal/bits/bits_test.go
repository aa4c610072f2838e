package bits_test

import (
	"testing"
	"testing/quick"

	"github.com/db47h/zaurus/internal/bits"
)

func TestEach(t *testing.T) {
	var got []int
	bits.Each(uint32(0x80000105), func(bit int) { got = append(got, bit) })
	want := []int{0, 2, 8, 31}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestEachRebuild(t *testing.T) {
	f := func(v uint16) bool {
		var r uint16
		bits.Each(v, func(bit int) { r = bits.Set(r, bit, true) })
		return r == v
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestSet(t *testing.T) {
	v := bits.Set(uint8(0), 7, true)
	if v != 0x80 || !bits.Test(v, 7) {
		t.Fatalf("expected 0x80, got %#x", v)
	}
	if v = bits.Set(v, 7, false); v != 0 {
		t.Fatalf("expected 0, got %#x", v)
	}
}
