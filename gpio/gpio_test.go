package gpio_test

import (
	"testing"
	"testing/quick"

	"github.com/db47h/zaurus/gpio"
)

type transition struct {
	l     gpio.Line
	level bool
}

func TestSet_dispatchOnChangeOnly(t *testing.T) {
	b := gpio.NewBus()
	bk := b.Alloc("cpu", 4)
	var got []transition
	b.Register(bk.Line(2), gpio.HandlerFunc(func(l gpio.Line, level bool) {
		got = append(got, transition{l, level})
	}))

	b.Set(bk.Line(2), true)
	b.Set(bk.Line(2), true)
	b.Set(bk.Line(2), false)
	b.Set(bk.Line(2), false)
	b.Set(bk.Line(1), true) // no handler

	want := []transition{{2, true}, {2, false}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if !b.Get(bk.Line(1)) {
		t.Fatal("level not stored on unbound line")
	}
}

func TestSet_atMostOnce(t *testing.T) {
	f := func(levels []bool) bool {
		b := gpio.NewBus()
		l := b.Alloc("x", 1).Line(0)
		calls := 0
		b.Register(l, gpio.LevelFunc(func(bool) { calls++ }))
		exp, prev := 0, false
		for _, lv := range levels {
			b.Set(l, lv)
			b.Set(l, lv)
			if lv != prev {
				exp++
				prev = lv
			}
		}
		return calls == exp
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestRegister_replaces(t *testing.T) {
	b := gpio.NewBus()
	l := b.Alloc("x", 1).Line(0)
	var first, second int
	b.Register(l, gpio.LevelFunc(func(bool) { first++ }))
	b.Register(l, gpio.LevelFunc(func(bool) { second++ }))
	b.Set(l, true)
	if first != 0 || second != 1 {
		t.Fatalf("first=%d second=%d", first, second)
	}
	b.Unregister(l)
	b.Set(l, false)
	if second != 1 {
		t.Fatalf("handler called after Unregister")
	}
}

// Handlers may drive other lines from within Transition.
func TestSet_reentrant(t *testing.T) {
	b := gpio.NewBus()
	bk := b.Alloc("chain", 3)
	var order []gpio.Line
	for i := 0; i < 2; i++ {
		next := bk.Line(i + 1)
		b.Register(bk.Line(i), gpio.HandlerFunc(func(l gpio.Line, level bool) {
			order = append(order, l)
			b.Set(next, level)
		}))
	}
	b.Register(bk.Line(2), gpio.HandlerFunc(func(l gpio.Line, _ bool) { order = append(order, l) }))

	b.Set(bk.Line(0), true)
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("unexpected dispatch order %v", order)
	}
	if !b.Get(bk.Line(2)) {
		t.Fatal("end of chain not set")
	}
}

func TestBanks(t *testing.T) {
	b := gpio.NewBus()
	cpu := b.Alloc("cpu", 121)
	scp := b.Alloc("scoop0", 32)
	if cpu.Line(53) != 53 {
		t.Fatalf("cpu bank not at base 0")
	}
	if scp.Base != 121 || b.Len() != 153 {
		t.Fatalf("bad scoop bank %+v (len %d)", scp, b.Len())
	}
	if n := b.Name(scp.Line(8)); n != "scoop0.8" {
		t.Fatalf("got name %q", n)
	}
	if !scp.Contains(130) || scp.Contains(120) {
		t.Fatal("Contains")
	}
	b.Toggle(cpu.Line(22))
	if !b.Get(cpu.Line(22)) {
		t.Fatal("Toggle")
	}
}

func TestLine_outOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	gpio.NewBus().Alloc("x", 2).Line(2)
}
