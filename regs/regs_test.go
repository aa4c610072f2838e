package regs_test

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/db47h/zaurus/regs"
)

func newBlock(buf *bytes.Buffer) (*regs.Block, *uint32) {
	var v uint32
	return &regs.Block{
		Name:  "test",
		Width: 8,
		Log:   log.New(buf, "", 0),
		Regs: map[uint32]regs.Reg{
			0x00: {Name: "RW", Read: func() uint32 { return v }, Write: func(x uint32) { v = x & 0xff }},
			0x04: {Name: "RO", Read: func() uint32 { return 0x42 }},
			0x08: {Name: "WO", Write: func(x uint32) { v = 0 }},
		},
	}, &v
}

func TestBlock(t *testing.T) {
	var buf bytes.Buffer
	b, v := newBlock(&buf)

	b.Write(0x00, 0x1234)
	if got := b.Read(0x00); got != 0x34 {
		t.Fatalf("expected 0x34, got %#x", got)
	}
	if got := b.Read(0x04); got != 0x42 {
		t.Fatalf("expected 0x42, got %#x", got)
	}
	if buf.Len() != 0 {
		t.Fatalf("unexpected log output %q", buf.String())
	}

	td := []struct {
		name string
		fn   func()
	}{
		{"unknown read", func() {
			if got := b.Read(0x0c); got != 0 {
				t.Errorf("expected 0, got %#x", got)
			}
		}},
		{"unknown write", func() { b.Write(0x0c, 0xff) }},
		{"write-only read", func() {
			if got := b.Read(0x08); got != 0 {
				t.Errorf("expected 0, got %#x", got)
			}
		}},
		{"read-only write", func() { b.Write(0x04, 0xff) }},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			buf.Reset()
			d.fn()
			if !strings.Contains(buf.String(), "test: Bad register offset") {
				t.Errorf("expected bad offset log, got %q", buf.String())
			}
			if *v != 0x34 {
				t.Errorf("state mutated: %#x", *v)
			}
		})
	}
}

func TestMap(t *testing.T) {
	var buf bytes.Buffer
	b, _ := newBlock(&buf)
	m := regs.NewMap(log.New(&buf, "", 0))
	if err := m.Add("flash", 0x0c000000, 0x40, b); err != nil {
		t.Fatal(err)
	}
	if err := m.Add("other", 0x08800040, 0x1000, b); err != nil {
		t.Fatal(err)
	}
	m.Write(0x0c000000, 0x77)
	if got := m.Read(0x0c000000); got != 0x77 {
		t.Fatalf("expected 0x77, got %#x", got)
	}
	if got := m.Read(0x0c000004); got != 0x42 {
		t.Fatalf("expected 0x42, got %#x", got)
	}

	buf.Reset()
	if got := m.Read(0x0c000040); got != 0 {
		t.Fatalf("unmapped read returned %#x", got)
	}
	if !strings.Contains(buf.String(), "unmapped") {
		t.Fatalf("expected unmapped log, got %q", buf.String())
	}
}

func TestMap_addErrors(t *testing.T) {
	var buf bytes.Buffer
	b, _ := newBlock(&buf)
	m := regs.NewMap(nil)
	if err := m.Add("a", 0x1000, 0x100, b); err != nil {
		t.Fatal(err)
	}
	if err := m.Add("top", 0xfffff000, 0x1000, b); err != nil {
		t.Fatal(err)
	}
	td := []struct {
		name       string
		base, size uint32
		dev        regs.Device
	}{
		{"overlap", 0x10ff, 0x10, b},
		{"zero", 0x2000, 0, b},
		{"nil", 0x2000, 0x10, nil},
		{"wrap", 0xffffff00, 0x200, b},
		{"inside top", 0xfffff800, 0x100, b},
		{"below top", 0xffffe000, 0x1001, b},
	}
	for _, d := range td {
		if err := m.Add(d.name, d.base, d.size, d.dev); err == nil {
			t.Errorf("%s: expected error", d.name)
		}
	}
}
