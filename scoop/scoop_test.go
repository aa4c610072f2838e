package scoop_test

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"testing/quick"

	"github.com/db47h/zaurus/devtest"
	"github.com/db47h/zaurus/gpio"
	"github.com/db47h/zaurus/scoop"
)

func newExpander() (*scoop.Expander, *gpio.Bus, *bytes.Buffer) {
	var buf bytes.Buffer
	b := gpio.NewBus()
	b.Alloc("cpu", 121)
	return scoop.New("scoop0", b, log.New(&buf, "", 0)), b, &buf
}

func TestPowerQuirk(t *testing.T) {
	s, _, _ := newExpander()
	td := []struct{ in, out uint32 }{
		{0x80, 0x80c0},
		{0xc0, 0x80c0},
		{0x40, 0x40},
		{0x81, 0x80c1},
		{0x01, 0x01},
		{0x10000, 0x0000},
	}
	for _, d := range td {
		s.Write(scoop.CPR, d.in)
		if got := s.Read(scoop.CPR); got != d.out {
			t.Errorf("CPR write %#x: got %#x, expected %#x", d.in, got, d.out)
		}
	}
}

func TestStatus(t *testing.T) {
	s, _, buf := newExpander()
	if got := s.Read(scoop.CSR); got != 0x02 {
		t.Fatalf("expected ready status, got %#x", got)
	}
	s.Write(scoop.CSR, 0)
	if got := s.Read(scoop.CSR); got != 0x02 {
		t.Fatalf("status is writable")
	}
	if !strings.Contains(buf.String(), "scoop0: Bad register offset 0x0008") {
		t.Fatalf("missing log, got %q", buf.String())
	}
}

func TestOpaqueRegisters(t *testing.T) {
	s, _, _ := newExpander()
	for _, off := range []uint32{scoop.MCR, scoop.CDR, scoop.CCR, scoop.IRRIRM, scoop.IMR, scoop.ISR} {
		s.Write(off, 0x1beef)
		if got := s.Read(off); got != 0xbeef {
			t.Errorf("offset %#x: got %#x", off, got)
		}
	}
}

// visible level is output AND direction, whatever the write order.
func TestVisibleLevel(t *testing.T) {
	f := func(d, v uint32, dirFirst bool) bool {
		s, _, _ := newExpander()
		if dirFirst {
			s.Write(scoop.GPCR, d)
			s.Write(scoop.GPWR, v)
		} else {
			s.Write(scoop.GPWR, v)
			s.Write(scoop.GPCR, d)
		}
		return s.Visible() == v&d && s.Read(scoop.GPCR) == d && s.Read(scoop.GPWR) == v
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestDispatch(t *testing.T) {
	s, b, _ := newExpander()
	lines := make([]gpio.Line, scoop.Lines)
	for i := range lines {
		lines[i] = s.Line(i)
	}
	rec := new(devtest.Recorder).Watch(b, lines...)

	s.Write(scoop.GPCR, 0x0000018e)
	if len(rec.T) != 0 {
		t.Fatalf("direction change alone dispatched %v", rec)
	}
	s.Write(scoop.GPWR, 0x80000186)
	if !rec.Equal(
		devtest.Transition{Line: s.Line(1), Level: true},
		devtest.Transition{Line: s.Line(2), Level: true},
		devtest.Transition{Line: s.Line(7), Level: true},
		devtest.Transition{Line: s.Line(8), Level: true},
	) {
		t.Fatalf("unexpected transitions %v", rec)
	}

	rec.Reset()
	// turning line 2 into an input forces it low.
	s.Write(scoop.GPCR, 0x8000018a)
	if !rec.Equal(
		devtest.Transition{Line: s.Line(2), Level: false},
		devtest.Transition{Line: s.Line(31), Level: true},
	) {
		t.Fatalf("unexpected transitions %v", rec)
	}
	if s.Visible()&0x4 != 0 {
		t.Fatal("input pin visible")
	}

	rec.Reset()
	s.Write(scoop.GPWR, 0x80000186)
	if len(rec.T) != 0 {
		t.Fatalf("redundant write dispatched %v", rec)
	}
}

func TestSetInput(t *testing.T) {
	s, b, buf := newExpander()
	rec := new(devtest.Recorder).Watch(b, s.Line(4))
	s.Write(scoop.GPCR, 0x01)
	s.Write(scoop.GPWR, 0x01)

	s.SetInput(4, true)
	s.SetInput(0, false) // output pin, ignored in read-back
	if got := s.Read(scoop.GPRR); got != 0x11 {
		t.Fatalf("expected 0x11, got %#x", got)
	}
	if len(rec.T) != 0 {
		t.Fatalf("input dispatched %v", rec)
	}

	s.SetInput(40, true)
	if !strings.Contains(buf.String(), "No GPIO pin 40") {
		t.Fatalf("missing log, got %q", buf.String())
	}
	s.Write(scoop.GPRR, 0)
	if got := s.Read(scoop.GPRR); got != 0x11 {
		t.Fatalf("GPRR is writable")
	}
}
