package sched_test

import (
	"context"
	"testing"
	"testing/quick"
	"time"

	"github.com/db47h/zaurus/sched"
)

func TestClock_fixedRate(t *testing.T) {
	var c sched.Clock
	var at []time.Duration
	c.ScheduleRepeating(time.Second/32, func() { at = append(at, c.Now()) })
	c.Advance(time.Second/32 - 1)
	if len(at) != 0 {
		t.Fatalf("fired early at %v", at)
	}
	c.Advance(1)
	c.Advance(time.Second)
	if len(at) != 33 {
		t.Fatalf("expected 33 ticks, got %d", len(at))
	}
	for i, d := range at {
		if want := time.Duration(i+1) * time.Second / 32; d != want {
			t.Fatalf("tick %d at %v, expected %v", i, d, want)
		}
	}
	if c.Now() != time.Second+time.Second/32 {
		t.Fatalf("clock at %v", c.Now())
	}
}

func TestClock_order(t *testing.T) {
	var c sched.Clock
	var s string
	c.ScheduleRepeating(3, func() { s += "c" })
	c.ScheduleRepeating(2, func() { s += "b" })
	c.ScheduleRepeating(2, func() { s += "B" })
	c.Advance(6)
	// t=2 b B, t=3 c, t=4 b B, t=6 c b B
	if s != "bBcbBcbB" {
		t.Fatalf("got %q", s)
	}
}

func TestClock_cancel(t *testing.T) {
	var c sched.Clock
	var n int
	var h sched.Handle
	h = c.ScheduleRepeating(1, func() {
		n++
		if n == 3 {
			c.Cancel(h)
		}
	})
	c.Advance(10)
	if n != 3 {
		t.Fatalf("expected 3 calls, got %d", n)
	}
	c.Cancel(h)
	c.Cancel(0)
	if c.Pending() != 0 {
		t.Fatalf("%d timers left", c.Pending())
	}
	if h := c.ScheduleRepeating(0, func() {}); h != 0 {
		t.Fatal("non-positive interval scheduled")
	}
}

// A timer with period p fires exactly floor(d/p) times within d.
func TestClock_count(t *testing.T) {
	f := func(p, d uint8) bool {
		var c sched.Clock
		var n int
		period := time.Duration(p%16) + 1
		c.ScheduleRepeating(period, func() { n++ })
		c.Advance(time.Duration(d))
		return n == int(time.Duration(d)/period)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestLoop(t *testing.T) {
	l := sched.NewLoop(4)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ticks := 0
	done := make(chan struct{})
	var h sched.Handle
	h = l.ScheduleRepeating(time.Millisecond, func() {
		ticks++
		if ticks == 5 {
			l.Cancel(h)
			close(done)
		}
	})
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("timer did not fire")
	}
	// ticks is owned by the loop goroutine
	got := make(chan int)
	if !l.Post(ctx, func() { got <- ticks }) {
		t.Fatal("Post failed")
	}
	if n := <-got; n != 5 {
		t.Fatalf("expected 5 ticks, got %d", n)
	}
	cancel()
	if err := <-errc; err != context.Canceled {
		t.Fatalf("Run returned %v", err)
	}
}
