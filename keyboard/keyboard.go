// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package keyboard models the key matrix of the Zaurus and translates host
// keyboard events into matrix events.
//
// The guest scans the matrix by driving strobe columns and reading sense
// rows. Host events are PC scancodes (bit 7 set on release). Since the Zaurus
// layout differs from a PC one, some host keys are remapped to Zaurus keys
// requiring a different set of modifiers. In that case synthetic modifier
// presses and releases are queued around the remapped key, and the queue is
// drained at a fixed rate, one scancode per tick, so that the guest sees them
// on successive scans.
//
package keyboard

import (
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/db47h/zaurus/gpio"
	"github.com/db47h/zaurus/internal/bits"
	"github.com/db47h/zaurus/sched"
)

// QueueSize is the capacity of the synthetic event queue.
//
const QueueSize = 16

// DefaultInterval is the default drain rate of the event queue.
//
const DefaultInterval = time.Second / 32

// PC scancodes of the modifier keys.
//
const (
	LeftShift  = 0x2a
	RightShift = 0x36
	Ctrl       = 0x1d
	Alt        = 0x38 // Fn on the Zaurus
	Release    = 0x80
)

// Modifier bits, as returned by Modifiers and Injected.
//
const (
	ModLeftShift  = 1 << iota
	ModRightShift // live only
	ModCtrl
	ModFn
	ModLeftShiftUp  // injected left shift release, injected only
	ModRightShiftUp // injected right shift release, injected only
)

// Config is the keyboard configuration.
//
type Config struct {
	Strobe  [Strobes]gpio.Line
	Sense   [Senses]gpio.Line
	Special [Specials]gpio.Line

	// Invert sets the polarity of the special button lines. A button line
	// is at level true while the button is pressed, unless inverted.
	Invert [Specials]bool

	// Interval is the queue drain rate. Defaults to DefaultInterval.
	Interval time.Duration

	Scheduler sched.Scheduler // required
	Logger    *log.Logger     // optional
}

// Spitz returns a configuration with the matrix wired to the CPU GPIO bank
// as on the Spitz family.
//
func Spitz(cpu gpio.Bank) Config {
	var c Config
	for i, n := range StrobeGPIO {
		c.Strobe[i] = cpu.Line(n)
	}
	for i, n := range SenseGPIO {
		c.Sense[i] = cpu.Line(n)
	}
	for i, n := range SpecialGPIO {
		c.Special[i] = cpu.Line(n)
	}
	c.Interval = DefaultInterval
	return c
}

type queue struct {
	buf     [QueueSize]byte
	head, n int
}

func (q *queue) push(b byte) {
	q.buf[(q.head+q.n)%QueueSize] = b
	q.n++
}

func (q *queue) pop() byte {
	b := q.buf[q.head]
	q.head = (q.head + 1) % QueueSize
	q.n--
	return b
}

// Keyboard is the key matrix and event synthesizer.
//
type Keyboard struct {
	bus *gpio.Bus
	cfg Config
	t   *tables

	rows   [Senses]uint16 // pressed cells, by row
	strobe uint16
	sense  uint8

	mods, imods uint16
	q           queue
	dropped     int

	tick   sched.Handle
	closed bool
}

// New returns a new keyboard on bus. Strobe line handlers are registered on
// bus and the drain tick is scheduled with cfg.Scheduler.
//
func New(bus *gpio.Bus, cfg Config) (*Keyboard, error) {
	if bus == nil {
		return nil, errors.New("keyboard: nil bus")
	}
	if cfg.Scheduler == nil {
		return nil, errors.New("keyboard: no scheduler")
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Interval < 0 {
		return nil, errors.Errorf("keyboard: invalid drain interval %v", cfg.Interval)
	}
	t, err := newTables()
	if err != nil {
		return nil, err
	}
	k := &Keyboard{bus: bus, cfg: cfg, t: t}
	for i, l := range cfg.Strobe {
		i := i
		bus.Register(l, gpio.LevelFunc(func(level bool) {
			k.strobe = bits.Set(k.strobe, i, level)
			k.update()
		}))
	}
	k.tick = cfg.Scheduler.ScheduleRepeating(cfg.Interval, k.drain)
	return k, nil
}

// Close stops the drain tick and detaches the strobe handlers. Subsequent
// calls are no-ops.
//
func (k *Keyboard) Close() error {
	if k.closed {
		return nil
	}
	k.closed = true
	k.cfg.Scheduler.Cancel(k.tick)
	for _, l := range k.cfg.Strobe {
		k.bus.Unregister(l)
	}
	return nil
}

// Key handles a host key event.
//
func (k *Keyboard) Key(code byte, up bool) {
	code &^= Release
	if up {
		code |= Release
	}
	k.PutScancode(code)
}

// PutScancode handles a host PC scancode.
//
func (k *Keyboard) PutScancode(sc byte) {
	switch sc {
	case LeftShift:
		k.mods |= ModLeftShift
	case LeftShift | Release:
		k.mods &^= ModLeftShift
	case RightShift:
		k.mods |= ModRightShift
	case RightShift | Release:
		k.mods &^= ModRightShift
	case Ctrl:
		k.mods |= ModCtrl
	case Ctrl | Release:
		k.mods &^= ModCtrl
	case Alt:
		k.mods |= ModFn
	case Alt | Release:
		k.mods &^= ModFn
	}

	idx := uint16(sc) &^ Release
	if k.mods&(ModLeftShift|ModRightShift) != 0 {
		idx |= needShift
	}
	code := k.t.remap[idx]
	up := sc & Release

	var (
		burst [8]byte
		n     int
	)
	emit := func(b byte) { burst[n] = b; n++ }
	imods := k.imods
	if code != idx {
		if up != 0 {
			if imods&ModLeftShift != 0 && k.mods&ModLeftShift == 0 {
				emit(LeftShift | Release)
			}
			if imods&ModCtrl != 0 && k.mods&ModCtrl == 0 {
				emit(Ctrl | Release)
			}
			if imods&ModFn != 0 && k.mods&ModFn == 0 {
				emit(Alt | Release)
			}
			if imods&ModLeftShiftUp != 0 && k.mods&ModLeftShift != 0 {
				emit(LeftShift)
			}
			if imods&ModRightShiftUp != 0 && k.mods&ModRightShift != 0 {
				emit(RightShift)
			}
			imods = 0
		} else {
			held := k.mods | imods
			if code&needShift != 0 && held&ModLeftShift == 0 {
				emit(LeftShift)
				imods |= ModLeftShift
			}
			if code&needCtrl != 0 && held&ModCtrl == 0 {
				emit(Ctrl)
				imods |= ModCtrl
			}
			if code&needFn != 0 && held&ModFn == 0 {
				emit(Alt)
				imods |= ModFn
			}
			if code&needFn != 0 && k.mods&ModLeftShift != 0 && imods&ModLeftShiftUp == 0 {
				emit(LeftShift | Release)
				imods |= ModLeftShiftUp
			}
			if code&needFn != 0 && k.mods&ModRightShift != 0 && imods&ModRightShiftUp == 0 {
				emit(RightShift | Release)
				imods |= ModRightShiftUp
			}
		}
	}
	emit(byte(code&0x7f) | up)

	if k.q.n+n > QueueSize {
		k.dropped++
		if k.cfg.Logger != nil {
			k.cfg.Logger.Printf("keyboard: event queue full, dropped %d scancodes for %#02x", n, sc)
		}
		return
	}
	k.imods = imods
	for _, b := range burst[:n] {
		k.q.push(b)
	}
}

func (k *Keyboard) drain() {
	if k.q.n > 0 {
		k.apply(k.q.pop())
	}
}

// apply updates the matrix with scancode sc.
func (k *Keyboard) apply(sc byte) {
	c := k.t.cell[sc&^Release]
	if c == none {
		return
	}
	row, col := int(c>>4), int(c&0xf)
	if row == Senses {
		k.bus.Set(k.cfg.Special[col], (sc < Release) != k.cfg.Invert[col])
		return
	}
	k.rows[row] = bits.Set(k.rows[row], col, sc&Release == 0)
	k.update()
}

// update recomputes the sense rows and drives the lines that changed.
func (k *Keyboard) update() {
	var sense uint8
	for i, r := range k.rows {
		if r&k.strobe != 0 {
			sense |= 1 << uint(i)
		}
	}
	diff := k.sense ^ sense
	k.sense = sense
	bits.Each(diff, func(i int) {
		k.bus.Set(k.cfg.Sense[i], bits.Test(sense, i))
	})
}

// Pressed reports whether the matrix cell at row, col is pressed.
//
func (k *Keyboard) Pressed(row, col int) bool {
	if row < 0 || row >= Senses || col < 0 || col >= Strobes {
		return false
	}
	return bits.Test(k.rows[row], col)
}

// Sense returns the sense rows state, bit i for row i.
//
func (k *Keyboard) Sense() uint8 { return k.sense }

// Strobe returns the strobe columns state, bit i for column i.
//
func (k *Keyboard) Strobe() uint16 { return k.strobe }

// Modifiers returns the modifiers held on the host keyboard.
//
func (k *Keyboard) Modifiers() uint16 { return k.mods }

// Injected returns the modifiers currently held or released by the
// synthesizer.
//
func (k *Keyboard) Injected() uint16 { return k.imods }

// Pending returns the queued scancodes, next first.
//
func (k *Keyboard) Pending() []byte {
	p := make([]byte, k.q.n)
	for i := range p {
		p[i] = k.q.buf[(k.q.head+i)%QueueSize]
	}
	return p
}

// Dropped returns the number of host events that were rejected because the
// queue was full.
//
func (k *Keyboard) Dropped() int { return k.dropped }
