// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package ssp routes the single synchronous serial port of the board to the
// chips sharing it, based on the state of their chip-select lines.
//
// Chip-select lines are active low: a line at level false selects its chip.
// The demultiplexer does not enforce that at most one chip is selected; a
// transaction is forwarded to every selected chip.
//
package ssp

import (
	"github.com/pkg/errors"
	"tinygo.org/x/drivers"

	"github.com/db47h/zaurus/gpio"
)

// Chip is a device on the serial bus.
//
type Chip interface {
	Read() uint8
	Write(v uint8)
}

// NullChip is a chip that ignores writes and reads as 0.
//
type NullChip struct{}

// Read implements Chip.
func (NullChip) Read() uint8 { return 0 }

// Write implements Chip.
func (NullChip) Write(uint8) {}

type slot struct {
	name     string
	cs       gpio.Line
	chip     Chip
	selected bool
}

// MaxChips is the maximum number of chips that can share the bus.
//
const MaxChips = 3

// Demux is the serial bus demultiplexer.
//
type Demux struct {
	bus   *gpio.Bus
	slots []*slot
}

var _ drivers.SPI = (*Demux)(nil)

// New returns a new demultiplexer with no chip attached.
//
func New(bus *gpio.Bus) *Demux {
	return &Demux{bus: bus}
}

// Attach connects chip to the bus, gated by chip-select line cs. Reads from
// several selected chips return the value of the first attached one.
//
func (d *Demux) Attach(name string, cs gpio.Line, chip Chip) error {
	if len(d.slots) >= MaxChips {
		return errors.Errorf("ssp: cannot attach %q: bus full", name)
	}
	if chip == nil {
		return errors.Errorf("ssp: nil chip %q", name)
	}
	for _, s := range d.slots {
		if s.cs == cs {
			return errors.Errorf("ssp: chip-select line of %q already used by %q", name, s.name)
		}
	}
	s := &slot{name: name, cs: cs, chip: chip}
	d.slots = append(d.slots, s)
	d.bus.Register(cs, gpio.LevelFunc(func(level bool) { s.selected = !level }))
	return nil
}

// Selected reports whether the named chip is currently selected.
//
func (d *Demux) Selected(name string) bool {
	for _, s := range d.slots {
		if s.name == name {
			return s.selected
		}
	}
	return false
}

// Read reads a value from the selected chips. It returns 0 if no chip is
// selected.
//
func (d *Demux) Read() uint8 {
	var (
		v  uint8
		ok bool
	)
	for _, s := range d.slots {
		if !s.selected {
			continue
		}
		r := s.chip.Read()
		if !ok {
			v, ok = r, true
		}
	}
	return v
}

// Write sends v to all selected chips.
//
func (d *Demux) Write(v uint8) {
	for _, s := range d.slots {
		if s.selected {
			s.chip.Write(v)
		}
	}
}

// Transfer implements drivers.SPI. It writes b to the selected chips then
// reads the reply.
//
func (d *Demux) Transfer(b byte) (byte, error) {
	d.Write(b)
	return d.Read(), nil
}

// Tx implements drivers.SPI. Either w or r may be nil; if both are given they
// must have the same length.
//
func (d *Demux) Tx(w, r []byte) error {
	switch {
	case w == nil:
		for i := range r {
			r[i] = d.Read()
		}
	case r == nil:
		for _, b := range w {
			d.Write(b)
		}
	default:
		if len(w) != len(r) {
			return errors.Errorf("ssp: Tx length mismatch (%d != %d)", len(w), len(r))
		}
		for i, b := range w {
			d.Write(b)
			r[i] = d.Read()
		}
	}
	return nil
}
