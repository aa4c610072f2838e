// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package scoop models the SCOOP companion chip: a GPIO expander with a handful
// of opaque control registers.
//
// Every externally visible GPIO of the expander is a line in a 32 line bank of
// the signal bus. Downstream actuators register handlers on those lines.
//
package scoop

import (
	"log"

	"github.com/db47h/zaurus/gpio"
	"github.com/db47h/zaurus/internal/bits"
	"github.com/db47h/zaurus/regs"
)

// Register offsets.
//
const (
	MCR    = 0x00 // mode control
	CDR    = 0x04 // command data
	CSR    = 0x08 // status, read only
	CPR    = 0x0c // power control
	CCR    = 0x10 // clock control
	IRRIRM = 0x14 // IR control (write) / raw interrupt (read)
	IMR    = 0x18 // interrupt mask
	ISR    = 0x1c // interrupt status
	GPCR   = 0x20 // GPIO direction, 1 = output
	GPWR   = 0x24 // GPIO output level
	GPRR   = 0x28 // GPIO read-back, read only
)

// Size is the size of the mapped register window.
//
const Size = 0x1000

// Lines is the number of GPIO lines of an expander.
//
const Lines = 32

const (
	statusReady = 0x02
	powerQuirk  = 0x8040
)

// Expander is a SCOOP GPIO expander.
//
type Expander struct {
	regs.Block
	bus   *gpio.Bus
	lines gpio.Bank

	out  uint32 // requested output level
	in   uint32 // levels driven on input pins
	dir  uint32
	prev uint32 // last visible level

	mcr, cdr, status, power, ccr, irr, imr, isr uint16
}

// New returns a new expander named name with its GPIO lines allocated on bus.
// logger may be nil.
//
func New(name string, bus *gpio.Bus, logger *log.Logger) *Expander {
	s := &Expander{
		bus:    bus,
		lines:  bus.Alloc(name, Lines),
		status: statusReady,
	}
	r16 := func(p *uint16) func() uint32 { return func() uint32 { return uint32(*p) } }
	w16 := func(p *uint16) func(uint32) { return func(v uint32) { *p = uint16(v) } }
	s.Block = regs.Block{
		Name:  name,
		Width: 16,
		Log:   logger,
		Regs: map[uint32]regs.Reg{
			MCR:    {Name: "MCR", Read: r16(&s.mcr), Write: w16(&s.mcr)},
			CDR:    {Name: "CDR", Read: r16(&s.cdr), Write: w16(&s.cdr)},
			CSR:    {Name: "CSR", Read: r16(&s.status)},
			CPR:    {Name: "CPR", Read: r16(&s.power), Write: s.writePower},
			CCR:    {Name: "CCR", Read: r16(&s.ccr), Write: w16(&s.ccr)},
			IRRIRM: {Name: "IRR_IRM", Read: r16(&s.irr), Write: w16(&s.irr)},
			IMR:    {Name: "IMR", Read: r16(&s.imr), Write: w16(&s.imr)},
			ISR:    {Name: "ISR", Read: r16(&s.isr), Write: w16(&s.isr)},
			GPCR:   {Name: "GPCR", Read: func() uint32 { return s.dir }, Write: s.SetDirection},
			GPWR:   {Name: "GPWR", Read: func() uint32 { return s.out }, Write: s.SetOutput},
			GPRR:   {Name: "GPRR", Read: s.readback},
		},
	}
	return s
}

// Lines returns the bank of GPIO lines driven by the expander.
//
func (s *Expander) Lines() gpio.Bank { return s.lines }

// Line returns the signal bus line of GPIO n.
//
func (s *Expander) Line(n int) gpio.Line { return s.lines.Line(n) }

func (s *Expander) writePower(v uint32) {
	s.power = uint16(v)
	if v&0x80 != 0 {
		s.power |= powerQuirk
	}
}

// SetDirection sets the direction mask and updates the visible levels.
//
func (s *Expander) SetDirection(dir uint32) {
	s.dir = dir
	s.update()
}

// SetOutput sets the requested output levels and updates the visible levels.
//
func (s *Expander) SetOutput(level uint32) {
	s.out = level
	s.update()
}

// SetInput drives pin n from outside the chip. The level shows up in GPRR
// while the pin is configured as an input.
//
func (s *Expander) SetInput(n int, level bool) {
	if n < 0 || n >= Lines {
		if s.Log != nil {
			s.Log.Printf("%s: No GPIO pin %d", s.Name, n)
		}
		return
	}
	s.in = bits.Set(s.in, n, level)
}

// Visible returns the externally visible output levels.
//
func (s *Expander) Visible() uint32 { return s.out & s.dir }

func (s *Expander) readback() uint32 {
	return s.out&s.dir | s.in&^s.dir
}

func (s *Expander) update() {
	level := s.out & s.dir
	diff := s.prev ^ level
	s.prev = level
	bits.Each(diff, func(bit int) {
		s.bus.Set(s.lines.Line(bit), bits.Test(level, bit))
	})
}
