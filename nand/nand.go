// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package nand models the NAND flash controller of the Spitz board: a control
// register driving the flash chip's latch and enable pins, an I/O register and
// an ECC side channel computed over every transferred byte.
//
// The raw flash chip is an external collaborator reached through the Chip
// interface.
//
package nand

import (
	"log"

	"github.com/db47h/zaurus/gpio"
	"github.com/db47h/zaurus/regs"
)

// Register offsets.
//
const (
	ECCLPLB  = 0x00 // Line parity 7 - 0 bit
	ECCLPUB  = 0x04 // Line parity 15 - 8 bit
	ECCCP    = 0x08 // Column parity 5 - 0 bit
	ECCCNTR  = 0x0c // ECC byte counter
	ECCCLRR  = 0x10 // Clear ECC
	FLASHIO  = 0x14 // Flash I/O
	FLASHCTL = 0x18 // Flash control
)

// Base address and mapped size of the controller.
//
const (
	Base = 0x0c000000
	Size = 0x40
)

// FLASHCTL bits.
//
const (
	CtlCE0  = 1 << 0
	CtlCLE  = 1 << 1
	CtlALE  = 1 << 2
	CtlWP   = 1 << 3
	CtlCE1  = 1 << 4
	CtlRYBY = 1 << 5
	CtlNCE  = CtlCE0 | CtlCE1
)

// Manufacturer and device IDs of the chips found on the different models.
//
const (
	MfrSamsung = 0xec
	ID128M     = 0x73
	ID1024M    = 0xf1
)

// Pins is the state of the flash chip's control pins.
//
type Pins struct {
	CLE, ALE, CE, WP, GND bool
	ReadyBusy             bool // read only
}

// Chip is the raw NAND flash chip behind the controller.
//
type Chip interface {
	SetPins(p Pins)
	Pins() Pins
	IO() uint8
	SetIO(v uint8)
}

// Idle is a flash chip that is always ready and reads as erased.
//
type Idle struct{}

// SetPins implements Chip.
func (Idle) SetPins(Pins) {}

// Pins implements Chip.
func (Idle) Pins() Pins { return Pins{ReadyBusy: true} }

// IO implements Chip.
func (Idle) IO() uint8 { return 0xff }

// SetIO implements Chip.
func (Idle) SetIO(uint8) {}

// Control pin lines mirrored on the signal bus, in bank order.
//
const (
	LineCLE = iota
	LineALE
	LineCE
	LineWP
	lineCount
)

// Controller is the NAND controller register block.
//
type Controller struct {
	regs.Block
	chip Chip
	ctl  uint8
	ecc  ECC

	bus  *gpio.Bus
	pins gpio.Bank
}

// New returns a new controller for chip. The control pins are mirrored on a
// 4 line bank allocated on bus. logger may be nil.
//
func New(chip Chip, bus *gpio.Bus, logger *log.Logger) *Controller {
	if chip == nil {
		chip = Idle{}
	}
	c := &Controller{
		chip: chip,
		bus:  bus,
		pins: bus.Alloc("nand", lineCount),
	}
	c.Block = regs.Block{
		Name:  "nand",
		Width: 8,
		Log:   logger,
		Regs: map[uint32]regs.Reg{
			ECCLPLB: {Name: "ECCLPLB", Read: func() uint32 { lo, _ := c.ecc.Readback(); return uint32(lo) }},
			ECCLPUB: {Name: "ECCLPUB", Read: func() uint32 { _, hi := c.ecc.Readback(); return uint32(hi) }},
			ECCCP:   {Name: "ECCCP", Read: func() uint32 { return uint32(c.ecc.CP()) }},
			ECCCNTR: {Name: "ECCCNTR", Read: func() uint32 { return uint32(c.ecc.Count()) }},
			// Value is ignored.
			ECCCLRR:  {Name: "ECCCLRR", Write: func(uint32) { c.ecc.Reset() }},
			FLASHIO:  {Name: "FLASHIO", Read: c.readIO, Write: c.writeIO},
			FLASHCTL: {Name: "FLASHCTL", Read: c.readCtl, Write: c.writeCtl},
		},
	}
	return c
}

// Pins returns the bank holding the mirrored control pin lines.
//
func (c *Controller) Pins() gpio.Bank { return c.pins }

// ECC returns the ECC engine.
//
func (c *Controller) ECC() *ECC { return &c.ecc }

func (c *Controller) readCtl() uint32 {
	if c.chip.Pins().ReadyBusy {
		return uint32(c.ctl | CtlRYBY)
	}
	return uint32(c.ctl)
}

func (c *Controller) writeCtl(v uint32) {
	c.ctl = uint8(v) &^ CtlRYBY
	p := Pins{
		CLE: c.ctl&CtlCLE != 0,
		ALE: c.ctl&CtlALE != 0,
		CE:  c.ctl&CtlNCE != 0,
		WP:  c.ctl&CtlWP != 0,
	}
	c.chip.SetPins(p)
	c.bus.Set(c.pins.Line(LineCLE), p.CLE)
	c.bus.Set(c.pins.Line(LineALE), p.ALE)
	c.bus.Set(c.pins.Line(LineCE), p.CE)
	c.bus.Set(c.pins.Line(LineWP), p.WP)
}

func (c *Controller) readIO() uint32 {
	return uint32(c.ecc.Digest(c.chip.IO()))
}

func (c *Controller) writeIO(v uint32) {
	c.chip.SetIO(c.ecc.Digest(uint8(v)))
}
