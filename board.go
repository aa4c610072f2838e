// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package zaurus

import (
	"log"
	"os"

	"github.com/pkg/errors"
	"tinygo.org/x/drivers"

	"github.com/db47h/zaurus/gpio"
	"github.com/db47h/zaurus/keyboard"
	"github.com/db47h/zaurus/nand"
	"github.com/db47h/zaurus/regs"
	"github.com/db47h/zaurus/sched"
	"github.com/db47h/zaurus/scoop"
	"github.com/db47h/zaurus/ssp"
)

// Memory layout.
//
const (
	RAMBase    = 0xa0000000
	RAMSize    = 0x04000000
	ROMSize    = 0x00800000
	MinRAM     = RAMSize + ROMSize
	Scoop0Base = 0x10800000
	Scoop1Base = 0x08800040
)

// ADC is an analog to digital converter on the serial bus, like the MAX1111
// battery monitor.
//
type ADC interface {
	ssp.Chip
	SetInput(ch int, v uint8)
}

type nullADC struct{ ssp.NullChip }

func (nullADC) SetInput(int, uint8) {}

// Config is the board configuration.
//
type Config struct {
	Model Model

	// RAMSize is the amount of memory given to the machine. It must be at
	// least MinRAM.
	RAMSize uint32

	// Rotated is set if the screen is in tablet mode.
	Rotated bool

	// Logger receives device messages. Defaults to a logger writing to
	// os.Stderr.
	Logger *log.Logger

	// Scheduler drives the keyboard. Required.
	Scheduler sched.Scheduler

	// Collaborators. Nil values are replaced with inert devices.
	Flash   func(mfr, id uint8) nand.Chip
	Touch   ssp.Chip // ADS7846 touch panel controller
	Battery ADC      // MAX1111 battery monitor
	Reset   func()   // called when the CPU requests a reset
}

// Board is a Spitz family board: the devices around the CPU wired together.
//
type Board struct {
	model Model
	log   *log.Logger
	bus   *gpio.Bus
	cpu   gpio.Bank
	mem   *regs.Map

	nand  *nand.Controller
	scoop []*scoop.Expander
	ssp   *ssp.Demux
	kbd   *keyboard.Keyboard
	lcd   *LCDTG
	bl    *Backlight
	adc   ADC

	hsync bool
}

// New builds a board from cfg.
//
func New(cfg Config) (*Board, error) {
	if !cfg.Model.valid() {
		return nil, errors.Errorf("zaurus: unknown model %v", cfg.Model)
	}
	if cfg.RAMSize < MinRAM {
		return nil, errors.Errorf("zaurus: this platform requires %d bytes of memory", MinRAM)
	}
	if cfg.Scheduler == nil {
		return nil, errors.New("zaurus: no scheduler")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	if cfg.Touch == nil {
		cfg.Touch = ssp.NullChip{}
	}
	if cfg.Battery == nil {
		cfg.Battery = nullADC{}
	}
	var flash nand.Chip = nand.Idle{}
	if cfg.Flash != nil {
		if flash = cfg.Flash(nand.MfrSamsung, cfg.Model.FlashID()); flash == nil {
			return nil, errors.New("zaurus: nil flash chip")
		}
	}

	bus := gpio.NewBus()
	b := &Board{
		model: cfg.Model,
		log:   cfg.Logger,
		bus:   bus,
		cpu:   bus.Alloc("cpu", CPUGPIOs),
		mem:   regs.NewMap(cfg.Logger),
		adc:   cfg.Battery,
	}

	b.nand = nand.New(flash, bus, cfg.Logger)
	if err := b.mem.Add("nand", nand.Base, nand.Size, b.nand); err != nil {
		return nil, errors.Wrap(err, "zaurus: failed to map flash controller")
	}

	kc := keyboard.Spitz(b.cpu)
	kc.Invert[keyboard.Lid] = false // always open
	kc.Invert[keyboard.Tablet] = !cfg.Rotated
	kc.Scheduler = cfg.Scheduler
	kc.Logger = cfg.Logger
	kbd, err := keyboard.New(bus, kc)
	if err != nil {
		return nil, errors.Wrap(err, "zaurus: keyboard setup failed")
	}
	b.kbd = kbd

	if err = b.attachSSP(cfg.Touch); err != nil {
		kbd.Close()
		return nil, err
	}

	for i, base := range []uint32{Scoop0Base, Scoop1Base}[:cfg.Model.Expanders()] {
		name := "scoop" + string(rune('0'+i))
		s := scoop.New(name, bus, cfg.Logger)
		if err = b.mem.Add(name, base, scoop.Size, s); err != nil {
			kbd.Close()
			return nil, errors.Wrapf(err, "zaurus: failed to map %s", name)
		}
		b.scoop = append(b.scoop, s)
	}
	b.wireScoop()
	b.wireGPIO(cfg.Reset, kc.Invert)
	return b, nil
}

func (b *Board) attachSSP(touch ssp.Chip) error {
	b.bl = newBacklight(b.log)
	b.lcd = &LCDTG{bl: b.bl, log: b.log}

	b.adc.SetInput(BattVolt, BatteryVolt)
	b.adc.SetInput(BattTemp, 0)
	b.adc.SetInput(ACInVolt, ChargeOnACIn)

	b.ssp = ssp.New(b.bus)
	for _, c := range []struct {
		name string
		cs   int
		chip ssp.Chip
	}{
		{"lcdtg", GPIOLCDConCS, b.lcd},
		{"ads7846", GPIOADS7846CS, touch},
		{"max1111", GPIOMAX1111CS, b.adc},
	} {
		if err := b.ssp.Attach(c.name, b.cpu.Line(c.cs), c.chip); err != nil {
			return errors.Wrap(err, "zaurus: serial bus setup failed")
		}
	}
	return nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (b *Board) wireScoop() {
	s0 := b.scoop[0]
	b.bus.Register(s0.Line(ScpChrgOn), gpio.LevelFunc(func(level bool) {
		b.log.Printf("battery: Charging %s.", onOff(!level))
	}))
	b.bus.Register(s0.Line(ScpJKB), gpio.LevelFunc(func(level bool) {
		b.log.Printf("battery: Discharging %s.", onOff(level))
	}))
	b.bus.Register(s0.Line(ScpLEDGreen), gpio.LevelFunc(func(level bool) {
		b.log.Printf("led: Green LED %s.", onOff(level))
	}))
	b.bus.Register(s0.Line(ScpLEDOrange), gpio.LevelFunc(func(level bool) {
		b.log.Printf("led: Orange LED %s.", onOff(level))
	}))
	b.bus.Register(s0.Line(ScpADCTempOn), gpio.LevelFunc(func(level bool) {
		if level {
			b.adc.SetInput(BattTemp, BatteryTemp)
		} else {
			b.adc.SetInput(BattTemp, 0)
		}
	}))

	if len(b.scoop) < 2 {
		return
	}
	s1 := b.scoop[1]
	b.bus.Register(s1.Line(Scp2BacklightCont), gpio.LevelFunc(b.bl.setBit5))
	b.bus.Register(s1.Line(Scp2BacklightOn), gpio.LevelFunc(b.bl.setPower))
}

func (b *Board) wireGPIO(reset func(), invert [keyboard.Specials]bool) {
	// battery lock always closed
	b.bus.Set(b.cpu.Line(GPIOBatCover), true)

	b.bus.Register(b.cpu.Line(GPIOOnReset), gpio.LevelFunc(func(level bool) {
		if level && reset != nil {
			reset()
		}
	}))

	b.bus.Set(b.cpu.Line(keyboard.SpecialGPIO[keyboard.Lid]), invert[keyboard.Lid])
	b.bus.Set(b.cpu.Line(keyboard.SpecialGPIO[keyboard.Tablet]), invert[keyboard.Tablet])
}

// Model returns the board model.
//
func (b *Board) Model() Model { return b.model }

// Bus returns the signal bus of the board.
//
func (b *Board) Bus() *gpio.Bus { return b.bus }

// CPU returns the CPU GPIO bank.
//
func (b *Board) CPU() gpio.Bank { return b.cpu }

// GPIO returns the signal bus line of CPU GPIO n.
//
func (b *Board) GPIO(n int) gpio.Line { return b.cpu.Line(n) }

// NAND returns the flash controller.
//
func (b *Board) NAND() *nand.Controller { return b.nand }

// Scoop returns the i-th expander, or nil if the model has no such expander.
//
func (b *Board) Scoop(i int) *scoop.Expander {
	if i < 0 || i >= len(b.scoop) {
		return nil
	}
	return b.scoop[i]
}

// SSP returns the CPU serial port. Transactions reach the chips whose
// chip-select lines are low.
//
func (b *Board) SSP() drivers.SPI { return b.ssp }

// Keyboard returns the keyboard.
//
func (b *Board) Keyboard() *keyboard.Keyboard { return b.kbd }

// LCD returns the LCD timing generator.
//
func (b *Board) LCD() *LCDTG { return b.lcd }

// Backlight returns the LCD backlight.
//
func (b *Board) Backlight() *Backlight { return b.bl }

// Read reads the device register at physical address addr.
//
func (b *Board) Read(addr uint32) uint32 { return b.mem.Read(addr) }

// Write writes the device register at physical address addr.
//
func (b *Board) Write(addr, v uint32) { b.mem.Write(addr, v) }

// GPIOStatusRead must be called by the CPU GPIO block whenever the guest
// reads the GPIO levels, and by the LCD controller on vertical sync. It
// toggles the HSYNC line for guests that busy wait on it.
//
func (b *Board) GPIOStatusRead() {
	b.bus.Set(b.cpu.Line(GPIOHSync), b.hsync)
	b.hsync = !b.hsync
}

// SetPenDown drives the touch panel interrupt line.
//
func (b *Board) SetPenDown(down bool) { b.bus.Set(b.cpu.Line(GPIOTPInt), down) }

// SetCardCover drives the SD card detect line.
//
func (b *Board) SetCardCover(in bool) { b.bus.Set(b.cpu.Line(GPIOSDDetect), in) }

// SetCardWriteProtect drives the SD card write protect line.
//
func (b *Board) SetCardWriteProtect(wp bool) { b.bus.Set(b.cpu.Line(GPIOSDWP), wp) }

var cardLines = [2]struct{ irq, cd int }{
	{GPIOCF1IRQ, GPIOCF1CD},
	{GPIOCF2IRQ, GPIOCF2CD},
}

func (b *Board) cardLine(slot int, cd bool) (gpio.Line, bool) {
	if slot < 0 || slot >= b.model.Slots() {
		b.log.Printf("pcmcia: No PCMCIA slot %d", slot)
		return 0, false
	}
	if cd {
		return b.cpu.Line(cardLines[slot].cd), true
	}
	return b.cpu.Line(cardLines[slot].irq), true
}

// CardIRQ drives the interrupt line of the card in the given PCMCIA slot.
//
func (b *Board) CardIRQ(slot int, level bool) {
	if l, ok := b.cardLine(slot, false); ok {
		b.bus.Set(l, level)
	}
}

// CardDetect drives the card detect line of the given PCMCIA slot.
//
func (b *Board) CardDetect(slot int, level bool) {
	if l, ok := b.cardLine(slot, true); ok {
		b.bus.Set(l, level)
	}
}

// Close releases the resources held by the board. The board must not be used
// afterwards.
//
func (b *Board) Close() error {
	return b.kbd.Close()
}
