// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package zaurus

import (
	"log"
)

// Backlight is the LCD backlight. Its intensity is a 6 bit value: the low 5
// bits are set through the LCD timing generator DAC and bit 5 by an expander
// GPIO.
//
type Backlight struct {
	intensity int
	power     bool
	log       *log.Logger
}

func newBacklight(logger *log.Logger) *Backlight {
	return &Backlight{intensity: 0x20, log: logger}
}

// Intensity returns the current intensity, from 0 to 63.
//
func (b *Backlight) Intensity() int { return b.intensity }

// Power reports whether the backlight is powered.
//
func (b *Backlight) Power() bool { return b.power }

// On reports whether the backlight is lit.
//
func (b *Backlight) On() bool { return b.power && b.intensity != 0 }

func (b *Backlight) update() {
	if b.On() {
		b.log.Printf("backlight: LCD Backlight now at %d/63", b.intensity)
	} else {
		b.log.Printf("backlight: LCD Backlight now off")
	}
}

// setBit5 drives intensity bit 5. The control line is active low.
func (b *Backlight) setBit5(level bool) {
	prev := b.intensity
	if level {
		b.intensity &^= 0x20
	} else {
		b.intensity |= 0x20
	}
	if b.power && prev != b.intensity {
		b.update()
	}
}

func (b *Backlight) setPower(level bool) {
	b.power = level
	b.update()
}

func (b *Backlight) setDuty(v int) {
	b.intensity = b.intensity&^0x1f | v&0x1f
	if b.power {
		b.update()
	}
}

// LCD timing generator registers.
//
const (
	LCDTGResCtl = iota
	LCDTGPhaseCtl
	LCDTGDutyCtl
	LCDTGPowerReg0
	LCDTGPowerReg1
	LCDTGGPOR3
	LCDTGPICtl
	LCDTGPolCtl
)

// LCDTG is the LCD timing generator. The only emulated feature is the
// backlight DAC. It sits on the serial bus and reads as 0.
//
type LCDTG struct {
	bl   *Backlight
	log  *log.Logger
	qvga bool
}

// QVGA reports whether the LCD is in QVGA mode.
//
func (t *LCDTG) QVGA() bool { return t.qvga }

// Read implements ssp.Chip.
//
func (t *LCDTG) Read() uint8 { return 0 }

// Write implements ssp.Chip. The top 3 bits of cmd select a register, the low
// 5 bits are the value.
//
func (t *LCDTG) Write(cmd uint8) {
	addr, v := cmd>>5, int(cmd&0x1f)
	switch addr {
	case LCDTGResCtl:
		t.qvga = v != 0
		if t.qvga {
			t.log.Print("lcdtg: LCD in QVGA mode")
		} else {
			t.log.Print("lcdtg: LCD in VGA mode")
		}
	case LCDTGDutyCtl:
		t.bl.setDuty(v)
	case LCDTGPowerReg0:
		// common voltage of the M62332FP, not emulated
	}
}
