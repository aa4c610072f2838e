// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package keyboard

import (
	"github.com/pkg/errors"
)

// Matrix dimensions.
//
const (
	Strobes  = 11 // strobe columns
	Senses   = 7  // sense rows
	Specials = 5  // special buttons, wired to dedicated lines
)

// Special buttons.
//
const (
	Remote = iota // remote control interrupt
	Sync
	Power
	Lid
	Tablet
)

// GPIO numbers of the matrix on the CPU bank.
//
var (
	StrobeGPIO  = [Strobes]int{88, 23, 24, 25, 26, 27, 52, 103, 107, 108, 114}
	SenseGPIO   = [Senses]int{12, 17, 91, 34, 36, 38, 39}
	SpecialGPIO = [Specials]int{13, 16, 95, 97, 96}
)

const none = -1

// layout maps matrix cells to PC scancodes. The last row holds the special
// buttons, indexed by column.
var layout = [Senses + 1][Strobes]int16{
	{0x1d, 0x02, 0x04, 0x06, 0x07, 0x08, 0x0a, 0x0b, 0x0e, 0x3f, 0x40},
	{none, 0x03, 0x05, 0x13, 0x15, 0x09, 0x17, 0x18, 0x19, 0x41, 0x42},
	{0x0f, 0x10, 0x12, 0x14, 0x22, 0x16, 0x24, 0x25, none, none, none},
	{0x3c, 0x11, 0x1f, 0x21, 0x2f, 0x23, 0x32, 0x26, none, 0x36, none},
	{0x3b, 0x1e, 0x20, 0x2e, 0x30, 0x31, 0x34, none, 0x1c, 0x2a, none},
	{0x44, 0x2c, 0x2d, 0x0c, 0x39, 0x33, none, 0x48, none, none, 0x3d},
	{0x37, 0x38, none, 0x45, 0x57, 0x58, 0x4b, 0x50, 0x4d, none, none},
	{0x52, 0x43, 0x01, 0x47, 0x49, none, none, none, none, none, none},
}

// Remap flags: the target key needs the modifier held.
const (
	needShift = 1 << 7
	needCtrl  = 1 << 8
	needFn    = 1 << 9
)

// overrides lists the host keys that do not map straight to the key with the
// same scancode. The index is the host scancode, with bit 7 set if any shift
// key is held.
var overrides = map[uint16]uint16{
	0x02 | needShift: 0x02 | needShift, // !
	0x28 | needShift: 0x03 | needShift, // "
	0x04 | needShift: 0x04 | needShift, // #
	0x05 | needShift: 0x05 | needShift, // $
	0x06 | needShift: 0x06 | needShift, // %
	0x08 | needShift: 0x07 | needShift, // &
	0x28:             0x08 | needShift, // '
	0x0a | needShift: 0x09 | needShift, // (
	0x0b | needShift: 0x0a | needShift, // )
	0x29 | needShift: 0x0b | needShift, // ~
	0x03 | needShift: 0x0c | needShift, // @
	0xd3:             0x0e | needFn,    // Delete
	0x3a:             0x0f | needFn,    // Caps Lock
	0x07 | needShift: 0x11 | needFn,    // ^
	0x0d:             0x12 | needFn,    // =
	0x0d | needShift: 0x13 | needFn,    // +
	0x1a:             0x14 | needFn,    // [
	0x1b:             0x15 | needFn,    // ]
	0x27:             0x22 | needFn,    // ;
	0x27 | needShift: 0x23 | needFn,    // :
	0x09 | needShift: 0x24 | needFn,    // *
	0x2b:             0x25 | needFn,    // \
	0x2b | needShift: 0x26 | needFn,    // |
	0x0c | needShift: 0x30 | needFn,    // _
	0x35:             0x33 | needShift, // /
	0x35 | needShift: 0x34 | needShift, // ?
	0x49:             0x48 | needFn,    // Page Up
	0x51:             0x50 | needFn,    // Page Down
}

// tables holds the lookup tables derived from layout and overrides.
type tables struct {
	cell  [0x80]int16 // scancode to row<<4 | col
	remap [0x100]uint16
}

func newTables() (*tables, error) {
	t := new(tables)
	for i := range t.cell {
		t.cell[i] = none
	}
	for row := range layout {
		for col, sc := range layout[row] {
			if sc == none {
				continue
			}
			if sc < 0 || sc >= 0x80 {
				return nil, errors.Errorf("keyboard: bad scancode %#x at %d,%d", sc, row, col)
			}
			if c := t.cell[sc]; c != none {
				return nil, errors.Errorf("keyboard: scancode %#x mapped at %d,%d and %d,%d", sc, c>>4, c&0xf, row, col)
			}
			t.cell[sc] = int16(row<<4 | col)
		}
	}
	for i := range t.remap {
		t.remap[i] = uint16(i)
	}
	for from, to := range overrides {
		if from >= 0x100 || to&0x7f == 0 {
			return nil, errors.Errorf("keyboard: bad remap %#x -> %#x", from, to)
		}
		t.remap[from] = to
	}
	return t, nil
}
