// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package regs decodes memory-mapped register accesses.
//
// A Map translates absolute bus addresses into (Device, offset) pairs. A Block
// is a Device built from a table of registers indexed by byte offset. Accesses
// to unknown offsets are logged; reads return 0 and writes are ignored.
//
package regs

import (
	"fmt"
	"log"
	"sort"

	"github.com/pkg/errors"
)

// A Device handles reads and writes to its register block. Offsets are relative
// to the base address the device is mapped at. Devices own all truncation and
// width semantics.
//
type Device interface {
	Read(offset uint32) uint32
	Write(offset uint32, value uint32)
}

// A Reg is a single register in a Block. A nil Read makes the register
// write-only, a nil Write makes it read-only.
//
type Reg struct {
	Name  string
	Read  func() uint32
	Write func(v uint32)
}

// Block is a Device decoding offsets through a fixed register table.
//
type Block struct {
	Name  string
	Width int // register width in bits, used for diagnostics
	Regs  map[uint32]Reg
	Log   *log.Logger
}

func (b *Block) logf(format string, args ...interface{}) {
	if b.Log == nil {
		return
	}
	b.Log.Printf(b.Name+": "+format, args...)
}

func (b *Block) fmtOffset(offset uint32) string {
	return fmt.Sprintf("0x%0*x", (b.Width+3)/4, offset)
}

// Read implements Device.
//
func (b *Block) Read(offset uint32) uint32 {
	r, ok := b.Regs[offset]
	if !ok || r.Read == nil {
		b.logf("Bad register offset %s", b.fmtOffset(offset))
		return 0
	}
	return r.Read()
}

// Write implements Device.
//
func (b *Block) Write(offset uint32, value uint32) {
	r, ok := b.Regs[offset]
	if !ok || r.Write == nil {
		b.logf("Bad register offset %s", b.fmtOffset(offset))
		return
	}
	r.Write(value)
}

type region struct {
	name string
	base uint32
	size uint32
	dev  Device
}

func (r *region) contains(addr uint32) bool {
	return addr >= r.base && addr-r.base < r.size
}

// Map is a physical address space populated with devices.
//
type Map struct {
	rs  []region // sorted by base
	Log *log.Logger
}

// NewMap returns an empty address map. logger may be nil.
//
func NewMap(logger *log.Logger) *Map {
	return &Map{Log: logger}
}

// Add maps dev at [base, base+size).
//
func (m *Map) Add(name string, base, size uint32, dev Device) error {
	if size == 0 {
		return errors.Errorf("region %q: zero size", name)
	}
	if dev == nil {
		return errors.Errorf("region %q: nil device", name)
	}
	if base+size-1 < base {
		return errors.Errorf("region %q: range 0x%08x+0x%x wraps around", name, base, size)
	}
	for i := range m.rs {
		r := &m.rs[i]
		if uint64(base) < uint64(r.base)+uint64(r.size) && uint64(r.base) < uint64(base)+uint64(size) {
			return errors.Errorf("region %q at 0x%08x overlaps %q at 0x%08x", name, base, r.name, r.base)
		}
	}
	m.rs = append(m.rs, region{name, base, size, dev})
	sort.Slice(m.rs, func(i, j int) bool { return m.rs[i].base < m.rs[j].base })
	return nil
}

func (m *Map) find(addr uint32) *region {
	i := sort.Search(len(m.rs), func(i int) bool { return m.rs[i].base+m.rs[i].size-1 >= addr })
	if i < len(m.rs) && m.rs[i].contains(addr) {
		return &m.rs[i]
	}
	return nil
}

// Read reads the register at addr.
//
func (m *Map) Read(addr uint32) uint32 {
	r := m.find(addr)
	if r == nil {
		if m.Log != nil {
			m.Log.Printf("read from unmapped address 0x%08x", addr)
		}
		return 0
	}
	return r.dev.Read(addr - r.base)
}

// Write writes value to the register at addr.
//
func (m *Map) Write(addr uint32, value uint32) {
	r := m.find(addr)
	if r == nil {
		if m.Log != nil {
			m.Log.Printf("write to unmapped address 0x%08x", addr)
		}
		return
	}
	r.dev.Write(addr-r.base, value)
}
