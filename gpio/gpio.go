// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package gpio implements the signal bus shared by the board's device models.
//
// A Bus is a registry of binary signal lines. Each line holds a level and can
// be bound to at most one Handler which is notified synchronously whenever the
// level of the line changes. Handlers are free to Set other lines from within
// Transition, so device reactions can be chained on the same call stack.
//
// The bus performs no locking. Callers embedding it in a multithreaded host
// must serialize all calls.
//
package gpio

import (
	"strconv"
)

// A Line identifies a signal line on a Bus.
//
type Line int

// A Handler receives level transitions of the lines it is registered with.
//
type Handler interface {
	Transition(l Line, level bool)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
//
type HandlerFunc func(l Line, level bool)

// Transition calls f(l, level).
//
func (f HandlerFunc) Transition(l Line, level bool) { f(l, level) }

// LevelFunc adapts a function that only cares about the new level of a line.
// Most actuators are written this way.
//
type LevelFunc func(level bool)

// Transition calls f(level).
//
func (f LevelFunc) Transition(_ Line, level bool) { f(level) }

type line struct {
	level bool // last stored level
	last  bool // level at last dispatch
	h     int  // index in handler arena, -1 if unbound
	bank  int  // index of owning bank
}

// A Bank is a named, contiguous range of lines allocated on a Bus.
//
type Bank struct {
	Name string
	Base Line
	Len  int
}

// Line returns the n-th line of the bank. It panics if n is out of range.
//
func (b Bank) Line(n int) Line {
	if n < 0 || n >= b.Len {
		panic("line " + strconv.Itoa(n) + " out of range for bank " + b.Name)
	}
	return b.Base + Line(n)
}

// Contains reports whether l belongs to the bank.
//
func (b Bank) Contains(l Line) bool {
	return l >= b.Base && l < b.Base+Line(b.Len)
}

// Bus is a registry of signal lines.
//
type Bus struct {
	lines    []line
	banks    []Bank
	handlers []Handler
}

// NewBus returns a new empty bus.
//
func NewBus() *Bus {
	return &Bus{}
}

// Alloc allocates n new lines grouped in a bank with the given name.
// The first bank allocated on a bus starts at line 0.
//
func (b *Bus) Alloc(name string, n int) Bank {
	bk := Bank{Name: name, Base: Line(len(b.lines)), Len: n}
	idx := len(b.banks)
	b.banks = append(b.banks, bk)
	for i := 0; i < n; i++ {
		b.lines = append(b.lines, line{h: -1, bank: idx})
	}
	return bk
}

// Len returns the number of lines allocated on the bus.
//
func (b *Bus) Len() int { return len(b.lines) }

// Name returns a printable name for line l, made of its bank name and the line
// index within that bank.
//
func (b *Bus) Name(l Line) string {
	ln := b.line(l)
	bk := b.banks[ln.bank]
	return bk.Name + "." + strconv.Itoa(int(l-bk.Base))
}

func (b *Bus) line(l Line) *line {
	if l < 0 || int(l) >= len(b.lines) {
		panic("line " + strconv.Itoa(int(l)) + " does not exist")
	}
	return &b.lines[l]
}

// Register binds h to line l, replacing any handler previously bound to it.
// A nil handler unbinds the line.
//
func (b *Bus) Register(l Line, h Handler) {
	ln := b.line(l)
	if ln.h >= 0 {
		b.handlers[ln.h] = nil
		ln.h = -1
	}
	if h == nil {
		return
	}
	ln.h = len(b.handlers)
	b.handlers = append(b.handlers, h)
}

// Unregister removes the handler bound to line l, if any.
//
func (b *Bus) Unregister(l Line) { b.Register(l, nil) }

// Get returns the last level stored on line l.
//
func (b *Bus) Get(l Line) bool {
	return b.line(l).level
}

// Set stores level on line l. If a handler is bound to l and level differs
// from the level seen by the handler at the previous dispatch, the handler is
// called before Set returns.
//
func (b *Bus) Set(l Line, level bool) {
	ln := b.line(l)
	ln.level = level
	if ln.h < 0 || ln.last == level {
		return
	}
	ln.last = level
	h := b.handlers[ln.h]
	h.Transition(l, level)
}

// Toggle inverts the level of line l.
//
func (b *Bus) Toggle(l Line) {
	b.Set(l, !b.Get(l))
}
