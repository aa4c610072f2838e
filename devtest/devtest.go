// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package devtest provides test doubles for the collaborators of the device
// models: a signal transition recorder, a scriptable flash chip and a
// scriptable serial chip.
//
package devtest

import (
	"fmt"
	"strings"

	"github.com/db47h/zaurus/gpio"
	"github.com/db47h/zaurus/nand"
)

// A Transition is a recorded line level change.
//
type Transition struct {
	Line  gpio.Line
	Level bool
}

func (t Transition) String() string {
	if t.Level {
		return fmt.Sprintf("%d:1", t.Line)
	}
	return fmt.Sprintf("%d:0", t.Line)
}

// Recorder is a gpio.Handler that records every transition it receives.
//
type Recorder struct {
	T []Transition
}

// Transition implements gpio.Handler.
//
func (r *Recorder) Transition(l gpio.Line, level bool) {
	r.T = append(r.T, Transition{l, level})
}

// Watch registers r on all the given lines.
//
func (r *Recorder) Watch(b *gpio.Bus, lines ...gpio.Line) *Recorder {
	for _, l := range lines {
		b.Register(l, r)
	}
	return r
}

// Reset forgets all recorded transitions.
//
func (r *Recorder) Reset() { r.T = r.T[:0] }

func (r *Recorder) String() string {
	s := make([]string, len(r.T))
	for i, t := range r.T {
		s[i] = t.String()
	}
	return "[" + strings.Join(s, " ") + "]"
}

// Equal reports whether the recorded transitions match ts exactly.
//
func (r *Recorder) Equal(ts ...Transition) bool {
	if len(r.T) != len(ts) {
		return false
	}
	for i := range ts {
		if r.T[i] != ts[i] {
			return false
		}
	}
	return true
}

// Flash is a nand.Chip recording pin changes and byte transfers. Reads are
// served from Out, then 0xff once exhausted.
//
type Flash struct {
	Ready   bool
	PinLog  []nand.Pins
	In      []uint8 // bytes written by the controller
	Out     []uint8 // bytes returned to the controller
	current nand.Pins
}

// SetPins implements nand.Chip.
func (f *Flash) SetPins(p nand.Pins) {
	f.current = p
	f.PinLog = append(f.PinLog, p)
}

// Pins implements nand.Chip.
func (f *Flash) Pins() nand.Pins {
	p := f.current
	p.ReadyBusy = f.Ready
	return p
}

// IO implements nand.Chip.
func (f *Flash) IO() uint8 {
	if len(f.Out) == 0 {
		return 0xff
	}
	v := f.Out[0]
	f.Out = f.Out[1:]
	return v
}

// SetIO implements nand.Chip.
func (f *Flash) SetIO(v uint8) { f.In = append(f.In, v) }

// Serial is a serial bus chip recording writes. Reads are served from Out,
// then 0 once exhausted.
//
type Serial struct {
	In    []uint8
	Out   []uint8
	Reads int
}

// Read implements ssp.Chip.
func (s *Serial) Read() uint8 {
	s.Reads++
	if len(s.Out) == 0 {
		return 0
	}
	v := s.Out[0]
	s.Out = s.Out[1:]
	return v
}

// Write implements ssp.Chip.
func (s *Serial) Write(v uint8) { s.In = append(s.In, v) }

// ADC is a Serial chip with analog inputs, as the battery monitor.
//
type ADC struct {
	Serial
	Inputs map[int]uint8
}

// SetInput records the value of analog input channel ch.
//
func (a *ADC) SetInput(ch int, v uint8) {
	if a.Inputs == nil {
		a.Inputs = make(map[int]uint8)
	}
	a.Inputs[ch] = v
}
