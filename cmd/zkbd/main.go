// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command zkbd feeds terminal key presses to an emulated Zaurus keyboard and
// prints the matrix cells seen by a scanning guest.
//
// Press Ctrl-C to quit.
//
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"golang.org/x/term"
	"tinygo.org/x/drivers"

	"github.com/db47h/zaurus"
	"github.com/db47h/zaurus/keyboard"
	"github.com/db47h/zaurus/sched"
)

// PC scancodes of printable ASCII, by keyboard row.
var rows = []struct {
	base           byte
	plain, shifted string
}{
	{0x02, "1234567890-=", "!@#$%^&*()_+"},
	{0x10, "qwertyuiop[]", "QWERTYUIOP{}"},
	{0x1e, "asdfghjkl;'`", "ASDFGHJKL:\"~"},
	{0x2b, "\\zxcvbnm,./", "|ZXCVBNM<>?"},
}

var special = map[byte]byte{
	0x1b: 0x01, // Esc
	0x7f: 0x0e, // Backspace
	'\t': 0x0f,
	'\r': 0x1c,
	' ':  0x39,
}

// scancode returns the scancode for ASCII character c and whether shift is
// needed.
func scancode(c byte) (sc byte, shift, ok bool) {
	if sc, ok := special[c]; ok {
		return sc, false, true
	}
	for _, r := range rows {
		if i := bytes.IndexByte([]byte(r.plain), c); i >= 0 {
			return r.base + byte(i), false, true
		}
		if i := bytes.IndexByte([]byte(r.shifted), c); i >= 0 {
			return r.base + byte(i), true, true
		}
	}
	return 0, false, false
}

type crlf struct{ w io.Writer }

func (c crlf) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// scanner strobes the matrix like a guest would and reports changes.
type scanner struct {
	b    *zaurus.Board
	prev [keyboard.Senses]uint16
	out  io.Writer
}

func (s *scanner) scan() {
	bus := s.b.Bus()
	var cur [keyboard.Senses]uint16
	for col, n := range keyboard.StrobeGPIO {
		l := s.b.GPIO(n)
		bus.Set(l, true)
		for row, m := range keyboard.SenseGPIO {
			if bus.Get(s.b.GPIO(m)) {
				cur[row] |= 1 << uint(col)
			}
		}
		bus.Set(l, false)
	}
	for row := range cur {
		diff := cur[row] ^ s.prev[row]
		for col := 0; col < keyboard.Strobes; col++ {
			if diff&(1<<uint(col)) == 0 {
				continue
			}
			state := "up"
			if cur[row]&(1<<uint(col)) != 0 {
				state = "down"
			}
			fmt.Fprintf(s.out, "R%dC%d %s\n", row, col, state)
		}
	}
	s.prev = cur
}

// lcdtg sends a command to the LCD timing generator, framing the transfer
// with its chip-select line.
func lcdtg(b *zaurus.Board, spi drivers.SPI, addr, v uint8) error {
	bus, cs := b.Bus(), b.GPIO(zaurus.GPIOLCDConCS)
	bus.Set(cs, true)
	bus.Set(cs, false)
	defer bus.Set(cs, true)
	return spi.Tx([]byte{addr<<5 | v&0x1f}, nil)
}

func main() {
	var (
		model   = flag.String("model", "spitz", "machine model: spitz, akita, borzoi or terrier")
		rotated = flag.Bool("rotated", false, "tablet mode")
		rate    = flag.Duration("scan", 10*time.Millisecond, "guest scan interval")
		duty    = flag.Int("duty", -1, "backlight duty cycle (0-31) to program at startup")
	)
	flag.Parse()

	m, err := zaurus.ParseModel(*model)
	if err != nil {
		log.Fatal(err)
	}

	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		log.Fatalf("failed to set raw mode: %v", err)
	}
	defer term.Restore(fd, old)

	out := crlf{os.Stdout}
	loop := sched.NewLoop(64)
	b, err := zaurus.New(zaurus.Config{
		Model:     m,
		RAMSize:   zaurus.MinRAM,
		Rotated:   *rotated,
		Logger:    log.New(crlf{os.Stderr}, "", 0),
		Scheduler: loop,
	})
	if err != nil {
		term.Restore(fd, old)
		log.Fatal(err)
	}
	defer b.Close()

	if *duty >= 0 {
		if err := lcdtg(b, b.SSP(), zaurus.LCDTGDutyCtl, uint8(*duty)); err != nil {
			log.Print(err)
		}
	}

	s := &scanner{b: b, out: out}
	loop.ScheduleRepeating(*rate, s.scan)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		defer cancel()
		buf := make([]byte, 1)
		for {
			if _, err := os.Stdin.Read(buf); err != nil || buf[0] == 0x03 {
				return
			}
			sc, shift, ok := scancode(buf[0])
			if !ok {
				continue
			}
			loop.Post(ctx, func() {
				k := b.Keyboard()
				if shift {
					k.Key(keyboard.LeftShift, false)
				}
				k.Key(sc, false)
				k.Key(sc, true)
				if shift {
					k.Key(keyboard.LeftShift, true)
				}
			})
		}
	}()

	fmt.Fprintf(out, "%s: type keys, Ctrl-C to quit\n", m.Description())
	loop.Run(ctx)
}
