// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package nand

// precalc holds, for every byte value, its six column parity bits (bits 0-5)
// and its overall parity (bit 6).
//
//	CP0 = b0^b2^b4^b6	CP1 = b1^b3^b5^b7
//	CP2 = b0^b1^b4^b5	CP3 = b2^b3^b6^b7
//	CP4 = b0^b1^b2^b3	CP5 = b4^b5^b6^b7
//
var precalc [256]uint8

var cpMasks = [6]uint8{0x55, 0xaa, 0x33, 0xcc, 0x0f, 0xf0}

func parity(v uint8) uint8 {
	v ^= v >> 4
	v ^= v >> 2
	v ^= v >> 1
	return v & 1
}

func init() {
	for i := range precalc {
		b := uint8(i)
		var e uint8
		for n, m := range cpMasks {
			e |= parity(b&m) << uint(n)
		}
		e |= parity(b) << 6
		precalc[i] = e
	}
}

// ECC is a Hamming-style line/column parity accumulator computed over the byte
// stream flowing through the controller.
//
type ECC struct {
	lp    [2]uint8
	cp    uint8
	count uint32
}

// Digest accumulates b and returns it unchanged.
//
func (e *ECC) Digest(b uint8) uint8 {
	idx := precalc[b]
	e.cp ^= idx & 0x3f
	if idx&0x40 != 0 {
		e.lp[0] ^= ^uint8(e.count)
		e.lp[1] ^= uint8(e.count)
	}
	e.count++
	return b
}

// Reset clears all accumulators and the byte counter.
//
func (e *ECC) Reset() {
	*e = ECC{}
}

// LP returns the raw line parity accumulators.
//
func (e *ECC) LP() [2]uint8 { return e.lp }

// CP returns the column parity.
//
func (e *ECC) CP() uint8 { return e.cp }

// Count returns the byte counter modulo 256.
//
func (e *ECC) Count() uint8 { return uint8(e.count) }

// interleave packs nibble n of lp[0] into the even bits and nibble n of lp[1]
// into the odd bits of the result.
func (e *ECC) interleave(shift uint) uint8 {
	var out uint8
	for i := uint(0); i < 4; i++ {
		out |= (e.lp[0] >> (shift + i) & 1) << (2 * i)
		out |= (e.lp[1] >> (shift + i) & 1) << (2*i + 1)
	}
	return out
}

// Readback returns the line parity as presented by the ECCLPLB and ECCLPUB
// registers.
//
func (e *ECC) Readback() (lo, hi uint8) {
	return e.interleave(4), e.interleave(0)
}
