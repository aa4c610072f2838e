// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package bits provides small generic helpers for register bit fiddling.
//
package bits

import (
	mbits "math/bits"

	"golang.org/x/exp/constraints"
)

// Each calls fn for every bit set in v, from the least significant to the most
// significant one.
//
func Each[T constraints.Unsigned](v T, fn func(bit int)) {
	for x := uint64(v); x != 0; {
		bit := mbits.TrailingZeros64(x)
		fn(bit)
		x &^= 1 << uint(bit)
	}
}

// Test reports whether bit n of v is set.
//
func Test[T constraints.Unsigned](v T, n int) bool {
	return v&(1<<uint(n)) != 0
}

// Set returns v with bit n set to on.
//
func Set[T constraints.Unsigned](v T, n int, on bool) T {
	if on {
		return v | 1<<uint(n)
	}
	return v &^ (1 << uint(n))
}
