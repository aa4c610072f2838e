// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package zaurus wires together the peripheral models of the Sharp Zaurus
clamshell PDAs built around the PXA270: Spitz, Akita, Borzoi and Terrier.

The devices are connected through a signal bus (package gpio). The CPU GPIO
block owns the first 121 lines so that line n is GPIO n. Memory mapped devices
(the NAND controller in package nand and the SCOOP expanders in package scoop)
are reached through Board.Read and Board.Write. The serial bus (package ssp)
carries the LCD timing generator, the touch panel controller and the battery
monitor. The keyboard (package keyboard) is driven by host scancodes and by
the strobe lines the guest drives.

The CPU core, raw flash chip and analog chips are outside the scope of this
package. They are collaborators given to New through Config.

Nothing in this package is safe for concurrent use. A multithreaded host must
serialize all calls, for example by using sched.Loop and posting every entry
point to it.

*/
package zaurus
