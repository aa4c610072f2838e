// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package zaurus

// CPUGPIOs is the number of GPIO lines of the PXA270.
//
const CPUGPIOs = 121

// CPU GPIO numbers. Keyboard lines are listed in the keyboard package.
//
const (
	GPIOSDDetect  = 9
	GPIOTPInt     = 11 // touch panel pen down
	GPIOADS7846CS = 14
	GPIOMAX1111CS = 20
	GPIOHSync     = 22
	GPIOLCDConCS  = 53
	GPIOSDWP      = 81
	GPIOOnReset   = 89
	GPIOBatCover  = 90
	GPIOCF2CD     = 93
	GPIOCF1CD     = 94
	GPIOCF1IRQ    = 105
	GPIOCF2IRQ    = 106
)

// GPIOs of the first expander.
//
const (
	ScpLEDGreen  = 1
	ScpJKB       = 2 // discharge switch
	ScpChrgOn    = 3 // charge switch, active low
	ScpMuteL     = 4
	ScpMuteR     = 5
	ScpCFPower   = 6
	ScpLEDOrange = 7
	ScpJKA       = 8
	ScpADCTempOn = 9
)

// GPIOs of the second expander.
//
const (
	Scp2IROn          = 1
	Scp2AKINPullup    = 2
	Scp2BacklightCont = 7 // backlight intensity bit 5, active low
	Scp2BacklightOn   = 8
	Scp2MicBias       = 9
)

// Battery monitor inputs.
//
const (
	BattVolt = 1
	BattTemp = 2
	ACInVolt = 3
)

// Battery monitor input levels.
//
const (
	BatteryTemp  = 0xe0 // about 2.9V
	BatteryVolt  = 0xd0 // about 4.0V
	ChargeOnACIn = 0x80 // about 5.0V
)
