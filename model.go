// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package zaurus

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/db47h/zaurus/nand"
)

// A Model is a member of the Spitz family.
//
type Model int

// Supported models.
//
const (
	Spitz   Model = iota // SL-C3000
	Akita                // SL-C1000
	Borzoi               // SL-C3100
	Terrier              // SL-C3200
)

type modelInfo struct {
	name      string
	desc      string
	flashID   uint8
	scoops    int
	cpu       string
	machineID uint32
}

var models = [...]modelInfo{
	Spitz:   {"spitz", "Spitz PDA (PXA270)", nand.ID128M, 2, "pxa270-c0", 0x2c9},
	Akita:   {"akita", "Akita PDA (PXA270)", nand.ID1024M, 1, "pxa270-c0", 0x2e8},
	Borzoi:  {"borzoi", "Borzoi PDA (PXA270)", nand.ID1024M, 2, "pxa270-c0", 0x33f},
	Terrier: {"terrier", "Terrier PDA (PXA270)", nand.ID1024M, 2, "pxa270-c5", 0x33f},
}

func (m Model) valid() bool { return m >= 0 && int(m) < len(models) }

// info returns the catalog entry of m, or a zero entry for unknown models.
func (m Model) info() modelInfo {
	if !m.valid() {
		return modelInfo{}
	}
	return models[m]
}

func (m Model) String() string {
	if !m.valid() {
		return "Model(" + strconv.Itoa(int(m)) + ")"
	}
	return models[m].name
}

// Description returns a human readable description of the model. Accessors
// return zero values for unknown models.
//
func (m Model) Description() string { return m.info().desc }

// FlashID returns the device ID of the NAND flash chip fitted on the model.
// The manufacturer is always nand.MfrSamsung.
//
func (m Model) FlashID() uint8 { return m.info().flashID }

// Expanders returns the number of SCOOP expanders of the model.
//
func (m Model) Expanders() int { return m.info().scoops }

// Slots returns the number of PCMCIA slots.
//
func (m Model) Slots() int { return m.info().scoops }

// Microdrive reports whether the model ships with a microdrive permanently
// sitting in the first CF slot.
//
func (m Model) Microdrive() bool { return m.valid() && m != Akita }

// CPU returns the CPU revision of the model.
//
func (m Model) CPU() string { return m.info().cpu }

// MachineID returns the ARM Linux machine type number of the model.
//
func (m Model) MachineID() uint32 { return m.info().machineID }

// ParseModel returns the model with the given name.
//
func ParseModel(name string) (Model, error) {
	for i := range models {
		if strings.EqualFold(models[i].name, name) {
			return Model(i), nil
		}
	}
	return 0, errors.Errorf("zaurus: unknown model %q", name)
}
