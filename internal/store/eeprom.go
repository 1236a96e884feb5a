/*
   ivtracer - flat byte-addressed persistent store.

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

package store

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"
)

const (
	// Fixed byte offsets into the persisted store. Values are
	// IEEE-754 32-bit floats stored little-endian.
	MagicOffset    = 0
	CountOffset    = 4
	PolarityOffset = 44

	magicValue = 123456.7890

	floatWidth = 4
)

// EEPROM is a flat byte-addressed store backed by a file on disk,
// standing in for the MCU's onboard EEPROM. An in-memory-only EEPROM
// (no path) is used by tests.
type EEPROM struct {
	path string
	data []byte
}

// Open loads an EEPROM image from path, creating an empty (unprogrammed)
// one if it does not exist. Size is raised, if needed, so the store
// holds at least the polarity slot.
func Open(path string, size int) (*EEPROM, error) {
	if size < PolarityOffset+floatWidth {
		size = PolarityOffset + floatWidth
	}
	ee := &EEPROM{path: path, data: make([]byte, size)}
	if path == "" {
		return ee, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ee, nil
		}
		return nil, fmt.Errorf("eeprom: %w", err)
	}
	copy(ee.data, b)
	return ee, nil
}

// Save flushes the EEPROM image to disk, a no-op for in-memory stores.
func (ee *EEPROM) Save() error {
	if ee.path == "" {
		return nil
	}
	return os.WriteFile(ee.path, ee.data, 0o600)
}

// Programmed reports whether the magic sentinel at offset 0 is
// present. Its absence means the store is unprogrammed.
func (ee *EEPROM) Programmed() bool {
	return ee.readFloat(MagicOffset) == magicValue
}

func (ee *EEPROM) readFloat(addr int) float32 {
	if addr < 0 || addr+floatWidth > len(ee.data) {
		return 0
	}
	bits := binary.LittleEndian.Uint32(ee.data[addr : addr+floatWidth])
	return math.Float32frombits(bits)
}

func (ee *EEPROM) writeFloatRaw(addr int, v float32) error {
	if addr < 0 || addr+floatWidth > len(ee.data) {
		return fmt.Errorf("eeprom: address %d out of range", addr)
	}
	binary.LittleEndian.PutUint32(ee.data[addr:addr+floatWidth], math.Float32bits(v))
	return nil
}

// WriteFloat persists one float at addr, stamping the magic sentinel
// and bumping the valid-entry count the first time a non-reserved
// address is written (goes from blank, i.e. zero, to a non-zero value).
func (ee *EEPROM) WriteFloat(addr int, v float32) error {
	prev := ee.readFloat(addr)
	if err := ee.writeFloatRaw(addr, v); err != nil {
		return err
	}
	if !ee.Programmed() {
		if err := ee.writeFloatRaw(MagicOffset, magicValue); err != nil {
			return err
		}
	}
	if addr != MagicOffset && addr != CountOffset && prev == 0 && v != 0 {
		count := int(ee.readFloat(CountOffset))
		count++
		if err := ee.writeFloatRaw(CountOffset, float32(count)); err != nil {
			return err
		}
	}
	return ee.Save()
}

// PolarityActiveHigh reports the persisted relay polarity bit,
// defaulting to active-low (false) when the store is unprogrammed -
// a fresh board must fall back to active-low relay polarity silently.
func (ee *EEPROM) PolarityActiveHigh() bool {
	if !ee.Programmed() {
		return false
	}
	return ee.readFloat(PolarityOffset) != 0
}

// Dump renders every valid float entry to four decimals, one per
// line, for the DUMP_EEPROM command.
//
// "Valid" means any floatWidth-aligned address in the declared range
// holding a non-zero value - an unwritten slot reads back as the
// zeroed default, the same blank-vs-written convention WriteFloat
// already relies on for the magic sentinel. Scanning the whole range
// (rather than remembering which addresses WriteFloat touched this
// process) is what makes a dump correct after reloading a persisted
// image from disk.
func (ee *EEPROM) Dump() string {
	if !ee.Programmed() {
		return "EEPROM unprogrammed"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d: %.4f\n", MagicOffset, ee.readFloat(MagicOffset))
	fmt.Fprintf(&b, "%d: %.4f (count=%d)\n", CountOffset, ee.readFloat(CountOffset), int(ee.readFloat(CountOffset)))

	for addr := 0; addr+floatWidth <= len(ee.data); addr += floatWidth {
		if addr == MagicOffset || addr == CountOffset {
			continue
		}
		v := ee.readFloat(addr)
		if v == 0 {
			continue
		}
		if addr == PolarityOffset {
			fmt.Fprintf(&b, "%d: %.4f (polarity)\n", addr, v)
			continue
		}
		fmt.Fprintf(&b, "%d: %.4f\n", addr, v)
	}
	return strings.TrimRight(b.String(), "\n")
}
