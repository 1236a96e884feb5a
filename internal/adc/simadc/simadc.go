/*
   ivtracer - software stand-in for the external SPI ADC.

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

   Wired through the same hal.ADC interface the real mcp3xxx driver
   implements, the way the original emulator exercised its channel code
   against a software test device instead of real hardware.
*/

package simadc

import "github.com/rcornwell/ivtracer/internal/hal"

// Source supplies the next count for a channel. Tests install one
// function per channel to script an entire sweep (Voc ramp, Isc decay,
// relay bounce, ...).
type Source func(readIndex int) uint16

// ADC is a deterministic test double: each channel advances its own
// read counter independently, since C5/C6/C8 read CH0 and CH1 at
// different cadences.
type ADC struct {
	voltage Source
	current Source
	vCount  int
	iCount  int
	clkDiv  int
}

// New builds a simulated ADC from per-channel sample sources.
func New(voltage, current Source) *ADC {
	return &ADC{voltage: voltage, current: current}
}

// Read implements hal.ADC.
func (a *ADC) Read(channel hal.Channel) (uint16, error) {
	switch channel {
	case hal.ChanVoltage:
		v := a.voltage(a.vCount)
		a.vCount++
		return v, nil
	case hal.ChanCurrent:
		v := a.current(a.iCount)
		a.iCount++
		return v, nil
	}
	return 0, nil
}

// SetClockDivisor implements hal.ADC; the simulator has no real SPI
// clock, so it just records the value for assertions.
func (a *ADC) SetClockDivisor(div int) error {
	a.clkDiv = div
	return nil
}

// ClockDivisor returns the last divisor set, for tests.
func (a *ADC) ClockDivisor() int {
	return a.clkDiv
}

// Constant returns a Source that always yields v - handy as a
// "not connected" open-circuit fixture.
func Constant(v uint16) Source {
	return func(int) uint16 { return v }
}

// Ramp returns a Source that steps linearly from start to end over n
// reads, then holds at end - used to script the Voc/Isc curve of
// scenario 1.
func Ramp(start, end int32, n int) Source {
	if n < 1 {
		n = 1
	}
	den := int32(n - 1)
	if den < 1 {
		den = 1
	}
	return func(i int) uint16 {
		if i >= n {
			i = n - 1
		}
		step := (end - start) * int32(i) / den
		v := start + step
		if v < 0 {
			v = 0
		}
		if v > 4095 {
			v = 4095
		}
		return uint16(v)
	}
}

// Sequence returns a Source that plays back an explicit list of
// counts, holding the last value once exhausted - used for the relay
// bounce scenario's exact voltage sequence.
func Sequence(values ...uint16) Source {
	return func(i int) uint16 {
		if i >= len(values) {
			i = len(values) - 1
		}
		if i < 0 {
			return 0
		}
		return values[i]
	}
}
