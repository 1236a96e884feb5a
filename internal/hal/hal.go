/*
   ivtracer - hardware abstraction layer shared by the ADC driver,
   relay sequencer, and sweep loop.

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

package hal

import "fmt"

// ADC channel selects.
type Channel uint8

const (
	ChanVoltage Channel = 0
	ChanCurrent Channel = 1
)

// ADC is a single-conversion 12-bit external SPI ADC. A wire fault
// manifesting as a constant count is not an error; only a transport
// failure (bus contention, timeout) is.
type ADC interface {
	Read(channel Channel) (uint16, error)
	// SetClockDivisor configures the SPI clock divider from the host's
	// CLK_DIV config value prior to a sweep.
	SetClockDivisor(div int) error
}

// Relay drives the six logical digital control lines of the charge
// sequencer. Unconnected lines on a given PCB variant are no-ops; the
// sequencer drives all of them unconditionally.
type Relay interface {
	SetPrimary(active bool)
	SetSecondary(active bool)
	SetSSR2(active bool)
	SetSSR3(active bool)
	SetSSR4(active bool)
	SetSSR6(active bool)
	// SetPolarity updates the active-high/active-low resolution for
	// the primary/secondary pair without requiring a reboot, mirroring
	// a write to the persisted polarity address.
	SetPolarity(activeHigh bool)
}

// EnvSensor is the optional post-sweep environmental readout (C9
// supplement). Implementations return an error only when the sensor is
// physically unreachable; the report emitter turns that into a warning
// line, never a fatal path.
type EnvSensor interface {
	Name() string
	Read() (value float64, unit string, err error)
}

// Point is a retained (voltage, current) pair. Width is capped at
// int16 deliberately: the sweep loop's tight timing budget forbids
// widening to 32-bit arithmetic, and a narrow type turns an accidental
// widening into a compile error instead of a silent latency regression.
type Point struct {
	Voltage int16
	Current int16
}

// Compile-time-equivalent bounds, checked once at package init so a
// misconfigured build fails loudly instead of corrupting a sweep.
const (
	MaxPoints   = 275 // N_MAX: compile-time ceiling on retained points.
	MinPoints   = 10  // MAX_IV_POINTS >= 10.
	MaxWeightW1 = 5    // W1 in the CH1 interpolation.
	MaxWeightW2 = 3    // W2 in the CH1 interpolation.
)

func init() {
	if MinPoints < 10 {
		panic("hal: MAX_IV_POINTS must be >= 10")
	}
	if MaxWeightW1+MaxWeightW2 > 16 {
		panic("hal: W1+W2 must be <= 16")
	}
}

// CheckAspect validates ASPECT_WIDTH/ASPECT_HEIGHT bounds (both <= 8).
func CheckAspect(width, height int) error {
	if width < 1 || width > 8 || height < 1 || height > 8 {
		return fmt.Errorf("hal: aspect %dx%d out of range (want 1..8)", width, height)
	}
	return nil
}
