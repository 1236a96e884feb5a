/*
   ivtracer - relay sequencer: variant-independent short/release/bleed
   state machine.

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

   The several hardware variants (EMR/SSR x module/cell) are handled by
   unconditionally driving every logical line on every transition;
   unconnected lines on a given PCB are no-ops.
*/

package relay

import (
	"time"

	"github.com/rcornwell/ivtracer/internal/clock"
	"github.com/rcornwell/ivtracer/internal/hal"
)

// State names the sequencer's three states.
type State int

const (
	Idle State = iota
	ShortPresent
	Charging
)

// shortSettleDelay lets the short-across-capacitor switch settle
// before Isc is sampled; a no-op delay for EMR hardware but required
// for SSR hardware.
const shortSettleDelay = 20 * time.Millisecond

// Sequencer implements the charge cycle's four semantic operations
// (arm the short, release to the capacitor, return to bleed, and
// manual relay control) over an hal.Relay backend.
type Sequencer struct {
	relay hal.Relay
	state State
}

// New wraps relay in the semantic sequencer.
func New(relay hal.Relay) *Sequencer {
	return &Sequencer{relay: relay, state: Idle}
}

// State reports the current sequencer state, for diagnostics.
func (s *Sequencer) State() State {
	return s.state
}

// ArmShort presents a controlled short across the PV source: short
// path and short-across-capacitor on, bleed off, primary on. Settles
// for shortSettleDelay before returning.
func (s *Sequencer) ArmShort() {
	s.relay.SetSSR4(true) // capacitor bypass + bleed, cell variant: drains and shorts.
	s.relay.SetSSR3(true) // capacitor bypass, module variant.
	s.relay.SetPrimary(true)
	s.relay.SetSSR2(true) // complement of primary on SSR module variants.
	time.Sleep(shortSettleDelay)
	s.state = ShortPresent
}

// ReleaseToCapacitor turns off the short-across-capacitor switch so
// the capacitor begins charging through the PV circuit.
func (s *Sequencer) ReleaseToCapacitor() {
	s.relay.SetSSR3(false)
	s.relay.SetSSR4(false)
	s.state = Charging
}

// ReturnToBleed drains the capacitor and returns to the idle/bleed
// state between sweeps.
func (s *Sequencer) ReturnToBleed() {
	s.relay.SetPrimary(false)
	s.relay.SetSSR2(false)
	s.relay.SetSSR4(true)
	s.relay.SetSSR3(true)
	s.state = Idle
}

// SetPrimary / SetSecondary give direct manual control for bench
// testing; SetSecondary also drives SSR6 as its complement, the same
// drives the RELAY_STATE / SECOND_RELAY_STATE config keys perform.
func (s *Sequencer) SetPrimary(active bool)   { s.relay.SetPrimary(active) }
func (s *Sequencer) SetSecondary(active bool) { s.relay.SetSecondary(active); s.relay.SetSSR6(!active) }

// CalibrateSSRCurrent measures the SSR's own leakage/saturation
// current: drive the primary relay active with the short-across-
// capacitor switch active
// for calDuration, then average adc over the trailing readDuration,
// flagging saturation and excess noise.
func CalibrateSSRCurrent(seq *Sequencer, adc hal.ADC, calDuration, readDuration time.Duration) (avg float64, valid bool, saturated bool, noisy bool) {
	seq.relay.SetSSR3(true)
	seq.relay.SetSSR4(true)
	seq.relay.SetPrimary(true)
	defer seq.ReturnToBleed()

	start := clock.Micros()
	calUsecs := uint32(calDuration.Microseconds())
	readUsecs := uint32(readDuration.Microseconds())

	var sum, count float64
	var min, max uint16 = 0xffff, 0
	for clock.Micros()-start < calUsecs {
		v, err := adc.Read(hal.ChanCurrent)
		if err != nil {
			continue
		}
		if clock.Micros()-start >= calUsecs-readUsecs {
			sum += float64(v)
			count++
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	if count == 0 {
		return 0, false, false, false
	}
	avg = sum / count
	saturated = max >= 4095
	noisy = avg > 0 && float64(max-min) > avg/100
	valid = !saturated && !noisy
	return avg, valid, saturated, noisy
}
