/*
   ivtracer - Isc stabilizer (C6).

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

   Precondition: Voc >= MinVocADC. Waits for three consecutive samples
   satisfying the stability predicate below.
*/

package sweep

import (
	"github.com/rcornwell/ivtracer/internal/hal"
	"github.com/rcornwell/ivtracer/internal/relay"
)

type iscSample struct {
	voltage int16
	current int16
}

type iscResult struct {
	isc         int16
	point0      hal.Point
	pollLoops   int
	pollTimeout bool
}

// stabilizeIsc actuates the short/release sequence and polls until
// the stability predicate holds, or MaxIscPoll is exhausted.
//
// A negative maxIscPoll is the documented debug escape hatch: poll
// until any non-zero CH1, forcing a timeout-like single-point sweep.
func stabilizeIsc(adc hal.ADC, seq *relay.Sequencer, minIscADCEffective int16, stableADC int16, maxIscPoll int) iscResult {
	seq.ArmShort()
	waitForSSRSettle(adc)
	seq.ReleaseToCapacitor()

	if maxIscPoll < 0 {
		return pollUntilNonZero(adc)
	}

	var prevPrev, prev, cur iscSample
	havePrevPrev, havePrev := false, false

	for loop := 1; loop <= maxIscPoll; loop++ {
		iRaw, _ := adc.Read(hal.ChanCurrent)
		vRaw, _ := adc.Read(hal.ChanVoltage)
		cur = iscSample{voltage: int16(vRaw), current: int16(iRaw)}

		if !havePrev {
			prev = cur
			havePrev = true
			continue
		}
		if !havePrevPrev {
			if cur.voltage < prev.voltage {
				prev = cur
				continue
			}
			prevPrev = prev
			prev = cur
			havePrevPrev = true
			continue
		}

		// Voltage strictly decreased from the previous sample:
		// overwrite prev (discard it) instead of shifting, preserving
		// prevPrev.
		if cur.voltage < prev.voltage {
			prev = cur
			continue
		}

		if stable(prevPrev, prev, cur, minIscADCEffective, stableADC) {
			return iscResult{
				isc:       prevPrev.current,
				point0:    hal.Point{Voltage: cur.voltage, Current: cur.current},
				pollLoops: loop,
			}
		}

		prevPrev = prev
		prev = cur
	}

	return iscResult{pollLoops: maxIscPoll, pollTimeout: true, point0: hal.Point{Voltage: cur.voltage, Current: cur.current}}
}

func stable(prevPrev, prev, cur iscSample, minIscADCEffective, stableADC int16) bool {
	if cur.current <= minIscADCEffective {
		return false
	}
	if !(prevPrev.voltage <= prev.voltage && prev.voltage <= cur.voltage) {
		return false
	}
	if !(prevPrev.current >= prev.current && prev.current >= cur.current) {
		return false
	}
	if abs16(prev.current-cur.current) > stableADC {
		return false
	}
	if abs16(prevPrev.current-prev.current) > stableADC {
		return false
	}
	return true
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

// waitForSSRSettle defers releasing the short-across-capacitor switch
// until the voltage has been seen unchanged across three consecutive
// reads, giving a slow SSR time to finish turning on. Harmless for EMR
// variants, which settle instantly.
func waitForSSRSettle(adc hal.ADC) {
	var last int16 = -1
	stableCount := 0
	for stableCount < 3 {
		vRaw, _ := adc.Read(hal.ChanVoltage)
		v := int16(vRaw)
		if v == last {
			stableCount++
		} else {
			stableCount = 1
			last = v
		}
	}
}

// pollUntilNonZero is the MAX_ISC_POLL<0 debug escape hatch: poll
// until any non-zero CH1 reading, forcing a single-point sweep.
func pollUntilNonZero(adc hal.ADC) iscResult {
	loop := 0
	for {
		loop++
		iRaw, _ := adc.Read(hal.ChanCurrent)
		vRaw, _ := adc.Read(hal.ChanVoltage)
		if iRaw != 0 {
			return iscResult{
				isc:         int16(iRaw),
				point0:      hal.Point{Voltage: int16(vRaw), Current: int16(iRaw)},
				pollLoops:   loop,
				pollTimeout: true,
			}
		}
		if loop > 1_000_000 {
			return iscResult{pollLoops: loop, pollTimeout: true}
		}
	}
}
