/*
   ivtracer - sweep loop (C8), the algorithmic core.

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

   Every value touched in runLoop's hot path is int16: the performance
   contract caps per-iteration cost at two ADC reads plus strictly
   16-bit arithmetic, with no floating point and no call that doesn't
   inline.
*/

package sweep

import "github.com/rcornwell/ivtracer/internal/hal"

const (
	interpW1   int16 = 5
	interpW2   int16 = 3
	interpHalf int16 = (interpW1 + interpW2) / 2

	// MaxIvMeas bounds the sweep loop's total sample count as a
	// fallback timeout: a module that never settles to doneCh1 must
	// still yield a report instead of looping forever.
	MaxIvMeas = 1_000_000
)

// loopResult is the outcome of the sweep loop proper.
type loopResult struct {
	points      []hal.Point
	ptNum       int
	numMeas     int
	numDiscards int
	pollTimeout bool
}

// loopReader is the two-channel read the hot path needs each
// iteration; kept as an interface value rather than an hal.ADC so a
// test can feed scripted samples without channel-read overhead.
type loopReader interface {
	Read(channel hal.Channel) (uint16, error)
}

// runLoop traces the I-V curve from an already-stabilized Isc point at
// retained[0] down to the module's cutoff current. If iscPollTimeout
// is set, the Isc stabilizer never settled: the loop takes exactly one
// measurement and terminates without retaining any further points.
func runLoop(adc loopReader, isc0 hal.Point, vScale, iScale int16, minManhattan int16, maxIvPoints int, maxDiscards int, doneCh1 int16, iscPollTimeout bool) loopResult {
	retained := make([]hal.Point, maxIvPoints)
	retained[0] = isc0

	ptNum := 1
	updatePrevCh1 := false
	numDiscarded := 0
	numMeas := 1
	prevI := isc0.Current
	pollTimeout := iscPollTimeout

	for ; numMeas < MaxIvMeas; numMeas++ {
		iRaw, _ := adc.Read(hal.ChanCurrent)
		vRaw, _ := adc.Read(hal.ChanVoltage)
		curV := int16(vRaw)
		curI := int16(iRaw)

		if updatePrevCh1 {
			prev := retained[ptNum-1].Current
			retained[ptNum-1].Current = (prev*interpW1 + curI*interpW2 + interpHalf) / (interpW1 + interpW2)
		}

		retained[ptNum].Voltage = curV

		deltaV := curV - retained[ptNum-1].Voltage
		deltaI := retained[ptNum-1].Current - curI
		deltaIRecent := prevI - curI
		prevI = curI

		if curI < doneCh1 && deltaIRecent < 3 {
			break
		}
		if pollTimeout {
			break
		}

		if curV < retained[ptNum-1].Voltage {
			for ptNum > 1 && retained[ptNum-1].Voltage > curV {
				ptNum--
			}
			retained[ptNum-1] = hal.Point{Voltage: curV, Current: curI}
			updatePrevCh1 = true
			continue
		}

		d := deltaV*vScale + deltaI*iScale
		if d >= minManhattan || numDiscarded >= maxDiscards {
			ptNum++
			updatePrevCh1 = true
			numDiscarded = 0
			if ptNum >= maxIvPoints {
				break
			}
		} else {
			updatePrevCh1 = false
			numDiscarded++
		}
	}

	if numMeas >= MaxIvMeas {
		pollTimeout = true
	}

	if updatePrevCh1 && ptNum > 0 {
		retained[ptNum-1].Current = prevI
	}

	return loopResult{
		points:      retained[:ptNum],
		ptNum:       ptNum,
		numMeas:     numMeas,
		numDiscards: numDiscarded,
		pollTimeout: pollTimeout,
	}
}
