/*
   ivtracer - open-circuit Voc/noise sampler (C5).

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

package sweep

import "github.com/rcornwell/ivtracer/internal/hal"

// VocPollingLoops is how many open-circuit samples sampleVoc collects
// before deriving Voc and the noise floor.
const VocPollingLoops = 400

// MinVocADC is MIN_VOC_ADC: below this, the source is declared "not
// connected."
const MinVocADC int16 = 10

// vocResult is the outcome of one open-circuit polling window.
type vocResult struct {
	voc           int16
	noiseFloor    int16
	noiseFloorMax int16
	connected     bool
}

// sampleVoc polls CH0/CH1 for VocPollingLoops iterations and derives
// Voc as the mode of the voltage samples and the noise floor as
// min/max of the current samples. When several voltages share the
// highest count, the highest of them is taken as Voc.
//
// An MCU-class implementation reuses its retained point arrays as a
// fixed-capacity open-addressed counting table purely to avoid a
// second RAM allocation; that constraint does not apply in a hosted
// process, so the count table here is a plain map bounded at
// hal.MaxPoints distinct voltages - the same "stop scanning once the
// table is full" behavior, without hand-rolling open addressing the
// standard library already gives us for free.
func sampleVoc(adc hal.ADC, loops int) vocResult {
	counts := make(map[int16]int, hal.MaxPoints)
	var noiseMin int16 = 0x7fff
	var noiseMax int16

	for i := 0; i < loops; i++ {
		vRaw, _ := adc.Read(hal.ChanVoltage)
		iRaw, _ := adc.Read(hal.ChanCurrent)
		v := int16(vRaw)
		cur := int16(iRaw)

		if cur < noiseMin {
			noiseMin = cur
		}
		if cur > noiseMax {
			noiseMax = cur
		}

		if _, ok := counts[v]; ok || len(counts) < hal.MaxPoints {
			counts[v]++
		}
		// Table full and v not yet present: stop admitting new
		// voltages, matching the MCU's bounded open-addressed table.
	}

	var mode int16
	var best int
	for v, c := range counts {
		if c > best || (c == best && v > mode) {
			mode = v
			best = c
		}
	}

	if noiseMin == 0x7fff {
		noiseMin = 0
	}

	res := vocResult{
		voc:           mode,
		noiseFloor:    noiseMin,
		noiseFloorMax: noiseMax,
		connected:     mode >= MinVocADC,
	}
	if !res.connected {
		res.voc = 0
	}
	return res
}

// doneCh1Threshold is done_ch1 = max(2*noise_floor, 20), the current
// level below which the sweep loop considers the curve's tail reached.
func doneCh1Threshold(noiseFloor int16) int16 {
	v := 2 * noiseFloor
	if v < 20 {
		v = 20
	}
	return v
}
