/*
   ivtracer - sweep orchestrator: ties C5-C8 together into one trace.

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

import (
	"github.com/rcornwell/ivtracer/internal/clock"
	"github.com/rcornwell/ivtracer/internal/hal"
	"github.com/rcornwell/ivtracer/internal/relay"
	"github.com/rcornwell/ivtracer/internal/store"
)

// Result is the full outcome of one sweep, everything the report
// emitter needs to render its output.
type Result struct {
	Voc              int16
	NoiseFloorMin    int16
	NoiseFloorMax    int16
	Connected        bool
	Isc              int16
	Points           []hal.Point
	VScale           int16
	IScale           int16
	MinManhattan     int16
	IscPollLoops     int
	IscPollTimeout   bool
	NumMeasurements  int
	NumRecordedPts   int
	ElapsedUsecs     uint32
	RawCapture       []hal.Point // unfiltered-capture diagnostic dump; Run leaves it nil
}

// Run executes one complete Voc -> Isc stabilization -> scale ->
// sweep-loop -> bleed trace.
func Run(adc hal.ADC, seq *relay.Sequencer, cfg store.Config) Result {
	start := clock.Micros()

	voc := sampleVoc(adc, VocPollingLoops)
	res := Result{
		Voc:           voc.voc,
		NoiseFloorMin: voc.noiseFloor,
		NoiseFloorMax: voc.noiseFloorMax,
		Connected:     voc.connected,
	}
	if !voc.connected {
		res.ElapsedUsecs = clock.Micros() - start
		return res
	}

	minIscEffective := cfg.MinIscADC + voc.noiseFloor

	iscRes := stabilizeIsc(adc, seq, minIscEffective, cfg.IscStableADC, cfg.MaxIscPoll)
	res.Isc = iscRes.isc
	res.IscPollLoops = iscRes.pollLoops
	res.IscPollTimeout = iscRes.pollTimeout

	sc := computeScales(res.Isc, res.Voc, cfg.AspectWidth, cfg.AspectHeight)
	res.VScale = sc.vScale
	res.IScale = sc.iScale

	maxIVPoints := cfg.MaxIVPoints
	if maxIVPoints > hal.MaxPoints {
		maxIVPoints = hal.MaxPoints
	}
	minManhattan := int16(0)
	if maxIVPoints > 0 {
		minManhattan = int16((int32(res.Isc)*int32(res.IScale) + int32(res.Voc)*int32(res.VScale)) / int32(maxIVPoints))
	}
	res.MinManhattan = minManhattan

	doneCh1 := doneCh1Threshold(voc.noiseFloor)
	loop := runLoop(adc, iscRes.point0, res.VScale, res.IScale, minManhattan, maxIVPoints, cfg.MaxDiscards, doneCh1, iscRes.pollTimeout)

	res.Points = loop.points
	res.NumRecordedPts = loop.ptNum
	res.NumMeasurements = loop.numMeas
	if loop.pollTimeout {
		res.IscPollTimeout = true
	}

	seq.ReturnToBleed()

	res.ElapsedUsecs = clock.Micros() - start
	return res
}
