/*
   ivtracer - report emitter (C9).

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

   Line order is fixed and must not be reordered: optional sensor
   readings, noise floor, Isc, one line per retained point, Voc,
   optional raw dump, optional SSR calibration line, diagnostic
   tallies, then the terminator.
*/

package report

import (
	"fmt"

	"github.com/rcornwell/ivtracer/internal/hal"
)

// Sink receives one formatted report line at a time. A real Messenger
// writes each line to the serial port; tests can collect lines into a
// slice.
type Sink interface {
	Line(s string)
}

// SensorReading is one environmental sensor's post-sweep value.
type SensorReading struct {
	Name  string
	Value float64
	Unit  string
	Err   error
}

// SSRCalibration is the optional DO_SSR_CURR_CAL outcome (section
// 4.11), surfaced as a dedicated line rather than swallowed.
type SSRCalibration struct {
	Avg      float64
	Valid    bool
	Saturated bool
	Noisy    bool
}

// Options gates the optional lines of section 4.9/9.
type Options struct {
	Sensors    []SensorReading
	RawCapture []hal.Point // unfiltered-capture diagnostic dump, nil to omit
	SSRCal     *SSRCalibration
}

// Sweep is the subset of sweep.Result the emitter needs; kept as its
// own type so internal/report has no import-cycle dependence on
// internal/sweep.
type Sweep struct {
	Voc             int16
	NoiseFloorMin   int16
	NoiseFloorMax   int16
	Isc             int16
	Points          []hal.Point
	VScale          int16
	IScale          int16
	MinManhattan    int16
	IscPollLoops    int
	IscPollTimeout  bool
	NumMeasurements int
	NumRecordedPts  int
	ElapsedUsecs    uint32
}

// Emit writes the full deterministic report for one sweep to sink.
func Emit(sink Sink, res Sweep, opt Options) {
	for _, s := range opt.Sensors {
		if s.Err != nil {
			sink.Line(fmt.Sprintf("WARNING: sensor %s unavailable: %v", s.Name, s.Err))
			continue
		}
		sink.Line(fmt.Sprintf("Sensor %s:%.2f%s", s.Name, s.Value, s.Unit))
	}

	sink.Line(fmt.Sprintf("CH1 ADC noise floor (min/max):%d/%d", res.NoiseFloorMin, res.NoiseFloorMax))
	sink.Line(fmt.Sprintf("Isc CH0:0 CH1:%d", res.Isc))

	for i, p := range res.Points {
		sink.Line(fmt.Sprintf("%d CH0:%d CH1:%d", i, p.Voltage, p.Current))
	}

	sink.Line(fmt.Sprintf("Voc CH0:%d CH1:%d", res.Voc, res.NoiseFloorMin))

	if opt.RawCapture != nil {
		for i, p := range opt.RawCapture {
			sink.Line(fmt.Sprintf("RAW %d CH0:%d CH1:%d", i, p.Voltage, p.Current))
		}
	}

	if opt.SSRCal != nil {
		sink.Line(fmt.Sprintf("SSR cal avg:%.2f valid:%t saturated:%t noisy:%t",
			opt.SSRCal.Avg, opt.SSRCal.Valid, opt.SSRCal.Saturated, opt.SSRCal.Noisy))
	}

	perReading := uint32(0)
	if res.NumMeasurements > 0 {
		perReading = res.ElapsedUsecs / uint32(res.NumMeasurements)
	}

	sink.Line(fmt.Sprintf("Isc poll loops:%d", res.IscPollLoops))
	sink.Line(fmt.Sprintf("Isc poll timeout:%t", res.IscPollTimeout))
	sink.Line(fmt.Sprintf("Number of measurements:%d", res.NumMeasurements))
	sink.Line(fmt.Sprintf("Number of recorded points:%d", res.NumRecordedPts))
	sink.Line(fmt.Sprintf("i_scale:%d", res.IScale))
	sink.Line(fmt.Sprintf("v_scale:%d", res.VScale))
	sink.Line(fmt.Sprintf("min_manhattan_distance:%d", res.MinManhattan))
	sink.Line(fmt.Sprintf("Elapsed usecs:%d", res.ElapsedUsecs))
	sink.Line(fmt.Sprintf("Time (usecs) per i/v reading:%d", perReading))

	sink.Line("Output complete")
}
