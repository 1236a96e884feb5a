/*
   ivtracer - microsecond timebase and idle-poll ticker.

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

// Package clock stands in for the MCU's free-running hardware
// microsecond counter. The sweep loop only ever reads it; it never
// blocks on it, since the loop must never suspend mid-sample.
package clock

import "time"

var epoch = time.Now()

// Micros returns microseconds elapsed since process start, wrapping
// the same way a 32-bit hardware counter would.
func Micros() uint32 {
	return uint32(time.Since(epoch).Microseconds())
}

// IdleTicker delivers one tick per poll interval so a caller can count
// idle ticks toward a host-protocol timeout without ever blocking
// longer than one interval at a time - a stateless reader, since
// nothing here needs to be paused and resumed mid-sweep.
type IdleTicker struct {
	ticker *time.Ticker
}

// NewIdleTicker starts a ticker at the given poll interval.
func NewIdleTicker(interval time.Duration) *IdleTicker {
	return &IdleTicker{ticker: time.NewTicker(interval)}
}

// C exposes the underlying channel for use in a select.
func (t *IdleTicker) C() <-chan time.Time {
	return t.ticker.C
}

// Stop releases the ticker's resources.
func (t *IdleTicker) Stop() {
	t.ticker.Stop()
}
