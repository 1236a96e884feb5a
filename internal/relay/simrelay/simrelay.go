/*
   ivtracer - recording relay backend for tests.

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

package simrelay

// Event records one drive call, for asserting sequencing in sweep
// tests (e.g. a relay-bounce voltage-decrease scenario).
type Event struct {
	Line   string
	Active bool
}

// Relay is an in-memory hal.Relay that just logs every drive call.
type Relay struct {
	Events     []Event
	activeHigh bool
}

// New returns an empty recording relay.
func New(activeHigh bool) *Relay {
	return &Relay{activeHigh: activeHigh}
}

func (r *Relay) record(line string, active bool) {
	r.Events = append(r.Events, Event{Line: line, Active: active})
}

func (r *Relay) SetPrimary(active bool)   { r.record("primary", active) }
func (r *Relay) SetSecondary(active bool) { r.record("secondary", active) }
func (r *Relay) SetSSR2(active bool)      { r.record("ssr2", active) }
func (r *Relay) SetSSR3(active bool)      { r.record("ssr3", active) }
func (r *Relay) SetSSR4(active bool)      { r.record("ssr4", active) }
func (r *Relay) SetSSR6(active bool)      { r.record("ssr6", active) }

// SetPolarity records the polarity resolution in effect.
func (r *Relay) SetPolarity(activeHigh bool) {
	r.activeHigh = activeHigh
}

// ActiveHigh reports the polarity currently in effect.
func (r *Relay) ActiveHigh() bool {
	return r.activeHigh
}

// Last returns the most recent event for line, and whether one exists.
func (r *Relay) Last(line string) (Event, bool) {
	for i := len(r.Events) - 1; i >= 0; i-- {
		if r.Events[i].Line == line {
			return r.Events[i], true
		}
	}
	return Event{}, false
}
