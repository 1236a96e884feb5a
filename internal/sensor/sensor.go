/*
   ivtracer - optional environmental sensor readout.

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

   A module sweep doesn't require ambient readings, but a complete
   bench tool reports them when available: temperature affects Voc
   enough that an operator comparing two traces wants to know it
   wasn't left out deliberately.
*/

package sensor

import "github.com/rcornwell/ivtracer/internal/hal"

// None is the EnvSensor used when no hardware is wired up; its Read
// always fails with a "sensor not wired" error.
type None struct{ name string }

// NewNone names a no-op sensor, e.g. for a config switch left off.
func NewNone(name string) None { return None{name: name} }

func (n None) Name() string { return n.name }

func (n None) Read() (float64, string, error) {
	return 0, "", errNotWired
}

var errNotWired = notWiredError{}

type notWiredError struct{}

func (notWiredError) Error() string { return "sensor not wired" }

var _ hal.EnvSensor = None{}
