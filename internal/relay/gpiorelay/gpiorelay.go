/*
   ivtracer - periph.io GPIO-backed relay lines.

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

   Polarities: primary/secondary track the persisted polarity bit,
   SSR2 is fixed active-high, SSR3/SSR4/SSR6 are fixed active-low.
*/

package gpiorelay

import "periph.io/x/conn/v3/gpio"

// Relay drives the six logical lines over real GPIO pins.
type Relay struct {
	primary    gpio.PinOut
	secondary  gpio.PinOut
	ssr2       gpio.PinOut
	ssr3       gpio.PinOut
	ssr4       gpio.PinOut
	ssr6       gpio.PinOut
	activeHigh bool
}

// Pins bundles the six logical lines to their physical GPIO pins. A
// nil pin is a harmless no-op, since a given PCB variant may not wire
// every logical line.
type Pins struct {
	Primary, Secondary, SSR2, SSR3, SSR4, SSR6 gpio.PinOut
}

// New builds a Relay over the given pins with the given initial
// polarity (loaded from the persisted store at boot).
func New(pins Pins, activeHigh bool) *Relay {
	return &Relay{
		primary:    pins.Primary,
		secondary:  pins.Secondary,
		ssr2:       pins.SSR2,
		ssr3:       pins.SSR3,
		ssr4:       pins.SSR4,
		ssr6:       pins.SSR6,
		activeHigh: activeHigh,
	}
}

func drive(pin gpio.PinOut, level gpio.Level) {
	if pin == nil {
		return
	}
	_ = pin.Out(level)
}

func (r *Relay) polarized(active bool) gpio.Level {
	if r.activeHigh {
		return gpio.Level(active)
	}
	return gpio.Level(!active)
}

func (r *Relay) SetPrimary(active bool)   { drive(r.primary, r.polarized(active)) }
func (r *Relay) SetSecondary(active bool) { drive(r.secondary, r.polarized(active)) }

// SetSSR2 is fixed active-high.
func (r *Relay) SetSSR2(active bool) { drive(r.ssr2, gpio.Level(active)) }

// SetSSR3, SetSSR4, SetSSR6 are fixed active-low.
func (r *Relay) SetSSR3(active bool) { drive(r.ssr3, gpio.Level(!active)) }
func (r *Relay) SetSSR4(active bool) { drive(r.ssr4, gpio.Level(!active)) }
func (r *Relay) SetSSR6(active bool) { drive(r.ssr6, gpio.Level(!active)) }

// SetPolarity updates the primary/secondary polarity resolution live,
// without a reboot, mirroring a write to the persisted polarity
// address.
func (r *Relay) SetPolarity(activeHigh bool) {
	r.activeHigh = activeHigh
}
