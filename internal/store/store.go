/*
   ivtracer - configuration store and command dispatch.

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

   Recognized keys and their registration table are modeled on the
   model-registration design of the original config file parser: each
   tunable registers itself with a name, an argument count, and an
   apply function, and the host-facing dispatcher just walks the table
   instead of special-casing every key inline.
*/

package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rcornwell/ivtracer/internal/hal"
)

// Config holds the sweep tunables. All are mutable only through a
// Config message and survive across sweeps until overwritten.
type Config struct {
	ClkDiv       int
	MaxIVPoints  int
	MinIscADC    int16
	MaxIscPoll   int
	IscStableADC int16
	MaxDiscards  int
	AspectHeight int
	AspectWidth  int
}

// Default returns the power-on tunables. These are implementation
// defaults beyond the 1..8 aspect bound and MAX_IV_POINTS >= 10.
func Default() Config {
	return Config{
		ClkDiv:       2,
		MaxIVPoints:  hal.MaxPoints,
		MinIscADC:    50,
		MaxIscPoll:   2000,
		IscStableADC: 2,
		MaxDiscards:  8,
		AspectHeight: 3,
		AspectWidth:  4,
	}
}

type keyDef struct {
	argc  int
	apply func(*Store, []float64) error
}

var registry = map[string]keyDef{}

// registerKey should be called from init() functions, mirroring the
// original parser's RegisterModel/RegisterOption convention.
func registerKey(name string, argc int, fn func(*Store, []float64) error) {
	registry[strings.ToUpper(name)] = keyDef{argc: argc, apply: fn}
}

func init() {
	registerKey("CLK_DIV", 1, func(s *Store, v []float64) error {
		s.cfg.ClkDiv = int(v[0])
		if s.adc != nil {
			return s.adc.SetClockDivisor(s.cfg.ClkDiv)
		}
		return nil
	})
	registerKey("MAX_IV_POINTS", 1, func(s *Store, v []float64) error {
		n := int(v[0])
		if n > hal.MaxPoints {
			n = hal.MaxPoints
		}
		if n < hal.MinPoints {
			return fmt.Errorf("MAX_IV_POINTS must be >= %d", hal.MinPoints)
		}
		s.cfg.MaxIVPoints = n
		return nil
	})
	registerKey("MIN_ISC_ADC", 1, func(s *Store, v []float64) error {
		s.cfg.MinIscADC = int16(v[0])
		return nil
	})
	registerKey("MAX_ISC_POLL", 1, func(s *Store, v []float64) error {
		s.cfg.MaxIscPoll = int(v[0])
		return nil
	})
	registerKey("ISC_STABLE_ADC", 1, func(s *Store, v []float64) error {
		s.cfg.IscStableADC = int16(v[0])
		return nil
	})
	registerKey("MAX_DISCARDS", 1, func(s *Store, v []float64) error {
		s.cfg.MaxDiscards = int(v[0])
		return nil
	})
	registerKey("ASPECT_HEIGHT", 1, func(s *Store, v []float64) error {
		h := int(v[0])
		if err := hal.CheckAspect(s.cfg.AspectWidth, h); err != nil {
			return err
		}
		s.cfg.AspectHeight = h
		return nil
	})
	registerKey("ASPECT_WIDTH", 1, func(s *Store, v []float64) error {
		w := int(v[0])
		if err := hal.CheckAspect(w, s.cfg.AspectHeight); err != nil {
			return err
		}
		s.cfg.AspectWidth = w
		return nil
	})
}

// Store is the config/EEPROM backed key-value surface the host
// messenger dispatches Config messages against.
type Store struct {
	cfg    Config
	ee     *EEPROM
	adc    hal.ADC
	relay  hal.Relay
	ssrCal func() (avg float64, valid bool, satFlag bool, noiseFlag bool)
}

// New creates a Store wired to the given EEPROM, ADC, and relay
// lines. adc/relay may be nil in tests that never touch a
// hardware-facing key.
func New(ee *EEPROM, adc hal.ADC, relay hal.Relay) *Store {
	return &Store{cfg: Default(), ee: ee, adc: adc, relay: relay}
}

// SetSSRCalibrator injects the DO_SSR_CURR_CAL routine (internal/relay
// owns the actual sequencing; the store only dispatches to it).
func (s *Store) SetSSRCalibrator(fn func() (avg float64, valid bool, satFlag bool, noiseFlag bool)) {
	s.ssrCal = fn
}

// Config returns a snapshot of the current tunables.
func (s *Store) Config() Config {
	return s.cfg
}

// Apply processes one "Config <KEY> [v1 [v2]]" message. It returns a
// result string for DUMP_EEPROM-style multi-line replies, or an error
// describing a transient input problem (unknown key, wrong argument
// count) which the caller reports as "ERROR: ..." and never applies.
func (s *Store) Apply(key string, args []float64) (string, error) {
	key = strings.ToUpper(strings.TrimSpace(key))

	switch key {
	case "WRITE_EEPROM":
		if len(args) != 2 {
			return "", fmt.Errorf("expected 2 args for config type %s, got %d", key, len(args))
		}
		addr := int(args[0])
		val := float32(args[1])
		if err := s.ee.WriteFloat(addr, val); err != nil {
			return "", err
		}
		if addr == PolarityOffset {
			s.relayPolarityChanged(val != 0)
		}
		return "", nil

	case "DUMP_EEPROM":
		if len(args) != 0 {
			return "", fmt.Errorf("expected 0 args for config type %s, got %d", key, len(args))
		}
		return s.ee.Dump(), nil

	case "RELAY_STATE":
		if len(args) != 1 {
			return "", fmt.Errorf("expected 1 args for config type %s, got %d", key, len(args))
		}
		if s.relay != nil {
			s.relay.SetPrimary(args[0] != 0)
		}
		return "", nil

	case "SECOND_RELAY_STATE":
		if len(args) != 1 {
			return "", fmt.Errorf("expected 1 args for config type %s, got %d", key, len(args))
		}
		if s.relay != nil {
			on := args[0] != 0
			s.relay.SetSecondary(on)
			s.relay.SetSSR6(!on)
		}
		return "", nil

	case "DO_SSR_CURR_CAL":
		if len(args) != 0 {
			return "", fmt.Errorf("expected 0 args for config type %s, got %d", key, len(args))
		}
		if s.ssrCal == nil {
			return "", errors.New("SSR calibration not available")
		}
		avg, valid, sat, noisy := s.ssrCal()
		status := "ok"
		if !valid {
			status = "invalid"
		}
		return fmt.Sprintf("SSR cal avg=%.2f status=%s saturated=%t noisy=%t", avg, status, sat, noisy), nil
	}

	def, ok := registry[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %s", key)
	}
	if len(args) != def.argc {
		return "", fmt.Errorf("expected %d args for config type %s, got %d", def.argc, key, len(args))
	}
	if err := def.apply(s, args); err != nil {
		return "", err
	}
	return "", nil
}

// relayPolarityChanged is called the instant WRITE_EEPROM touches the
// persisted polarity address, so the live relay polarity updates
// without waiting for a reboot.
func (s *Store) relayPolarityChanged(activeHigh bool) {
	if s.relay == nil {
		return
	}
	s.relay.SetPolarity(activeHigh)
}
