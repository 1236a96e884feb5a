/*
   ivtracer - I2C temperature sensor for the optional environmental
   readout.

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

   Register layout matches the common TMP102-family 12-bit-in-16
   temperature register: two bytes, big-endian, upper 12 bits are a
   signed count in 0.0625 C units.
*/

package i2ctemp

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
)

const (
	tempRegister  = 0x00
	conversionLSB = 0.0625
)

// Sensor reads ambient temperature from a TMP102-family device over
// I2C, serializing the write-then-read sequence the way a bus shared
// with other devices requires.
type Sensor struct {
	name string
	addr uint16
	bus  i2c.Bus

	mu    sync.Mutex
	delay time.Duration
}

// New wraps bus at addr. delay is the conversion settle time to honor
// between selecting the register and reading it back; 0 uses a safe
// default.
func New(name string, bus i2c.Bus, addr uint16, delay time.Duration) *Sensor {
	if delay <= 0 {
		delay = 30 * time.Millisecond
	}
	return &Sensor{name: name, addr: addr, bus: bus, delay: delay}
}

func (s *Sensor) Name() string { return s.name }

// Read implements hal.EnvSensor.
func (s *Sensor) Read() (float64, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.bus.Tx(s.addr, []byte{tempRegister}, nil); err != nil {
		return 0, "", fmt.Errorf("i2ctemp: select register: %w", err)
	}
	time.Sleep(s.delay)

	buf := make([]byte, 2)
	if err := s.bus.Tx(s.addr, nil, buf); err != nil {
		return 0, "", fmt.Errorf("i2ctemp: read: %w", err)
	}

	raw := int16(uint16(buf[0])<<8 | uint16(buf[1]))
	raw >>= 4
	celsius := float64(raw) * conversionLSB

	return celsius, "C", nil
}
