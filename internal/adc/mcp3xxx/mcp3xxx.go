/*
   ivtracer - MCP3xxx-family 12-bit SPI ADC driver.

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

   Single-conversion, single-ended, MSB-first, 3-byte command framing:
   byte 0 carries the start bit, the upper nibble of byte 1 carries the
   single-ended/channel select; in the reply, bits 11:8 of the result
   ride in the low nibble of byte 1, bits 7:0 in byte 2.
*/

package mcp3xxx

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/rcornwell/ivtracer/internal/hal"
)

const (
	cmdStart      = 0x01 // Start bit.
	cmdSingleEnd  = 0x08 // Single-ended vs differential.
	cmdChannelSel = 0x00 // Channel bit shifted into place below.

	baseHz = 1_000_000 // Clock divisor 1 maps to 1MHz; higher divisors slow it down.
)

// ADC drives a real MCP3xxx-family chip over periph.io's spi.Port.
type ADC struct {
	mu   sync.Mutex
	port spi.PortCloser
	conn spi.Conn
	hz   physic.Frequency
}

// Open claims the given SPI port at the default (divisor 1) clock.
func Open(port spi.PortCloser) (*ADC, error) {
	a := &ADC{port: port, hz: baseHz * physic.Hertz}
	conn, err := port.Connect(a.hz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("mcp3xxx: connect: %w", err)
	}
	a.conn = conn
	return a, nil
}

// Read implements hal.ADC: one single-ended conversion on channel.
func (a *ADC) Read(channel hal.Channel) (uint16, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cmd := []byte{
		cmdStart,
		(cmdSingleEnd | (byte(channel) & 0x07)) << 4,
		0x00,
	}
	reply := make([]byte, len(cmd))
	if err := a.conn.Tx(cmd, reply); err != nil {
		return 0, fmt.Errorf("mcp3xxx: spi transaction: %w", err)
	}

	count := (uint16(reply[1]&0x0f) << 8) | uint16(reply[2])
	return count, nil
}

// SetClockDivisor reconfigures the SPI clock from the host's CLK_DIV
// config value, applied before the next sweep starts.
func (a *ADC) SetClockDivisor(div int) error {
	if div < 1 {
		div = 1
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	newHz := physic.Frequency(int64(baseHz)/int64(div)) * physic.Hertz
	conn, err := a.port.Connect(newHz, spi.Mode0, 8)
	if err != nil {
		return fmt.Errorf("mcp3xxx: reconnect at divisor %d: %w", div, err)
	}
	a.hz = newHz
	a.conn = conn
	return nil
}

// Close releases the underlying SPI port.
func (a *ADC) Close() error {
	return a.port.Close()
}
