/*
   ivtracer - host messenger (C4): line-oriented serial protocol.

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

   Lines are assembled byte-by-byte with a blocking read: ReadLine
   waits on the underlying reader until a newline arrives and applies
   no idle timeout, so a partially received line is held, not
   abandoned, however long the host pauses.
*/

package messenger

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rcornwell/ivtracer/internal/report"
)

// MaxLineBytes is the inbound line cap; anything longer is discarded
// and resynchronized against the next newline.
const MaxLineBytes = 35

// DefaultIdleTimeoutTicks is the MSG_TIMER_TIMEOUT value stored on
// each Messenger. ReadLine does not consult it: a partially received
// line is never abandoned on a timeout.
const DefaultIdleTimeoutTicks = 50

// Verb names the recognized inbound message kinds.
type Verb int

const (
	VerbUnknown Verb = iota
	VerbReady
	VerbConfig
	VerbGo
)

// Inbound is one parsed host request.
type Inbound struct {
	Verb Verb
	Key  string
	Args []float64
}

// Messenger owns the serial line and assembles/parses inbound lines,
// emits outbound ones. It is deliberately single-threaded and
// blocking.
type Messenger struct {
	r             *bufio.Reader
	w             io.Writer
	idleTimeout   int
	overLengthBuf []byte
}

// New wraps rw (typically a go.bug.st/serial.Port) as a line-oriented
// messenger.
func New(rw io.ReadWriter) *Messenger {
	return &Messenger{
		r:           bufio.NewReader(rw),
		w:           rw,
		idleTimeout: DefaultIdleTimeoutTicks,
	}
}

// Line implements report.Sink: every report line is one outbound
// payload/status line.
func (m *Messenger) Line(s string) {
	m.writeLine(s)
}

func (m *Messenger) writeLine(s string) {
	_, _ = io.WriteString(m.w, s+"\n")
}

// Status emits an outbound status line (Ready, Config processed,
// Waiting ...).
func (m *Messenger) Status(s string) { m.writeLine(s) }

// Errorf emits an ERROR: diagnostic line.
func (m *Messenger) Errorf(format string, args ...any) {
	m.writeLine("ERROR: " + fmt.Sprintf(format, args...))
}

// Warnf emits a WARNING: diagnostic line.
func (m *Messenger) Warnf(format string, args ...any) {
	m.writeLine("WARNING: " + fmt.Sprintf(format, args...))
}

var _ report.Sink = (*Messenger)(nil)

// ReadLine blocks until one full line is assembled, the inbound line
// cap is exceeded (in which case it emits an error and discards the
// line), or the underlying reader errors (EOF, closed port).
//
// Over-length handling: an over-length line emits an error and is
// discarded - bytes are still drained up to the next newline so the
// stream resynchronizes instead of treating every subsequent byte as
// part of the same runaway line.
func (m *Messenger) ReadLine() (string, error) {
	var buf []byte
	overLength := false

	for {
		b, err := m.r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == '\n' {
			break
		}
		if b == '\r' {
			continue // tolerate a trailing CR.
		}
		if len(buf) >= MaxLineBytes {
			overLength = true
			continue
		}
		buf = append(buf, b)
	}

	if overLength {
		m.Errorf("line exceeds %d bytes, discarded", MaxLineBytes)
		return "", nil
	}

	return string(buf), nil
}

// Parse interprets one raw line into an Inbound message, or an error
// for a line that isn't one of the three recognized verbs.
func Parse(line string) (Inbound, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Inbound{}, fmt.Errorf("empty line")
	}

	switch strings.ToUpper(fields[0]) {
	case "READY":
		return Inbound{Verb: VerbReady}, nil
	case "GO":
		return Inbound{Verb: VerbGo}, nil
	case "CONFIG":
		if len(fields) < 2 {
			return Inbound{}, fmt.Errorf("Config requires a key")
		}
		args := make([]float64, 0, len(fields)-2)
		for _, f := range fields[2:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return Inbound{}, fmt.Errorf("Config argument %q is not numeric", f)
			}
			args = append(args, v)
		}
		return Inbound{Verb: VerbConfig, Key: fields[1], Args: args}, nil
	default:
		return Inbound{}, fmt.Errorf("unrecognized verb %q", fields[0])
	}
}
