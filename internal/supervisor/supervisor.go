/*
   ivtracer - supervisor/state machine (C10).

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

   The state machine is one goroutine selecting over a done channel and
   a single inbound-event channel, default falling through to "no
   message pending" - the same shape as the master dispatch loop this
   firmware's host-facing core used, just with Boot/Handshake/Idle/Sweep
   states in place of a CPU's run/halt distinction.
*/

package supervisor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rcornwell/ivtracer/internal/hal"
	"github.com/rcornwell/ivtracer/internal/messenger"
	"github.com/rcornwell/ivtracer/internal/relay"
	"github.com/rcornwell/ivtracer/internal/report"
	"github.com/rcornwell/ivtracer/internal/store"
	"github.com/rcornwell/ivtracer/internal/sweep"
)

// State names the supervisor's lifecycle states.
type State int

const (
	Boot State = iota
	Handshake
	Idle
	Sweep
)

func (s State) String() string {
	switch s {
	case Boot:
		return "Boot"
	case Handshake:
		return "Handshake"
	case Idle:
		return "Idle"
	case Sweep:
		return "Sweep"
	}
	return "Unknown"
}

// hostEvent is one parsed inbound line, fed in from the messenger's
// read goroutine.
type hostEvent struct {
	msg messenger.Inbound
	err error
}

// Supervisor drives the Boot -> Handshake -> Idle -> Sweep -> Idle
// lifecycle against a Messenger, a Store, an ADC, and a relay
// Sequencer.
type Supervisor struct {
	msgr  *messenger.Messenger
	st    *store.Store
	adc   hal.ADC
	seq   *relay.Sequencer
	log   *slog.Logger
	state State

	done chan struct{}
	wg   sync.WaitGroup
}

// New builds a Supervisor in the Boot state.
func New(msgr *messenger.Messenger, st *store.Store, adc hal.ADC, seq *relay.Sequencer, log *slog.Logger) *Supervisor {
	if log == nil {
		log = slog.Default()
	}
	return &Supervisor{msgr: msgr, st: st, adc: adc, seq: seq, log: log, state: Boot, done: make(chan struct{})}
}

// State reports the current lifecycle state, for diagnostics.
func (s *Supervisor) State() State { return s.state }

// Run drives the event loop until Stop is called or the messenger's
// line reader errors out (e.g. the serial port closed).
func (s *Supervisor) Run() {
	s.wg.Add(1)
	defer s.wg.Done()

	events := make(chan hostEvent)
	go s.readLines(events)

	s.state = Boot
	s.msgr.Status("Ready")
	s.state = Handshake

	for {
		select {
		case <-s.done:
			s.log.Info("supervisor shutdown")
			return
		case ev := <-events:
			if ev.err != nil {
				s.log.Error("messenger read failed", "err", ev.err)
				return
			}
			s.dispatch(ev.msg)
		default:
			// No message pending; nothing to do between polls.
			time.Sleep(time.Millisecond)
		}
	}
}

// Stop requests the event loop exit and waits for it to do so.
func (s *Supervisor) Stop() {
	close(s.done)
	s.wg.Wait()
}

func (s *Supervisor) readLines(events chan<- hostEvent) {
	for {
		line, err := s.msgr.ReadLine()
		if err != nil {
			events <- hostEvent{err: err}
			return
		}
		if line == "" {
			continue // a discarded over-length line already reported its own error.
		}
		msg, perr := messenger.Parse(line)
		if perr != nil {
			s.msgr.Errorf("%v", perr)
			continue
		}
		events <- hostEvent{msg: msg}
	}
}

func (s *Supervisor) dispatch(msg messenger.Inbound) {
	switch msg.Verb {
	case messenger.VerbReady:
		if s.state == Handshake {
			s.state = Idle
			s.msgr.Status("Ready")
		}

	case messenger.VerbConfig:
		if s.state == Sweep {
			s.msgr.Errorf("Config not accepted mid-sweep")
			s.msgr.Status("Config not processed")
			return
		}
		result, err := s.st.Apply(msg.Key, msg.Args)
		if err != nil {
			s.msgr.Errorf("%v", err)
			s.msgr.Status("Config not processed")
			return
		}
		if result != "" {
			for _, line := range splitLines(result) {
				s.msgr.Status(line)
			}
		}
		s.msgr.Status("Config processed")

	case messenger.VerbGo:
		if s.state != Idle {
			s.msgr.Errorf("Go not accepted in state %s", s.state)
			return
		}
		s.state = Sweep
		s.msgr.Status("Waiting for sweep to complete")
		s.runSweep()
		s.state = Idle

	default:
		s.msgr.Errorf("unrecognized message")
	}
}

func (s *Supervisor) runSweep() {
	cfg := s.st.Config()
	res := sweep.Run(s.adc, s.seq, cfg)

	if res.IscPollTimeout {
		s.msgr.Warnf("Polling for stable Isc timed out")
	}

	report.Emit(s.msgr, report.Sweep{
		Voc:             res.Voc,
		NoiseFloorMin:   res.NoiseFloorMin,
		NoiseFloorMax:   res.NoiseFloorMax,
		Isc:             res.Isc,
		Points:          res.Points,
		VScale:          res.VScale,
		IScale:          res.IScale,
		MinManhattan:    res.MinManhattan,
		IscPollLoops:    res.IscPollLoops,
		IscPollTimeout:  res.IscPollTimeout,
		NumMeasurements: res.NumMeasurements,
		NumRecordedPts:  res.NumRecordedPts,
		ElapsedUsecs:    res.ElapsedUsecs,
	}, report.Options{})
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
