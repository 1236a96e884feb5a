/*
 * ivsim - bench console: drives the simulated backend through an
 * interactive line prompt, for protocol bring-up without hardware.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 * Console commands mirror the wire protocol directly (Ready, Config
 * KEY v1 v2, Go) so an operator can rehearse a host implementation
 * against a scripted PV source before touching real hardware.
 */

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/peterh/liner"

	"github.com/rcornwell/ivtracer/internal/adc/simadc"
	"github.com/rcornwell/ivtracer/internal/messenger"
	"github.com/rcornwell/ivtracer/internal/relay"
	"github.com/rcornwell/ivtracer/internal/relay/simrelay"
	"github.com/rcornwell/ivtracer/internal/report"
	"github.com/rcornwell/ivtracer/internal/store"
	"github.com/rcornwell/ivtracer/internal/sweep"
)

var completions = []string{"ready", "go", "config", "dump", "help", "quit"}

type stdoutSink struct{}

func (stdoutSink) Line(s string) { fmt.Println(s) }

func main() {
	// A module-shaped PV curve: rises from 0 toward Voc, current
	// decays from Isc toward 0 past the knee.
	voltage := simadc.Ramp(0, 620, 300)
	current := simadc.Ramp(3400, 0, 300)
	a := simadc.New(voltage, current)
	r := simrelay.New(true)
	seq := relay.New(r)
	st := store.New(nil, a, r)

	console(a, seq, st)
}

func console(a *simadc.ADC, seq *relay.Sequencer, st *store.Store) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(in string) (out []string) {
		for _, c := range completions {
			if len(in) < len(c) && c[:len(in)] == in {
				out = append(out, c)
			}
		}
		return out
	})

	fmt.Println("ivtracer bench console - type 'help' for commands")

	for {
		cmd, err := line.Prompt("ivsim> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			slog.Error("error reading line: " + err.Error())
			return
		}
		line.AppendHistory(cmd)

		if quit := runCommand(cmd, a, seq, st); quit {
			return
		}
	}
}

func runCommand(cmd string, a *simadc.ADC, seq *relay.Sequencer, st *store.Store) (quit bool) {
	fields := strings.Fields(cmd)
	verb := ""
	if len(fields) > 0 {
		verb = strings.ToLower(fields[0])
	}

	switch verb {
	case "quit", "exit":
		return true
	case "help":
		fmt.Println("ready | go | config KEY [v1 [v2]] | dump | quit")
		return false
	case "ready":
		fmt.Println("Ready")
		return false
	case "config":
		msg, err := messenger.Parse(cmd)
		if err != nil {
			fmt.Println("ERROR:", err)
			return false
		}
		result, err := st.Apply(msg.Key, msg.Args)
		if err != nil {
			fmt.Println("ERROR:", err)
			fmt.Println("Config not processed")
			return false
		}
		if result != "" {
			fmt.Println(result)
		}
		fmt.Println("Config processed")
		return false
	case "go":
		res := sweep.Run(a, seq, st.Config())
		if res.IscPollTimeout {
			fmt.Println("WARNING: Polling for stable Isc timed out")
		}
		report.Emit(stdoutSink{}, report.Sweep{
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
		return false
	case "dump":
		fmt.Printf("%+v\n", st.Config())
		return false
	}
	fmt.Println("unrecognized command, try 'help'")
	return false
}
