package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/rcornwell/ivtracer/internal/hal"
)

type collector struct {
	lines []string
}

func (c *collector) Line(s string) { c.lines = append(c.lines, s) }

func TestEmitLineOrder(t *testing.T) {
	c := &collector{}
	res := Sweep{
		Voc:             412,
		NoiseFloorMin:   2,
		NoiseFloorMax:   5,
		Isc:             3000,
		Points:          []hal.Point{{Voltage: 0, Current: 3000}, {Voltage: 10, Current: 2900}},
		VScale:          8,
		IScale:          8,
		MinManhattan:    3,
		IscPollLoops:    12,
		NumMeasurements: 100,
		NumRecordedPts:  2,
		ElapsedUsecs:    5000,
	}
	opt := Options{
		Sensors: []SensorReading{
			{Name: "temp", Value: 25.4, Unit: "C"},
			{Name: "irradiance", Err: errors.New("bus timeout")},
		},
		SSRCal: &SSRCalibration{Avg: 1.2, Valid: true},
	}

	Emit(c, res, opt)

	want := []string{
		"Sensor temp:25.40C",
		"WARNING: sensor irradiance unavailable: bus timeout",
		"CH1 ADC noise floor (min/max):2/5",
		"Isc CH0:0 CH1:3000",
		"0 CH0:0 CH1:3000",
		"1 CH0:10 CH1:2900",
		"Voc CH0:412 CH1:2",
	}
	for i, w := range want {
		if c.lines[i] != w {
			t.Fatalf("line %d = %q, want %q", i, c.lines[i], w)
		}
	}

	last := c.lines[len(c.lines)-1]
	if last != "Output complete" {
		t.Fatalf("last line = %q, want terminator", last)
	}
}

func TestEmitReportsIscPollTimeout(t *testing.T) {
	c := &collector{}
	Emit(c, Sweep{Points: []hal.Point{}, IscPollTimeout: true}, Options{})

	found := false
	for _, l := range c.lines {
		if l == "Isc poll timeout:true" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an Isc poll timeout diagnostic line, got: %v", c.lines)
	}
}

func TestEmitOmitsOptionalSectionsWhenAbsent(t *testing.T) {
	c := &collector{}
	Emit(c, Sweep{Points: []hal.Point{}}, Options{})

	for _, l := range c.lines {
		if strings.HasPrefix(l, "Sensor ") || strings.HasPrefix(l, "WARNING: sensor") ||
			strings.HasPrefix(l, "RAW ") || strings.HasPrefix(l, "SSR cal") {
			t.Fatalf("unexpected optional line %q with no options set", l)
		}
		if l == "Output complete" {
			return
		}
	}
	t.Fatalf("terminator line missing: %v", c.lines)
}
