package sweep

import (
	"testing"

	"github.com/rcornwell/ivtracer/internal/hal"
)

// scriptedReader feeds back-to-back scripted samples to runLoop,
// independent of simadc so loop.go can be exercised in isolation.
type scriptedReader struct {
	voltage []uint16
	current []uint16
	vi, ii  int
}

func (s *scriptedReader) Read(channel hal.Channel) (uint16, error) {
	switch channel {
	case hal.ChanVoltage:
		v := s.voltage[s.vi]
		if s.vi < len(s.voltage)-1 {
			s.vi++
		}
		return v, nil
	case hal.ChanCurrent:
		v := s.current[s.ii]
		if s.ii < len(s.current)-1 {
			s.ii++
		}
		return v, nil
	}
	return 0, nil
}

func TestRunLoopMonotonicVoltage(t *testing.T) {
	r := &scriptedReader{
		voltage: []uint16{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		current: []uint16{500, 480, 460, 440, 420, 400, 10, 8, 6, 4},
	}
	isc0 := hal.Point{Voltage: 0, Current: 520}

	res := runLoop(r, isc0, 1, 1, 5, hal.MaxPoints, 8, 20, false)

	for i := 1; i < len(res.points); i++ {
		if res.points[i].Voltage < res.points[i-1].Voltage {
			t.Fatalf("voltage not monotonic at %d: %v", i, res.points)
		}
	}
	if res.ptNum < 1 || res.ptNum > hal.MaxPoints {
		t.Fatalf("ptNum out of bounds: %d", res.ptNum)
	}
	if res.numMeas > MaxIvMeas {
		t.Fatalf("numMeas %d exceeds MaxIvMeas", res.numMeas)
	}
}

func TestRunLoopVoltageDecreaseCorrection(t *testing.T) {
	// A relay-bounce dip: voltage rises, dips once (bounce), then
	// resumes rising. The dip must rewind pt_num rather than be
	// recorded as a non-monotonic point.
	r := &scriptedReader{
		voltage: []uint16{10, 20, 30, 15, 40, 50, 2, 1},
		current: []uint16{500, 480, 460, 470, 440, 420, 10, 5},
	}
	isc0 := hal.Point{Voltage: 0, Current: 520}

	res := runLoop(r, isc0, 1, 1, 1, hal.MaxPoints, 8, 20, false)

	for i := 1; i < len(res.points); i++ {
		if res.points[i].Voltage < res.points[i-1].Voltage {
			t.Fatalf("voltage-decrease correction failed to preserve monotonicity: %v", res.points)
		}
	}
}

func TestRunLoopRespectsMaxIVPoints(t *testing.T) {
	n := 300
	voltage := make([]uint16, n)
	current := make([]uint16, n)
	for i := range voltage {
		voltage[i] = uint16(i)
		current[i] = uint16(500 - i)
		if i > 500 {
			current[i] = 0
		}
	}
	r := &scriptedReader{voltage: voltage, current: current}
	isc0 := hal.Point{Voltage: 0, Current: 520}

	res := runLoop(r, isc0, 1, 1, 1, 20, 8, 0, false)

	if res.ptNum > 20 {
		t.Fatalf("ptNum %d exceeds MAX_IV_POINTS=20", res.ptNum)
	}
}

func TestRunLoopStopsAfterFirstIterationOnIscPollTimeout(t *testing.T) {
	// A module that would otherwise sweep many points: if the Isc
	// stage never settled, the loop must still take exactly one
	// measurement and retain only the Isc point.
	r := &scriptedReader{
		voltage: []uint16{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		current: []uint16{500, 480, 460, 440, 420, 400, 10, 8, 6, 4},
	}
	isc0 := hal.Point{Voltage: 0, Current: 520}

	res := runLoop(r, isc0, 1, 1, 5, hal.MaxPoints, 8, 20, true)

	if res.numMeas != 1 {
		t.Fatalf("numMeas = %d, want 1 after an Isc poll timeout", res.numMeas)
	}
	if res.ptNum != 1 {
		t.Fatalf("ptNum = %d, want 1 after an Isc poll timeout", res.ptNum)
	}
	if !res.pollTimeout {
		t.Fatalf("expected pollTimeout to propagate from the Isc stage")
	}
}
