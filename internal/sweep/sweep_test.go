package sweep

import (
	"testing"

	"github.com/rcornwell/ivtracer/internal/adc/simadc"
	"github.com/rcornwell/ivtracer/internal/hal"
	"github.com/rcornwell/ivtracer/internal/relay"
	"github.com/rcornwell/ivtracer/internal/relay/simrelay"
	"github.com/rcornwell/ivtracer/internal/store"
)

func TestRunOpenCircuit(t *testing.T) {
	// CH0 never rises above MinVocADC: no module connected.
	a := simadc.New(simadc.Constant(3), simadc.Constant(0))
	seq := relay.New(simrelay.New(true))
	cfg := store.Default()

	res := Run(a, seq, cfg)

	if res.Connected {
		t.Fatalf("expected not connected for a sub-threshold CH0")
	}
	if res.Voc != 0 {
		t.Fatalf("Voc = %d, want 0 when not connected", res.Voc)
	}
	if len(res.Points) != 0 {
		t.Fatalf("expected no sweep points taken when open-circuit, got %d", len(res.Points))
	}
}

func TestRunNominalModuleSweep(t *testing.T) {
	voltage := simadc.Ramp(0, 500, 400)
	current := simadc.Constant(3000)
	a := simadc.New(voltage, current)
	seq := relay.New(simrelay.New(true))
	cfg := store.Default()
	cfg.MaxIscPoll = 2000

	res := Run(a, seq, cfg)

	if !res.Connected {
		t.Fatalf("expected a connected module with a rising CH0 ramp")
	}
	if res.VScale < 1 || res.IScale < 1 || res.VScale+res.IScale > 16 {
		t.Fatalf("invalid scales v=%d i=%d", res.VScale, res.IScale)
	}
	if res.NumRecordedPts > hal.MaxPoints {
		t.Fatalf("recorded %d points, exceeds hal.MaxPoints", res.NumRecordedPts)
	}
	for i := 1; i < len(res.Points); i++ {
		if res.Points[i].Voltage < res.Points[i-1].Voltage {
			t.Fatalf("points not voltage-monotonic: %v", res.Points)
		}
	}
}

func TestRunStopsAfterFirstPointWhenIscNeverStabilizes(t *testing.T) {
	// CH1 alternates 100/50 inside the open-circuit window and then
	// holds at 50, which never exceeds MIN_ISC_ADC plus the noise floor
	// (50+50), so the stability predicate never holds: MaxIscPoll is
	// exhausted, and the sweep loop must then terminate after its first
	// iteration.
	voltage := simadc.Ramp(0, 500, 400)
	current := simadc.Sequence(100, 50, 100, 50, 100, 50)
	a := simadc.New(voltage, current)
	seq := relay.New(simrelay.New(true))
	cfg := store.Default()
	cfg.MaxIscPoll = 5

	res := Run(a, seq, cfg)

	if !res.IscPollTimeout {
		t.Fatalf("expected IscPollTimeout after MaxIscPoll is exhausted")
	}
	if res.NumRecordedPts != 1 {
		t.Fatalf("NumRecordedPts = %d, want 1 after an Isc poll timeout", res.NumRecordedPts)
	}
}

func TestRunRespectsConfiguredMaxDiscards(t *testing.T) {
	voltage := simadc.Ramp(0, 500, 400)
	current := simadc.Constant(3000)
	a := simadc.New(voltage, current)
	seq := relay.New(simrelay.New(true))
	cfg := store.Default()
	cfg.MaxDiscards = 1

	res := Run(a, seq, cfg)

	if !res.Connected {
		t.Fatalf("expected a connected module")
	}
	if res.NumRecordedPts < 1 {
		t.Fatalf("expected at least one recorded point")
	}
}
