package sweep

import (
	"testing"

	"github.com/rcornwell/ivtracer/internal/adc/simadc"
	"github.com/rcornwell/ivtracer/internal/relay"
	"github.com/rcornwell/ivtracer/internal/relay/simrelay"
)

func TestStabilizeIscSettles(t *testing.T) {
	voltage := simadc.Ramp(0, 100, 10)
	current := simadc.Constant(500)
	a := simadc.New(voltage, current)
	r := simrelay.New(true)
	seq := relay.New(r)

	got := stabilizeIsc(a, seq, 52, 2, 2000)

	if got.pollTimeout {
		t.Fatalf("expected stabilization, got timeout")
	}
	if got.isc != 500 {
		t.Fatalf("isc = %d, want 500", got.isc)
	}
	if got.pollLoops != 3 {
		t.Fatalf("pollLoops = %d, want 3", got.pollLoops)
	}

	if _, ok := r.Last("ssr3"); !ok {
		t.Fatalf("expected ssr3 drive events during short/release sequence")
	}
}

func TestStabilizeIscTimesOut(t *testing.T) {
	voltage := simadc.Constant(100)
	// Current oscillates outside the stability band forever.
	current := func(i int) uint16 {
		if i%2 == 0 {
			return 500
		}
		return 800
	}
	a := simadc.New(voltage, current)
	seq := relay.New(simrelay.New(true))

	got := stabilizeIsc(a, seq, 52, 2, 50)

	if !got.pollTimeout {
		t.Fatalf("expected poll timeout for an oscillating source")
	}
	if got.pollLoops != 50 {
		t.Fatalf("pollLoops = %d, want 50", got.pollLoops)
	}
}

func TestStabilizeIscDebugEscapeHatch(t *testing.T) {
	voltage := simadc.Constant(40)
	current := simadc.Sequence(0, 0, 0, 123)
	a := simadc.New(voltage, current)
	seq := relay.New(simrelay.New(true))

	got := stabilizeIsc(a, seq, 10, 2, -1)

	if !got.pollTimeout {
		t.Fatalf("debug escape hatch always reports pollTimeout=true")
	}
	if got.isc != 123 {
		t.Fatalf("isc = %d, want 123", got.isc)
	}
}
