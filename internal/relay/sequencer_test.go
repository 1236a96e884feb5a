package relay

import (
	"testing"
	"time"

	"github.com/rcornwell/ivtracer/internal/adc/simadc"
	"github.com/rcornwell/ivtracer/internal/relay/simrelay"
)

func TestSequencerStateTransitions(t *testing.T) {
	r := simrelay.New(true)
	seq := New(r)

	if seq.State() != Idle {
		t.Fatalf("new sequencer state = %v, want Idle", seq.State())
	}

	seq.ArmShort()
	if seq.State() != ShortPresent {
		t.Fatalf("state after ArmShort = %v, want ShortPresent", seq.State())
	}
	if ev, ok := r.Last("primary"); !ok || !ev.Active {
		t.Fatalf("expected primary driven active during ArmShort")
	}

	seq.ReleaseToCapacitor()
	if seq.State() != Charging {
		t.Fatalf("state after ReleaseToCapacitor = %v, want Charging", seq.State())
	}
	if ev, ok := r.Last("ssr3"); !ok || ev.Active {
		t.Fatalf("expected ssr3 driven inactive during ReleaseToCapacitor")
	}

	seq.ReturnToBleed()
	if seq.State() != Idle {
		t.Fatalf("state after ReturnToBleed = %v, want Idle", seq.State())
	}
	if ev, ok := r.Last("primary"); !ok || ev.Active {
		t.Fatalf("expected primary driven inactive during ReturnToBleed")
	}
}

func TestSequencerSecondaryDrivesSSR6Complement(t *testing.T) {
	r := simrelay.New(true)
	seq := New(r)

	seq.SetSecondary(true)
	if ev, ok := r.Last("ssr6"); !ok || ev.Active {
		t.Fatalf("expected ssr6 to be the complement of an active secondary")
	}

	seq.SetSecondary(false)
	if ev, ok := r.Last("ssr6"); !ok || !ev.Active {
		t.Fatalf("expected ssr6 to be the complement of an inactive secondary")
	}
}

func TestCalibrateSSRCurrentDetectsSaturation(t *testing.T) {
	r := simrelay.New(true)
	seq := New(r)
	a := simadc.New(simadc.Constant(0), simadc.Constant(4095))

	avg, valid, saturated, _ := CalibrateSSRCurrent(seq, a, 2*time.Millisecond, time.Millisecond)

	if !saturated {
		t.Fatalf("expected saturation for a constant max-scale reading")
	}
	if valid {
		t.Fatalf("a saturated calibration must not be reported valid")
	}
	if avg != 4095 {
		t.Fatalf("avg = %v, want 4095", avg)
	}
	if seq.State() != Idle {
		t.Fatalf("CalibrateSSRCurrent must return to bleed, state = %v", seq.State())
	}
}
