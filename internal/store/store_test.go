package store

import (
	"strings"
	"testing"
)

func TestApplyUnknownKey(t *testing.T) {
	s := New(nil, nil, nil)
	if _, err := s.Apply("NOT_A_KEY", nil); err == nil {
		t.Fatalf("expected an error for an unrecognized config key")
	}
}

func TestApplyWrongArgCount(t *testing.T) {
	s := New(nil, nil, nil)
	if _, err := s.Apply("CLK_DIV", nil); err == nil {
		t.Fatalf("expected an error for CLK_DIV with zero args")
	}
	if _, err := s.Apply("CLK_DIV", []float64{1, 2}); err == nil {
		t.Fatalf("expected an error for CLK_DIV with two args")
	}
}

func TestApplyTunablesUpdateConfig(t *testing.T) {
	s := New(nil, nil, nil)

	if _, err := s.Apply("MAX_DISCARDS", []float64{12}); err != nil {
		t.Fatalf("Apply MAX_DISCARDS: %v", err)
	}
	if s.Config().MaxDiscards != 12 {
		t.Fatalf("MaxDiscards = %d, want 12", s.Config().MaxDiscards)
	}

	if _, err := s.Apply("ASPECT_WIDTH", []float64{8}); err != nil {
		t.Fatalf("Apply ASPECT_WIDTH: %v", err)
	}
	if s.Config().AspectWidth != 8 {
		t.Fatalf("AspectWidth = %d, want 8", s.Config().AspectWidth)
	}
}

func TestApplyAspectRejectsOutOfRange(t *testing.T) {
	s := New(nil, nil, nil)
	if _, err := s.Apply("ASPECT_WIDTH", []float64{9}); err == nil {
		t.Fatalf("expected an error for an aspect ratio above 8")
	}
}

func TestApplyWriteAndDumpEEPROM(t *testing.T) {
	ee, _ := Open("", 64)
	s := New(ee, nil, nil)

	if _, err := s.Apply("WRITE_EEPROM", []float64{8, 2.5}); err != nil {
		t.Fatalf("Apply WRITE_EEPROM: %v", err)
	}
	dump, err := s.Apply("DUMP_EEPROM", nil)
	if err != nil {
		t.Fatalf("Apply DUMP_EEPROM: %v", err)
	}
	if !strings.Contains(dump, "8: 2.5000") {
		t.Fatalf("dump = %q, want it to report the value written to address 8", dump)
	}
}

func TestApplyRelayStateRequiresOneArg(t *testing.T) {
	s := New(nil, nil, nil)
	if _, err := s.Apply("RELAY_STATE", nil); err == nil {
		t.Fatalf("expected an error for RELAY_STATE with no args")
	}
}
