package store

import (
	"strings"
	"testing"
)

func TestEEPROMUnprogrammedDefaults(t *testing.T) {
	ee, err := Open("", 64)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ee.Programmed() {
		t.Fatalf("a fresh in-memory EEPROM must start unprogrammed")
	}
	if ee.PolarityActiveHigh() {
		t.Fatalf("unprogrammed store must default to active-low polarity")
	}
	if got := ee.Dump(); got != "EEPROM unprogrammed" {
		t.Fatalf("Dump() = %q, want the unprogrammed sentinel", got)
	}
}

func TestEEPROMWriteFloatStampsMagicAndCount(t *testing.T) {
	ee, _ := Open("", 64)

	if err := ee.WriteFloat(8, 3.25); err != nil {
		t.Fatalf("WriteFloat: %v", err)
	}
	if !ee.Programmed() {
		t.Fatalf("first WriteFloat must stamp the magic sentinel")
	}
	if got := ee.readFloat(CountOffset); got != 1 {
		t.Fatalf("count = %v, want 1 after one write", got)
	}

	if err := ee.WriteFloat(12, 1.5); err != nil {
		t.Fatalf("WriteFloat: %v", err)
	}
	if got := ee.readFloat(CountOffset); got != 2 {
		t.Fatalf("count = %v, want 2 after two writes", got)
	}
}

func TestEEPROMPolarityRoundTrip(t *testing.T) {
	ee, _ := Open("", 64)

	if err := ee.WriteFloat(PolarityOffset, 1); err != nil {
		t.Fatalf("WriteFloat: %v", err)
	}
	if !ee.PolarityActiveHigh() {
		t.Fatalf("expected active-high after writing a nonzero polarity value")
	}

	if err := ee.WriteFloat(PolarityOffset, 0); err != nil {
		t.Fatalf("WriteFloat: %v", err)
	}
	if ee.PolarityActiveHigh() {
		t.Fatalf("expected active-low after writing a zero polarity value")
	}
}

func TestEEPROMDumpReportsEveryWrittenAddress(t *testing.T) {
	ee, _ := Open("", 64)

	if err := ee.WriteFloat(8, 3.25); err != nil {
		t.Fatalf("WriteFloat: %v", err)
	}
	if err := ee.WriteFloat(20, 3.14159); err != nil {
		t.Fatalf("WriteFloat: %v", err)
	}

	dump := ee.Dump()
	if !strings.Contains(dump, "8: 3.2500") {
		t.Fatalf("dump = %q, missing address 8's value", dump)
	}
	if !strings.Contains(dump, "20: 3.1416") {
		t.Fatalf("dump = %q, missing address 20's value", dump)
	}
}

func TestEEPROMWriteOutOfRange(t *testing.T) {
	ee, _ := Open("", 64)
	if err := ee.WriteFloat(10_000, 1); err == nil {
		t.Fatalf("expected an error writing past the end of the store")
	}
}
