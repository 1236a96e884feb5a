package messenger

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

type loopback struct {
	r io.Reader
	w bytes.Buffer
}

func (l *loopback) Read(p []byte) (int, error)  { return l.r.Read(p) }
func (l *loopback) Write(p []byte) (int, error) { return l.w.Write(p) }

func TestReadLineTrimsTrailingCR(t *testing.T) {
	lb := &loopback{r: strings.NewReader("Ready\r\n")}
	m := New(lb)

	line, err := m.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "Ready" {
		t.Fatalf("line = %q, want %q", line, "Ready")
	}
}

func TestReadLineOverLengthIsDiscardedWithError(t *testing.T) {
	long := strings.Repeat("x", MaxLineBytes+10) + "\n"
	lb := &loopback{r: strings.NewReader(long)}
	m := New(lb)

	line, err := m.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "" {
		t.Fatalf("expected discarded line to read as empty, got %q", line)
	}
	if !strings.Contains(lb.w.String(), "ERROR:") {
		t.Fatalf("expected an ERROR: line for over-length input, got %q", lb.w.String())
	}
}

func TestParseVerbs(t *testing.T) {
	cases := []struct {
		line    string
		wantVerb Verb
		wantKey  string
		wantArgs int
	}{
		{"Ready", VerbReady, "", 0},
		{"Go", VerbGo, "", 0},
		{"Config CLK_DIV 3", VerbConfig, "CLK_DIV", 1},
		{"Config WRITE_EEPROM 44 1", VerbConfig, "WRITE_EEPROM", 2},
	}

	for _, c := range cases {
		got, err := Parse(c.line)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.line, err)
		}
		if got.Verb != c.wantVerb || got.Key != c.wantKey || len(got.Args) != c.wantArgs {
			t.Fatalf("Parse(%q) = %+v, want verb=%d key=%q nargs=%d", c.line, got, c.wantVerb, c.wantKey, c.wantArgs)
		}
	}
}

func TestParseRejectsUnknownVerb(t *testing.T) {
	if _, err := Parse("Frobnicate"); err == nil {
		t.Fatalf("expected an error for an unrecognized verb")
	}
}
