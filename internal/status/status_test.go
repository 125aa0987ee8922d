package status

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestRecorderKeepsMostRecent(t *testing.T) {
	r := NewRecorder(2)
	if _, ok := r.Last(); ok {
		t.Fatal("expected empty recorder")
	}

	r.Report("one")
	r.Report("two")
	r.Report("three")

	last, ok := r.Last()
	if !ok || last.Message != "three" {
		t.Fatalf("Last() = %+v, %v", last, ok)
	}
	recent := r.Recent()
	if len(recent) != 2 || recent[0].Message != "two" || recent[1].Message != "three" {
		t.Fatalf("Recent() = %+v", recent)
	}
}

func TestConsoleReporterWithoutTTY(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)
	r.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	r.Report("Header found!")
	if got := buf.String(); got != "03:04:05 Header found!\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	NewLogReporter(logger).Report("Window width: 800px")
	if !strings.Contains(buf.String(), `message="Window width: 800px"`) {
		t.Fatalf("log output = %q", buf.String())
	}
}

func TestMultiSkipsNil(t *testing.T) {
	a := NewRecorder(1)
	b := NewRecorder(1)
	Multi{a, nil, b}.Report("x")
	if e, _ := a.Last(); e.Message != "x" {
		t.Fatalf("a missed status")
	}
	if e, _ := b.Last(); e.Message != "x" {
		t.Fatalf("b missed status")
	}
}

func TestColorFor(t *testing.T) {
	cases := map[string]any{
		"Error: boom":              errorColor,
		"Invalid delta values!":    errorColor,
		"Target window not found!": warnColor,
		"Header found!":            successColor,
		"Looking for: a.com":       infoColor,
	}
	for msg, want := range cases {
		if got := colorFor(msg); got != want {
			t.Errorf("colorFor(%q) picked the wrong color", msg)
		}
	}
}
