// Package status delivers the human-readable status strings produced by
// mover sessions to the log, the terminal and the IPC control plane.
package status

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Reporter receives status strings. It matches mover.Reporter.
type Reporter interface {
	Report(msg string)
}

// LogReporter writes every status to a structured logger at info level.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a reporter backed by logger.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(msg string) {
	r.logger.Info("status", "message", msg)
}

var (
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgCyan)
	dimColor     = color.New(color.Faint)
)

// ConsoleReporter prints statuses to a terminal, colored by severity.
type ConsoleReporter struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

// NewConsoleReporter creates a console reporter writing to out. Color is
// disabled when out is not a terminal.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	colored := false
	if f, ok := out.(*os.File); ok {
		colored = term.IsTerminal(int(f.Fd()))
	}
	for _, c := range []*color.Color{errorColor, warnColor, successColor, infoColor, dimColor} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return &ConsoleReporter{out: out, now: time.Now}
}

func (r *ConsoleReporter) Report(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp := dimColor.Sprint(r.now().Format("15:04:05"))
	fmt.Fprintf(r.out, "%s %s\n", stamp, colorFor(msg).Sprint(msg))
}

func colorFor(msg string) *color.Color {
	switch {
	case strings.HasPrefix(msg, "Error"), strings.HasPrefix(msg, "Invalid"):
		return errorColor
	case strings.Contains(msg, "not found"):
		return warnColor
	case strings.HasSuffix(msg, "found!"), strings.HasPrefix(msg, "Window adjusted"):
		return successColor
	default:
		return infoColor
	}
}

// Entry is one recorded status.
type Entry struct {
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Recorder keeps the most recent statuses for the control plane.
type Recorder struct {
	mu      sync.Mutex
	size    int
	entries []Entry
	now     func() time.Time
}

// NewRecorder keeps up to size entries. size <= 0 keeps one.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = 1
	}
	return &Recorder{size: size, now: time.Now}
}

func (r *Recorder) Report(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Message: msg, Time: r.now()})
	if len(r.entries) > r.size {
		r.entries = r.entries[len(r.entries)-r.size:]
	}
}

// Last returns the most recent entry.
func (r *Recorder) Last() (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return Entry{}, false
	}
	return r.entries[len(r.entries)-1], true
}

// Recent returns the recorded entries, oldest first.
func (r *Recorder) Recent() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Multi fans a status out to several reporters.
type Multi []Reporter

func (m Multi) Report(msg string) {
	for _, r := range m {
		if r != nil {
			r.Report(msg)
		}
	}
}
