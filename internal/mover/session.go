package mover

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/zenmover/internal/platform"
)

// MaxDelta is the largest accepted move delta on either axis.
const MaxDelta = 1000

// Reporter receives human-readable status strings. Implementations must be
// safe to call from any goroutine.
type Reporter interface {
	Report(msg string)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(msg string)

// Report calls f(msg).
func (f ReporterFunc) Report(msg string) { f(msg) }

// MovableLookup returns the draggable element classes configured for a site.
type MovableLookup interface {
	Lookup(domain string) ([]string, error)
}

// ModifierReleaser releases any keyboard state held on behalf of a drag.
type ModifierReleaser interface {
	ReleaseAll()
}

// DragState is the state of a drag session.
type DragState int

const (
	StateIdle DragState = iota
	StateDragging
)

// String returns the string representation of the state
func (s DragState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// SessionConfig wires a session to its collaborators. Locator, Windows and
// Edge are required.
type SessionConfig struct {
	ID       string
	Locator  *Locator
	Windows  *Windows
	Edge     *EdgeMonitor
	Lookup   MovableLookup
	Releaser ModifierReleaser
	Reporter Reporter
	Logger   *slog.Logger
}

// Session is the drag/placement state machine for one connected agent.
type Session struct {
	id       string
	locator  *Locator
	windows  *Windows
	edge     *EdgeMonitor
	lookup   MovableLookup
	releaser ModifierReleaser
	reporter Reporter
	logger   *slog.Logger

	mu                  sync.Mutex
	state               DragState
	cursorPercentage    int
	headerWidth         int
	windowWidth         int
	restoredWindowWidth int
	maximizedHint       bool
}

// Snapshot is a copy of a session's scalars.
type Snapshot struct {
	State               DragState
	CursorPercentage    int
	HeaderWidth         int
	WindowWidth         int
	RestoredWindowWidth int
	MaximizedHint       bool
}

// NewSession creates an idle session.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.ID != "" {
		logger = logger.With("session", cfg.ID)
	}
	reporter := cfg.Reporter
	if reporter == nil {
		reporter = ReporterFunc(func(string) {})
	}
	return &Session{
		id:       cfg.ID,
		locator:  cfg.Locator,
		windows:  cfg.Windows,
		edge:     cfg.Edge,
		lookup:   cfg.Lookup,
		releaser: cfg.Releaser,
		reporter: reporter,
		logger:   logger,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns the current session scalars.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:               s.state,
		CursorPercentage:    s.cursorPercentage,
		HeaderWidth:         s.headerWidth,
		WindowWidth:         s.windowWidth,
		RestoredWindowWidth: s.restoredWindowWidth,
		MaximizedHint:       s.maximizedHint,
	}
}

// Handle decodes and applies one frame. It returns the reply frame, if any.
// Errors are logged and reported, never returned: a bad frame must not end
// the connection.
func (s *Session) Handle(frame string) (reply string, send bool) {
	msg, err := Decode(frame)
	if err != nil {
		s.logger.Warn("rejected frame", "error", err)
		s.reporter.Report(statusText(err))
		return "", false
	}

	reply, send, err = s.Dispatch(msg)
	if err != nil {
		s.logger.Warn("operation failed", "kind", msg.Kind, "error", err)
		s.reporter.Report(statusText(err))
	}
	return reply, send
}

// Dispatch applies a decoded message.
func (s *Session) Dispatch(msg Message) (reply string, send bool, err error) {
	switch msg.Kind {
	case KindGetMovableElement:
		reply, err = s.LookupMovable(msg.Domain)
		return reply, true, err
	case KindHeaderFound:
		s.reporter.Report("Header found!")
	case KindHeaderNotFound:
		s.reporter.Report("Header not found!")
	case KindHeaderWidth:
		s.SetHeaderWidth(msg.Value)
	case KindCursorPercentage:
		err = s.SetCursorPercentage(msg.Value)
	case KindWindowWidth:
		s.SetWindowWidth(msg.Value)
	case KindRestoredWindowWidth:
		s.SetRestoredWindowWidth(msg.Value)
	case KindDragStart:
		// Dragging begins with the first applied move.
	case KindDragEnd:
		err = s.EndDrag()
	case KindDoubleClick:
		err = s.ToggleMaximize()
	case KindMove:
		err = s.ApplyMoveDelta(msg.DX, msg.DY)
	default:
		err = fmt.Errorf("%w: unhandled kind %d", ErrProtocol, msg.Kind)
	}
	return "", false, err
}

// LookupMovable answers a getMovableElement request.
func (s *Session) LookupMovable(domain string) (string, error) {
	s.reporter.Report("Looking for: " + domain)
	if s.lookup == nil {
		return MovableElementReply(nil), nil
	}
	classes, err := s.lookup.Lookup(domain)
	if err != nil {
		// Still answer so the page agent falls back to header detection.
		return MovableElementReply(nil), err
	}
	return MovableElementReply(classes), nil
}

// SetCursorPercentage stores where, horizontally, the user grabbed the
// window. Values outside [0,100] are rejected and the previous value kept.
func (s *Session) SetCursorPercentage(p int) error {
	if p < 0 || p > 100 {
		return fmt.Errorf("%w: cursor percentage %d outside [0,100]", ErrProtocol, p)
	}
	s.mu.Lock()
	s.cursorPercentage = p
	s.mu.Unlock()
	return nil
}

// SetHeaderWidth stores the advisory header width.
func (s *Session) SetHeaderWidth(w int) {
	s.mu.Lock()
	s.headerWidth = w
	s.mu.Unlock()
	s.reporter.Report(fmt.Sprintf("Header width: %dpx", w))
}

// SetWindowWidth stores the advisory window width.
func (s *Session) SetWindowWidth(w int) {
	s.mu.Lock()
	s.windowWidth = w
	s.mu.Unlock()
	s.reporter.Report(fmt.Sprintf("Window width: %dpx", w))
}

// SetRestoredWindowWidth stores the advisory restored window width.
func (s *Session) SetRestoredWindowWidth(w int) {
	s.mu.Lock()
	s.restoredWindowWidth = w
	s.mu.Unlock()
	s.reporter.Report(fmt.Sprintf("Restored window width: %dpx", w))
}

// ApplyMoveDelta moves the target by (dx, dy). A maximized target is first
// restored and placed back under the cursor at the stored cursor percentage.
func (s *Session) ApplyMoveDelta(dx, dy int) error {
	if dx < -MaxDelta || dx > MaxDelta || dy < -MaxDelta || dy > MaxDelta {
		return fmt.Errorf("%w: (%d,%d)", ErrDeltaOutOfRange, dx, dy)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.locator.Resolve()
	if err != nil {
		return err
	}

	placement, err := s.windows.Placement(target)
	if err != nil {
		return err
	}

	if placement == platform.PlacementMaximized {
		err = s.restoreUnderCursor(target)
	} else {
		err = s.moveBy(target, dx, dy)
	}
	if err != nil {
		return err
	}

	if s.state == StateIdle {
		s.logger.Debug("drag started")
	}
	s.state = StateDragging

	if s.edge != nil {
		s.edge.check(s)
	}
	return nil
}

func (s *Session) moveBy(target Target, dx, dy int) error {
	rect, err := s.windows.Rect(target)
	if err != nil {
		return err
	}
	return s.windows.Move(target, rect.Left+dx, rect.Top+dy)
}

// restoreUnderCursor restores a maximized target so the point the user
// grabbed, cursorPercentage of the restored width, sits under the cursor.
// The window top keeps its distance from the cursor.
func (s *Session) restoreUnderCursor(target Target) error {
	cursor, err := s.windows.Cursor()
	if err != nil {
		return err
	}
	maximized, err := s.windows.Rect(target)
	if err != nil {
		return err
	}

	if err := s.windows.Show(target, platform.ShowRestore); err != nil {
		return err
	}
	s.maximizedHint = false

	restored, err := s.windows.Rect(target)
	if err != nil {
		return err
	}

	grabOffset := restored.Width() * s.cursorPercentage / 100
	topOffset := cursor.Y - maximized.Top
	newX := cursor.X - grabOffset
	newY := cursor.Y - topOffset

	s.logger.Debug("restored from maximized",
		"cursor_x", cursor.X, "cursor_y", cursor.Y,
		"width", restored.Width(), "percentage", s.cursorPercentage,
		"x", newX, "y", newY)

	return s.windows.Move(target, newX, newY)
}

// EndDrag finishes a drag and pulls the title bar back on screen if it was
// left above the top of the desktop.
func (s *Session) EndDrag() error {
	if s.releaser != nil {
		s.releaser.ReleaseAll()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateDragging {
		s.logger.Debug("drag ended")
	}
	s.state = StateIdle

	target, err := s.locator.Resolve()
	if err != nil {
		return err
	}
	return s.snapToTop(target)
}

// ToggleMaximize restores a maximized target (with the top-edge snap) or
// maximizes a normal one.
func (s *Session) ToggleMaximize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.locator.Resolve()
	if err != nil {
		return err
	}

	placement, err := s.windows.Placement(target)
	if err != nil {
		return err
	}

	if placement == platform.PlacementMaximized {
		if err := s.windows.Show(target, platform.ShowRestore); err != nil {
			return err
		}
		s.maximizedHint = false
		return s.snapToTop(target)
	}

	if err := s.windows.Show(target, platform.ShowMaximize); err != nil {
		return err
	}
	s.maximizedHint = true
	return nil
}

// snapToTop moves the target down to top=0 when its top is negative. Must be
// called with s.mu held.
func (s *Session) snapToTop(target Target) error {
	rect, err := s.windows.Rect(target)
	if err != nil {
		return err
	}
	if rect.Top >= 0 || s.maximizedHint {
		return nil
	}
	if err := s.windows.Move(target, rect.Left, 0); err != nil {
		return err
	}
	s.reporter.Report("Window adjusted to top edge")
	return nil
}

// fail logs and reports an error raised outside the message path.
func (s *Session) fail(err error) {
	if err == nil || errors.Is(err, ErrTargetNotFound) {
		return
	}
	s.logger.Warn("background operation failed", "error", err)
	s.reporter.Report(statusText(err))
}
