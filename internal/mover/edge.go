package mover

import (
	"time"

	"github.com/1broseidon/zenmover/internal/platform"
)

// DefaultEdgeDelay is how long the cursor must be able to leave the top edge
// before an auto-maximize commits.
const DefaultEdgeDelay = 150 * time.Millisecond

// EdgeMonitor auto-maximizes the target when the cursor parks on the top edge
// of a display after a drag step.
//
// Callbacks are fire-and-forget: a maximize scheduled while the cursor was on
// the edge still lands if the user has moved away before it fires.
type EdgeMonitor struct {
	windows   *Windows
	locator   *Locator
	scheduler Scheduler
	delay     time.Duration
	threshold int
}

// NewEdgeMonitor creates a monitor. threshold is the distance below a
// display's top edge that still counts as "at the edge".
func NewEdgeMonitor(windows *Windows, locator *Locator, scheduler Scheduler, delay time.Duration, threshold int) *EdgeMonitor {
	if scheduler == nil {
		scheduler = TimerScheduler()
	}
	if delay < 0 {
		delay = 0
	}
	if threshold < 0 {
		threshold = 0
	}
	return &EdgeMonitor{
		windows:   windows,
		locator:   locator,
		scheduler: scheduler,
		delay:     delay,
		threshold: threshold,
	}
}

// Delay returns the debounce delay.
func (e *EdgeMonitor) Delay() time.Duration {
	return e.delay
}

// check inspects the cursor and schedules the follow-up. Must be called with
// s.mu held; scheduled callbacks take s.mu themselves.
func (e *EdgeMonitor) check(s *Session) {
	cursor, err := e.windows.Cursor()
	if err != nil {
		s.logger.Debug("edge check skipped", "error", err)
		return
	}
	displays, err := e.windows.Displays()
	if err != nil {
		s.logger.Debug("edge check skipped", "error", err)
		return
	}
	display, ok := displayAt(displays, cursor)
	if !ok {
		return
	}

	if cursor.Y > display.Bounds.Y+e.threshold {
		e.scheduler.AfterFunc(e.delay, func() {
			s.mu.Lock()
			s.maximizedHint = false
			s.mu.Unlock()
		})
		return
	}

	target, err := e.locator.Resolve()
	if err != nil {
		return
	}
	placement, err := e.windows.Placement(target)
	if err != nil {
		s.logger.Debug("edge check skipped", "error", err)
		return
	}
	if placement == platform.PlacementMaximized || s.maximizedHint {
		return
	}

	s.maximizedHint = true
	s.logger.Debug("cursor at top edge, scheduling maximize",
		"cursor_x", cursor.X, "cursor_y", cursor.Y, "display", display.Name, "delay", e.delay)

	e.scheduler.AfterFunc(e.delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		target, err := e.locator.Resolve()
		if err != nil {
			s.logger.Debug("auto-maximize skipped", "error", err)
			return
		}
		if err := e.windows.Show(target, platform.ShowMaximize); err != nil {
			s.fail(err)
			return
		}
		s.maximizedHint = true
	})
}

// displayAt returns the display containing p, falling back to the primary.
func displayAt(displays []platform.Display, p platform.Point) (platform.Display, bool) {
	for _, d := range displays {
		if platform.ContainsPoint(d.Bounds, p.X, p.Y) {
			return d, true
		}
	}
	return platform.PrimaryDisplay(displays)
}
