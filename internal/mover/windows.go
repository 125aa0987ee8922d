package mover

import (
	"fmt"
	"sync/atomic"

	"github.com/1broseidon/zenmover/internal/platform"
)

// Geometry is a window rectangle in screen coordinates.
type Geometry struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Width returns Right-Left.
func (g Geometry) Width() int { return g.Right - g.Left }

// Height returns Bottom-Top.
func (g Geometry) Height() int { return g.Bottom - g.Top }

func geometryFromRect(r platform.Rect) Geometry {
	return Geometry{
		Left:   r.X,
		Top:    r.Y,
		Right:  r.X + r.Width,
		Bottom: r.Y + r.Height,
	}
}

// Windows is the geometry accessor shared by every session of a daemon. It
// carries the moverBlocked kill-switch: while blocked, show-state changes are
// silently skipped.
type Windows struct {
	backend platform.Backend
	blocked atomic.Bool
}

// NewWindows wraps a backend.
func NewWindows(backend platform.Backend) *Windows {
	return &Windows{backend: backend}
}

// SetBlocked turns the kill-switch on or off.
func (w *Windows) SetBlocked(blocked bool) {
	w.blocked.Store(blocked)
}

// Blocked reports whether show-state changes are suppressed.
func (w *Windows) Blocked() bool {
	return w.blocked.Load()
}

// Rect reads the target's rectangle.
func (w *Windows) Rect(t Target) (Geometry, error) {
	r, err := w.backend.WindowRect(t.id)
	if err != nil {
		return Geometry{}, fmt.Errorf("%w: get window rect: %v", ErrOSCall, err)
	}
	return geometryFromRect(r), nil
}

// Move sets the target's top-left corner. Size is never changed.
func (w *Windows) Move(t Target, x, y int) error {
	if err := w.backend.MoveWindow(t.id, x, y); err != nil {
		return fmt.Errorf("%w: move window: %v", ErrOSCall, err)
	}
	return nil
}

// Placement reads the OS-reported placement of the target.
func (w *Windows) Placement(t Target) (platform.Placement, error) {
	p, err := w.backend.Placement(t.id)
	if err != nil {
		return platform.PlacementNormal, fmt.Errorf("%w: get window placement: %v", ErrOSCall, err)
	}
	return p, nil
}

// Show applies a show command unless the mover is blocked.
func (w *Windows) Show(t Target, cmd platform.ShowCommand) error {
	if w.Blocked() {
		return nil
	}
	if err := w.backend.Show(t.id, cmd); err != nil {
		return fmt.Errorf("%w: %s window: %v", ErrOSCall, cmd, err)
	}
	return nil
}

// Cursor returns the pointer position.
func (w *Windows) Cursor() (platform.Point, error) {
	p, err := w.backend.CursorPosition()
	if err != nil {
		return platform.Point{}, fmt.Errorf("%w: get cursor position: %v", ErrOSCall, err)
	}
	return p, nil
}

// Displays lists attached displays.
func (w *Windows) Displays() ([]platform.Display, error) {
	displays, err := w.backend.Displays()
	if err != nil {
		return nil, fmt.Errorf("%w: list displays: %v", ErrOSCall, err)
	}
	return displays, nil
}

// CenterOnPrimary moves the target to the middle of the primary display.
func (w *Windows) CenterOnPrimary(t Target) error {
	displays, err := w.Displays()
	if err != nil {
		return err
	}
	primary, ok := platform.PrimaryDisplay(displays)
	if !ok {
		return fmt.Errorf("%w: no displays", ErrOSCall)
	}

	rect, err := w.Rect(t)
	if err != nil {
		return err
	}

	x := primary.Bounds.X + (primary.Bounds.Width-rect.Width())/2
	y := primary.Bounds.Y + (primary.Bounds.Height-rect.Height())/2
	return w.Move(t, x, y)
}
