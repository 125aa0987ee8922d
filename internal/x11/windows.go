package x11

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const (
	stateMaxHorz = "_NET_WM_STATE_MAXIMIZED_HORZ"
	stateMaxVert = "_NET_WM_STATE_MAXIMIZED_VERT"
)

// The window manager applies state changes asynchronously; Restore polls
// for at most restoreAttempts*restorePoll before giving up.
const (
	restoreAttempts = 25
	restorePoll     = 10 * time.Millisecond
)

// FrameExtents are the decoration sizes the window manager adds around a
// client window.
type FrameExtents struct {
	Left, Right, Top, Bottom int
}

// FindWindowByClass searches the EWMH client list for a window whose WM_CLASS
// class or instance equals class (case-insensitive). Returns ok=false when
// nothing matches.
func (c *Connection) FindWindowByClass(class string) (xproto.Window, bool, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get client list: %w", err)
	}
	for _, win := range clients {
		if !c.IsNormalWindow(win) {
			continue
		}
		wmClass, err := icccm.WmClassGet(c.XUtil, win)
		if err != nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(wmClass.Class), class) ||
			strings.EqualFold(strings.TrimSpace(wmClass.Instance), class) {
			return win, true, nil
		}
	}
	return 0, false, nil
}

// WindowRect returns the outer frame geometry in root coordinates, so that
// MoveWindow(WindowRect().x, WindowRect().y) leaves the window in place.
func (c *Connection) WindowRect(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to get geometry: %w", err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to translate coordinates: %w", err)
	}

	x, y, width, height = frameRect(
		int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height),
		c.FrameExtents(windowID),
	)
	return x, y, width, height, nil
}

// FrameExtents returns the window decoration sizes. Windows without
// _NET_FRAME_EXTENTS report zeros.
func (c *Connection) FrameExtents(windowID xproto.Window) FrameExtents {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return FrameExtents{}
	}
	return FrameExtents{
		Left:   int(extents.Left),
		Right:  int(extents.Right),
		Top:    int(extents.Top),
		Bottom: int(extents.Bottom),
	}
}

// frameRect grows a client rectangle by its decorations.
func frameRect(x, y, width, height int, ext FrameExtents) (int, int, int, int) {
	return x - ext.Left, y - ext.Top, width + ext.Left + ext.Right, height + ext.Top + ext.Bottom
}

// MoveWindow changes the window position, leaving its size alone.
func (c *Connection) MoveWindow(windowID xproto.Window, x, y int) error {
	// EWMH request first for better WM compatibility.
	if err := ewmh.MoveWindow(c.XUtil, windowID, x, y); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).Move(x, y)
	}
	return nil
}

// IsMaximized reports whether the window carries both maximized states.
func (c *Connection) IsMaximized(windowID xproto.Window) (bool, error) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false, fmt.Errorf("failed to get window state: %w", err)
	}

	hasMaxH := false
	hasMaxV := false
	for _, state := range states {
		switch state {
		case stateMaxHorz:
			hasMaxH = true
		case stateMaxVert:
			hasMaxV = true
		}
	}
	return hasMaxH && hasMaxV, nil
}

// Maximize asks the window manager to maximize the window in both directions.
func (c *Connection) Maximize(windowID xproto.Window) error {
	return c.setMaximized(windowID, ewmh.StateAdd)
}

// Restore removes both maximized states and waits until the window manager
// no longer reports the window as maximized, so the geometry read next is
// the restored one.
func (c *Connection) Restore(windowID xproto.Window) error {
	if err := c.setMaximized(windowID, ewmh.StateRemove); err != nil {
		return err
	}
	restored := func() (bool, error) {
		maximized, err := c.IsMaximized(windowID)
		return !maximized, err
	}
	if err := pollUntil(restored, restoreAttempts, restorePoll); err != nil {
		return fmt.Errorf("failed to restore window: %w", err)
	}
	return nil
}

// pollUntil calls done up to attempts times, sleeping interval between
// calls, until it reports true.
func pollUntil(done func() (bool, error), attempts int, interval time.Duration) error {
	for i := 0; i < attempts; i++ {
		ok, err := done()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(interval)
		}
	}
	return fmt.Errorf("state unchanged after %d checks", attempts)
}

func (c *Connection) setMaximized(windowID xproto.Window, action int) error {
	const sourceIndication = 2 // pager/direct action
	if err := ewmh.WmStateReqExtra(c.XUtil, windowID, action, stateMaxHorz, stateMaxVert, sourceIndication); err != nil {
		return fmt.Errorf("failed to change window state: %w", err)
	}
	return nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" {
			return true
		}
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	return len(types) == 0
}
