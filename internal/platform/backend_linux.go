//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/1broseidon/zenmover/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh
// X11 connection to display ("" means $DISPLAY).
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnectionDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn), nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit stops the X11 event loop.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// FindWindowByClass returns the first normal client window with the WM_CLASS.
func (b *LinuxBackend) FindWindowByClass(class string) (WindowID, bool, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, false, err
	}

	win, ok, err := conn.FindWindowByClass(class)
	if err != nil || !ok {
		return 0, false, err
	}
	return WindowID(win), true, nil
}

// WindowRect returns the window geometry in root coordinates.
func (b *LinuxBackend) WindowRect(windowID WindowID) (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}

	x, y, w, h, err := conn.WindowRect(xproto.Window(windowID))
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: x, Y: y, Width: w, Height: h}, nil
}

// MoveWindow moves a window without resizing it.
func (b *LinuxBackend) MoveWindow(windowID WindowID, x, y int) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MoveWindow(xproto.Window(windowID), x, y)
}

// Placement reports whether the window is maximized.
func (b *LinuxBackend) Placement(windowID WindowID) (Placement, error) {
	conn, err := b.connection()
	if err != nil {
		return PlacementNormal, err
	}

	maximized, err := conn.IsMaximized(xproto.Window(windowID))
	if err != nil {
		return PlacementNormal, err
	}
	if maximized {
		return PlacementMaximized, nil
	}
	return PlacementNormal, nil
}

// Show maximizes or restores a window.
func (b *LinuxBackend) Show(windowID WindowID, cmd ShowCommand) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	switch cmd {
	case ShowMaximize:
		return conn.Maximize(xproto.Window(windowID))
	case ShowRestore:
		return conn.Restore(xproto.Window(windowID))
	default:
		return fmt.Errorf("unknown show command %d", cmd)
	}
}

// CursorPosition returns the pointer position in root coordinates.
func (b *LinuxBackend) CursorPosition() (Point, error) {
	conn, err := b.connection()
	if err != nil {
		return Point{}, err
	}

	x, y, err := conn.PointerPosition()
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:   m.ID,
		Name: m.Name,
		Bounds: Rect{
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		},
		Primary: m.Primary,
	}
}
