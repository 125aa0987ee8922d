package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Point is a position in screen coordinates.
type Point struct {
	X int
	Y int
}

// Display describes a physical display.
type Display struct {
	ID      int
	Name    string
	Bounds  Rect
	Primary bool
}

// Placement is the show state the window system reports for a window.
type Placement int

const (
	PlacementNormal Placement = iota
	PlacementMaximized
)

// String returns the string representation of the placement
func (p Placement) String() string {
	switch p {
	case PlacementNormal:
		return "normal"
	case PlacementMaximized:
		return "maximized"
	default:
		return "unknown"
	}
}

// ShowCommand asks the window system to change a window's placement.
type ShowCommand int

const (
	ShowRestore ShowCommand = iota
	ShowMaximize
)

// String returns the string representation of the command
func (c ShowCommand) String() string {
	switch c {
	case ShowRestore:
		return "restore"
	case ShowMaximize:
		return "maximize"
	default:
		return "unknown"
	}
}

// Backend abstracts window-system operations needed to move a single
// top-level window around.
type Backend interface {
	// FindWindowByClass returns the first client window whose class matches,
	// or ok=false when no such window exists.
	FindWindowByClass(class string) (id WindowID, ok bool, err error)
	WindowRect(windowID WindowID) (Rect, error)
	// MoveWindow changes a window's position and never its size.
	MoveWindow(windowID WindowID, x, y int) error
	Placement(windowID WindowID) (Placement, error)
	Show(windowID WindowID, cmd ShowCommand) error
	CursorPosition() (Point, error)
	Displays() ([]Display, error)
}

// ContainsPoint reports whether (x, y) lies inside r, edges included.
func ContainsPoint(r Rect, x, y int) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// PrimaryDisplay returns the display flagged as primary, falling back to the
// first display.
func PrimaryDisplay(displays []Display) (Display, bool) {
	for _, d := range displays {
		if d.Primary {
			return d, true
		}
	}
	if len(displays) > 0 {
		return displays[0], true
	}
	return Display{}, false
}
