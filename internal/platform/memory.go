package platform

import (
	"fmt"
	"strings"
	"sync"
)

// MemoryBackend is an in-process window system. The daemon uses it in
// headless mode (no X server) and tests use it to observe geometry changes.
type MemoryBackend struct {
	mu       sync.Mutex
	nextID   WindowID
	windows  map[WindowID]*memoryWindow
	order    []WindowID
	cursor   Point
	displays []Display

	// Fail* make the corresponding call return an error.
	FailRect      bool
	FailMove      bool
	FailShow      bool
	FailPlacement bool
	FailCursor    bool

	moves int
	shows []ShowCommand
}

type memoryWindow struct {
	class     string
	rect      Rect
	restored  Rect
	placement Placement
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty window system with the given displays.
// With no displays a single 1920x1080 primary display is assumed.
func NewMemoryBackend(displays ...Display) *MemoryBackend {
	if len(displays) == 0 {
		displays = []Display{{
			ID:      0,
			Name:    "MEM-0",
			Bounds:  Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
			Primary: true,
		}}
	}
	return &MemoryBackend{
		nextID:   1,
		windows:  make(map[WindowID]*memoryWindow),
		displays: append([]Display(nil), displays...),
	}
}

// AddWindow creates a normal-placement window and returns its ID.
func (m *MemoryBackend) AddWindow(class string, rect Rect) WindowID {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.windows[id] = &memoryWindow{class: class, rect: rect, restored: rect}
	m.order = append(m.order, id)
	return id
}

// RemoveWindow destroys a window.
func (m *MemoryBackend) RemoveWindow(id WindowID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.windows, id)
	for i, wid := range m.order {
		if wid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// SetCursor moves the simulated pointer.
func (m *MemoryBackend) SetCursor(x, y int) {
	m.mu.Lock()
	m.cursor = Point{X: x, Y: y}
	m.mu.Unlock()
}

// SetWindowRect overwrites a window's rectangle without touching placement.
func (m *MemoryBackend) SetWindowRect(id WindowID, rect Rect) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.windows[id]; ok {
		w.rect = rect
		if w.placement == PlacementNormal {
			w.restored = rect
		}
	}
}

// SetRestoredRect sets the rectangle a maximized window returns to.
func (m *MemoryBackend) SetRestoredRect(id WindowID, rect Rect) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.windows[id]; ok {
		w.restored = rect
	}
}

// MoveCount returns how many MoveWindow calls succeeded.
func (m *MemoryBackend) MoveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moves
}

// ShowCalls returns the show commands applied so far, in order.
func (m *MemoryBackend) ShowCalls() []ShowCommand {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ShowCommand(nil), m.shows...)
}

func (m *MemoryBackend) FindWindowByClass(class string) (WindowID, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.order {
		if strings.EqualFold(m.windows[id].class, class) {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (m *MemoryBackend) WindowRect(windowID WindowID) (Rect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailRect {
		return Rect{}, fmt.Errorf("get geometry of window %d failed", windowID)
	}
	w, err := m.window(windowID)
	if err != nil {
		return Rect{}, err
	}
	return w.rect, nil
}

func (m *MemoryBackend) MoveWindow(windowID WindowID, x, y int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailMove {
		return fmt.Errorf("move window %d failed", windowID)
	}
	w, err := m.window(windowID)
	if err != nil {
		return err
	}
	w.rect.X = x
	w.rect.Y = y
	if w.placement == PlacementNormal {
		w.restored = w.rect
	}
	m.moves++
	return nil
}

func (m *MemoryBackend) Placement(windowID WindowID) (Placement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPlacement {
		return PlacementNormal, fmt.Errorf("get state of window %d failed", windowID)
	}
	w, err := m.window(windowID)
	if err != nil {
		return PlacementNormal, err
	}
	return w.placement, nil
}

func (m *MemoryBackend) Show(windowID WindowID, cmd ShowCommand) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailShow {
		return fmt.Errorf("%s window %d failed", cmd, windowID)
	}
	w, err := m.window(windowID)
	if err != nil {
		return err
	}

	switch cmd {
	case ShowMaximize:
		if w.placement != PlacementMaximized {
			w.restored = w.rect
		}
		w.placement = PlacementMaximized
		w.rect = m.displayFor(w.rect).Bounds
	case ShowRestore:
		if w.placement == PlacementMaximized {
			w.rect = w.restored
		}
		w.placement = PlacementNormal
	default:
		return fmt.Errorf("unknown show command %d", cmd)
	}
	m.shows = append(m.shows, cmd)
	return nil
}

func (m *MemoryBackend) CursorPosition() (Point, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCursor {
		return Point{}, fmt.Errorf("query pointer failed")
	}
	return m.cursor, nil
}

func (m *MemoryBackend) Displays() ([]Display, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Display(nil), m.displays...), nil
}

func (m *MemoryBackend) window(id WindowID) (*memoryWindow, error) {
	w, ok := m.windows[id]
	if !ok {
		return nil, fmt.Errorf("bad window %d", id)
	}
	return w, nil
}

// displayFor picks the display containing the window center.
func (m *MemoryBackend) displayFor(r Rect) Display {
	cx := r.X + r.Width/2
	cy := r.Y + r.Height/2
	for _, d := range m.displays {
		if ContainsPoint(d.Bounds, cx, cy) {
			return d
		}
	}
	d, _ := PrimaryDisplay(m.displays)
	return d
}
