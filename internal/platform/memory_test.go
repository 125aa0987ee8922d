package platform

import "testing"

func TestMemoryBackend_FindWindowByClass(t *testing.T) {
	m := NewMemoryBackend()
	if _, ok, err := m.FindWindowByClass("firefox"); err != nil || ok {
		t.Fatalf("expected no window, got ok=%v err=%v", ok, err)
	}

	m.AddWindow("xterm", Rect{Width: 10, Height: 10})
	want := m.AddWindow("Firefox", Rect{Width: 10, Height: 10})
	m.AddWindow("firefox", Rect{Width: 10, Height: 10})

	got, ok, err := m.FindWindowByClass("firefox")
	if err != nil || !ok {
		t.Fatalf("FindWindowByClass: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("got window %d, want first match %d", got, want)
	}

	m.RemoveWindow(want)
	got, ok, _ = m.FindWindowByClass("FIREFOX")
	if !ok || got == want {
		t.Fatalf("expected the remaining firefox window, got %d ok=%v", got, ok)
	}
}

func TestMemoryBackend_MoveKeepsSize(t *testing.T) {
	m := NewMemoryBackend()
	id := m.AddWindow("a", Rect{X: 1, Y: 2, Width: 300, Height: 200})
	if err := m.MoveWindow(id, -40, 70); err != nil {
		t.Fatalf("MoveWindow: %v", err)
	}
	got, _ := m.WindowRect(id)
	if got != (Rect{X: -40, Y: 70, Width: 300, Height: 200}) {
		t.Fatalf("rect = %+v", got)
	}
	if m.MoveCount() != 1 {
		t.Fatalf("MoveCount = %d, want 1", m.MoveCount())
	}
}

func TestMemoryBackend_MaximizeRestore(t *testing.T) {
	m := NewMemoryBackend(
		Display{ID: 0, Name: "a", Bounds: Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, Primary: true},
		Display{ID: 1, Name: "b", Bounds: Rect{X: 1920, Y: 0, Width: 2560, Height: 1440}},
	)
	start := Rect{X: 2000, Y: 100, Width: 800, Height: 600}
	id := m.AddWindow("a", start)

	if err := m.Show(id, ShowMaximize); err != nil {
		t.Fatalf("maximize: %v", err)
	}
	if p, _ := m.Placement(id); p != PlacementMaximized {
		t.Fatalf("placement = %s", p)
	}
	if got, _ := m.WindowRect(id); got != (Rect{X: 1920, Y: 0, Width: 2560, Height: 1440}) {
		t.Fatalf("maximized rect = %+v, want second display bounds", got)
	}

	if err := m.Show(id, ShowRestore); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got, _ := m.WindowRect(id); got != start {
		t.Fatalf("restored rect = %+v, want %+v", got, start)
	}
	if calls := m.ShowCalls(); len(calls) != 2 || calls[0] != ShowMaximize || calls[1] != ShowRestore {
		t.Fatalf("ShowCalls = %v", calls)
	}
}

func TestMemoryBackend_FailFlags(t *testing.T) {
	m := NewMemoryBackend()
	id := m.AddWindow("a", Rect{Width: 1, Height: 1})
	m.FailRect = true
	m.FailMove = true
	m.FailShow = true
	m.FailPlacement = true
	m.FailCursor = true

	if _, err := m.WindowRect(id); err == nil {
		t.Error("expected WindowRect error")
	}
	if err := m.MoveWindow(id, 0, 0); err == nil {
		t.Error("expected MoveWindow error")
	}
	if err := m.Show(id, ShowMaximize); err == nil {
		t.Error("expected Show error")
	}
	if _, err := m.Placement(id); err == nil {
		t.Error("expected Placement error")
	}
	if _, err := m.CursorPosition(); err == nil {
		t.Error("expected CursorPosition error")
	}
}

func TestMemoryBackend_UnknownWindow(t *testing.T) {
	m := NewMemoryBackend()
	if _, err := m.WindowRect(42); err == nil {
		t.Fatal("expected error for unknown window")
	}
}

func TestContainsPointAndPrimary(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 100, Height: 50}
	cases := []struct {
		x, y int
		want bool
	}{
		{10, 10, true},
		{110, 60, true},
		{111, 60, false},
		{9, 30, false},
	}
	for _, c := range cases {
		if got := ContainsPoint(r, c.x, c.y); got != c.want {
			t.Errorf("ContainsPoint(%d,%d) = %v, want %v", c.x, c.y, got, c.want)
		}
	}

	if _, ok := PrimaryDisplay(nil); ok {
		t.Fatal("expected no primary for empty list")
	}
	first := Display{ID: 3, Name: "first"}
	second := Display{ID: 4, Name: "second"}
	if d, _ := PrimaryDisplay([]Display{first, second}); d.ID != 3 {
		t.Fatalf("fallback primary = %d, want 3", d.ID)
	}
	second.Primary = true
	if d, _ := PrimaryDisplay([]Display{first, second}); d.ID != 4 {
		t.Fatalf("primary = %d, want 4", d.ID)
	}
}
