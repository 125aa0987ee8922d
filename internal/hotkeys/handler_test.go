package hotkeys

import (
	"testing"

	"github.com/1broseidon/zenmover/internal/mover"
	"github.com/1broseidon/zenmover/internal/platform"
)

func TestHandler_NoX11IsNoOp(t *testing.T) {
	backend := platform.NewMemoryBackend()
	windows := mover.NewWindows(backend)
	h := NewHandler(backend, windows, nil)

	if h.Available() {
		t.Fatal("memory backend must not expose hotkeys")
	}
	if err := h.RegisterBlockToggle("Mod4-Mod1-m"); err != nil {
		t.Fatalf("RegisterBlockToggle: %v", err)
	}
	h.ReleaseAll()
	if windows.Blocked() {
		t.Fatal("registering must not toggle the kill-switch")
	}
}

func TestHandler_SatisfiesModifierReleaser(t *testing.T) {
	var _ mover.ModifierReleaser = (*Handler)(nil)
	var _ Blocker = (*mover.Windows)(nil)
}
