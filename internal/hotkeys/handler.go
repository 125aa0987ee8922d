package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/zenmover/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Blocker is the mover kill-switch.
type Blocker interface {
	SetBlocked(blocked bool)
	Blocked() bool
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts. With a non-X11 backend every
// method is a no-op.
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	blocker Blocker
	logger  *slog.Logger

	mu    sync.Mutex
	bound string
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(backend platform.Backend, blocker Blocker, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		blocker: blocker,
		logger:  logger.With("component", "hotkeys"),
	}
	if accessor, ok := backend.(x11Accessor); ok {
		h.xu = accessor.XUtil()
		h.root = accessor.RootWindow()
		ignoreModsOnce.Do(func() {
			configureIgnoreMods(h.xu)
		})
	}
	return h
}

// Available reports whether hotkeys can be bound.
func (h *Handler) Available() bool {
	return h.xu != nil
}

// RegisterBlockToggle binds keySequence to flip the kill-switch. Any earlier
// binding made by this handler is dropped first; an empty sequence only
// unbinds.
func (h *Handler) RegisterBlockToggle(keySequence string) error {
	if h.xu == nil {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.bound != "" {
		keybind.Detach(h.xu, h.root)
		h.bound = ""
	}
	if keySequence == "" {
		return nil
	}

	err := h.registerFunc(keySequence, func() {
		blocked := !h.blocker.Blocked()
		h.blocker.SetBlocked(blocked)
		h.logger.Info("mover kill-switch toggled", "blocked", blocked)
	})
	if err != nil {
		return fmt.Errorf("failed to register block hotkey %q: %w", keySequence, err)
	}
	h.bound = keySequence
	return nil
}

// ReleaseAll drops any keyboard grab held when a drag ends, so modifier
// state pressed during the drag does not stick.
func (h *Handler) ReleaseAll() {
	if h.xu == nil {
		return
	}
	if err := xproto.UngrabKeyboardChecked(h.xu.Conn(), xproto.TimeCurrentTime).Check(); err != nil {
		h.logger.Debug("ungrab keyboard failed", "error", err)
	}
}

func (h *Handler) registerFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	// Every combination of the lock modifiers, including none.
	ignore := []uint16{0}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
