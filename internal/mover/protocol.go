package mover

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a decoded client frame.
type Kind int

const (
	KindMove Kind = iota
	KindGetMovableElement
	KindHeaderFound
	KindHeaderNotFound
	KindHeaderWidth
	KindCursorPercentage
	KindWindowWidth
	KindRestoredWindowWidth
	KindDragStart
	KindDragEnd
	KindDoubleClick
)

var kindNames = map[Kind]string{
	KindMove:                "move",
	KindGetMovableElement:   "getMovableElement",
	KindHeaderFound:         "headerFound",
	KindHeaderNotFound:      "headerNotFound",
	KindHeaderWidth:         "headerWidth",
	KindCursorPercentage:    "cursorPercentage",
	KindWindowWidth:         "windowWidth",
	KindRestoredWindowWidth: "restoredWindowWidth",
	KindDragStart:           "dragStart",
	KindDragEnd:             "dragEnd",
	KindDoubleClick:         "doubleClick",
}

// String returns the wire name of the kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Message is one decoded client frame.
type Message struct {
	Kind   Kind
	Domain string // KindGetMovableElement
	Value  int    // width and percentage kinds
	DX     int    // KindMove
	DY     int    // KindMove
}

const (
	prefixGetMovableElement   = "getMovableElement:"
	prefixHeaderWidth         = "headerWidth:"
	prefixElementWidth        = "elementWidth:"
	prefixCursorPercentage    = "cursorPercentage:"
	prefixWindowWidth         = "windowWidth:"
	prefixRestoredWindowWidth = "restoredWindowWidth:"

	// ReplyMovableElement prefixes the lookup reply.
	ReplyMovableElement = "movableElement:"
)

// Decode parses a text frame. Anything that is not a known keyword or prefix
// is treated as a "dx,dy" move delta.
func Decode(frame string) (Message, error) {
	switch frame {
	case "headerFound", "elementFound":
		return Message{Kind: KindHeaderFound}, nil
	case "headerNotFound", "elementNotFound":
		return Message{Kind: KindHeaderNotFound}, nil
	case "dragStart":
		return Message{Kind: KindDragStart}, nil
	case "dragEnd":
		return Message{Kind: KindDragEnd}, nil
	case "doubleClick":
		return Message{Kind: KindDoubleClick}, nil
	}

	switch {
	case strings.HasPrefix(frame, prefixGetMovableElement):
		return Message{
			Kind:   KindGetMovableElement,
			Domain: strings.TrimPrefix(frame, prefixGetMovableElement),
		}, nil
	case strings.HasPrefix(frame, prefixHeaderWidth):
		return decodeInt(KindHeaderWidth, frame, prefixHeaderWidth)
	case strings.HasPrefix(frame, prefixElementWidth):
		// Page agents report layout widths, which may be fractional.
		raw := strings.TrimSpace(strings.TrimPrefix(frame, prefixElementWidth))
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Message{}, fmt.Errorf("%w: %s: invalid number %q", ErrProtocol, KindHeaderWidth, raw)
		}
		return Message{Kind: KindHeaderWidth, Value: int(f)}, nil
	case strings.HasPrefix(frame, prefixCursorPercentage):
		return decodeInt(KindCursorPercentage, frame, prefixCursorPercentage)
	case strings.HasPrefix(frame, prefixWindowWidth):
		return decodeInt(KindWindowWidth, frame, prefixWindowWidth)
	case strings.HasPrefix(frame, prefixRestoredWindowWidth):
		return decodeInt(KindRestoredWindowWidth, frame, prefixRestoredWindowWidth)
	}

	return decodeMove(frame)
}

func decodeInt(kind Kind, frame, prefix string) (Message, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(frame, prefix))
	v, err := strconv.Atoi(raw)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %s: invalid integer %q", ErrProtocol, kind, raw)
	}
	return Message{Kind: kind, Value: v}, nil
}

func decodeMove(frame string) (Message, error) {
	parts := strings.Split(frame, ",")
	if len(parts) != 2 {
		return Message{}, fmt.Errorf("%w: unrecognized frame %q", ErrProtocol, truncate(frame, 64))
	}
	dx, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
	dy, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errX != nil || errY != nil {
		return Message{}, fmt.Errorf("%w: invalid delta %q", ErrProtocol, truncate(frame, 64))
	}
	return Message{Kind: KindMove, DX: dx, DY: dy}, nil
}

// MovableElementReply formats the lookup reply frame. Classes are joined
// with newlines; no classes yields the empty reply.
func MovableElementReply(classes []string) string {
	return ReplyMovableElement + strings.Join(classes, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
