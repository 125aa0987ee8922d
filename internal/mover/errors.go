package mover

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocol marks a frame that could not be decoded or carries an
	// out-of-range value. The connection stays open.
	ErrProtocol = errors.New("protocol error")
	// ErrDeltaOutOfRange is returned for move deltas larger than MaxDelta.
	ErrDeltaOutOfRange = fmt.Errorf("%w: delta out of range", ErrProtocol)
	// ErrTargetNotFound means the target window could not be resolved.
	ErrTargetNotFound = errors.New("target window not found")
	// ErrOSCall wraps failures reported by the window system.
	ErrOSCall = errors.New("window system call failed")
)

// statusText maps an operation error to the text shown to the user.
func statusText(err error) string {
	switch {
	case errors.Is(err, ErrDeltaOutOfRange):
		return "Invalid delta values!"
	case errors.Is(err, ErrTargetNotFound):
		return "Target window not found!"
	default:
		return "Error: " + err.Error()
	}
}
