package engine

import "errors"

var (
	// ErrAlreadyActive is returned by Acquire while another session is live.
	ErrAlreadyActive = errors.New("rendering subsystem is already active")
	// ErrReleased is returned when a released session is used.
	ErrReleased = errors.New("rendering session has been released")
)

// errSkipped marks a directive that was reported and ignored.
var errSkipped = errors.New("directive skipped")
