package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoViewModel is returned when a session is built without state.
	ErrNoViewModel = errors.New("tui: view-model is required")
)
