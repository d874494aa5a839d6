package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrQuit is returned when the user leaves the wizard before submitting.
	ErrQuit = errors.New("tui: quit before submitting")
)
