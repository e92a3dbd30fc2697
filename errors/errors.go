package errors

import "errors"

// Common session and workflow errors.
var (
	// ErrSessionNotFound indicates no checkpoint exists for the session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionUnavailable indicates the checkpoint store failed for
	// this turn. The turn is aborted; the session itself is intact.
	ErrSessionUnavailable = errors.New("session unavailable")

	// ErrUnknownSection indicates a section key outside the catalog.
	ErrUnknownSection = errors.New("unknown section")

	// ErrVersionNotFound indicates the requested export version does
	// not exist.
	ErrVersionNotFound = errors.New("version not found")

	// ErrNotAssembled indicates no document snapshot exists yet.
	ErrNotAssembled = errors.New("document not yet assembled")

	// ErrUnsupportedFormat indicates an export format other than
	// markdown was requested.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
