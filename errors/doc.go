// Package errors provides sentinel errors for session and workflow
// failures.
//
// Checkpoint-store failures are fatal for a turn and surface as
// ErrSessionUnavailable; capability failures never reach callers as
// errors (stages convert them to heuristic fallbacks in-conversation).
//
// Example usage:
//
//	draft, err := builder.Draft(ctx, sessionID)
//	if errors.Is(err, prderrors.ErrSessionNotFound) {
//	    // 404 the caller
//	}
package errors
