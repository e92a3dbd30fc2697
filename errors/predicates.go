package errors

import (
	"errors"
	"strings"
)

// IsNotFound checks if an error means the session or version is absent.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrVersionNotFound)
}

// IsStoreError checks if an error is checkpoint-store related.
// This includes I/O failures and database errors.
func IsStoreError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrSessionUnavailable) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "database") ||
		strings.Contains(errStr, "sqlite") ||
		strings.Contains(errStr, "i/o") ||
		strings.Contains(errStr, "disk")
}
