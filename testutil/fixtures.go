// Package testutil provides helpers for prdflow tests: scripted LLM
// clients, canned model replies, and file fixtures.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TempFile writes content to a file in a fresh temp directory and
// returns its path. The file is removed when the test ends.
func TempFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write temp file %s: %v", name, err)
	}

	return path
}

// TempFileString is TempFile for string content.
func TempFileString(t *testing.T, name, content string) string {
	return TempFile(t, name, []byte(content))
}
