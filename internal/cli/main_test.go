package cli

import (
	"bytes"
	"os"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/burnratehq/burnrate/internal/store"
)

func TestMain(m *testing.M) {
	// Deterministic output regardless of the test terminal.
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

// captureOutput redirects command output to a buffer for the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := outWriter
	outWriter = &buf
	t.Cleanup(func() { outWriter = prev })
	return &buf
}

// withTempStore points the CLI at a store rooted in a temp dir.
func withTempStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(t.TempDir())
	prev := newStore
	newStore = func() *store.Store { return st }
	t.Cleanup(func() { newStore = prev })
	return st
}
