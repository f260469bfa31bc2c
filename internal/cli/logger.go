package cli

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/burnratehq/burnrate/internal/logging"
)

// newConfiguredLogger builds a logger honoring the persistent flags.
// Color is disabled when stderr is not a terminal, so piped output
// stays clean without an explicit --no-color.
func newConfiguredLogger() *log.Logger {
	l := logging.NewLogger(os.Stderr)
	logging.Configure(l, logging.Flags{
		Verbose: verbose,
		Quiet:   quiet,
		NoColor: noColor || !isatty.IsTerminal(os.Stderr.Fd()),
		JSON:    jsonOutput,
	})
	return l
}
