package cli

import (
	"errors"

	"github.com/burnratehq/burnrate/internal/apperr"
	"github.com/burnratehq/burnrate/internal/fetch"
)

// Exit codes reported to the shell.
const (
	ExitOK      = 0
	ExitGeneral = 1
	ExitAuth    = 2
	ExitNetwork = 3
	ExitConfig  = 4
	ExitPartial = 5
)

// ExitError carries a specific exit code up to main.
type ExitError struct {
	Code    int
	message string
}

func (e *ExitError) Error() string { return e.message }

// ExitCode maps an error returned from command execution to a shell
// exit code. Cobra errors (bad flags, unknown commands) map to the
// general failure code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitGeneral
}

// codeForCategory maps an error category to an exit code.
func codeForCategory(cat apperr.Category) int {
	switch cat {
	case apperr.CategoryConfiguration:
		return ExitConfig
	case apperr.CategoryAuthentication, apperr.CategoryAuthorization:
		return ExitAuth
	case apperr.CategoryNetwork:
		return ExitNetwork
	default:
		return ExitGeneral
	}
}

func codeForOutcome(o fetch.FetchOutcome) int {
	if o.Success {
		return ExitOK
	}
	if o.Err == nil {
		return ExitGeneral
	}
	return codeForCategory(o.Err.Category)
}

// exitError inspects a batch of outcomes and returns nil when all
// succeeded, a partial-failure ExitError when some did, or a
// category-specific ExitError when every provider failed. When
// multiple categories are present the most actionable one wins:
// configuration, then auth, then network, then general.
func exitError(outcomes map[string]fetch.FetchOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	var succeeded, failed int
	seen := map[int]bool{}
	for _, o := range outcomes {
		if o.Success && o.Snapshot != nil {
			succeeded++
			continue
		}
		failed++
		seen[codeForOutcome(o)] = true
	}

	switch {
	case failed == 0:
		return nil
	case succeeded > 0:
		return &ExitError{Code: ExitPartial, message: "some providers failed"}
	}

	for _, code := range []int{ExitConfig, ExitAuth, ExitNetwork} {
		if seen[code] {
			return &ExitError{Code: code, message: "all providers failed"}
		}
	}
	return &ExitError{Code: ExitGeneral, message: "all providers failed"}
}
