package cli

import (
	"errors"
	"testing"

	"github.com/burnratehq/burnrate/internal/apperr"
	"github.com/burnratehq/burnrate/internal/fetch"
	"github.com/burnratehq/burnrate/internal/models"
)

func failedOutcome(cat apperr.Category) fetch.FetchOutcome {
	return fetch.FetchOutcome{
		Success: false,
		Err:     apperr.New(cat, apperr.SeverityRecoverable, "boom"),
	}
}

func okOutcome() fetch.FetchOutcome {
	return fetch.FetchOutcome{
		Success:  true,
		Snapshot: &models.UsageSnapshot{Provider: "x"},
	}
}

func TestExitCode(t *testing.T) {
	if got := ExitCode(nil); got != ExitOK {
		t.Errorf("nil = %d, want 0", got)
	}
	if got := ExitCode(errors.New("boom")); got != ExitGeneral {
		t.Errorf("generic = %d, want 1", got)
	}
	if got := ExitCode(&ExitError{Code: ExitAuth}); got != ExitAuth {
		t.Errorf("exit error = %d, want 2", got)
	}
}

func TestCodeForOutcome(t *testing.T) {
	tests := []struct {
		name    string
		outcome fetch.FetchOutcome
		want    int
	}{
		{"success", okOutcome(), ExitOK},
		{"failure without error", fetch.FetchOutcome{Success: false}, ExitGeneral},
		{"authentication", failedOutcome(apperr.CategoryAuthentication), ExitAuth},
		{"authorization", failedOutcome(apperr.CategoryAuthorization), ExitAuth},
		{"network", failedOutcome(apperr.CategoryNetwork), ExitNetwork},
		{"configuration", failedOutcome(apperr.CategoryConfiguration), ExitConfig},
		{"rate limited", failedOutcome(apperr.CategoryRateLimited), ExitGeneral},
		{"provider", failedOutcome(apperr.CategoryProvider), ExitGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := codeForOutcome(tt.outcome); got != tt.want {
				t.Errorf("codeForOutcome = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitErrorBatch(t *testing.T) {
	tests := []struct {
		name     string
		outcomes map[string]fetch.FetchOutcome
		want     int
	}{
		{"empty", map[string]fetch.FetchOutcome{}, ExitOK},
		{"all success", map[string]fetch.FetchOutcome{"a": okOutcome(), "b": okOutcome()}, ExitOK},
		{"partial", map[string]fetch.FetchOutcome{
			"a": okOutcome(),
			"b": failedOutcome(apperr.CategoryConfiguration),
		}, ExitPartial},
		{"all failed general", map[string]fetch.FetchOutcome{
			"a": failedOutcome(apperr.CategoryProvider),
		}, ExitGeneral},
		{"network beats general", map[string]fetch.FetchOutcome{
			"a": failedOutcome(apperr.CategoryProvider),
			"b": failedOutcome(apperr.CategoryNetwork),
		}, ExitNetwork},
		{"auth beats network", map[string]fetch.FetchOutcome{
			"a": failedOutcome(apperr.CategoryNetwork),
			"b": failedOutcome(apperr.CategoryAuthentication),
		}, ExitAuth},
		{"config beats auth", map[string]fetch.FetchOutcome{
			"a": failedOutcome(apperr.CategoryAuthentication),
			"b": failedOutcome(apperr.CategoryConfiguration),
			"c": failedOutcome(apperr.CategoryNetwork),
		}, ExitConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exitError(tt.outcomes)
			if got := ExitCode(err); got != tt.want {
				t.Errorf("exit code = %d, want %d", got, tt.want)
			}
		})
	}
}
