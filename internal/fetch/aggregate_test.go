package fetch

import (
	"testing"

	"github.com/burnratehq/burnrate/internal/apperr"
)

func TestFold(t *testing.T) {
	snap := testSnapshot("a", "api", 42)
	outcomes := map[string]FetchOutcome{
		"a": {ProviderID: "a", Success: true, Snapshot: &snap},
		"b": {ProviderID: "b", Success: false, Err: apperr.New(apperr.CategoryNetwork, apperr.SeverityTransient, "timeout")},
		"c": {ProviderID: "c", Success: false},
	}

	agg := Fold(outcomes)

	if len(agg.Snapshots) != 1 || agg.Snapshots["a"].Provider != "a" {
		t.Errorf("snapshots = %+v, want just a", agg.Snapshots)
	}
	if len(agg.Errors) != 2 {
		t.Fatalf("errors = %d, want 2", len(agg.Errors))
	}
	if agg.Errors["b"].Category != apperr.CategoryNetwork {
		t.Errorf("b error category = %q", agg.Errors["b"].Category)
	}
	// An outcome with no error still folds to a non-nil placeholder.
	if agg.Errors["c"] == nil {
		t.Error("c should get a placeholder error")
	}
	if agg.FetchedAt.IsZero() {
		t.Error("FetchedAt should be set")
	}
}

func TestAggregatePredicates(t *testing.T) {
	empty := Fold(nil)
	if empty.HasAnyData() {
		t.Error("empty aggregate has no data")
	}
	if empty.AllFailed() {
		t.Error("empty aggregate did not all-fail (nothing was tried)")
	}

	snap := testSnapshot("a", "api", 1)
	mixed := Fold(map[string]FetchOutcome{
		"a": {Success: true, Snapshot: &snap},
		"b": {Success: false, Err: apperr.New(apperr.CategoryProvider, apperr.SeverityTransient, "500")},
	})
	if !mixed.HasAnyData() || mixed.AllFailed() {
		t.Errorf("mixed aggregate predicates wrong: %+v", mixed)
	}

	failed := Fold(map[string]FetchOutcome{
		"b": {Success: false, Err: apperr.New(apperr.CategoryProvider, apperr.SeverityTransient, "500")},
	})
	if failed.HasAnyData() || !failed.AllFailed() {
		t.Errorf("all-failed aggregate predicates wrong: %+v", failed)
	}
}

func TestAggregateProviderLists(t *testing.T) {
	a := testSnapshot("a", "api", 1)
	z := testSnapshot("z", "api", 1)
	agg := Fold(map[string]FetchOutcome{
		"z": {Success: true, Snapshot: &z},
		"a": {Success: true, Snapshot: &a},
		"m": {Success: false, Err: apperr.New(apperr.CategoryUnknown, apperr.SeverityRecoverable, "x")},
		"b": {Success: false, Err: apperr.New(apperr.CategoryUnknown, apperr.SeverityRecoverable, "y")},
	})

	if got := agg.SuccessfulProviders(); len(got) != 2 || got[0] != "a" || got[1] != "z" {
		t.Errorf("SuccessfulProviders = %v, want [a z]", got)
	}
	if got := agg.FailedProviders(); len(got) != 2 || got[0] != "b" || got[1] != "m" {
		t.Errorf("FailedProviders = %v, want [b m]", got)
	}
}
