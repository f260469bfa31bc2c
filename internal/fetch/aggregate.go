package fetch

import (
	"sort"
	"time"

	"github.com/burnratehq/burnrate/internal/apperr"
	"github.com/burnratehq/burnrate/internal/models"
)

// Aggregate folds per-provider outcomes into success and error maps.
type Aggregate struct {
	Snapshots map[string]models.UsageSnapshot `json:"snapshots"`
	Errors    map[string]*apperr.Error        `json:"errors"`
	FetchedAt time.Time                       `json:"fetched_at"`
}

func Fold(outcomes map[string]FetchOutcome) Aggregate {
	agg := Aggregate{
		Snapshots: make(map[string]models.UsageSnapshot),
		Errors:    make(map[string]*apperr.Error),
		FetchedAt: time.Now().UTC(),
	}
	for pid, o := range outcomes {
		if o.Success && o.Snapshot != nil {
			agg.Snapshots[pid] = *o.Snapshot
			continue
		}
		err := o.Err
		if err == nil {
			err = apperr.New(apperr.CategoryUnknown, apperr.SeverityRecoverable, "fetch failed")
		}
		agg.Errors[pid] = err
	}
	return agg
}

func (a Aggregate) HasAnyData() bool {
	return len(a.Snapshots) > 0
}

func (a Aggregate) AllFailed() bool {
	return len(a.Snapshots) == 0 && len(a.Errors) > 0
}

func (a Aggregate) SuccessfulProviders() []string {
	return sortedKeys(a.Snapshots)
}

func (a Aggregate) FailedProviders() []string {
	return sortedKeys(a.Errors)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
