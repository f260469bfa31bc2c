package fetch

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/burnratehq/burnrate/internal/apperr"
)

const defaultMaxConcurrent = 5

// FetchAllProviders fetches usage from all providers concurrently, one
// pipeline per provider, bounded by cfg.MaxConcurrent. The optional
// onComplete callback runs synchronously in each provider's task as it
// finishes. A failure in one provider never fails the orchestrator.
func FetchAllProviders(ctx context.Context, providerMap map[string][]Strategy, useCache bool, cfg OrchestratorConfig, onComplete func(FetchOutcome)) map[string]FetchOutcome {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}

	outcomes := make(map[string]FetchOutcome, len(providerMap))
	var mu sync.Mutex
	sem := semaphore.NewWeighted(int64(maxConcurrent))
	var wg sync.WaitGroup

	for pid, strategies := range providerMap {
		wg.Add(1)
		go func(providerID string, strats []Strategy) {
			defer wg.Done()

			var outcome FetchOutcome
			if err := sem.Acquire(ctx, 1); err != nil {
				outcome = FetchOutcome{
					ProviderID: providerID,
					Success:    false,
					Err:        apperr.Classify(err).WithProvider(providerID),
				}
			} else {
				outcome = runPipeline(ctx, providerID, strats, useCache, cfg.Pipeline)
				sem.Release(1)
			}

			mu.Lock()
			outcomes[providerID] = outcome
			mu.Unlock()

			if onComplete != nil {
				onComplete(outcome)
			}
		}(pid, strategies)
	}

	wg.Wait()
	return outcomes
}

// runPipeline converts a panicking pipeline into a failure outcome so
// one provider cannot take down the whole fan-out.
func runPipeline(ctx context.Context, providerID string, strategies []Strategy, useCache bool, cfg PipelineConfig) (outcome FetchOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = FetchOutcome{
				ProviderID: providerID,
				Success:    false,
				Err: apperr.New(apperr.CategoryUnknown, apperr.SeverityRecoverable,
					fmt.Sprintf("pipeline panic: %v", r)).WithProvider(providerID),
			}
		}
	}()
	return ExecutePipeline(ctx, providerID, strategies, useCache, cfg)
}

// FetchEnabledProviders fetches only providers the isEnabled predicate
// admits.
func FetchEnabledProviders(ctx context.Context, providerMap map[string][]Strategy, useCache bool, cfg OrchestratorConfig, isEnabled func(string) bool, onComplete func(FetchOutcome)) map[string]FetchOutcome {
	enabledMap := make(map[string][]Strategy)
	for pid, strategies := range providerMap {
		if isEnabled(pid) {
			enabledMap[pid] = strategies
		}
	}
	return FetchAllProviders(ctx, enabledMap, useCache, cfg, onComplete)
}

// Buckets partitions provider ids by outcome kind. The buckets are
// disjoint; priority is gated, then cached, then fresh success, then
// failure. Each bucket is sorted.
type Buckets struct {
	Gated  []string
	Cached []string
	Fresh  []string
	Failed []string
}

func Categorize(outcomes map[string]FetchOutcome) Buckets {
	var b Buckets
	for pid, o := range outcomes {
		switch {
		case o.Gated:
			b.Gated = append(b.Gated, pid)
		case o.Cached:
			b.Cached = append(b.Cached, pid)
		case o.Success:
			b.Fresh = append(b.Fresh, pid)
		default:
			b.Failed = append(b.Failed, pid)
		}
	}
	sort.Strings(b.Gated)
	sort.Strings(b.Cached)
	sort.Strings(b.Fresh)
	sort.Strings(b.Failed)
	return b
}
