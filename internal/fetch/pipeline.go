package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/burnratehq/burnrate/internal/apperr"
)

// ExecutePipeline tries each strategy in listed order until one
// succeeds, coordinating with the provider's gate and the snapshot
// cache. Provider-level failures come back as outcomes, never as
// panics.
func ExecutePipeline(ctx context.Context, providerID string, strategies []Strategy, useCache bool, cfg PipelineConfig) FetchOutcome {
	gate := LoadGate(providerID, cfg.Gates)

	if gate.IsGated() {
		remaining := gate.Remaining()
		if useCache && cfg.Cache != nil {
			if cached := cfg.Cache.Load(providerID); cached != nil {
				// Serving cache while gated is not a live success; the
				// consecutive-failure count is deliberately untouched.
				return FetchOutcome{
					ProviderID:    providerID,
					Success:       true,
					Snapshot:      cached,
					Source:        "cache",
					Cached:        true,
					GateRemaining: formatGateRemaining(remaining),
				}
			}
		}
		return FetchOutcome{
			ProviderID: providerID,
			Success:    false,
			Gated:      true,
			Err: apperr.New(apperr.CategoryProvider, apperr.SeverityTransient,
				fmt.Sprintf("%s is gated after repeated failures, retrying in %s", providerID, formatGateRemaining(remaining))).
				WithProvider(providerID),
			GateRemaining: formatGateRemaining(remaining),
		}
	}

	var attempts []FetchAttempt
	var lastErr *apperr.Error
	anyAttempted := false

	for _, strategy := range strategies {
		if !strategy.IsAvailable() {
			attempts = append(attempts, FetchAttempt{
				Strategy: strategy.Name(),
				Error:    "not available",
			})
			continue
		}

		anyAttempted = true
		start := time.Now()

		// Each attempt gets its own deadline so an abandoned strategy
		// (and any subprocess it spawned) is torn down when the
		// pipeline moves on.
		attemptCtx, cancelAttempt := context.WithTimeout(ctx, cfg.Timeout)

		resultCh := make(chan fetchAttemptResult, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					resultCh <- fetchAttemptResult{err: fmt.Errorf("strategy panic: %v", r)}
				}
			}()
			result, err := strategy.Fetch(attemptCtx)
			resultCh <- fetchAttemptResult{result: result, err: err}
		}()

		var result FetchResult
		var fetchErr error

		select {
		case <-ctx.Done():
			// Cancellation is a non-retryable abort; the gate is not
			// charged with a failure.
			cancelAttempt()
			return FetchOutcome{
				ProviderID: providerID,
				Success:    false,
				Attempts:   attempts,
				Err:        apperr.Classify(ctx.Err()).WithProvider(providerID),
			}
		case <-time.After(cfg.Timeout):
			cancelAttempt()
			lastErr = apperr.New(apperr.CategoryNetwork, apperr.SeverityTransient,
				fmt.Sprintf("%s timed out after %s", strategy.Name(), cfg.Timeout))
			attempts = append(attempts, FetchAttempt{
				Strategy:   strategy.Name(),
				Error:      lastErr.Message,
				DurationMS: time.Since(start).Milliseconds(),
			})
			continue
		case r := <-resultCh:
			cancelAttempt()
			result = r.result
			fetchErr = r.err
		}

		durationMS := time.Since(start).Milliseconds()

		if fetchErr != nil {
			// Unexpected error from a strategy is treated as a
			// recoverable failure.
			lastErr = apperr.Classify(fetchErr)
			attempts = append(attempts, FetchAttempt{
				Strategy:   strategy.Name(),
				Error:      lastErr.Message,
				DurationMS: durationMS,
			})
			continue
		}

		if result.Success && result.Snapshot != nil {
			attempts = append(attempts, FetchAttempt{
				Strategy:   strategy.Name(),
				Success:    true,
				DurationMS: durationMS,
			})
			gate.RecordSuccess()
			if cfg.Cache != nil {
				_ = cfg.Cache.Save(*result.Snapshot)
			}
			return FetchOutcome{
				ProviderID: providerID,
				Success:    true,
				Snapshot:   result.Snapshot,
				Source:     strategy.Name(),
				Attempts:   attempts,
			}
		}

		errVal := result.Err
		if errVal == nil {
			errVal = apperr.New(apperr.CategoryUnknown, apperr.SeverityRecoverable, "strategy failed")
		}
		attempts = append(attempts, FetchAttempt{
			Strategy:   strategy.Name(),
			Error:      errVal.Message,
			DurationMS: durationMS,
		})

		if !result.ShouldFallback {
			gate.RecordFailure(errVal.Category, errVal.Message)
			return FetchOutcome{
				ProviderID: providerID,
				Success:    false,
				Fatal:      true,
				Attempts:   attempts,
				Err:        errVal.WithProvider(providerID),
			}
		}

		lastErr = errVal
	}

	if lastErr == nil {
		lastErr = apperr.New(apperr.CategoryConfiguration, apperr.SeverityRecoverable, "No strategies available")
	}

	if anyAttempted {
		gate.RecordFailure(lastErr.Category, lastErr.Message)
	}

	// Cache fallback. Serve stale data only when credentials exist
	// (anyAttempted) but the fetch failed; a fresh cache entry is fine
	// either way.
	if useCache && cfg.Cache != nil {
		if cached := cfg.Cache.Load(providerID); cached != nil {
			if anyAttempted || !cached.IsStale(cfg.StaleThresholdMinutes) {
				return FetchOutcome{
					ProviderID: providerID,
					Success:    true,
					Snapshot:   cached,
					Source:     "cache",
					Cached:     true,
					Attempts:   attempts,
				}
			}
		}
	}

	return FetchOutcome{
		ProviderID: providerID,
		Success:    false,
		Attempts:   attempts,
		Err:        lastErr.WithProvider(providerID),
	}
}

type fetchAttemptResult struct {
	result FetchResult
	err    error
}

func formatGateRemaining(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return d.Truncate(time.Second).String()
}
