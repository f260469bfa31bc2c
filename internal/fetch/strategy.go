package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/burnratehq/burnrate/internal/apperr"
	"github.com/burnratehq/burnrate/internal/models"
)

// Strategy is one concrete way to retrieve usage data for a provider.
// IsAvailable is a cheap local check (files exist, env vars set) and
// must never touch the network; it may be called concurrently.
type Strategy interface {
	Name() string
	IsAvailable() bool
	Fetch(ctx context.Context) (FetchResult, error)
}

// Cache abstracts snapshot persistence so ExecutePipeline doesn't depend
// on the filesystem or store package directly.
type Cache interface {
	Save(snapshot models.UsageSnapshot) error
	Load(providerID string) *models.UsageSnapshot
}

// GateStore abstracts gate-state persistence.
type GateStore interface {
	SaveGate(state models.GateState) error
	LoadGate(providerID string) *models.GateState
}

// PipelineConfig holds the parameters ExecutePipeline needs, injected
// rather than read from a global singleton.
type PipelineConfig struct {
	Timeout               time.Duration
	StaleThresholdMinutes int
	Cache                 Cache
	Gates                 GateStore
}

// OrchestratorConfig holds parameters for the concurrent fan-out.
type OrchestratorConfig struct {
	MaxConcurrent int
	Pipeline      PipelineConfig
}

// FetchResult represents the outcome of a single strategy attempt.
type FetchResult struct {
	Success        bool
	Snapshot       *models.UsageSnapshot
	Err            *apperr.Error
	ShouldFallback bool
}

func ResultOK(snapshot models.UsageSnapshot) FetchResult {
	return FetchResult{Success: true, Snapshot: &snapshot, ShouldFallback: false}
}

// ResultFail reports a recoverable failure; the pipeline moves on to
// the next strategy.
func ResultFail(err *apperr.Error) FetchResult {
	return FetchResult{Success: false, Err: err, ShouldFallback: true}
}

func ResultFailf(format string, a ...any) FetchResult {
	return ResultFail(apperr.New(apperr.CategoryUnknown, apperr.SeverityRecoverable, fmt.Sprintf(format, a...)))
}

// ResultFatal reports a failure where trying a sibling strategy cannot
// help (rate limit, account suspension); the pipeline stops.
func ResultFatal(err *apperr.Error) FetchResult {
	return FetchResult{Success: false, Err: err, ShouldFallback: false}
}

// FetchAttempt is one entry in the pipeline's per-strategy trace.
type FetchAttempt struct {
	Strategy   string `json:"strategy"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// FetchOutcome is the complete result of fetching from a provider.
type FetchOutcome struct {
	ProviderID    string                `json:"provider_id"`
	Success       bool                  `json:"success"`
	Snapshot      *models.UsageSnapshot `json:"snapshot,omitempty"`
	Source        string                `json:"source,omitempty"`
	Attempts      []FetchAttempt        `json:"attempts,omitempty"`
	Err           *apperr.Error         `json:"error,omitempty"`
	Cached        bool                  `json:"cached"`
	Gated         bool                  `json:"gated,omitempty"`
	Fatal         bool                  `json:"fatal,omitempty"`
	GateRemaining string                `json:"gate_remaining,omitempty"`
}

// ErrorMessage returns the outcome's error message, or "" on success.
func (o FetchOutcome) ErrorMessage() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Message
}
