package fetch

import (
	"sync"
	"time"

	"github.com/burnratehq/burnrate/internal/apperr"
	"github.com/burnratehq/burnrate/internal/models"
)

const (
	// MaxConsecutiveFailures is the number of consecutive failures that
	// closes a provider's gate.
	MaxConsecutiveFailures = 3
	// FailureWindow bounds how long individual failure records are kept.
	FailureWindow = 10 * time.Minute
	// GateDuration is how long a closed gate suppresses fetch attempts.
	GateDuration = 5 * time.Minute
)

// Gate is the per-provider circuit breaker. It is safe for concurrent
// use, though in practice a provider's gate has a single writer (its
// pipeline). State is persisted after every mutation.
type Gate struct {
	mu    sync.Mutex
	state models.GateState
	store GateStore
	now   func() time.Time
}

// LoadGate returns the gate for a provider, restoring persisted state
// when present. A nil store yields an in-memory-only gate.
func LoadGate(providerID string, store GateStore) *Gate {
	g := &Gate{
		state: models.GateState{Provider: providerID},
		store: store,
		now:   time.Now,
	}
	if store != nil {
		if persisted := store.LoadGate(providerID); persisted != nil {
			g.state = *persisted
		}
	}
	return g
}

// RecordFailure prunes failures older than the window, appends the new
// one, and bumps the consecutive count. Reaching the threshold closes
// the gate for GateDuration.
func (g *Gate) RecordFailure(category apperr.Category, message string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	cutoff := now.Add(-FailureWindow)
	kept := g.state.Failures[:0]
	for _, f := range g.state.Failures {
		if f.Timestamp.After(cutoff) {
			kept = append(kept, f)
		}
	}
	g.state.Failures = append(kept, models.FailureRecord{
		Timestamp: now,
		Category:  string(category),
		Message:   message,
	})
	g.state.ConsecutiveCount++

	if g.state.ConsecutiveCount >= MaxConsecutiveFailures {
		until := now.Add(GateDuration)
		g.state.GatedUntil = &until
	}

	g.persist()
}

// RecordSuccess resets the consecutive count. GatedUntil is left as-is;
// IsGated clears it once expired.
func (g *Gate) RecordSuccess() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state.ConsecutiveCount = 0
	g.persist()
}

// IsGated reports whether the gate is currently closed, lazily clearing
// an expired gate.
func (g *Gate) IsGated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.GatedUntil == nil {
		return false
	}
	if g.now().After(*g.state.GatedUntil) {
		// Only the deadline is cleared. The consecutive count survives
		// until a real success, so a still-broken provider re-gates on
		// its next failure instead of getting three fresh attempts.
		g.state.GatedUntil = nil
		g.persist()
		return false
	}
	return true
}

// Remaining returns how long the gate stays closed, or 0 when open.
func (g *Gate) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.GatedUntil == nil {
		return 0
	}
	d := g.state.GatedUntil.Sub(g.now())
	if d < 0 {
		return 0
	}
	return d
}

// ConsecutiveCount returns the current consecutive-failure count.
func (g *Gate) ConsecutiveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.ConsecutiveCount
}

// State returns a copy of the current gate state.
func (g *Gate) State() models.GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := g.state
	out.Failures = append([]models.FailureRecord(nil), g.state.Failures...)
	return out
}

func (g *Gate) persist() {
	if g.store != nil {
		_ = g.store.SaveGate(g.state)
	}
}
