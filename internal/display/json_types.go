package display

// ErrorEnvelopeJSON wraps a structured error for JSON output.
type ErrorEnvelopeJSON struct {
	Error ErrorDetailJSON `json:"error"`
}

// ErrorDetailJSON carries the full error taxonomy fields.
type ErrorDetailJSON struct {
	Message     string         `json:"message"`
	Category    string         `json:"category"`
	Severity    string         `json:"severity"`
	Provider    string         `json:"provider,omitempty"`
	Remediation string         `json:"remediation,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	Timestamp   string         `json:"timestamp"`
}

// SnapshotJSON represents a successful fetch outcome.
type SnapshotJSON struct {
	Provider string        `json:"provider"`
	Source   string        `json:"source"`
	Cached   bool          `json:"cached"`
	Gated    bool          `json:"gated,omitempty"`
	Identity *IdentityJSON `json:"identity,omitempty"`
	Periods  []PeriodJSON  `json:"periods"`
	Overage  *OverageJSON  `json:"overage,omitempty"`
}

// IdentityJSON represents provider identity information.
type IdentityJSON struct {
	Email        string `json:"email,omitempty"`
	Organization string `json:"organization,omitempty"`
	Plan         string `json:"plan,omitempty"`
}

// PeriodJSON represents a single usage period.
type PeriodJSON struct {
	Name        string `json:"name"`
	Utilization int    `json:"utilization"`
	Remaining   int    `json:"remaining"`
	PeriodType  string `json:"period_type"`
	ResetsAt    string `json:"resets_at,omitempty"`
}

// OverageJSON represents overage usage information.
type OverageJSON struct {
	Used      float64 `json:"used"`
	Limit     float64 `json:"limit"`
	Remaining float64 `json:"remaining"`
	Currency  string  `json:"currency"`
}

// MultiProviderJSON is the top-level response for multi-provider fetches.
type MultiProviderJSON struct {
	Providers map[string]SnapshotJSON    `json:"providers"`
	Errors    map[string]ErrorDetailJSON `json:"errors"`
	FetchedAt string                     `json:"fetched_at"`
}

// StatusEntryJSON represents a single provider's status.
type StatusEntryJSON struct {
	Level       string `json:"level"`
	Description string `json:"description,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// CacheEntryJSON represents one provider's cache state for `cache show`.
type CacheEntryJSON struct {
	Provider  string `json:"provider"`
	FetchedAt string `json:"fetched_at,omitempty"`
	Age       string `json:"age,omitempty"`
	Stale     bool   `json:"stale"`
	Present   bool   `json:"present"`
}

// ActionResultJSON is a generic success/message response used by
// cache clear and similar operations.
type ActionResultJSON struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Provider string `json:"provider,omitempty"`
}
