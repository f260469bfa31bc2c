package models

import "time"

// FailureRecord is one classified fetch failure kept in the gate window.
type FailureRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
}

// GateState is the persisted circuit-breaker state for one provider.
type GateState struct {
	Provider         string          `json:"provider"`
	Failures         []FailureRecord `json:"failures,omitempty"`
	GatedUntil       *time.Time      `json:"gated_until,omitempty"`
	ConsecutiveCount int             `json:"consecutive_count"`
}
