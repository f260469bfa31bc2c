package models

import (
	"errors"
	"fmt"
)

var knownPeriodTypes = map[PeriodType]bool{
	PeriodSession: true,
	PeriodDaily:   true,
	PeriodWeekly:  true,
	PeriodMonthly: true,
	PeriodBilling: true,
}

// ValidatePeriod enforces the UsagePeriod invariants. Utilization may
// exceed 100 (overage) but never go negative. A reset time in the past
// is legal; the period is then treated as freshly reset.
func ValidatePeriod(p UsagePeriod) error {
	if p.Utilization < 0 {
		return fmt.Errorf("period %q: utilization %d is negative", p.Name, p.Utilization)
	}
	if p.PeriodType != "" && !knownPeriodTypes[p.PeriodType] {
		return fmt.Errorf("period %q: unknown period type %q", p.Name, p.PeriodType)
	}
	return nil
}

// ValidateSnapshot enforces the UsageSnapshot invariants on
// construction and on deserialization.
func ValidateSnapshot(s UsageSnapshot) error {
	if s.Provider == "" {
		return errors.New("snapshot missing provider id")
	}
	if s.FetchedAt.IsZero() {
		return errors.New("snapshot missing fetched_at")
	}
	if len(s.Periods) == 0 {
		return errors.New("snapshot has no periods")
	}
	for _, p := range s.Periods {
		if err := ValidatePeriod(p); err != nil {
			return err
		}
	}
	if s.Overage != nil {
		if s.Overage.Used < 0 || s.Overage.Limit < 0 {
			return errors.New("overage amounts must be non-negative")
		}
	}
	return nil
}
