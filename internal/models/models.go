package models

import (
	"math"
	"strconv"
	"time"
)

type PeriodType string

const (
	PeriodSession PeriodType = "session"
	PeriodDaily   PeriodType = "daily"
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
	PeriodBilling PeriodType = "billing"
)

func (p PeriodType) Hours() float64 {
	switch p {
	case PeriodSession:
		return 5.0
	case PeriodDaily:
		return 24.0
	case PeriodWeekly:
		return 7.0 * 24.0
	case PeriodMonthly, PeriodBilling:
		return 30.0 * 24.0
	default:
		return 24.0
	}
}

// UsagePeriod is a single quota window. Utilization is a percentage and
// may exceed 100 when overage applies.
type UsagePeriod struct {
	Name        string     `json:"name"`
	Utilization int        `json:"utilization"`
	PeriodType  PeriodType `json:"period_type"`
	ResetsAt    *time.Time `json:"resets_at,omitempty"`
}

func (p UsagePeriod) Remaining() int {
	return 100 - p.Utilization
}

// ResetElapsed reports whether the period's reset time has already
// passed relative to now. Such periods are treated as freshly reset.
func (p UsagePeriod) ResetElapsed(now time.Time) bool {
	return p.ResetsAt != nil && p.ResetsAt.Before(now)
}

func (p UsagePeriod) ElapsedRatio() *float64 {
	if p.ResetsAt == nil {
		return nil
	}
	now := time.Now()
	totalHours := p.PeriodType.Hours()
	startTime := p.ResetsAt.Add(-time.Duration(totalHours * float64(time.Hour)))
	elapsed := now.Sub(startTime).Hours()
	ratio := math.Max(0.0, math.Min(elapsed/totalHours, 1.0))
	return &ratio
}

func (p UsagePeriod) TimeUntilReset() *time.Duration {
	if p.ResetsAt == nil {
		return nil
	}
	d := time.Until(*p.ResetsAt)
	if d < 0 {
		d = 0
	}
	return &d
}

// OverageUsage is paid usage above the plan allotment.
type OverageUsage struct {
	Used      float64 `json:"used"`
	Limit     float64 `json:"limit"`
	Currency  string  `json:"currency"`
	IsEnabled bool    `json:"is_enabled"`
}

// Remaining reports limit minus used verbatim. Overage caps are soft,
// so the result may be negative.
func (o OverageUsage) Remaining() float64 {
	return o.Limit - o.Used
}

func (o OverageUsage) UtilizationPct() int {
	if o.Limit <= 0 {
		if o.Used > 0 {
			return 100
		}
		return 0
	}
	return int((o.Used / o.Limit) * 100)
}

type ProviderIdentity struct {
	Email        string `json:"email,omitempty"`
	Organization string `json:"organization,omitempty"`
	Plan         string `json:"plan,omitempty"`
}

type StatusLevel string

const (
	StatusOperational   StatusLevel = "operational"
	StatusDegraded      StatusLevel = "degraded"
	StatusPartialOutage StatusLevel = "partial_outage"
	StatusMajorOutage   StatusLevel = "major_outage"
	StatusUnknown       StatusLevel = "unknown"
)

type ProviderStatus struct {
	Level       StatusLevel `json:"level"`
	Description string      `json:"description,omitempty"`
	UpdatedAt   *time.Time  `json:"updated_at,omitempty"`
}

// UsageSnapshot is the atomic unit exchanged through the system.
// Snapshots are immutable once constructed.
type UsageSnapshot struct {
	Provider  string            `json:"provider"`
	FetchedAt time.Time         `json:"fetched_at"`
	Periods   []UsagePeriod     `json:"periods"`
	Overage   *OverageUsage     `json:"overage,omitempty"`
	Identity  *ProviderIdentity `json:"identity,omitempty"`
	Status    *ProviderStatus   `json:"status,omitempty"`
	Source    string            `json:"source,omitempty"`
}

func (s UsageSnapshot) PrimaryPeriod() *UsagePeriod {
	if len(s.Periods) == 0 {
		return nil
	}
	priority := map[PeriodType]int{
		PeriodSession: 0,
		PeriodDaily:   1,
		PeriodWeekly:  2,
		PeriodMonthly: 3,
		PeriodBilling: 4,
	}
	best := 0
	bestPri := 99
	for i, p := range s.Periods {
		pri, ok := priority[p.PeriodType]
		if !ok {
			pri = 99
		}
		if pri < bestPri {
			bestPri = pri
			best = i
		}
	}
	return &s.Periods[best]
}

// BottleneckPeriod returns the period with the least remaining headroom
// (highest utilization).
func (s UsageSnapshot) BottleneckPeriod() *UsagePeriod {
	if len(s.Periods) == 0 {
		return nil
	}
	best := 0
	for i, p := range s.Periods {
		if p.Utilization > s.Periods[best].Utilization {
			best = i
		}
	}
	return &s.Periods[best]
}

func (s UsageSnapshot) Age() time.Duration {
	return time.Since(s.FetchedAt)
}

func (s UsageSnapshot) IsStale(maxAgeMinutes int) bool {
	return s.Age().Minutes() > float64(maxAgeMinutes)
}

func FormatResetCountdown(d *time.Duration) string {
	if d == nil {
		return ""
	}
	total := int(d.Seconds())
	if total <= 0 {
		return "now"
	}
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	if days > 0 {
		return formatDH(days, hours)
	}
	if hours > 0 {
		return formatHM(hours, minutes)
	}
	return formatM(minutes)
}

func formatDH(d, h int) string { return strconv.Itoa(d) + "d " + strconv.Itoa(h) + "h" }
func formatHM(h, m int) string { return strconv.Itoa(h) + "h " + strconv.Itoa(m) + "m" }
func formatM(m int) string     { return strconv.Itoa(m) + "m" }
