package claude

import (
	"time"

	"github.com/burnratehq/burnrate/internal/models"
)

// UsagePeriodResponse represents a single usage period from the Claude OAuth API.
type UsagePeriodResponse struct {
	Utilization float64 `json:"utilization"`
	ResetsAt    string  `json:"resets_at,omitempty"`
}

// ExtraUsageResponse represents overage/extra usage info from the Claude OAuth API.
type ExtraUsageResponse struct {
	IsEnabled    bool    `json:"is_enabled"`
	UsedCredits  float64 `json:"used_credits"`
	MonthlyLimit float64 `json:"monthly_limit"`
}

// UsageResponse represents the usage response from /api/oauth/usage.
type UsageResponse struct {
	FiveHour       *UsagePeriodResponse `json:"five_hour,omitempty"`
	SevenDay       *UsagePeriodResponse `json:"seven_day,omitempty"`
	Monthly        *UsagePeriodResponse `json:"monthly,omitempty"`
	SevenDaySonnet *UsagePeriodResponse `json:"seven_day_sonnet,omitempty"`
	SevenDayOpus   *UsagePeriodResponse `json:"seven_day_opus,omitempty"`
	ExtraUsage     *ExtraUsageResponse  `json:"extra_usage,omitempty"`
	Plan           string               `json:"plan,omitempty"`
	BillingType    string               `json:"billing_type,omitempty"`
}

// Credentials holds a Claude OAuth token pair with its expiry.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    string `json:"expires_at,omitempty"` // RFC 3339
}

// expiryLeeway treats tokens expiring within this window as expired so
// a request doesn't race the deadline.
const expiryLeeway = 5 * time.Minute

// Expired reports whether the access token is past (or within leeway
// of) its expiry. Tokens without an expiry are assumed valid.
func (c Credentials) Expired(now time.Time) bool {
	if c.ExpiresAt == "" {
		return false
	}
	t, err := time.Parse(time.RFC3339, c.ExpiresAt)
	if err != nil {
		return false
	}
	return now.After(t.Add(-expiryLeeway))
}

// CLIOAuth represents the nested OAuth data inside Claude CLI credentials.
type CLIOAuth struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken,omitempty"`
	ExpiresAt    float64 `json:"expiresAt,omitempty"` // millisecond timestamp
}

// ToCredentials converts Claude CLI format to the standard Credentials.
func (c *CLIOAuth) ToCredentials() Credentials {
	creds := Credentials{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
	}
	if c.ExpiresAt > 0 {
		creds.ExpiresAt = time.UnixMilli(int64(c.ExpiresAt)).UTC().Format(time.RFC3339)
	}
	return creds
}

// CLICredentials represents the Claude CLI credentials file format.
type CLICredentials struct {
	ClaudeAiOauth *CLIOAuth `json:"claudeAiOauth,omitempty"`
}

// parseUsageResponse converts a UsageResponse into a UsageSnapshot,
// or nil when the response carried no usage windows. The source
// parameter identifies which strategy produced the data.
func parseUsageResponse(resp UsageResponse, source string) *models.UsageSnapshot {
	var periods []models.UsagePeriod

	named := []struct {
		data       *UsagePeriodResponse
		name       string
		periodType models.PeriodType
	}{
		{resp.FiveHour, "Session (5h)", models.PeriodSession},
		{resp.SevenDay, "All Models", models.PeriodWeekly},
		{resp.Monthly, "Monthly", models.PeriodMonthly},
		{resp.SevenDaySonnet, "Sonnet", models.PeriodWeekly},
		{resp.SevenDayOpus, "Opus", models.PeriodWeekly},
	}

	for _, n := range named {
		if n.data == nil {
			continue
		}
		p := models.UsagePeriod{
			Name:        n.name,
			Utilization: int(n.data.Utilization),
			PeriodType:  n.periodType,
		}
		p.ResetsAt = models.ParseRFC3339Ptr(n.data.ResetsAt)
		periods = append(periods, p)
	}

	if len(periods) == 0 {
		return nil
	}

	var overage *models.OverageUsage
	if resp.ExtraUsage != nil && resp.ExtraUsage.IsEnabled {
		// The API reports cents.
		overage = &models.OverageUsage{
			Used:      resp.ExtraUsage.UsedCredits / 100.0,
			Limit:     resp.ExtraUsage.MonthlyLimit / 100.0,
			Currency:  "USD",
			IsEnabled: true,
		}
	}

	plan := resp.Plan
	if plan == "" {
		plan = resp.BillingType
	}
	var identity *models.ProviderIdentity
	if plan != "" {
		identity = &models.ProviderIdentity{Plan: plan}
	}

	return &models.UsageSnapshot{
		Provider:  "claude",
		FetchedAt: time.Now().UTC(),
		Periods:   periods,
		Overage:   overage,
		Identity:  identity,
		Source:    source,
	}
}
