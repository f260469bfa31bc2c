package codex

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/burnratehq/burnrate/internal/apperr"
	"github.com/burnratehq/burnrate/internal/config"
	"github.com/burnratehq/burnrate/internal/fetch"
	"github.com/burnratehq/burnrate/internal/httpclient"
	"github.com/burnratehq/burnrate/internal/models"
	"github.com/burnratehq/burnrate/internal/provider"
)

type Codex struct{}

func (c Codex) Meta() provider.Metadata {
	return provider.Metadata{
		ID:           "codex",
		Name:         "Codex",
		Description:  "OpenAI's ChatGPT and Codex",
		Homepage:     "https://chatgpt.com",
		StatusURL:    "https://status.openai.com",
		DashboardURL: "https://chatgpt.com/codex/settings/usage",
	}
}

func (c Codex) CredentialSources() provider.CredentialInfo {
	return provider.CredentialInfo{
		CLIPaths: []string{"~/.codex/auth.json"},
		EnvVars:  []string{"OPENAI_API_KEY"},
	}
}

func (c Codex) FetchStrategies() []fetch.Strategy {
	timeout := config.Get().Fetch.Timeout
	return []fetch.Strategy{&OAuthStrategy{HTTPTimeout: timeout}}
}

func (c Codex) FetchStatus(ctx context.Context) models.ProviderStatus {
	return provider.FetchStatuspageStatus(ctx, "https://status.openai.com")
}

func init() {
	provider.Register(Codex{})
}

const defaultUsageURL = "https://chatgpt.com/backend-api/wham/usage"

// usageURL is a var so tests can point the strategy at a local server.
var usageURL = defaultUsageURL

// OAuthStrategy fetches Codex usage with the OAuth token the Codex CLI
// stores in ~/.codex/auth.json.
type OAuthStrategy struct {
	HTTPTimeout float64
}

func (s *OAuthStrategy) Name() string { return "oauth" }

func (s *OAuthStrategy) IsAvailable() bool {
	for _, p := range s.credentialPaths() {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

func (s *OAuthStrategy) Fetch(ctx context.Context) (fetch.FetchResult, error) {
	creds := s.loadCredentials()
	if creds == nil {
		return fetch.ResultFail(apperr.New(apperr.CategoryAuthentication, apperr.SeverityRecoverable,
			"No OAuth credentials found").WithProvider("codex").
			WithRemediation("Sign in with `codex login` first.")), nil
	}

	client := httpclient.NewFromConfig(s.HTTPTimeout)
	var usageResp UsageResponse
	resp, err := client.GetJSONCtx(ctx, usageURL, &usageResp, httpclient.WithBearer(creds.AccessToken))
	if err != nil {
		return fetch.ResultFail(apperr.Classify(err).WithProvider("codex")), nil
	}
	if r := provider.CheckResponse(resp, "codex", "Codex"); r != nil {
		return *r, nil
	}

	snapshot := parseUsageResponse(usageResp)
	if snapshot == nil {
		return fetch.ResultFail(apperr.New(apperr.CategoryParse, apperr.SeverityRecoverable,
			"Usage response contained no rate limit windows").WithProvider("codex")), nil
	}

	return fetch.ResultOK(*snapshot), nil
}

func (s *OAuthStrategy) credentialPaths() []string {
	return config.CredentialSearchPaths("codex", "oauth", "~/.codex/auth.json")
}

func (s *OAuthStrategy) loadCredentials() *Credentials {
	for _, path := range s.credentialPaths() {
		data := config.ReadCredential(path)
		if data == nil {
			continue
		}
		var cliCreds CLICredentials
		if err := json.Unmarshal(data, &cliCreds); err != nil {
			continue
		}
		if creds := cliCreds.EffectiveCredentials(); creds != nil {
			return creds
		}
	}
	return nil
}

// parseUsageResponse flattens the rate limit windows into usage
// periods. Returns nil when the response has no windows at all.
func parseUsageResponse(resp UsageResponse) *models.UsageSnapshot {
	var periods []models.UsagePeriod

	if rl := resp.EffectiveRateLimits(); rl != nil {
		if primary := rl.EffectivePrimary(); primary != nil {
			periods = append(periods, windowToPeriod(primary, "Session", models.PeriodSession))
		}
		if secondary := rl.EffectiveSecondary(); secondary != nil {
			periods = append(periods, windowToPeriod(secondary, "Weekly", models.PeriodWeekly))
		}
	}

	if len(periods) == 0 {
		return nil
	}

	var overage *models.OverageUsage
	if resp.Credits != nil && resp.Credits.HasCredits {
		overage = &models.OverageUsage{
			Limit:     resp.Credits.Balance(),
			Currency:  "credits",
			IsEnabled: true,
		}
	}

	var identity *models.ProviderIdentity
	if resp.PlanType != "" || resp.Email != "" {
		identity = &models.ProviderIdentity{Plan: resp.PlanType, Email: resp.Email}
	}

	return &models.UsageSnapshot{
		Provider:  "codex",
		FetchedAt: time.Now().UTC(),
		Periods:   periods,
		Overage:   overage,
		Identity:  identity,
		Source:    "oauth",
	}
}

func windowToPeriod(w *RateWindow, name string, pt models.PeriodType) models.UsagePeriod {
	p := models.UsagePeriod{
		Name:        name,
		Utilization: int(w.UsedPercent),
		PeriodType:  pt,
	}
	if ts := w.EffectiveResetTimestamp(); ts > 0 {
		t := time.Unix(int64(ts), 0).UTC()
		p.ResetsAt = &t
	}
	return p
}
