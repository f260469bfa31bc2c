package openrouter

import (
	"context"
	"time"

	"github.com/burnratehq/burnrate/internal/apperr"
	"github.com/burnratehq/burnrate/internal/config"
	"github.com/burnratehq/burnrate/internal/fetch"
	"github.com/burnratehq/burnrate/internal/httpclient"
	"github.com/burnratehq/burnrate/internal/models"
	"github.com/burnratehq/burnrate/internal/provider"
	"github.com/burnratehq/burnrate/internal/retry"
)

type OpenRouter struct{}

func (o OpenRouter) Meta() provider.Metadata {
	return provider.Metadata{
		ID:           "openrouter",
		Name:         "OpenRouter",
		Description:  "OpenRouter unified model gateway",
		Homepage:     "https://openrouter.ai",
		StatusURL:    "https://status.openrouter.ai",
		DashboardURL: "https://openrouter.ai/settings/credits",
	}
}

func (o OpenRouter) CredentialSources() provider.CredentialInfo {
	return provider.CredentialInfo{EnvVars: []string{"OPENROUTER_API_KEY"}}
}

func (o OpenRouter) FetchStrategies() []fetch.Strategy {
	timeout := config.Get().Fetch.Timeout
	return []fetch.Strategy{&APIKeyStrategy{HTTPTimeout: timeout}}
}

func (o OpenRouter) FetchStatus(ctx context.Context) models.ProviderStatus {
	return provider.FetchOnlineOrNotStatus(ctx, "https://status.openrouter.ai")
}

func init() {
	provider.Register(OpenRouter{})
}

// creditsURL is a var so tests can point the strategy at a local server.
var creditsURL = "https://openrouter.ai/api/v1/credits"

// APIKeyStrategy fetches OpenRouter usage from the credits endpoint.
// Transient failures are retried with backoff; a 429 Retry-After header
// raises the delay floor.
type APIKeyStrategy struct {
	HTTPTimeout float64
	RetryPolicy *retry.Policy
}

func (s *APIKeyStrategy) Name() string { return "api_key" }

func (s *APIKeyStrategy) IsAvailable() bool {
	return s.loadToken() != ""
}

func (s *APIKeyStrategy) Fetch(ctx context.Context) (fetch.FetchResult, error) {
	token := s.loadToken()
	if token == "" {
		return fetch.ResultFail(apperr.New(apperr.CategoryAuthentication, apperr.SeverityRecoverable,
			"No API key found").WithProvider("openrouter").
			WithRemediation("Set OPENROUTER_API_KEY or place a key in the credential store.")), nil
	}

	policy := retry.DefaultPolicy()
	if s.RetryPolicy != nil {
		policy = *s.RetryPolicy
	}

	client := httpclient.NewFromConfig(s.HTTPTimeout)
	var parsed CreditsResponse
	var lastResp *httpclient.Response

	err := retry.Do(ctx, policy, func(ctx context.Context) (time.Duration, error) {
		resp, err := client.GetJSONCtx(ctx, creditsURL, &parsed, httpclient.WithBearer(token))
		if err != nil {
			return 0, apperr.Classify(err)
		}
		lastResp = resp
		if resp.StatusCode != 200 {
			return resp.RetryAfter(), apperr.FromHTTPStatus(resp.StatusCode, resp.Body)
		}
		return 0, nil
	})
	if err != nil {
		// HTTP-level failure: the shared response check sets the
		// fallback semantics (429 is fatal, 5xx falls through).
		if lastResp != nil && lastResp.StatusCode != 200 {
			if r := provider.CheckResponse(lastResp, "openrouter", "OpenRouter"); r != nil {
				return *r, nil
			}
		}
		return fetch.ResultFail(apperr.Classify(err).WithProvider("openrouter")), nil
	}
	if r := provider.CheckResponse(lastResp, "openrouter", "OpenRouter"); r != nil {
		return *r, nil
	}

	return fetch.ResultOK(*parseCreditsSnapshot(parsed)), nil
}

func (s *APIKeyStrategy) loadToken() string {
	src := provider.APIKeySource{
		EnvVars:  []string{"OPENROUTER_API_KEY"},
		CredPath: config.CredentialPath("openrouter", "apikey"),
		JSONKeys: []string{"api_key"},
	}
	return src.Load()
}

// CreditsResponse represents the response from GET /api/v1/credits.
type CreditsResponse struct {
	Data CreditsData `json:"data"`
}

type CreditsData struct {
	TotalCredits float64 `json:"total_credits"` // total credits purchased
	TotalUsage   float64 `json:"total_usage"`   // total credits consumed
}

func parseCreditsSnapshot(resp CreditsResponse) *models.UsageSnapshot {
	total := resp.Data.TotalCredits
	used := resp.Data.TotalUsage
	if total < 0 {
		total = 0
	}
	if used < 0 {
		used = 0
	}

	// Overspend reports above 100; the display layer clamps the bar.
	utilization := 0
	if total > 0 {
		utilization = int((used / total) * 100)
	}

	return &models.UsageSnapshot{
		Provider:  "openrouter",
		FetchedAt: time.Now().UTC(),
		Periods: []models.UsagePeriod{
			{
				Name:        "Credits",
				Utilization: utilization,
				PeriodType:  models.PeriodBilling,
			},
		},
		Overage: &models.OverageUsage{
			Used:      used,
			Limit:     total,
			Currency:  "USD",
			IsEnabled: true,
		},
		Source: "api_key",
	}
}
