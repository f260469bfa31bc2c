package claude

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/burnratehq/burnrate/internal/apperr"
	"github.com/burnratehq/burnrate/internal/config"
	"github.com/burnratehq/burnrate/internal/fetch"
	"github.com/burnratehq/burnrate/internal/httpclient"
	"github.com/burnratehq/burnrate/internal/provider"
)

const (
	oauthUsageURL    = "https://api.anthropic.com/api/oauth/usage"
	anthropicBetaTag = "oauth-2025-04-20"
)

// usageURL is a var so tests can point the strategy at a local server.
var usageURL = oauthUsageURL

// OAuthStrategy fetches Claude usage using OAuth credentials written by
// the Claude CLI (or placed in burnrate's own credential store).
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
			"No OAuth credentials found").WithProvider("claude")), nil
	}

	if creds.AccessToken == "" {
		return fetch.ResultFail(apperr.New(apperr.CategoryAuthentication, apperr.SeverityRecoverable,
			"Invalid OAuth credentials: missing access_token").WithProvider("claude")), nil
	}

	if creds.Expired(time.Now()) {
		return fetch.ResultFail(apperr.New(apperr.CategoryAuthentication, apperr.SeverityRecoverable,
			"OAuth token expired").WithProvider("claude").
			WithRemediation("Sign in with the Claude CLI again to refresh the token.")), nil
	}

	client := httpclient.NewFromConfig(s.HTTPTimeout)
	var usageResp UsageResponse
	resp, err := client.GetJSONCtx(ctx, usageURL, &usageResp,
		httpclient.WithBearer(creds.AccessToken),
		httpclient.WithHeader("anthropic-beta", anthropicBetaTag),
	)
	if err != nil {
		return fetch.ResultFail(apperr.Classify(err).WithProvider("claude")), nil
	}
	if r := provider.CheckResponse(resp, "claude", "Claude"); r != nil {
		return *r, nil
	}

	snapshot := parseUsageResponse(usageResp, "oauth")
	if snapshot == nil {
		return fetch.ResultFail(apperr.New(apperr.CategoryParse, apperr.SeverityRecoverable,
			"Usage response contained no usage periods").WithProvider("claude")), nil
	}

	return fetch.ResultOK(*snapshot), nil
}

func (s *OAuthStrategy) credentialPaths() []string {
	return config.CredentialSearchPaths("claude", "oauth", "~/.claude/.credentials.json")
}

// loadCredentials reads the first readable credential file, accepting
// both the Claude CLI format and the flat token format.
func (s *OAuthStrategy) loadCredentials() *Credentials {
	for _, path := range s.credentialPaths() {
		data := config.ReadCredential(path)
		if data == nil {
			continue
		}

		var cliCreds CLICredentials
		if err := json.Unmarshal(data, &cliCreds); err == nil && cliCreds.ClaudeAiOauth != nil {
			creds := cliCreds.ClaudeAiOauth.ToCredentials()
			if creds.AccessToken != "" {
				return &creds
			}
		}

		var creds Credentials
		if err := json.Unmarshal(data, &creds); err != nil {
			continue
		}
		if creds.AccessToken != "" {
			return &creds
		}
	}
	return nil
}
