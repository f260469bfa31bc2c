package claude

import (
	"context"

	"github.com/burnratehq/burnrate/internal/config"
	"github.com/burnratehq/burnrate/internal/fetch"
	"github.com/burnratehq/burnrate/internal/models"
	"github.com/burnratehq/burnrate/internal/provider"
)

type Claude struct{}

func (c Claude) Meta() provider.Metadata {
	return provider.Metadata{
		ID:           "claude",
		Name:         "Claude",
		Description:  "Anthropic's Claude AI assistant",
		Homepage:     "https://claude.ai",
		StatusURL:    "https://status.anthropic.com",
		DashboardURL: "https://claude.ai/settings/usage",
	}
}

func (c Claude) CredentialSources() provider.CredentialInfo {
	return provider.CredentialInfo{
		CLIPaths: []string{"~/.claude/.credentials.json"},
		EnvVars:  []string{"ANTHROPIC_API_KEY"},
	}
}

func (c Claude) FetchStrategies() []fetch.Strategy {
	timeout := config.Get().Fetch.Timeout
	return []fetch.Strategy{
		&OAuthStrategy{HTTPTimeout: timeout},
		&CLIStrategy{},
	}
}

func (c Claude) FetchStatus(ctx context.Context) models.ProviderStatus {
	return provider.FetchStatuspageStatus(ctx, "https://status.anthropic.com")
}

func init() {
	provider.Register(Claude{})
}
