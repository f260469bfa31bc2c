package provider

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/burnratehq/burnrate/internal/config"
)

// APIKeySource describes where to find an API key for a provider. Declare one
// per provider and call Load() from both IsAvailable and Fetch.
type APIKeySource struct {
	EnvVars  []string // environment variables to check, in order
	CredPath string   // credential file path
	JSONKeys []string // JSON keys to try within the credential file
}

// Load checks environment variables and then the credential file for an API
// key. Returns the first non-empty value found, or "".
func (s APIKeySource) Load() string {
	for _, env := range s.EnvVars {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	data := config.ReadCredential(config.ExpandPath(s.CredPath))
	if data == nil {
		return ""
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return ""
	}
	for _, key := range s.JSONKeys {
		if v := strings.TrimSpace(raw[key]); v != "" {
			return v
		}
	}
	return ""
}

// CheckCredentials reports whether the given provider has usable
// credentials, via its external CLI paths, environment variables, or
// an available fetch strategy.
func CheckCredentials(providerID string) (bool, string) {
	p, ok := Get(providerID)
	if !ok {
		return false, ""
	}

	info := p.CredentialSources()
	for _, env := range info.EnvVars {
		if strings.TrimSpace(os.Getenv(env)) != "" {
			return true, "environment"
		}
	}
	for _, path := range info.CLIPaths {
		if _, err := os.Stat(config.ExpandPath(path)); err == nil {
			return true, "provider_cli"
		}
	}

	for _, s := range p.FetchStrategies() {
		if s.IsAvailable() {
			return true, "strategy"
		}
	}
	return false, ""
}

// CountConfigured returns the number of registered providers that
// have credentials.
func CountConfigured() int {
	count := 0
	for id := range All() {
		if has, _ := CheckCredentials(id); has {
			count++
		}
	}
	return count
}
