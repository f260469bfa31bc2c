package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

type DisplayConfig struct {
	NoColor bool `toml:"no_color" json:"no_color"`
	JSON    bool `toml:"json" json:"json"`
}

type FetchConfig struct {
	Timeout               float64 `toml:"timeout" json:"timeout"`
	MaxConcurrent         int     `toml:"max_concurrent" json:"max_concurrent"`
	StaleThresholdMinutes int     `toml:"stale_threshold_minutes" json:"stale_threshold_minutes"`
}

type ProviderConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
}

type Config struct {
	EnabledProviders []string                  `toml:"enabled_providers" json:"enabled_providers"`
	Display          DisplayConfig             `toml:"display" json:"display"`
	Fetch            FetchConfig               `toml:"fetch" json:"fetch"`
	Providers        map[string]ProviderConfig `toml:"providers" json:"providers"`
}

func DefaultConfig() Config {
	return Config{
		EnabledProviders: nil,
		Display:          DisplayConfig{},
		Fetch: FetchConfig{
			Timeout:               30.0,
			MaxConcurrent:         5,
			StaleThresholdMinutes: 60,
		},
		Providers: make(map[string]ProviderConfig),
	}
}

func (c Config) clone() Config {
	out := c
	if c.EnabledProviders != nil {
		out.EnabledProviders = make([]string, len(c.EnabledProviders))
		copy(out.EnabledProviders, c.EnabledProviders)
	}
	out.Providers = make(map[string]ProviderConfig, len(c.Providers))
	for k, v := range c.Providers {
		out.Providers[k] = v
	}
	return out
}

// IsProviderEnabled reports whether a provider should be fetched. An
// explicit `[providers.<id>] enabled = false` always disables; an
// empty enabled_providers list means "all".
func (c Config) IsProviderEnabled(providerID string) bool {
	if pc, ok := c.Providers[providerID]; ok && !pc.Enabled {
		return false
	}
	if len(c.EnabledProviders) == 0 {
		return true
	}
	for _, id := range c.EnabledProviders {
		if id == providerID {
			return true
		}
	}
	return false
}

var (
	globalConfig *Config
	configMu     sync.RWMutex
)

func Get() Config {
	configMu.RLock()
	if c := globalConfig; c != nil {
		configMu.RUnlock()
		return c.clone()
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()
	if globalConfig != nil {
		return globalConfig.clone()
	}
	c, _ := Load("")
	globalConfig = &c
	return c.clone()
}

// Init loads the config from disk into the global, surfacing parse
// errors so the CLI can warn about malformed files.
func Init() (Config, error) {
	return Reload()
}

func Reload() (Config, error) {
	configMu.Lock()
	defer configMu.Unlock()
	c, err := Load("")
	globalConfig = &c
	return c.clone(), err
}

func set(cfg Config) {
	configMu.Lock()
	defer configMu.Unlock()
	globalConfig = &cfg
}

func Load(path string) (Config, error) {
	if path == "" {
		path = ConfigFile()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return applyEnvOverrides(cfg), nil
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return applyEnvOverrides(DefaultConfig()), fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}

	return applyEnvOverrides(cfg), nil
}

func Save(cfg Config, path string) error {
	if path == "" {
		path = ConfigFile()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg Config) Config {
	if v := os.Getenv("BURNRATE_ENABLED_PROVIDERS"); v != "" {
		parts := strings.Split(v, ",")
		var providers []string
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				providers = append(providers, p)
			}
		}
		cfg.EnabledProviders = providers
	}
	if os.Getenv("BURNRATE_NO_COLOR") != "" {
		cfg.Display.NoColor = true
	}
	return cfg
}
