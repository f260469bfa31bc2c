package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "burnrate"

func ConfigDir() string {
	if v := os.Getenv("BURNRATE_CONFIG_DIR"); v != "" {
		return v
	}
	return filepath.Join(xdg.ConfigHome, appName)
}

func CacheDir() string {
	if v := os.Getenv("BURNRATE_CACHE_DIR"); v != "" {
		return v
	}
	return filepath.Join(xdg.CacheHome, appName)
}

func CredentialsDir() string { return filepath.Join(ConfigDir(), "credentials") }
func SnapshotsDir() string   { return filepath.Join(CacheDir(), "snapshots") }
func OrgIDsDir() string      { return filepath.Join(CacheDir(), "org_ids") }
func GateDir() string        { return filepath.Join(CacheDir(), "gate") }
func ConfigFile() string     { return filepath.Join(ConfigDir(), "config.toml") }
