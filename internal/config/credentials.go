package config

import (
	"os"
	"path/filepath"
)

// CredentialPath returns the path of a burnrate-managed credential file
// under credentials/<provider>/. The contents are opaque to the core.
func CredentialPath(providerID, credType string) string {
	return filepath.Join(CredentialsDir(), providerID, credType+".json")
}

// ReadCredential reads a credential file, returning nil when absent.
func ReadCredential(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return data
}

// WriteCredential writes a credential file with owner-only permissions.
func WriteCredential(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o600)
}

// ExpandPath expands a leading "~/" to the user's home directory.
func ExpandPath(p string) string {
	if len(p) > 1 && p[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}

// CredentialSearchPaths lists where a provider's credentials may live:
// burnrate's own storage first, then external CLI paths.
func CredentialSearchPaths(providerID, credType string, external ...string) []string {
	paths := []string{CredentialPath(providerID, credType)}
	for _, p := range external {
		paths = append(paths, ExpandPath(p))
	}
	return paths
}
