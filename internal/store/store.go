// Package store owns the on-disk cache: usage snapshots, gate state,
// and org ids. All operations are whole-file reads and writes; there is
// no cross-process locking and the last writer wins. Corrupt files are
// treated as absent and recreated on the next write.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/burnratehq/burnrate/internal/config"
	"github.com/burnratehq/burnrate/internal/models"
)

type Store struct {
	snapshotsDir string
	orgIDsDir    string
	gateDir      string
}

// New creates a store rooted at the given cache directory.
func New(root string) *Store {
	return &Store{
		snapshotsDir: filepath.Join(root, "snapshots"),
		orgIDsDir:    filepath.Join(root, "org_ids"),
		gateDir:      filepath.Join(root, "gate"),
	}
}

// Default returns a store rooted at the platform cache directory.
func Default() *Store {
	return New(config.CacheDir())
}

func (s *Store) SnapshotPath(providerID string) string {
	return filepath.Join(s.snapshotsDir, providerID+".json")
}

func (s *Store) GatePath(providerID string) string {
	return filepath.Join(s.gateDir, providerID+".json")
}

func (s *Store) OrgIDPath(providerID string) string {
	return filepath.Join(s.orgIDsDir, providerID+".txt")
}

func (s *Store) SaveSnapshot(snap models.UsageSnapshot) error {
	if err := models.ValidateSnapshot(snap); err != nil {
		return fmt.Errorf("caching snapshot for %s: %w", snap.Provider, err)
	}
	return writeJSON(s.SnapshotPath(snap.Provider), snap)
}

// LoadSnapshot returns the cached snapshot for a provider, or nil when
// absent, corrupt, or invalid.
func (s *Store) LoadSnapshot(providerID string) *models.UsageSnapshot {
	data, err := os.ReadFile(s.SnapshotPath(providerID))
	if err != nil {
		return nil
	}
	var snap models.UsageSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil
	}
	if err := models.ValidateSnapshot(snap); err != nil {
		return nil
	}
	return &snap
}

// SnapshotAge returns how old the cached snapshot is, or nil when none
// exists.
func (s *Store) SnapshotAge(providerID string) *time.Duration {
	snap := s.LoadSnapshot(providerID)
	if snap == nil {
		return nil
	}
	age := time.Since(snap.FetchedAt)
	return &age
}

// IsFresh reports whether a cached snapshot exists and is younger than
// maxAge.
func (s *Store) IsFresh(providerID string, maxAge time.Duration) bool {
	age := s.SnapshotAge(providerID)
	return age != nil && *age <= maxAge
}

func (s *Store) SaveGate(state models.GateState) error {
	return writeJSON(s.GatePath(state.Provider), state)
}

// LoadGate returns the persisted gate state for a provider, or nil when
// absent or corrupt.
func (s *Store) LoadGate(providerID string) *models.GateState {
	data, err := os.ReadFile(s.GatePath(providerID))
	if err != nil {
		return nil
	}
	var state models.GateState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil
	}
	if state.Provider == "" {
		state.Provider = providerID
	}
	return &state
}

func (s *Store) SaveOrgID(providerID, orgID string) error {
	path := s.OrgIDPath(providerID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("caching org id for %s: %w", providerID, err)
	}
	return os.WriteFile(path, []byte(orgID), 0o644)
}

func (s *Store) LoadOrgID(providerID string) string {
	data, err := os.ReadFile(s.OrgIDPath(providerID))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ClearSnapshot removes one provider's snapshot, or all snapshots when
// providerID is empty.
func (s *Store) ClearSnapshot(providerID string) {
	if providerID != "" {
		_ = os.Remove(s.SnapshotPath(providerID))
		return
	}
	removeAll(s.snapshotsDir)
}

// ClearOrgID removes one provider's org id, or all when providerID is
// empty.
func (s *Store) ClearOrgID(providerID string) {
	if providerID != "" {
		_ = os.Remove(s.OrgIDPath(providerID))
		return
	}
	removeAll(s.orgIDsDir)
}

// ClearGate removes one provider's gate state, or all when providerID
// is empty.
func (s *Store) ClearGate(providerID string) {
	if providerID != "" {
		_ = os.Remove(s.GatePath(providerID))
		return
	}
	removeAll(s.gateDir)
}

// ClearAll removes snapshot, org id, and gate state for one provider,
// or everything when providerID is empty.
func (s *Store) ClearAll(providerID string) {
	s.ClearSnapshot(providerID)
	s.ClearOrgID(providerID)
	s.ClearGate(providerID)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func removeAll(dir string) {
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		_ = os.Remove(filepath.Join(dir, e.Name()))
	}
}
