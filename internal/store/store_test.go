package store

import (
	"os"
	"testing"
	"time"

	"github.com/burnratehq/burnrate/internal/models"
)

func testSnapshot(provider string, age time.Duration) models.UsageSnapshot {
	return models.UsageSnapshot{
		Provider:  provider,
		FetchedAt: time.Now().Add(-age).UTC(),
		Periods:   []models.UsagePeriod{{Name: "daily", Utilization: 40, PeriodType: models.PeriodDaily}},
		Source:    "oauth",
	}
}

func TestSnapshotSaveLoad(t *testing.T) {
	s := New(t.TempDir())
	snap := testSnapshot("claude", 0)

	if err := s.SaveSnapshot(snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	got := s.LoadSnapshot("claude")
	if got == nil {
		t.Fatal("LoadSnapshot returned nil")
	}
	if got.Provider != "claude" || got.Source != "oauth" {
		t.Errorf("loaded snapshot = %+v", got)
	}
}

func TestLoadSnapshotAbsent(t *testing.T) {
	s := New(t.TempDir())
	if got := s.LoadSnapshot("nope"); got != nil {
		t.Errorf("expected nil for absent snapshot, got %+v", got)
	}
}

func TestLoadSnapshotCorruptTreatedAsAbsent(t *testing.T) {
	s := New(t.TempDir())
	snap := testSnapshot("claude", 0)
	if err := s.SaveSnapshot(snap); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.SnapshotPath("claude"), []byte("{garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := s.LoadSnapshot("claude"); got != nil {
		t.Errorf("corrupt snapshot should load as nil, got %+v", got)
	}

	// A rewrite recreates the file.
	if err := s.SaveSnapshot(snap); err != nil {
		t.Fatalf("rewrite after corruption: %v", err)
	}
	if got := s.LoadSnapshot("claude"); got == nil {
		t.Error("rewrite should make the snapshot loadable again")
	}
}

func TestLoadSnapshotInvalidTreatedAsAbsent(t *testing.T) {
	s := New(t.TempDir())
	if err := s.SaveSnapshot(testSnapshot("claude", 0)); err != nil {
		t.Fatal(err)
	}
	// Valid JSON, invalid snapshot (no periods).
	if err := os.WriteFile(s.SnapshotPath("claude"), []byte(`{"provider":"claude","fetched_at":"2026-01-01T00:00:00Z","periods":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := s.LoadSnapshot("claude"); got != nil {
		t.Errorf("invalid snapshot should load as nil, got %+v", got)
	}
}

func TestSaveSnapshotRejectsInvalid(t *testing.T) {
	s := New(t.TempDir())
	if err := s.SaveSnapshot(models.UsageSnapshot{Provider: "x"}); err == nil {
		t.Error("expected error saving invalid snapshot")
	}
}

func TestSnapshotAgeAndFreshness(t *testing.T) {
	s := New(t.TempDir())
	if age := s.SnapshotAge("claude"); age != nil {
		t.Errorf("age of missing snapshot = %v, want nil", age)
	}

	if err := s.SaveSnapshot(testSnapshot("claude", 10*time.Minute)); err != nil {
		t.Fatal(err)
	}
	age := s.SnapshotAge("claude")
	if age == nil {
		t.Fatal("expected non-nil age")
	}
	if *age < 10*time.Minute || *age > 11*time.Minute {
		t.Errorf("age = %v, want ≈10m", *age)
	}

	if !s.IsFresh("claude", time.Hour) {
		t.Error("10m-old snapshot should be fresh at 1h threshold")
	}
	if s.IsFresh("claude", time.Minute) {
		t.Error("10m-old snapshot should not be fresh at 1m threshold")
	}
	if s.IsFresh("missing", time.Hour) {
		t.Error("missing snapshot is never fresh")
	}
}

func TestGateSaveLoad(t *testing.T) {
	s := New(t.TempDir())
	until := time.Now().Add(5 * time.Minute).UTC().Truncate(time.Second)
	state := models.GateState{
		Provider: "codex",
		Failures: []models.FailureRecord{
			{Timestamp: time.Now().UTC().Truncate(time.Second), Category: "network", Message: "timeout"},
		},
		GatedUntil:       &until,
		ConsecutiveCount: 3,
	}

	if err := s.SaveGate(state); err != nil {
		t.Fatalf("SaveGate: %v", err)
	}
	got := s.LoadGate("codex")
	if got == nil {
		t.Fatal("LoadGate returned nil")
	}
	if got.ConsecutiveCount != 3 {
		t.Errorf("ConsecutiveCount = %d, want 3", got.ConsecutiveCount)
	}
	if got.GatedUntil == nil || !got.GatedUntil.Equal(until) {
		t.Errorf("GatedUntil = %v, want %v", got.GatedUntil, until)
	}
	if len(got.Failures) != 1 || got.Failures[0].Category != "network" {
		t.Errorf("Failures = %+v", got.Failures)
	}
}

func TestLoadGateCorruptTreatedAsAbsent(t *testing.T) {
	s := New(t.TempDir())
	if err := s.SaveGate(models.GateState{Provider: "codex", ConsecutiveCount: 1}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.GatePath("codex"), []byte("[oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := s.LoadGate("codex"); got != nil {
		t.Errorf("corrupt gate should load as nil, got %+v", got)
	}
}

func TestOrgIDRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	if got := s.LoadOrgID("claude"); got != "" {
		t.Errorf("missing org id = %q, want empty", got)
	}
	if err := s.SaveOrgID("claude", "org-123\n"); err != nil {
		t.Fatalf("SaveOrgID: %v", err)
	}
	if got := s.LoadOrgID("claude"); got != "org-123" {
		t.Errorf("LoadOrgID = %q, want org-123", got)
	}
}

func TestClearPerProviderAndGlobal(t *testing.T) {
	s := New(t.TempDir())
	for _, id := range []string{"claude", "codex"} {
		if err := s.SaveSnapshot(testSnapshot(id, 0)); err != nil {
			t.Fatal(err)
		}
		if err := s.SaveOrgID(id, "org-"+id); err != nil {
			t.Fatal(err)
		}
		if err := s.SaveGate(models.GateState{Provider: id}); err != nil {
			t.Fatal(err)
		}
	}

	s.ClearAll("claude")
	if s.LoadSnapshot("claude") != nil || s.LoadOrgID("claude") != "" || s.LoadGate("claude") != nil {
		t.Error("claude state should be cleared")
	}
	if s.LoadSnapshot("codex") == nil {
		t.Error("codex snapshot should survive per-provider clear")
	}

	s.ClearAll("")
	if s.LoadSnapshot("codex") != nil || s.LoadOrgID("codex") != "" || s.LoadGate("codex") != nil {
		t.Error("global clear should remove everything")
	}
}
