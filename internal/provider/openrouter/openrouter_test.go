package openrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/burnratehq/burnrate/internal/apperr"
	"github.com/burnratehq/burnrate/internal/models"
	"github.com/burnratehq/burnrate/internal/retry"
)

func fastPolicy(attempts int) *retry.Policy {
	return &retry.Policy{
		MaxAttempts:     attempts,
		BaseDelay:       time.Millisecond,
		MaxDelay:        10 * time.Millisecond,
		ExponentialBase: 2.0,
	}
}

func withCreditsURL(t *testing.T, url string) {
	t.Helper()
	orig := creditsURL
	creditsURL = url
	t.Cleanup(func() { creditsURL = orig })
}

func TestAPIKeyStrategy_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-or-test" {
			w.WriteHeader(401)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"total_credits":100,"total_usage":25}}`))
	}))
	defer srv.Close()
	withCreditsURL(t, srv.URL)
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")

	s := &APIKeyStrategy{RetryPolicy: fastPolicy(1)}
	result, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result.Err)
	}
	snap := result.Snapshot
	if len(snap.Periods) != 1 || snap.Periods[0].Utilization != 25 {
		t.Errorf("periods = %+v", snap.Periods)
	}
	if snap.Overage == nil || snap.Overage.Used != 25 || snap.Overage.Limit != 100 {
		t.Errorf("overage = %+v", snap.Overage)
	}
}

func TestAPIKeyStrategy_RetriesServerErrors(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) < 3 {
			w.WriteHeader(503)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"total_credits":10,"total_usage":1}}`))
	}))
	defer srv.Close()
	withCreditsURL(t, srv.URL)
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")

	s := &APIKeyStrategy{RetryPolicy: fastPolicy(3)}
	result, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("expected success after retries, got %+v", result.Err)
	}
	if got := atomic.LoadInt64(&calls); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestAPIKeyStrategy_RateLimitIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(429)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()
	withCreditsURL(t, srv.URL)
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")

	s := &APIKeyStrategy{RetryPolicy: fastPolicy(2)}
	result, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Error("expected failure")
	}
	if result.ShouldFallback {
		t.Error("rate limit must not fall through")
	}
	if result.Err.Category != apperr.CategoryRateLimited {
		t.Errorf("category = %q", result.Err.Category)
	}
}

func TestAPIKeyStrategy_InvalidKeyFallsThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()
	withCreditsURL(t, srv.URL)
	t.Setenv("OPENROUTER_API_KEY", "sk-or-bad")

	s := &APIKeyStrategy{RetryPolicy: fastPolicy(3)}
	result, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Error("expected failure")
	}
	if !result.ShouldFallback {
		t.Error("auth failure should allow the next strategy")
	}
	if result.Err.Category != apperr.CategoryAuthentication {
		t.Errorf("category = %q", result.Err.Category)
	}
}

func TestAPIKeyStrategy_NoKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")

	s := &APIKeyStrategy{}
	if s.IsAvailable() {
		t.Skip("credential file present outside test control")
	}

	result, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Error("expected failure without a key")
	}
	if result.Err.Category != apperr.CategoryAuthentication {
		t.Errorf("category = %q", result.Err.Category)
	}
}

func TestParseCreditsSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		credits CreditsData
		wantPct int
	}{
		{"quarter used", CreditsData{TotalCredits: 100, TotalUsage: 25}, 25},
		{"overspent reports above 100", CreditsData{TotalCredits: 10, TotalUsage: 15}, 150},
		{"zero total", CreditsData{TotalCredits: 0, TotalUsage: 5}, 0},
		{"negative values", CreditsData{TotalCredits: -1, TotalUsage: -2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := parseCreditsSnapshot(CreditsResponse{Data: tt.credits})
			if snap.Periods[0].Utilization != tt.wantPct {
				t.Errorf("utilization = %d, want %d", snap.Periods[0].Utilization, tt.wantPct)
			}
			if snap.Periods[0].PeriodType != models.PeriodBilling {
				t.Errorf("period type = %v", snap.Periods[0].PeriodType)
			}
		})
	}
}
