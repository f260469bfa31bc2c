package claude

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/burnratehq/burnrate/internal/apperr"
	"github.com/burnratehq/burnrate/internal/config"
	"github.com/burnratehq/burnrate/internal/models"
)

func TestParseUsageResponse_StandardPeriods(t *testing.T) {
	resp := UsageResponse{
		FiveHour: &UsagePeriodResponse{Utilization: 42.7, ResetsAt: "2026-08-24T18:00:00Z"},
		SevenDay: &UsagePeriodResponse{Utilization: 81.0},
		Monthly:  &UsagePeriodResponse{Utilization: 12.0},
	}

	snap := parseUsageResponse(resp, "oauth")

	if snap.Provider != "claude" || snap.Source != "oauth" {
		t.Errorf("provider/source = %q/%q", snap.Provider, snap.Source)
	}
	if len(snap.Periods) != 3 {
		t.Fatalf("periods = %d, want 3", len(snap.Periods))
	}
	if snap.Periods[0].Utilization != 42 || snap.Periods[0].PeriodType != models.PeriodSession {
		t.Errorf("session period = %+v", snap.Periods[0])
	}
	if snap.Periods[0].ResetsAt == nil {
		t.Error("expected resets_at to be parsed")
	}
	if snap.Periods[1].PeriodType != models.PeriodWeekly {
		t.Errorf("seven_day type = %v", snap.Periods[1].PeriodType)
	}
}

func TestParseUsageResponse_ModelPeriodsAndOverage(t *testing.T) {
	resp := UsageResponse{
		SevenDay:       &UsagePeriodResponse{Utilization: 50},
		SevenDaySonnet: &UsagePeriodResponse{Utilization: 30},
		SevenDayOpus:   &UsagePeriodResponse{Utilization: 90},
		ExtraUsage:     &ExtraUsageResponse{IsEnabled: true, UsedCredits: 1250, MonthlyLimit: 5000},
		Plan:           "max_20x",
	}

	snap := parseUsageResponse(resp, "oauth")

	if len(snap.Periods) != 3 {
		t.Fatalf("periods = %d, want 3", len(snap.Periods))
	}
	if snap.Overage == nil {
		t.Fatal("expected overage")
	}
	if snap.Overage.Used != 12.5 || snap.Overage.Limit != 50.0 {
		t.Errorf("overage = %+v, want cents converted to dollars", snap.Overage)
	}
	if snap.Identity == nil || snap.Identity.Plan != "max_20x" {
		t.Errorf("identity = %+v", snap.Identity)
	}
}

func TestParseUsageResponse_DisabledOverageIgnored(t *testing.T) {
	resp := UsageResponse{
		FiveHour:   &UsagePeriodResponse{Utilization: 10},
		ExtraUsage: &ExtraUsageResponse{IsEnabled: false, UsedCredits: 100, MonthlyLimit: 500},
	}
	if snap := parseUsageResponse(resp, "oauth"); snap.Overage != nil {
		t.Errorf("overage = %+v, want nil when disabled", snap.Overage)
	}
}

func TestParseUsageResponse_NoPeriods(t *testing.T) {
	if snap := parseUsageResponse(UsageResponse{Plan: "pro"}, "oauth"); snap != nil {
		t.Errorf("expected nil snapshot, got %+v", snap)
	}
}

func TestOAuthFetch_NoUsagePeriods(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"plan":"pro"}`)
	}))
	t.Cleanup(srv.Close)

	prev := usageURL
	usageURL = srv.URL
	t.Cleanup(func() { usageURL = prev })

	t.Setenv("BURNRATE_CONFIG_DIR", t.TempDir())
	credPath := config.CredentialPath("claude", "oauth")
	if err := config.WriteCredential(credPath, []byte(`{"access_token":"tok"}`)); err != nil {
		t.Fatal(err)
	}

	s := &OAuthStrategy{}
	result, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Fatal("expected failure when the response carries no usage periods")
	}
	if result.Err == nil || result.Err.Category != apperr.CategoryParse {
		t.Errorf("err = %+v, want parse category", result.Err)
	}
}

func TestCredentialsExpired(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt string
		want      bool
	}{
		{"no expiry", "", false},
		{"far future", "2026-08-24T13:00:00Z", false},
		{"within leeway", "2026-08-24T12:03:00Z", true},
		{"past", "2026-08-24T11:00:00Z", true},
		{"unparseable", "not-a-time", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Credentials{AccessToken: "tok", ExpiresAt: tt.expiresAt}
			if got := c.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCLIOAuthToCredentials(t *testing.T) {
	cli := CLIOAuth{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    1756000000000, // milliseconds
	}

	creds := cli.ToCredentials()

	if creds.AccessToken != "access" || creds.RefreshToken != "refresh" {
		t.Errorf("tokens = %+v", creds)
	}
	parsed, err := time.Parse(time.RFC3339, creds.ExpiresAt)
	if err != nil {
		t.Fatalf("ExpiresAt %q not RFC 3339: %v", creds.ExpiresAt, err)
	}
	if parsed.UnixMilli() != 1756000000000 {
		t.Errorf("ExpiresAt = %v, want original millisecond timestamp", parsed)
	}
}

func TestParseCLIOutput(t *testing.T) {
	output := "Claude usage\n" +
		"\x1b[32m█\x1b[0m 42% (Current session)\n" +
		"\x1b[33m█ 81.5% (Current week, all models)\x1b[0m\n" +
		"█ 12% [Current month]\n" +
		"some other line\n"

	snap := parseCLIOutput(output)
	if snap == nil {
		t.Fatal("expected snapshot")
	}
	if len(snap.Periods) != 3 {
		t.Fatalf("periods = %d, want 3", len(snap.Periods))
	}
	if snap.Periods[0].Name != "Current session" || snap.Periods[0].Utilization != 42 {
		t.Errorf("first period = %+v", snap.Periods[0])
	}
	if snap.Periods[0].PeriodType != models.PeriodSession {
		t.Errorf("session type = %v", snap.Periods[0].PeriodType)
	}
	if snap.Periods[1].Utilization != 81 {
		t.Errorf("second utilization = %d, want truncated 81", snap.Periods[1].Utilization)
	}
	if snap.Periods[2].PeriodType != models.PeriodMonthly {
		t.Errorf("month type = %v", snap.Periods[2].PeriodType)
	}
	if snap.Source != "cli" {
		t.Errorf("source = %q", snap.Source)
	}
}

func TestParseCLIOutput_NoUsageLines(t *testing.T) {
	if snap := parseCLIOutput("nothing relevant here\n"); snap != nil {
		t.Errorf("expected nil, got %+v", snap)
	}
}

func TestClassifyPeriod(t *testing.T) {
	tests := []struct {
		name string
		want models.PeriodType
	}{
		{"Current session", models.PeriodSession},
		{"5 hour window", models.PeriodSession},
		{"Today", models.PeriodDaily},
		{"Current week", models.PeriodWeekly},
		{"Current month", models.PeriodMonthly},
		{"Billing period", models.PeriodMonthly},
		{"Mystery", models.PeriodDaily},
	}
	for _, tt := range tests {
		if got := classifyPeriod(tt.name); got != tt.want {
			t.Errorf("classifyPeriod(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
