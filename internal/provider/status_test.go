package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/burnratehq/burnrate/internal/models"
)

func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic("writeJSON: " + err.Error())
	}
}

func TestFetchStatuspageStatus_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"status": map[string]any{
				"indicator":   "none",
				"description": "All Systems Operational",
			},
		})
	}))
	defer srv.Close()

	status := FetchStatuspageStatus(context.Background(), srv.URL)

	if status.Level != models.StatusOperational {
		t.Errorf("expected StatusOperational, got %v", status.Level)
	}
	if status.Description != "All Systems Operational" {
		t.Errorf("expected description 'All Systems Operational', got %q", status.Description)
	}
	if status.UpdatedAt == nil {
		t.Error("expected UpdatedAt to be set")
	}
}

func TestFetchStatuspageStatus_Indicators(t *testing.T) {
	tests := []struct {
		indicator string
		want      models.StatusLevel
	}{
		{"none", models.StatusOperational},
		{"minor", models.StatusDegraded},
		{"major", models.StatusPartialOutage},
		{"critical", models.StatusMajorOutage},
		{"bogus", models.StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.indicator, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, map[string]any{
					"status": map[string]any{
						"indicator":   tt.indicator,
						"description": "test",
					},
				})
			}))
			defer srv.Close()

			status := FetchStatuspageStatus(context.Background(), srv.URL)
			if status.Level != tt.want {
				t.Errorf("indicator %q: got %v, want %v", tt.indicator, status.Level, tt.want)
			}
		})
	}
}

func TestFetchStatuspageStatus_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	status := fetchStatuspageStatusFromURL(context.Background(), srv.URL)
	if status.Level != models.StatusUnknown {
		t.Errorf("expected StatusUnknown on server error, got %v", status.Level)
	}
}

func TestFetchOnlineOrNotStatus_NoIncidents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(`<?xml version="1.0"?><rss><channel></channel></rss>`))
	}))
	defer srv.Close()

	status := fetchOnlineOrNotStatusFromURL(context.Background(), srv.URL)
	if status.Level != models.StatusOperational {
		t.Errorf("expected StatusOperational with empty feed, got %v", status.Level)
	}
}

func TestParseOnlineOrNotFeed_UnresolvedIncident(t *testing.T) {
	recent := time.Now().UTC().Format(time.RFC1123)
	feed := rssFeed{Channel: rssChannel{Items: []rssItem{
		{Title: "API latency", Description: "Investigating elevated errors", PubDate: recent},
	}}}

	status := parseOnlineOrNotFeed(feed)
	if status.Level != models.StatusDegraded {
		t.Errorf("expected StatusDegraded, got %v", status.Level)
	}
	if status.Description != "API latency" {
		t.Errorf("description = %q", status.Description)
	}
}

func TestParseOnlineOrNotFeed_ResolvedAndOldIncidents(t *testing.T) {
	recent := time.Now().UTC().Format(time.RFC1123)
	old := time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC1123)
	feed := rssFeed{Channel: rssChannel{Items: []rssItem{
		{Title: "Fixed outage", Description: "RESOLVED: all clear", PubDate: recent},
		{Title: "Ancient outage", Description: "Investigating", PubDate: old},
	}}}

	status := parseOnlineOrNotFeed(feed)
	if status.Level != models.StatusOperational {
		t.Errorf("expected StatusOperational, got %v", status.Level)
	}
}
