package provider

import (
	"context"
	"encoding/xml"
	"strings"
	"time"

	"github.com/burnratehq/burnrate/internal/httpclient"
	"github.com/burnratehq/burnrate/internal/models"
)

// statuspageAPIPath is the standard Statuspage.io API path for current status.
const statuspageAPIPath = "/api/v2/status.json"

// FetchStatuspageStatus fetches status from a Statuspage.io base URL.
// Pass the base status page URL (e.g., "https://status.anthropic.com"),
// and the function will append the standard API path.
func FetchStatuspageStatus(ctx context.Context, baseURL string) models.ProviderStatus {
	url := strings.TrimSuffix(baseURL, "/") + statuspageAPIPath
	return fetchStatuspageStatusFromURL(ctx, url)
}

// fetchStatuspageStatusFromURL is the testable core of FetchStatuspageStatus.
func fetchStatuspageStatusFromURL(ctx context.Context, url string) models.ProviderStatus {
	client := httpclient.NewWithTimeout(10 * time.Second)
	var data struct {
		Status struct {
			Indicator   string `json:"indicator"`
			Description string `json:"description"`
		} `json:"status"`
	}
	resp, err := client.GetJSONCtx(ctx, url, &data)
	if err != nil || resp.JSONErr != nil {
		return models.ProviderStatus{Level: models.StatusUnknown}
	}

	level := indicatorToLevel(data.Status.Indicator)
	now := time.Now().UTC()
	return models.ProviderStatus{
		Level:       level,
		Description: data.Status.Description,
		UpdatedAt:   &now,
	}
}

func indicatorToLevel(indicator string) models.StatusLevel {
	switch strings.ToLower(indicator) {
	case "none":
		return models.StatusOperational
	case "minor":
		return models.StatusDegraded
	case "major":
		return models.StatusPartialOutage
	case "critical":
		return models.StatusMajorOutage
	default:
		return models.StatusUnknown
	}
}

// onlineOrNotRSSPath is the standard OnlineOrNot RSS feed path.
const onlineOrNotRSSPath = "/incidents.rss"

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssFeed struct {
	Channel rssChannel `xml:"channel"`
}

// FetchOnlineOrNotStatus fetches status from an OnlineOrNot base URL.
// Pass the base status page URL (e.g., "https://status.openrouter.ai"),
// and the function will append the standard RSS feed path.
func FetchOnlineOrNotStatus(ctx context.Context, baseURL string) models.ProviderStatus {
	rssURL := strings.TrimSuffix(baseURL, "/") + onlineOrNotRSSPath
	return fetchOnlineOrNotStatusFromURL(ctx, rssURL)
}

func fetchOnlineOrNotStatusFromURL(ctx context.Context, rssURL string) models.ProviderStatus {
	client := httpclient.NewWithTimeout(10 * time.Second)

	resp, err := client.DoCtx(ctx, "GET", rssURL, nil)
	if err != nil || resp.StatusCode != 200 {
		return models.ProviderStatus{Level: models.StatusUnknown}
	}

	var feed rssFeed
	if err := xml.Unmarshal(resp.Body, &feed); err != nil {
		return models.ProviderStatus{Level: models.StatusUnknown}
	}

	return parseOnlineOrNotFeed(feed)
}

// parseOnlineOrNotFeed reports degraded when an incident from the last
// 24 hours has not been marked resolved.
func parseOnlineOrNotFeed(feed rssFeed) models.ProviderStatus {
	now := time.Now().UTC()

	if len(feed.Channel.Items) == 0 {
		return models.ProviderStatus{
			Level:       models.StatusOperational,
			Description: "All systems operational",
			UpdatedAt:   &now,
		}
	}

	const lookbackWindow = 24 * time.Hour
	cutoff := now.Add(-lookbackWindow)

	var unresolved []rssItem
	for _, item := range feed.Channel.Items {
		pubDate, err := time.Parse(time.RFC1123, item.PubDate)
		if err == nil && pubDate.Before(cutoff) {
			continue
		}
		if !strings.Contains(strings.ToLower(item.Description), "resolved") {
			unresolved = append(unresolved, item)
		}
	}

	if len(unresolved) > 0 {
		return models.ProviderStatus{
			Level:       models.StatusDegraded,
			Description: unresolved[0].Title,
			UpdatedAt:   &now,
		}
	}

	return models.ProviderStatus{
		Level:       models.StatusOperational,
		Description: "All systems operational",
		UpdatedAt:   &now,
	}
}
