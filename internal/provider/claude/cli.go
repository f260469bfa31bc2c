package claude

import (
	"context"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/burnratehq/burnrate/internal/apperr"
	"github.com/burnratehq/burnrate/internal/fetch"
	"github.com/burnratehq/burnrate/internal/models"
)

var (
	ansiPattern  = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	usagePattern = regexp.MustCompile(`█\s*([\d.]+)%\s*(?:\(([^)]+)\)|\[([^\]]+)\])`)
)

// CLIStrategy reads usage by running the Claude CLI and parsing its
// /usage screen. The process inherits the pipeline's context, so the
// per-strategy timeout kills it.
type CLIStrategy struct{}

func (s *CLIStrategy) Name() string { return "cli" }

func (s *CLIStrategy) IsAvailable() bool {
	_, err := exec.LookPath("claude")
	return err == nil
}

func (s *CLIStrategy) Fetch(ctx context.Context) (fetch.FetchResult, error) {
	cmd := exec.CommandContext(ctx, "claude", "/usage")
	output, err := cmd.Output()
	if err != nil {
		return fetch.ResultFail(apperr.New(apperr.CategoryProvider, apperr.SeverityRecoverable,
			"claude CLI failed: "+err.Error()).WithProvider("claude")), nil
	}

	snapshot := parseCLIOutput(string(output))
	if snapshot == nil {
		return fetch.ResultFail(apperr.New(apperr.CategoryParse, apperr.SeverityRecoverable,
			"Failed to parse claude CLI output").WithProvider("claude")), nil
	}

	return fetch.ResultOK(*snapshot), nil
}

// parseCLIOutput extracts usage periods from ANSI-colored CLI output.
// Usage lines look like "█ 42% (Current session)" after stripping
// color codes.
func parseCLIOutput(output string) *models.UsageSnapshot {
	clean := ansiPattern.ReplaceAllString(output, "")

	var periods []models.UsagePeriod
	for _, line := range strings.Split(clean, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "█") {
			continue
		}
		matches := usagePattern.FindStringSubmatch(line)
		if matches == nil {
			continue
		}
		util, err := strconv.ParseFloat(matches[1], 64)
		if err != nil {
			continue
		}
		periodName := matches[2]
		if periodName == "" {
			periodName = matches[3]
		}
		if periodName == "" {
			periodName = "Usage"
		}
		periodName = strings.TrimSpace(periodName)

		periods = append(periods, models.UsagePeriod{
			Name:        periodName,
			Utilization: int(util),
			PeriodType:  classifyPeriod(periodName),
		})
	}

	if len(periods) == 0 {
		return nil
	}

	return &models.UsageSnapshot{
		Provider:  "claude",
		FetchedAt: time.Now().UTC(),
		Periods:   periods,
		Source:    "cli",
	}
}

func classifyPeriod(name string) models.PeriodType {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "hour") || strings.Contains(lower, "session"):
		return models.PeriodSession
	case strings.Contains(lower, "day"):
		return models.PeriodDaily
	case strings.Contains(lower, "week"):
		return models.PeriodWeekly
	case strings.Contains(lower, "month") || strings.Contains(lower, "billing"):
		return models.PeriodMonthly
	default:
		return models.PeriodDaily
	}
}
