package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/burnratehq/burnrate/internal/apperr"
	"github.com/burnratehq/burnrate/internal/fetch"
	"github.com/burnratehq/burnrate/internal/models"
	"github.com/burnratehq/burnrate/internal/provider"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	yellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func colorStyle(color string) lipgloss.Style {
	switch color {
	case "green":
		return greenStyle
	case "yellow":
		return yellowStyle
	case "red":
		return redStyle
	default:
		return lipgloss.NewStyle()
	}
}

// UtilizationColor returns a color name based on burn pace and current
// utilization. Exhausted quota is always red; near-exhaustion is at
// least yellow regardless of pace.
func UtilizationColor(elapsedRatio *float64, utilization int) string {
	if utilization >= 100 {
		return "red"
	}
	if elapsedRatio == nil {
		if utilization < 50 {
			return "green"
		}
		if utilization < 80 {
			return "yellow"
		}
		return "red"
	}
	pace := float64(utilization) / 100.0
	if *elapsedRatio > 0 {
		pace = (float64(utilization) / 100.0) / *elapsedRatio
	}
	if utilization >= 90 {
		if pace > 1.15 {
			return "red"
		}
		return "yellow"
	}
	switch {
	case pace <= 1.15:
		return "green"
	case pace <= 1.5:
		return "yellow"
	default:
		return "red"
	}
}

// RenderBar renders a fixed-width utilization bar.
func RenderBar(utilization int, width int, color string) string {
	filled := models.ClampPct(utilization) * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return colorStyle(color).Render(bar)
}

const barWidth = 20

// RenderProviderPanel renders one provider's snapshot: a title line
// with source and freshness annotations, then one line per period.
func RenderProviderPanel(outcome fetch.FetchOutcome) string {
	snap := outcome.Snapshot
	if snap == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(provider.DisplayName(snap.Provider)))
	if outcome.Source != "" {
		b.WriteString(dimStyle.Render(" via " + formatSourceName(outcome.Source)))
	}
	switch {
	case outcome.GateRemaining != "":
		b.WriteString(dimStyle.Render(fmt.Sprintf(" (cached, gated for %s)", outcome.GateRemaining)))
	case outcome.Cached:
		b.WriteString(dimStyle.Render(fmt.Sprintf(" (cached %s ago)", formatAge(snap.Age()))))
	}
	b.WriteByte('\n')

	if meta := renderMetaLine(snap); meta != "" {
		b.WriteString(meta)
		b.WriteByte('\n')
	}

	nameWidth := 0
	for _, p := range snap.Periods {
		if len(p.Name) > nameWidth {
			nameWidth = len(p.Name)
		}
	}

	for _, p := range snap.Periods {
		color := UtilizationColor(p.ElapsedRatio(), p.Utilization)
		pct := colorStyle(color).Render(fmt.Sprintf("%3d%%", p.Utilization))
		line := fmt.Sprintf("  %-*s  %s %s", nameWidth, p.Name, RenderBar(p.Utilization, barWidth, color), pct)
		if d := p.TimeUntilReset(); d != nil {
			line += dimStyle.Render("  resets in " + models.FormatResetCountdown(d))
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if o := snap.Overage; o != nil && o.IsEnabled {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  Extra usage: %.2f / %.2f %s", o.Used, o.Limit, o.Currency)))
		b.WriteByte('\n')
	}

	return b.String()
}

// renderMetaLine builds a dim identity line (plan, org, email).
func renderMetaLine(snap *models.UsageSnapshot) string {
	if snap.Identity == nil {
		return ""
	}
	var parts []string
	if snap.Identity.Plan != "" {
		parts = append(parts, snap.Identity.Plan)
	}
	if snap.Identity.Organization != "" {
		parts = append(parts, snap.Identity.Organization)
	}
	if snap.Identity.Email != "" {
		parts = append(parts, snap.Identity.Email)
	}
	if len(parts) == 0 {
		return ""
	}
	return dimStyle.Render("  " + strings.Join(parts, " · "))
}

func formatSourceName(source string) string {
	switch source {
	case "oauth":
		return "OAuth"
	case "api_key":
		return "API Key"
	case "cli":
		return "CLI"
	case "cache":
		return "cache"
	default:
		return source
	}
}

// RenderProviderError renders a failed provider's error with its
// remediation hint when present.
func RenderProviderError(providerID string, err *apperr.Error) string {
	name := titleStyle.Render(provider.DisplayName(providerID))
	msg := "fetch failed"
	if err != nil {
		msg = err.Message
	}
	out := fmt.Sprintf("%s  %s", name, redStyle.Render(msg))
	if err != nil && err.Remediation != "" {
		out += "\n  " + dimStyle.Render(err.Remediation)
	}
	return out
}

// RenderGated renders a line for a provider skipped by its gate.
func RenderGated(providerID, remaining string) string {
	name := titleStyle.Render(provider.DisplayName(providerID))
	return fmt.Sprintf("%s  %s", name, yellowStyle.Render("gated, retrying in "+remaining))
}

// StatusSymbol returns a colored glyph for a provider status level.
func StatusSymbol(level models.StatusLevel, noColor bool) string {
	var sym, color string
	switch level {
	case models.StatusOperational:
		sym, color = "●", "green"
	case models.StatusDegraded:
		sym, color = "◐", "yellow"
	case models.StatusPartialOutage:
		sym, color = "◑", "yellow"
	case models.StatusMajorOutage:
		sym, color = "○", "red"
	default:
		sym, color = "?", ""
	}
	if noColor {
		return sym
	}
	return colorStyle(color).Render(sym)
}

// formatAge formats a duration as a compact age ("5m", "2h", "3d").
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "<1m"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// FormatAge is the exported form used by the cache subcommand.
func FormatAge(d time.Duration) string { return formatAge(d) }
