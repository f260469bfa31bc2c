package display

import (
	"encoding/json"
	"io"
	"time"

	"github.com/burnratehq/burnrate/internal/apperr"
	"github.com/burnratehq/burnrate/internal/fetch"
	"github.com/burnratehq/burnrate/internal/models"
)

// OutputJSON writes pretty-printed JSON to the given writer.
func OutputJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ErrorDetail converts a taxonomy error into the JSON envelope detail.
// A nil error yields a generic unknown entry so the envelope invariant
// (failures always carry an error) holds in the output too.
func ErrorDetail(err *apperr.Error) ErrorDetailJSON {
	if err == nil {
		err = apperr.New(apperr.CategoryUnknown, apperr.SeverityRecoverable, "Unknown error")
	}
	return ErrorDetailJSON{
		Message:     err.Message,
		Category:    string(err.Category),
		Severity:    string(err.Severity),
		Provider:    err.Provider,
		Remediation: err.Remediation,
		Details:     err.Details,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

// SnapshotToJSON converts a fetch outcome to a JSON-serializable value:
// an ErrorEnvelopeJSON for failures, a SnapshotJSON for successes.
func SnapshotToJSON(outcome fetch.FetchOutcome) any {
	if !outcome.Success || outcome.Snapshot == nil {
		detail := ErrorDetail(outcome.Err)
		if detail.Provider == "" {
			detail.Provider = outcome.ProviderID
		}
		return ErrorEnvelopeJSON{Error: detail}
	}
	return buildSnapshotJSON(outcome)
}

func buildSnapshotJSON(outcome fetch.FetchOutcome) SnapshotJSON {
	snap := outcome.Snapshot

	out := SnapshotJSON{
		Provider: snap.Provider,
		Source:   outcome.Source,
		Cached:   outcome.Cached,
		Gated:    outcome.GateRemaining != "",
	}

	if id := snap.Identity; id != nil {
		out.Identity = &IdentityJSON{Email: id.Email, Organization: id.Organization, Plan: id.Plan}
	}

	for _, p := range snap.Periods {
		pj := PeriodJSON{
			Name:        p.Name,
			Utilization: p.Utilization,
			Remaining:   p.Remaining(),
			PeriodType:  string(p.PeriodType),
		}
		if p.ResetsAt != nil {
			pj.ResetsAt = p.ResetsAt.UTC().Format(time.RFC3339)
		}
		out.Periods = append(out.Periods, pj)
	}

	if o := snap.Overage; o != nil && o.IsEnabled {
		out.Overage = &OverageJSON{
			Used:      o.Used,
			Limit:     o.Limit,
			Remaining: o.Remaining(),
			Currency:  o.Currency,
		}
	}

	return out
}

// OutputMultiProviderJSON outputs all outcomes as a single document.
func OutputMultiProviderJSON(w io.Writer, outcomes map[string]fetch.FetchOutcome) error {
	data := MultiProviderJSON{
		Providers: make(map[string]SnapshotJSON),
		Errors:    make(map[string]ErrorDetailJSON),
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for pid, outcome := range outcomes {
		if outcome.Success && outcome.Snapshot != nil {
			data.Providers[pid] = buildSnapshotJSON(outcome)
			continue
		}
		detail := ErrorDetail(outcome.Err)
		if detail.Provider == "" {
			detail.Provider = pid
		}
		data.Errors[pid] = detail
	}

	return OutputJSON(w, data)
}

// OutputStatusJSON outputs provider statuses as JSON.
func OutputStatusJSON(w io.Writer, statuses map[string]models.ProviderStatus) error {
	data := make(map[string]StatusEntryJSON)
	for pid, status := range statuses {
		entry := StatusEntryJSON{
			Level:       string(status.Level),
			Description: status.Description,
		}
		if status.UpdatedAt != nil {
			entry.UpdatedAt = status.UpdatedAt.UTC().Format(time.RFC3339)
		}
		data[pid] = entry
	}
	return OutputJSON(w, data)
}
