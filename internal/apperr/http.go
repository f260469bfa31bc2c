package apperr

import (
	"encoding/json"
	"strconv"
	"strings"
)

// HTTPMapping is one row of the status mapping table.
type HTTPMapping struct {
	Category        Category
	Severity        Severity
	ShouldRetry     bool
	ShouldFallback  bool
	HonorRetryAfter bool
}

// MapHTTPStatus resolves an HTTP status code to its taxonomy mapping.
// Statuses without an explicit row fall through to the generic 4xx/5xx
// arms.
func MapHTTPStatus(status int) HTTPMapping {
	switch status {
	case 401:
		return HTTPMapping{CategoryAuthentication, SeverityRecoverable, false, true, false}
	case 403:
		return HTTPMapping{CategoryAuthorization, SeverityRecoverable, false, true, false}
	case 404:
		return HTTPMapping{CategoryNotFound, SeverityRecoverable, false, true, false}
	case 429:
		return HTTPMapping{CategoryRateLimited, SeverityTransient, true, false, true}
	case 500, 502, 503, 504:
		return HTTPMapping{CategoryProvider, SeverityTransient, true, true, false}
	}
	if status >= 500 {
		return HTTPMapping{CategoryProvider, SeverityTransient, true, true, false}
	}
	return HTTPMapping{CategoryUnknown, SeverityRecoverable, false, true, false}
}

// FromHTTPStatus builds an Error for a non-2xx response, extracting a
// human-readable message from the body.
func FromHTTPStatus(status int, body []byte) *Error {
	m := MapHTTPStatus(status)
	e := New(m.Category, m.Severity, ExtractMessage(body, status))
	e.Retry = m.ShouldRetry
	return e
}

const maxRawMessageLen = 200

// ExtractMessage pulls an error message out of an HTTP response body.
// It probes the decoded JSON object for the conventional keys, then
// nested objects, then falls back to the raw text, then to
// "HTTP <status>".
func ExtractMessage(body []byte, status int) string {
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err == nil {
		for _, key := range []string{"error", "message", "detail", "error_description"} {
			v, ok := decoded[key]
			if !ok {
				continue
			}
			switch val := v.(type) {
			case string:
				if s := strings.TrimSpace(val); s != "" {
					return s
				}
			case map[string]any:
				for _, nested := range []string{"message", "description"} {
					if s, ok := val[nested].(string); ok && strings.TrimSpace(s) != "" {
						return strings.TrimSpace(s)
					}
				}
			}
		}
	}
	if raw := strings.TrimSpace(string(body)); raw != "" {
		if len(raw) > maxRawMessageLen {
			raw = raw[:maxRawMessageLen]
		}
		return raw
	}
	return "HTTP " + strconv.Itoa(status)
}
