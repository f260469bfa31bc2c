package httpclient

import (
	"net/http"
	"strings"
	"time"
)

// SummarizeBody returns a short summary of an HTTP response body suitable for
// error messages. Empty bodies return "empty body"; bodies longer than 120
// characters are truncated with "...".
func SummarizeBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "empty body"
	}
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}

// RetryAfter parses the Retry-After header of a response, accepting
// both delay-seconds and HTTP-date forms. Returns 0 when absent or
// unparseable.
func (r *Response) RetryAfter() time.Duration {
	if r == nil || r.Header == nil {
		return 0
	}
	raw := strings.TrimSpace(r.Header.Get("Retry-After"))
	if raw == "" {
		return 0
	}
	if secs, err := time.ParseDuration(raw + "s"); err == nil && secs >= 0 {
		return secs
	}
	if at, err := http.ParseTime(raw); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
