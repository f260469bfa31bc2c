// Package apperr defines the structured error taxonomy shared across
// the fetch core: closed category and severity sets, the HTTP status
// mapping table, and a classifier for Go error values.
package apperr

type Category string

const (
	CategoryAuthentication Category = "authentication"
	CategoryAuthorization  Category = "authorization"
	CategoryRateLimited    Category = "rate_limited"
	CategoryNetwork        Category = "network"
	CategoryProvider       Category = "provider"
	CategoryParse          Category = "parse"
	CategoryConfiguration  Category = "configuration"
	CategoryNotFound       Category = "not_found"
	CategoryUnknown        Category = "unknown"
)

type Severity string

const (
	SeverityFatal       Severity = "fatal"
	SeverityRecoverable Severity = "recoverable"
	SeverityTransient   Severity = "transient"
	SeverityWarning     Severity = "warning"
)

// Error is the externally visible error value. Provider, Remediation
// and Details are optional.
type Error struct {
	Message     string         `json:"message"`
	Category    Category       `json:"category"`
	Severity    Severity       `json:"severity"`
	Provider    string         `json:"provider,omitempty"`
	Remediation string         `json:"remediation,omitempty"`
	Details     map[string]any `json:"details,omitempty"`

	// Retry marks errors worth retrying within a single strategy
	// attempt. Not serialized; callers use Retryable instead.
	Retry bool `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

func New(cat Category, sev Severity, msg string) *Error {
	return &Error{Message: msg, Category: cat, Severity: sev}
}

// WithProvider returns a copy of the error tagged with a provider id.
func (e *Error) WithProvider(id string) *Error {
	out := *e
	out.Provider = id
	return &out
}

// WithRemediation returns a copy of the error carrying a remediation hint.
func (e *Error) WithRemediation(hint string) *Error {
	out := *e
	out.Remediation = hint
	return &out
}
