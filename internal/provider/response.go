package provider

import (
	"fmt"

	"github.com/burnratehq/burnrate/internal/apperr"
	"github.com/burnratehq/burnrate/internal/fetch"
	"github.com/burnratehq/burnrate/internal/httpclient"
)

// CheckResponse validates an HTTP response from a provider API. It
// returns a non-nil FetchResult for error conditions and nil when the
// response is OK for further processing.
//
// Whether the pipeline may fall through to the next strategy follows
// the status mapping: auth failures and server errors do, rate limits
// do not (a sibling strategy hits the same limit).
func CheckResponse(resp *httpclient.Response, providerID, providerName string) *fetch.FetchResult {
	if resp.StatusCode != 200 {
		m := apperr.MapHTTPStatus(resp.StatusCode)
		err := apperr.FromHTTPStatus(resp.StatusCode, resp.Body).WithProvider(providerID)
		switch m.Category {
		case apperr.CategoryAuthentication:
			err = err.WithRemediation(fmt.Sprintf("Credentials for %s are invalid or expired; sign in with the provider's CLI again.", providerName))
		case apperr.CategoryAuthorization:
			err = err.WithRemediation(fmt.Sprintf("The %s account does not have access to usage data.", providerName))
		case apperr.CategoryRateLimited:
			err = err.WithRemediation(fmt.Sprintf("%s is rate limiting requests; wait before retrying.", providerName))
		}
		var r fetch.FetchResult
		if m.ShouldFallback {
			r = fetch.ResultFail(err)
		} else {
			r = fetch.ResultFatal(err)
		}
		return &r
	}
	if resp.JSONErr != nil {
		r := fetch.ResultFail(apperr.New(apperr.CategoryParse, apperr.SeverityRecoverable,
			fmt.Sprintf("Invalid response from %s API: %v", providerName, resp.JSONErr)).WithProvider(providerID))
		return &r
	}
	return nil
}
