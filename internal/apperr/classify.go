package apperr

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net"
	"net/url"
	"syscall"
)

// Classify converts an arbitrary Go error into a taxonomy Error.
// Already-classified errors pass through unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, context.Canceled) {
		return New(CategoryUnknown, SeverityRecoverable, "operation cancelled")
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return networkError(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return networkError(err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return networkError(err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return networkError(err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return networkError(err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return networkError(err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return New(CategoryParse, SeverityRecoverable, err.Error())
	}

	if errors.Is(err, fs.ErrNotExist) {
		return New(CategoryConfiguration, SeverityRecoverable, err.Error())
	}
	if errors.Is(err, fs.ErrPermission) {
		return New(CategoryConfiguration, SeverityFatal, err.Error())
	}

	return New(CategoryUnknown, SeverityRecoverable, err.Error())
}

func networkError(err error) *Error {
	e := New(CategoryNetwork, SeverityTransient, err.Error())
	e.Retry = true
	return e
}

// Retryable reports whether a failed attempt is worth retrying with
// backoff: network errors, timeouts, and HTTP statuses whose mapping
// sets should_retry.
func Retryable(err error) bool {
	e := Classify(err)
	if e == nil {
		return false
	}
	return e.Retry || e.Category == CategoryNetwork
}
