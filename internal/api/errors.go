package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
)

var networkErrorSubstrings = []string{
	"timeout",
	"i/o timeout",
	"tls handshake timeout",
	"unexpected eof",
	"broken pipe",
	"connection reset",
	"connection refused",
	"connection aborted",
	"connection closed",
	"use of closed network connection",
	"network is unreachable",
	"no route to host",
	"no such host",
	"dial tcp",
}

// IsNetworkError reports whether err is a transport-level failure rather than
// an HTTP status from the API. Calls are never retried on it.
func IsNetworkError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errText := strings.ToLower(err.Error())
	for _, marker := range networkErrorSubstrings {
		if strings.Contains(errText, marker) {
			return true
		}
	}
	return false
}

// IsAuthError reports whether the API rejected the credential.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}
