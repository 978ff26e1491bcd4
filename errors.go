package gcontacts

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Errors returned by the client.
var (
	// ErrNoGroups indicates a group URL derivation was attempted for an
	// account that has no contact groups to derive it from.
	ErrNoGroups = errors.New("gcontacts: no groups available")

	// ErrMalformedResponse indicates an expected JSON or XML shape was
	// absent from the provider response.
	ErrMalformedResponse = errors.New("gcontacts: malformed provider response")

	// ErrMissingElement indicates a phonetic name update targeted a name
	// element that does not exist in the entry document.
	ErrMissingElement = errors.New("gcontacts: name element missing from entry document")
)

// IsNotFound returns true if the error indicates the entry does not exist.
func IsNotFound(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound
	}
	return false
}

// IsUnauthorized returns true if the error indicates invalid or expired
// credentials.
func IsUnauthorized(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized
	}
	return false
}

// IsForbidden returns true if the error indicates insufficient permissions.
func IsForbidden(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusForbidden
	}
	return false
}

// IsRateLimited returns true if the error indicates the API rate limit was
// exceeded.
func IsRateLimited(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}
