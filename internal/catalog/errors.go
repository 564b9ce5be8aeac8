package catalog

import (
	"errors"
	"fmt"
)

// Common errors returned by the source adapters.
var (
	// ErrNotFound indicates the catalog has no record for the identifier.
	ErrNotFound = errors.New("work not found in catalog")

	// ErrRateLimited indicates the catalog's rate limit has been exceeded.
	ErrRateLimited = errors.New("catalog rate limit exceeded")

	// ErrAPIError indicates a general catalog API error.
	ErrAPIError = errors.New("catalog API error")

	// ErrNetworkError indicates a transport-level failure.
	ErrNetworkError = errors.New("network error communicating with catalog")

	// ErrInvalidResponse indicates an undecodable catalog response.
	ErrInvalidResponse = errors.New("invalid response from catalog")
)

// APIError carries the status and context of a non-2xx catalog response.
type APIError struct {
	Catalog    string // "crossref" or "openalex"
	StatusCode int
	Message    string
	DOI        string // identifier being looked up, when applicable
}

func (e *APIError) Error() string {
	if e.DOI != "" {
		return fmt.Sprintf("%s API error (status %d): %s (doi: %s)", e.Catalog, e.StatusCode, e.Message, e.DOI)
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Catalog, e.StatusCode, e.Message)
}

// IsNotFound reports whether err means the record is absent rather than
// the lookup having failed. Absence skips enrichment; it is not logged
// as a failure.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsRateLimited reports whether err indicates upstream throttling.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// IsTransient reports whether err warrants a warning and moving on to the
// next item: any failure that is not simple absence.
func IsTransient(err error) bool {
	return err != nil && !IsNotFound(err)
}
