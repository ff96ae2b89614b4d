package fetcher

import "errors"

// Domain errors
var (
	ErrRunNotFound = errors.New("stage run not found")

	// External source errors
	ErrExternalFetch   = errors.New("external fetch failed")
	ErrEmptyPayload    = errors.New("empty payload from external source")
	ErrInvalidResponse = errors.New("invalid response from external source")
)

// IsExternalError checks if the error came from an external source
func IsExternalError(err error) bool {
	return errors.Is(err, ErrExternalFetch) ||
		errors.Is(err, ErrEmptyPayload) ||
		errors.Is(err, ErrInvalidResponse)
}
