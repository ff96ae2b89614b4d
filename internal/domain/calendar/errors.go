package calendar

import "errors"

// Domain errors
var (
	ErrInvalidDate         = errors.New("invalid date, want YYYYMMDD")
	ErrNotFound            = errors.New("trading day not found")
	ErrInsufficientHistory = errors.New("insufficient trading-day history")
)

// IsValidationError checks if the error is an input validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDate)
}

// IsNotFoundError checks if the date is not a trading day
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
