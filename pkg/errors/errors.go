package poll_errors

import "errors"

// Common errors
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrCacheUnavailable = errors.New("cache unavailable")
)
