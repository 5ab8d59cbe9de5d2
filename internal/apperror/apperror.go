package apperror

import "errors"

// Sentinel errors shared across usecases and handlers. Wrap with
// fmt.Errorf("...: %w", err) and match with errors.Is.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyApplied = errors.New("application already exists for this scholarship")
	ErrRateLimited    = errors.New("embedding provider rate limited")
)
