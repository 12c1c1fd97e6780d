package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrUpstreamRejected marks an error payload returned by the sports-data
	// provider itself, as opposed to a transport failure.
	ErrUpstreamRejected = errors.New("upstream rejected request")
)
