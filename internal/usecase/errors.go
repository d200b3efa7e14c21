package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrAmbiguousMatch        = errors.New("ambiguous match")
	ErrDataConflict          = errors.New("data conflict")
	ErrUpstreamFailure       = errors.New("upstream provider failure")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
