package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration signals a bad field name, an empty corpus or an invalid
	// parameter space. Always surfaced to the caller.
	ErrConfiguration = errors.New("configuration error")
	// ErrSearch signals a backend failure in the middle of a query.
	ErrSearch = errors.New("search error")
	// ErrTrialFailed marks an optimizer trial whose search function failed.
	ErrTrialFailed = errors.New("optimization trial failed")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrIndexNotFitted signals a search against an index that has no corpus yet.
	ErrIndexNotFitted = fmt.Errorf("%w: index is not fitted", ErrConfiguration)
)

// Configf builds an error wrapping ErrConfiguration.
func Configf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
