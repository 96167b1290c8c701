// Package vlisterr defines the engine's error taxonomy (spec §7):
// configuration errors that fail fast and synchronously at construction
// time, and sentinel values used to classify absorbed runtime failures.
// Grounded on the teacher's pkg/bubbly/component_errors.go and
// lifecycle_errors.go sentinel + %w-wrapping convention.
package vlisterr

import "errors"

// Sentinels for errors.Is matching. Configuration errors are returned
// synchronously by constructors; they are never absorbed into events.
var (
	ErrMissingAdapterMethod       = errors.New("vlistengine: adapter does not implement the method required by the configured pagination strategy")
	ErrInvalidPoolSize            = errors.New("vlistengine: pool size must be positive")
	ErrContainerNotFound          = errors.New("vlistengine: container element not found")
	ErrInvalidOrientation         = errors.New("vlistengine: orientation must be vertical or horizontal")
	ErrInvalidStrategy            = errors.New("vlistengine: unknown pagination strategy")
	ErrCursorPredecessorMissing   = errors.New("vlistengine: cannot derive a cursor for an offset whose predecessor item has not been loaded")
	ErrReservedPlaceholderField   = errors.New("vlistengine: item must not set the reserved _placeholder property")
	ErrMissingStableID            = errors.New("vlistengine: item is missing a stable id")
)

// ConfigError wraps a sentinel with contextual detail, matching the
// teacher's `fmt.Errorf("...: %w", err)` convention.
type ConfigError struct {
	Sentinel error
	Detail   string
}

func (e *ConfigError) Error() string {
	if e.Detail == "" {
		return e.Sentinel.Error()
	}
	return e.Sentinel.Error() + ": " + e.Detail
}

func (e *ConfigError) Unwrap() error { return e.Sentinel }

// Wrap constructs a ConfigError for the given sentinel and detail.
func Wrap(sentinel error, detail string) error {
	return &ConfigError{Sentinel: sentinel, Detail: detail}
}
