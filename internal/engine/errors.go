package engine

import (
	"errors"

	"github.com/tartampluch/go-age/internal/config"
)

// The engine reports exactly two kinds of failure. Both are wrapped with
// detail, so callers match them with errors.Is.
var (
	// ErrMalformedInput: the input could not be read as a date at all
	// (empty, wrong shape, non-digits).
	ErrMalformedInput = errors.New(config.ErrMalformedInput)

	// ErrInvalidRange: the input is well formed but names an impossible
	// calendar date, or the birth date lies after the reference date.
	ErrInvalidRange = errors.New(config.ErrInvalidRange)
)

// IsInputError reports whether err is one of the engine's input errors.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMalformedInput) || errors.Is(err, ErrInvalidRange)
}
