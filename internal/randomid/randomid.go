// Package randomid generates short opaque identifiers.
package randomid

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultLength is used when a non-positive length is requested.
	DefaultLength = 8
	// MaxLength is the number of hex digits in a dashless uuid.
	MaxLength = 32

	// ComponentLength is the length of generated component ids.
	ComponentLength = 6
	// FormattedLength is the length of formatted message ids.
	FormattedLength = 10
)

// New returns a random lowercase hex identifier of the given length,
// clamped to [1, MaxLength].
func New(length int) string {
	if length <= 0 {
		length = DefaultLength
	}
	if length > MaxLength {
		length = MaxLength
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:length]
}

// Component returns a fresh component identifier.
func Component() string {
	return New(ComponentLength)
}

// Formatted returns a fresh formatted message identifier.
func Formatted() string {
	return New(FormattedLength)
}
