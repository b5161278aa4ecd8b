// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"errors"
	"fmt"

	"github.com/distribution/reference"
)

// ErrInvalidOutputTag is the sentinel error wrapped by InvalidOutputTagError.
var ErrInvalidOutputTag = errors.New("invalid output tag")

type (
	// OutputTag represents an explicit name for the built image, overriding
	// the content-derived default. The zero value ("") is valid and means
	// "derive the tag from the build inputs". Non-zero values must parse as
	// a taggable image name; digests are rejected because a build cannot be
	// tagged to a digest.
	OutputTag string

	// InvalidOutputTagError is returned when an OutputTag value does not
	// parse as a taggable image name.
	InvalidOutputTagError struct {
		Value  OutputTag
		Reason string
	}
)

// String returns the string representation of the OutputTag.
func (t OutputTag) String() string { return string(t) }

// Validate returns an error if the OutputTag is non-empty and not a
// taggable image name.
func (t OutputTag) Validate() error {
	if t == "" {
		return nil
	}
	named, err := reference.ParseNormalizedNamed(string(t))
	if err != nil {
		return &InvalidOutputTagError{Value: t, Reason: err.Error()}
	}
	if _, ok := named.(reference.Digested); ok {
		return &InvalidOutputTagError{Value: t, Reason: "a build cannot be tagged to a digest"}
	}
	return nil
}

// Error implements the error interface for InvalidOutputTagError.
func (e *InvalidOutputTagError) Error() string {
	return fmt.Sprintf("invalid output tag %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidOutputTag for errors.Is() compatibility.
func (e *InvalidOutputTagError) Unwrap() error { return ErrInvalidOutputTag }
