// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"errors"
	"fmt"

	"github.com/distribution/reference"
)

var (
	// ErrInvalidImageRef is the sentinel error wrapped by InvalidImageRefError.
	ErrInvalidImageRef = errors.New("invalid image reference")

	// ErrImageRefNotPinned is the sentinel error wrapped by UnpinnedImageRefError.
	ErrImageRefNotPinned = errors.New("image reference is not pinned")
)

type (
	// ImageRef represents a base image reference. A valid ImageRef parses as a
	// normalized image reference and is pinned: it carries an explicit tag
	// (e.g. "python:3.12-alpine") or a digest ("python@sha256:..."). Untagged
	// references are rejected so the base a build starts from never moves
	// silently.
	ImageRef string

	// InvalidImageRefError is returned when an ImageRef value does not parse
	// as an image reference at all.
	InvalidImageRefError struct {
		Value ImageRef
		Cause error
	}

	// UnpinnedImageRefError is returned when an ImageRef parses but carries
	// neither a tag nor a digest.
	UnpinnedImageRefError struct {
		Value ImageRef
	}
)

// String returns the string representation of the ImageRef.
func (r ImageRef) String() string { return string(r) }

// Validate returns an error if the ImageRef is malformed or not pinned.
func (r ImageRef) Validate() error {
	if r == "" {
		return &InvalidImageRefError{Value: r, Cause: errors.New("base image is required")}
	}
	named, err := reference.ParseNormalizedNamed(string(r))
	if err != nil {
		return &InvalidImageRefError{Value: r, Cause: err}
	}
	if _, ok := named.(reference.Digested); ok {
		return nil
	}
	if _, ok := named.(reference.Tagged); ok {
		return nil
	}
	return &UnpinnedImageRefError{Value: r}
}

// IsPinned reports whether the reference carries a tag or digest.
func (r ImageRef) IsPinned() bool {
	return r.Validate() == nil
}

// Tag returns the tag portion of the reference, or "" when the reference is
// digest-only or malformed.
func (r ImageRef) Tag() string {
	named, err := reference.ParseNormalizedNamed(string(r))
	if err != nil {
		return ""
	}
	if tagged, ok := named.(reference.Tagged); ok {
		return tagged.Tag()
	}
	return ""
}

// IsLatest reports whether the reference is pinned only by the floating
// "latest" tag. Such references are accepted but worth warning about: the
// image they resolve to changes over time.
func (r ImageRef) IsLatest() bool {
	return r.Tag() == "latest"
}

// Error implements the error interface for InvalidImageRefError.
func (e *InvalidImageRefError) Error() string {
	return fmt.Sprintf("invalid image reference %q: %v", e.Value, e.Cause)
}

// Unwrap returns ErrInvalidImageRef for errors.Is() compatibility.
func (e *InvalidImageRefError) Unwrap() error { return ErrInvalidImageRef }

// Error implements the error interface for UnpinnedImageRefError.
func (e *UnpinnedImageRefError) Error() string {
	return fmt.Sprintf("image reference %q is not pinned: add an explicit tag or digest (e.g. \"python:3.12-alpine\")", e.Value)
}

// Unwrap returns ErrImageRefNotPinned for errors.Is() compatibility.
func (e *UnpinnedImageRefError) Unwrap() error { return ErrImageRefNotPinned }
