// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// DefaultWorkdir is the fixed in-image path the source tree is copied to
// when the kilnfile does not declare one.
const DefaultWorkdir WorkdirPath = "/code"

// ErrInvalidWorkdirPath is the sentinel error wrapped by InvalidWorkdirPathError.
var ErrInvalidWorkdirPath = errors.New("invalid workdir path")

type (
	// WorkdirPath represents the in-image working directory the source tree
	// is copied to. It is a container-side POSIX path: absolute, clean (no
	// ".." or trailing slash), and never the filesystem root.
	WorkdirPath string

	// InvalidWorkdirPathError is returned when a WorkdirPath value is not an
	// absolute, clean, non-root POSIX path.
	InvalidWorkdirPathError struct {
		Value  WorkdirPath
		Reason string
	}
)

// String returns the string representation of the WorkdirPath.
func (w WorkdirPath) String() string { return string(w) }

// Validate returns an error if the WorkdirPath is not an absolute, clean,
// non-root POSIX path.
func (w WorkdirPath) Validate() error {
	s := string(w)
	switch {
	case strings.TrimSpace(s) == "":
		return &InvalidWorkdirPathError{Value: w, Reason: "must not be empty"}
	case !strings.HasPrefix(s, "/"):
		return &InvalidWorkdirPathError{Value: w, Reason: "must be absolute"}
	case s == "/":
		return &InvalidWorkdirPathError{Value: w, Reason: "must not be the filesystem root"}
	case strings.ContainsRune(s, '\x00'):
		return &InvalidWorkdirPathError{Value: w, Reason: "contains null byte"}
	case path.Clean(s) != s:
		return &InvalidWorkdirPathError{Value: w, Reason: fmt.Sprintf("must be a clean path (did you mean %q?)", path.Clean(s))}
	}
	return nil
}

// Error implements the error interface for InvalidWorkdirPathError.
func (e *InvalidWorkdirPathError) Error() string {
	return fmt.Sprintf("invalid workdir %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidWorkdirPath for errors.Is() compatibility.
func (e *InvalidWorkdirPathError) Unwrap() error { return ErrInvalidWorkdirPath }
