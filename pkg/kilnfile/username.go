// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"errors"
	"fmt"
	"regexp"
)

// DefaultUsername is the unprivileged account images run as when the
// kilnfile does not declare one.
const DefaultUsername Username = "app"

var (
	// ErrInvalidUsername is the sentinel error wrapped by InvalidUsernameError.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrRootUserRejected is the sentinel error wrapped by RootUserError.
	// Images provisioned by kiln never run as root.
	ErrRootUserRejected = errors.New("root user rejected")

	// usernameRegex validates account names: lowercase letter or underscore
	// first, then lowercase letters, digits, underscores, or hyphens, at most
	// 32 characters total (the Linux limit).
	usernameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)
)

type (
	// Username represents the unprivileged account created in the image and
	// used as its default execution identity. "root" is never a valid
	// Username: the whole point of the account is the privilege drop.
	Username string

	// InvalidUsernameError is returned when a Username value is empty or
	// does not match the account name grammar.
	InvalidUsernameError struct {
		Value Username
	}

	// RootUserError is returned when a Username names the privileged
	// administrative account.
	RootUserError struct{}
)

// String returns the string representation of the Username.
func (u Username) String() string { return string(u) }

// Validate returns an error if the Username is empty, malformed, or names
// the root account.
func (u Username) Validate() error {
	if u == "root" {
		return &RootUserError{}
	}
	if !usernameRegex.MatchString(string(u)) {
		return &InvalidUsernameError{Value: u}
	}
	return nil
}

// Error implements the error interface for InvalidUsernameError.
func (e *InvalidUsernameError) Error() string {
	return fmt.Sprintf("invalid username %q (must match [a-z_][a-z0-9_-]*, max 32 chars)", e.Value)
}

// Unwrap returns ErrInvalidUsername for errors.Is() compatibility.
func (e *InvalidUsernameError) Unwrap() error { return ErrInvalidUsername }

// Error implements the error interface for RootUserError.
func (e *RootUserError) Error() string {
	return "user \"root\" is not allowed: kiln images always run as an unprivileged account"
}

// Unwrap returns ErrRootUserRejected for errors.Is() compatibility.
func (e *RootUserError) Unwrap() error { return ErrRootUserRejected }
