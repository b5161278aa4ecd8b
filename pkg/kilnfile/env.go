// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidEnvVarName is the sentinel error wrapped by InvalidEnvVarNameError.
	ErrInvalidEnvVarName = errors.New("invalid environment variable name")

	// ErrManagedEnvVar is the sentinel error wrapped by ManagedEnvVarError.
	ErrManagedEnvVar = errors.New("environment variable is managed by kiln")

	// envVarNameRegex validates environment variable names
	envVarNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	// managedEnvVars are baked into every image by the provisioner and
	// cannot be redeclared in a kilnfile.
	managedEnvVars = map[EnvVarName]bool{
		"PYTHONUNBUFFERED": true,
	}
)

type (
	// EnvVarName represents an environment variable name.
	// A valid env var name starts with a letter or underscore, followed by
	// letters, digits, or underscores (matching POSIX conventions).
	EnvVarName string

	// InvalidEnvVarNameError is returned when an EnvVarName value is empty,
	// whitespace-only, or doesn't match the POSIX env var naming convention.
	InvalidEnvVarNameError struct {
		Value EnvVarName
	}

	// ManagedEnvVarError is returned when a kilnfile redeclares a variable
	// the provisioner sets itself.
	ManagedEnvVarError struct {
		Name EnvVarName
	}

	// InvalidEnvValueError is returned when an env value contains characters
	// that cannot be rendered into an image environment.
	InvalidEnvValueError struct {
		Name EnvVarName
	}
)

// String returns the string representation of the EnvVarName.
func (n EnvVarName) String() string { return string(n) }

// Validate returns nil if the EnvVarName is a valid POSIX environment
// variable name, or a validation error if it is not.
func (n EnvVarName) Validate() error {
	s := string(n)
	if strings.TrimSpace(s) == "" || !envVarNameRegex.MatchString(s) {
		return &InvalidEnvVarNameError{Value: n}
	}
	return nil
}

// IsManaged reports whether the variable is set by the provisioner itself.
func (n EnvVarName) IsManaged() bool { return managedEnvVars[n] }

// validateEnvValue rejects values that cannot survive Dockerfile rendering.
func validateEnvValue(name EnvVarName, value string) error {
	if strings.ContainsAny(value, "\x00\n\r") {
		return &InvalidEnvValueError{Name: name}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidEnvVarNameError) Error() string {
	return fmt.Sprintf("invalid environment variable name %q (must match [A-Za-z_][A-Za-z0-9_]*)", e.Value)
}

// Unwrap returns ErrInvalidEnvVarName so callers can use errors.Is for programmatic detection.
func (e *InvalidEnvVarNameError) Unwrap() error { return ErrInvalidEnvVarName }

// Error implements the error interface.
func (e *ManagedEnvVarError) Error() string {
	return fmt.Sprintf("environment variable %s is set by kiln and cannot be redeclared", e.Name)
}

// Unwrap returns ErrManagedEnvVar so callers can use errors.Is for programmatic detection.
func (e *ManagedEnvVarError) Unwrap() error { return ErrManagedEnvVar }

// Error implements the error interface.
func (e *InvalidEnvValueError) Error() string {
	return fmt.Sprintf("invalid value for environment variable %s: must not contain newlines or null bytes", e.Name)
}

// Unwrap returns ErrInvalidEnvVarName so env value errors are detectable
// alongside name errors.
func (e *InvalidEnvValueError) Unwrap() error { return ErrInvalidEnvVarName }
