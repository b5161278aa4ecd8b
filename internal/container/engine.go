// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"kiln-cli/pkg/types"
)

var (
	// ErrInvalidImageTag is the sentinel error wrapped by InvalidImageTagError.
	ErrInvalidImageTag = errors.New("invalid image tag")

	// ErrInvalidBuildOptions is the sentinel error wrapped by InvalidBuildOptionsError.
	ErrInvalidBuildOptions = errors.New("invalid build options")

	// ErrInvalidRunOptions is the sentinel error wrapped by InvalidRunOptionsError.
	ErrInvalidRunOptions = errors.New("invalid run options")
)

type (
	// Engine defines the interface for container image operations.
	Engine interface {
		// Name returns the engine name (docker or podman)
		Name() string
		// Available checks if the engine is available on the system
		Available() bool
		// Version returns the engine version
		Version(ctx context.Context) (string, error)
		// BinaryPath returns the path to the engine binary
		BinaryPath() string

		// Build builds an image from a Dockerfile
		Build(ctx context.Context, opts BuildOptions) error
		// Run runs a command in a disposable container
		Run(ctx context.Context, opts RunOptions) (*RunResult, error)
		// ImageExists checks if an image exists in local storage
		ImageExists(ctx context.Context, image ImageTag) (bool, error)
		// InspectImage returns the raw inspect JSON for an image
		InspectImage(ctx context.Context, image ImageTag) (string, error)
		// RemoveImage removes an image from local storage
		RemoveImage(ctx context.Context, image ImageTag, force bool) error
	}

	// ImageTag is a local image reference (name[:tag]) as accepted by
	// docker/podman build -t. A valid tag must be non-empty and not
	// whitespace-only.
	ImageTag string

	// InvalidImageTagError is returned when an ImageTag is empty or whitespace-only.
	InvalidImageTagError struct {
		Value ImageTag
	}

	// BuildOptions contains options for building an image.
	BuildOptions struct {
		// ContextDir is the build context directory
		ContextDir types.FilesystemPath
		// Dockerfile is the path to the Dockerfile (relative to ContextDir)
		Dockerfile types.FilesystemPath
		// Tag is the image tag
		Tag ImageTag
		// NoCache disables the engine layer cache
		NoCache bool
		// Stdout is where to write build output
		Stdout io.Writer
		// Stderr is where to write build errors
		Stderr io.Writer
	}

	// InvalidBuildOptionsError is returned when BuildOptions has one or more
	// invalid fields. It wraps the individual field validation errors.
	InvalidBuildOptionsError struct {
		FieldErrs []error
	}

	// RunOptions contains options for running a command in a container.
	// Containers are always disposable in kiln: post-build verification
	// probes run once and exit.
	RunOptions struct {
		// Image is the image to run
		Image ImageTag
		// Command is the command to run (overrides the image CMD)
		Command []string
		// Env contains extra environment variables
		Env map[string]string
		// Remove automatically removes the container after exit
		Remove bool
		// Stdin is the standard input
		Stdin io.Reader
		// Stdout is where to write standard output
		Stdout io.Writer
		// Stderr is where to write standard error
		Stderr io.Writer
	}

	// InvalidRunOptionsError is returned when RunOptions has one or more
	// invalid fields. It wraps the individual field validation errors.
	InvalidRunOptionsError struct {
		FieldErrs []error
	}

	// RunResult contains the result of running a container.
	RunResult struct {
		// ExitCode is the exit code of the containerized process
		ExitCode types.ExitCode
		// Error contains any infrastructure error (binary missing, spawn failure)
		Error error
	}

	// EngineType identifies the container engine type.
	EngineType string

	// ErrEngineNotAvailable is returned when a container engine is not available.
	ErrEngineNotAvailable struct {
		Engine string
		Reason string
	}
)

const (
	EngineTypePodman EngineType = "podman"
	EngineTypeDocker EngineType = "docker"
	// EngineTypeAuto selects whichever engine is available (Podman first).
	EngineTypeAuto EngineType = "auto"
)

// Error implements the error interface.
func (e *InvalidImageTagError) Error() string {
	return fmt.Sprintf("invalid image tag %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidImageTag so callers can use errors.Is for programmatic detection.
func (e *InvalidImageTagError) Unwrap() error { return ErrInvalidImageTag }

// Validate returns an error if the ImageTag is empty or whitespace-only.
func (t ImageTag) Validate() error {
	if strings.TrimSpace(string(t)) == "" {
		return &InvalidImageTagError{Value: t}
	}
	return nil
}

// String returns the string representation of the ImageTag.
func (t ImageTag) String() string { return string(t) }

// Error implements the error interface.
func (e *InvalidBuildOptionsError) Error() string {
	return fmt.Sprintf("invalid build options: %d field error(s)", len(e.FieldErrs))
}

// Unwrap returns ErrInvalidBuildOptions for errors.Is() compatibility.
func (e *InvalidBuildOptionsError) Unwrap() error { return ErrInvalidBuildOptions }

// Validate returns an error if any typed field of the BuildOptions is invalid.
// Dockerfile may be empty (the engine then resolves ContextDir/Dockerfile).
func (o BuildOptions) Validate() error {
	var errs []error
	if err := o.ContextDir.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := o.Tag.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidBuildOptionsError{FieldErrs: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidRunOptionsError) Error() string {
	return fmt.Sprintf("invalid run options: %d field error(s)", len(e.FieldErrs))
}

// Unwrap returns ErrInvalidRunOptions for errors.Is() compatibility.
func (e *InvalidRunOptionsError) Unwrap() error { return ErrInvalidRunOptions }

// Validate returns an error if any typed field of the RunOptions is invalid.
func (o RunOptions) Validate() error {
	var errs []error
	if err := o.Image.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidRunOptionsError{FieldErrs: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *ErrEngineNotAvailable) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// NewEngine creates a new container engine based on preference.
// If the preferred engine is unavailable the other engine is tried before
// giving up. EngineTypeAuto delegates to AutoDetectEngine.
func NewEngine(preferredType EngineType) (Engine, error) {
	switch preferredType {
	case EngineTypePodman:
		engine := NewPodmanEngine()
		if engine.Available() {
			return engine, nil
		}
		// Fall back to Docker
		dockerEngine := NewDockerEngine()
		if dockerEngine.Available() {
			return dockerEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "podman",
			Reason: "podman is not installed or not accessible, and docker fallback is also not available",
		}

	case EngineTypeDocker:
		engine := NewDockerEngine()
		if engine.Available() {
			return engine, nil
		}
		// Fall back to Podman
		podmanEngine := NewPodmanEngine()
		if podmanEngine.Available() {
			return podmanEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "docker",
			Reason: "docker is not installed or not accessible, and podman fallback is also not available",
		}

	case EngineTypeAuto:
		return AutoDetectEngine()

	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferredType)
	}
}

// AutoDetectEngine tries to find an available container engine.
func AutoDetectEngine() (Engine, error) {
	// Try Podman first (more commonly available in rootless setups)
	podman := NewPodmanEngine()
	if podman.Available() {
		return podman, nil
	}

	// Try Docker
	docker := NewDockerEngine()
	if docker.Available() {
		return docker, nil
	}

	return nil, &ErrEngineNotAvailable{
		Engine: "any",
		Reason: "no container engine (podman or docker) is available on this system",
	}
}
