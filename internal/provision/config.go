// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"kiln-cli/internal/container"
	"kiln-cli/pkg/types"
)

// ErrInvalidProvisionConfig is the sentinel error wrapped by InvalidProvisionConfigError.
var ErrInvalidProvisionConfig = errors.New("invalid provision config")

type (
	// Config holds configuration for building runtime images.
	Config struct {
		// ForceRebuild bypasses the content-tag cache check and always builds.
		ForceRebuild bool

		// NoCache disables the engine's own layer cache for the build.
		NoCache bool

		// CacheDir is where the image ledger lives.
		// Default: ~/.cache/kiln
		CacheDir types.FilesystemPath

		// StagingDir overrides where temporary build contexts are staged.
		// When empty, a visible directory under the user's home is used
		// (hidden directories are not reachable by Snap-confined engines).
		StagingDir types.FilesystemPath

		// TagOverride is an explicit output tag that takes precedence over
		// both the kilnfile's declared tag and the content-derived default.
		TagOverride container.ImageTag

		// TagSuffix is an optional suffix appended to content-derived tags.
		// This enables test isolation by making each test's images unique.
		// Can be set via the KILN_PROVISION_TAG_SUFFIX environment variable.
		TagSuffix string

		// BuildOutput receives the engine's build output.
		// Default: os.Stderr.
		BuildOutput io.Writer

		// Logger receives debug-level provisioning traces (staging paths,
		// hashes, cache decisions). The default logger discards everything.
		Logger *log.Logger
	}

	// Option is a functional option for configuring a Config.
	Option func(*Config)

	// InvalidProvisionConfigError is returned when a Config has one or more
	// invalid fields. It wraps the individual field validation errors.
	InvalidProvisionConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	cacheDir := types.FilesystemPath("")
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = types.FilesystemPath(filepath.Join(home, ".cache", "kiln"))
	}

	return &Config{
		CacheDir:    cacheDir,
		TagSuffix:   os.Getenv("KILN_PROVISION_TAG_SUFFIX"),
		BuildOutput: os.Stderr,
		Logger:      log.New(io.Discard),
	}
}

// WithForceRebuild returns an Option that sets ForceRebuild on the config.
func WithForceRebuild(force bool) Option {
	return func(c *Config) {
		c.ForceRebuild = force
	}
}

// WithNoCache returns an Option that sets NoCache on the config.
func WithNoCache(noCache bool) Option {
	return func(c *Config) {
		c.NoCache = noCache
	}
}

// WithCacheDir returns an Option that sets CacheDir on the config.
func WithCacheDir(dir types.FilesystemPath) Option {
	return func(c *Config) {
		c.CacheDir = dir
	}
}

// WithStagingDir returns an Option that sets StagingDir on the config.
func WithStagingDir(dir types.FilesystemPath) Option {
	return func(c *Config) {
		c.StagingDir = dir
	}
}

// WithTagOverride returns an Option that sets TagOverride on the config.
func WithTagOverride(tag container.ImageTag) Option {
	return func(c *Config) {
		c.TagOverride = tag
	}
}

// WithTagSuffix returns an Option that sets TagSuffix on the config.
// This is primarily used for test isolation so parallel tests don't
// compete for the same content-derived image tags.
func WithTagSuffix(suffix string) Option {
	return func(c *Config) {
		c.TagSuffix = suffix
	}
}

// WithBuildOutput returns an Option that sets BuildOutput on the config.
func WithBuildOutput(w io.Writer) Option {
	return func(c *Config) {
		c.BuildOutput = w
	}
}

// WithLogger returns an Option that sets Logger on the config.
func WithLogger(logger *log.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// Apply applies the given options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate returns an error if any set field of the Config is invalid.
// Empty path fields are valid: they mean "use the default".
func (c *Config) Validate() error {
	var errs []error

	if c.CacheDir != "" {
		if err := c.CacheDir.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("cache dir: %w", err))
		}
	}
	if c.StagingDir != "" {
		if err := c.StagingDir.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("staging dir: %w", err))
		}
	}
	if c.TagOverride != "" {
		if err := c.TagOverride.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("tag override: %w", err))
		}
	}

	if len(errs) > 0 {
		return &InvalidProvisionConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidProvisionConfigError) Error() string {
	return fmt.Sprintf("invalid provision config: %d field error(s): %v",
		len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidProvisionConfig for errors.Is() compatibility.
func (e *InvalidProvisionConfigError) Unwrap() error { return ErrInvalidProvisionConfig }

// logger returns the configured logger, or a discarding one.
func (c *Config) logger() *log.Logger {
	if c.Logger == nil {
		return log.New(io.Discard)
	}
	return c.Logger
}

// buildOutput returns the configured build output writer, or os.Stderr.
func (c *Config) buildOutput() io.Writer {
	if c.BuildOutput == nil {
		return os.Stderr
	}
	return c.BuildOutput
}
