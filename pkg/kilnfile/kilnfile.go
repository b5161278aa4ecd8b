// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"errors"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"kiln-cli/pkg/fspath"
	"kiln-cli/pkg/types"
)

const (
	// DefaultName is the file name kilnfiles are discovered under.
	DefaultName = "kilnfile.cue"

	// DefaultManifest is the dependency manifest path assumed when the
	// kilnfile does not declare one.
	DefaultManifest types.FilesystemPath = "requirements.txt"

	// DefaultSource is the source tree path assumed when the kilnfile does
	// not declare one: the kilnfile's own directory.
	DefaultSource types.FilesystemPath = "."
)

// Kilnfile is the parsed build descriptor from kilnfile.cue.
//
// Manifest and Source are declared with forward slashes and resolved
// relative to the kilnfile location; Workdir is a container-side path and
// stays POSIX regardless of host platform.
type Kilnfile struct {
	// Base is the pinned runtime image the build starts from.
	Base ImageRef `json:"base"`
	// Manifest is the pip requirements file, relative to the kilnfile.
	Manifest types.FilesystemPath `json:"manifest"`
	// Source is the application tree copied into the image, relative to the kilnfile.
	Source types.FilesystemPath `json:"source"`
	// Workdir is the in-image directory the source is copied to.
	Workdir WorkdirPath `json:"workdir"`
	// User is the unprivileged account the image runs as.
	User Username `json:"user"`
	// Env lists extra environment variables baked into the image (optional).
	Env map[EnvVarName]string `json:"env,omitempty"`
	// Tag overrides the content-derived image tag (optional).
	Tag OutputTag `json:"tag,omitempty"`

	// FilePath stores the path this kilnfile was loaded from (not in CUE).
	FilePath types.FilesystemPath `json:"-"`
}

// Validate checks every field and returns all failures joined together.
// The CUE schema enforces structure and defaults; this is the Go-level
// backup plus the semantic checks the schema cannot express (pinned-base
// enforcement, root-user rejection, managed variables).
func (k *Kilnfile) Validate() error {
	var errs []error

	if err := k.Base.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := k.Manifest.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := k.Source.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := k.Workdir.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := k.User.Validate(); err != nil {
		errs = append(errs, err)
	}
	if k.Tag != "" {
		if err := k.Tag.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	for _, name := range k.EnvNames() {
		if err := name.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if name.IsManaged() {
			errs = append(errs, &ManagedEnvVarError{Name: name})
			continue
		}
		if err := validateEnvValue(name, k.Env[name]); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// EnvNames returns the declared env var names in sorted order, so every
// consumer (validation, rendering, generation) walks them deterministically.
func (k *Kilnfile) EnvNames() []EnvVarName {
	names := maps.Keys(k.Env)
	slices.Sort(names)
	return names
}

// Dir returns the directory containing the kilnfile.
func (k *Kilnfile) Dir() types.FilesystemPath {
	return fspath.Dir(k.FilePath)
}

// ManifestPath resolves the declared manifest against the kilnfile location.
func (k *Kilnfile) ManifestPath() types.FilesystemPath {
	return k.resolve(k.Manifest)
}

// SourcePath resolves the declared source tree against the kilnfile location.
func (k *Kilnfile) SourcePath() types.FilesystemPath {
	return k.resolve(k.Source)
}

// resolve converts a kilnfile-declared path from CUE format (forward
// slashes) to native format and resolves relative paths against the
// kilnfile directory.
func (k *Kilnfile) resolve(p types.FilesystemPath) types.FilesystemPath {
	native := fspath.FromSlash(p)
	if fspath.IsAbs(native) {
		return fspath.Clean(native)
	}
	return fspath.Join(k.Dir(), native)
}
