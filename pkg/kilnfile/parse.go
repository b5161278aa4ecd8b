// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"kiln-cli/pkg/cueutil"
	"kiln-cli/pkg/fspath"
	"kiln-cli/pkg/types"
)

//go:embed kilnfile_schema.cue
var kilnfileSchema string

// ErrKilnfileNotFound is the sentinel error wrapped by NotFoundError.
var ErrKilnfileNotFound = errors.New("no kilnfile found")

// NotFoundError is returned by Discover when no kilnfile exists at the
// requested location.
type NotFoundError struct {
	Path types.FilesystemPath
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found at %s", DefaultName, e.Path)
}

// Unwrap returns ErrKilnfileNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrKilnfileNotFound }

// Discover locates the kilnfile named by arg. An empty arg means the
// current directory; a directory arg means "<dir>/kilnfile.cue"; a file arg
// is used as-is.
func Discover(arg types.FilesystemPath) (types.FilesystemPath, error) {
	if arg == "" {
		arg = "."
	}

	info, err := os.Stat(string(arg))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &NotFoundError{Path: arg}
		}
		return "", fmt.Errorf("checking %s: %w", arg, err)
	}

	if !info.IsDir() {
		return arg, nil
	}

	candidate := fspath.JoinStr(arg, DefaultName)
	if _, err := os.Stat(string(candidate)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &NotFoundError{Path: arg}
		}
		return "", fmt.Errorf("checking %s: %w", candidate, err)
	}
	return candidate, nil
}

// Parse reads and parses a kilnfile from the given path.
func Parse(path types.FilesystemPath) (*Kilnfile, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read kilnfile at %s: %w", path, err)
	}

	return ParseBytes(data, path)
}

// ParseBytes parses kilnfile content from bytes.
// Uses cueutil.ParseAndDecodeString for the 3-step CUE parsing flow:
// compile schema → compile user data → validate and decode.
func ParseBytes(data []byte, path types.FilesystemPath) (*Kilnfile, error) {
	result, err := cueutil.ParseAndDecodeString[Kilnfile](
		kilnfileSchema,
		data,
		"#Kilnfile",
		cueutil.WithFilename(string(path)),
	)
	if err != nil {
		return nil, err
	}

	kf := result.Value
	kf.FilePath = path

	// Go-level semantic validation on top of the schema
	if err := kf.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return kf, nil
}
