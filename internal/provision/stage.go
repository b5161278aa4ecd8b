// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"kiln-cli/pkg/fspath"
	"kiln-cli/pkg/kilnfile"
	"kiln-cli/pkg/types"
)

// ErrSourceNotFound is the sentinel error wrapped by SourceNotFoundError.
var ErrSourceNotFound = errors.New("source directory not found")

type (
	// SourceNotFoundError is returned when the kilnfile's source directory
	// does not exist. Staging aborts before the engine is invoked.
	SourceNotFoundError struct {
		Path types.FilesystemPath
	}

	// stagedContext is a fully assembled build context on disk.
	stagedContext struct {
		// Dir is the context directory handed to the engine.
		Dir types.FilesystemPath
		// SourceHash is the content hash of the staged source tree.
		SourceHash string
		// Cleanup removes the context directory. Safe to call more than once.
		Cleanup func()
	}
)

// Error implements the error interface.
func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source directory %s does not exist", e.Path)
}

// Unwrap returns ErrSourceNotFound so callers can use errors.Is for programmatic detection.
func (e *SourceNotFoundError) Unwrap() error { return ErrSourceNotFound }

// stagingParent resolves where temporary build contexts are created.
//
// Engines installed via Snap have limited filesystem access: they cannot read
// /tmp (different mount namespace) or hidden directories under the home (the
// home interface skips dotfiles). A visible directory in the user's home works
// for every installation flavor, so that is the default.
func (p *ImageProvisioner) stagingParent() types.FilesystemPath {
	if p.config.StagingDir != "" {
		return p.config.StagingDir
	}

	if home, err := os.UserHomeDir(); err == nil {
		if _, statErr := os.Stat(home); statErr == nil {
			return types.FilesystemPath(filepath.Join(home, "kiln-build"))
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		return types.FilesystemPath(filepath.Join(cwd, ".kiln-build"))
	}

	// Last resort; may be unreachable for Snap-confined engines.
	return types.FilesystemPath(filepath.Join(os.TempDir(), "kiln-build"))
}

// stageContext assembles the build context for a kilnfile: the dependency
// manifest under its canonical name, the source tree copied verbatim, and the
// rendered Dockerfile. Any failure here aborts the build before the engine
// runs. An empty manifest is not staged (the install layer is omitted).
func (p *ImageProvisioner) stageContext(kf *kilnfile.Kilnfile, manifestEmpty bool, dockerfile string) (*stagedContext, error) {
	srcPath := kf.SourcePath()
	info, err := os.Stat(string(srcPath))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &SourceNotFoundError{Path: srcPath}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path %s is not a directory", srcPath)
	}

	parent := p.stagingParent()
	if err := os.MkdirAll(string(parent), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	tmpDir, err := os.MkdirTemp(string(parent), "ctx-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create build context: %w", err)
	}

	cleanup := func() {
		_ = os.RemoveAll(tmpDir) // Staged copies only; removal error non-critical
	}
	fail := func(err error) (*stagedContext, error) {
		cleanup()
		return nil, err
	}

	if !manifestEmpty {
		manifestDst := fspath.JoinStr(types.FilesystemPath(tmpDir), contextManifestName)
		if err := CopyFile(kf.ManifestPath(), manifestDst); err != nil {
			return fail(fmt.Errorf("failed to stage dependency manifest: %w", err))
		}
	}

	srcDst := fspath.JoinStr(types.FilesystemPath(tmpDir), contextSourceDir)
	if err := CopyTree(srcPath, srcDst); err != nil {
		return fail(fmt.Errorf("failed to stage source tree: %w", err))
	}

	sourceHash, err := CalculateTreeHash(srcDst)
	if err != nil {
		return fail(fmt.Errorf("failed to hash staged source tree: %w", err))
	}

	dockerfilePath := filepath.Join(tmpDir, DockerfileName)
	if err := os.WriteFile(dockerfilePath, []byte(dockerfile), 0o644); err != nil {
		return fail(fmt.Errorf("failed to write Dockerfile: %w", err))
	}

	p.config.logger().Debug("staged build context", "dir", tmpDir, "source_hash", sourceHash)

	return &stagedContext{
		Dir:        types.FilesystemPath(tmpDir),
		SourceHash: sourceHash,
		Cleanup:    cleanup,
	}, nil
}

// CopyFile copies a file from src to dst, preserving its mode.
func CopyFile(src, dst types.FilesystemPath) (err error) {
	srcFile, err := os.Open(string(src))
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() { _ = srcFile.Close() }() // Read-only file; close error non-critical

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}

	dstFile, err := os.OpenFile(string(dst), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if closeErr := dstFile.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", closeErr)
		}
	}()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	return nil
}

// CopyTree recursively copies a directory from src to dst. Contents are
// copied verbatim: no filtering, no interpretation of the tree.
func CopyTree(src, dst types.FilesystemPath) error {
	srcInfo, err := os.Stat(string(src))
	if err != nil {
		return fmt.Errorf("failed to stat source directory: %w", err)
	}

	if err = os.MkdirAll(string(dst), srcInfo.Mode()); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	entries, err := os.ReadDir(string(src))
	if err != nil {
		return fmt.Errorf("failed to read source directory: %w", err)
	}

	for _, entry := range entries {
		srcPath := fspath.JoinStr(src, entry.Name())
		dstPath := fspath.JoinStr(dst, entry.Name())

		if entry.IsDir() {
			if err := CopyTree(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := CopyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

// CalculateFileHash returns the hex SHA-256 of a file's contents.
func CalculateFileHash(path types.FilesystemPath) (string, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }() // Read-only file; close error non-critical

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// CalculateTreeHash returns a content hash of a directory tree. Each file
// contributes its slash-normalized relative path and content hash, in sorted
// path order, so the result is stable across hosts and checkouts. Metadata
// (modification times, permissions) does not participate: two trees with
// identical bytes hash identically.
func CalculateTreeHash(dir types.FilesystemPath) (string, error) {
	type treeEntry struct {
		rel string
		sum string
	}
	var entries []treeEntry

	err := filepath.WalkDir(string(dir), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		sum, err := CalculateFileHash(types.FilesystemPath(path))
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(string(dir), path)
		if err != nil {
			return err
		}
		entries = append(entries, treeEntry{rel: filepath.ToSlash(rel), sum: sum})
		return nil
	})
	if err != nil {
		return "", err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].rel < entries[j].rel })

	h := sha256.New()
	for _, e := range entries {
		fmt.Fprintf(h, "%s:%s\n", e.rel, e.sum)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
