// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"kiln-cli/internal/container"
	"kiln-cli/pkg/types"
)

// LedgerFileName is the image ledger's file name inside the cache directory.
const LedgerFileName = "images.toml"

// ErrLedgerCorrupt is the sentinel error wrapped by CorruptLedgerError.
var ErrLedgerCorrupt = errors.New("image ledger is corrupt")

type (
	// LedgerEntry records one successful build. Entries back `kiln images`
	// and `kiln prune`; losing the ledger loses bookkeeping, never images.
	LedgerEntry struct {
		// Tag is the image tag the build produced.
		Tag string `toml:"tag"`
		// Base is the pinned base image reference the build started from.
		Base string `toml:"base"`
		// ManifestHash is the content hash of the dependency manifest.
		ManifestHash string `toml:"manifest_hash"`
		// SourceHash is the content hash of the staged source tree.
		SourceHash string `toml:"source_hash"`
		// DockerfileHash is the hash of the rendered Dockerfile.
		DockerfileHash string `toml:"dockerfile_hash"`
		// Engine is the container engine that performed the build.
		Engine string `toml:"engine"`
		// CreatedAt is when the build completed, in UTC.
		CreatedAt time.Time `toml:"created_at"`
	}

	// CorruptLedgerError is returned when the ledger file exists but cannot
	// be parsed as TOML.
	CorruptLedgerError struct {
		Path  types.FilesystemPath
		Cause error
	}

	// Ledger is the on-disk record of images kiln has built. Mutations are
	// in-memory until Save is called.
	Ledger struct {
		path    types.FilesystemPath
		entries []LedgerEntry
	}

	// ledgerFile is the TOML document shape.
	ledgerFile struct {
		Images []LedgerEntry `toml:"images"`
	}
)

// Error implements the error interface.
func (e *CorruptLedgerError) Error() string {
	return fmt.Sprintf("image ledger %s is corrupt: %v", e.Path, e.Cause)
}

// Unwrap returns ErrLedgerCorrupt so callers can use errors.Is for programmatic detection.
func (e *CorruptLedgerError) Unwrap() error { return ErrLedgerCorrupt }

// OpenLedger reads the image ledger from cacheDir. A missing file yields an
// empty ledger; a present-but-unparseable file is a CorruptLedgerError.
func OpenLedger(cacheDir types.FilesystemPath) (*Ledger, error) {
	path := types.FilesystemPath(filepath.Join(string(cacheDir), LedgerFileName))

	data, err := os.ReadFile(string(path))
	if errors.Is(err, fs.ErrNotExist) {
		return &Ledger{path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read image ledger: %w", err)
	}

	var lf ledgerFile
	if err := toml.Unmarshal(data, &lf); err != nil {
		return nil, &CorruptLedgerError{Path: path, Cause: err}
	}

	return &Ledger{path: path, entries: lf.Images}, nil
}

// Record upserts an entry keyed by tag: rebuilding an explicitly tagged image
// replaces its row instead of accumulating duplicates.
func (l *Ledger) Record(entry LedgerEntry) {
	for i := range l.entries {
		if l.entries[i].Tag == entry.Tag {
			l.entries[i] = entry
			return
		}
	}
	l.entries = append(l.entries, entry)
}

// Remove drops the entry with the given tag. Reports whether a row was removed.
func (l *Ledger) Remove(tag container.ImageTag) bool {
	for i := range l.entries {
		if l.entries[i].Tag == string(tag) {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Lookup returns the entry with the given tag.
func (l *Ledger) Lookup(tag container.ImageTag) (LedgerEntry, bool) {
	for _, e := range l.entries {
		if e.Tag == string(tag) {
			return e, true
		}
	}
	return LedgerEntry{}, false
}

// Entries returns a copy of all ledger entries in recording order.
func (l *Ledger) Entries() []LedgerEntry {
	out := make([]LedgerEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Path returns the ledger file's location.
func (l *Ledger) Path() types.FilesystemPath { return l.path }

// Save writes the ledger back to disk, creating the cache directory if needed.
func (l *Ledger) Save() error {
	data, err := toml.Marshal(ledgerFile{Images: l.entries})
	if err != nil {
		return fmt.Errorf("failed to encode image ledger: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(string(l.path)), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	if err := os.WriteFile(string(l.path), data, 0o644); err != nil {
		return fmt.Errorf("failed to write image ledger: %w", err)
	}

	return nil
}
