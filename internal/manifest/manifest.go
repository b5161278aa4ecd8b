// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"kiln-cli/pkg/types"
)

// ErrInvalidManifest is the sentinel error wrapped by ParseError.
var ErrInvalidManifest = errors.New("invalid dependency manifest")

type (
	// Requirement is one parsed package specifier.
	Requirement struct {
		// Name is the package name as written in the manifest.
		Name string

		// Op is the version constraint operator ("==", ">=", ...).
		// Empty when the requirement is unconstrained.
		Op string

		// Version is the constraint version. Empty when Op is empty.
		Version string

		// Raw is the verbatim specifier text with comments and surrounding
		// whitespace removed. Kept for diagnostics.
		Raw string
	}

	// Manifest is an ordered, immutable list of requirements.
	Manifest struct {
		reqs []Requirement
	}

	// ParseError reports a malformed manifest line.
	ParseError struct {
		// File is the manifest path, empty when parsing from a reader.
		File types.FilesystemPath

		// Line is the 1-based line number of the offending line.
		Line int

		// Text is the offending line content, trimmed.
		Text string

		// Reason describes what is wrong with the line.
		Reason string
	}
)

// operator tokens, longest first so "===" wins over "==" and ">=" over ">".
var operators = []string{"===", "==", "~=", "!=", ">=", "<=", ">", "<"}

// nameRegex validates package names: alphanumeric start and end, with
// dots, underscores, and hyphens allowed in between.
var nameRegex = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)

// versionRegex validates constraint versions, including wildcard ("1.2.*"),
// epoch ("1!2.0"), and local ("1.0+abc") forms.
var versionRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._*+!-]*$`)

// String returns the canonical specifier, e.g. "flask==1.1.1".
func (r Requirement) String() string {
	if r.Op == "" {
		return r.Name
	}
	return r.Name + r.Op + r.Version
}

// IsPinned reports whether the requirement names an exact version.
func (r Requirement) IsPinned() bool {
	return r.Op == "==" || r.Op == "==="
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: invalid requirement %q: %s", e.File, e.Line, e.Text, e.Reason)
	}
	return fmt.Sprintf("line %d: invalid requirement %q: %s", e.Line, e.Text, e.Reason)
}

// Unwrap returns ErrInvalidManifest for errors.Is() compatibility.
func (e *ParseError) Unwrap() error { return ErrInvalidManifest }

// Parse reads a manifest from r. Any malformed line aborts the parse.
func Parse(r io.Reader) (*Manifest, error) {
	return parse(r, "")
}

// Load reads and parses the manifest file at path. Parse errors include the
// path and line number.
func Load(path types.FilesystemPath) (*Manifest, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()
	return parse(f, path)
}

func parse(r io.Reader, file types.FilesystemPath) (*Manifest, error) {
	var reqs []Requirement

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(stripComment(scanner.Text()))
		if line == "" {
			continue
		}

		req, reason := parseRequirement(line)
		if reason != "" {
			return nil, &ParseError{File: file, Line: lineNo, Text: line, Reason: reason}
		}
		reqs = append(reqs, req)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	return &Manifest{reqs: reqs}, nil
}

// stripComment removes a trailing comment. A "#" starts a comment at the
// beginning of a line or when preceded by whitespace.
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == '#' && (i == 0 || line[i-1] == ' ' || line[i-1] == '\t') {
			return line[:i]
		}
	}
	return line
}

// parseRequirement parses a single trimmed, comment-free specifier.
// It returns a non-empty reason string when the line is malformed.
func parseRequirement(line string) (Requirement, string) {
	if strings.HasPrefix(line, "-") {
		return Requirement{}, "pip options (-r, -e, --index-url, ...) are not supported"
	}
	if strings.Contains(line, ",") {
		return Requirement{}, "multiple constraints per requirement are not supported"
	}
	if strings.Contains(line, ";") {
		return Requirement{}, "environment markers are not supported"
	}
	if strings.ContainsAny(line, "[]") {
		return Requirement{}, "extras are not supported"
	}
	if strings.ContainsAny(line, "@/\\") {
		return Requirement{}, "URL and path requirements are not supported"
	}

	name, op, version, ok := splitOperator(line)
	if !ok {
		return Requirement{}, "invalid version constraint operator"
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return Requirement{}, "missing package name"
	}
	if !nameRegex.MatchString(name) {
		return Requirement{}, "invalid package name (must be alphanumeric, can include . _ -)"
	}

	if op != "" {
		version = strings.TrimSpace(version)
		if version == "" {
			return Requirement{}, "missing version after operator " + op
		}
		if !versionRegex.MatchString(version) {
			return Requirement{}, fmt.Sprintf("invalid version %q", version)
		}
	}

	return Requirement{Name: name, Op: op, Version: version, Raw: line}, ""
}

// splitOperator splits a specifier at its constraint operator. ok is false
// when a constraint character is present but does not form a known operator
// (e.g. a lone "=").
func splitOperator(s string) (name, op, version string, ok bool) {
	i := strings.IndexAny(s, "=<>!~")
	if i < 0 {
		return s, "", "", true
	}
	for _, candidate := range operators {
		if strings.HasPrefix(s[i:], candidate) {
			return s[:i], candidate, s[i+len(candidate):], true
		}
	}
	return "", "", "", false
}

// IsEmpty reports whether the manifest declares no requirements.
func (m *Manifest) IsEmpty() bool { return len(m.reqs) == 0 }

// Len returns the number of requirements.
func (m *Manifest) Len() int { return len(m.reqs) }

// Requirements returns a copy of the requirement list in author order.
func (m *Manifest) Requirements() []Requirement {
	out := make([]Requirement, len(m.reqs))
	copy(out, m.reqs)
	return out
}

// Specifiers returns the canonical specifier strings in author order,
// ready to be written back out as manifest lines.
func (m *Manifest) Specifiers() []string {
	out := make([]string, len(m.reqs))
	for i, r := range m.reqs {
		out[i] = r.String()
	}
	return out
}

// Hash returns a hex content hash of the canonical specifier list.
// Comments and whitespace do not affect the hash; requirement order does.
func (m *Manifest) Hash() string {
	h := sha256.New()
	for _, r := range m.reqs {
		h.Write([]byte(r.String()))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
