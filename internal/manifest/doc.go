// SPDX-License-Identifier: MPL-2.0

// Package manifest parses pip-style dependency manifests (requirements.txt).
//
// A manifest is flat text with one package specifier per line: a package name
// with an optional version constraint ("flask", "flask==1.1.1",
// "requests >= 2.31.0"). Comment lines and blank lines are skipped; every
// other malformed line is a fatal parse error carrying its line number.
//
// Parsed manifests are ordered and immutable: the requirement order is the
// author's order, and accessors return copies.
package manifest
