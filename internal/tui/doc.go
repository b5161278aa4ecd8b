// SPDX-License-Identifier: MPL-2.0

// Package tui provides terminal UI components built on Charm libraries.
//
// This package implements reusable TUI components (choose, confirm, input, filter,
// table, pager, etc.) using Bubble Tea + Bubbles models for interactive
// command-line experiences.
package tui
