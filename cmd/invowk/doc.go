// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for invowk.
//
// This package implements the Cobra command hierarchy for the invowk CLI,
// including the root command, subcommands for module management, command
// execution, TUI components, and internal utilities.
package cmd
