// SPDX-License-Identifier: MPL-2.0

// Package execute provides runtime resolution and execution context
// construction for the invowk command pipeline. It decouples
// CLI-layer orchestration from runtime selection logic and env var
// projection.
package execute
