// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// This package centralizes the platform-specific concerns kiln has: OS name
// constants for config directory resolution, and application sandbox
// detection (Flatpak, Snap) so container engine commands can be spawned on
// the host where the staged build context actually resolves.
package platform
