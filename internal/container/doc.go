// SPDX-License-Identifier: MPL-2.0

// Package container provides a unified abstraction layer for container engines (Docker/Podman).
//
// The Engine interface defines the image-side operations kiln needs: Build, Run,
// ImageExists, InspectImage, and RemoveImage. Two implementations are provided:
// DockerEngine and PodmanEngine, both embedding BaseCLIEngine for shared CLI
// argument construction and command execution.
//
// Engine selection uses NewEngine(EngineType) with automatic fallback if the
// preferred engine is unavailable, or AutoDetectEngine() for preference-less
// detection (Podman is tried first).
//
// When kiln itself runs inside an application sandbox (Flatpak, Snap), engine
// invocations must happen on the host where the staged build context resolves;
// wrap engines with NewSandboxAwareEngine to get that behavior transparently.
package container
