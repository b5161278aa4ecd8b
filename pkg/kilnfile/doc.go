// SPDX-License-Identifier: MPL-2.0

// Package kilnfile provides types and parsing for kilnfile.cue build descriptors.
//
// A kilnfile declares everything kiln needs to provision a runtime image for a
// Python application: the pinned base image, the dependency manifest, the
// source tree, and the execution identity the image runs as. This package
// handles CUE schema validation, parsing to Go structs, and Go-level semantic
// validation (pinned-base enforcement, root-user rejection).
//
// This package uses pkg/cueutil for CUE parsing implementation details.
// External consumers should use the exported Parse() and ParseBytes() functions;
// the CUE parsing internals are not part of the public API.
package kilnfile
