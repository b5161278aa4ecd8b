// SPDX-License-Identifier: MPL-2.0

// Package provision builds runtime images from a kilnfile.
//
// The provisioning sequence is fixed and all-or-nothing: load and parse the
// dependency manifest, stage the build context (manifest file plus source tree
// copied verbatim), render the Dockerfile, derive a content-addressed image
// tag, and drive the container engine build. A staged context that cannot be
// assembled aborts before the engine is ever invoked; a failing engine build
// leaves nothing tagged.
//
// The main entry point is the Provisioner interface, implemented by
// ImageProvisioner:
//
//	provisioner := provision.NewImageProvisioner(engine, cfg)
//	result, err := provisioner.Provision(ctx, kf)
//	// result.ImageTag contains the built image
//
// Successful builds are recorded in a TOML ledger under the cache directory,
// which backs image listing and pruning.
package provision
