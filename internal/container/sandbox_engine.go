// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"os/exec"

	"kiln-cli/pkg/platform"
	"kiln-cli/pkg/types"
)

// SandboxAwareEngine wraps a container Engine to handle execution from within
// application sandboxes (Flatpak, Snap).
//
// When running inside a sandbox, container engines like Docker/Podman run on the
// host system, not inside the sandbox. The staged build context lives in the
// sandbox's own filesystem namespace, so paths kiln hands to the engine don't
// correspond to host paths unless the engine command itself runs on the host.
//
// This wrapper solves the problem by executing engine commands via the
// sandbox's host spawn mechanism (e.g., flatpak-spawn --host).
//
// When not in a sandbox, this wrapper passes through to the underlying engine
// without modification.
type SandboxAwareEngine struct {
	wrapped     Engine
	sandboxType platform.SandboxType
}

// NewSandboxAwareEngine wraps an Engine with sandbox awareness.
// If not running in a sandbox, the engine is returned unwrapped.
func NewSandboxAwareEngine(engine Engine) Engine {
	sandboxType := platform.DetectSandbox()
	if sandboxType == platform.SandboxNone {
		return engine
	}
	return &SandboxAwareEngine{
		wrapped:     engine,
		sandboxType: sandboxType,
	}
}

// newSandboxAwareEngineForTesting creates a SandboxAwareEngine with a specific
// sandbox type for testing purposes.
func newSandboxAwareEngineForTesting(engine Engine, sandboxType platform.SandboxType) *SandboxAwareEngine {
	return &SandboxAwareEngine{
		wrapped:     engine,
		sandboxType: sandboxType,
	}
}

// Name returns the wrapped engine name.
func (e *SandboxAwareEngine) Name() string {
	return e.wrapped.Name()
}

// Available checks if the wrapped engine is available.
func (e *SandboxAwareEngine) Available() bool {
	// The spawn command overhead doesn't affect availability status.
	return e.wrapped.Available()
}

// Version returns the wrapped engine version.
func (e *SandboxAwareEngine) Version(ctx context.Context) (string, error) {
	return e.wrapped.Version(ctx)
}

// BinaryPath returns the path to the container engine binary.
func (e *SandboxAwareEngine) BinaryPath() string {
	return e.wrapped.BinaryPath()
}

// Build builds an image from a Dockerfile.
// In sandbox mode, the build command is executed via the host spawn mechanism.
func (e *SandboxAwareEngine) Build(ctx context.Context, opts BuildOptions) error {
	if e.sandboxType == platform.SandboxNone {
		return e.wrapped.Build(ctx, opts)
	}

	base, ok := e.baseCLI()
	if !ok {
		return e.wrapped.Build(ctx, opts)
	}

	if err := opts.Validate(); err != nil {
		return err
	}

	fullArgs := e.buildSpawnArgs(e.wrapped.BinaryPath(), base.BuildArgs(opts))

	cmd := exec.CommandContext(ctx, fullArgs[0], fullArgs[1:]...)
	e.CustomizeCmd(cmd)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	if err := cmd.Run(); err != nil {
		return buildImageError(e.wrapped.Name(), opts, err)
	}

	return nil
}

// Run runs a command in a container.
// In sandbox mode, the run command is executed via the host spawn mechanism.
func (e *SandboxAwareEngine) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if e.sandboxType == platform.SandboxNone {
		return e.wrapped.Run(ctx, opts)
	}

	base, ok := e.baseCLI()
	if !ok {
		return e.wrapped.Run(ctx, opts)
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	fullArgs := e.buildSpawnArgs(e.wrapped.BinaryPath(), base.RunArgs(opts))

	cmd := exec.CommandContext(ctx, fullArgs[0], fullArgs[1:]...)
	e.CustomizeCmd(cmd)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	err := cmd.Run()

	result := &RunResult{}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = types.ExitCode(exitErr.ExitCode())
		} else {
			result.ExitCode = 1
			result.Error = err
		}
	}

	return result, nil
}

// ImageExists checks if an image exists in host-local storage.
func (e *SandboxAwareEngine) ImageExists(ctx context.Context, image ImageTag) (bool, error) {
	if e.sandboxType == platform.SandboxNone {
		return e.wrapped.ImageExists(ctx, image)
	}

	// Podman has a dedicated existence subcommand; Docker needs inspect.
	var checkArgs []string
	if e.wrapped.Name() == string(EngineTypePodman) {
		checkArgs = []string{"image", "exists", string(image)}
	} else {
		checkArgs = []string{"image", "inspect", string(image)}
	}

	fullArgs := e.buildSpawnArgs(e.wrapped.BinaryPath(), checkArgs)
	cmd := exec.CommandContext(ctx, fullArgs[0], fullArgs[1:]...)
	e.CustomizeCmd(cmd)
	err := cmd.Run()
	return err == nil, nil
}

// InspectImage returns the raw inspect JSON for an image.
func (e *SandboxAwareEngine) InspectImage(ctx context.Context, image ImageTag) (string, error) {
	if e.sandboxType == platform.SandboxNone {
		return e.wrapped.InspectImage(ctx, image)
	}

	base, ok := e.baseCLI()
	if !ok {
		return e.wrapped.InspectImage(ctx, image)
	}

	fullArgs := e.buildSpawnArgs(e.wrapped.BinaryPath(), base.InspectImageArgs(image))
	cmd := exec.CommandContext(ctx, fullArgs[0], fullArgs[1:]...)
	e.CustomizeCmd(cmd)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// RemoveImage removes an image from host-local storage.
func (e *SandboxAwareEngine) RemoveImage(ctx context.Context, image ImageTag, force bool) error {
	if e.sandboxType == platform.SandboxNone {
		return e.wrapped.RemoveImage(ctx, image, force)
	}

	base, ok := e.baseCLI()
	if !ok {
		return e.wrapped.RemoveImage(ctx, image, force)
	}

	fullArgs := e.buildSpawnArgs(e.wrapped.BinaryPath(), base.RemoveImageArgs(image, force))
	cmd := exec.CommandContext(ctx, fullArgs[0], fullArgs[1:]...)
	e.CustomizeCmd(cmd)
	return cmd.Run()
}

// CustomizeCmd applies the wrapped engine's overrides (env vars) to a command
// created outside the wrapped engine's CreateCommand method.
func (e *SandboxAwareEngine) CustomizeCmd(cmd *exec.Cmd) {
	if c, ok := e.wrapped.(CmdCustomizer); ok {
		c.CustomizeCmd(cmd)
	}
}

// buildSpawnArgs constructs the full argument list for spawning a command on the host.
// For Flatpak: ["flatpak-spawn", "--host", <binary>, <args...>]
// For Snap: ["snap", "run", "--shell", <binary>, <args...>]
func (e *SandboxAwareEngine) buildSpawnArgs(binary string, args []string) []string {
	spawnCmd := platform.SpawnCommandFor(e.sandboxType)
	spawnArgs := platform.SpawnArgsFor(e.sandboxType)

	result := make([]string, 0, 1+len(spawnArgs)+1+len(args))
	result = append(result, spawnCmd)
	result = append(result, spawnArgs...)
	result = append(result, binary)
	result = append(result, args...)

	return result
}

// baseCLI attempts to extract the BaseCLIEngine from the wrapped engine.
// This is needed to access argument building methods.
func (e *SandboxAwareEngine) baseCLI() (*BaseCLIEngine, bool) {
	if p, ok := e.wrapped.(BaseCLIProvider); ok {
		return p.BaseCLI(), true
	}
	return nil, false
}
