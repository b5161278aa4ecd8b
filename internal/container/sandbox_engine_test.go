// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"slices"
	"testing"

	"kiln-cli/pkg/platform"
)

// mockEngine implements the Engine interface for testing.
type mockEngine struct {
	name        string
	available   bool
	binaryPath  string
	buildCalls  int
	runCalls    int
	removeCalls int
}

func (m *mockEngine) Name() string { return m.name }

func (m *mockEngine) Available() bool { return m.available }

func (m *mockEngine) Version(_ context.Context) (string, error) { return "1.0.0", nil }

func (m *mockEngine) BinaryPath() string { return m.binaryPath }

func (m *mockEngine) Build(_ context.Context, _ BuildOptions) error {
	m.buildCalls++
	return nil
}

func (m *mockEngine) Run(_ context.Context, _ RunOptions) (*RunResult, error) {
	m.runCalls++
	return &RunResult{}, nil
}

func (m *mockEngine) ImageExists(_ context.Context, _ ImageTag) (bool, error) {
	return true, nil
}

func (m *mockEngine) InspectImage(_ context.Context, _ ImageTag) (string, error) {
	return "[]", nil
}

func (m *mockEngine) RemoveImage(_ context.Context, _ ImageTag, _ bool) error {
	m.removeCalls++
	return nil
}

func TestSandboxAwareEngine_NoSandboxPassesThrough(t *testing.T) {
	t.Parallel()

	mock := &mockEngine{
		name:       "podman",
		available:  true,
		binaryPath: "/usr/bin/podman",
	}

	engine := newSandboxAwareEngineForTesting(mock, platform.SandboxNone)

	if err := engine.Build(t.Context(), BuildOptions{ContextDir: "/tmp/ctx", Tag: "t:1"}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if mock.buildCalls != 1 {
		t.Errorf("Build() should delegate to wrapped engine, calls = %d", mock.buildCalls)
	}

	if _, err := engine.Run(t.Context(), RunOptions{Image: "t:1"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if mock.runCalls != 1 {
		t.Errorf("Run() should delegate to wrapped engine, calls = %d", mock.runCalls)
	}

	if err := engine.RemoveImage(t.Context(), "t:1", false); err != nil {
		t.Fatalf("RemoveImage() error = %v", err)
	}
	if mock.removeCalls != 1 {
		t.Errorf("RemoveImage() should delegate to wrapped engine, calls = %d", mock.removeCalls)
	}
}

func TestSandboxAwareEngine_SpawnArgs(t *testing.T) {
	t.Parallel()

	mock := &mockEngine{
		name:       "podman",
		available:  true,
		binaryPath: "/usr/bin/podman",
	}

	tests := []struct {
		name        string
		sandboxType platform.SandboxType
		want        []string
	}{
		{
			name:        "flatpak prepends host spawn",
			sandboxType: platform.SandboxFlatpak,
			want:        []string{"flatpak-spawn", "--host", "/usr/bin/podman", "build", "-t", "t:1", "/tmp/ctx"},
		},
		{
			name:        "snap prepends shell spawn",
			sandboxType: platform.SandboxSnap,
			want:        []string{"snap", "run", "--shell", "/usr/bin/podman", "build", "-t", "t:1", "/tmp/ctx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine := newSandboxAwareEngineForTesting(mock, tt.sandboxType)
			got := engine.buildSpawnArgs(mock.binaryPath, []string{"build", "-t", "t:1", "/tmp/ctx"})
			if !slices.Equal(got, tt.want) {
				t.Errorf("buildSpawnArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSandboxAwareEngine_MetadataForwards(t *testing.T) {
	t.Parallel()

	mock := &mockEngine{
		name:       "docker",
		available:  true,
		binaryPath: "/usr/bin/docker",
	}
	engine := newSandboxAwareEngineForTesting(mock, platform.SandboxFlatpak)

	if engine.Name() != "docker" {
		t.Errorf("Name() = %q, want docker", engine.Name())
	}
	if !engine.Available() {
		t.Error("Available() = false, want true")
	}
	if engine.BinaryPath() != "/usr/bin/docker" {
		t.Errorf("BinaryPath() = %q", engine.BinaryPath())
	}
	v, err := engine.Version(t.Context())
	if err != nil || v != "1.0.0" {
		t.Errorf("Version() = %q, %v", v, err)
	}
}
