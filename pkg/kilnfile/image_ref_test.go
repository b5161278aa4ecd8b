// SPDX-License-Identifier: MPL-2.0

package kilnfile_test

import (
	"errors"
	"strings"
	"testing"

	"kiln-cli/pkg/kilnfile"
)

func TestImageRef_Validate(t *testing.T) {
	t.Parallel()

	digestRef := "python@sha256:2d0f8ba9e26e5b1a5a5f3e89ab4c1b6dbeb58db7b6089cfbd38ce4085c4b2f50"

	tests := []struct {
		name    string
		ref     kilnfile.ImageRef
		wantErr error
	}{
		{name: "pinned by tag", ref: "python:3.12-alpine"},
		{name: "pinned by digest", ref: kilnfile.ImageRef(digestRef)},
		{name: "registry and tag", ref: "ghcr.io/acme/runtime:1.4.2"},
		{name: "latest tag is pinned enough", ref: "python:latest"},
		{name: "empty", ref: "", wantErr: kilnfile.ErrInvalidImageRef},
		{name: "uppercase repository", ref: "Python:3.12", wantErr: kilnfile.ErrInvalidImageRef},
		{name: "embedded space", ref: "python :3.12", wantErr: kilnfile.ErrInvalidImageRef},
		{name: "bare name", ref: "python", wantErr: kilnfile.ErrImageRefNotPinned},
		{name: "registry without tag", ref: "localhost:5000/app", wantErr: kilnfile.ErrImageRefNotPinned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.ref.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate(%q) error = %v, want nil", tt.ref, err)
				}
				if !tt.ref.IsPinned() {
					t.Errorf("IsPinned(%q) = false", tt.ref)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate(%q) = nil, want %v", tt.ref, tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate(%q) error = %v, want errors.Is %v", tt.ref, err, tt.wantErr)
			}
		})
	}
}

func TestImageRef_UnpinnedErrorSuggestsTag(t *testing.T) {
	t.Parallel()

	err := kilnfile.ImageRef("python").Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "not pinned") {
		t.Errorf("error = %q, want mention of pinning", err)
	}
}

func TestImageRef_Tag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ref  kilnfile.ImageRef
		want string
	}{
		{"python:3.12-alpine", "3.12-alpine"},
		{"python:latest", "latest"},
		{"python", ""},
		{"not a ref", ""},
	}
	for _, tt := range tests {
		if got := tt.ref.Tag(); got != tt.want {
			t.Errorf("Tag(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestImageRef_IsLatest(t *testing.T) {
	t.Parallel()

	if !kilnfile.ImageRef("python:latest").IsLatest() {
		t.Error("IsLatest(python:latest) = false")
	}
	if kilnfile.ImageRef("python:3.12-alpine").IsLatest() {
		t.Error("IsLatest(python:3.12-alpine) = true")
	}
	if kilnfile.ImageRef("python").IsLatest() {
		t.Error("IsLatest(python) = true for untagged ref")
	}
}
