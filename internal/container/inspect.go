// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrImageNotInspectable is the sentinel error returned when inspect output
// holds no image records.
var ErrImageNotInspectable = errors.New("image inspect returned no records")

type (
	// ImageConfig is the subset of an image's OCI config that kiln verifies
	// after a build: the runtime user, working directory, and environment.
	// Docker and Podman both expose these fields under .Config in their
	// inspect JSON.
	ImageConfig struct {
		User       string
		WorkingDir string
		Env        map[string]string
		Labels     map[string]string
	}

	inspectRecord struct {
		Config struct {
			User       string            `json:"User"`
			WorkingDir string            `json:"WorkingDir"`
			Env        []string          `json:"Env"`
			Labels     map[string]string `json:"Labels"`
		} `json:"Config"`
	}
)

// InspectImageConfig inspects an image via the engine and parses the fields
// kiln cares about out of the raw JSON.
func InspectImageConfig(ctx context.Context, engine Engine, image ImageTag) (*ImageConfig, error) {
	raw, err := engine.InspectImage(ctx, image)
	if err != nil {
		return nil, err
	}
	return ParseImageConfig(raw)
}

// ParseImageConfig parses `image inspect` JSON output. Both Docker and Podman
// emit an array of records; kiln always inspects a single reference, so the
// first record wins.
func ParseImageConfig(raw string) (*ImageConfig, error) {
	var records []inspectRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("parsing image inspect output: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrImageNotInspectable
	}

	rec := records[0]
	cfg := &ImageConfig{
		User:       rec.Config.User,
		WorkingDir: rec.Config.WorkingDir,
		Env:        make(map[string]string, len(rec.Config.Env)),
		Labels:     rec.Config.Labels,
	}
	for _, kv := range rec.Config.Env {
		if k, v, ok := strings.Cut(kv, "="); ok {
			cfg.Env[k] = v
		}
	}
	return cfg, nil
}

// EnvValue returns the value of an environment variable baked into the image.
func (c *ImageConfig) EnvValue(key string) (string, bool) {
	v, ok := c.Env[key]
	return v, ok
}

// RunsAsRoot reports whether the image's configured user resolves to root.
// An unset user defaults to root, and both the name form and uid forms
// ("root", "0", "0:0") count.
func (c *ImageConfig) RunsAsRoot() bool {
	user := strings.TrimSpace(c.User)
	if user == "" {
		return true
	}
	name, _, _ := strings.Cut(user, ":")
	return name == "root" || name == "0"
}
