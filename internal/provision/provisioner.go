// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"kiln-cli/internal/container"
	"kiln-cli/internal/manifest"
	"kiln-cli/pkg/kilnfile"
)

// ContentTagRepo is the repository used for content-derived image tags.
// A build without an explicit tag produces ContentTagRepo:<hash12>.
const ContentTagRepo = "kiln-built"

// Compile-time interface check
var _ Provisioner = (*ImageProvisioner)(nil)

type (
	// Provisioner turns a kilnfile into a runtime image.
	Provisioner interface {
		// Provision runs the full build sequence for a kilnfile. The
		// returned Result carries the image tag and a cleanup function for
		// the staged build context.
		Provision(ctx context.Context, kf *kilnfile.Kilnfile) (*Result, error)
	}

	// Result contains the output of a provisioning run.
	Result struct {
		// ImageTag is the tag of the built (or cache-hit) image.
		ImageTag container.ImageTag

		// DockerfileHash identifies the rendered Dockerfile behind the image.
		DockerfileHash string

		// Rebuilt reports whether the engine actually built the image.
		// False means the content tag already existed and the engine build
		// was skipped entirely.
		Rebuilt bool

		// Cleanup removes the staged build context. Never nil after a
		// successful run; safe to call more than once.
		Cleanup func()
	}
)

// ImageProvisioner drives the fixed provisioning sequence: manifest load,
// Dockerfile render, context staging, content-derived tagging, engine build,
// ledger record. Steps run in that order exactly once; the first failure
// aborts the whole run with nothing tagged.
type ImageProvisioner struct {
	engine container.Engine
	config *Config
}

// NewImageProvisioner creates an ImageProvisioner. A nil cfg uses defaults.
func NewImageProvisioner(engine container.Engine, cfg *Config) *ImageProvisioner {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &ImageProvisioner{
		engine: engine,
		config: cfg,
	}
}

// Config returns the provisioner's configuration.
func (p *ImageProvisioner) Config() *Config {
	return p.config
}

// Provision implements Provisioner.
func (p *ImageProvisioner) Provision(ctx context.Context, kf *kilnfile.Kilnfile) (*Result, error) {
	if kf == nil {
		return nil, errors.New("kilnfile is nil")
	}
	if err := kf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid kilnfile: %w", err)
	}

	m, err := manifest.Load(kf.ManifestPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load dependency manifest: %w", err)
	}

	dockerfile := RenderDockerfile(kf, m)
	dockerfileHash := DockerfileHash(dockerfile)

	staged, err := p.stageContext(kf, m.IsEmpty(), dockerfile)
	if err != nil {
		return nil, err
	}

	key := contentKey(kf.Base, m.Hash(), staged.SourceHash, dockerfileHash)
	tag, derived := p.outputTag(kf, key)

	logger := p.config.logger()
	logger.Debug("provisioning image", "tag", tag, "derived", derived, "engine", p.engine.Name())

	// A content-derived tag encodes its inputs, so an existing image with
	// that tag IS the build output. Explicit tags encode nothing and are
	// always rebuilt.
	if derived && !p.config.ForceRebuild {
		exists, _ := p.engine.ImageExists(ctx, tag) // Error treated as "not built yet"
		if exists {
			logger.Debug("image already built, skipping engine", "tag", tag)
			staged.Cleanup()
			return &Result{
				ImageTag:       tag,
				DockerfileHash: dockerfileHash,
				Rebuilt:        false,
				Cleanup:        staged.Cleanup,
			}, nil
		}
	}

	buildOpts := container.BuildOptions{
		ContextDir: staged.Dir,
		Dockerfile: DockerfileName,
		Tag:        tag,
		NoCache:    p.config.NoCache,
		Stdout:     p.config.buildOutput(),
		Stderr:     p.config.buildOutput(),
	}

	if err := p.engine.Build(ctx, buildOpts); err != nil {
		staged.Cleanup()
		return nil, fmt.Errorf("failed to build image: %w", err)
	}

	p.recordBuild(kf, m, tag, staged.SourceHash, dockerfileHash)

	return &Result{
		ImageTag:       tag,
		DockerfileHash: dockerfileHash,
		Rebuilt:        true,
		Cleanup:        staged.Cleanup,
	}, nil
}

// TagFor computes the tag a build of kf would produce, without building.
// The source tree is hashed in place; staged copies hash identically.
func (p *ImageProvisioner) TagFor(kf *kilnfile.Kilnfile) (container.ImageTag, error) {
	if err := kf.Validate(); err != nil {
		return "", fmt.Errorf("invalid kilnfile: %w", err)
	}

	m, err := manifest.Load(kf.ManifestPath())
	if err != nil {
		return "", fmt.Errorf("failed to load dependency manifest: %w", err)
	}

	srcPath := kf.SourcePath()
	if _, err := os.Stat(string(srcPath)); errors.Is(err, fs.ErrNotExist) {
		return "", &SourceNotFoundError{Path: srcPath}
	}

	sourceHash, err := CalculateTreeHash(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to hash source tree: %w", err)
	}

	dockerfileHash := DockerfileHash(RenderDockerfile(kf, m))
	tag, _ := p.outputTag(kf, contentKey(kf.Base, m.Hash(), sourceHash, dockerfileHash))
	return tag, nil
}

// IsBuilt reports whether the image a build of kf would produce already
// exists in the engine's local storage.
func (p *ImageProvisioner) IsBuilt(ctx context.Context, kf *kilnfile.Kilnfile) (bool, error) {
	tag, err := p.TagFor(kf)
	if err != nil {
		return false, err
	}
	return p.engine.ImageExists(ctx, tag)
}

// Entries returns the image ledger rows under the configured cache dir.
func (p *ImageProvisioner) Entries() ([]LedgerEntry, error) {
	if p.config.CacheDir == "" {
		return nil, nil
	}
	ledger, err := OpenLedger(p.config.CacheDir)
	if err != nil {
		return nil, err
	}
	return ledger.Entries(), nil
}

// Prune removes kiln-built images recorded in the ledger and drops their
// rows. By default only content-derived tags (the ContentTagRepo cache) are
// pruned; all extends removal to explicitly tagged builds. Rows whose image
// is already gone are dropped without an engine call. Returns the tags whose
// images were removed.
func (p *ImageProvisioner) Prune(ctx context.Context, all bool) ([]container.ImageTag, error) {
	if p.config.CacheDir == "" {
		return nil, errors.New("no cache directory resolved")
	}

	ledger, err := OpenLedger(p.config.CacheDir)
	if err != nil {
		return nil, err
	}

	var (
		removed []container.ImageTag
		errs    []error
	)
	for _, entry := range ledger.Entries() {
		if !all && !strings.HasPrefix(entry.Tag, ContentTagRepo+":") {
			continue
		}
		tag := container.ImageTag(entry.Tag)

		exists, _ := p.engine.ImageExists(ctx, tag) // Error treated as "already gone"
		if exists {
			if err := p.engine.RemoveImage(ctx, tag, false); err != nil {
				errs = append(errs, fmt.Errorf("failed to remove image %s: %w", tag, err))
				continue
			}
			removed = append(removed, tag)
		}
		ledger.Remove(tag)
	}

	if err := ledger.Save(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return removed, errors.Join(errs...)
	}
	return removed, nil
}

// recordBuild appends the build to the image ledger. The image exists whether
// or not bookkeeping succeeds, so ledger failures are logged, not returned.
func (p *ImageProvisioner) recordBuild(kf *kilnfile.Kilnfile, m *manifest.Manifest, tag container.ImageTag, sourceHash, dockerfileHash string) {
	logger := p.config.logger()

	if p.config.CacheDir == "" {
		logger.Warn("image ledger not updated: no cache directory resolved")
		return
	}

	ledger, err := OpenLedger(p.config.CacheDir)
	if err != nil {
		logger.Warn("image ledger not updated", "err", err)
		return
	}

	ledger.Record(LedgerEntry{
		Tag:            string(tag),
		Base:           string(kf.Base),
		ManifestHash:   m.Hash(),
		SourceHash:     sourceHash,
		DockerfileHash: dockerfileHash,
		Engine:         p.engine.Name(),
		CreatedAt:      time.Now().UTC(),
	})

	if err := ledger.Save(); err != nil {
		logger.Warn("image ledger not updated", "err", err)
	}
}

// outputTag resolves the image tag for a build. Precedence: config override,
// kilnfile tag, content-derived default. The derived return reports whether
// the tag encodes the build inputs.
func (p *ImageProvisioner) outputTag(kf *kilnfile.Kilnfile, key string) (tag container.ImageTag, derived bool) {
	if p.config.TagOverride != "" {
		return p.config.TagOverride, false
	}
	if kf.Tag != "" {
		return container.ImageTag(kf.Tag), false
	}

	short := key[:12]
	if p.config.TagSuffix != "" {
		return container.ImageTag(fmt.Sprintf("%s:%s-%s", ContentTagRepo, short, p.config.TagSuffix)), true
	}
	return container.ImageTag(fmt.Sprintf("%s:%s", ContentTagRepo, short)), true
}

// contentKey derives the build's content identity from everything that
// shapes the image: base reference, manifest, source tree, rendered
// Dockerfile.
func contentKey(base kilnfile.ImageRef, manifestHash, sourceHash, dockerfileHash string) string {
	h := sha256.New()
	fmt.Fprintf(h, "base:%s\n", base)
	fmt.Fprintf(h, "manifest:%s\n", manifestHash)
	fmt.Fprintf(h, "source:%s\n", sourceHash)
	fmt.Fprintf(h, "dockerfile:%s\n", dockerfileHash)
	return hex.EncodeToString(h.Sum(nil))
}
