// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"kiln-cli/internal/manifest"
	"kiln-cli/pkg/kilnfile"
)

const (
	// DockerfileName is the rendered Dockerfile's name inside the build context.
	DockerfileName = "Dockerfile"

	// contextManifestName is the staged manifest file name inside the build context.
	contextManifestName = "requirements.txt"

	// contextSourceDir is the staged source tree directory inside the build context.
	contextSourceDir = "src"

	// imageManifestPath is where the manifest lands inside the image. It sits
	// outside the working directory on purpose: a failing install must abort
	// before the working-directory layer exists.
	imageManifestPath = "/requirements.txt"
)

// unbufferedEnvName/Value force unbuffered output for every process started
// from the image. The variable is always set and cannot be redeclared in a
// kilnfile env block.
const (
	unbufferedEnvName  = "PYTHONUNBUFFERED"
	unbufferedEnvValue = "1"
)

// RenderDockerfile renders the build steps for a kilnfile in fixed order:
// base image, environment, dependency install, source placement, privilege
// drop. The output is deterministic: identical inputs render byte-identical
// Dockerfiles. kf must have passed Validate; m is the parsed manifest
// (an empty manifest omits the install layer).
func RenderDockerfile(kf *kilnfile.Kilnfile, m *manifest.Manifest) string {
	var sb strings.Builder

	sb.WriteString("# Generated by kiln; edits are overwritten on the next build.\n")
	fmt.Fprintf(&sb, "FROM %s\n\n", kf.Base)

	fmt.Fprintf(&sb, "ENV %s=%s\n", unbufferedEnvName, unbufferedEnvValue)
	for _, name := range kf.EnvNames() {
		fmt.Fprintf(&sb, "ENV %s=%s\n", name, quote(kf.Env[name]))
	}
	sb.WriteString("\n")

	if m != nil && !m.IsEmpty() {
		sb.WriteString("# Runtime dependencies\n")
		fmt.Fprintf(&sb, "COPY %s %s\n", contextManifestName, imageManifestPath)
		fmt.Fprintf(&sb, "RUN pip install --no-cache-dir -r %s\n\n", imageManifestPath)
	}

	workdir := quote(string(kf.Workdir))
	sb.WriteString("# Application source\n")
	fmt.Fprintf(&sb, "RUN mkdir -p %s\n", workdir)
	fmt.Fprintf(&sb, "WORKDIR %s\n", workdir)
	fmt.Fprintf(&sb, "COPY %s/ %s\n\n", contextSourceDir, workdir)

	user := quote(string(kf.User))
	sb.WriteString("# Unprivileged execution identity\n")
	fmt.Fprintf(&sb, "RUN adduser -D %s\n", user)
	fmt.Fprintf(&sb, "USER %s\n", user)

	return sb.String()
}

// DockerfileHash returns the hex SHA-256 of a rendered Dockerfile.
func DockerfileHash(dockerfile string) string {
	sum := sha256.Sum256([]byte(dockerfile))
	return hex.EncodeToString(sum[:])
}

// quote renders s as a single POSIX shell word. Values reaching this point
// have passed kilnfile validation, which already rejects the control bytes
// syntax.Quote cannot represent.
func quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		return strconv.Quote(s)
	}
	return q
}
