// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	KilnfileNotFoundId Id = iota + 1
	KilnfileParseErrorId
	BaseNotPinnedId
	RootUserRejectedId
	ManifestNotFoundId
	ManifestParseErrorId
	SourceNotFoundId
	ContainerEngineNotFoundId
	ImageBuildFailedId
	VerifyFailedId
	ConfigLoadFailedId
	LedgerCorruptId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	kilnfileNotFoundIssue = &Issue{
		id: KilnfileNotFoundId,
		mdMsg: `
# No kilnfile found!

We searched for a kilnfile.cue but couldn't find one in the expected location.

## Search behavior:
- A directory argument means we look for ` + "`kilnfile.cue`" + ` inside it
- A file argument is used as-is
- No argument means the current directory

## Things you can try:
- Scaffold a kilnfile in your project directory:
~~~
$ kiln init
~~~

- Or point kiln at the right place:
~~~
$ kiln build /path/to/your/project
~~~

## Example kilnfile structure:
~~~cue
base:     "python:3.12-alpine"
manifest: "requirements.txt"
source:   "./app"
~~~`,
	}

	kilnfileParseErrorIssue = &Issue{
		id: KilnfileParseErrorId,
		mdMsg: `
# Failed to parse kilnfile!

Your kilnfile contains syntax errors or invalid configuration.

## Common issues:
- Invalid CUE syntax (missing quotes, braces, etc.)
- Unknown field names
- Missing required fields (base, manifest, source)
- A workdir that is not an absolute path

## Things you can try:
- Check the error message above for the specific line/column
- Validate the descriptor without building:
~~~
$ kiln validate
~~~

## Example of a valid kilnfile:
~~~cue
base:     "python:3.12-alpine"
manifest: "requirements.txt"
source:   "./app"
workdir:  "/code"
user:     "app"
env: {
  DJANGO_SETTINGS_MODULE: "app.settings"
}
~~~`,
	}

	baseNotPinnedIssue = &Issue{
		id: BaseNotPinnedId,
		mdMsg: `
# Base image is not pinned!

Every build must name an explicit base image version so rebuilding months
later produces the same runtime, not whatever the registry moved to.

## Accepted forms:
- A version tag: ` + "`python:3.12-alpine`" + `
- A digest: ` + "`python@sha256:...`" + `

## Rejected forms:
- No tag at all: ` + "`python`" + ` (resolves to a moving target)

Note: an explicit ` + "`:latest`" + ` is accepted but flagged by
` + "`kiln validate`" + ` because it defeats reproducibility on purpose.`,
	}

	rootUserRejectedIssue = &Issue{
		id: RootUserRejectedId,
		mdMsg: `
# Root user rejected!

The runtime user baked into the image must be unprivileged. Declaring
` + "`user: \"root\"`" + ` defeats the privilege drop that the image build
performs as its final step.

## Things you can try:
- Remove the ` + "`user:`" + ` field to get the default unprivileged account:
~~~cue
user: "app"  // the default
~~~

- Or pick any other name:
~~~cue
user: "django"
~~~`,
	}

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# Dependency manifest not found!

The kilnfile names a dependency manifest that does not exist on disk.

## Things you can try:
- Create the manifest next to your kilnfile:
~~~
$ touch requirements.txt
~~~

- Check the ` + "`manifest:`" + ` path (it resolves relative to the kilnfile)
- An empty manifest is valid: the install layer is simply omitted`,
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Failed to parse dependency manifest!

A line in the manifest is not a valid requirement. Every entry must be a
package name optionally followed by a version constraint.

## Valid lines:
~~~
Django>=3.2.4,<3.3
djangorestframework>=3.12.4,<3.13
psycopg2>=2.8.6
flake8
# comments and blank lines are fine
~~~

## Things you can try:
- Check the line number reported above
- Remove editable installs, URLs, and include directives; only plain
  requirement lines are supported`,
	}

	sourceNotFoundIssue = &Issue{
		id: SourceNotFoundId,
		mdMsg: `
# Source tree not found!

The kilnfile names a source directory that does not exist, so there is
nothing to copy into the image.

## Things you can try:
- Check the ` + "`source:`" + ` path (it resolves relative to the kilnfile)
- Make sure the path is a directory, not a file:
~~~cue
source: "./app"
~~~`,
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# Container engine not found!

Building an image requires Docker or Podman, and neither is available.

## Supported container engines:
- **Podman** (recommended for rootless setups)
- **Docker**

## Things you can try:
- Install Podman:
  - Linux: ` + "`sudo apt install podman`" + ` or ` + "`sudo dnf install podman`" + `
  - macOS: ` + "`brew install podman`" + `
  - Windows: Download from https://podman.io

- Install Docker:
  - https://docs.docker.com/get-docker/

- Configure your preferred engine in ~/.config/kiln/config.cue:
~~~cue
container_engine: "podman"  // or "docker", or "auto"
~~~

- Rendering needs no engine at all:
~~~
$ kiln render
~~~`,
	}

	imageBuildFailedIssue = &Issue{
		id: ImageBuildFailedId,
		mdMsg: `
# Image build failed!

The container engine reported a failing build step. Builds are all or
nothing: no image was produced and nothing was cached as "partially done".

## Common causes:
- A manifest entry that does not resolve (typo, yanked version)
- The pinned base image cannot be pulled (network, auth, typo)
- A file in the source tree that cannot be read

## Things you can try:
- Read the engine output above; the failing step is the last one printed
- Verify the dependency that failed installs locally:
~~~
$ pip install --no-cache-dir -r requirements.txt
~~~

- Run with --verbose to see the full engine invocation`,
	}

	verifyFailedIssue = &Issue{
		id: VerifyFailedId,
		mdMsg: `
# Image verification failed!

The built image does not satisfy the properties a kiln build guarantees:
an unprivileged default user, the declared workdir, and unbuffered
Python output.

## Things you can try:
- Inspect the image configuration yourself:
~~~
$ docker image inspect <image>
~~~

- If the image was built by something other than kiln, rebuild it:
~~~
$ kiln build
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the kiln configuration file.

## Configuration file locations:
- Linux: ~/.config/kiln/config.cue
- macOS: ~/Library/Application Support/kiln/config.cue
- Windows: %APPDATA%\kiln\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ kiln config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/kiln/config.cue
~~~

## Example configuration:
~~~cue
container_engine: "auto"

ui: {
  color_scheme: "auto"
  verbose: false
}

build: {
  force_rebuild: false
}
~~~`,
	}

	ledgerCorruptIssue = &Issue{
		id: LedgerCorruptId,
		mdMsg: `
# Image ledger is corrupt!

The ledger recording kiln-built images could not be parsed. Built images
are unaffected; only the bookkeeping for ` + "`kiln images`" + ` and
` + "`kiln prune`" + ` is lost.

## Things you can try:
- Remove the ledger file and let the next build recreate it:
~~~
$ rm "$(kiln config path | sed 's/config.cue/images.toml/')"
~~~

- List images directly via the engine:
~~~
$ docker images "kiln-built"
~~~`,
	}

	issues = map[Id]*Issue{
		kilnfileNotFoundIssue.Id():        kilnfileNotFoundIssue,
		kilnfileParseErrorIssue.Id():      kilnfileParseErrorIssue,
		baseNotPinnedIssue.Id():           baseNotPinnedIssue,
		rootUserRejectedIssue.Id():        rootUserRejectedIssue,
		manifestNotFoundIssue.Id():        manifestNotFoundIssue,
		manifestParseErrorIssue.Id():      manifestParseErrorIssue,
		sourceNotFoundIssue.Id():          sourceNotFoundIssue,
		containerEngineNotFoundIssue.Id(): containerEngineNotFoundIssue,
		imageBuildFailedIssue.Id():        imageBuildFailedIssue,
		verifyFailedIssue.Id():            verifyFailedIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		ledgerCorruptIssue.Id():           ledgerCorruptIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
