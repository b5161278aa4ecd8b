// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"fmt"
	"strings"
)

// GenerateCUE generates CUE text from a Kilnfile struct.
// Fields are emitted in a fixed order with env vars sorted, so the output
// is deterministic for a given descriptor. Used by "kiln init".
func GenerateCUE(k *Kilnfile) string {
	var sb strings.Builder

	sb.WriteString("// Kilnfile - runtime image descriptor for kiln\n")
	sb.WriteString("// The base image must stay pinned; kiln refuses floating references.\n\n")

	fmt.Fprintf(&sb, "base: %q\n", k.Base)

	if k.Manifest != "" {
		fmt.Fprintf(&sb, "manifest: %q\n", k.Manifest)
	}
	if k.Source != "" {
		fmt.Fprintf(&sb, "source: %q\n", k.Source)
	}
	if k.Workdir != "" && k.Workdir != DefaultWorkdir {
		fmt.Fprintf(&sb, "workdir: %q\n", k.Workdir)
	}
	if k.User != "" && k.User != DefaultUsername {
		fmt.Fprintf(&sb, "user: %q\n", k.User)
	}
	if k.Tag != "" {
		fmt.Fprintf(&sb, "tag: %q\n", k.Tag)
	}

	if len(k.Env) > 0 {
		sb.WriteString("env: {\n")
		for _, name := range k.EnvNames() {
			fmt.Fprintf(&sb, "\t%s: %q\n", name, k.Env[name])
		}
		sb.WriteString("}\n")
	}

	return sb.String()
}
