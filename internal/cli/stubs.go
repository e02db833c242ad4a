package cli

import (
	"github.com/spf13/cobra"
)

// stubSpec names one external-collaborator command: it exists in the tree
// so `polybench --help` is complete, but its body returns ErrNotImplemented —
// these surfaces sit outside the orchestrator core.
type stubSpec struct {
	use   string
	short string
}

var stubCommands = []stubSpec{
	{"init", "Scaffold a new polybench project (external collaborator, out of scope)"},
	{"new", "Scaffold a new suite or benchmark (external collaborator, out of scope)"},
	{"add", "Add a language implementation to an existing benchmark (external collaborator, out of scope)"},
	{"remove", "Remove a language implementation from a benchmark (external collaborator, out of scope)"},
	{"install", "Install per-language toolchains (external collaborator, out of scope)"},
	{"build", "Build a standalone distributable of a benchmark suite (external collaborator, out of scope)"},
	{"lsp", "Run the language-server protocol front-end (external collaborator, out of scope)"},
	{"upgrade", "Self-upgrade the polybench binary (external collaborator, out of scope)"},
}

// newStubCommands builds the not-yet-implemented command tree entries.
func newStubCommands() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(stubCommands))
	for _, spec := range stubCommands {
		spec := spec
		cmds = append(cmds, &cobra.Command{
			Use:   spec.use,
			Short: spec.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return ErrNotImplemented
			},
		})
	}

	return cmds
}
