package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the polybench command tree.
func NewRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "polybench",
		Short: "Cross-language benchmark orchestrator",
		Long: `polybench parses .bench files, lowers them to a language-agnostic
intermediate representation, generates and compiles one standalone runner
per implementation language, executes the runners under a controlled
measurement protocol, and reports the comparative results.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to polybench.yaml (defaults embedded if omitted)")

	cmd.AddCommand(newCheckCommand(&configPath))
	cmd.AddCommand(newCompileCommand(&configPath))
	cmd.AddCommand(newCacheCommand(&configPath))
	cmd.AddCommand(newRunCommand(&configPath))
	cmd.AddCommand(newCodegenCommand(&configPath))
	cmd.AddCommand(newFmtCommand())
	cmd.AddCommand(newStubCommands()...)

	return cmd
}
