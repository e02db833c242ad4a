package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polybench/polybench/internal/dsl"
)

func newCompileCommand(configPath *string) *cobra.Command {
	var lang string
	var clearCache bool

	cmd := &cobra.Command{
		Use:   "compile [FILE]",
		Short: "Run the validation (compile-check) phase only",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, *configPath, args, lang, clearCache)
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "restrict to a single implementation language")
	cmd.Flags().Bool("no-cache", false, "bypass the compile cache (reserved; cache is always consulted per spec.md's determinism invariant)")
	cmd.Flags().BoolVar(&clearCache, "clear-cache", false, "clear the compile cache before validating")

	return cmd
}

func runCompile(cmd *cobra.Command, configPath string, args []string, langFlag string, clearCache bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	var lang dsl.Lang
	if langFlag != "" {
		parsed, ok := dsl.LangFromString(langFlag)
		if !ok {
			return fmt.Errorf("cli: unknown language %q", langFlag)
		}
		lang = parsed
	}

	paths, err := resolveFiles(args)
	if err != nil {
		return err
	}

	tasks, err := buildFileTasks(paths, lang, 0)
	if err != nil {
		return err
	}

	exec := newExecutor(cfg)
	defer exec.Shutdown()

	if clearCache {
		c := cacheFor(cfg)
		if err := c.Clear(); err != nil {
			return fmt.Errorf("cli: clearing cache: %w", err)
		}
	}

	ctx := cmd.Context()
	if err := exec.Validate(ctx, tasks); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "compile: OK (%d file(s))\n", len(paths))

	return nil
}
