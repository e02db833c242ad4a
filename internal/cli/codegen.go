package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/runtime"
)

func newCodegenCommand(configPath *string) *cobra.Command {
	var lang string
	var output string

	cmd := &cobra.Command{
		Use:   "codegen FILE --lang L --output DIR",
		Short: "Emit the generated runner source for every benchmark, without compiling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCodegen(cmd, args[0], lang, output)
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "implementation language to generate (required)")
	cmd.Flags().StringVar(&output, "output", "", "directory to write generated sources to (required)")
	cmd.MarkFlagRequired("lang")
	cmd.MarkFlagRequired("output")

	return cmd
}

func runCodegen(cmd *cobra.Command, path, langFlag, output string) error {
	lang, ok := dsl.LangFromString(langFlag)
	if !ok {
		return fmt.Errorf("cli: unknown language %q", langFlag)
	}

	fileIR, err := lowerFile(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(output, 0o755); err != nil {
		return fmt.Errorf("cli: creating output dir: %w", err)
	}

	rt, err := runtime.New(lang, filepath.Join(output, ".runtime-env"))
	if err != nil {
		return fmt.Errorf("cli: constructing %s runtime: %w", lang, err)
	}
	defer rt.Shutdown()

	var written int
	for _, suite := range fileIR.Suites {
		for i := range suite.Benchmarks {
			spec := &suite.Benchmarks[i]
			if _, ok := spec.Implementations[lang]; !ok {
				continue
			}

			source, err := rt.GenerateCheckSource(spec, &suite)
			if err != nil {
				return fmt.Errorf("cli: generating %s/%s: %w", lang, spec.FullName, err)
			}

			name := fmt.Sprintf("%s_%s.gen", suite.Name, spec.Name)
			dest := filepath.Join(output, name)
			if err := os.WriteFile(dest, []byte(source), 0o644); err != nil {
				return fmt.Errorf("cli: writing %s: %w", dest, err)
			}
			written++
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "codegen: wrote %d file(s) to %s\n", written, output)

	return nil
}
