package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/dslfmt"
)

func newFmtCommand() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "fmt [FILES...]",
		Short: "Reformat .bench files to canonical form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args, write)
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "rewrite files in place instead of printing to stdout")

	return cmd
}

func runFmt(cmd *cobra.Command, paths []string, write bool) error {
	out := cmd.OutOrStdout()

	for i, path := range paths {
		original, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cli: reading %s: %w", path, err)
		}

		file, err := dsl.Parse(string(original))
		if err != nil {
			return fmt.Errorf("cli: parsing %s: %w", path, err)
		}

		formatted := dslfmt.Format(file)

		if write {
			if bytes.Equal(original, []byte(formatted)) {
				continue
			}
			if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
				return fmt.Errorf("cli: writing %s: %w", path, err)
			}
			continue
		}

		if i > 0 {
			fmt.Fprintln(out, "---")
		}
		fmt.Fprint(out, formatted)
	}

	return nil
}
