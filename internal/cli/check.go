package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/polybench/polybench/internal/dsl"
)

func newCheckCommand(configPath *string) *cobra.Command {
	var showAST bool

	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Parse and validate a .bench file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0], showAST)
		},
	}

	cmd.Flags().BoolVar(&showAST, "show-ast", false, "print the parsed suite/benchmark/fixture tree")

	return cmd
}

func runCheck(cmd *cobra.Command, path string, showAST bool) error {
	file, err := parseFile(path)
	if err != nil {
		return err
	}

	if _, err := lowerFile(path); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: OK\n", path)
	fmt.Fprintf(out, "  suites:  %d\n", len(file.Suites))

	var benches, fixtures int
	for _, suite := range file.Suites {
		benches += len(suite.Benchmarks)
		fixtures += len(suite.Fixtures)
	}
	fmt.Fprintf(out, "  benchmarks: %d\n", benches)
	fmt.Fprintf(out, "  fixtures:   %d\n", fixtures)

	if showAST {
		printAST(out, file)
	}

	return nil
}

func printAST(w io.Writer, file *dsl.File) {
	fmt.Fprintln(w, "")
	for _, use := range file.UseStds {
		fmt.Fprintf(w, "use std::%s\n", use.Module)
	}
	for _, suite := range file.Suites {
		fmt.Fprintf(w, "suite %q\n", suite.Name)
		for _, fixture := range suite.Fixtures {
			fmt.Fprintf(w, "  fixture %s\n", fixture.Name)
		}
		for _, bench := range suite.Benchmarks {
			langs := make([]string, 0, len(bench.Implementations))
			for lang := range bench.Implementations {
				langs = append(langs, lang.String())
			}
			fmt.Fprintf(w, "  bench %q [%d lang(s)]\n", bench.Name, len(langs))
		}
	}
}
