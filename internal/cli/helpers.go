// Package cli assembles the cobra.Command tree for the polybench binary,
// wiring internal/dsl, internal/ir, internal/executor, internal/cache,
// internal/chart, internal/report, internal/dslfmt, and internal/diagnostics
// behind the subcommands spec.md §6 names. Grounded on the teacher's
// internal/cmd/benchviz.go for the config-load-then-branch shape, realized
// with github.com/spf13/cobra (internal/cli is modeled on
// defilantech-LLMKube's pkg/cli: one NewXCommand() *cobra.Command per
// subcommand, grouped under a root command).
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/polybench/polybench/internal/cache"
	"github.com/polybench/polybench/internal/config"
	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/executor"
	"github.com/polybench/polybench/internal/ir"
)

// ErrNotImplemented is returned by stub commands that exist only so the
// command tree is complete (spec.md §1's external-collaborator boundary).
var ErrNotImplemented = fmt.Errorf("not implemented: this command is an external-collaborator surface, outside the orchestrator core")

// loadConfig loads polybench.yaml from path, falling back to the embedded
// defaults when path is empty or missing.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = "polybench.yaml"
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return config.LoadDefaults()
		}

		return nil, fmt.Errorf("cli: checking config %s: %w", path, err)
	}

	return config.Load(path)
}

// parseFile reads and parses a single .bench file.
func parseFile(path string) (*dsl.File, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cli: reading %s: %w", path, err)
	}

	file, err := dsl.Parse(string(source))
	if err != nil {
		return nil, fmt.Errorf("cli: parsing %s: %w", path, err)
	}

	return file, nil
}

// lowerFile parses and lowers a single .bench file into a FileIR.
func lowerFile(path string, opts ...ir.Option) (*ir.FileIR, error) {
	file, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	lw := ir.New(filepath.Dir(path), opts...)

	fileIR, err := lw.Lower(file)
	if err != nil {
		return nil, fmt.Errorf("cli: lowering %s: %w", path, err)
	}

	return fileIR, nil
}

// resolveFiles expands explicit file arguments, or discovers every
// "*.bench" file under the current directory when none are given, matching
// spec.md §6's "optional file (else all in project)" contract for `compile`
// and `run`.
func resolveFiles(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	matches, err := filepath.Glob("*.bench")
	if err != nil {
		return nil, fmt.Errorf("cli: globbing .bench files: %w", err)
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("cli: no .bench file given and none found in the current directory")
	}

	return matches, nil
}

// buildFileTasks lowers every path into an executor.FileTask, applying a
// single-language filter when lang is non-empty.
func buildFileTasks(paths []string, lang dsl.Lang, iterationsOverride uint64) ([]executor.FileTask, error) {
	var opts []ir.Option
	if lang != "" {
		opts = append(opts, ir.WithLangFilter(lang))
	}
	if iterationsOverride > 0 {
		opts = append(opts, ir.WithIterationsOverride(iterationsOverride))
	}

	tasks := make([]executor.FileTask, 0, len(paths))
	for _, path := range paths {
		fileIR, err := lowerFile(path, opts...)
		if err != nil {
			return nil, err
		}

		tasks = append(tasks, executor.FileTask{Path: path, Suites: fileIR.Suites})
	}

	return tasks, nil
}

// cacheFor builds the Cache rooted at cfg's configured cache directory.
func cacheFor(cfg *config.Config) *cache.Cache {
	return cache.New(cfg.CacheDir)
}

// newExecutor builds an Executor backed by cfg's cache directory.
func newExecutor(cfg *config.Config) *executor.Executor {
	return executor.New(cacheFor(cfg))
}
