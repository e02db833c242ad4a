// Package runtime implements the per-language code generation, compilation,
// and execution backends that turn a BenchmarkSpec into a measured run. Each
// language is a small adapter plugged into a single process-oriented
// Runtime implementation (spec.md §4.4's "same interface" contract realized
// as a Go interface + static registry, per the teacher's functional-option
// registries generalized to a map[Lang]RuntimeFactory).
package runtime

import (
	"context"
	"fmt"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/ir"
	"github.com/polybench/polybench/internal/model"
)

// Runtime is implemented once per supported language. Every method mirrors
// spec.md §4.4's trait contract; context.Context replaces the original's
// async/kill-on-drop semantics.
type Runtime interface {
	Lang() dsl.Lang
	GenerateCheckSource(spec *ir.BenchmarkSpec, suite *ir.SuiteIR) (string, error)
	CompileCheck(ctx context.Context, spec *ir.BenchmarkSpec, suite *ir.SuiteIR) error
	Precompile(ctx context.Context, spec *ir.BenchmarkSpec, suite *ir.SuiteIR) error
	RunBenchmark(ctx context.Context, spec *ir.BenchmarkSpec, suite *ir.SuiteIR) (model.Measurement, error)
	ToolchainID(ctx context.Context) (string, error)
	SetAnvilRPCURL(url string)
	LastPrecompileNanos() *uint64
	Shutdown() error
}

// Factory constructs a Runtime rooted at a working directory.
type Factory func(workDir string) (Runtime, error)

var registry = map[dsl.Lang]Factory{}

// Register adds a Factory to the static registry. Called from each
// language file's package init.
func Register(lang dsl.Lang, factory Factory) {
	registry[lang] = factory
}

// New looks up and constructs the Runtime for lang.
func New(lang dsl.Lang, workDir string) (Runtime, error) {
	factory, ok := registry[lang]
	if !ok {
		return nil, fmt.Errorf("runtime: no runtime registered for language %q", lang)
	}

	return factory(workDir)
}

// Registered reports whether a Runtime is available for lang.
func Registered(lang dsl.Lang) bool {
	_, ok := registry[lang]

	return ok
}
