package executor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/polybench/polybench/internal/cache"
	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/ir"
	"github.com/polybench/polybench/internal/runtime"
)

// Validate runs the compile-check for every (benchmark, lang) pair across
// files, via the compile cache, collecting every failure before returning
// (spec.md §4.6: "collect all failures; if any exist, abort the whole run").
func (e *Executor) Validate(ctx context.Context, files []FileTask) error {
	group := &CompileErrorGroup{}

	for _, file := range files {
		for _, suite := range file.Suites {
			for i := range suite.Benchmarks {
				spec := &suite.Benchmarks[i]
				for lang := range spec.Implementations {
					if err := e.validateOne(ctx, &suite, spec, lang); err != nil {
						group.Add(toCompileFailure(err))
					}
				}
			}
		}
	}

	if group.Empty() {
		return nil
	}

	return &ValidationError{Groups: group.Group()}
}

func (e *Executor) validateOne(ctx context.Context, suite *ir.SuiteIR, spec *ir.BenchmarkSpec, lang dsl.Lang) error {
	rt, err := e.runtimeFor(lang)
	if err != nil {
		return err
	}

	source, err := rt.GenerateCheckSource(spec, suite)
	if err != nil {
		return err
	}

	toolchainID, err := rt.ToolchainID(ctx)
	if err != nil {
		e.logger.Warn("toolchain probe failed, skipping cache", slog.String("lang", string(lang)), slog.Any("error", err))

		return rt.CompileCheck(ctx, spec, suite)
	}

	key := cache.Key{Lang: lang, SourceHash: cache.HashSource(source), ToolchainID: toolchainID}

	if result, ok := e.cache.Get(key); ok {
		if result.OK {
			return nil
		}

		return &runtime.CompileError{Lang: string(lang), Benchmark: spec.FullName, SourceKind: "implementation", Stderr: result.Errors}
	}

	checkErr := rt.CompileCheck(ctx, spec, suite)

	var compileErr *runtime.CompileError
	if errors.As(checkErr, &compileErr) {
		_ = e.cache.Put(key, &cache.Result{OK: false, Errors: compileErr.Stderr}, nil)

		return checkErr
	}

	if checkErr != nil {
		return checkErr
	}

	_ = e.cache.Put(key, &cache.Result{OK: true}, nil)

	return nil
}

func toCompileFailure(err error) CompileFailure {
	var compileErr *runtime.CompileError
	if errors.As(err, &compileErr) {
		return CompileFailure{
			Lang:       dsl.Lang(compileErr.Lang),
			Benchmark:  compileErr.Benchmark,
			SourceKind: compileErr.SourceKind,
			Stderr:     compileErr.Stderr,
		}
	}

	return CompileFailure{SourceKind: "unknown", Stderr: err.Error()}
}
