// Package executor orchestrates validation, cache-keyed precompilation,
// and execution for a batch of lowered .bench files, per spec.md §4.6. It
// ties together internal/cache, internal/runtime, and internal/model into
// the run pipeline consumed by `polybench run`/`polybench compile`.
package executor

import (
	"log/slog"
	"sync"

	"github.com/polybench/polybench/internal/cache"
	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/runtime"
)

// Option configures an Executor, following the teacher's functional-option
// pattern (internal/pkg/parser/options.go).
type Option func(*options)

type options struct {
	logger         *slog.Logger
	maxParallel    int
	runtimeFactory func(lang dsl.Lang) (runtime.Runtime, error)
}

func optionsWithDefaults(opts []Option) *options {
	o := &options{
		logger:      slog.Default().With(slog.String("module", "executor")),
		maxParallel: 4,
	}

	for _, apply := range opts {
		apply(o)
	}

	return o
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxParallel sets the size of each per-runtime semaphore used during
// the precompile phase and of the semaphore that bounds a parallel-order
// suite's benchmark runs.
func WithMaxParallel(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxParallel = n
		}
	}
}

// WithRuntimeFactory overrides how an Executor constructs a Runtime for a
// language, defaulting to runtime.New against a per-language work directory.
// Tests use this to inject fakes.
func WithRuntimeFactory(factory func(lang dsl.Lang) (runtime.Runtime, error)) Option {
	return func(o *options) {
		o.runtimeFactory = factory
	}
}

// Executor runs the validate → precompile → run → aggregate pipeline for a
// set of suites.
type Executor struct {
	options

	cache *cache.Cache

	mu       sync.Mutex
	runtimes map[dsl.Lang]runtime.Runtime

	anvil *anvilNode
}

// New builds an Executor backed by the given compile cache.
func New(c *cache.Cache, opts ...Option) *Executor {
	return &Executor{
		options:  *optionsWithDefaults(opts),
		cache:    c,
		runtimes: make(map[dsl.Lang]runtime.Runtime),
	}
}

// runtimeFor lazily constructs (and memoizes) the Runtime for lang.
func (e *Executor) runtimeFor(lang dsl.Lang) (runtime.Runtime, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if rt, ok := e.runtimes[lang]; ok {
		return rt, nil
	}

	var rt runtime.Runtime
	var err error
	if e.runtimeFactory != nil {
		rt, err = e.runtimeFactory(lang)
	} else {
		rt, err = runtime.New(lang, defaultWorkDir(lang))
	}
	if err != nil {
		return nil, err
	}

	if e.anvil != nil {
		rt.SetAnvilRPCURL(e.anvil.rpcURL)
	}

	e.runtimes[lang] = rt

	return rt, nil
}

func defaultWorkDir(lang dsl.Lang) string {
	return ".polybench/runtime-env/" + string(lang)
}

// Shutdown tears down every constructed Runtime and despawns Anvil if it was
// started.
func (e *Executor) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var firstErr error
	for _, rt := range e.runtimes {
		if err := rt.Shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if e.anvil != nil {
		if err := e.anvil.stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
