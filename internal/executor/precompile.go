package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/ir"
)

// Precompile builds the run artifact for every (benchmark, lang) pair
// across files, bounded by a per-runtime semaphore (spec.md §4.6:
// "in parallel, bounded by a per-runtime semaphore"). Precompile time is
// captured on each Runtime but never counted as benchmark time.
func (e *Executor) Precompile(ctx context.Context, files []FileTask) error {
	sems := make(map[dsl.Lang]chan struct{})

	var wg sync.WaitGroup
	errCh := make(chan error, 1)
	var once sync.Once

	fail := func(err error) {
		once.Do(func() {
			select {
			case errCh <- err:
			default:
			}
		})
	}

	for _, file := range files {
		for si := range file.Suites {
			suite := &file.Suites[si]
			for bi := range suite.Benchmarks {
				spec := &suite.Benchmarks[bi]
				for lang := range spec.Implementations {
					lang := lang
					sem, ok := sems[lang]
					if !ok {
						sem = make(chan struct{}, e.maxParallel)
						sems[lang] = sem
					}
					wg.Add(1)
					sem <- struct{}{}

					go func(suite *ir.SuiteIR, spec *ir.BenchmarkSpec) {
						defer wg.Done()
						defer func() { <-sem }()

						rt, err := e.runtimeFor(lang)
						if err != nil {
							fail(fmt.Errorf("executor: precompile %s/%s: %w", lang, spec.FullName, err))

							return
						}

						if err := rt.Precompile(ctx, spec, suite); err != nil {
							fail(fmt.Errorf("executor: precompile %s/%s: %w", lang, spec.FullName, err))
						}
					}(suite, spec)
				}
			}
		}
	}

	wg.Wait()
	close(errCh)

	return <-errCh
}
