package executor

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/ir"
	"github.com/polybench/polybench/internal/model"
)

// Run executes every benchmark across files, honouring each suite's
// execution order, and returns the aggregated BenchmarkResults (spec.md
// §4.6's run + aggregation phases). randSeed seeds the `random` order
// shuffle so re-running with the same seed reproduces the same ordering.
func (e *Executor) Run(ctx context.Context, files []FileTask, randSeed int64) (model.BenchmarkResults, error) {
	var suiteResults []model.SuiteResults

	for _, file := range files {
		for si := range file.Suites {
			suite := &file.Suites[si]

			results, err := e.runSuite(ctx, suite, randSeed)
			if err != nil {
				return model.BenchmarkResults{}, fmt.Errorf("executor: running suite %s: %w", suite.Name, err)
			}

			suiteResults = append(suiteResults, model.NewSuiteResults(suite.Name, suite.Description, results))
		}
	}

	return model.NewBenchmarkResults(suiteResults), nil
}

func (e *Executor) runSuite(ctx context.Context, suite *ir.SuiteIR, randSeed int64) ([]model.BenchmarkResult, error) {
	order := benchmarkOrder(suite, randSeed)

	results := make([]model.BenchmarkResult, len(suite.Benchmarks))

	switch suite.Order {
	case dsl.OrderParallel:
		sem := make(chan struct{}, e.maxParallel)
		var wg sync.WaitGroup
		for _, idx := range order {
			idx := idx
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				results[idx] = e.runBenchmark(ctx, suite, &suite.Benchmarks[idx])
			}()
		}
		wg.Wait()
	default: // sequential, random (random only reorders, still runs one at a time)
		for _, idx := range order {
			results[idx] = e.runBenchmark(ctx, suite, &suite.Benchmarks[idx])
		}
	}

	return results, nil
}

// benchmarkOrder returns the indices into suite.Benchmarks in the order
// they should run, per suite.Order (spec.md §4.6).
func benchmarkOrder(suite *ir.SuiteIR, randSeed int64) []int {
	order := make([]int, len(suite.Benchmarks))
	for i := range order {
		order[i] = i
	}

	if suite.Order == dsl.OrderRandom {
		rng := rand.New(rand.NewSource(randSeed))
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	return order
}

// runBenchmark runs one benchmark across every language in its
// implementation set, repeating `count` times per language and reducing to
// the per-op median measurement (spec.md §4.6 "Repeat runs").
func (e *Executor) runBenchmark(ctx context.Context, suite *ir.SuiteIR, spec *ir.BenchmarkSpec) model.BenchmarkResult {
	measurements := make(map[dsl.Lang]model.Measurement)
	failed := make(map[dsl.Lang]string)

	for lang := range spec.Implementations {
		rt, err := e.runtimeFor(lang)
		if err != nil {
			failed[lang] = err.Error()

			continue
		}

		count := spec.Count
		if count == 0 {
			count = 1
		}

		var runs []model.Measurement
		var lastErr error
		for i := uint64(0); i < count; i++ {
			m, err := rt.RunBenchmark(ctx, spec, suite)
			if err != nil {
				lastErr = err

				continue
			}
			runs = append(runs, m)
		}

		if len(runs) == 0 {
			failed[lang] = errorOrUnknown(lastErr)

			continue
		}

		measurements[lang] = medianMeasurement(runs, count)
	}

	result := model.NewBenchmarkResult(spec.Name, spec.FullName, spec.Description, suite.Baseline, measurements)
	result.Failed = failed

	return result
}

func errorOrUnknown(err error) string {
	if err == nil {
		return "unknown failure"
	}

	return err.Error()
}

// medianMeasurement picks the run whose NanosPerOp is the median across
// repeat runs, stamping RunCount for reporting.
func medianMeasurement(runs []model.Measurement, runCount uint64) model.Measurement {
	if len(runs) == 1 {
		m := runs[0]
		m.RunCount = &runCount

		return m
	}

	sorted := make([]model.Measurement, len(runs))
	copy(sorted, runs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].NanosPerOp < sorted[j].NanosPerOp })

	m := sorted[len(sorted)/2]
	m.RunCount = &runCount

	return m
}
