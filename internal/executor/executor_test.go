package executor

import (
	"context"
	"testing"

	"github.com/go-openapi/testify/v2/require"

	"github.com/polybench/polybench/internal/cache"
	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/ir"
	"github.com/polybench/polybench/internal/model"
	"github.com/polybench/polybench/internal/runtime"
)

// fakeRuntime is a minimal in-memory runtime.Runtime used to exercise the
// executor without spawning real compilers.
type fakeRuntime struct {
	lang            dsl.Lang
	failCompile     bool
	failRun         bool
	nanosPerOp      []float64 // consumed in order across repeat RunBenchmark calls
	runCalls        int
	precompileCalls int
	anvilURL        string
}

func (f *fakeRuntime) Lang() dsl.Lang { return f.lang }

func (f *fakeRuntime) GenerateCheckSource(spec *ir.BenchmarkSpec, _ *ir.SuiteIR) (string, error) {
	return "check:" + spec.FullName, nil
}

func (f *fakeRuntime) CompileCheck(context.Context, *ir.BenchmarkSpec, *ir.SuiteIR) error {
	if f.failCompile {
		return &runtime.CompileError{Lang: string(f.lang), Benchmark: "bench", SourceKind: "implementation", Stderr: "boom"}
	}

	return nil
}

func (f *fakeRuntime) Precompile(context.Context, *ir.BenchmarkSpec, *ir.SuiteIR) error {
	f.precompileCalls++

	return nil
}

func (f *fakeRuntime) RunBenchmark(context.Context, *ir.BenchmarkSpec, *ir.SuiteIR) (model.Measurement, error) {
	if f.failRun {
		return model.Measurement{}, &runtime.ExecutionError{Lang: string(f.lang), Benchmark: "bench"}
	}

	idx := f.runCalls
	f.runCalls++
	nanos := 100.0
	if idx < len(f.nanosPerOp) {
		nanos = f.nanosPerOp[idx]
	}

	return model.Measurement{Iterations: 1000, TotalNanos: nanos * 1000, NanosPerOp: nanos, OpsPerSec: 1e9 / nanos}, nil
}

func (f *fakeRuntime) ToolchainID(context.Context) (string, error) { return "1.0", nil }
func (f *fakeRuntime) SetAnvilRPCURL(url string)                   { f.anvilURL = url }
func (f *fakeRuntime) LastPrecompileNanos() *uint64                { return nil }
func (f *fakeRuntime) Shutdown() error                             { return nil }

func newTestExecutor(t *testing.T, runtimes map[dsl.Lang]*fakeRuntime) *Executor {
	t.Helper()
	c := cache.New(t.TempDir())

	return New(c, WithRuntimeFactory(func(lang dsl.Lang) (runtime.Runtime, error) {
		return runtimes[lang], nil
	}))
}

func testTask() (FileTask, *ir.SuiteIR, *ir.BenchmarkSpec) {
	spec := ir.BenchmarkSpec{
		Name:            "bench",
		FullName:        "suite/bench",
		Count:           1,
		Implementations: map[dsl.Lang]string{dsl.LangGo: "return 1"},
	}
	suite := ir.SuiteIR{
		Name:       "suite",
		Order:      dsl.OrderSequential,
		Benchmarks: []ir.BenchmarkSpec{spec},
	}
	file := FileTask{Path: "suite.bench", Suites: []ir.SuiteIR{suite}}

	return file, &file.Suites[0], &file.Suites[0].Benchmarks[0]
}

func TestValidatePassesWhenCompileCheckSucceeds(t *testing.T) {
	file, _, _ := testTask()
	exec := newTestExecutor(t, map[dsl.Lang]*fakeRuntime{dsl.LangGo: {lang: dsl.LangGo}})

	err := exec.Validate(context.Background(), []FileTask{file})
	require.NoError(t, err)
}

func TestValidateFailsAndGroupsCompileErrors(t *testing.T) {
	file, _, _ := testTask()
	exec := newTestExecutor(t, map[dsl.Lang]*fakeRuntime{dsl.LangGo: {lang: dsl.LangGo, failCompile: true}})

	err := exec.Validate(context.Background(), []FileTask{file})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	require.Len(t, valErr.Groups, 1)
	require.Equal(t, "implementation", valErr.Groups[0].SourceKind)
}

func TestValidateUsesCacheOnSecondCall(t *testing.T) {
	file, _, _ := testTask()
	rt := &fakeRuntime{lang: dsl.LangGo}
	exec := newTestExecutor(t, map[dsl.Lang]*fakeRuntime{dsl.LangGo: rt})

	require.NoError(t, exec.Validate(context.Background(), []FileTask{file}))
	require.NoError(t, exec.Validate(context.Background(), []FileTask{file}))

	stats, err := exec.cache.Stats()
	require.NoError(t, err)
	require.Equal(t, uint64(1), stats.HitsSinceStart)
}

func TestRunBenchmarkRecordsFailureAndContinues(t *testing.T) {
	_, suite, spec := testTask()
	rt := &fakeRuntime{lang: dsl.LangGo, failRun: true}
	exec := newTestExecutor(t, map[dsl.Lang]*fakeRuntime{dsl.LangGo: rt})

	result := exec.runBenchmark(context.Background(), suite, spec)
	require.Empty(t, result.Measurements)
	require.Contains(t, result.Failed, dsl.LangGo)
}

func TestRunBenchmarkRepeatCountTakesMedian(t *testing.T) {
	_, suite, spec := testTask()
	spec.Count = 3
	rt := &fakeRuntime{lang: dsl.LangGo, nanosPerOp: []float64{300, 100, 200}}
	exec := newTestExecutor(t, map[dsl.Lang]*fakeRuntime{dsl.LangGo: rt})

	result := exec.runBenchmark(context.Background(), suite, spec)
	m, ok := result.Measurements[dsl.LangGo]
	require.True(t, ok)
	require.Equal(t, 200.0, m.NanosPerOp)
	require.Equal(t, uint64(3), *m.RunCount)
}

func TestBenchmarkOrderRandomIsAPermutation(t *testing.T) {
	suite := &ir.SuiteIR{
		Order:      dsl.OrderRandom,
		Benchmarks: make([]ir.BenchmarkSpec, 5),
	}

	order := benchmarkOrder(suite, 42)
	require.Len(t, order, 5)

	seen := make(map[int]bool)
	for _, idx := range order {
		seen[idx] = true
	}
	require.Len(t, seen, 5)
}
