package chart

import (
	"testing"

	"github.com/go-openapi/testify/v2/require"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/ir"
	"github.com/polybench/polybench/internal/model"
)

func testSuite(names ...string) (*ir.SuiteIR, model.SuiteResults) {
	baseline := dsl.LangGo

	specs := make([]ir.BenchmarkSpec, len(names))
	benches := make([]model.BenchmarkResult, len(names))
	for i, name := range names {
		specs[i] = ir.BenchmarkSpec{Name: name, FullName: "suite/" + name, Mode: dsl.ModeAuto}
		measurements := map[dsl.Lang]model.Measurement{
			dsl.LangGo: {NanosPerOp: 100 * float64(i+1), OpsPerSec: 1e7 / float64(i+1), Iterations: 1000},
			dsl.LangTypeScript: {
				NanosPerOp: 150 * float64(i+1),
				OpsPerSec:  1e7 / float64(i+1),
				Iterations: 1000,
			},
		}
		benches[i] = model.NewBenchmarkResult(name, "suite/"+name, "", &baseline, measurements)
	}

	suite := &ir.SuiteIR{Name: "suite", Order: dsl.OrderSequential, Baseline: &baseline, Benchmarks: specs}
	results := model.NewSuiteResults("suite", "", benches)

	return suite, results
}

// P14: adding a benchmark to exclude_benchmarks strictly reduces the number
// of rendered rows.
func TestFilterMonotonicity(t *testing.T) {
	suite, results := testSuite("alpha", "beta", "gamma")
	rows := rowsFromSuite(suite, results)

	before := applyFilters(rows, &dsl.ChartDirective{})
	after := applyFilters(rows, &dsl.ChartDirective{ExcludeBenchmarks: []string{"beta"}})

	require.Len(t, before, 3)
	require.Less(t, len(after), len(before))
	for _, r := range after {
		require.NotEqual(t, "beta", r.name)
	}
}

// P15: sorting by name ascending twice is idempotent.
func TestSortStability(t *testing.T) {
	suite, results := testSuite("gamma", "alpha", "beta")
	rows := rowsFromSuite(suite, results)

	directive := &dsl.ChartDirective{SortBy: dsl.SortName, SortOrder: dsl.SortAsc}

	once := applySort(rows, directive)
	twice := applySort(once, directive)

	require.Equal(t, namesOf(once), namesOf(twice))
	require.Equal(t, []string{"alpha", "beta", "gamma"}, namesOf(once))
}

func TestSortByTimeDescending(t *testing.T) {
	suite, results := testSuite("alpha", "beta", "gamma")
	rows := rowsFromSuite(suite, results)

	out := applySort(rows, &dsl.ChartDirective{SortBy: dsl.SortTime, SortOrder: dsl.SortDesc})
	require.Equal(t, []string{"gamma", "beta", "alpha"}, namesOf(out))
}

func TestNaturalSortIgnoresSortOrder(t *testing.T) {
	suite, results := testSuite("gamma", "alpha", "beta")
	rows := rowsFromSuite(suite, results)

	out := applySort(rows, &dsl.ChartDirective{SortBy: dsl.SortNatural, SortOrder: dsl.SortDesc})
	require.Equal(t, []string{"gamma", "alpha", "beta"}, namesOf(out))
}

func TestLimitTruncatesAfterSort(t *testing.T) {
	suite, results := testSuite("alpha", "beta", "gamma")
	rows := rowsFromSuite(suite, results)

	limit := 2
	out := applySort(rows, &dsl.ChartDirective{SortBy: dsl.SortName, SortOrder: dsl.SortAsc, Limit: &limit})
	require.Equal(t, []string{"alpha", "beta"}, namesOf(out))
}

func TestFilterWinnerAll(t *testing.T) {
	suite, results := testSuite("alpha", "beta")
	rows := rowsFromSuite(suite, results)

	out := applyFilters(rows, &dsl.ChartDirective{FilterWinner: "all"})
	require.Len(t, out, 2)
}

func namesOf(rows []row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.name
	}

	return out
}
