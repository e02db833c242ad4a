package chart

import (
	"math"
	"sort"
	"strings"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/ir"
	"github.com/polybench/polybench/internal/model"
)

// row is one benchmark's data as seen by the chart pipeline: the result
// plus the IR fields (mode, memory, natural index) that model.BenchmarkResult
// itself doesn't carry.
type row struct {
	index  int // position in suite.Benchmarks, for "natural" sort
	name   string
	result model.BenchmarkResult
	mode   dsl.RunMode
	memory bool
}

// rowsFromSuite zips a SuiteIR's benchmark specs with their results, in IR
// order.
func rowsFromSuite(suite *ir.SuiteIR, results model.SuiteResults) []row {
	byName := make(map[string]model.BenchmarkResult, len(results.Benchmarks))
	for _, b := range results.Benchmarks {
		byName[b.FullName] = b
	}

	rows := make([]row, 0, len(suite.Benchmarks))
	for i, spec := range suite.Benchmarks {
		result, ok := byName[spec.FullName]
		if !ok {
			continue
		}
		rows = append(rows, row{index: i, name: spec.Name, result: result, mode: spec.Mode, memory: spec.Memory})
	}

	return rows
}

// speedupMagnitude is how far a row's best non-baseline comparison sits from
// parity, in either direction, used for speedup sorting and min_speedup
// filtering.
func speedupMagnitude(r row) float64 {
	best := 1.0
	for _, c := range r.result.Comparisons {
		factor := c.SpeedupRatio
		if factor < 1.0 {
			factor = 1.0 / factor
		}
		if factor > best {
			best = factor
		}
	}

	return best
}

// representativeNanos picks a row's baseline measurement if one exists,
// otherwise the fastest measurement present, for time-based sorting.
func representativeNanos(r row) float64 {
	for _, c := range r.result.Comparisons {
		if m, ok := r.result.Measurements[c.BaselineLang]; ok {
			return m.NanosPerOp
		}
	}

	best := math.Inf(1)
	for _, m := range r.result.Measurements {
		if m.NanosPerOp < best {
			best = m.NanosPerOp
		}
	}

	if math.IsInf(best, 1) {
		return 0
	}

	return best
}

func representativeOpsPerSec(r row) float64 {
	best := 0.0
	for _, m := range r.result.Measurements {
		if m.OpsPerSec > best {
			best = m.OpsPerSec
		}
	}

	return best
}

// rowWinner is the language that wins this row's comparisons, "tie" when no
// comparison breaks the tie band, and "" when the row carries no baseline.
func rowWinner(r row) string {
	wins := make(map[dsl.Lang]int)
	any := false
	for _, c := range r.result.Comparisons {
		any = true
		switch c.Winner {
		case model.WinnerFirst:
			wins[c.BaselineLang]++
		case model.WinnerSecond:
			wins[c.OtherLang]++
		}
	}

	if !any {
		return ""
	}

	var winner dsl.Lang
	max := -1
	for lang, n := range wins {
		if n > max {
			max, winner = n, lang
		}
	}

	if max <= 0 {
		return "tie"
	}

	return string(winner)
}

// applyFilters runs the include/exclude/filter_winner/min_speedup chain in
// the fixed order spec.md §4.7 names.
func applyFilters(rows []row, d *dsl.ChartDirective) []row {
	out := rows

	if len(d.IncludeBenchmarks) > 0 {
		out = filterSlice(out, func(r row) bool { return matchesAny(r.name, d.IncludeBenchmarks) })
	}

	if len(d.ExcludeBenchmarks) > 0 {
		out = filterSlice(out, func(r row) bool { return !matchesAny(r.name, d.ExcludeBenchmarks) })
	}

	if d.FilterWinner != "" && !strings.EqualFold(d.FilterWinner, "all") {
		out = filterSlice(out, func(r row) bool { return strings.EqualFold(rowWinner(r), d.FilterWinner) })
	}

	if d.MinSpeedup != nil {
		min := *d.MinSpeedup
		out = filterSlice(out, func(r row) bool { return speedupMagnitude(r) >= min })
	}

	return out
}

func matchesAny(name string, needles []string) bool {
	lower := strings.ToLower(name)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}

	return false
}

func filterSlice(rows []row, keep func(row) bool) []row {
	out := make([]row, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}

	return out
}

// applySort orders rows by sort_by/sort_order, then truncates to limit.
// natural preserves IR order regardless of sort_order (spec.md §4.7).
func applySort(rows []row, d *dsl.ChartDirective) []row {
	sortBy := d.SortBy
	if sortBy == "" {
		sortBy = dsl.SortNatural
	}

	out := make([]row, len(rows))
	copy(out, rows)

	if sortBy == dsl.SortNatural {
		sort.SliceStable(out, func(i, j int) bool { return out[i].index < out[j].index })

		return truncate(out, d.Limit)
	}

	less := sortLess(sortBy)
	desc := d.SortOrder == dsl.SortDesc

	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}

		return less(out[i], out[j])
	})

	return truncate(out, d.Limit)
}

func sortLess(by dsl.SortBy) func(a, b row) bool {
	switch by {
	case dsl.SortName:
		return func(a, b row) bool { return a.name < b.name }
	case dsl.SortTime:
		return func(a, b row) bool { return representativeNanos(a) < representativeNanos(b) }
	case dsl.SortOps:
		return func(a, b row) bool { return representativeOpsPerSec(a) < representativeOpsPerSec(b) }
	case dsl.SortSpeedup:
		return func(a, b row) bool { return speedupMagnitude(a) < speedupMagnitude(b) }
	default:
		return func(a, b row) bool { return a.index < b.index }
	}
}

func truncate(rows []row, limit *int) []row {
	if limit == nil || *limit < 0 || *limit >= len(rows) {
		return rows
	}

	return rows[:*limit]
}
