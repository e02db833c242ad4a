// Package model holds the result types produced by a benchmark run: a
// single language's Measurement, a benchmark's cross-language Comparison,
// and the suite/overall roll-ups consumed by the chart and report
// pipelines.
package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/polybench/polybench/internal/dsl"
)

// Measurement is what one language's runner reports for one benchmark,
// reconstructed from its single-line JSON wire payload.
type Measurement struct {
	Iterations      uint64    `json:"iterations"`
	TotalNanos      float64   `json:"totalNanos"`
	NanosPerOp      float64   `json:"nanosPerOp"`
	OpsPerSec       float64   `json:"opsPerSec"`
	WarmupNanos     *uint64   `json:"warmupNanos,omitempty"`
	SpawnNanos      *uint64   `json:"spawnNanos,omitempty"`
	Samples         []float64 `json:"samples,omitempty"`
	Min             *float64  `json:"min,omitempty"`
	Max             *float64  `json:"max,omitempty"`
	Median          *float64  `json:"median,omitempty"`
	P99             *float64  `json:"p99,omitempty"`
	StdDev          *float64  `json:"stdDev,omitempty"`
	CV              *float64  `json:"cv,omitempty"`
	IsStable        *bool     `json:"isStable,omitempty"`
	OutliersRemoved *uint64   `json:"outliersRemoved,omitempty"`
	BytesPerOp      *uint64   `json:"bytesPerOp,omitempty"`
	AllocsPerOp     *uint64   `json:"allocsPerOp,omitempty"`
	RunCount        *uint64   `json:"runCount,omitempty"`
	RawResult       *string   `json:"rawResult,omitempty"`
}

// ComparisonWinner names which side of a pairwise comparison is faster.
type ComparisonWinner string

// Comparison winner values.
const (
	WinnerFirst  ComparisonWinner = "first"
	WinnerSecond ComparisonWinner = "second"
	WinnerTie    ComparisonWinner = "tie"
)

// Comparison is a single baseline-vs-other pairing for one benchmark.
type Comparison struct {
	BaselineLang dsl.Lang
	OtherLang    dsl.Lang
	Baseline     Measurement
	Other        Measurement
	SpeedupRatio float64 // baseline_nanos / other_nanos; >1 means other is faster
	Winner       ComparisonWinner
}

// tieThreshold matches the ±5% band used for suite/overall winner
// determination in comparison.rs.
const tieThreshold = 0.05

// NewComparison builds a Comparison between a baseline and a non-baseline
// language measurement for the same benchmark.
func NewComparison(baselineLang, otherLang dsl.Lang, baseline, other Measurement) Comparison {
	ratio := 1.0
	if baseline.NanosPerOp > 0 && other.NanosPerOp > 0 {
		ratio = baseline.NanosPerOp / other.NanosPerOp
	}

	winner := WinnerTie
	switch {
	case math.Abs(ratio-1.0) < tieThreshold:
		winner = WinnerTie
	case ratio > 1.0:
		winner = WinnerSecond
	default:
		winner = WinnerFirst
	}

	return Comparison{
		BaselineLang: baselineLang,
		OtherLang:    otherLang,
		Baseline:     baseline,
		Other:        other,
		SpeedupRatio: ratio,
		Winner:       winner,
	}
}

// BenchmarkResult is the full set of per-language measurements for one
// benchmark plus its baseline comparisons, keyed by the non-baseline
// language (generalising the original two-language comparison.rs to the
// full language set a suite exercises).
type BenchmarkResult struct {
	Name         string
	FullName     string
	Description  string
	Measurements map[dsl.Lang]Measurement
	Comparisons  map[dsl.Lang]Comparison // keyed by the non-baseline lang
	Failed       map[dsl.Lang]string     // lang -> failure reason, for crashes/timeouts
}

// NewBenchmarkResult builds a BenchmarkResult, deriving a Comparison against
// baseline for every other language present in measurements.
func NewBenchmarkResult(name, fullName, description string, baseline *dsl.Lang, measurements map[dsl.Lang]Measurement) BenchmarkResult {
	result := BenchmarkResult{
		Name:         name,
		FullName:     fullName,
		Description:  description,
		Measurements: measurements,
	}

	if baseline == nil {
		return result
	}

	baseMeasurement, ok := measurements[*baseline]
	if !ok {
		return result
	}

	result.Comparisons = make(map[dsl.Lang]Comparison)
	for lang, m := range measurements {
		if lang == *baseline {
			continue
		}
		result.Comparisons[lang] = NewComparison(*baseline, lang, baseMeasurement, m)
	}

	return result
}

// SuiteSummary rolls up win counts and a geometric-mean speedup across every
// benchmark in a suite.
type SuiteSummary struct {
	TotalBenchmarks      int
	WinsByLang           map[dsl.Lang]int
	Ties                 int
	GeoMeanSpeedup       float64
	Winner               *dsl.Lang
	UnstableCount        int
	TotalOutliersRemoved uint64
}

// CalculateSuiteSummary derives a SuiteSummary from a suite's benchmark
// results, following the log-space geometric mean in
// crates/poly-bench-executor/src/comparison.rs generalised across every
// non-baseline language rather than a hardcoded Go/TypeScript pair.
func CalculateSuiteSummary(benchmarks []BenchmarkResult) SuiteSummary {
	summary := SuiteSummary{
		TotalBenchmarks: len(benchmarks),
		WinsByLang:      make(map[dsl.Lang]int),
	}

	var logSpeedups []float64

	for _, bench := range benchmarks {
		for _, m := range bench.Measurements {
			if m.IsStable != nil && !*m.IsStable {
				summary.UnstableCount++
			}
			if m.OutliersRemoved != nil {
				summary.TotalOutliersRemoved += *m.OutliersRemoved
			}
		}

		for _, comparison := range bench.Comparisons {
			switch comparison.Winner {
			case WinnerFirst:
				summary.WinsByLang[comparison.BaselineLang]++
			case WinnerSecond:
				summary.WinsByLang[comparison.OtherLang]++
			case WinnerTie:
				summary.Ties++
			}

			if comparison.Baseline.NanosPerOp > 0 && comparison.Other.NanosPerOp > 0 {
				logSpeedups = append(logSpeedups, math.Log(comparison.Baseline.NanosPerOp/comparison.Other.NanosPerOp))
			}
		}
	}

	summary.GeoMeanSpeedup = geomean(logSpeedups)
	summary.Winner = deriveWinner(summary.GeoMeanSpeedup, benchmarks)

	return summary
}

func geomean(logValues []float64) float64 {
	if len(logValues) == 0 {
		return 1.0
	}

	var sum float64
	for _, v := range logValues {
		sum += v
	}

	return math.Exp(sum / float64(len(logValues)))
}

// deriveWinner resolves the baseline language from the first comparison
// present (every comparison in a suite shares one baseline), returning nil
// for a tie-band result per tieThreshold.
func deriveWinner(geoMeanSpeedup float64, benchmarks []BenchmarkResult) *dsl.Lang {
	if math.Abs(geoMeanSpeedup-1.0) < tieThreshold {
		return nil
	}

	for _, bench := range benchmarks {
		for _, comparison := range bench.Comparisons {
			baseline := comparison.BaselineLang
			other := comparison.OtherLang
			if geoMeanSpeedup < 1.0 {
				return &baseline
			}

			return &other
		}
	}

	return nil
}

// SuiteResults is one suite's benchmark results plus its summary.
type SuiteResults struct {
	Name        string
	Description string
	Benchmarks  []BenchmarkResult
	Summary     SuiteSummary
}

// NewSuiteResults computes the suite summary from its benchmarks.
func NewSuiteResults(name, description string, benchmarks []BenchmarkResult) SuiteResults {
	return SuiteResults{
		Name:        name,
		Description: description,
		Benchmarks:  benchmarks,
		Summary:     CalculateSuiteSummary(benchmarks),
	}
}

// OverallSummary rolls up every suite in a run.
type OverallSummary struct {
	TotalSuites          int
	TotalBenchmarks      int
	WinsByLang           map[dsl.Lang]int
	Ties                 int
	GeoMeanSpeedup       float64
	Winner               *dsl.Lang
	WinnerDescription    string
	UnstableCount        int
	TotalOutliersRemoved uint64
}

// CalculateOverallSummary rolls every SuiteResults into one OverallSummary.
func CalculateOverallSummary(suites []SuiteResults) OverallSummary {
	summary := OverallSummary{
		TotalSuites: len(suites),
		WinsByLang:  make(map[dsl.Lang]int),
	}

	var logSpeedups []float64
	var allBenchmarks []BenchmarkResult

	for _, suite := range suites {
		summary.TotalBenchmarks += len(suite.Benchmarks)
		summary.Ties += suite.Summary.Ties
		summary.UnstableCount += suite.Summary.UnstableCount
		summary.TotalOutliersRemoved += suite.Summary.TotalOutliersRemoved
		for lang, wins := range suite.Summary.WinsByLang {
			summary.WinsByLang[lang] += wins
		}

		allBenchmarks = append(allBenchmarks, suite.Benchmarks...)

		for _, bench := range suite.Benchmarks {
			for _, comparison := range bench.Comparisons {
				if comparison.Baseline.NanosPerOp > 0 && comparison.Other.NanosPerOp > 0 {
					logSpeedups = append(logSpeedups, math.Log(comparison.Baseline.NanosPerOp/comparison.Other.NanosPerOp))
				}
			}
		}
	}

	summary.GeoMeanSpeedup = geomean(logSpeedups)
	summary.Winner = deriveWinner(summary.GeoMeanSpeedup, allBenchmarks)
	summary.WinnerDescription = describeWinner(summary.Winner, summary.GeoMeanSpeedup)

	return summary
}

func describeWinner(winner *dsl.Lang, geoMeanSpeedup float64) string {
	if winner == nil {
		return "Similar performance"
	}

	factor := geoMeanSpeedup
	if factor < 1.0 {
		factor = 1.0 / factor
	}

	return fmt.Sprintf("%s is %.2fx faster overall", winner.DisplayLabel(), factor)
}

// BenchmarkResults is the full tree returned by a run: per-suite results
// plus the overall roll-up, the shape persisted to out/results.json.
type BenchmarkResults struct {
	Suites  []SuiteResults `json:"suites"`
	Summary OverallSummary `json:"summary"`
}

// NewBenchmarkResults computes the overall summary from the suite results.
func NewBenchmarkResults(suites []SuiteResults) BenchmarkResults {
	return BenchmarkResults{
		Suites:  suites,
		Summary: CalculateOverallSummary(suites),
	}
}

// SortedLangs returns the languages present in wins, sorted by their
// identifier string, for deterministic report rendering.
func SortedLangs(wins map[dsl.Lang]int) []dsl.Lang {
	var langs []dsl.Lang
	for _, lang := range dsl.AllLangs() {
		if _, ok := wins[lang]; ok {
			langs = append(langs, lang)
		}
	}

	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })

	return langs
}
