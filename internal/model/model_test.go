package model

import (
	"math"
	"testing"

	"github.com/polybench/polybench/internal/dsl"
)

func TestCalculateSuiteSummaryGeoMean(t *testing.T) {
	baseline := dsl.LangGo
	baselineTimes := []float64{100, 200, 400}
	otherTimes := []float64{100, 100, 100}

	var benchmarks []BenchmarkResult
	for i := range baselineTimes {
		measurements := map[dsl.Lang]Measurement{
			dsl.LangGo:         {NanosPerOp: baselineTimes[i]},
			dsl.LangTypeScript: {NanosPerOp: otherTimes[i]},
		}
		benchmarks = append(benchmarks, NewBenchmarkResult("b", "suite/b", "", &baseline, measurements))
	}

	summary := CalculateSuiteSummary(benchmarks)

	want := math.Exp((math.Log(1) + math.Log(2) + math.Log(4)) / 3)
	if math.Abs(summary.GeoMeanSpeedup-want) > 1e-9 {
		t.Fatalf("got geomean %v, want %v", summary.GeoMeanSpeedup, want)
	}

	if summary.Winner == nil || *summary.Winner != dsl.LangTypeScript {
		t.Fatalf("expected typescript to win, got %v", summary.Winner)
	}
}

func TestCalculateSuiteSummaryTieBand(t *testing.T) {
	baseline := dsl.LangGo
	measurements := map[dsl.Lang]Measurement{
		dsl.LangGo:     {NanosPerOp: 100},
		dsl.LangRust:   {NanosPerOp: 102},
	}
	benchmarks := []BenchmarkResult{NewBenchmarkResult("b", "suite/b", "", &baseline, measurements)}

	summary := CalculateSuiteSummary(benchmarks)
	if summary.Winner != nil {
		t.Fatalf("expected no winner within tie band, got %v", summary.Winner)
	}
}

func TestNewComparisonRatioDirection(t *testing.T) {
	baseline := Measurement{NanosPerOp: 200}
	other := Measurement{NanosPerOp: 100}

	c := NewComparison(dsl.LangGo, dsl.LangRust, baseline, other)
	if c.SpeedupRatio != 2.0 {
		t.Fatalf("got ratio %v, want 2.0", c.SpeedupRatio)
	}
	if c.Winner != WinnerSecond {
		t.Fatalf("expected other (rust) to win, got %v", c.Winner)
	}
}

func TestOverallSummaryAggregatesSuites(t *testing.T) {
	baseline := dsl.LangGo
	measurements := map[dsl.Lang]Measurement{
		dsl.LangGo:   {NanosPerOp: 100},
		dsl.LangRust: {NanosPerOp: 50},
	}
	bench := NewBenchmarkResult("b", "suite/b", "", &baseline, measurements)
	suite := NewSuiteResults("suite", "", []BenchmarkResult{bench})

	results := NewBenchmarkResults([]SuiteResults{suite})
	if results.Summary.TotalSuites != 1 {
		t.Fatalf("got %d suites", results.Summary.TotalSuites)
	}
	if results.Summary.TotalBenchmarks != 1 {
		t.Fatalf("got %d benchmarks", results.Summary.TotalBenchmarks)
	}
	if results.Summary.Winner == nil || *results.Summary.Winner != dsl.LangRust {
		t.Fatalf("expected rust to win overall, got %v", results.Summary.Winner)
	}
}
