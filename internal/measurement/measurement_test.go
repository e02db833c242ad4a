package measurement

import (
	"math"
	"testing"
)

func TestExtractLastLineIgnoresDiagnosticOutput(t *testing.T) {
	stdout := []byte("starting up\nwarming up...\n\n{\"iterations\":1}\n")
	line, err := ExtractLastLine(stdout)
	if err != nil {
		t.Fatalf("ExtractLastLine: %v", err)
	}
	if string(line) != `{"iterations":1}` {
		t.Fatalf("got %q", line)
	}
}

func TestExtractLastLineNoContent(t *testing.T) {
	_, err := ExtractLastLine([]byte("\n\n  \n"))
	if err != ErrNoResultLine {
		t.Fatalf("got %v, want ErrNoResultLine", err)
	}
}

func TestParseWireLineDecodesResult(t *testing.T) {
	stdout := []byte(`noise
{"iterations": 1000, "totalNanos": 5000000, "nanosPerOp": 5000, "opsPerSec": 200000, "samples": [4900, 5000, 5100]}`)

	result, err := ParseWireLine(stdout)
	if err != nil {
		t.Fatalf("ParseWireLine: %v", err)
	}
	if result.Iterations != 1000 {
		t.Fatalf("got iterations %d", result.Iterations)
	}
	if len(result.Samples) != 3 {
		t.Fatalf("got %d samples", len(result.Samples))
	}
}

func TestBuildOpsPerSecUnitsRoundTrip(t *testing.T) {
	wire := &WireResult{
		Iterations: 100,
		TotalNanos: 1_000_000,
		NanosPerOp: 10_000,
		OpsPerSec:  100_000,
		Samples:    []float64{9800, 10000, 10200, 9900, 10100},
	}

	m := Build(wire, true, 5.0)

	product := m.NanosPerOp * m.OpsPerSec
	if math.Abs(product-1e9) > 1 {
		t.Fatalf("ops_per_sec * nanos_per_op = %v, want ~1e9", product)
	}
}

func TestBuildStabilityFlag(t *testing.T) {
	wire := &WireResult{
		Samples: []float64{1000, 1001, 999, 1002, 998, 1000, 1001},
	}
	m := Build(wire, true, 5.0)
	if m.IsStable == nil || !*m.IsStable {
		t.Fatalf("expected stable measurement, got %+v", m.CV)
	}

	noisy := &WireResult{
		Samples: []float64{1000, 2000, 500, 3000, 100, 1500, 800},
	}
	mn := Build(noisy, true, 5.0)
	if mn.IsStable == nil || *mn.IsStable {
		t.Fatalf("expected unstable measurement for noisy samples, cv=%v", *mn.CV)
	}
}

func TestRejectOutliersRemovesExtremeValues(t *testing.T) {
	samples := []float64{100, 101, 99, 102, 98, 100, 101, 10000}
	sorted := sortedCopy(samples)
	filtered, removed := rejectOutliers(sorted)

	if removed != 1 {
		t.Fatalf("expected 1 outlier removed, got %d", removed)
	}
	for _, v := range filtered {
		if v == 10000 {
			t.Fatal("expected the extreme sample to be filtered out")
		}
	}
}

func TestRejectOutliersSkipsSmallSamples(t *testing.T) {
	samples := []float64{1, 1000}
	filtered, removed := rejectOutliers(samples)
	if removed != 0 || len(filtered) != 2 {
		t.Fatalf("expected small samples left untouched, got %v removed=%d", filtered, removed)
	}
}

func TestPercentileInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	if got := percentile(sorted, 0.5); got != 3 {
		t.Fatalf("median got %v, want 3", got)
	}
	if got := percentile(sorted, 0); got != 1 {
		t.Fatalf("p0 got %v, want 1", got)
	}
	if got := percentile(sorted, 1); got != 5 {
		t.Fatalf("p100 got %v, want 5", got)
	}
}
