package measurement

import (
	"github.com/polybench/polybench/internal/model"
)

// Build reconstructs a model.Measurement from a runner's WireResult,
// applying outlier rejection and stability statistics (spec.md §4.4's
// "Result parsing").
func Build(wire *WireResult, outlierDetection bool, cvThreshold float64) model.Measurement {
	samples := sortedCopy(wire.Samples)

	var outliersRemoved uint64
	if outlierDetection {
		samples, outliersRemoved = rejectOutliers(samples)
	}

	m := model.Measurement{
		Iterations:  wire.Iterations,
		TotalNanos:  wire.TotalNanos,
		NanosPerOp:  wire.NanosPerOp,
		OpsPerSec:   wire.OpsPerSec,
		WarmupNanos: wire.WarmupNanos,
		Samples:     samples,
		BytesPerOp:  wire.BytesPerOp,
		AllocsPerOp: wire.AllocsPerOp,
		RawResult:   wire.RawResult,
	}

	if outliersRemoved > 0 {
		m.OutliersRemoved = &outliersRemoved
	}

	if len(samples) == 0 {
		return m
	}

	avg := mean(samples)
	sd := stdDev(samples, avg)
	cv := coefficientOfVariation(sd, avg)
	stable := cv <= cvThreshold

	minVal, maxVal := samples[0], samples[len(samples)-1]
	medianVal := percentile(samples, 0.5)
	p99Val := percentile(samples, 0.99)

	m.NanosPerOp = medianVal
	m.OpsPerSec = opsPerSec(medianVal)
	m.Min = &minVal
	m.Max = &maxVal
	m.Median = &medianVal
	m.P99 = &p99Val
	m.StdDev = &sd
	m.CV = &cv
	m.IsStable = &stable

	return m
}

// opsPerSec is the inverse of nanosPerOp scaled to ops/sec, satisfying
// ops_per_sec * nanos_per_op == 1e9 (spec.md §8, P8).
func opsPerSec(nanosPerOp float64) float64 {
	if nanosPerOp <= 0 {
		return 0
	}

	return 1e9 / nanosPerOp
}
