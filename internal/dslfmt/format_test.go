package dslfmt

import (
	"testing"

	"github.com/go-openapi/testify/v2/require"

	"github.com/polybench/polybench/internal/dsl"
)

func reparse(t *testing.T, source string) *dsl.File {
	t.Helper()
	file, err := dsl.Parse(source)
	require.NoError(t, err)

	return file
}

func TestFormatRoundTripsMinimalSuite(t *testing.T) {
	source := `suite "hashing" {
  iterations: 500
  warmup: 50
  requires: ["go", "rust"]
  baseline: "go"

  bench "sha256" {
    description: "hash a 1KB buffer"
    go: { h := sha256.Sum256(data) }
    rust: { let h = Sha256::digest(&data); }
  }
}
`
	file := reparse(t, source)
	formatted := Format(file)

	reparsed := reparse(t, formatted)
	require.Equal(t, file.Suites[0].Name, reparsed.Suites[0].Name)
	require.Equal(t, *file.Suites[0].Iterations, *reparsed.Suites[0].Iterations)
	require.Equal(t, *file.Suites[0].Baseline, *reparsed.Suites[0].Baseline)
	require.Equal(t, file.Suites[0].Requires, reparsed.Suites[0].Requires)

	bench := reparsed.Suites[0].Benchmarks[0]
	require.Equal(t, "h := sha256.Sum256(data)", bench.Implementations[dsl.LangGo].Code)
}

func TestFormatIsIdempotent(t *testing.T) {
	source := `suite "s" {
  fixture buf(size: usize) {
    hex: "deadbeef"
    shape: { Vec<u8> }
    go: { []byte(hexBuf) }
  }

  bench "b" {
    go: { use(buf) }
  }

  after {
    charting.speedupChart(
      title: "Speedup",
      minSpeedup: 1.5,
      sortBy: speedup,
      sortOrder: desc
    )
  }
}
`
	file := reparse(t, source)
	once := Format(file)
	twice := Format(reparse(t, once))

	require.Equal(t, once, twice)
}

func TestFormatPreservesFlatHookStyle(t *testing.T) {
	source := `suite "s" {
  bench "b" {
    before go: { setup() }
    go: { run() }
  }
}
`
	file := reparse(t, source)
	formatted := Format(file)

	reparsed := reparse(t, formatted)
	bench := reparsed.Suites[0].Benchmarks[0]
	require.Equal(t, dsl.HookStyleFlat, bench.HookStyle)
	require.Equal(t, "setup()", bench.Before[dsl.LangGo].Code)
}

func TestFormatUseStd(t *testing.T) {
	source := `use std::constants
use std::anvil

suite "noop" {
  bench "noop" {
    go: { _ = 1 }
  }
}
`
	file := reparse(t, source)
	formatted := Format(file)
	reparsed := reparse(t, formatted)

	require.Len(t, reparsed.UseStds, 2)
	require.Equal(t, "constants", reparsed.UseStds[0].Module)
}
