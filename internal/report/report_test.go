package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-openapi/testify/v2/require"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/model"
)

func sampleResults() model.BenchmarkResults {
	baseline := dsl.LangGo
	bench := model.NewBenchmarkResult("sha256", "hashing/sha256", "hash a buffer", &baseline, map[dsl.Lang]model.Measurement{
		dsl.LangGo:         {Iterations: 1000, NanosPerOp: 100, OpsPerSec: 1e7},
		dsl.LangTypeScript: {Iterations: 1000, NanosPerOp: 50, OpsPerSec: 2e7},
	})
	suite := model.NewSuiteResults("hashing", "hash benchmarks", []model.BenchmarkResult{bench})

	return model.NewBenchmarkResults([]model.SuiteResults{suite})
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"console", "markdown", "json"} {
		_, err := ParseFormat(valid)
		require.NoError(t, err)
	}

	_, err := ParseFormat("yaml")
	require.Error(t, err)
}

func TestWriteConsoleMentionsBenchmark(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResults(), FormatConsole))

	out := buf.String()
	require.True(t, strings.Contains(out, "sha256"))
	require.True(t, strings.Contains(out, "Hashing"))
}

func TestWriteMarkdownProducesTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResults(), FormatMarkdown))

	out := buf.String()
	require.True(t, strings.Contains(out, "| benchmark | lang |"))
	require.True(t, strings.Contains(out, "## Hashing"))
}

func TestWriteJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResults(), FormatJSON))

	var decoded model.BenchmarkResults
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, 1, decoded.Summary.TotalSuites)
	require.Equal(t, 1, decoded.Summary.TotalBenchmarks)
}
