package diagnostics

import (
	"testing"

	"github.com/go-openapi/testify/v2/require"
)

func hasKind(diags []Diagnostic, kind Kind) bool {
	for _, d := range diags {
		if d.Kind == kind {
			return true
		}
	}

	return false
}

func TestAnalyzeEmptySuite(t *testing.T) {
	src := `suite "empty" {
}
`
	diags := Analyze(src)
	require.True(t, hasKind(diags, KindEmptySuite))
}

func TestAnalyzeEmptyBenchmark(t *testing.T) {
	src := `suite "s" {
  bench "b" {
  }
}
`
	diags := Analyze(src)
	require.True(t, hasKind(diags, KindEmptyBenchmark))
}

func TestAnalyzeUnusedFixture(t *testing.T) {
	src := `suite "s" {
  fixture buf() {
    hex: "deadbeef"
  }

  bench "b" {
    go: { return 1 }
  }
}
`
	diags := Analyze(src)
	require.True(t, hasKind(diags, KindUnusedFixture))
}

func TestAnalyzeSyntaxError(t *testing.T) {
	src := `suite "s" {`
	diags := Analyze(src)
	require.NotEmpty(t, diags)
}
