package ir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/polybench/polybench/internal/dsl"
)

func TestLowerEffectiveConfigLayering(t *testing.T) {
	source := `suite "s" {
  iterations: 500
  requires: ["go"]

  bench "a" {
    iterations: 2000
    go: { run() }
  }

  bench "b" {
    go: { run() }
  }
}
`
	file, err := dsl.Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	fileIR, err := New(t.TempDir()).Lower(file)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	suite := fileIR.Suites[0]
	var a, b BenchmarkSpec
	for _, b2 := range suite.Benchmarks {
		if b2.Name == "a" {
			a = b2
		}
		if b2.Name == "b" {
			b = b2
		}
	}

	if a.Iterations != 2000 {
		t.Fatalf("expected benchmark-level override to win, got %d", a.Iterations)
	}
	if b.Iterations != 500 {
		t.Fatalf("expected suite-level default to apply, got %d", b.Iterations)
	}
}

func TestLowerIterationsOverrideBeatsBoth(t *testing.T) {
	source := `suite "s" {
  iterations: 500
  requires: ["go"]

  bench "a" {
    iterations: 2000
    go: { run() }
  }
}
`
	file, err := dsl.Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	fileIR, err := New(t.TempDir(), WithIterationsOverride(100)).Lower(file)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	if fileIR.Suites[0].Benchmarks[0].Iterations != 100 {
		t.Fatalf("expected CLI override to win, got %d", fileIR.Suites[0].Benchmarks[0].Iterations)
	}
}

func TestLowerDefaultsApplied(t *testing.T) {
	source := `suite "s" {
  requires: ["go"]
  bench "a" {
    go: { run() }
  }
}
`
	file, err := dsl.Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	fileIR, err := New(t.TempDir()).Lower(file)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	spec := fileIR.Suites[0].Benchmarks[0]
	if spec.Iterations != DefaultIterations {
		t.Fatalf("got %d, want default %d", spec.Iterations, DefaultIterations)
	}
	if spec.Mode != DefaultMode {
		t.Fatalf("got mode %v, want default", spec.Mode)
	}
	if !spec.Sink {
		t.Fatal("expected sink to default true")
	}
}

func TestLowerFixtureReferenceDiscovery(t *testing.T) {
	source := `suite "s" {
  requires: ["go"]

  fixture buf() {
    hex: "deadbeef"
  }

  bench "uses-it" {
    go: { process(buf) }
  }

  bench "does-not" {
    go: { process(other) }
  }
}
`
	file, err := dsl.Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	fileIR, err := New(t.TempDir()).Lower(file)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	var uses, doesNot BenchmarkSpec
	for _, b := range fileIR.Suites[0].Benchmarks {
		if b.Name == "uses-it" {
			uses = b
		}
		if b.Name == "does-not" {
			doesNot = b
		}
	}

	if len(uses.FixtureRefs) != 1 || uses.FixtureRefs[0] != "buf" {
		t.Fatalf("expected uses-it to reference buf, got %v", uses.FixtureRefs)
	}
	if len(doesNot.FixtureRefs) != 0 {
		t.Fatalf("expected does-not to reference nothing, got %v", doesNot.FixtureRefs)
	}
}

func TestLowerFixtureHexFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "buf.hex"), []byte("dead beef\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	source := `suite "s" {
  requires: ["go"]
  fixture buf() {
    hex: @file("buf.hex")
  }
  bench "a" {
    go: { process(buf) }
  }
}
`
	file, err := dsl.Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	fileIR, err := New(dir).Lower(file)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	got := fileIR.Suites[0].Fixtures["buf"].Bytes
	want := []byte{0xde, 0xad, 0xbe, 0xef}
	if string(got) != string(want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestLowerFixtureFileNotFound(t *testing.T) {
	source := `suite "s" {
  requires: ["go"]
  fixture buf() {
    hex: @file("missing.hex")
  }
  bench "a" {
    go: { process(buf) }
  }
}
`
	file, err := dsl.Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	_, err = New(t.TempDir()).Lower(file)
	if err == nil {
		t.Fatal("expected FixtureFileNotFound error")
	}
	lowerErr, ok := err.(*LowerError)
	if !ok || lowerErr.Kind != "FixtureFileNotFound" {
		t.Fatalf("got error %v", err)
	}
}

func TestLowerMissingRequiredImplFails(t *testing.T) {
	source := `suite "s" {
  requires: ["go", "rust"]
  bench "a" {
    go: { run() }
  }
}
`
	file, err := dsl.Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	_, err = New(t.TempDir()).Lower(file)
	if err == nil {
		t.Fatal("expected MissingRequiredImpl error")
	}
	lowerErr, ok := err.(*LowerError)
	if !ok || lowerErr.Kind != "MissingRequiredImpl" {
		t.Fatalf("got error %v", err)
	}
}

func TestLowerInvalidBaselineFails(t *testing.T) {
	source := `suite "s" {
  requires: ["go"]
  baseline: "rust"
  bench "a" {
    go: { run() }
  }
}
`
	file, err := dsl.Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	_, err = New(t.TempDir()).Lower(file)
	if err == nil {
		t.Fatal("expected InvalidBaseline error")
	}
	lowerErr, ok := err.(*LowerError)
	if !ok || lowerErr.Kind != "InvalidBaseline" {
		t.Fatalf("got error %v", err)
	}
}

func TestLowerGlobalSetupPropagation(t *testing.T) {
	source := `globalSetup {
  anvil { forkUrl: "https://example.test" }
}

suite "s" {
  requires: ["go"]
  bench "a" {
    go: { run() }
  }
}
`
	file, err := dsl.Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	fileIR, err := New(t.TempDir()).Lower(file)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	gs := fileIR.Suites[0].GlobalSetup
	if gs == nil || gs.Anvil == nil || gs.Anvil.ForkURL != "https://example.test" {
		t.Fatalf("expected file-level global setup to propagate, got %+v", gs)
	}
}
