package dsl

import "testing"

func TestParseMinimalSuite(t *testing.T) {
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
	file, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(file.Suites) != 1 {
		t.Fatalf("expected 1 suite, got %d", len(file.Suites))
	}

	suite := file.Suites[0]
	if suite.Name != "hashing" {
		t.Fatalf("got suite name %q", suite.Name)
	}
	if suite.Iterations == nil || *suite.Iterations != 500 {
		t.Fatalf("got iterations %v", suite.Iterations)
	}
	if suite.Baseline == nil || *suite.Baseline != LangGo {
		t.Fatalf("got baseline %v", suite.Baseline)
	}
	if len(suite.Requires) != 2 {
		t.Fatalf("expected 2 required langs, got %d", len(suite.Requires))
	}

	if len(suite.Benchmarks) != 1 {
		t.Fatalf("expected 1 benchmark, got %d", len(suite.Benchmarks))
	}
	bench := suite.Benchmarks[0]
	if bench.Implementations[LangGo] == nil {
		t.Fatal("expected go implementation")
	}
	if bench.Implementations[LangGo].Code != "h := sha256.Sum256(data)" {
		t.Fatalf("got go code %q", bench.Implementations[LangGo].Code)
	}
}

func TestParseUseStd(t *testing.T) {
	source := `use std::constants
use std::anvil

suite "noop" {
  bench "noop" {
    go: { _ = 1 }
  }
}
`
	file, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(file.UseStds) != 2 {
		t.Fatalf("expected 2 use std imports, got %d", len(file.UseStds))
	}
	if file.UseStds[0].Module != "constants" {
		t.Fatalf("got module %q", file.UseStds[0].Module)
	}
	if file.UseStds[1].Module != "anvil" {
		t.Fatalf("got module %q", file.UseStds[1].Module)
	}
}

func TestParseFixtureWithHexAndShape(t *testing.T) {
	source := `suite "s" {
  fixture buf(size: usize) {
    description: "random buffer"
    hex: "deadbeef"
    shape: { Vec<u8> }
    go: { []byte(hexBuf) }
  }

  bench "b" {
    go: { use(buf) }
  }
}
`
	file, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	fixture := file.Suites[0].Fixtures[0]
	if fixture.Name != "buf" {
		t.Fatalf("got fixture name %q", fixture.Name)
	}
	if fixture.HexData == nil || *fixture.HexData != "deadbeef" {
		t.Fatalf("got hex %v", fixture.HexData)
	}
	if len(fixture.Params) != 1 || fixture.Params[0].Name != "size" {
		t.Fatalf("got params %+v", fixture.Params)
	}
}

func TestParseFixtureFileRef(t *testing.T) {
	source := `suite "s" {
  fixture buf() {
    hex: @file("testdata/buf.hex")
  }

  bench "b" {
    go: { use(buf) }
  }
}
`
	file, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	fixture := file.Suites[0].Fixtures[0]
	if fixture.HexFile == nil || *fixture.HexFile != "testdata/buf.hex" {
		t.Fatalf("got hex file %v", fixture.HexFile)
	}
}

func TestParseGroupedHooks(t *testing.T) {
	source := `suite "s" {
  bench "b" {
    before: { go: { setup() } }
    after: { go: { teardown() } }
    go: { run() }
  }
}
`
	file, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	bench := file.Suites[0].Benchmarks[0]
	if bench.HookStyle != HookStyleGrouped {
		t.Fatalf("expected grouped hook style, got %v", bench.HookStyle)
	}
	if bench.Before[LangGo] == nil {
		t.Fatal("expected go before hook")
	}
}

func TestParseFlatHooks(t *testing.T) {
	source := `suite "s" {
  bench "b" {
    before go: { setup() }
    go: { run() }
  }
}
`
	file, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	bench := file.Suites[0].Benchmarks[0]
	if bench.HookStyle != HookStyleFlat {
		t.Fatalf("expected flat hook style, got %v", bench.HookStyle)
	}
	if bench.Before[LangGo] == nil {
		t.Fatal("expected go before hook")
	}
}

func TestParseMixedHookStylesFails(t *testing.T) {
	source := `suite "s" {
  bench "b" {
    before go: { setup() }
    after: { go: { teardown() } }
    go: { run() }
  }
}
`
	_, err := Parse(source)
	if err == nil {
		t.Fatal("expected error mixing flat and grouped hook styles")
	}

	var parseErr *ParseError
	if pe, ok := err.(*ParseError); ok {
		parseErr = pe
	}
	if parseErr == nil || parseErr.Kind != "InvalidProperty" {
		t.Fatalf("got error %v", err)
	}
}

func TestParseChartingDirective(t *testing.T) {
	source := `suite "s" {
  bench "b" {
    go: { run() }
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
	file, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	directives := file.Suites[0].ChartDirectives
	if len(directives) != 1 {
		t.Fatalf("expected 1 chart directive, got %d", len(directives))
	}
	d := directives[0]
	if d.Type != ChartSpeedup {
		t.Fatalf("got chart type %v", d.Type)
	}
	if d.Title != "Speedup" {
		t.Fatalf("got title %q", d.Title)
	}
	if d.MinSpeedup == nil || *d.MinSpeedup != 1.5 {
		t.Fatalf("got minSpeedup %v", d.MinSpeedup)
	}
}

func TestParseChartingRejectsDisallowedParam(t *testing.T) {
	source := `suite "s" {
  bench "b" {
    go: { run() }
  }

  after {
    charting.pieChart(
      minSpeedup: 1.5
    )
  }
}
`
	_, err := Parse(source)
	if err == nil {
		t.Fatal("expected error: minSpeedup is not allowed on a pie chart")
	}
}

func TestParseStructuredSetup(t *testing.T) {
	source := `suite "s" {
  setup go {
    import {
      "crypto/sha256"
    }
    declare {
      var counter int
    }
    init {
      counter = 0
    }
    helpers {
      func inc() { counter++ }
    }
  }

  bench "b" {
    go: { inc() }
  }
}
`
	file, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	setup := file.Suites[0].Setups[LangGo]
	if setup == nil {
		t.Fatal("expected go setup")
	}
	if setup.Init == nil || setup.Init.Code != "counter = 0" {
		t.Fatalf("got init %+v", setup.Init)
	}
}

func TestParseUnclosedBraceFails(t *testing.T) {
	source := `suite "s" {
  bench "b" {
    go: { run()
  }
`
	_, err := Parse(source)
	if err == nil {
		t.Fatal("expected unclosed brace error")
	}
}

func TestParseLenientRecordsErrorsAndContinues(t *testing.T) {
	source := `suite "s" {
  notAProperty: 1
  bench "b" {
    go: { run() }
  }
}
`
	file, errs := ParseLenient(source)
	if len(errs) == 0 {
		t.Fatal("expected at least one recorded error")
	}
	if file == nil || len(file.Suites) != 1 {
		t.Fatalf("expected lenient parse to still recover the suite, got %+v", file)
	}
}
