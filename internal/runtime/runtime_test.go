package runtime

import (
	"strings"
	"testing"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/ir"
)

func testSpec(lang dsl.Lang, impl string) *ir.BenchmarkSpec {
	return &ir.BenchmarkSpec{
		Name:             "bench",
		FullName:         "suite/bench",
		Iterations:       1000,
		WarmupIterations: 100,
		Mode:             dsl.ModeFixed,
		TargetTimeMs:     3000,
		MaxIterations:    1_000_000,
		CVThreshold:      5.0,
		Sink:             true,
		Implementations:  map[dsl.Lang]string{lang: impl},
		BeforeHooks:      map[dsl.Lang]string{},
		AfterHooks:       map[dsl.Lang]string{},
		EachHooks:        map[dsl.Lang]string{},
	}
}

func testSuite() *ir.SuiteIR {
	return &ir.SuiteIR{
		Name:         "suite",
		Imports:      map[dsl.Lang]string{},
		Declarations: map[dsl.Lang]string{},
		Helpers:      map[dsl.Lang]string{},
		InitCode:     map[dsl.Lang]string{},
		Fixtures:     map[string]ir.FixtureData{},
	}
}

func TestRegisteredLanguagesHaveFactories(t *testing.T) {
	for _, lang := range []dsl.Lang{dsl.LangGo, dsl.LangTypeScript, dsl.LangRust, dsl.LangPython, dsl.LangC, dsl.LangCSharp, dsl.LangZig} {
		if !Registered(lang) {
			t.Fatalf("expected %s to be registered", lang)
		}
	}
}

func TestGoGenerateSourceCheckOnlyHasEmptyMain(t *testing.T) {
	spec := testSpec(dsl.LangGo, "return 42")
	suite := testSuite()

	rt, err := New(dsl.LangGo, t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	source, err := rt.GenerateCheckSource(spec, suite)
	if err != nil {
		t.Fatalf("GenerateCheckSource: %v", err)
	}

	if !strings.Contains(source, "func main() {}") {
		t.Fatalf("expected empty main in check source, got:\n%s", source)
	}
	if !strings.Contains(source, "func __polybenchBench()") {
		t.Fatal("expected benchmark function present in check source")
	}
}

func TestGoGenerateSourceIncludesSinkAndFixtures(t *testing.T) {
	spec := testSpec(dsl.LangGo, "return len(buf)")
	spec.FixtureRefs = []string{"buf"}
	suite := testSuite()
	suite.Fixtures["buf"] = ir.FixtureData{Name: "buf", Bytes: []byte{0xde, 0xad}}

	ga := goAdapter{}
	source, err := ga.generateSource(spec, suite, false)
	if err != nil {
		t.Fatalf("generateSource: %v", err)
	}

	if !strings.Contains(source, "__polybenchSink") {
		t.Fatal("expected sink variable in generated source")
	}
	if !strings.Contains(source, "var buf = []byte{0xde, 0xad}") {
		t.Fatalf("expected module-scope fixture declaration, got:\n%s", source)
	}
}

func TestTypeScriptGenerateSourceFixedMode(t *testing.T) {
	spec := testSpec(dsl.LangTypeScript, "return 1;")
	suite := testSuite()

	ad := typescriptAdapter{}
	source, err := ad.generateSource(spec, suite, false)
	if err != nil {
		t.Fatalf("generateSource: %v", err)
	}

	if !strings.Contains(source, "const iterations = 1000;") {
		t.Fatalf("expected fixed iteration count, got:\n%s", source)
	}
	if !strings.Contains(source, "JSON.stringify(result)") {
		t.Fatal("expected JSON result emission")
	}
}

func TestPythonGenerateSourceAutoMode(t *testing.T) {
	spec := testSpec(dsl.LangPython, "return 1")
	spec.Mode = dsl.ModeAuto
	suite := testSuite()

	ad := pythonAdapter{}
	source, err := ad.generateSource(spec, suite, false)
	if err != nil {
		t.Fatalf("generateSource: %v", err)
	}

	if !strings.Contains(source, "batch = min(1000000") {
		t.Fatalf("expected auto-mode batching, got:\n%s", source)
	}
}

func TestMissingImplementationFails(t *testing.T) {
	spec := testSpec(dsl.LangGo, "return 1")
	suite := testSuite()

	ad := rustAdapter{}
	if _, err := ad.generateSource(spec, suite, false); err == nil {
		t.Fatal("expected error for missing Rust implementation")
	}
}

func TestTruncateStderrKeepsFirstNLines(t *testing.T) {
	s := strings.Repeat("line\n", 20)
	truncated := TruncateStderr(s, 12)
	if strings.Count(truncated, "line") != 12 {
		t.Fatalf("expected 12 lines, got %d", strings.Count(truncated, "line"))
	}
}

func TestToolchainIDExtraction(t *testing.T) {
	if got := (goAdapter{}).toolchainID("go version go1.25.0 linux/amd64"); got != "1.25" {
		t.Fatalf("got %q", got)
	}
	if got := (rustAdapter{}).toolchainID("rustc 1.80.1 (abcdef 2024-08-01)"); got != "1.80" {
		t.Fatalf("got %q", got)
	}
	if got := (typescriptAdapter{}).toolchainID("v22.4.0"); got != "22.4" {
		t.Fatalf("got %q", got)
	}
	if got := (pythonAdapter{}).toolchainID("Python 3.12.3"); got != "3.12" {
		t.Fatalf("got %q", got)
	}
}
