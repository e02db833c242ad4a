// Package diagnostics turns a lenient DSL parse into editor-facing
// diagnostics, and classifies a cursor position for completion, per
// spec.md §4.8's "editor collaborator" surface.
package diagnostics

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/polybench/polybench/internal/dsl"
)

// Kind is a stable diagnostic code, the set spec.md §4.8 names.
type Kind string

// Diagnostic kinds.
const (
	KindSyntaxError                  Kind = "syntax-error"
	KindMissingToken                 Kind = "missing-token"
	KindEmptySuite                   Kind = "empty-suite"
	KindEmptyBenchmark               Kind = "empty-benchmark"
	KindEmptyFixture                 Kind = "empty-fixture"
	KindUnusedFixture                Kind = "unused-fixture"
	KindUndefinedFunction            Kind = "undefined-function"
	KindHookWithoutImpl              Kind = "hook-without-impl"
	KindInvalidBaseline              Kind = "invalid-baseline"
	KindBaselineMissingInBenchmark   Kind = "baseline-missing-in-benchmark"
	KindChartRequiresSameDataset     Kind = "chart-requires-same-dataset"
	KindChartRequiresMultipleBenches Kind = "chart-requires-multiple-benchmarks"
	KindSameDatasetInconsistentFix   Kind = "same-dataset-inconsistent-fixtures"
	KindSuiteIterationsInvalid       Kind = "suite-iterations-invalid"
	KindSuiteTargetTimeInvalid       Kind = "suite-target-time-invalid"
	KindBenchmarkIterationsInvalid   Kind = "benchmark-iterations-invalid"
	KindBenchmarkTargetTimeInvalid   Kind = "benchmark-target-time-invalid"
)

// Severity classifies how a diagnostic should be surfaced.
type Severity string

// Severities.
const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
	SeverityHint  Severity = "hint"
)

// Diagnostic is one finding at a span, with a stable code and message.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Span     dsl.Span
	Message  string
}

// Analyze runs the lenient parser over source, then a second semantic pass
// that never aborts, returning every diagnostic found (spec.md §4.8).
func Analyze(source string) []Diagnostic {
	file, errs := dsl.ParseLenient(source)

	var diags []Diagnostic
	for _, err := range errs {
		diags = append(diags, fromParseError(err))
	}

	if file != nil {
		diags = append(diags, analyzeFile(file)...)
	}

	return diags
}

func fromParseError(err error) Diagnostic {
	var lexErr *dsl.LexError
	if errors.As(err, &lexErr) {
		return Diagnostic{Kind: KindSyntaxError, Severity: SeverityError, Span: lexErr.Span, Message: lexErr.Error()}
	}

	var parseErr *dsl.ParseError
	if errors.As(err, &parseErr) {
		kind := KindSyntaxError
		if parseErr.Kind == "ExpectedToken" {
			kind = KindMissingToken
		}

		return Diagnostic{Kind: kind, Severity: SeverityError, Span: parseErr.Span, Message: parseErr.Error()}
	}

	return Diagnostic{Kind: KindSyntaxError, Severity: SeverityError, Message: err.Error()}
}

func analyzeFile(file *dsl.File) []Diagnostic {
	var diags []Diagnostic

	for _, suite := range file.Suites {
		diags = append(diags, analyzeSuite(suite)...)
	}

	return diags
}

func analyzeSuite(suite *dsl.Suite) []Diagnostic {
	var diags []Diagnostic

	if len(suite.Benchmarks) == 0 {
		diags = append(diags, Diagnostic{
			Kind: KindEmptySuite, Severity: SeverityWarn, Span: suite.Span,
			Message: fmt.Sprintf("suite %q declares no benchmarks", suite.Name),
		})
	}

	if suite.Iterations != nil && *suite.Iterations == 0 {
		diags = append(diags, Diagnostic{
			Kind: KindSuiteIterationsInvalid, Severity: SeverityError, Span: suite.Span,
			Message: fmt.Sprintf("suite %q: iterations must be > 0", suite.Name),
		})
	}

	if suite.TargetTimeMs != nil && *suite.TargetTimeMs == 0 {
		diags = append(diags, Diagnostic{
			Kind: KindSuiteTargetTimeInvalid, Severity: SeverityError, Span: suite.Span,
			Message: fmt.Sprintf("suite %q: targetTime must be > 0", suite.Name),
		})
	}

	if suite.Baseline != nil {
		diags = append(diags, checkBaseline(suite)...)
	}

	for _, fixture := range suite.Fixtures {
		diags = append(diags, analyzeFixture(suite, fixture)...)
	}

	for _, bench := range suite.Benchmarks {
		diags = append(diags, analyzeBenchmark(suite, bench)...)
	}

	for _, directive := range suite.ChartDirectives {
		diags = append(diags, analyzeChartDirective(suite, directive)...)
	}

	return diags
}

func checkBaseline(suite *dsl.Suite) []Diagnostic {
	baseline := *suite.Baseline

	implementedAnywhere := false
	for _, bench := range suite.Benchmarks {
		if _, ok := bench.Implementations[baseline]; ok {
			implementedAnywhere = true

			break
		}
	}

	if !implementedAnywhere && len(suite.Benchmarks) > 0 {
		return []Diagnostic{{
			Kind: KindInvalidBaseline, Severity: SeverityError, Span: suite.Span,
			Message: fmt.Sprintf("suite %q: baseline %q is never implemented by any benchmark", suite.Name, baseline),
		}}
	}

	var diags []Diagnostic
	for _, bench := range suite.Benchmarks {
		if len(bench.Implementations) == 0 {
			continue
		}
		if _, ok := bench.Implementations[baseline]; !ok {
			diags = append(diags, Diagnostic{
				Kind: KindBaselineMissingInBenchmark, Severity: SeverityError, Span: bench.Span,
				Message: fmt.Sprintf("benchmark %q: missing baseline language %q", bench.Name, baseline),
			})
		}
	}

	return diags
}

func analyzeFixture(suite *dsl.Suite, fixture *dsl.Fixture) []Diagnostic {
	var diags []Diagnostic

	if fixture.HexData == nil && fixture.HexFile == nil && len(fixture.Implementations) == 0 {
		diags = append(diags, Diagnostic{
			Kind: KindEmptyFixture, Severity: SeverityWarn, Span: fixture.Span,
			Message: fmt.Sprintf("fixture %q has no data source", fixture.Name),
		})
	}

	used := false
	for _, bench := range suite.Benchmarks {
		if benchReferencesFixture(bench, fixture.Name) {
			used = true

			break
		}
	}
	if !used {
		diags = append(diags, Diagnostic{
			Kind: KindUnusedFixture, Severity: SeverityHint, Span: fixture.Span,
			Message: fmt.Sprintf("fixture %q is never referenced by a benchmark", fixture.Name),
		})
	}

	return diags
}

func benchReferencesFixture(bench *dsl.Benchmark, name string) bool {
	for _, code := range bench.Implementations {
		if wordBoundary(code.Code, name) {
			return true
		}
	}

	return false
}

func wordBoundary(haystack, name string) bool {
	pattern := `(?:^|[^A-Za-z0-9_])` + regexp.QuoteMeta(name) + `(?:$|[^A-Za-z0-9_])`
	matched, _ := regexp.MatchString(pattern, haystack)

	return matched
}

var callPattern = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

func analyzeBenchmark(suite *dsl.Suite, bench *dsl.Benchmark) []Diagnostic {
	var diags []Diagnostic

	if len(bench.Implementations) == 0 {
		diags = append(diags, Diagnostic{
			Kind: KindEmptyBenchmark, Severity: SeverityError, Span: bench.Span,
			Message: fmt.Sprintf("benchmark %q has no language implementations", bench.Name),
		})
	}

	if bench.Iterations != nil && *bench.Iterations == 0 {
		diags = append(diags, Diagnostic{
			Kind: KindBenchmarkIterationsInvalid, Severity: SeverityError, Span: bench.Span,
			Message: fmt.Sprintf("benchmark %q: iterations must be > 0", bench.Name),
		})
	}

	if bench.TargetTimeMs != nil && *bench.TargetTimeMs == 0 {
		diags = append(diags, Diagnostic{
			Kind: KindBenchmarkTargetTimeInvalid, Severity: SeverityError, Span: bench.Span,
			Message: fmt.Sprintf("benchmark %q: targetTime must be > 0", bench.Name),
		})
	}

	for lang := range bench.Before {
		if _, ok := bench.Implementations[lang]; !ok {
			diags = append(diags, hookWithoutImpl(bench, lang, "before"))
		}
	}
	for lang := range bench.After {
		if _, ok := bench.Implementations[lang]; !ok {
			diags = append(diags, hookWithoutImpl(bench, lang, "after"))
		}
	}
	for lang := range bench.Each {
		if _, ok := bench.Implementations[lang]; !ok {
			diags = append(diags, hookWithoutImpl(bench, lang, "each"))
		}
	}

	for lang, code := range bench.Implementations {
		helpers := helperSourceFor(suite, lang)
		for _, fn := range calledFunctions(code.Code) {
			if helpers != "" && !definesFunction(helpers, fn) {
				diags = append(diags, Diagnostic{
					Kind: KindUndefinedFunction, Severity: SeverityError, Span: code.Span,
					Message: fmt.Sprintf("benchmark %q (%s): %q is not defined in helpers", bench.Name, lang, fn),
				})
			}
		}
	}

	return diags
}

func hookWithoutImpl(bench *dsl.Benchmark, lang dsl.Lang, hook string) Diagnostic {
	return Diagnostic{
		Kind: KindHookWithoutImpl, Severity: SeverityWarn, Span: bench.Span,
		Message: fmt.Sprintf("benchmark %q: %s hook declared for %s with no implementation", bench.Name, hook, lang),
	}
}

func helperSourceFor(suite *dsl.Suite, lang dsl.Lang) string {
	setup, ok := suite.Setups[lang]
	if !ok || setup.Helpers == nil {
		return ""
	}

	return setup.Helpers.Code
}

// calledFunctions returns identifiers immediately followed by "(", a coarse
// proxy for "function referenced" that avoids parsing every target
// language's call syntax.
func calledFunctions(code string) []string {
	var names []string
	for _, m := range callPattern.FindAllStringSubmatch(code, -1) {
		names = append(names, m[1])
	}

	return names
}

var knownBuiltins = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "return": true,
	"func": true, "function": true, "let": true, "var": true, "const": true,
}

// definesFunction reports whether helperCode contains a function/method
// definition for name, across the handful of declaration syntaxes the
// supported languages use.
func definesFunction(helperCode, name string) bool {
	if knownBuiltins[name] {
		return true
	}

	patterns := []string{
		`func\s+` + regexp.QuoteMeta(name) + `\s*\(`,     // Go
		`function\s+` + regexp.QuoteMeta(name) + `\s*\(`, // TypeScript/JS
		`fn\s+` + regexp.QuoteMeta(name) + `\s*\(`,       // Rust/Zig
		`def\s+` + regexp.QuoteMeta(name) + `\s*\(`,      // Python
		`\b` + regexp.QuoteMeta(name) + `\s*\([^)]*\)\s*\{`, // C/C#
	}

	for _, p := range patterns {
		if matched, _ := regexp.MatchString(p, helperCode); matched {
			return true
		}
	}

	return strings.Contains(helperCode, name)
}

func analyzeChartDirective(suite *dsl.Suite, directive *dsl.ChartDirective) []Diagnostic {
	var diags []Diagnostic

	eligible := filterBenchmarksForDirective(suite, directive)

	if directive.Type != dsl.ChartPie && len(eligible) < 2 {
		diags = append(diags, Diagnostic{
			Kind: KindChartRequiresMultipleBenches, Severity: SeverityError, Span: directive.Span,
			Message: "chart directive needs at least two benchmarks after filtering",
		})
	}

	datasets := make(map[string]bool)
	for _, bench := range eligible {
		datasets[fixtureSignature(suite, bench)] = true
	}

	if len(datasets) > 1 {
		diags = append(diags, Diagnostic{
			Kind: KindChartRequiresSameDataset, Severity: SeverityWarn, Span: directive.Span,
			Message: "chart directive compares benchmarks using different fixtures",
		})
		diags = append(diags, Diagnostic{
			Kind: KindSameDatasetInconsistentFix, Severity: SeverityWarn, Span: directive.Span,
			Message: "benchmark fixture sets are inconsistent across this chart's inputs",
		})
	}

	return diags
}

func filterBenchmarksForDirective(suite *dsl.Suite, directive *dsl.ChartDirective) []*dsl.Benchmark {
	var out []*dsl.Benchmark
	for _, bench := range suite.Benchmarks {
		if len(directive.IncludeBenchmarks) > 0 && !matchesAny(bench.Name, directive.IncludeBenchmarks) {
			continue
		}
		if matchesAny(bench.Name, directive.ExcludeBenchmarks) {
			continue
		}
		out = append(out, bench)
	}

	return out
}

func matchesAny(name string, needles []string) bool {
	lower := strings.ToLower(name)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}

	return false
}

// fixtureSignature is the sorted set of fixture names bench references,
// used to detect charts comparing benchmarks over different datasets.
func fixtureSignature(suite *dsl.Suite, bench *dsl.Benchmark) string {
	var names []string
	for _, fixture := range suite.Fixtures {
		if benchReferencesFixture(bench, fixture.Name) {
			names = append(names, fixture.Name)
		}
	}
	sort.Strings(names)

	return strings.Join(names, "\x00")
}
