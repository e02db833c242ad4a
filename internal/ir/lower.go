package ir

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/polybench/polybench/internal/dsl"
)

// Option configures a Lowerer.
type Option func(*options)

type options struct {
	iterationsOverride *uint64
	langFilter         *dsl.Lang
}

// WithIterationsOverride forces every benchmark's effective iterations to n,
// beating both the benchmark's and the suite's own setting (spec.md §8,
// scenario 2: "CLI override beats both").
func WithIterationsOverride(n uint64) Option {
	return func(o *options) { o.iterationsOverride = &n }
}

// WithLangFilter restricts each benchmark's implementations, and the
// required-implementation check, to a single language, used by
// `compile --lang` and `run --lang`. Fixtures keep every language's
// expressions.
func WithLangFilter(lang dsl.Lang) Option {
	return func(o *options) { o.langFilter = &lang }
}

func optionsWithDefaults(opts []Option) options {
	var o options
	for _, apply := range opts {
		apply(&o)
	}

	return o
}

// Lowerer walks a parsed .bench File once, emitting a SuiteIR per suite.
type Lowerer struct {
	options

	basePath string // directory the .bench file lives in, for hex_file resolution
	l        *slog.Logger
}

// New builds a Lowerer. basePath anchors relative hex_file references.
func New(basePath string, opts ...Option) *Lowerer {
	return &Lowerer{
		options:  optionsWithDefaults(opts),
		basePath: basePath,
		l:        slog.Default().With(slog.String("module", "ir")),
	}
}

// Lower lowers every suite in file to IR.
func (lw *Lowerer) Lower(file *dsl.File) (*FileIR, error) {
	stdlibImports := stdlibModules(file.UseStds)
	for _, use := range file.UseStds {
		if !isKnownStdlibModule(use.Module) {
			return nil, errUnknownStdlibModule("<file>", use.Module)
		}
	}

	out := &FileIR{}

	for _, suite := range file.Suites {
		suiteIR, err := lw.lowerSuite(suite, file.GlobalSetup, stdlibImports)
		if err != nil {
			return nil, err
		}
		out.Suites = append(out.Suites, *suiteIR)
	}

	lw.l.Info("lowered file", slog.Int("suite_count", len(out.Suites)))

	return out, nil
}

func stdlibModules(useStds []dsl.UseStd) []string {
	modules := make([]string, 0, len(useStds))
	for _, use := range useStds {
		modules = append(modules, use.Module)
	}

	return modules
}

func isKnownStdlibModule(module string) bool {
	switch module {
	case "constants", "anvil", "charting":
		return true
	default:
		return false
	}
}

func (lw *Lowerer) lowerSuite(suite *dsl.Suite, fileGlobalSetup *dsl.GlobalSetup, stdlibImports []string) (*SuiteIR, error) {
	if err := lw.checkDuplicateNames(suite); err != nil {
		return nil, err
	}

	globalSetup := suite.GlobalSetup
	if globalSetup == nil {
		globalSetup = fileGlobalSetup
	}

	if suite.Baseline != nil && len(suite.Requires) > 0 && !containsLang(suite.Requires, *suite.Baseline) {
		return nil, errInvalidBaseline(suite.Name, *suite.Baseline)
	}

	fixtures, err := lw.resolveFixtures(suite)
	if err != nil {
		return nil, err
	}

	benchmarks := make([]BenchmarkSpec, 0, len(suite.Benchmarks))
	for _, bench := range suite.Benchmarks {
		spec, err := lw.lowerBenchmark(suite, bench, fixtures)
		if err != nil {
			return nil, err
		}
		benchmarks = append(benchmarks, spec)
	}

	imports, declarations, helpers, initCode := splitSetups(suite.Setups)

	directives := make([]ChartDirectiveIR, 0, len(suite.ChartDirectives))
	for _, d := range suite.ChartDirectives {
		directives = append(directives, ChartDirectiveIR{Directive: d})
	}

	return &SuiteIR{
		Name:            suite.Name,
		Description:     suite.Description,
		Order:           suite.Order,
		Baseline:        suite.Baseline,
		Requires:        suite.Requires,
		Concurrency:     uint64PtrOr(suite.Concurrency, DefaultConcurrency),
		Imports:         imports,
		Declarations:    declarations,
		Helpers:         helpers,
		InitCode:        initCode,
		StdlibImports:   stdlibImports,
		Fixtures:        fixtures,
		Benchmarks:      benchmarks,
		ChartDirectives: directives,
		GlobalSetup:     globalSetup,
	}, nil
}

func (lw *Lowerer) checkDuplicateNames(suite *dsl.Suite) error {
	seenBench := make(map[string]bool)
	for _, bench := range suite.Benchmarks {
		if seenBench[bench.Name] {
			return errDuplicateName(suite.Name, bench.Name)
		}
		seenBench[bench.Name] = true
	}

	seenFixture := make(map[string]bool)
	for _, fixture := range suite.Fixtures {
		if seenFixture[fixture.Name] {
			return errDuplicateName(suite.Name, fixture.Name)
		}
		seenFixture[fixture.Name] = true
	}

	return nil
}

func splitSetups(setups map[dsl.Lang]*dsl.StructuredSetup) (imports, declarations, helpers, initCode map[dsl.Lang]string) {
	imports = make(map[dsl.Lang]string)
	declarations = make(map[dsl.Lang]string)
	helpers = make(map[dsl.Lang]string)
	initCode = make(map[dsl.Lang]string)

	for lang, setup := range setups {
		if setup.Imports != nil {
			imports[lang] = setup.Imports.Code
		}
		if setup.Declarations != nil {
			declarations[lang] = setup.Declarations.Code
		}
		if setup.Helpers != nil {
			helpers[lang] = setup.Helpers.Code
		}
		if setup.Init != nil {
			initCode[lang] = setup.Init.Code
		}
	}

	return imports, declarations, helpers, initCode
}

// resolveFixtures decodes every fixture's hex data (literal or file) and
// scans every benchmark implementation for word-boundary references.
func (lw *Lowerer) resolveFixtures(suite *dsl.Suite) (map[string]FixtureData, error) {
	fixtures := make(map[string]FixtureData, len(suite.Fixtures))

	for _, fixture := range suite.Fixtures {
		data := FixtureData{
			Name:            fixture.Name,
			Description:     fixture.Description,
			Shape:           fixture.Shape,
			Implementations: make(map[dsl.Lang]string, len(fixture.Implementations)),
			ImplOrder:       fixture.ImplOrder,
		}

		for lang, code := range fixture.Implementations {
			data.Implementations[lang] = code.Code
		}

		switch {
		case fixture.HexFile != nil:
			path := *fixture.HexFile
			if !filepath.IsAbs(path) {
				path = filepath.Join(lw.basePath, path)
			}

			raw, err := os.ReadFile(path)
			if err != nil {
				return nil, errFixtureFileNotFound(suite.Name, fixture.Name, path)
			}

			decoded, err := decodeHex(string(raw))
			if err != nil {
				return nil, errInvalidHex(suite.Name, fixture.Name, err.Error())
			}
			data.Bytes = decoded
		case fixture.HexData != nil:
			decoded, err := decodeHex(*fixture.HexData)
			if err != nil {
				return nil, errInvalidHex(suite.Name, fixture.Name, err.Error())
			}
			data.Bytes = decoded
		}

		fixtures[fixture.Name] = data
	}

	return fixtures, nil
}

// discoverFixtureRefs finds which fixture names appear as word-boundary
// matches in any implementation of bench, per spec.md §4.3 item 2 / P5.
func discoverFixtureRefs(bench *dsl.Benchmark, fixtures map[string]FixtureData) []string {
	var refs []string

	var allCode strings.Builder
	for _, code := range bench.Implementations {
		allCode.WriteString(code.Code)
		allCode.WriteByte('\n')
	}
	haystack := allCode.String()

	for name := range fixtures {
		if wordBoundaryMatch(haystack, name) {
			refs = append(refs, name)
		}
	}

	return refs
}

func wordBoundaryMatch(haystack, name string) bool {
	pattern := `(?:^|[^A-Za-z0-9_])` + regexp.QuoteMeta(name) + `(?:$|[^A-Za-z0-9_])`
	matched, _ := regexp.MatchString(pattern, haystack)

	return matched
}

func decodeHex(raw string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		default:
			return r
		}
	}, raw)

	decoded, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("decoding hex: %w", err)
	}

	return decoded, nil
}

func (lw *Lowerer) lowerBenchmark(suite *dsl.Suite, bench *dsl.Benchmark, fixtures map[string]FixtureData) (BenchmarkSpec, error) {
	for _, lang := range suite.Requires {
		if lw.langFilter != nil && *lw.langFilter != lang {
			continue
		}
		if _, ok := bench.Implementations[lang]; !ok {
			return BenchmarkSpec{}, errMissingRequiredImpl(suite.Name, bench.Name, lang)
		}
	}

	mode := effectiveRunMode(bench.Mode, suite.Mode, DefaultMode)
	iterations := effectiveUint64(bench.Iterations, suite.Iterations, DefaultIterations)
	if lw.iterationsOverride != nil {
		iterations = *lw.iterationsOverride
	}

	spec := BenchmarkSpec{
		Name:        bench.Name,
		FullName:    suite.Name + "/" + bench.Name,
		Description: bench.Description,
		FixtureRefs: discoverFixtureRefs(bench, fixtures),

		Iterations:       iterations,
		WarmupIterations: effectiveUint64(bench.Warmup, suite.Warmup, DefaultWarmup),
		Timeout:          firstNonNilUint64(bench.Timeout, suite.Timeout),
		Mode:             mode,
		TargetTimeMs:     effectiveUint64(bench.TargetTimeMs, suite.TargetTimeMs, DefaultTargetTimeMs),
		MinIterations:    effectiveUint64(bench.MinIterations, suite.MinIterations, DefaultMinIterations),
		MaxIterations:    effectiveUint64(bench.MaxIterations, suite.MaxIterations, DefaultMaxIterations),
		OutlierDetection: effectiveBool(bench.OutlierDetection, suite.OutlierDetection, DefaultOutlierDetection),
		CVThreshold:      effectiveFloat64(bench.CVThreshold, suite.CVThreshold, DefaultCVThreshold),
		Count:            effectiveUint64(bench.Count, suite.Count, DefaultCount),
		Memory:           effectiveBool(bench.Memory, suite.Memory, DefaultMemory),
		Concurrency:      effectiveUint64(bench.Concurrency, suite.Concurrency, DefaultConcurrency),
		Sink:             effectiveBool(bench.Sink, nil, DefaultSink),

		BeforeHooks: codeMapToStrings(bench.Before),
		AfterHooks:  codeMapToStrings(bench.After),
		EachHooks:   codeMapToStrings(bench.Each),

		Implementations: codeMapToStrings(bench.Implementations),
		Skip:            codeMapToStrings(bench.Skip),
		Validate:        codeMapToStrings(bench.Validate),

		Tags: bench.Tags,
	}

	if lw.langFilter != nil {
		for lang := range spec.Implementations {
			if lang != *lw.langFilter {
				delete(spec.Implementations, lang)
			}
		}
	}

	return spec, nil
}

func codeMapToStrings(m map[dsl.Lang]*dsl.CodeBlock) map[dsl.Lang]string {
	out := make(map[dsl.Lang]string, len(m))
	for lang, code := range m {
		out[lang] = code.Code
	}

	return out
}

func containsLang(langs []dsl.Lang, target dsl.Lang) bool {
	for _, l := range langs {
		if l == target {
			return true
		}
	}

	return false
}

func effectiveUint64(bench, suite *uint64, def uint64) uint64 {
	if bench != nil {
		return *bench
	}
	if suite != nil {
		return *suite
	}

	return def
}

func effectiveFloat64(bench, suite *float64, def float64) float64 {
	if bench != nil {
		return *bench
	}
	if suite != nil {
		return *suite
	}

	return def
}

func effectiveBool(bench, suite *bool, def bool) bool {
	if bench != nil {
		return *bench
	}
	if suite != nil {
		return *suite
	}

	return def
}

func effectiveRunMode(bench *dsl.RunMode, suite, def dsl.RunMode) dsl.RunMode {
	if bench != nil {
		return *bench
	}
	if suite != "" {
		return suite
	}

	return def
}

func firstNonNilUint64(vals ...*uint64) *uint64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}

	return nil
}

func uint64PtrOr(v *uint64, def uint64) uint64 {
	if v != nil {
		return *v
	}

	return def
}
