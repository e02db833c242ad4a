// Package ir defines the language-agnostic intermediate representation that
// the DSL lowers to, and the lowering pass itself. All language-specific
// work happens downstream, in the runtime package.
package ir

import "github.com/polybench/polybench/internal/dsl"

// FixtureData is a resolved fixture: either decoded hex bytes or a
// per-language expression. The benchmarks that reference it are listed on
// BenchmarkSpec.FixtureRefs.
type FixtureData struct {
	Name            string
	Description     string
	Bytes           []byte // non-nil when the fixture came from hex_data/hex_file
	Shape           string
	Implementations map[dsl.Lang]string
	ImplOrder       []dsl.Lang
}

// BenchmarkSpec is the flattened, dispatch-ready form of a Benchmark: every
// optional field has been resolved against the suite and the fixed
// defaults (spec §4.3).
type BenchmarkSpec struct {
	Name        string
	FullName    string
	Description string

	FixtureRefs []string

	Iterations       uint64
	WarmupIterations uint64
	WarmupTimeMs     uint64
	Timeout          *uint64
	Mode             dsl.RunMode
	TargetTimeMs     uint64
	MinIterations    uint64
	MaxIterations    uint64
	OutlierDetection bool
	CVThreshold      float64
	Count            uint64
	Memory           bool
	Concurrency      uint64
	Sink             bool

	BeforeHooks map[dsl.Lang]string
	AfterHooks  map[dsl.Lang]string
	EachHooks   map[dsl.Lang]string

	Implementations map[dsl.Lang]string
	Skip            map[dsl.Lang]string
	Validate        map[dsl.Lang]string

	Tags []string
}

// ChartDirectiveIR is the lowered form of a ChartDirective; currently a
// direct carry-through since every field is already fully resolved at
// parse time.
type ChartDirectiveIR struct {
	Directive *dsl.ChartDirective
}

// SuiteIR is the language-agnostic lowering of one Suite.
type SuiteIR struct {
	Name        string
	Description string
	Order       dsl.ExecutionOrder
	Baseline    *dsl.Lang
	Requires    []dsl.Lang
	Concurrency uint64

	Imports      map[dsl.Lang]string
	Declarations map[dsl.Lang]string
	Helpers      map[dsl.Lang]string
	InitCode     map[dsl.Lang]string

	StdlibImports []string

	Fixtures map[string]FixtureData

	Benchmarks []BenchmarkSpec

	ChartDirectives []ChartDirectiveIR

	GlobalSetup *dsl.GlobalSetup
}

// FileIR is the lowering of an entire .bench file.
type FileIR struct {
	Suites []SuiteIR
}

// Default effective-config values, fixed per spec.md §4.3.
const (
	DefaultIterations       uint64  = 1000
	DefaultWarmup           uint64  = 100
	DefaultMode                     = dsl.ModeAuto
	DefaultTargetTimeMs     uint64  = 3000
	DefaultMinIterations    uint64  = 10
	DefaultMaxIterations    uint64  = 1_000_000
	DefaultOutlierDetection         = true
	DefaultCVThreshold      float64 = 5.0
	DefaultCount            uint64  = 1
	DefaultMemory                   = false
	DefaultConcurrency      uint64  = 1
	DefaultSink                     = true
)
