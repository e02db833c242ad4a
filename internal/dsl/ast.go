package dsl

// CodeBlock is a raw source slice extracted verbatim between matching
// braces (or the inline-expression boundary), preserving comments and
// indentation exactly as spec.md §4.2 requires.
type CodeBlock struct {
	Code    string
	IsBlock bool
	Span    Span
}

// File is the AST root: stdlib imports, an optional file-level global setup,
// and the ordered list of suites.
type File struct {
	UseStds      []UseStd
	GlobalSetup  *GlobalSetup
	Suites       []*Suite
}

// UseStd is a `use std::<module>` import, with sub-spans so hover can
// resolve the word under the cursor independently.
type UseStd struct {
	Module     string
	FullSpan   Span
	UseSpan    Span
	StdSpan    Span
	ModuleSpan Span
}

// GlobalSetup declares external collaborator lifecycle requirements, here
// limited to the Anvil Ethereum dev node (spec.md §3).
type GlobalSetup struct {
	Anvil *AnvilSetupConfig
	Span  Span
}

// AnvilSetupConfig configures the Anvil node spawned before any benchmark
// in suites that declare it.
type AnvilSetupConfig struct {
	ForkURL string
}

// Suite groups benchmarks sharing configuration, setup and fixtures.
type Suite struct {
	Name             string
	Description      string
	Iterations       *uint64
	Warmup           *uint64
	Timeout          *uint64 // ms
	Requires         []Lang
	Order            ExecutionOrder
	Baseline         *Lang
	Mode             RunMode
	TargetTimeMs     *uint64
	MinIterations    *uint64
	MaxIterations    *uint64
	OutlierDetection *bool
	CVThreshold      *float64
	Count            *uint64
	Memory           *bool
	Concurrency      *uint64
	Setups           map[Lang]*StructuredSetup
	Fixtures         []*Fixture
	Benchmarks       []*Benchmark
	GlobalSetup      *GlobalSetup
	ChartDirectives  []*ChartDirective
	Span             Span
}

// NewSuite creates a Suite with maps initialized and execution order
// defaulted to sequential.
func NewSuite(name string, span Span) *Suite {
	return &Suite{
		Name:   name,
		Order:  OrderSequential,
		Setups: make(map[Lang]*StructuredSetup),
		Span:   span,
	}
}

// StructuredSetup holds per-language setup sections. init runs once before
// any iteration of any benchmark in this language; helpers are in-scope for
// every benchmark's generated runner.
type StructuredSetup struct {
	Imports      *CodeBlock
	Declarations *CodeBlock
	Init         *CodeBlock
	Helpers      *CodeBlock
	AsyncInit    bool
	Span         Span
}

// FixtureParam is a named, typed fixture constructor parameter.
type FixtureParam struct {
	Name string
	Type string
}

// Fixture is a value shared across benchmarks: either raw bytes (hex literal
// or external file) or a per-language expression.
type Fixture struct {
	Name            string
	Description     string
	HexData         *string
	HexFile         *string
	Shape           string
	Params          []FixtureParam
	Implementations map[Lang]*CodeBlock
	ImplOrder       []Lang
	Span            Span
}

// NewFixture creates a Fixture with its implementation map initialized.
func NewFixture(name string, span Span) *Fixture {
	return &Fixture{Name: name, Implementations: make(map[Lang]*CodeBlock), Span: span}
}

// SetImpl records a language implementation, preserving first-seen order.
func (f *Fixture) SetImpl(lang Lang, code *CodeBlock) {
	if _, ok := f.Implementations[lang]; !ok {
		f.ImplOrder = append(f.ImplOrder, lang)
	}
	f.Implementations[lang] = code
}

// HookStyle distinguishes the two mutually exclusive ways a benchmark may
// declare before/after/each hooks (spec.md §4.2).
type HookStyle int

// Hook styles.
const (
	HookStyleUnset HookStyle = iota
	HookStyleFlat
	HookStyleGrouped
)

// Benchmark is one logical operation with parallel implementations across
// languages. All optional fields default from the enclosing suite.
type Benchmark struct {
	Name             string
	Description      string
	Iterations       *uint64
	Warmup           *uint64
	Timeout          *uint64
	Tags             []string
	Skip             map[Lang]*CodeBlock
	Validate         map[Lang]*CodeBlock
	Mode             *RunMode
	Sink             *bool
	TargetTimeMs     *uint64
	MinIterations    *uint64
	MaxIterations    *uint64
	OutlierDetection *bool
	CVThreshold      *float64
	Count            *uint64
	Memory           *bool
	Concurrency      *uint64
	Before           map[Lang]*CodeBlock
	After            map[Lang]*CodeBlock
	Each             map[Lang]*CodeBlock
	Implementations  map[Lang]*CodeBlock
	HookStyle        HookStyle
	Span             Span
}

// NewBenchmark creates a Benchmark with every map initialized.
func NewBenchmark(name string, span Span) *Benchmark {
	return &Benchmark{
		Name:            name,
		Skip:            make(map[Lang]*CodeBlock),
		Validate:        make(map[Lang]*CodeBlock),
		Before:          make(map[Lang]*CodeBlock),
		After:           make(map[Lang]*CodeBlock),
		Each:            make(map[Lang]*CodeBlock),
		Implementations: make(map[Lang]*CodeBlock),
		Span:            span,
	}
}

// ChartType enumerates the supported chart kinds (spec.md §3).
type ChartType string

// Supported chart types.
const (
	ChartBar     ChartType = "bar"
	ChartPie     ChartType = "pie"
	ChartLine    ChartType = "line"
	ChartSpeedup ChartType = "speedup"
	ChartTable   ChartType = "table"
)

// SortBy enumerates chart sort keys.
type SortBy string

// Supported sort keys.
const (
	SortSpeedup SortBy = "speedup"
	SortName    SortBy = "name"
	SortTime    SortBy = "time"
	SortOps     SortBy = "ops"
	SortNatural SortBy = "natural"
)

// SortOrder controls ascending/descending chart sorting.
type SortOrder string

// Supported sort orders.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TimeUnit controls the chart engine's rendering unit for durations.
type TimeUnit string

// Supported time units.
const (
	TimeAuto TimeUnit = "auto"
	TimeNs   TimeUnit = "ns"
	TimeUs   TimeUnit = "us"
	TimeMs   TimeUnit = "ms"
	TimeS    TimeUnit = "s"
)

// Theme selects the chart color palette.
type Theme string

// Supported themes.
const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ChartDirective is a single `charting.<fn>(...)` call parsed from a suite's
// `after { }` block. The field set is the closed option set of spec.md §3 —
// modeled as a record type, not a dynamic option bag, per spec.md §9.
type ChartDirective struct {
	Type        ChartType
	Title       string
	Description string
	XAxisLabel  string
	YAxisLabel  string
	Output      string

	MinSpeedup        *float64
	FilterWinner      string
	IncludeBenchmarks []string
	ExcludeBenchmarks []string
	Limit             *int

	SortBy    SortBy
	SortOrder SortOrder

	Width    *int
	Height   *int
	BarWidth *int
	BarGap   *int

	ShowStats        *bool
	ShowConfig       *bool
	ShowWinCounts    *bool
	ShowGeoMean      *bool
	ShowDistribution *bool
	ShowMemory       *bool
	ShowTotalTime    *bool
	Compact          *bool
	ShowGrid         *bool
	ShowErrorBars    *bool
	ShowRegression   *bool

	TimeUnit  TimeUnit
	Precision *int
	Theme     Theme

	Span Span
}

// chartAllowedParams enforces a per-chart-type parameter subset, per the
// "closed record + static table" redesign named in spec.md §9.
var chartAllowedParams = map[ChartType]map[string]bool{
	ChartBar: {
		"title": true, "description": true, "xAxisLabel": true, "yAxisLabel": true,
		"output": true, "includeBenchmarks": true, "excludeBenchmarks": true, "limit": true,
		"sortBy": true, "sortOrder": true, "width": true, "height": true, "barWidth": true,
		"barGap": true, "showStats": true, "showConfig": true, "showMemory": true,
		"showTotalTime": true, "compact": true, "showGrid": true, "timeUnit": true,
		"precision": true, "theme": true,
	},
	ChartPie: {
		"title": true, "description": true, "output": true, "includeBenchmarks": true,
		"excludeBenchmarks": true, "limit": true, "width": true, "height": true,
		"compact": true, "theme": true, "precision": true,
	},
	ChartLine: {
		"title": true, "description": true, "xAxisLabel": true, "yAxisLabel": true,
		"output": true, "includeBenchmarks": true, "excludeBenchmarks": true, "sortBy": true,
		"sortOrder": true, "width": true, "height": true, "showGrid": true, "timeUnit": true,
		"precision": true, "theme": true,
	},
	ChartSpeedup: {
		"title": true, "description": true, "xAxisLabel": true, "yAxisLabel": true,
		"output": true, "minSpeedup": true, "filterWinner": true, "includeBenchmarks": true,
		"excludeBenchmarks": true, "limit": true, "sortBy": true, "sortOrder": true,
		"width": true, "height": true, "barWidth": true, "barGap": true, "showWinCounts": true,
		"showGeoMean": true, "showDistribution": true, "showErrorBars": true,
		"showRegression": true, "compact": true, "showGrid": true, "timeUnit": true,
		"precision": true, "theme": true,
	},
	ChartTable: {
		"title": true, "description": true, "output": true, "includeBenchmarks": true,
		"excludeBenchmarks": true, "limit": true, "sortBy": true, "sortOrder": true,
		"showStats": true, "showMemory": true, "compact": true, "precision": true, "theme": true,
	},
}

// IsParamAllowed reports whether param is a valid option for chart type t.
func IsParamAllowed(t ChartType, param string) bool {
	allowed, ok := chartAllowedParams[t]
	if !ok {
		return false
	}

	return allowed[param]
}

// chartTypeFromFunctionName maps a `charting.<fn>` call name to a ChartType.
func chartTypeFromFunctionName(fn string) (ChartType, bool) {
	switch fn {
	case "barChart":
		return ChartBar, true
	case "pieChart":
		return ChartPie, true
	case "lineChart":
		return ChartLine, true
	case "speedupChart":
		return ChartSpeedup, true
	case "table":
		return ChartTable, true
	default:
		return "", false
	}
}
