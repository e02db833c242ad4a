package dsl

// TokenKind identifies the lexical category of a Token.
type TokenKind int

// Token kinds.
const (
	TokEOF TokenKind = iota
	TokIdentifier
	TokString
	TokNumber
	TokFloat
	TokDuration
	TokLBrace
	TokRBrace
	TokLParen
	TokRParen
	TokLBracket
	TokRBracket
	TokColon
	TokDoubleColon
	TokComma
	TokDot
	TokAt
	TokFileRef // "@file"
	TokPunct   // any other printable ASCII punctuation, as found in embedded code

	// Keywords.
	TokSuite
	TokBench
	TokFixture
	TokSetup
	TokInit
	TokDeclare
	TokHelpers
	TokImport
	TokGlobalSetup
	TokUse
	TokAsync
	TokDescription
	TokIterations
	TokWarmup
	TokTimeout
	TokTags
	TokRequires
	TokOrder
	TokBaseline
	TokCompare
	TokMode
	TokSink
	TokTargetTime
	TokMinIterations
	TokMaxIterations
	TokOutlierDetection
	TokCVThreshold
	TokCount
	TokMemory
	TokConcurrency
	TokBefore
	TokAfter
	TokEach
	TokSkip
	TokValidate
	TokHex
	TokShape
	TokTrue
	TokFalse
)

// Token is a single lexical unit with its source span.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Str    string // decoded string literal value (TokString)
	Num    uint64 // TokNumber / TokDuration (milliseconds)
	Float  float64
	Span   Span
}

// keywords maps reserved identifiers to their token kind, per spec.md §4.1.
var keywords = map[string]TokenKind{
	"suite":            TokSuite,
	"bench":            TokBench,
	"fixture":          TokFixture,
	"setup":            TokSetup,
	"init":             TokInit,
	"declare":          TokDeclare,
	"helpers":          TokHelpers,
	"import":           TokImport,
	"globalSetup":      TokGlobalSetup,
	"use":              TokUse,
	"async":            TokAsync,
	"description":      TokDescription,
	"iterations":       TokIterations,
	"warmup":           TokWarmup,
	"timeout":          TokTimeout,
	"tags":             TokTags,
	"requires":         TokRequires,
	"order":            TokOrder,
	"baseline":         TokBaseline,
	"compare":          TokCompare,
	"mode":             TokMode,
	"sink":             TokSink,
	"targetTime":       TokTargetTime,
	"minIterations":    TokMinIterations,
	"maxIterations":    TokMaxIterations,
	"outlierDetection": TokOutlierDetection,
	"cvThreshold":      TokCVThreshold,
	"count":            TokCount,
	"memory":           TokMemory,
	"concurrency":      TokConcurrency,
	"before":           TokBefore,
	"after":            TokAfter,
	"each":             TokEach,
	"skip":             TokSkip,
	"validate":         TokValidate,
	"hex":              TokHex,
	"shape":            TokShape,
	"true":             TokTrue,
	"false":            TokFalse,
}
