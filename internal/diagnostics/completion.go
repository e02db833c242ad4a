package diagnostics

import (
	"strings"

	"github.com/polybench/polybench/internal/dsl"
)

// Context classifies where a cursor sits in a .bench source, the
// granularity spec.md §4.8 names for completion.
type Context string

// Completion contexts.
const (
	ContextTopLevel      Context = "top-level"
	ContextInsideSuite   Context = "inside-suite"
	ContextInsideSetup   Context = "inside-setup"
	ContextInsideBench   Context = "inside-bench"
	ContextInsideFixture Context = "inside-fixture"
	ContextGlobalSetup   Context = "inside-global-setup"
	ContextEmbeddedCode  Context = "inside-embedded-code"
	ContextAfterColon    Context = "after-colon"
	ContextUseStdModule  Context = "use-std-module"
	ContextModuleDot     Context = "module-dot-access"
	ContextChartingCall  Context = "after-charting-dot"
	ContextChartingArgs  Context = "inside-charting-args"
)

// minPrefixLength is enforced for non-trigger completions (spec.md §4.8).
const minPrefixLength = 2

// frame is one level of brace nesting the backward scan has identified,
// tagged by the keyword that opened it.
type frame struct {
	keyword string
}

var blockKeywords = map[string]bool{
	"suite": true, "bench": true, "fixture": true, "setup": true,
	"globalSetup": true, "before": true, "after": true, "each": true,
	"helpers": true, "declare": true, "init": true, "import": true,
}

// Request is a completion request: the full source and a byte offset.
type Request struct {
	Source string
	Offset int
}

// Result is a classified completion point: its context, the current
// (possibly empty) identifier prefix being typed, and whether a trigger
// character fired (which bypasses the minimum-prefix-length rule).
type Result struct {
	Context Context
	Prefix  string
	Trigger bool
}

// Classify scans backward from req.Offset through brace nesting to
// determine the completion context (spec.md §4.8).
func Classify(req Request) Result {
	src := req.Source
	offset := clampOffset(req.Offset, len(src))

	prefix, trigger := currentPrefix(src, offset)
	if !trigger && len(prefix) < minPrefixLength {
		return Result{Context: classifyByNesting(src, offset), Prefix: prefix}
	}

	if trigger {
		if strings.HasSuffix(strings.TrimRight(src[:offset-len(prefix)], " \t"), "charting.") {
			return Result{Context: ContextChartingCall, Prefix: prefix, Trigger: true}
		}
		if strings.HasSuffix(strings.TrimRight(src[:offset-len(prefix)], " \t"), "std.") ||
			isInsideUseStatement(src, offset) {
			return Result{Context: ContextModuleDot, Prefix: prefix, Trigger: true}
		}
		if strings.HasSuffix(strings.TrimRight(src[:offset-len(prefix)], " \t"), ":") {
			return Result{Context: ContextAfterColon, Prefix: prefix, Trigger: true}
		}
	}

	return Result{Context: classifyByNesting(src, offset), Prefix: prefix, Trigger: trigger}
}

// currentPrefix returns the identifier characters immediately before
// offset, and whether the character right before the prefix is a trigger
// character (`.` or `:`).
func currentPrefix(src string, offset int) (string, bool) {
	start := offset
	for start > 0 && isIdentChar(src[start-1]) {
		start--
	}
	prefix := src[start:offset]

	if start > 0 {
		switch src[start-1] {
		case '.', ':':
			return prefix, true
		}
	}

	return prefix, false
}

func isIdentChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isInsideUseStatement(src string, offset int) bool {
	line := lastLine(src, offset)

	return strings.HasPrefix(strings.TrimSpace(line), "use std::")
}

func lastLine(src string, offset int) string {
	start := strings.LastIndexByte(src[:offset], '\n') + 1

	return src[start:offset]
}

// classifyByNesting walks backward counting unmatched `{`/`}` to find the
// innermost open block, then maps its introducing keyword to a Context.
func classifyByNesting(src string, offset int) Context {
	var stack []frame
	depth := 0

	for i := 0; i < offset; i++ {
		switch src[i] {
		case '{':
			depth++
			stack = append(stack, frame{keyword: precedingKeyword(src, i)})
		case '}':
			depth--
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if depth <= 0 || len(stack) == 0 {
		return ContextTopLevel
	}

	top := stack[len(stack)-1]
	switch top.keyword {
	case "suite":
		return ContextInsideSuite
	case "setup":
		return ContextInsideSetup
	case "bench":
		return ContextInsideBench
	case "fixture":
		return ContextInsideFixture
	case "globalSetup":
		return ContextGlobalSetup
	case "before", "after", "each", "helpers", "declare", "init", "import":
		return ContextEmbeddedCode
	default:
		if _, ok := dsl.LangFromString(top.keyword); ok {
			return ContextEmbeddedCode
		}
		if len(stack) >= 2 {
			return ContextInsideSuite
		}

		return ContextTopLevel
	}
}

// precedingKeyword returns the block keyword that introduces the `{` at
// braceIdx: the text back to the previous `{`/`}`/`;` is tokenized and the
// last recognised block keyword wins (handles `suite "name" { ... }` and
// similar header shapes).
func precedingKeyword(src string, braceIdx int) string {
	start := braceIdx
	for start > 0 && src[start-1] != '{' && src[start-1] != '}' && src[start-1] != ';' {
		start--
	}

	candidate := src[start:braceIdx]

	keyword, lastToken := "", ""
	field := strings.Builder{}
	flush := func() {
		word := strings.Trim(strings.TrimSuffix(field.String(), ":"), `"`)
		if word == "" {
			field.Reset()

			return
		}
		lastToken = word
		if blockKeywords[word] {
			keyword = word
		}
		field.Reset()
	}
	for _, r := range candidate {
		if r == ' ' || r == '\t' || r == '\n' || r == '"' {
			flush()

			continue
		}
		field.WriteRune(r)
	}
	flush()

	if keyword != "" {
		return keyword
	}

	return lastToken
}

func clampOffset(offset, length int) int {
	if offset < 0 {
		return 0
	}
	if offset > length {
		return length
	}

	return offset
}
