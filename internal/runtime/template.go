package runtime

import (
	"fmt"
	"strings"

	"github.com/polybench/polybench/internal/ir"
)

// normalizeIndent strips the minimum common leading whitespace from code,
// matching every runtime's own reindentation of embedded source blocks
// (the Rust original's ZigRuntime::normalize_indent, generalized here for
// reuse across every language adapter).
func normalizeIndent(code string) string {
	lines := strings.Split(code, "\n")
	if len(lines) == 0 {
		return ""
	}

	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		return code
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			out[i] = ""

			continue
		}
		out[i] = line[minIndent:]
	}

	return strings.Join(out, "\n")
}

// indentBlock prefixes every non-blank line of code with indent.
func indentBlock(code, indent string) string {
	if strings.TrimSpace(code) == "" {
		return ""
	}

	lines := strings.Split(normalizeIndent(code), "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = indent + line
	}

	return strings.Join(lines, "\n") + "\n"
}

// orderedFixtureNames returns the fixture names a benchmark references, in
// the benchmark's own recorded order.
func orderedFixtureNames(spec *ir.BenchmarkSpec) []string {
	return spec.FixtureRefs
}

// byteLiteralList formats fixture bytes as a comma-separated list of
// hex byte literals, used by every compiled-language fixture emitter.
func byteLiteralList(data []byte, prefix string) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%s%02x", prefix, b)
	}

	return strings.Join(parts, ", ")
}
