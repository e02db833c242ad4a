package executor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/polybench/polybench/internal/dsl"
)

// CompileFailure is one validation-phase failure: a `[lang] benchmark_name`
// header, the kind of source that failed, and truncated compiler stderr
// (spec.md §4.6's validation-phase report).
type CompileFailure struct {
	Lang       dsl.Lang
	Benchmark  string
	SourceKind string
	Stderr     string
}

// CompileErrorGroup accumulates compile failures and derives a grouped
// summary, following comparison.rs's accumulate-then-calculate() shape
// (SuiteSummary::calculate) generalized to validation-phase reporting.
type CompileErrorGroup struct {
	Failures []CompileFailure
}

// Add records a failure.
func (g *CompileErrorGroup) Add(f CompileFailure) {
	g.Failures = append(g.Failures, f)
}

// Empty reports whether no failures were recorded.
func (g *CompileErrorGroup) Empty() bool {
	return len(g.Failures) == 0
}

// groupKey is the (source, message) pairing spec.md §4.6 groups failures
// by, so repeated identical compiler errors across benchmarks collapse to
// one reported group.
type groupKey struct {
	SourceKind string
	Message    string
}

// Group groups failures by (source_kind, stderr), mirroring spec.md's
// "compile-error grouping by (source, message)" supplemented behaviour.
func (g *CompileErrorGroup) Group() []CompileFailureGroup {
	index := make(map[groupKey]*CompileFailureGroup)
	var order []groupKey

	for _, f := range g.Failures {
		key := groupKey{SourceKind: f.SourceKind, Message: f.Stderr}
		grp, ok := index[key]
		if !ok {
			grp = &CompileFailureGroup{SourceKind: f.SourceKind, Message: f.Stderr}
			index[key] = grp
			order = append(order, key)
		}
		grp.Occurrences = append(grp.Occurrences, CompileFailureLocation{Lang: f.Lang, Benchmark: f.Benchmark})
	}

	groups := make([]CompileFailureGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, *index[key])
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].SourceKind < groups[j].SourceKind
	})

	return groups
}

// CompileFailureLocation names a single (lang, benchmark) that hit a given
// compile failure group.
type CompileFailureLocation struct {
	Lang      dsl.Lang
	Benchmark string
}

// CompileFailureGroup is one distinct (source_kind, message) pairing plus
// every benchmark/language it was observed on.
type CompileFailureGroup struct {
	SourceKind  string
	Message     string
	Occurrences []CompileFailureLocation
}

// ValidationError is the single structured error the validation phase
// aborts with when any compile-check fails (spec.md §4.6: "abort the whole
// run with a single structured error").
type ValidationError struct {
	Groups []CompileFailureGroup
}

// Error renders every group with its `[lang] benchmark_name` headers.
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "validation failed: %d distinct compile error(s)\n", len(e.Groups))

	for _, group := range e.Groups {
		fmt.Fprintf(&b, "\n--- %s ---\n", group.SourceKind)
		for _, occ := range group.Occurrences {
			fmt.Fprintf(&b, "[%s] %s\n", occ.Lang, occ.Benchmark)
		}
		b.WriteString(group.Message)
		b.WriteString("\n")
	}

	return b.String()
}
