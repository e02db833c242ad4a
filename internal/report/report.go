// Package report formats a completed BenchmarkResults tree for a human or
// a machine consumer: a styled console table, a Markdown document, or the
// raw JSON persisted to out/results.json. Grounded on the teacher's
// internal/cmd/benchviz.go, which branches on a --report-style flag to pick
// between a terse count-only summary and the full HTML chart page; here the
// same branch-on-format shape drives three text formatters instead.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/model"
)

// Format names the output formatter, as selected by --report.
type Format string

// Supported formats.
const (
	FormatConsole  Format = "console"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a --report flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatConsole, FormatMarkdown, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown report format %q (want console, markdown, or json)", s)
	}
}

// Write renders results in the given format to w.
func Write(w io.Writer, results model.BenchmarkResults, format Format) error {
	switch format {
	case FormatMarkdown:
		return writeMarkdown(w, results)
	case FormatJSON:
		return writeJSON(w, results)
	default:
		return writeConsole(w, results)
	}
}

func writeJSON(w io.Writer, results model.BenchmarkResults) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(results)
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	suiteStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	winStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	loseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

func writeConsole(w io.Writer, results model.BenchmarkResults) error {
	fmt.Fprintln(w, titleStyle.Render("polybench results"))
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf(
		"%d suite(s), %d benchmark(s)", results.Summary.TotalSuites, results.Summary.TotalBenchmarks)))
	fmt.Fprintln(w)

	for _, suite := range results.Suites {
		fmt.Fprintln(w, suiteStyle.Render(titleLabel(suite.Name)))
		if suite.Description != "" {
			fmt.Fprintln(w, mutedStyle.Render(suite.Description))
		}

		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-28s %-10s %14s", "benchmark", "lang", "ns/op")))
		for _, bench := range suite.Benchmarks {
			for _, lang := range langsOf(bench) {
				m := bench.Measurements[lang]
				line := fmt.Sprintf("%-28s %-10s %14.1f", bench.Name, lang.DisplayLabel(), m.NanosPerOp)
				if comp, ok := bench.Comparisons[lang]; ok {
					line += styleComparisonSuffix(comp)
				}
				fmt.Fprintln(w, line)
			}
			for lang, reason := range bench.Failed {
				fmt.Fprintln(w, loseStyle.Render(fmt.Sprintf("%-28s %-10s FAILED: %s", bench.Name, lang.DisplayLabel(), reason)))
			}
		}

		fmt.Fprintln(w, consoleSuiteSummary(suite.Summary))
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, titleStyle.Render("overall: "+results.Summary.WinnerDescription))

	return nil
}

func styleComparisonSuffix(c model.Comparison) string {
	factor := c.SpeedupRatio
	if factor < 1 {
		factor = 1 / factor
	}
	switch c.Winner {
	case model.WinnerTie:
		return mutedStyle.Render("  (tie)")
	case model.WinnerFirst:
		return loseStyle.Render(fmt.Sprintf("  (%s %.2fx slower)", c.OtherLang.DisplayLabel(), factor))
	default:
		return winStyle.Render(fmt.Sprintf("  (%s %.2fx faster)", c.OtherLang.DisplayLabel(), factor))
	}
}

func consoleSuiteSummary(s model.SuiteSummary) string {
	var b strings.Builder
	b.WriteString(mutedStyle.Render("  wins: "))
	for _, lang := range model.SortedLangs(s.WinsByLang) {
		fmt.Fprintf(&b, "%s=%d ", lang.DisplayLabel(), s.WinsByLang[lang])
	}
	fmt.Fprintf(&b, "ties=%d geomean=%.2fx", s.Ties, s.GeoMeanSpeedup)

	return b.String()
}

// titleLabel turns a suite's underscore/dash identifier (as written in the
// DSL source) into a display heading, the way the teacher's config package
// titleizes metric names for generated report output.
func titleLabel(name string) string {
	caser := cases.Title(language.English, cases.NoLower) // the case is stateful: cannot declare it globally

	return caser.String(strings.Map(func(r rune) rune {
		switch r {
		case '_', '-':
			return ' '
		default:
			return r
		}
	}, name))
}

func langsOf(bench model.BenchmarkResult) []dsl.Lang {
	wins := make(map[dsl.Lang]int, len(bench.Measurements))
	for lang := range bench.Measurements {
		wins[lang] = 0
	}

	return model.SortedLangs(wins)
}
