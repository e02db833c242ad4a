package report

import (
	"fmt"
	"io"

	"github.com/polybench/polybench/internal/model"
)

func writeMarkdown(w io.Writer, results model.BenchmarkResults) error {
	fmt.Fprintln(w, "# polybench results")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d suite(s), %d benchmark(s)\n\n", results.Summary.TotalSuites, results.Summary.TotalBenchmarks)

	for _, suite := range results.Suites {
		fmt.Fprintf(w, "## %s\n\n", titleLabel(suite.Name))
		if suite.Description != "" {
			fmt.Fprintf(w, "%s\n\n", suite.Description)
		}

		fmt.Fprintln(w, "| benchmark | lang | ns/op | ops/sec | vs baseline |")
		fmt.Fprintln(w, "|---|---|---|---|---|")
		for _, bench := range suite.Benchmarks {
			for _, lang := range langsOf(bench) {
				m := bench.Measurements[lang]
				vsBaseline := "—"
				if comp, ok := bench.Comparisons[lang]; ok {
					vsBaseline = markdownComparisonCell(comp)
				}
				fmt.Fprintf(w, "| %s | %s | %.1f | %.1f | %s |\n",
					bench.Name, lang.DisplayLabel(), m.NanosPerOp, m.OpsPerSec, vsBaseline)
			}
			for lang, reason := range bench.Failed {
				fmt.Fprintf(w, "| %s | %s | FAILED | — | %s |\n", bench.Name, lang.DisplayLabel(), reason)
			}
		}
		fmt.Fprintln(w)

		fmt.Fprintf(w, "Wins: ")
		for _, lang := range model.SortedLangs(suite.Summary.WinsByLang) {
			fmt.Fprintf(w, "%s=%d ", lang.DisplayLabel(), suite.Summary.WinsByLang[lang])
		}
		fmt.Fprintf(w, "ties=%d, geomean speedup=%.2fx\n\n", suite.Summary.Ties, suite.Summary.GeoMeanSpeedup)
	}

	fmt.Fprintf(w, "**Overall:** %s\n", results.Summary.WinnerDescription)

	return nil
}

func markdownComparisonCell(c model.Comparison) string {
	factor := c.SpeedupRatio
	if factor < 1 {
		factor = 1 / factor
	}
	switch c.Winner {
	case model.WinnerTie:
		return "tie"
	case model.WinnerFirst:
		return fmt.Sprintf("%s %.2fx slower", c.OtherLang.DisplayLabel(), factor)
	default:
		return fmt.Sprintf("%s %.2fx faster", c.OtherLang.DisplayLabel(), factor)
	}
}
