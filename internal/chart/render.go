package chart

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/ir"
	"github.com/polybench/polybench/internal/model"
)

// RenderSuiteCharts renders every chart directive attached to a suite to
// outDir, one SVG file per directive named by its Output field (falling
// back to "<suite>-<n>.svg" when Output is empty).
func RenderSuiteCharts(suite *ir.SuiteIR, results model.SuiteResults, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("chart: creating output dir: %w", err)
	}

	for i, directiveIR := range suite.ChartDirectives {
		directive := directiveIR.Directive

		name := directive.Output
		if name == "" {
			name = fmt.Sprintf("%s-%d.svg", suite.Name, i)
		}

		path := filepath.Join(outDir, name)
		if err := renderOne(path, directive, suite, results); err != nil {
			return fmt.Errorf("chart: rendering %s: %w", path, err)
		}
	}

	return nil
}

func renderOne(path string, directive *dsl.ChartDirective, suite *ir.SuiteIR, results model.SuiteResults) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return RenderSVG(f, directive, suite, results)
}
