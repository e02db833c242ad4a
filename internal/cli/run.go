package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/polybench/polybench/internal/chart"
	"github.com/polybench/polybench/internal/config"
	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/executor"
	"github.com/polybench/polybench/internal/image"
	"github.com/polybench/polybench/internal/model"
	"github.com/polybench/polybench/internal/report"
	"github.com/polybench/polybench/internal/runtime"
)

type runFlags struct {
	lang         string
	iterations   uint64
	reportFormat string
	output       string
	goProject    string
	tsProject    string
	dashboard    bool
	dashboardPNG bool
}

func newRunCommand(configPath *string) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [FILE]",
		Short: "Run the full validate, precompile, execute, and report pipeline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, *configPath, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.lang, "lang", "", "restrict to a single implementation language")
	cmd.Flags().Uint64Var(&flags.iterations, "iterations", 0, "override every benchmark's iteration count")
	cmd.Flags().StringVar(&flags.reportFormat, "report", "console", "report format: console, markdown, or json")
	cmd.Flags().StringVar(&flags.output, "output", "", "output directory for results.json and charts (defaults to the config's output dir)")
	cmd.Flags().StringVar(&flags.goProject, "go-project", "", "override the Go runtime environment root")
	cmd.Flags().StringVar(&flags.tsProject, "ts-project", "", "override the TypeScript runtime environment root")
	cmd.Flags().BoolVar(&flags.dashboard, "dashboard", false, "also render a go-echarts HTML dashboard")
	cmd.Flags().BoolVar(&flags.dashboardPNG, "dashboard-png", false, "also render the dashboard as a PNG screenshot")

	return cmd
}

func runRun(cmd *cobra.Command, configPath string, args []string, flags runFlags) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	var lang dsl.Lang
	if flags.lang != "" {
		parsed, ok := dsl.LangFromString(flags.lang)
		if !ok {
			return fmt.Errorf("cli: unknown language %q", flags.lang)
		}
		lang = parsed
	}

	format, err := report.ParseFormat(flags.reportFormat)
	if err != nil {
		return err
	}

	paths, err := resolveFiles(args)
	if err != nil {
		return err
	}

	tasks, err := buildFileTasks(paths, lang, flags.iterations)
	if err != nil {
		return err
	}

	outputDir := flags.output
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("cli: creating output dir: %w", err)
	}

	runtimeEnvs := mergedRuntimeEnvs(cfg, flags.goProject, flags.tsProject)

	exec := executor.New(cacheFor(cfg), executor.WithRuntimeFactory(func(lang dsl.Lang) (runtime.Runtime, error) {
		workDir := runtimeEnvs[lang]
		if workDir == "" {
			workDir = filepath.Join(".polybench", "runtime-env", lang.String())
		}

		return runtime.New(lang, workDir)
	}))
	defer exec.Shutdown()

	ctx := cmd.Context()
	results, err := exec.RunAll(ctx, tasks, cfg.Anvil.BinaryPath, 1)
	if err != nil {
		return err
	}

	if err := report.Write(cmd.OutOrStdout(), results, format); err != nil {
		return fmt.Errorf("cli: writing report: %w", err)
	}

	if err := writeResultsJSON(outputDir, results); err != nil {
		return err
	}

	if err := renderCharts(tasks, results, outputDir); err != nil {
		return err
	}

	if flags.dashboard || flags.dashboardPNG {
		if err := renderDashboard(ctx, outputDir, results, flags.dashboardPNG); err != nil {
			return err
		}
	}

	return nil
}

// mergedRuntimeEnvs layers the --go-project/--ts-project overrides on top
// of the config's runtime_envs map, following spec.md §6's per-language
// project-root override contract.
func mergedRuntimeEnvs(cfg *config.Config, goProject, tsProject string) map[dsl.Lang]string {
	envs := make(map[dsl.Lang]string, len(cfg.RuntimeEnvs))
	for lang, dir := range cfg.RuntimeEnvs {
		envs[lang] = dir
	}

	if goProject != "" {
		envs[dsl.LangGo] = goProject
	}
	if tsProject != "" {
		envs[dsl.LangTypeScript] = tsProject
	}

	return envs
}

func writeResultsJSON(outputDir string, results model.BenchmarkResults) error {
	var buf bytes.Buffer
	if err := report.Write(&buf, results, report.FormatJSON); err != nil {
		return fmt.Errorf("cli: marshaling results.json: %w", err)
	}

	path := filepath.Join(outputDir, "results.json")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("cli: writing %s: %w", path, err)
	}

	return nil
}

func renderCharts(tasks []executor.FileTask, results model.BenchmarkResults, outputDir string) error {
	for i, task := range tasks {
		for j := range task.Suites {
			suite := &task.Suites[j]
			if len(suite.ChartDirectives) == 0 {
				continue
			}

			suiteResults := findSuiteResults(results, suite.Name)
			if suiteResults == nil {
				continue
			}

			if err := chart.RenderSuiteCharts(suite, *suiteResults, outputDir); err != nil {
				return fmt.Errorf("cli: rendering charts for file %d suite %d: %w", i, j, err)
			}
		}
	}

	return nil
}

func findSuiteResults(results model.BenchmarkResults, name string) *model.SuiteResults {
	for i := range results.Suites {
		if results.Suites[i].Name == name {
			return &results.Suites[i]
		}
	}

	return nil
}

// renderDashboard writes the go-echarts HTML dashboard to outputDir, and
// additionally screenshots it to a PNG via internal/image when png is set.
func renderDashboard(ctx context.Context, outputDir string, results model.BenchmarkResults, png bool) error {
	htmlPath := filepath.Join(outputDir, "dashboard.html")

	f, err := os.Create(htmlPath)
	if err != nil {
		return fmt.Errorf("cli: creating %s: %w", htmlPath, err)
	}

	dashboard := chart.NewDashboard("polybench results", results)
	renderErr := dashboard.Render(f)
	closeErr := f.Close()

	if renderErr != nil {
		return fmt.Errorf("cli: rendering dashboard: %w", renderErr)
	}
	if closeErr != nil {
		return fmt.Errorf("cli: closing %s: %w", htmlPath, closeErr)
	}

	if !png {
		return nil
	}

	pngPath := filepath.Join(outputDir, "dashboard.png")
	renderer := image.New()

	return chart.RenderDashboardPNG(ctx, pngPath, "polybench results", results, renderer)
}
