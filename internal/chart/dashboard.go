package chart

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	echartsopts "github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/components"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/model"
)

const (
	defaultFontSize = 12
	xAxisLabelAngle = 30
)

// Dashboard is a live HTML page of bar charts built straight from a run's
// BenchmarkResults, one chart per suite, reusing the teacher's go-echarts
// chart-per-category shape against polybench's own result tree instead of
// parsed `go test -bench` output.
type Dashboard struct {
	Title string
	pages []*charts.Bar
}

// NewDashboard builds a Dashboard for a run, one bar chart per suite,
// grouping languages into series the way barChart directives would.
func NewDashboard(title string, results model.BenchmarkResults, opts ...Option) *Dashboard {
	o := optionsWithDefaults(opts)
	d := &Dashboard{Title: title}

	for _, suite := range results.Suites {
		d.pages = append(d.pages, buildSuiteBar(suite, o))
	}

	return d
}

// Render writes the dashboard page HTML to w.
func (d *Dashboard) Render(w io.Writer) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.SetPageTitle(d.Title)

	for _, bar := range d.pages {
		page.AddCharts(bar)
	}

	return page.Render(w)
}

func buildSuiteBar(suite model.SuiteResults, o options) *charts.Bar {
	bar := charts.NewBar()

	names := make([]string, 0, len(suite.Benchmarks))
	for _, b := range suite.Benchmarks {
		names = append(names, b.Name)
	}

	langSeries := make(map[dsl.Lang][]echartsopts.BarData)
	for _, b := range suite.Benchmarks {
		for _, lang := range dsl.AllLangs() {
			var point echartsopts.BarData
			if m, ok := b.Measurements[lang]; ok {
				point = echartsopts.BarData{Value: m.NanosPerOp}
			}
			langSeries[lang] = append(langSeries[lang], point)
		}
	}

	titleOpts := echartsopts.Title{Title: suite.Name, Subtitle: suite.Description}
	legendOpts := echartsopts.Legend{Show: echartsopts.Bool(o.ShowLegend)}

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(echartsopts.Initialization{Theme: o.Theme}),
		charts.WithTitleOpts(titleOpts),
		charts.WithLegendOpts(legendOpts),
		charts.WithXAxisOpts(echartsopts.XAxis{
			Type: "category",
			AxisLabel: &echartsopts.AxisLabel{
				Rotate:   xAxisLabelAngle,
				Interval: "0",
			},
		}),
		charts.WithYAxisOpts(echartsopts.YAxis{Name: "ns/op", Type: "value"}),
	)

	bar.SetXAxis(names)

	for _, lang := range dsl.AllLangs() {
		data, ok := langSeries[lang]
		if !ok {
			continue
		}
		bar.AddSeries(lang.DisplayLabel(), data)
	}

	if o.Horizontal {
		return bar.XYReversal()
	}

	return bar
}
