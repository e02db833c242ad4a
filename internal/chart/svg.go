package chart

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/ajstarks/svgo"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/ir"
	"github.com/polybench/polybench/internal/model"
)

const (
	defaultWidth    = 900
	defaultHeight   = 500
	defaultBarWidth = 28
	defaultBarGap   = 12
	marginLeft      = 80
	marginRight     = 40
	marginTop       = 60
	marginBottom    = 90
	defaultFontPx   = 13
)

// RenderSVG draws one deterministic chart to w from a suite's IR and
// computed results, following the directive's filter/sort/mode rules
// (spec.md §4.7). Float formatting is pinned to directive.Precision so the
// same inputs always produce byte-identical output.
func RenderSVG(w io.Writer, d *dsl.ChartDirective, suite *ir.SuiteIR, results model.SuiteResults) error {
	rows := applySort(applyFilters(rowsFromSuite(suite, results), d), d)

	width := intOr(d.Width, defaultWidth)
	height := intOr(d.Height, defaultHeight)
	palette := paletteFor(d.Theme)
	precision := 2
	if d.Precision != nil {
		precision = *d.Precision
	}

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Title(d.Title)
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s", palette.Background))

	if d.Title != "" {
		canvas.Text(width/2, 28, d.Title, fmt.Sprintf("text-anchor:middle;font-size:18px;fill:%s", palette.Foreground))
	}
	if d.Description != "" {
		canvas.Text(width/2, 46, d.Description, fmt.Sprintf("text-anchor:middle;font-size:12px;fill:%s", palette.Muted))
	}

	switch d.Type {
	case dsl.ChartSpeedup:
		renderSpeedupBars(canvas, rows, d, width, height, palette, precision)
	case dsl.ChartBar:
		renderComparisonBars(canvas, rows, d, width, height, palette, precision)
	case dsl.ChartPie:
		renderPie(canvas, rows, d, width, height, palette, precision)
	case dsl.ChartLine:
		renderLine(canvas, rows, d, width, height, palette, precision)
	case dsl.ChartTable:
		renderTable(canvas, rows, d, width, height, palette, precision)
	}

	canvas.End()

	return nil
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}

	return *v
}

func fmtF(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// renderSpeedupBars draws one horizontal bar per row, its length the best
// non-baseline speedup factor, following the teacher's devotion to a single
// deterministic layout pass rather than a general-purpose chart toolkit.
func renderSpeedupBars(canvas *svg.SVG, rows []row, d *dsl.ChartDirective, width, height int, p Palette, precision int) {
	plotWidth := width - marginLeft - marginRight
	plotHeight := height - marginTop - marginBottom
	if len(rows) == 0 || plotWidth <= 0 {
		return
	}

	barHeight := plotHeight / len(rows)
	if barHeight > 36 {
		barHeight = 36
	}

	maxMag := 1.0
	for _, r := range rows {
		if m := speedupMagnitude(r); m > maxMag {
			maxMag = m
		}
	}

	canvas.Line(marginLeft, marginTop, marginLeft, height-marginBottom, fmt.Sprintf("stroke:%s", p.Grid))

	for i, r := range rows {
		y := marginTop + i*barHeight
		mag := speedupMagnitude(r)
		barLen := int(float64(plotWidth) * mag / maxMag)

		canvas.Rect(marginLeft, y+4, barLen, barHeight-8, fmt.Sprintf("fill:%s", p.Accent))
		canvas.Text(marginLeft-8, y+barHeight/2, r.name, fmt.Sprintf("text-anchor:end;font-size:%dpx;fill:%s", defaultFontPx, p.Foreground))

		label := fmtF(mag, precision) + "x"
		canvas.Text(marginLeft+barLen+6, y+barHeight/2, label, fmt.Sprintf("font-size:%dpx;fill:%s", defaultFontPx, p.Foreground))
	}

	if boolOr(d.ShowGeoMean) {
		summary := model.CalculateSuiteSummary(resultsOf(rows))
		canvas.Text(marginLeft, height-marginBottom+30, "geomean: "+fmtF(summary.GeoMeanSpeedup, precision)+"x",
			fmt.Sprintf("font-size:%dpx;fill:%s", defaultFontPx, p.Muted))
	}
}

// renderComparisonBars draws grouped bars, one group per benchmark and one
// bar per language, the mode-aware metric chosen by primaryMetric.
func renderComparisonBars(canvas *svg.SVG, rows []row, d *dsl.ChartDirective, width, height int, p Palette, precision int) {
	plotWidth := width - marginLeft - marginRight
	plotBottom := height - marginBottom
	if len(rows) == 0 || plotWidth <= 0 {
		return
	}

	barWidth := intOr(d.BarWidth, defaultBarWidth)
	barGap := intOr(d.BarGap, defaultBarGap)

	langs := allLangsSeen(rows)
	groupWidth := len(langs)*(barWidth+barGap) + barGap
	x := marginLeft

	maxVal := 0.0
	for _, r := range rows {
		for _, lang := range langs {
			v, _ := primaryMetric(r, string(lang))
			if v > maxVal {
				maxVal = v
			}
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	plotHeight := plotBottom - marginTop
	_, axisLabel := mixedModeLabel(rows)
	canvas.Text(20, marginTop, axisLabel, fmt.Sprintf("font-size:%dpx;fill:%s", defaultFontPx, p.Muted))

	for _, r := range rows {
		for j, lang := range langs {
			v, _ := primaryMetric(r, string(lang))
			barHeight := int(float64(plotHeight) * v / maxVal)
			bx := x + barGap + j*(barWidth+barGap)
			canvas.Rect(bx, plotBottom-barHeight, barWidth, barHeight, fmt.Sprintf("fill:%s", lang.Color()))
		}
		canvas.Text(x+groupWidth/2, plotBottom+16, r.name, fmt.Sprintf("text-anchor:middle;font-size:%dpx;fill:%s", defaultFontPx, p.Foreground))
		x += groupWidth
	}

	if boolOr(d.ShowGrid) {
		canvas.Line(marginLeft, plotBottom, marginLeft+plotWidth, plotBottom, fmt.Sprintf("stroke:%s", p.Grid))
	}
}

// renderPie draws a time-distribution pie of each row's representative
// NanosPerOp share.
func renderPie(canvas *svg.SVG, rows []row, d *dsl.ChartDirective, width, height int, p Palette, precision int) {
	if len(rows) == 0 {
		return
	}

	cx, cy, radius := width/2, height/2+10, minInt(width, height)/2-60

	total := 0.0
	for _, r := range rows {
		total += representativeNanos(r)
	}
	if total == 0 {
		total = 1
	}

	colors := []string{p.Accent, p.Muted, p.Foreground, p.Grid}
	angle := -90.0
	for i, r := range rows {
		share := representativeNanos(r) / total
		sweep := share * 360

		x1, y1 := polarPoint(cx, cy, radius, angle)
		x2, y2 := polarPoint(cx, cy, radius, angle+sweep)
		large := 0
		if sweep > 180 {
			large = 1
		}

		canvas.Path(fmt.Sprintf("M%d,%d L%d,%d A%d,%d 0 %d,1 %d,%d Z", cx, cy, x1, y1, radius, radius, large, x2, y2),
			fmt.Sprintf("fill:%s", colors[i%len(colors)]))

		angle += sweep
	}

	legendY := cy + radius + 24
	for i, r := range rows {
		canvas.Rect(cx-radius, legendY+i*18, 10, 10, fmt.Sprintf("fill:%s", colors[i%len(colors)]))
		canvas.Text(cx-radius+16, legendY+i*18+9, r.name, fmt.Sprintf("font-size:%dpx;fill:%s", defaultFontPx, p.Foreground))
	}
}

// renderLine draws a trend line across the benchmark ordinal for each
// language present, per spec.md's "trend across a benchmark ordinal".
func renderLine(canvas *svg.SVG, rows []row, d *dsl.ChartDirective, width, height int, p Palette, precision int) {
	plotWidth := width - marginLeft - marginRight
	plotBottom := height - marginBottom
	plotHeight := plotBottom - marginTop
	if len(rows) < 2 || plotWidth <= 0 {
		return
	}

	langs := allLangsSeen(rows)
	maxNanos := 0.0
	for _, r := range rows {
		for _, m := range r.result.Measurements {
			if m.NanosPerOp > maxNanos {
				maxNanos = m.NanosPerOp
			}
		}
	}
	if maxNanos == 0 {
		maxNanos = 1
	}

	step := plotWidth / (len(rows) - 1)

	for _, lang := range langs {
		var prevX, prevY int
		has := false
		for i, r := range rows {
			m, ok := r.result.Measurements[lang]
			if !ok {
				continue
			}
			x := marginLeft + i*step
			y := plotBottom - int(float64(plotHeight)*m.NanosPerOp/maxNanos)
			if has {
				canvas.Line(prevX, prevY, x, y, fmt.Sprintf("stroke:%s;stroke-width:2", lang.Color()))
			}
			prevX, prevY = x, y
			has = true
		}
	}

	for i, r := range rows {
		canvas.Text(marginLeft+i*step, plotBottom+16, r.name, fmt.Sprintf("text-anchor:middle;font-size:%dpx;fill:%s", defaultFontPx, p.Foreground))
	}
}

// renderTable draws a grid of numeric cells, one row per benchmark and one
// column per language.
func renderTable(canvas *svg.SVG, rows []row, d *dsl.ChartDirective, width, height int, p Palette, precision int) {
	langs := allLangsSeen(rows)
	if len(rows) == 0 || len(langs) == 0 {
		return
	}

	rowHeight := 24
	colWidth := (width - marginLeft) / (len(langs) + 1)
	y := marginTop

	canvas.Text(marginLeft, y, "benchmark", fmt.Sprintf("font-size:%dpx;font-weight:bold;fill:%s", defaultFontPx, p.Foreground))
	for j, lang := range langs {
		canvas.Text(marginLeft+(j+1)*colWidth, y, lang.DisplayLabel(), fmt.Sprintf("font-size:%dpx;font-weight:bold;fill:%s", defaultFontPx, p.Foreground))
	}
	y += rowHeight

	for _, r := range rows {
		canvas.Text(marginLeft, y, r.name, fmt.Sprintf("font-size:%dpx;fill:%s", defaultFontPx, p.Foreground))
		for j, lang := range langs {
			cell := "-"
			if m, ok := r.result.Measurements[lang]; ok {
				cell = fmtF(m.NanosPerOp, precision) + " ns/op"
				if r.memory && m.BytesPerOp != nil {
					cell = strconv.FormatUint(*m.BytesPerOp, 10) + " B/op"
				}
			}
			canvas.Text(marginLeft+(j+1)*colWidth, y, cell, fmt.Sprintf("font-size:%dpx;fill:%s", defaultFontPx, p.Foreground))
		}
		y += rowHeight
	}

	if boolOr(d.ShowGrid) {
		canvas.Line(marginLeft, marginTop+12, width-marginRight, marginTop+12, fmt.Sprintf("stroke:%s", p.Grid))
	}
}

func allLangsSeen(rows []row) []dsl.Lang {
	seen := make(map[dsl.Lang]bool)
	for _, r := range rows {
		for lang := range r.result.Measurements {
			seen[lang] = true
		}
	}

	var langs []dsl.Lang
	for _, l := range dsl.AllLangs() {
		if seen[l] {
			langs = append(langs, l)
		}
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })

	return langs
}

func resultsOf(rows []row) []model.BenchmarkResult {
	out := make([]model.BenchmarkResult, len(rows))
	for i, r := range rows {
		out[i] = r.result
	}

	return out
}

func boolOr(b *bool) bool {
	return b != nil && *b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}

	return b
}

func polarPoint(cx, cy, radius int, angleDeg float64) (int, int) {
	rad := angleDeg * math.Pi / 180
	x := cx + int(float64(radius)*math.Cos(rad))
	y := cy + int(float64(radius)*math.Sin(rad))

	return x, y
}
