package chart

import "github.com/polybench/polybench/internal/dsl"

// primaryMetric is the bar value and axis label a chart shows for one row,
// chosen by the benchmark's run mode (spec.md §4.7 "Mode awareness").
func primaryMetric(r row, lang string) (value float64, label string) {
	if r.memory {
		if m, ok := r.result.Measurements[langOrFirst(r, lang)]; ok && m.BytesPerOp != nil {
			return float64(*m.BytesPerOp), "bytes/op"
		}

		return 0, "bytes/op"
	}

	switch r.mode {
	case dsl.ModeFixed:
		if m, ok := r.result.Measurements[langOrFirst(r, lang)]; ok {
			return m.TotalNanos / 1e6, "time (ms)"
		}

		return 0, "time (ms)"
	default: // auto
		if m, ok := r.result.Measurements[langOrFirst(r, lang)]; ok {
			return float64(m.Iterations), "iterations"
		}

		return 0, "iterations"
	}
}

// mixedModeLabel reports whether rows span more than one mode/memory
// combination, in which case the chart falls back to a generic label.
func mixedModeLabel(rows []row) (label string, mixed bool) {
	if len(rows) == 0 {
		return "", false
	}

	first := rows[0]
	for _, r := range rows[1:] {
		if r.mode != first.mode || r.memory != first.memory {
			return "Mixed modes", true
		}
	}

	_, label = primaryMetric(first, "")

	return label, false
}

func langOrFirst(r row, lang string) dsl.Lang {
	if lang != "" {
		if l, ok := dsl.LangFromString(lang); ok {
			if _, exists := r.result.Measurements[l]; exists {
				return l
			}
		}
	}

	for l := range r.result.Measurements {
		return l
	}

	return ""
}
