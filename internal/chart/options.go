package chart

// Option configures a Dashboard, following the teacher's functional-options
// shape (internal/pkg/chart/options.go).
type Option func(*options)

type options struct {
	Theme      string
	ShowLegend bool
	Horizontal bool
}

// go-echarts theme names the dashboard accepts.
const (
	ThemeRoma = "roma"
	ThemeDark = "dark"
)

// WithTheme sets the go-echarts colour theme.
func WithTheme(theme string) Option {
	return func(o *options) {
		o.Theme = theme
	}
}

// WithLegend enables or disables the chart legend.
func WithLegend(show bool) Option {
	return func(o *options) {
		o.ShowLegend = show
	}
}

// WithHorizontal enables horizontal bar orientation.
func WithHorizontal(enabled bool) Option {
	return func(o *options) {
		o.Horizontal = enabled
	}
}

func optionsWithDefaults(opts []Option) options {
	o := options{
		Theme:      ThemeRoma,
		ShowLegend: true,
	}

	for _, apply := range opts {
		apply(&o)
	}

	return o
}
