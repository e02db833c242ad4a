package chart

import "github.com/polybench/polybench/internal/dsl"

// Palette is a fixed set of colours an SVG chart draws from (spec.md §4.7
// "every SVG element picks colours from the selected palette").
type Palette struct {
	Background string
	Foreground string
	Grid       string
	Muted      string
	Accent     string
}

var darkPalette = Palette{
	Background: "#1e1e2e",
	Foreground: "#cdd6f4",
	Grid:       "#313244",
	Muted:      "#6c7086",
	Accent:     "#89b4fa",
}

var lightPalette = Palette{
	Background: "#ffffff",
	Foreground: "#1e1e2e",
	Grid:       "#e0e0e0",
	Muted:      "#8a8a8a",
	Accent:     "#1e66f5",
}

func paletteFor(theme dsl.Theme) Palette {
	if theme == dsl.ThemeLight {
		return lightPalette
	}

	return darkPalette
}
