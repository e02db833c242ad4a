package chart

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/polybench/polybench/internal/image"
	"github.com/polybench/polybench/internal/model"
)

// RenderDashboardPNG renders the live HTML dashboard for a run and
// screenshots it to a PNG at path, for --dashboard-png (SPEC_FULL.md §4.7).
func RenderDashboardPNG(ctx context.Context, path, title string, results model.BenchmarkResults, renderer *image.Renderer) error {
	var html bytes.Buffer
	if err := NewDashboard(title, results).Render(&html); err != nil {
		return fmt.Errorf("chart: building dashboard html: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return renderer.Render(ctx, f, &html)
}
