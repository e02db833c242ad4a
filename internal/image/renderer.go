// Package image rasterizes the live HTML dashboard (internal/chart's
// go-echarts page) into a PNG screenshot, for the --dashboard-png flag.
package image

import (
	"context"
	"fmt"
	"io"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/device"
)

// Renderer takes a screenshot of a rendered HTML dashboard.
type Renderer struct {
	options
}

// New builds an image Renderer.
func New(opts ...Option) *Renderer {
	return &Renderer{
		options: optionsWithDefaults(opts),
	}
}

// Render writes a PNG screenshot of the HTML read from source to dest.
func (r *Renderer) Render(ctx context.Context, dest io.Writer, source io.Reader) error {
	content, err := io.ReadAll(source)
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}

	screenshot, err := r.screenshot(ctx, content)
	if err != nil {
		return fmt.Errorf("taking dashboard screenshot: %w", err)
	}

	if _, err := dest.Write(screenshot); err != nil {
		return fmt.Errorf("writing screenshot: %w", err)
	}

	return nil
}

func (r *Renderer) screenshot(ctx context.Context, content []byte) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	const qualityPNG = 100 // 100 forces PNG encoding

	var screenshot []byte
	err := chromedp.Run(ctx,
		chromedp.Emulate(device.Info{
			Height:    r.Height,
			Width:     r.Width,
			Landscape: true,
		}),
		chromedp.Navigate("data:text/html,"+string(content)),
		chromedp.Sleep(r.SleepDuration),
		chromedp.FullScreenshot(&screenshot, qualityPNG),
	)
	if err != nil {
		return nil, err
	}

	return screenshot, nil
}
