package image

import "time"

// Option tunes dashboard screenshot rendering.
type Option func(*options)

type options struct {
	Height        int64
	Width         int64
	SleepDuration time.Duration
}

const (
	defaultHeight int64 = 1080
	defaultWidth  int64 = 1920
	defaultWait         = time.Second
)

func optionsWithDefaults(opts []Option) options {
	o := options{
		Height:        defaultHeight,
		Width:         defaultWidth,
		SleepDuration: defaultWait,
	}

	for _, apply := range opts {
		apply(&o)
	}

	return o
}

// WithHeight sets the viewport height of the screenshot.
//
// Defaults to 1080.
func WithHeight(height int64) Option {
	return func(o *options) {
		if height <= 0 {
			return
		}

		o.Height = height
	}
}

// WithWidth sets the viewport width of the screenshot.
//
// Defaults to 1920.
func WithWidth(width int64) Option {
	return func(o *options) {
		if width <= 0 {
			return
		}

		o.Width = width
	}
}

// WithSleep sets how long to wait for the headless Chrome engine to finish
// rendering the dashboard before capturing it.
//
// Defaults to 1s.
func WithSleep(sleep time.Duration) Option {
	return func(o *options) {
		if sleep == 0 {
			return
		}

		o.SleepDuration = sleep
	}
}
