package htmlview

import (
	"image/color"
	"log/slog"
)

// Option configures a Controller during creation.
//
// Example:
//
//	c := htmlview.New(h, htmlview.WithBackground(color.RGBA{A: 255}))
type Option func(*options)

type options struct {
	background color.RGBA
	logger     *slog.Logger
}

// defaultOptions returns the default controller options.
func defaultOptions() options {
	return options{
		background: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
}

// WithBackground sets the colour painted behind the document.
// The default is opaque white.
func WithBackground(c color.RGBA) Option {
	return func(o *options) {
		o.background = c
	}
}

// WithLogger sets a logger for one controller. Without it the controller
// logs through Logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
