package accel3d

import (
	"image"
	"log/slog"
	"time"
)

// Option configures a Context during creation.
//
// Example:
//
//	c, err := accel3d.NewContext(dev, mem, heap,
//	    accel3d.WithProfile(accel3d.ProfileCompact),
//	    accel3d.WithWindow(image.Pt(-16, 0)),
//	)
type Option func(*options)

type options struct {
	profile     string
	window      image.Point
	waitTimeout time.Duration
	colorBits   int
	depthBits   int
	logger      *slog.Logger
}

func defaultOptions() options {
	return options{
		colorBits: 8,
		depthBits: 16,
	}
}

// WithProfile selects the chip profile by name. The default is the
// highest-priority registered profile.
func WithProfile(name string) Option {
	return func(o *options) {
		o.profile = name
	}
}

// WithWindow sets the screen position of the window's top-left corner.
// A negative X enables the left-edge clipper.
func WithWindow(origin image.Point) Option {
	return func(o *options) {
		o.window = origin
	}
}

// WithWaitTimeout bounds every wait for the device FIFO. Zero waits
// forever, which is the default.
func WithWaitTimeout(d time.Duration) Option {
	return func(o *options) {
		o.waitTimeout = d
	}
}

// WithColorBits sets the bits per color channel of the frame buffer.
func WithColorBits(n int) Option {
	return func(o *options) {
		o.colorBits = n
	}
}

// WithDepthBits sets the depth buffer precision.
func WithDepthBits(n int) Option {
	return func(o *options) {
		o.depthBits = n
	}
}

// WithLogger sets the logger for this context only. The default is
// Logger() at creation time.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
