package tokfactory

import "log/slog"

// Option configures Open.
type Option func(*options)

type options struct {
	clock      Clock
	logger     *slog.Logger
	configFile string
}

// WithClock sets the time source for expiry checks. Tests and simulations
// pass a ManualClock.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithLogger sets the logger. By default a logger is built from the log
// section of the configuration.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithConfigWatch reloads log.level from path whenever the file changes.
func WithConfigWatch(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}
