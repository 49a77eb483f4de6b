package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Signals are the signals that cancel a WithSignals context.
var Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// WithSignals returns a context that is canceled on the first SIGINT or
// SIGTERM, or when cancel is called. Call cancel to restore default
// signal behavior.
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, Signals...)
}
