// Package shutdown ties process termination signals to context
// cancellation.
//
// Usage:
//
//	ctx, cancel := shutdown.WithSignals(context.Background())
//	defer cancel()
//	app.RunContext(ctx, os.Args) // commands observe ctx.Done()
package shutdown
