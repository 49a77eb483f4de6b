package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yndnr/tokfactory/internal/cli/command"
	"github.com/yndnr/tokfactory/internal/infra/shutdown"
)

func main() {
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	if err := command.App().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
