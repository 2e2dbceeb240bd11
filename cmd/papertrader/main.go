package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"papertrader/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, cli.RenderError(err))
		stop()
		os.Exit(1)
	}
}
