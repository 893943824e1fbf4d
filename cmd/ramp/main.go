// Package main is the ramp command. Each invocation loads configuration,
// wires dependencies with samber/do v2 and runs exactly one command. SIGINT
// and SIGTERM cancel the running stage.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
}
