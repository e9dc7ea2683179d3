// Package main is the entry point for gait, a git wrapper that writes
// commit messages and pull requests with AI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gait/gait/internal/cmd"
)

// Version information - set via ldflags during build
var version = "dev"

func main() {
	cmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cmd.Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
