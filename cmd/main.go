package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"marketpulse/pkg/errors"
)

// Exit codes
const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
	exitInput  = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errors.ErrConfig):
		return exitConfig
	case errors.Is(err, errors.ErrInput), errors.Is(err, errors.ErrInvalidInput):
		return exitInput
	default:
		return exitFailed
	}
}
