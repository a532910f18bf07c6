package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shortfactory/internal/services"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)

	if ctx.Err() != nil {
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		return exitSignaled
	}

	if err == nil {
		return exitOK
	}

	fmt.Fprintln(os.Stderr, err)
	if errors.Is(err, services.ErrConfiguration) {
		return exitConfigError
	}
	return exitRuntimeError
}

const (
	exitOK           = 0
	exitConfigError  = 2
	exitRuntimeError = 3
	exitSignaled     = 130
)
