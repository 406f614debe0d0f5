package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"ethogram/internal/session"
)

const (
	exitFailure     = 1
	exitLocked      = 2
	exitInterrupted = 130
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode lets wrappers tell a busy batch lock or an interrupted run apart
// from a failed one.
func exitCode(err error) int {
	switch {
	case errors.Is(err, session.ErrLocked):
		return exitLocked
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	default:
		return exitFailure
	}
}
