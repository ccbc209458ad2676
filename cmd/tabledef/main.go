// Package main provides the tabledef CLI: it checks and formats table
// definition files and talks to a running table server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/JonMunkholm/tabledef/internal/core"
	"github.com/JonMunkholm/tabledef/internal/rest"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "tabledef:", err)
		if h := hint(err); h != "" {
			fmt.Fprintln(os.Stderr, "  "+h)
		}
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode classifies err: bad input and 4xx answers are user errors,
// everything else is a system error.
func exitCode(err error) int {
	var herr *rest.HTTPError
	switch {
	case errors.Is(err, errInvalid), errors.Is(err, errUsage):
		return exitUserError
	case errors.As(err, &herr) && herr.StatusCode < 500:
		return exitUserError
	default:
		return exitSysError
	}
}

// hint returns the coded user message for local errors with a known
// cause. Server errors already carry one.
func hint(err error) string {
	var herr *rest.HTTPError
	if errors.As(err, &herr) || !core.IsUserFacing(err) {
		return ""
	}
	return core.FormatUserError(err)
}
