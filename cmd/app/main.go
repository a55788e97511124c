package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"warehouse-backend/internal/adapters/cli"
	"warehouse-backend/internal/adapters/repl"
	"warehouse-backend/internal/app"
	"warehouse-backend/internal/config"
	"warehouse-backend/internal/core"
	"warehouse-backend/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	// Diagnostics go to stderr so stdout stays machine-readable.
	log, err := logging.NewWithWriter(os.Stderr, cfg.LogLevel, "console")
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rt, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("startup")
	}
	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()

	var runErr error
	if len(os.Args) > 1 {
		runErr = cli.Run(ctx, rt.Service, os.Args[1:], os.Stdin, os.Stdout)
	} else {
		repl.Run(ctx, rt.Service, bufio.NewReader(os.Stdin), os.Stdout)
	}

	// Stop the dispatcher so queued audit events are flushed before exit.
	cancel()
	<-done
	rt.Close()

	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		if core.KindOf(runErr) == core.KindStore {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
