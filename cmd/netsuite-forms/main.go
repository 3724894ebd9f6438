// Package main provides the entry point for the NetSuite forms CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/GabrielNunesIT/netsuite-forms/internal/cli"
)

func main() {
	log := logger.NewConsoleLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.New(log)
	if err := app.ExecuteContext(ctx); err != nil {
		log.Errorf("Error: %v", err)
		stop()
		os.Exit(1)
	}
}
