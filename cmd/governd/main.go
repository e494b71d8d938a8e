// Package main starts the governance daemon and handles termination.
//
// The process owns the singleton session engine, the block clock, and the
// journal relay, and serves the governance HTTP API.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	governdcmd "github.com/signoria/signoria/internal/cmd/governd"
)

func main() {
	cfg, err := governdcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[GOVERND] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := governdcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
