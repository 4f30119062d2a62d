// Package main validates a membership transition document.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/business-network/internal/platform/config"

	validatecmd "github.com/louisbranch/business-network/internal/cmd/validate"
)

func main() {
	cfg, err := validatecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.ExitCodef(2, "Error: %v", err)
	}
	log.SetPrefix("[VALIDATE] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := validatecmd.Run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, validatecmd.ErrRejected) {
			config.Exitf("%v", err)
		}
		config.ExitCodef(2, "Error: %v", err)
	}
}
