// Command docquery renders, runs and records document-database queries
// declared in YAML, JSON or CUE definition files.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/docquery/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
