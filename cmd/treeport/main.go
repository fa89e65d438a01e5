// Command treeport converts XGBoost tree dumps into portable JSON models.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/YuminosukeSato/treeport/internal/cli"
)

// Set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	rootCmd := cli.NewRootCommand()
	rootCmd.SetContext(ctx)
	code := cli.Execute(rootCmd)
	stop()
	os.Exit(code)
}
