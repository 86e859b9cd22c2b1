package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/philipp01105/fastlogging/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "fastlogd",
		Short: "Collector daemon for fastlogging client writers",
		Long: `fastlogd receives records from fastlogging client writers over TCP and
writes them to the console, rotating files or syslog as configured.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cli.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(cli.NewServeCommand())
	rootCmd.AddCommand(cli.NewKeygenCommand())
	rootCmd.AddCommand(cli.NewConfigCommand())

	return rootCmd.Execute()
}
