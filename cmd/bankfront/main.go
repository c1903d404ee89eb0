package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bankfront",
		Short: "Apna Bank terminal client",
		Long: `bankfront is a terminal client for the Apna Bank API.

Run without a subcommand to start the interactive shell. The diag
subcommands inspect the stored session and the calc subcommands run the
loan and deposit estimators offline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runShell,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringP("api", "a", "", "base URL of the banking API")
	pf.StringP("storage", "s", "", "storage backend: sqlite, keyring, redis, memory")
	pf.StringP("db", "d", "", "sqlite database path")
	pf.IntP("revalidate", "i", 0, "revalidation interval in seconds, 0 disables")
	pf.StringP("log-level", "l", "", "log level")
	pf.StringP("metrics", "m", "", "metrics listen address")
	pf.StringP("config", "c", "", "path to JSON config file")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "shell",
			Short: "Start the interactive shell (the default)",
			Args:  cobra.NoArgs,
			RunE:  runShell,
		},
		diagCmd(),
		calcCmd(),
	)

	return rootCmd
}
