package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rnodectl",
	Short: "RNode radio discovery and configuration tool",
	Long: `Command-line tool for bringing RNode long-range radios into a running
network stack:

- Discover nearby and previously-paired RNode devices
- Pair an unbonded device at the platform level
- Run the interface configuration wizard and persist the result
- Manage saved radio interface definitions

Discovery merges a time-boxed BLE scan with the platform's bonded-device
list, resolving Classic/BLE ambiguity through a durable classification
cache.`,
	Version: version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Ctrl+C is a normal exit, not an error - exit silently
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", formatUserError(err))
		os.Exit(1)
	}
}

func init() {
	// Silence Cobra's "Error:" prefix - main() prints clean errors
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(pairCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(interfacesCmd)

	// Global flags
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("data-dir", "", "Override the data directory")
}
