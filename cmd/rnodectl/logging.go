package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rnodetools/rnodectl/pkg/config"
)

// resolveLogger builds the command logger through the application config.
// --log-level wins over the configured level; --verbose (on commands that
// define it) bumps the level to debug.
func resolveLogger(cmd *cobra.Command, cfg *config.Config) (*logrus.Logger, error) {
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	} else if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}
	return cfg.NewLogger()
}
