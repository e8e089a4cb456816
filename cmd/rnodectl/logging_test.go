package main

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rnodetools/rnodectl/pkg/config"
)

func newLoggingTestCmd(withVerbose bool) *cobra.Command {
	cmd := &cobra.Command{Use: "fake"}
	cmd.Flags().String("log-level", "", "")
	if withVerbose {
		cmd.Flags().Bool("verbose", false, "")
	}
	return cmd
}

func TestResolveLoggerHonorsConfiguredLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogLevel = "error"

	logger, err := resolveLogger(newLoggingTestCmd(true), cfg)
	require.NoError(t, err)
	assert.Equal(t, logrus.ErrorLevel, logger.GetLevel())
}

func TestResolveLoggerFlagOverridesConfig(t *testing.T) {
	cmd := newLoggingTestCmd(true)
	require.NoError(t, cmd.Flags().Set("log-level", "debug"))

	cfg := config.DefaultConfig()
	cfg.LogLevel = "error"

	logger, err := resolveLogger(cmd, cfg)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestResolveLoggerVerboseBumpsToDebug(t *testing.T) {
	cmd := newLoggingTestCmd(true)
	require.NoError(t, cmd.Flags().Set("verbose", "true"))

	logger, err := resolveLogger(cmd, config.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestResolveLoggerWithoutVerboseFlag(t *testing.T) {
	logger, err := resolveLogger(newLoggingTestCmd(false), config.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
}

func TestResolveLoggerRejectsInvalidLevel(t *testing.T) {
	cmd := newLoggingTestCmd(true)
	require.NoError(t, cmd.Flags().Set("log-level", "shouting"))

	_, err := resolveLogger(cmd, config.DefaultConfig())
	assert.Error(t, err)
}
