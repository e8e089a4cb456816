package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rnodetools/rnodectl/discovery"
	"github.com/rnodetools/rnodectl/internal/bleadapter"
	"github.com/rnodetools/rnodectl/internal/btctl"
	"github.com/rnodetools/rnodectl/internal/classify"
	"github.com/rnodetools/rnodectl/internal/store"
	"github.com/rnodetools/rnodectl/pkg/config"
)

// loadConfig resolves the application config from --config and --data-dir.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	return cfg, nil
}

// newReconciler wires the discovery engine against the real platform
// adapters and the durable classification cache.
func newReconciler(cfg *config.Config, logger *logrus.Logger) (*discovery.Reconciler, error) {
	cache, err := classify.Open(classify.NewFileStore(cfg.ClassificationCachePath()), logger)
	if err != nil {
		return nil, err
	}

	return discovery.NewReconciler(
		bleadapter.NewScanSource(logger),
		btctl.New(logger),
		cache,
		logger,
	), nil
}

// openStore opens the saved-interface database inside the data directory.
func openStore(cfg *config.Config, logger *logrus.Logger) (*store.Store, error) {
	s, err := store.Open(cfg.InterfaceDBPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open interface store: %w", err)
	}
	return s, nil
}
