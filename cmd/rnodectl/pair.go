package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rnodetools/rnodectl/internal/btctl"
	"github.com/rnodetools/rnodectl/pairing"
)

// pairCmd represents the pair command
var pairCmd = &cobra.Command{
	Use:   "pair <address>",
	Short: "Pair an RNode device",
	Long: `Request a platform-level bond with the device at the given address and
wait for the handshake to finish. The bond state is polled once a second
for up to 30 seconds.`,
	Args: cobra.ExactArgs(1),
	RunE: runPairCmd,
}

func init() {
	pairCmd.Flags().BoolP("verbose", "v", false, "Verbose logging")
}

func runPairCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := resolveLogger(cmd, cfg)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	if !btctl.Available() {
		return fmt.Errorf("bluetoothctl is not installed or not found in PATH")
	}

	address := args[0]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	controller := pairing.NewController(btctl.New(logger), logger)

	fmt.Printf("Pairing with %s...\n", address)
	outcome, err := controller.Pair(ctx, address, nil)
	if err != nil {
		return err
	}

	switch outcome {
	case pairing.Paired:
		color.Green("Paired")
	case pairing.Rejected:
		color.Red("Pairing failed or was cancelled")
	case pairing.TimedOut:
		color.Red("Pairing timed out")
	}
	return nil
}
