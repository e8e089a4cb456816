package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rnodetools/rnodectl/discovery"
	"github.com/rnodetools/rnodectl/internal/radio"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Discover RNode devices",
	Long: `Discover nearby and previously-paired RNode devices.

This command runs a time-boxed BLE scan, merges the results with the
platform's bonded-device list, and prints one deduplicated row per device
with its resolved link type and pairing state.`,
	RunE: runScanCmd,
}

var (
	scanDuration time.Duration
	scanFormat   string
)

func init() {
	scanCmd.Flags().DurationVarP(&scanDuration, "duration", "d", 10*time.Second, "Scan duration")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "table", "Output format (table, json)")
	scanCmd.Flags().BoolP("verbose", "v", false, "Verbose logging")
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	if scanFormat != "table" && scanFormat != "json" {
		return fmt.Errorf("invalid format '%s': must be table or json", scanFormat)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := resolveLogger(cmd, cfg)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	reconciler, err := newReconciler(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Println("\nCtrl+C pressed, cancelling scan...")
		cancel()
	}()

	opts := discovery.DefaultOptions()
	opts.ScanDuration = scanDuration
	opts.NamePrefix = cfg.DeviceFilter

	fmt.Printf("Scanning for RNode devices (%s)...\n", scanDuration)
	devices, err := reconciler.Discover(ctx, opts)
	if err != nil {
		// Source failures are non-fatal; show partial results with a notice.
		color.Yellow("warning: %s", formatUserError(err))
	}

	if scanFormat == "json" {
		return displayDevicesJSON(os.Stdout, devices)
	}
	return displayDevicesTable(os.Stdout, devices)
}

func displayDevicesTable(out io.Writer, devices []radio.DiscoveredDevice) error {
	if len(devices) == 0 {
		fmt.Fprintln(out, "No devices discovered")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tADDRESS\tLINK\tSIGNAL\tPAIRED")
	fmt.Fprintln(w, strings.Repeat("-", 60))

	for _, d := range devices {
		signal := "-"
		if d.RSSI != nil {
			signal = fmt.Sprintf("%d dBm", *d.RSSI)
		}
		paired := "no"
		if d.Paired {
			paired = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			d.Name, d.Address, d.LinkType, signal, paired)
	}

	return w.Flush()
}

func displayDevicesJSON(out io.Writer, devices []radio.DiscoveredDevice) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(devices)
}
