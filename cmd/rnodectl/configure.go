package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rnodetools/rnodectl/discovery"
	"github.com/rnodetools/rnodectl/internal/btctl"
	"github.com/rnodetools/rnodectl/internal/presets"
	"github.com/rnodetools/rnodectl/pairing"
	"github.com/rnodetools/rnodectl/wizard"
)

// configureCmd represents the configure command
var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Run the interface configuration wizard",
	Long: `Walk through the three-step interface configuration wizard:

 1. Discover and select (or manually name) the target RNode device
 2. Pick a regional frequency preset, or enter custom parameters
 3. Review the radio parameters and save the interface definition

The finished definition is persisted to the interface database.`,
	RunE: runConfigureCmd,
}

var configureEditID int64

func init() {
	configureCmd.Flags().Int64Var(&configureEditID, "edit", 0, "Edit the saved interface with this id")
	configureCmd.Flags().BoolP("verbose", "v", false, "Verbose logging")
}

func runConfigureCmd(cmd *cobra.Command, args []string) error {
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
	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	deps := wizard.Deps{
		Reconciler: reconciler,
		Pairer:     pairing.NewController(btctl.New(logger), logger),
		Catalog:    presets.Default(),
		Persister:  st,
		Logger:     logger,
	}

	var w *wizard.Wizard
	if configureEditID > 0 {
		saved, err := st.Get(cmd.Context(), configureEditID)
		if err != nil {
			return err
		}
		w = wizard.NewForEdit(deps, saved.ID, saved.Config)
	} else {
		w = wizard.New(deps)
	}
	defer w.Close()

	prompt := &prompter{in: bufio.NewReader(os.Stdin)}
	for {
		snap := w.Snapshot()
		switch snap.Step {
		case wizard.StepDeviceDiscovery:
			if err := runDiscoveryStep(w, prompt, cfg.ScanTimeout, cfg.DeviceFilter); err != nil {
				return err
			}
		case wizard.StepRegionSelection:
			if err := runRegionStep(w, prompt); err != nil {
				return err
			}
		case wizard.StepReviewConfigure:
			done, err := runReviewStep(w, prompt)
			if err != nil {
				return err
			}
			if done {
				color.Green("Interface saved")
				return nil
			}
		}

		if next := w.Next(); next.Step == snap.Step && !next.CanProceed() {
			color.Yellow("Step incomplete, try again")
		}
	}
}

type prompter struct {
	in *bufio.Reader
}

// ask prints a prompt with an optional default and reads one trimmed line.
func (p *prompter) ask(label, def string) (string, error) {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

func runDiscoveryStep(w *wizard.Wizard, prompt *prompter, scanTimeout time.Duration, nameFilter string) error {
	fmt.Println("\n-- Step 1: Device discovery --")

	opts := discovery.DefaultOptions()
	opts.ScanDuration = scanTimeout
	opts.NamePrefix = nameFilter
	w.StartDiscovery(opts)

	fmt.Printf("Scanning (%s)...\n", scanTimeout)
	waitFor(w, func(s wizard.Session) bool { return !s.Discovery.Scanning })

	snap := w.Snapshot()
	if snap.Discovery.Error != "" {
		color.Yellow("%s", snap.Discovery.Error)
		w.DismissDiscoveryError()
	}

	devices := snap.Discovery.Devices
	if len(devices) == 0 {
		fmt.Println("No devices found.")
	}
	for i, d := range devices {
		paired := ""
		if d.Paired {
			paired = " (paired)"
		}
		fmt.Printf("  %d) %s  %s  [%s]%s\n", i+1, d.Name, d.Address, d.LinkType, paired)
	}

	choice, err := prompt.ask("Select device number, or 'm' for manual entry", "")
	if err != nil {
		return err
	}

	if strings.EqualFold(choice, "m") {
		name, err := prompt.ask("Device name", snap.Discovery.ManualName)
		if err != nil {
			return err
		}
		w.SetManualEntry(true, name)
		return nil
	}

	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(devices) {
		fmt.Println("Invalid selection.")
		return nil
	}
	selected := devices[n-1]
	w.SelectDevice(selected.Address)

	if !selected.Paired {
		answer, err := prompt.ask("Device is not paired. Pair now? (y/n)", "y")
		if err != nil {
			return err
		}
		if strings.EqualFold(answer, "y") {
			if err := w.PairSelected(); err != nil {
				return err
			}
			fmt.Println("Pairing...")
			waitFor(w, func(s wizard.Session) bool { return !s.Discovery.Pairing })
			if msg := w.Snapshot().Discovery.PairingError; msg != "" {
				color.Red("%s", msg)
				w.DismissPairingError()
			} else {
				color.Green("Paired")
			}
		}
	}
	return nil
}

func runRegionStep(w *wizard.Wizard, prompt *prompter) error {
	fmt.Println("\n-- Step 2: Region selection --")

	countries, groups := w.Catalog().ByCountry()
	all := make([]presets.Preset, 0)
	for _, country := range countries {
		fmt.Printf("%s:\n", country)
		for _, p := range groups[country] {
			all = append(all, p)
			fmt.Printf("  %d) %s\n", len(all), p.Name)
		}
	}

	choice, err := prompt.ask("Select preset number, or 'c' for custom parameters", "")
	if err != nil {
		return err
	}

	if strings.EqualFold(choice, "c") {
		w.EnableCustomMode()
		return nil
	}

	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(all) {
		fmt.Println("Invalid selection.")
		return nil
	}
	w.SelectPreset(all[n-1])
	return nil
}

func runReviewStep(w *wizard.Wizard, prompt *prompter) (bool, error) {
	fmt.Println("\n-- Step 3: Review and configure --")

	fields := []struct {
		field wizard.Field
		label string
		get   func(wizard.ReviewFields) string
	}{
		{wizard.FieldName, "Interface name", func(f wizard.ReviewFields) string { return f.Name }},
		{wizard.FieldFrequency, "Frequency (Hz)", func(f wizard.ReviewFields) string { return f.Frequency }},
		{wizard.FieldBandwidth, "Bandwidth (Hz)", func(f wizard.ReviewFields) string { return f.Bandwidth }},
		{wizard.FieldSpreadingFactor, "Spreading factor", func(f wizard.ReviewFields) string { return f.SpreadingFactor }},
		{wizard.FieldCodingRate, "Coding rate", func(f wizard.ReviewFields) string { return f.CodingRate }},
		{wizard.FieldTxPower, "TX power (dBm)", func(f wizard.ReviewFields) string { return f.TxPower }},
		{wizard.FieldMode, "Operating mode", func(f wizard.ReviewFields) string { return f.Mode }},
	}

	for _, f := range fields {
		value, err := prompt.ask(f.label, f.get(w.Snapshot().Review.Fields))
		if err != nil {
			return false, err
		}
		w.SetField(f.field, value)
	}

	if err := w.Save(); err != nil {
		snap := w.Snapshot()
		printFieldErrors(snap.Review.Errors)
		if snap.Review.SaveError != "" {
			color.Red("%s", snap.Review.SaveError)
		}
		return false, nil // recoverable: loop back for corrections
	}
	return true, nil
}

func printFieldErrors(errs wizard.FieldErrors) {
	for _, msg := range []string{
		errs.Name, errs.Frequency, errs.Bandwidth,
		errs.SpreadingFactor, errs.CodingRate, errs.TxPower, errs.Mode,
	} {
		if msg != "" {
			color.Red("  %s", msg)
		}
	}
}

// waitFor blocks until the predicate holds for a published snapshot.
func waitFor(w *wizard.Wizard, pred func(wizard.Session) bool) {
	if pred(w.Snapshot()) {
		return
	}
	for snap := range w.Snapshots() {
		if pred(snap) {
			return
		}
	}
}
