// Package btctl implements the bonded-device enumeration and bond-request
// capabilities over the system bluetoothctl utility, which fronts the
// platform Bluetooth daemon on Linux.
package btctl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rnodetools/rnodectl/internal/radio"
)

// Adapter implements radio.BondedLister and radio.Bonder.
type Adapter struct {
	logger *logrus.Logger

	mu      sync.Mutex
	pending map[string]*exec.Cmd // in-flight pair commands by address
}

// New creates an adapter. A nil logger falls back to a default logrus
// instance.
func New(logger *logrus.Logger) *Adapter {
	if logger == nil {
		logger = logrus.New()
	}
	return &Adapter{
		logger:  logger,
		pending: make(map[string]*exec.Cmd),
	}
}

// Available reports whether bluetoothctl is installed.
func Available() bool {
	_, err := exec.LookPath("bluetoothctl")
	return err == nil
}

// BondedDevices enumerates previously-paired devices known to the daemon.
func (a *Adapter) BondedDevices() ([]radio.Sighting, error) {
	out, err := exec.Command("bluetoothctl", "devices", "Paired").Output()
	if err != nil {
		// Older bluetoothctl spells the same query differently.
		out, err = exec.Command("bluetoothctl", "paired-devices").Output()
		if err != nil {
			return nil, fmt.Errorf("bluetoothctl enumeration failed: %w", err)
		}
	}
	return parseDeviceList(out), nil
}

// RequestBond starts a platform pairing handshake for address. The command
// keeps running while the handshake is pending; BondState reads it as
// Bonding until the daemon reports a terminal state.
func (a *Adapter) RequestBond(ctx context.Context, address string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, running := a.pending[address]; running {
		return radio.ErrPairingInFlight
	}

	cmd := exec.CommandContext(ctx, "bluetoothctl", "pair", address)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start pairing: %w", err)
	}
	a.pending[address] = cmd

	go func() {
		err := cmd.Wait()
		a.mu.Lock()
		delete(a.pending, address)
		a.mu.Unlock()
		if err != nil {
			a.logger.WithError(err).WithField("address", address).Debug("Pair command exited")
		}
	}()

	return nil
}

// BondState queries the daemon's view of the device. A device the daemon
// reports as paired is Bonded; one with a pair command still running is
// Bonding; anything else is unbonded.
func (a *Adapter) BondState(address string) (radio.BondState, error) {
	out, err := exec.Command("bluetoothctl", "info", address).Output()
	if err == nil && bytes.Contains(out, []byte("Paired: yes")) {
		return radio.Bonded, nil
	}

	a.mu.Lock()
	_, running := a.pending[address]
	a.mu.Unlock()
	if running {
		return radio.Bonding, nil
	}
	return radio.BondNone, nil
}

// parseDeviceList extracts sightings from "Device <addr> <name>" lines.
func parseDeviceList(out []byte) []radio.Sighting {
	var sightings []radio.Sighting

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.SplitN(strings.TrimSpace(sc.Text()), " ", 3)
		if len(fields) < 3 || fields[0] != "Device" {
			continue
		}
		sightings = append(sightings, radio.Sighting{
			Name:    fields[2],
			Address: fields[1],
			Bonded:  true,
		})
	}
	return sightings
}
