package main

import (
	"errors"

	"github.com/rnodetools/rnodectl/internal/radio"
	"github.com/rnodetools/rnodectl/internal/store"
)

// formatUserError maps engine errors to actionable messages for the
// terminal.
func formatUserError(err error) string {
	switch {
	case errors.Is(err, radio.ErrScanUnavailable):
		return "Bluetooth scanning is unavailable - check that Bluetooth is enabled and the tool has permission to use it"
	case errors.Is(err, radio.ErrPairingInFlight):
		return "a pairing attempt is already in progress"
	case errors.Is(err, store.ErrNotFound):
		return "no saved interface with that id"
	default:
		return err.Error()
	}
}
