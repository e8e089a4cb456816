//go:build !linux && !darwin

package bleadapter

import (
	"github.com/go-ble/ble"

	"github.com/rnodetools/rnodectl/internal/radio"
)

func newPlatformDevice() (ble.Device, error) {
	return nil, radio.ErrScanUnavailable
}
