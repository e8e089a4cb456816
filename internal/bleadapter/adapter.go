// Package bleadapter implements the active-scan capability over the go-ble
// stack. This is the only package that touches the platform BLE API; the
// discovery engine sees radio.ScanSource only.
package bleadapter

import (
	"context"
	"errors"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"

	"github.com/rnodetools/rnodectl/internal/radio"
)

// ServiceUUID is the Nordic UART service RNode firmware advertises over
// BLE. Sightings without it are not RNodes and are dropped at the source.
var ServiceUUID = ble.MustParse("6E400001-B5A3-F393-E0A9-E50E24DCCA9E")

// DeviceFactory creates ble.Device instances (can be overridden in tests).
var DeviceFactory = newPlatformDevice

// ScanSource is a go-ble backed radio.ScanSource.
type ScanSource struct {
	logger *logrus.Logger
}

// NewScanSource creates the adapter. A nil logger falls back to a default
// logrus instance.
func NewScanSource(logger *logrus.Logger) *ScanSource {
	if logger == nil {
		logger = logrus.New()
	}
	return &ScanSource{logger: logger}
}

// Scan runs a time-boxed BLE scan, forwarding every sighting that carries
// the RNode service UUID. The elapsed scan window is a normal return, not
// an error.
func (s *ScanSource) Scan(ctx context.Context, duration time.Duration, handler func(radio.Sighting)) error {
	dev, err := DeviceFactory()
	if err != nil {
		return radio.ErrScanUnavailable
	}

	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	err = dev.Scan(ctx, false, func(adv ble.Advertisement) {
		if !advertisesService(adv, ServiceUUID) {
			return
		}
		rssi := adv.RSSI()
		handler(radio.Sighting{
			Name:    adv.LocalName(),
			Address: adv.Addr().String(),
			RSSI:    &rssi,
			// go-ble carries no bond information; the bonded-device
			// enumeration supplies it during reconciliation.
			Bonded: false,
		})
	})
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func advertisesService(adv ble.Advertisement, uuid ble.UUID) bool {
	for _, svc := range adv.Services() {
		if svc.Equal(uuid) {
			return true
		}
	}
	return false
}
