// Package discovery merges the two asynchronous device sources, the active
// BLE scan and the bonded-device enumeration, plus the durable
// classification cache into one deduplicated device list.
package discovery

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/rnodetools/rnodectl/internal/radio"
	"github.com/rnodetools/rnodectl/internal/ringchan"
)

// DeviceEventType marks if the device was newly discovered or updated.
type DeviceEventType int

const (
	EventNew DeviceEventType = iota
	EventUpdated
)

// DeviceEvent is one incremental reconciliation result, emitted as sources
// produce sightings.
type DeviceEvent struct {
	Type   DeviceEventType
	Device radio.DiscoveredDevice
}

// Options configures a discovery pass.
type Options struct {
	// ScanDuration bounds the active scan window.
	ScanDuration time.Duration `default:"10s"`
	// NamePrefix filters both sources to the target naming convention.
	NamePrefix string `default:"RNode"`
}

// DefaultOptions returns the default discovery options.
func DefaultOptions() *Options {
	opts := new(Options)
	defaults.SetDefaults(opts)
	return opts
}

// Reconciler produces the merged device list. Scan sightings are
// authoritative for link type; bonded-only devices fall back to the cache
// and finally to Unknown.
type Reconciler struct {
	scan   radio.ScanSource
	bonded radio.BondedLister
	cache  radio.ClassificationStore
	logger *logrus.Logger

	events *ringchan.Ring[DeviceEvent]
}

// NewReconciler creates a reconciler over the given sources and cache. A
// nil logger falls back to a default logrus instance.
func NewReconciler(scan radio.ScanSource, bonded radio.BondedLister, cache radio.ClassificationStore, logger *logrus.Logger) *Reconciler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Reconciler{
		scan:   scan,
		bonded: bonded,
		cache:  cache,
		logger: logger,
		events: ringchan.New[DeviceEvent](100),
	}
}

// Events returns the stream of incremental device events. Events are
// delivered on a bounded overwrite-oldest channel so a slow consumer never
// stalls the scan callback.
func (r *Reconciler) Events() <-chan DeviceEvent {
	return r.events.C()
}

// Discover runs one full discovery pass and returns the merged device list
// in insertion order: scan results first, then bonded-only results.
//
// A scan failure does not abort the pass; bonded-device enumeration still
// runs and the failure is returned alongside the partial result as a
// *radio.DiscoveryError. Only when both sources fail is the device list
// empty with a joined error.
func (r *Reconciler) Discover(ctx context.Context, opts *Options) ([]radio.DiscoveredDevice, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	merged := orderedmap.New[string, radio.DiscoveredDevice]()
	var srcErrs []error

	if err := r.runScan(ctx, opts, merged); err != nil {
		r.logger.WithError(err).Warn("Active scan failed, falling back to bonded devices")
		srcErrs = append(srcErrs, &radio.DiscoveryError{Source: radio.SourceScan, Err: err})
	}

	if err := r.mergeBonded(opts, merged); err != nil {
		r.logger.WithError(err).Warn("Bonded device enumeration failed")
		srcErrs = append(srcErrs, &radio.DiscoveryError{Source: radio.SourceBondedEnum, Err: err})
	}

	devices := make([]radio.DiscoveredDevice, 0, merged.Len())
	for pair := merged.Oldest(); pair != nil; pair = pair.Next() {
		devices = append(devices, pair.Value)
	}

	r.logger.WithFields(logrus.Fields{
		"device_count":  len(devices),
		"source_errors": len(srcErrs),
	}).Info("Discovery pass completed")

	return devices, errors.Join(srcErrs...)
}

// runScan performs the time-boxed active scan. Every matching sighting is
// authoritative: the record gets LinkBLE and the classification is written
// through to the cache immediately, overriding any stale entry.
func (r *Reconciler) runScan(ctx context.Context, opts *Options, merged *orderedmap.OrderedMap[string, radio.DiscoveredDevice]) error {
	r.logger.WithField("duration", opts.ScanDuration).Info("Starting active scan")

	err := r.scan.Scan(ctx, opts.ScanDuration, func(s radio.Sighting) {
		if !r.matchesName(s.Name, opts) {
			return
		}

		dev := radio.DiscoveredDevice{
			Name:     s.Name,
			Address:  s.Address,
			LinkType: radio.LinkBLE,
			RSSI:     s.RSSI,
			Paired:   s.Bonded,
		}

		_, existing := merged.Get(s.Address)
		merged.Set(s.Address, dev)

		// Direct detection outranks cached history.
		if cerr := r.cache.Set(s.Address, radio.LinkBLE); cerr != nil {
			r.logger.WithError(cerr).WithField("address", s.Address).Warn("Failed to cache classification")
		}

		ev := DeviceEvent{Type: EventNew, Device: dev}
		if existing {
			ev.Type = EventUpdated
		} else {
			r.logger.WithFields(logrus.Fields{
				"device":  dev.Name,
				"address": dev.Address,
			}).Info("Discovered device via scan")
		}
		r.events.Send(ev)
	})
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// mergeBonded folds previously-bonded devices into the merged map. A device
// already seen by the scan keeps LinkBLE and is only marked paired; a
// bonded-only device takes its link type from the cache, or Unknown when
// the cache has never seen it either.
func (r *Reconciler) mergeBonded(opts *Options, merged *orderedmap.OrderedMap[string, radio.DiscoveredDevice]) error {
	bonded, err := r.bonded.BondedDevices()
	if err != nil {
		return err
	}

	for _, s := range bonded {
		if !r.matchesName(s.Name, opts) {
			continue
		}

		if dev, ok := merged.Get(s.Address); ok {
			// Bonded devices are by definition paired; the scan-observed
			// link type stands.
			dev.Paired = true
			merged.Set(s.Address, dev)
			r.events.Send(DeviceEvent{Type: EventUpdated, Device: dev})
			continue
		}

		linkType := radio.LinkUnknown
		if cached, ok := r.cache.Get(s.Address); ok {
			linkType = cached
		}

		dev := radio.DiscoveredDevice{
			Name:     s.Name,
			Address:  s.Address,
			LinkType: linkType,
			RSSI:     s.RSSI,
			Paired:   true,
		}
		merged.Set(s.Address, dev)

		r.logger.WithFields(logrus.Fields{
			"device":    dev.Name,
			"address":   dev.Address,
			"link_type": dev.LinkType.String(),
		}).Info("Discovered bonded device")
		r.events.Send(DeviceEvent{Type: EventNew, Device: dev})
	}

	return nil
}

func (r *Reconciler) matchesName(name string, opts *Options) bool {
	if opts.NamePrefix == "" {
		return true
	}
	return strings.HasPrefix(name, opts.NamePrefix)
}
