package wizard

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rnodetools/rnodectl/discovery"
	"github.com/rnodetools/rnodectl/internal/presets"
	"github.com/rnodetools/rnodectl/internal/radio"
	"github.com/rnodetools/rnodectl/internal/ringchan"
	"github.com/rnodetools/rnodectl/pairing"
)

// User-facing pairing failure messages.
const (
	msgPairingFailed   = "Pairing failed or was cancelled"
	msgPairingTimedOut = "Pairing timed out"
)

// ConfigPersister commits finished interface definitions.
type ConfigPersister interface {
	Insert(ctx context.Context, cfg radio.RadioInterfaceConfig) (int64, error)
	Update(ctx context.Context, id int64, cfg radio.RadioInterfaceConfig) error
}

// Deps are the collaborators a wizard session delegates to.
type Deps struct {
	Reconciler *discovery.Reconciler
	Pairer     *pairing.Controller
	// PairOptions overrides the pairing poll cadence; nil uses the
	// controller defaults.
	PairOptions *pairing.Options
	Catalog     *presets.Catalog
	Persister   ConfigPersister
	Logger      *logrus.Logger
}

// Wizard holds one configuration session. All long-running work (scan,
// pairing poll) runs under the session's context and is cancelled by Close;
// every observable mutation replaces the whole session snapshot atomically.
type Wizard struct {
	mu        sync.Mutex
	session   Session
	snapshots *ringchan.Ring[Session]

	reconciler  *discovery.Reconciler
	pairer      *pairing.Controller
	pairOptions *pairing.Options
	catalog     *presets.Catalog
	persister   ConfigPersister
	logger      *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// editID is set when the session edits an existing interface; Save
	// then updates instead of inserting.
	editID *int64
}

// New opens a fresh wizard session.
func New(deps Deps) *Wizard {
	return newWizard(deps, NewSession(), nil)
}

// NewForEdit opens a session hydrated from an existing interface
// definition. Save will update the record with the given id.
func NewForEdit(deps Deps, id int64, cfg radio.RadioInterfaceConfig) *Wizard {
	return newWizard(deps, NewSessionFromConfig(cfg, deps.Catalog), &id)
}

func newWizard(deps Deps, initial Session, editID *int64) *Wizard {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.New()
	}
	catalog := deps.Catalog
	if catalog == nil {
		catalog = presets.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Wizard{
		session:     initial,
		snapshots:   ringchan.New[Session](100),
		reconciler:  deps.Reconciler,
		pairer:      deps.Pairer,
		pairOptions: deps.PairOptions,
		catalog:     catalog,
		persister:   deps.Persister,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		editID:      editID,
	}
}

// Snapshot returns the current session state.
func (w *Wizard) Snapshot() Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

// Snapshots returns the stream of session states, one per mutation.
// Delivery is overwrite-oldest: a slow consumer sees the latest states, not
// every intermediate one.
func (w *Wizard) Snapshots() <-chan Session {
	return w.snapshots.C()
}

// Catalog exposes the regional preset catalog backing region selection.
func (w *Wizard) Catalog() *presets.Catalog {
	return w.catalog
}

// apply runs one pure reducer over the current snapshot and publishes the
// replacement. Last write wins; no partial update is ever visible.
func (w *Wizard) apply(fn func(Session) Session) Session {
	w.mu.Lock()
	w.session = fn(w.session)
	next := w.session
	w.mu.Unlock()

	w.snapshots.Send(next)
	return next
}

// StartDiscovery launches one discovery pass under the session context.
// Devices stream into the snapshot as they are found; the scanning flag
// drops when the pass completes. A pass already in flight is left alone.
func (w *Wizard) StartDiscovery(opts *discovery.Options) {
	started := false
	w.apply(func(s Session) Session {
		if s.Discovery.Scanning {
			return s
		}
		started = true
		s.Discovery.Scanning = true
		s.Discovery.Error = ""
		return s
	})
	if !started {
		return
	}

	// Stream incremental results into the snapshot while the pass runs.
	streamDone := make(chan struct{})
	go func() {
		for {
			select {
			case <-w.ctx.Done():
				return
			case <-streamDone:
				return
			case ev := <-w.reconciler.Events():
				w.apply(upsertDevice(ev.Device))
			}
		}
	}()

	go func() {
		devices, err := w.reconciler.Discover(w.ctx, opts)
		close(streamDone)

		w.apply(func(s Session) Session {
			s.Discovery.Scanning = false
			s.Discovery.Devices = devices
			if err != nil && !errors.Is(err, context.Canceled) {
				s.Discovery.Error = "Device discovery failed: " + err.Error()
			}
			// Re-point the selection at the refreshed record.
			if s.Discovery.Selected != nil {
				sel := *s.Discovery.Selected
				for i := range devices {
					if devices[i].Address == sel.Address {
						refreshed := devices[i]
						s.Discovery.Selected = &refreshed
						break
					}
				}
			}
			return s
		})
	}()
}

// SelectDevice picks a discovered device by address.
func (w *Wizard) SelectDevice(address string) {
	w.apply(selectDevice(address))
}

// SetManualEntry toggles manual device entry with the given name.
func (w *Wizard) SetManualEntry(active bool, name string) {
	w.apply(setManualEntry(active, name))
}

// SelectPreset installs a regional preset, clearing custom mode.
func (w *Wizard) SelectPreset(p presets.Preset) {
	w.apply(selectPreset(p))
}

// EnableCustomMode switches to free-form parameter entry.
func (w *Wizard) EnableCustomMode() {
	w.apply(enableCustomMode)
}

// SetField updates one review field, clearing only that field's error.
func (w *Wizard) SetField(field Field, value string) {
	w.apply(setField(field, value))
}

// Next advances one step when the current step's predicate passes.
func (w *Wizard) Next() Session {
	return w.apply(next)
}

// Back retreats one step, clamped at device discovery.
func (w *Wizard) Back() Session {
	return w.apply(back)
}

// DismissDiscoveryError clears the discovery failure message.
func (w *Wizard) DismissDiscoveryError() {
	w.apply(dismissDiscoveryError)
}

// DismissPairingError clears the pairing failure message.
func (w *Wizard) DismissPairingError() {
	w.apply(dismissPairingError)
}

// PairSelected bonds the currently selected device. The handshake runs
// asynchronously; progress and outcome land in the snapshot. It returns an
// error only when there is nothing to pair or a pairing is already in
// flight.
func (w *Wizard) PairSelected() error {
	w.mu.Lock()
	sel := w.session.Discovery.Selected
	pairingNow := w.session.Discovery.Pairing
	w.mu.Unlock()

	if sel == nil || sel.Address == "" {
		return errors.New("no device selected")
	}
	if pairingNow {
		return radio.ErrPairingInFlight
	}

	address := sel.Address
	w.apply(func(s Session) Session {
		s.Discovery.Pairing = true
		s.Discovery.PairingError = ""
		return s
	})

	go func() {
		outcome, err := w.pairer.Pair(w.ctx, address, w.pairOptions)

		w.apply(func(s Session) Session {
			s.Discovery.Pairing = false

			if err != nil {
				if errors.Is(err, context.Canceled) {
					return s
				}
				w.logger.WithError(err).WithField("address", address).Warn("Pairing failed")
				s.Discovery.PairingError = msgPairingFailed
				return s
			}

			switch outcome {
			case pairing.Paired:
				s.Discovery.PairingError = ""
				s = markPaired(address)(s)
			case pairing.Rejected:
				s.Discovery.PairingError = msgPairingFailed
			case pairing.TimedOut:
				s.Discovery.PairingError = msgPairingTimedOut
			}
			return s
		})
	}()

	return nil
}

// markPaired flips the paired flag on the device with the given address,
// both in the list and on the selection.
func markPaired(address string) func(Session) Session {
	return func(s Session) Session {
		devices := make([]radio.DiscoveredDevice, len(s.Discovery.Devices))
		copy(devices, s.Discovery.Devices)
		for i := range devices {
			if devices[i].Address == address {
				devices[i].Paired = true
			}
		}
		s.Discovery.Devices = devices

		if s.Discovery.Selected != nil && s.Discovery.Selected.Address == address {
			sel := *s.Discovery.Selected
			sel.Paired = true
			s.Discovery.Selected = &sel
		}
		return s
	}
}

// Save runs verbose validation and, when it passes, persists the interface
// definition: insert for a fresh session, update when editing. It is only
// valid at the review step; earlier steps have not produced a complete
// definition yet. A persistence failure is recoverable; the save flags
// reset so the user can retry.
func (w *Wizard) Save() error {
	var atReview, valid bool
	snap := w.apply(func(s Session) Session {
		if s.Step != StepReviewConfigure {
			return s
		}
		atReview = true

		errs, ok := Check(s.Review.Fields)
		s.Review.Errors = errs
		valid = ok
		if ok {
			s.Review.Saving = true
			s.Review.SaveError = ""
		}
		return s
	})

	if !atReview {
		return errors.New("session has not reached the review step")
	}
	if !valid {
		return errors.New("configuration is invalid")
	}

	cfg := buildConfig(snap)

	var err error
	if w.editID != nil {
		err = w.persister.Update(w.ctx, *w.editID, cfg)
	} else {
		_, err = w.persister.Insert(w.ctx, cfg)
	}

	w.apply(func(s Session) Session {
		s.Review.Saving = false
		if err != nil {
			s.Review.SaveError = "Failed to save interface"
			return s
		}
		s.Review.Saved = true
		return s
	})

	if err != nil {
		w.logger.WithError(err).Error("Failed to persist interface configuration")
		return err
	}

	w.logger.WithFields(logrus.Fields{
		"interface": cfg.Name,
		"device":    cfg.TargetDevice,
		"mode":      cfg.ConnectionMode.String(),
	}).Info("Interface configuration saved")
	return nil
}

// Close discards the session, cancelling any outstanding scan or pairing
// task.
func (w *Wizard) Close() {
	w.cancel()
}
