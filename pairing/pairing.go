// Package pairing drives the platform bonding handshake for a single
// selected device: one bond request, then bounded fixed-interval polling of
// the bond state until a terminal outcome.
package pairing

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"

	"github.com/rnodetools/rnodectl/internal/radio"
)

// Outcome is the terminal result of a pairing attempt.
type Outcome int

const (
	// Paired means the platform reported a fully bonded state.
	Paired Outcome = iota
	// Rejected means the platform reported an explicit unbonded state
	// while the handshake was pending (rejected or cancelled by the peer).
	Rejected
	// TimedOut means the poll budget was exhausted while the bond state
	// still read as in progress.
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Paired:
		return "paired"
	case Rejected:
		return "rejected"
	default:
		return "timed_out"
	}
}

// Options bounds the poll loop.
type Options struct {
	PollInterval time.Duration `default:"1s"`
	MaxAttempts  int           `default:"30"`
}

// DefaultOptions returns the default pairing options: a 1-second poll
// interval with a 30-attempt ceiling.
func DefaultOptions() *Options {
	opts := new(Options)
	defaults.SetDefaults(opts)
	return opts
}

// Controller issues bond requests. At most one request may be in flight at
// a time; a second Pair call returns radio.ErrPairingInFlight.
type Controller struct {
	bonder   radio.Bonder
	logger   *logrus.Logger
	inFlight atomic.Bool
}

// NewController creates a pairing controller. A nil logger falls back to a
// default logrus instance.
func NewController(bonder radio.Bonder, logger *logrus.Logger) *Controller {
	if logger == nil {
		logger = logrus.New()
	}
	return &Controller{bonder: bonder, logger: logger}
}

// InProgress reports whether a pairing attempt is currently in flight. The
// flag is advisory; Pair itself enforces the single-flight guard.
func (c *Controller) InProgress() bool {
	return c.inFlight.Load()
}

// Pair requests a bond with the device at address and polls until the
// handshake reaches a terminal state or the attempt budget runs out. The
// in-flight guard is cleared on every exit path.
func (c *Controller) Pair(ctx context.Context, address string, opts *Options) (Outcome, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return Rejected, radio.ErrPairingInFlight
	}
	defer c.inFlight.Store(false)

	c.logger.WithField("address", address).Info("Requesting bond")

	if err := c.bonder.RequestBond(ctx, address); err != nil {
		return Rejected, fmt.Errorf("bond request failed: %w", err)
	}

	outcome, err := pollBond(ctx, c.bonder, address, opts)
	if err != nil {
		return outcome, err
	}

	c.logger.WithFields(logrus.Fields{
		"address": address,
		"outcome": outcome.String(),
	}).Info("Pairing finished")

	return outcome, nil
}

// pollBond is the bounded timed-retry combinator: it re-reads the bond
// state every interval, for at most opts.MaxAttempts reads, only while the
// state remains in progress.
func pollBond(ctx context.Context, bonder radio.Bonder, address string, opts *Options) (Outcome, error) {
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return TimedOut, ctx.Err()
		case <-ticker.C:
		}

		state, err := bonder.BondState(address)
		if err != nil {
			return Rejected, fmt.Errorf("bond state query failed: %w", err)
		}

		switch state {
		case radio.Bonded:
			return Paired, nil
		case radio.BondNone:
			return Rejected, nil
		case radio.Bonding:
			// still in progress, keep polling
		}
	}

	return TimedOut, nil
}
