// Package wizard coordinates the multi-step radio interface configuration
// session: device discovery, region selection, and review/configure, over a
// single immutable state snapshot.
package wizard

import (
	"strings"

	"github.com/rnodetools/rnodectl/internal/presets"
	"github.com/rnodetools/rnodectl/internal/radio"
)

// Step identifies one wizard step.
type Step int

const (
	StepDeviceDiscovery Step = iota
	StepRegionSelection
	StepReviewConfigure
)

func (s Step) String() string {
	switch s {
	case StepDeviceDiscovery:
		return "device_discovery"
	case StepRegionSelection:
		return "region_selection"
	case StepReviewConfigure:
		return "review_configure"
	default:
		return "invalid"
	}
}

// stepTransitions is the explicit adjacency map of the linear step
// sequence. Steps at either end point back at themselves, so navigation
// clamps instead of wrapping.
var stepTransitions = map[Step]struct{ next, prev Step }{
	StepDeviceDiscovery: {next: StepRegionSelection, prev: StepDeviceDiscovery},
	StepRegionSelection: {next: StepReviewConfigure, prev: StepDeviceDiscovery},
	StepReviewConfigure: {next: StepReviewConfigure, prev: StepRegionSelection},
}

// DiscoveryState is the device discovery sub-state.
type DiscoveryState struct {
	Scanning     bool
	Devices      []radio.DiscoveredDevice
	Selected     *radio.DiscoveredDevice
	ManualEntry  bool
	ManualName   string
	Pairing      bool
	PairingError string
	Error        string // dismissable discovery failure message
}

// RegionState is the region selection sub-state. Preset and CustomMode are
// mutually exclusive: choosing one clears the other.
type RegionState struct {
	Preset     *presets.Preset
	CustomMode bool
}

// ReviewState is the review/configure sub-state.
type ReviewState struct {
	Fields    ReviewFields
	Errors    FieldErrors
	Saving    bool
	SaveError string
	Saved     bool
}

// PassthroughState carries persisted interface properties the review
// surface does not expose. New sessions take the defaults; edit sessions
// keep the saved values so an update never loses them.
type PassthroughState struct {
	Enabled         bool
	CSMASlotTimeMS  *int
	CSMAPersistence *int
}

// Session is the aggregate wizard state. It is treated as an immutable
// snapshot: every mutation is a pure function producing a new Session, so
// interleaved producers can never expose a partial update.
type Session struct {
	Step        Step
	Discovery   DiscoveryState
	Region      RegionState
	Review      ReviewState
	Passthrough PassthroughState
}

// NewSession returns the state of a freshly opened wizard.
func NewSession() Session {
	return Session{
		Step: StepDeviceDiscovery,
		Review: ReviewState{
			Fields: ReviewFields{Mode: radio.ModeFull},
		},
		Passthrough: PassthroughState{Enabled: true},
	}
}

// CanProceed reports whether the session may advance past its current step.
func (s Session) CanProceed() bool {
	switch s.Step {
	case StepDeviceDiscovery:
		if s.Discovery.Selected != nil {
			return true
		}
		return s.Discovery.ManualEntry && strings.TrimSpace(s.Discovery.ManualName) != ""
	case StepRegionSelection:
		return s.Region.Preset != nil || s.Region.CustomMode
	case StepReviewConfigure:
		if strings.TrimSpace(s.Review.Fields.Name) == "" {
			return false
		}
		_, ok := Check(s.Review.Fields)
		return ok
	default:
		return false
	}
}

// next advances one step, clamped at the last step, and only when the
// current step's predicate passes.
func next(s Session) Session {
	if !s.CanProceed() {
		return s
	}
	s.Step = stepTransitions[s.Step].next
	return s
}

// back retreats one step, clamped at the first step.
func back(s Session) Session {
	s.Step = stepTransitions[s.Step].prev
	return s
}

// selectDevice picks the device with the given address from the discovered
// list and leaves manual entry alone. An unknown address clears the
// selection.
func selectDevice(address string) func(Session) Session {
	return func(s Session) Session {
		s.Discovery.Selected = nil
		for i := range s.Discovery.Devices {
			if s.Discovery.Devices[i].Address == address {
				dev := s.Discovery.Devices[i]
				s.Discovery.Selected = &dev
				break
			}
		}
		return s
	}
}

// setManualEntry toggles manual device entry and records the entered name.
func setManualEntry(active bool, name string) func(Session) Session {
	return func(s Session) Session {
		s.Discovery.ManualEntry = active
		s.Discovery.ManualName = name
		return s
	}
}

// selectPreset installs a regional preset: clears custom mode and
// overwrites the five radio fields with the preset values verbatim.
func selectPreset(p presets.Preset) func(Session) Session {
	return func(s Session) Session {
		preset := p
		s.Region.Preset = &preset
		s.Region.CustomMode = false
		s.Review.Fields = s.Review.Fields.withPreset(p)
		s.Review.Errors = clearRadioErrors(s.Review.Errors)
		return s
	}
}

// enableCustomMode switches to free-form parameter entry, clearing any
// selected preset.
func enableCustomMode(s Session) Session {
	s.Region.CustomMode = true
	s.Region.Preset = nil
	return s
}

// upsertDevice merges one reconciled device into the list, keyed by
// address. A selected device is refreshed in place so pairing state stays
// visible.
func upsertDevice(dev radio.DiscoveredDevice) func(Session) Session {
	return func(s Session) Session {
		devices := make([]radio.DiscoveredDevice, len(s.Discovery.Devices))
		copy(devices, s.Discovery.Devices)

		found := false
		for i := range devices {
			if devices[i].Address == dev.Address {
				devices[i] = dev
				found = true
				break
			}
		}
		if !found {
			devices = append(devices, dev)
		}
		s.Discovery.Devices = devices

		if s.Discovery.Selected != nil && s.Discovery.Selected.Address == dev.Address {
			selected := dev
			s.Discovery.Selected = &selected
		}
		return s
	}
}

// dismissDiscoveryError clears the discovery failure message.
func dismissDiscoveryError(s Session) Session {
	s.Discovery.Error = ""
	return s
}

// dismissPairingError clears the pairing failure message.
func dismissPairingError(s Session) Session {
	s.Discovery.PairingError = ""
	return s
}
