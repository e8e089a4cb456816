package wizard

import (
	"strconv"
	"strings"

	"github.com/rnodetools/rnodectl/internal/presets"
	"github.com/rnodetools/rnodectl/internal/radio"
)

// NewSessionFromConfig hydrates a session from an existing interface
// definition for editing. The saved parameters are reverse-matched against
// the preset catalog: an exact match on frequency, bandwidth, and spreading
// factor pre-selects that preset, anything else lands in custom mode. The
// target device is carried over as a synthetic record with an empty address
// and is not re-resolved until a fresh scan runs. Properties the review
// surface does not expose (enabled flag, CSMA timing) ride along unchanged.
func NewSessionFromConfig(cfg radio.RadioInterfaceConfig, catalog *presets.Catalog) Session {
	s := NewSession()

	dev := radio.DiscoveredDevice{
		Name:     cfg.TargetDevice,
		Address:  "",
		LinkType: cfg.ConnectionMode,
		Paired:   true,
	}
	s.Discovery.Selected = &dev

	if match := catalog.FindMatching(cfg.Frequency, cfg.Bandwidth, cfg.SpreadingFactor); match != nil {
		s.Region.Preset = match
		s.Region.CustomMode = false
	} else {
		s.Region.Preset = nil
		s.Region.CustomMode = true
	}

	s.Review.Fields = ReviewFields{
		Name:            cfg.Name,
		Frequency:       strconv.FormatInt(cfg.Frequency, 10),
		Bandwidth:       strconv.FormatInt(cfg.Bandwidth, 10),
		SpreadingFactor: strconv.Itoa(cfg.SpreadingFactor),
		CodingRate:      strconv.Itoa(cfg.CodingRate),
		TxPower:         strconv.Itoa(cfg.TxPower),
		Mode:            cfg.Mode,
	}

	s.Passthrough = PassthroughState{
		Enabled:         cfg.Enabled,
		CSMASlotTimeMS:  cfg.CSMASlotTimeMS,
		CSMAPersistence: cfg.CSMAPersistence,
	}

	return s
}

// buildConfig assembles the persisted artifact from a validated session.
// Callers must have run verbose validation first; parse errors here would
// mean the gate was bypassed.
func buildConfig(s Session) radio.RadioInterfaceConfig {
	f := s.Review.Fields

	frequency, _ := strconv.ParseInt(strings.TrimSpace(f.Frequency), 10, 64)
	bandwidth, _ := strconv.ParseInt(strings.TrimSpace(f.Bandwidth), 10, 64)
	spreading, _ := strconv.Atoi(strings.TrimSpace(f.SpreadingFactor))
	codingRate, _ := strconv.Atoi(strings.TrimSpace(f.CodingRate))
	txPower, _ := strconv.Atoi(strings.TrimSpace(f.TxPower))

	cfg := radio.RadioInterfaceConfig{
		Name:            strings.TrimSpace(f.Name),
		Enabled:         s.Passthrough.Enabled,
		ConnectionMode:  radio.LinkClassic,
		Frequency:       frequency,
		Bandwidth:       bandwidth,
		TxPower:         txPower,
		SpreadingFactor: spreading,
		CodingRate:      codingRate,
		CSMASlotTimeMS:  s.Passthrough.CSMASlotTimeMS,
		CSMAPersistence: s.Passthrough.CSMAPersistence,
		Mode:            strings.TrimSpace(f.Mode),
	}

	if s.Discovery.Selected != nil {
		cfg.TargetDevice = s.Discovery.Selected.Name
		if s.Discovery.Selected.LinkType == radio.LinkBLE {
			cfg.ConnectionMode = radio.LinkBLE
		}
	} else if s.Discovery.ManualEntry {
		cfg.TargetDevice = strings.TrimSpace(s.Discovery.ManualName)
	}

	return cfg
}
