// Package radio defines the core device model and the platform capability
// interfaces the discovery, pairing, and wizard engines are built against.
// Only the adapters implementing these interfaces are platform-specific.
package radio

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// LinkType is the physical connection technology a radio uses. A given
// device keeps one link type for its lifetime by hardware design.
type LinkType int

const (
	LinkUnknown LinkType = iota
	LinkClassic
	LinkBLE
)

// String returns the wire/display form of the link type.
func (t LinkType) String() string {
	switch t {
	case LinkClassic:
		return "classic"
	case LinkBLE:
		return "ble"
	default:
		return "unknown"
	}
}

// ParseLinkType parses the wire form produced by String.
func ParseLinkType(s string) (LinkType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classic":
		return LinkClassic, nil
	case "ble":
		return LinkBLE, nil
	case "unknown", "":
		return LinkUnknown, nil
	default:
		return LinkUnknown, fmt.Errorf("invalid link type: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so LinkType round-trips
// through JSON and YAML as "classic"/"ble"/"unknown".
func (t LinkType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *LinkType) UnmarshalText(b []byte) error {
	parsed, err := ParseLinkType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// BondState is the platform-level pairing state of a device. A bond request
// transitions through Bonding before reaching a terminal Bonded or BondNone.
type BondState int

const (
	BondNone BondState = iota
	Bonding
	Bonded
)

func (s BondState) String() string {
	switch s {
	case Bonding:
		return "bonding"
	case Bonded:
		return "bonded"
	default:
		return "none"
	}
}

// Sighting is a single raw observation of a device, either from the active
// scan or from the bonded-device enumeration.
type Sighting struct {
	Name    string
	Address string
	RSSI    *int // nil when the source does not report signal strength
	Bonded  bool
}

// DiscoveredDevice is one reconciled device record. Identity is Address;
// two records with the same address describe the same device.
type DiscoveredDevice struct {
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	LinkType LinkType `json:"linkType"`
	RSSI     *int     `json:"rssi,omitempty"`
	Paired   bool     `json:"paired"`
}

// ScanSource performs a time-boxed active scan, invoking handler for every
// sighting that matches the target service signature. It returns after the
// duration elapses, ctx is cancelled, or the platform reports a failure.
type ScanSource interface {
	Scan(ctx context.Context, duration time.Duration, handler func(Sighting)) error
}

// BondedLister enumerates previously-bonded devices. The enumeration is
// synchronous and may fail with a permission error.
type BondedLister interface {
	BondedDevices() ([]Sighting, error)
}

// Bonder exposes the platform bond primitives: a one-shot bond request and
// a queryable bond state.
type Bonder interface {
	RequestBond(ctx context.Context, address string) error
	BondState(address string) (BondState, error)
}

// ClassificationStore maps a device address to its previously-determined
// link type. Implementations never hold an Unknown classification.
type ClassificationStore interface {
	Get(address string) (LinkType, bool)
	Set(address string, t LinkType) error
}
