package testutils

import "github.com/rnodetools/rnodectl/internal/radio"

// SightingBuilder builds radio.Sighting fixtures fluently.
type SightingBuilder struct {
	sighting radio.Sighting
}

// NewSightingBuilder starts a builder with an RNode-style default name.
func NewSightingBuilder() *SightingBuilder {
	return &SightingBuilder{sighting: radio.Sighting{Name: "RNode 0000"}}
}

// WithName sets the advertised name.
func (b *SightingBuilder) WithName(name string) *SightingBuilder {
	b.sighting.Name = name
	return b
}

// WithAddress sets the device address.
func (b *SightingBuilder) WithAddress(address string) *SightingBuilder {
	b.sighting.Address = address
	return b
}

// WithRSSI sets the signal strength.
func (b *SightingBuilder) WithRSSI(rssi int) *SightingBuilder {
	b.sighting.RSSI = &rssi
	return b
}

// WithBonded marks the sighting as platform-bonded.
func (b *SightingBuilder) WithBonded(bonded bool) *SightingBuilder {
	b.sighting.Bonded = bonded
	return b
}

// Build returns the finished sighting.
func (b *SightingBuilder) Build() radio.Sighting {
	return b.sighting
}
