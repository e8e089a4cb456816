// Package presets holds the static regional frequency-preset catalog:
// named, legally-scoped bundles of LoRa parameters for a geographic area.
package presets

import "sort"

// Preset is one regional parameter bundle. Frequency and Bandwidth are in
// Hz, TxPower in dBm.
type Preset struct {
	Name            string
	Country         string
	Frequency       int64
	Bandwidth       int64
	SpreadingFactor int
	CodingRate      int
	TxPower         int
}

// Catalog is an ordered collection of presets.
type Catalog struct {
	presets []Preset
}

// NewCatalog creates a catalog over the given presets.
func NewCatalog(presets []Preset) *Catalog {
	return &Catalog{presets: presets}
}

// Default returns the built-in regional catalog.
func Default() *Catalog {
	return NewCatalog(builtin)
}

// All returns the presets in catalog order.
func (c *Catalog) All() []Preset {
	out := make([]Preset, len(c.presets))
	copy(out, c.presets)
	return out
}

// FindMatching returns the preset whose frequency, bandwidth, and spreading
// factor exactly equal the given values, or nil when none matches. This is
// the reverse lookup used to re-select a preset when editing a saved
// interface.
func (c *Catalog) FindMatching(frequency, bandwidth int64, spreadingFactor int) *Preset {
	for i := range c.presets {
		p := &c.presets[i]
		if p.Frequency == frequency && p.Bandwidth == bandwidth && p.SpreadingFactor == spreadingFactor {
			match := *p
			return &match
		}
	}
	return nil
}

// ByCountry groups presets by country, each group sorted by name, and
// returns the country keys sorted alphabetically alongside the groups.
func (c *Catalog) ByCountry() ([]string, map[string][]Preset) {
	groups := make(map[string][]Preset)
	for _, p := range c.presets {
		groups[p.Country] = append(groups[p.Country], p)
	}

	countries := make([]string, 0, len(groups))
	for country, group := range groups {
		sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })
		groups[country] = group
		countries = append(countries, country)
	}
	sort.Strings(countries)

	return countries, groups
}

// builtin covers the common ISM band plans RNode hardware ships for.
var builtin = []Preset{
	{Name: "EU 868 MHz (125 kHz, fast)", Country: "Europe", Frequency: 868100000, Bandwidth: 125000, SpreadingFactor: 7, CodingRate: 5, TxPower: 14},
	{Name: "EU 868 MHz (125 kHz, balanced)", Country: "Europe", Frequency: 868100000, Bandwidth: 125000, SpreadingFactor: 9, CodingRate: 5, TxPower: 14},
	{Name: "EU 868 MHz (62.5 kHz, long range)", Country: "Europe", Frequency: 868300000, Bandwidth: 62500, SpreadingFactor: 11, CodingRate: 8, TxPower: 14},
	{Name: "EU 433 MHz (125 kHz)", Country: "Europe", Frequency: 433575000, Bandwidth: 125000, SpreadingFactor: 8, CodingRate: 5, TxPower: 10},
	{Name: "US 915 MHz (250 kHz, fast)", Country: "United States", Frequency: 914875000, Bandwidth: 250000, SpreadingFactor: 7, CodingRate: 5, TxPower: 17},
	{Name: "US 915 MHz (125 kHz, balanced)", Country: "United States", Frequency: 914875000, Bandwidth: 125000, SpreadingFactor: 9, CodingRate: 5, TxPower: 17},
	{Name: "AU 915 MHz (125 kHz)", Country: "Australia", Frequency: 917000000, Bandwidth: 125000, SpreadingFactor: 9, CodingRate: 5, TxPower: 17},
	{Name: "AS 923 MHz (125 kHz)", Country: "Asia-Pacific", Frequency: 923200000, Bandwidth: 125000, SpreadingFactor: 8, CodingRate: 5, TxPower: 16},
	{Name: "IN 866 MHz (125 kHz)", Country: "India", Frequency: 866000000, Bandwidth: 125000, SpreadingFactor: 9, CodingRate: 5, TxPower: 14},
	{Name: "RU 864 MHz (125 kHz)", Country: "Russia", Frequency: 864100000, Bandwidth: 125000, SpreadingFactor: 9, CodingRate: 5, TxPower: 14},
}
