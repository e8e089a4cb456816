package store

import (
	"github.com/uptrace/bun"

	"github.com/rnodetools/rnodectl/internal/radio"
)

// RadioInterfaceModel maps the radio_interfaces table for Bun queries.
type RadioInterfaceModel struct {
	bun.BaseModel `bun:"table:radio_interfaces"`

	ID              int64  `bun:"id,pk,autoincrement"`
	Name            string `bun:"name,notnull"`
	Enabled         bool   `bun:"enabled,notnull"`
	TargetDevice    string `bun:"target_device,notnull"`
	ConnectionMode  string `bun:"connection_mode,notnull"`
	Frequency       int64  `bun:"frequency,notnull"`
	Bandwidth       int64  `bun:"bandwidth,notnull"`
	TxPower         int    `bun:"tx_power,notnull"`
	SpreadingFactor int    `bun:"spreading_factor,notnull"`
	CodingRate      int    `bun:"coding_rate,notnull"`
	CSMASlotTimeMS  *int   `bun:"csma_slot_time_ms"`
	CSMAPersistence *int   `bun:"csma_persistence"`
	Mode            string `bun:"mode,notnull"`
}

func toModel(cfg radio.RadioInterfaceConfig) *RadioInterfaceModel {
	return &RadioInterfaceModel{
		Name:            cfg.Name,
		Enabled:         cfg.Enabled,
		TargetDevice:    cfg.TargetDevice,
		ConnectionMode:  cfg.ConnectionMode.String(),
		Frequency:       cfg.Frequency,
		Bandwidth:       cfg.Bandwidth,
		TxPower:         cfg.TxPower,
		SpreadingFactor: cfg.SpreadingFactor,
		CodingRate:      cfg.CodingRate,
		CSMASlotTimeMS:  cfg.CSMASlotTimeMS,
		CSMAPersistence: cfg.CSMAPersistence,
		Mode:            cfg.Mode,
	}
}

func fromModel(m *RadioInterfaceModel) (radio.RadioInterfaceConfig, error) {
	mode, err := radio.ParseLinkType(m.ConnectionMode)
	if err != nil {
		return radio.RadioInterfaceConfig{}, err
	}
	return radio.RadioInterfaceConfig{
		Name:            m.Name,
		Enabled:         m.Enabled,
		TargetDevice:    m.TargetDevice,
		ConnectionMode:  mode,
		Frequency:       m.Frequency,
		Bandwidth:       m.Bandwidth,
		TxPower:         m.TxPower,
		SpreadingFactor: m.SpreadingFactor,
		CodingRate:      m.CodingRate,
		CSMASlotTimeMS:  m.CSMASlotTimeMS,
		CSMAPersistence: m.CSMAPersistence,
		Mode:            m.Mode,
	}, nil
}
