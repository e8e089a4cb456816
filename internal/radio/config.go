package radio

// RadioInterfaceConfig is the immutable persisted artifact a finished
// wizard session produces: one network-stack interface definition bound to
// a physical radio.
type RadioInterfaceConfig struct {
	Name         string `json:"name" yaml:"name"`
	Enabled      bool   `json:"enabled" yaml:"enabled"`
	TargetDevice string `json:"targetDevice" yaml:"target_device"`

	// ConnectionMode is LinkClassic or LinkBLE; an interface is never
	// persisted with an unresolved link type.
	ConnectionMode LinkType `json:"connectionMode" yaml:"connection_mode"`

	Frequency       int64 `json:"frequency" yaml:"frequency"` // Hz
	Bandwidth       int64 `json:"bandwidth" yaml:"bandwidth"` // Hz
	TxPower         int   `json:"txPower" yaml:"tx_power"`    // dBm
	SpreadingFactor int   `json:"spreadingFactor" yaml:"spreading_factor"`
	CodingRate      int   `json:"codingRate" yaml:"coding_rate"`

	// Optional channel-access timing parameters.
	CSMASlotTimeMS  *int `json:"csmaSlotTimeMs,omitempty" yaml:"csma_slot_time_ms,omitempty"`
	CSMAPersistence *int `json:"csmaPersistence,omitempty" yaml:"csma_persistence,omitempty"`

	// Mode is the interface operating mode within the network stack.
	Mode string `json:"mode" yaml:"mode"`
}

// Interface operating modes.
const (
	ModeFull        = "full"
	ModeGateway     = "gateway"
	ModeAccessPoint = "access_point"
	ModeRoaming     = "roaming"
	ModeBoundary    = "boundary"
)

// ValidModes lists the accepted operating mode strings.
var ValidModes = []string{ModeFull, ModeGateway, ModeAccessPoint, ModeRoaming, ModeBoundary}
