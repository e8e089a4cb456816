package wizard

import (
	"strconv"
	"strings"

	"github.com/rnodetools/rnodectl/internal/presets"
	"github.com/rnodetools/rnodectl/internal/radio"
)

// ReviewFields holds the seven review-step parameters as entered, all as
// text until validation.
type ReviewFields struct {
	Name            string
	Frequency       string
	Bandwidth       string
	SpreadingFactor string
	CodingRate      string
	TxPower         string
	Mode            string
}

// FieldErrors carries one message per invalid review field. Empty string
// means valid.
type FieldErrors struct {
	Name            string
	Frequency       string
	Bandwidth       string
	SpreadingFactor string
	CodingRate      string
	TxPower         string
	Mode            string
}

// Empty reports whether no field carries an error.
func (e FieldErrors) Empty() bool {
	return e == FieldErrors{}
}

// Inclusive parameter ranges accepted by RNode hardware.
const (
	MinFrequency  = 137_000_000   // Hz
	MaxFrequency  = 3_000_000_000 // Hz
	MinBandwidth  = 7_800         // Hz
	MaxBandwidth  = 1_625_000     // Hz
	MinSpreading  = 5
	MaxSpreading  = 12
	MinCodingRate = 5
	MaxCodingRate = 8
	MinTxPower    = 0  // dBm
	MaxTxPower    = 22 // dBm
)

// User-facing validation messages.
const (
	msgNameBlank  = "Name must not be empty"
	msgFrequency  = "Frequency must be 137-3000 MHz"
	msgBandwidth  = "Bandwidth must be 7.8-1625 kHz"
	msgSpreading  = "Spreading factor must be 5-12"
	msgCodingRate = "Coding rate must be 5-8"
	msgTxPower    = "TX power must be 0-22 dBm"
	msgMode       = "Mode must be one of: full, gateway, access_point, roaming, boundary"
	msgNotANumber = " must be a number"
)

// Check runs the shared predicate set over all seven fields and returns the
// per-field messages plus overall validity. Silent validation discards the
// messages; verbose validation stores them into the session. Both paths run
// this one function so the range logic cannot diverge.
func Check(f ReviewFields) (FieldErrors, bool) {
	var errs FieldErrors

	if strings.TrimSpace(f.Name) == "" {
		errs.Name = msgNameBlank
	}
	errs.Frequency = checkInt64Range("Frequency", f.Frequency, MinFrequency, MaxFrequency, msgFrequency)
	errs.Bandwidth = checkInt64Range("Bandwidth", f.Bandwidth, MinBandwidth, MaxBandwidth, msgBandwidth)
	errs.SpreadingFactor = checkIntRange("Spreading factor", f.SpreadingFactor, MinSpreading, MaxSpreading, msgSpreading)
	errs.CodingRate = checkIntRange("Coding rate", f.CodingRate, MinCodingRate, MaxCodingRate, msgCodingRate)
	errs.TxPower = checkIntRange("TX power", f.TxPower, MinTxPower, MaxTxPower, msgTxPower)
	errs.Mode = checkMode(f.Mode)

	return errs, errs.Empty()
}

func checkInt64Range(field, value string, min, max int64, rangeMsg string) string {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return field + msgNotANumber
	}
	if n < min || n > max {
		return rangeMsg
	}
	return ""
}

func checkIntRange(field, value string, min, max int, rangeMsg string) string {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return field + msgNotANumber
	}
	if n < min || n > max {
		return rangeMsg
	}
	return ""
}

func checkMode(mode string) string {
	m := strings.TrimSpace(mode)
	for _, valid := range radio.ValidModes {
		if m == valid {
			return ""
		}
	}
	return msgMode
}

// withPreset overwrites the five radio fields with the preset values,
// leaving name and mode untouched.
func (f ReviewFields) withPreset(p presets.Preset) ReviewFields {
	f.Frequency = strconv.FormatInt(p.Frequency, 10)
	f.Bandwidth = strconv.FormatInt(p.Bandwidth, 10)
	f.SpreadingFactor = strconv.Itoa(p.SpreadingFactor)
	f.CodingRate = strconv.Itoa(p.CodingRate)
	f.TxPower = strconv.Itoa(p.TxPower)
	return f
}

// Field identifies one editable review field.
type Field int

const (
	FieldName Field = iota
	FieldFrequency
	FieldBandwidth
	FieldSpreadingFactor
	FieldCodingRate
	FieldTxPower
	FieldMode
)

// setField updates one review field and clears only that field's error.
// Editing a field never touches the preset selection state.
func setField(field Field, value string) func(Session) Session {
	return func(s Session) Session {
		switch field {
		case FieldName:
			s.Review.Fields.Name = value
			s.Review.Errors.Name = ""
		case FieldFrequency:
			s.Review.Fields.Frequency = value
			s.Review.Errors.Frequency = ""
		case FieldBandwidth:
			s.Review.Fields.Bandwidth = value
			s.Review.Errors.Bandwidth = ""
		case FieldSpreadingFactor:
			s.Review.Fields.SpreadingFactor = value
			s.Review.Errors.SpreadingFactor = ""
		case FieldCodingRate:
			s.Review.Fields.CodingRate = value
			s.Review.Errors.CodingRate = ""
		case FieldTxPower:
			s.Review.Fields.TxPower = value
			s.Review.Errors.TxPower = ""
		case FieldMode:
			s.Review.Fields.Mode = value
			s.Review.Errors.Mode = ""
		}
		return s
	}
}

// clearRadioErrors drops errors on the five preset-controlled fields,
// keeping any name or mode error.
func clearRadioErrors(e FieldErrors) FieldErrors {
	e.Frequency = ""
	e.Bandwidth = ""
	e.SpreadingFactor = ""
	e.CodingRate = ""
	e.TxPower = ""
	return e
}
