package radio

import (
	"errors"
	"fmt"
)

// DiscoverySource identifies which discovery producer failed.
type DiscoverySource string

const (
	SourceScan       DiscoverySource = "scan"
	SourceBondedEnum DiscoverySource = "bonded_enumeration"
)

// DiscoveryError wraps a failure from one of the discovery producers.
// Discovery failures are non-fatal: the merge still proceeds with whatever
// the remaining sources yield.
type DiscoveryError struct {
	Source DiscoverySource
	Err    error
}

// Error implements the error interface.
func (e *DiscoveryError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s failed: %v", e.Source, e.Err)
}

// Unwrap exposes the underlying platform error.
func (e *DiscoveryError) Unwrap() error { return e.Err }

// Is allows errors.Is to compare DiscoveryError values by Source.
func (e *DiscoveryError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*DiscoveryError)
	if !ok {
		return false
	}
	return e.Source == t.Source
}

// Predefined sentinel errors for discovery source failures.
var (
	ErrScanFailed        = &DiscoveryError{Source: SourceScan}
	ErrEnumerationFailed = &DiscoveryError{Source: SourceBondedEnum}
)

// Operation errors.
var (
	// ErrScanUnavailable indicates the platform radio cannot scan at all
	// (missing permission or hardware).
	ErrScanUnavailable = errors.New("scan unavailable")

	// ErrUnknownClassification rejects an attempt to persist an Unknown
	// link type; only definitive classifications are cached.
	ErrUnknownClassification = errors.New("unknown link type is not persistable")

	// ErrPairingInFlight rejects a second bond request while one is
	// already in progress for the session.
	ErrPairingInFlight = errors.New("pairing already in progress")
)
