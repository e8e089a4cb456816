// Package testutils provides fake capability implementations and fixture
// builders shared by the engine test suites.
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/rnodetools/rnodectl/internal/radio"
)

// FakeScanSource replays a fixed set of sightings through the handler, or
// fails with Err when set.
type FakeScanSource struct {
	Sightings []radio.Sighting
	Err       error
}

// Scan implements radio.ScanSource.
func (f *FakeScanSource) Scan(_ context.Context, _ time.Duration, handler func(radio.Sighting)) error {
	if f.Err != nil {
		return f.Err
	}
	for _, s := range f.Sightings {
		handler(s)
	}
	return nil
}

// FakeBondedLister returns a fixed enumeration, or fails with Err when set.
type FakeBondedLister struct {
	Devices []radio.Sighting
	Err     error
}

// BondedDevices implements radio.BondedLister.
func (f *FakeBondedLister) BondedDevices() ([]radio.Sighting, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Devices, nil
}

// FakeBonder scripts the bond handshake: RequestBond returns RequestErr,
// and successive BondState calls walk the States sequence, holding the last
// state once exhausted.
type FakeBonder struct {
	RequestErr error
	States     []radio.BondState

	mu       sync.Mutex
	requests []string
	polls    int
}

// RequestBond implements radio.Bonder.
func (f *FakeBonder) RequestBond(_ context.Context, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, address)
	return f.RequestErr
}

// BondState implements radio.Bonder.
func (f *FakeBonder) BondState(string) (radio.BondState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.States) == 0 {
		return radio.BondNone, nil
	}
	i := f.polls
	if i >= len(f.States) {
		i = len(f.States) - 1
	}
	f.polls++
	return f.States[i], nil
}

// Requests returns the addresses bond requests were issued for.
func (f *FakeBonder) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	copy(out, f.requests)
	return out
}

// Polls returns the number of BondState reads issued.
func (f *FakeBonder) Polls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

// FakePersister records inserted and updated configs in memory.
type FakePersister struct {
	InsertErr error
	UpdateErr error

	mu       sync.Mutex
	nextID   int64
	Inserted []radio.RadioInterfaceConfig
	Updated  map[int64]radio.RadioInterfaceConfig
}

// Insert implements the ConfigPersister contract.
func (f *FakePersister) Insert(_ context.Context, cfg radio.RadioInterfaceConfig) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.InsertErr != nil {
		return 0, f.InsertErr
	}
	f.nextID++
	f.Inserted = append(f.Inserted, cfg)
	return f.nextID, nil
}

// Update implements the ConfigPersister contract.
func (f *FakePersister) Update(_ context.Context, id int64, cfg radio.RadioInterfaceConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	if f.Updated == nil {
		f.Updated = make(map[int64]radio.RadioInterfaceConfig)
	}
	f.Updated[id] = cfg
	return nil
}

// FakeClassificationStore is an in-memory radio.ClassificationStore.
type FakeClassificationStore struct {
	mu      sync.Mutex
	entries map[string]radio.LinkType
	SetErr  error
}

// Get implements radio.ClassificationStore.
func (f *FakeClassificationStore) Get(address string) (radio.LinkType, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.entries[address]
	return t, ok
}

// Set implements radio.ClassificationStore.
func (f *FakeClassificationStore) Set(address string, t radio.LinkType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	if t == radio.LinkUnknown {
		return radio.ErrUnknownClassification
	}
	if f.entries == nil {
		f.entries = make(map[string]radio.LinkType)
	}
	f.entries[address] = t
	return nil
}

// Seed pre-populates a classification without the Unknown guard.
func (f *FakeClassificationStore) Seed(address string, t radio.LinkType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entries == nil {
		f.entries = make(map[string]radio.LinkType)
	}
	f.entries[address] = t
}
