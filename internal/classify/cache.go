// Package classify maintains the durable device classification cache: a
// small address -> link type map that survives across wizard sessions and
// resolves the Classic/BLE ambiguity of bonded-only devices.
package classify

import (
	"fmt"
	"sync"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"

	"github.com/rnodetools/rnodectl/internal/radio"
)

// Persistence is the durable backing of the cache. Load returns the full
// stored map; Save replaces it atomically.
type Persistence interface {
	Load() (map[string]radio.LinkType, error)
	Save(map[string]radio.LinkType) error
}

// Cache implements radio.ClassificationStore with a concurrent in-memory
// map and write-through persistence. Entries never expire, and an Unknown
// classification is never stored.
type Cache struct {
	entries *hashmap.Map[string, radio.LinkType]
	persist Persistence
	logger  *logrus.Logger

	// saveMu serializes the read-snapshot-then-save sequence so two
	// concurrent Sets cannot persist a stale view of each other.
	saveMu sync.Mutex
}

// Open creates a cache backed by p, loading any previously stored entries.
// A nil logger falls back to a default logrus instance.
func Open(p Persistence, logger *logrus.Logger) (*Cache, error) {
	if logger == nil {
		logger = logrus.New()
	}

	c := &Cache{
		entries: hashmap.New[string, radio.LinkType](),
		persist: p,
		logger:  logger,
	}

	stored, err := p.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load classification cache: %w", err)
	}
	for addr, t := range stored {
		if t == radio.LinkUnknown {
			// Tolerate a hand-edited or corrupted blob.
			logger.WithField("address", addr).Warn("Dropping unknown classification from cache")
			continue
		}
		c.entries.Set(addr, t)
	}

	logger.WithField("entry_count", c.entries.Len()).Debug("Classification cache loaded")
	return c, nil
}

// Get returns the cached classification for address, if one exists.
func (c *Cache) Get(address string) (radio.LinkType, bool) {
	return c.entries.Get(address)
}

// Set records a definitive classification and writes it through to durable
// storage. Setting LinkUnknown is an error and leaves the cache untouched.
func (c *Cache) Set(address string, t radio.LinkType) error {
	if t == radio.LinkUnknown {
		return radio.ErrUnknownClassification
	}

	prev, had := c.entries.Get(address)
	if had && prev == t {
		return nil // already recorded, no persistence churn
	}
	c.entries.Set(address, t)

	c.logger.WithFields(logrus.Fields{
		"address":   address,
		"link_type": t.String(),
	}).Debug("Classified device")

	return c.flush()
}

// Len returns the number of cached classifications.
func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) flush() error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	snapshot := make(map[string]radio.LinkType, c.entries.Len())
	c.entries.Range(func(addr string, t radio.LinkType) bool {
		snapshot[addr] = t
		return true
	})

	if err := c.persist.Save(snapshot); err != nil {
		return fmt.Errorf("failed to persist classification cache: %w", err)
	}
	return nil
}
