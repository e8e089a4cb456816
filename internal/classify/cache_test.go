package classify

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rnodetools/rnodectl/internal/radio"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestCacheRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	cache, err := Open(store, quietLogger())
	require.NoError(t, err)

	_, ok := cache.Get("AA:BB:CC:DD:EE:01")
	assert.False(t, ok)

	require.NoError(t, cache.Set("AA:BB:CC:DD:EE:01", radio.LinkBLE))
	require.NoError(t, cache.Set("AA:BB:CC:DD:EE:02", radio.LinkClassic))

	got, ok := cache.Get("AA:BB:CC:DD:EE:01")
	assert.True(t, ok)
	assert.Equal(t, radio.LinkBLE, got)
	assert.Equal(t, 2, cache.Len())
}

func TestCacheRejectsUnknownClassification(t *testing.T) {
	cache, err := Open(NewMemoryStore(), quietLogger())
	require.NoError(t, err)

	err = cache.Set("AA:BB:CC:DD:EE:01", radio.LinkUnknown)
	assert.ErrorIs(t, err, radio.ErrUnknownClassification)
	assert.Equal(t, 0, cache.Len())
}

func TestCacheOverridesStaleEntry(t *testing.T) {
	cache, err := Open(NewMemoryStore(), quietLogger())
	require.NoError(t, err)

	require.NoError(t, cache.Set("AA:BB:CC:DD:EE:01", radio.LinkClassic))
	require.NoError(t, cache.Set("AA:BB:CC:DD:EE:01", radio.LinkBLE))

	got, ok := cache.Get("AA:BB:CC:DD:EE:01")
	assert.True(t, ok)
	assert.Equal(t, radio.LinkBLE, got)
	assert.Equal(t, 1, cache.Len())
}

func TestCacheSurvivesReopen(t *testing.T) {
	store := NewMemoryStore()

	cache, err := Open(store, quietLogger())
	require.NoError(t, err)
	require.NoError(t, cache.Set("AA:BB:CC:DD:EE:01", radio.LinkBLE))

	reopened, err := Open(store, quietLogger())
	require.NoError(t, err)

	got, ok := reopened.Get("AA:BB:CC:DD:EE:01")
	assert.True(t, ok)
	assert.Equal(t, radio.LinkBLE, got)
}

func TestOpenDropsStoredUnknownEntries(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(map[string]radio.LinkType{
		"AA:BB:CC:DD:EE:01": radio.LinkBLE,
		"AA:BB:CC:DD:EE:02": radio.LinkUnknown,
	}))

	cache, err := Open(store, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 1, cache.Len())
	_, ok := cache.Get("AA:BB:CC:DD:EE:02")
	assert.False(t, ok)
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "classifications.json")

	cache, err := Open(NewFileStore(path), quietLogger())
	require.NoError(t, err)
	require.NoError(t, cache.Set("AA:BB:CC:DD:EE:01", radio.LinkClassic))

	reopened, err := Open(NewFileStore(path), quietLogger())
	require.NoError(t, err)

	got, ok := reopened.Get("AA:BB:CC:DD:EE:01")
	assert.True(t, ok)
	assert.Equal(t, radio.LinkClassic, got)
}

func TestFileStoreMissingFileIsEmptyCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")

	cache, err := Open(NewFileStore(path), quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Len())
}
