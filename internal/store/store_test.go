package store

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/rnodetools/rnodectl/internal/radio"
)

type StoreTestSuite struct {
	suite.Suite

	ctx   context.Context
	store *Store
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupTest() {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := Open(filepath.Join(s.T().TempDir(), "interfaces.db"), logger)
	s.Require().NoError(err)

	s.ctx = context.Background()
	s.store = store
}

func (s *StoreTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func sampleConfig(name string) radio.RadioInterfaceConfig {
	return radio.RadioInterfaceConfig{
		Name:            name,
		Enabled:         true,
		TargetDevice:    "RNode A1B2",
		ConnectionMode:  radio.LinkBLE,
		Frequency:       868100000,
		Bandwidth:       125000,
		TxPower:         14,
		SpreadingFactor: 9,
		CodingRate:      5,
		Mode:            radio.ModeFull,
	}
}

func (s *StoreTestSuite) TestInsertAndGet() {
	id, err := s.store.Insert(s.ctx, sampleConfig("Attic"))
	s.Require().NoError(err)
	s.Positive(id)

	saved, err := s.store.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(id, saved.ID)
	s.Equal(sampleConfig("Attic"), saved.Config)
}

func (s *StoreTestSuite) TestGetMissingRecord() {
	_, err := s.store.Get(s.ctx, 42)
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreTestSuite) TestUpdateReplacesRecord() {
	id, err := s.store.Insert(s.ctx, sampleConfig("Attic"))
	s.Require().NoError(err)

	updated := sampleConfig("Roof")
	updated.ConnectionMode = radio.LinkClassic
	updated.Frequency = 915000000
	s.Require().NoError(s.store.Update(s.ctx, id, updated))

	saved, err := s.store.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(updated, saved.Config)
}

func (s *StoreTestSuite) TestUpdateMissingRecord() {
	err := s.store.Update(s.ctx, 42, sampleConfig("Ghost"))
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreTestSuite) TestListOrdersByName() {
	for _, name := range []string{"Roof", "Attic", "Bench"} {
		_, err := s.store.Insert(s.ctx, sampleConfig(name))
		s.Require().NoError(err)
	}

	saved, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(saved, 3)
	s.Equal("Attic", saved[0].Config.Name)
	s.Equal("Bench", saved[1].Config.Name)
	s.Equal("Roof", saved[2].Config.Name)
}

func (s *StoreTestSuite) TestDelete() {
	id, err := s.store.Insert(s.ctx, sampleConfig("Attic"))
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(s.ctx, id))

	_, err = s.store.Get(s.ctx, id)
	s.ErrorIs(err, ErrNotFound)
	s.ErrorIs(s.store.Delete(s.ctx, id), ErrNotFound)
}

func (s *StoreTestSuite) TestCSMAFieldsRoundTripWhenSet() {
	slot, persistence := 20, 200
	cfg := sampleConfig("Attic")
	cfg.CSMASlotTimeMS = &slot
	cfg.CSMAPersistence = &persistence

	id, err := s.store.Insert(s.ctx, cfg)
	s.Require().NoError(err)

	saved, err := s.store.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(saved.Config.CSMASlotTimeMS)
	s.Equal(20, *saved.Config.CSMASlotTimeMS)
	s.Require().NotNil(saved.Config.CSMAPersistence)
	s.Equal(200, *saved.Config.CSMAPersistence)
}
