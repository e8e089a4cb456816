package wizard

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/rnodetools/rnodectl/discovery"
	"github.com/rnodetools/rnodectl/internal/presets"
	"github.com/rnodetools/rnodectl/internal/radio"
	"github.com/rnodetools/rnodectl/internal/testutils"
	"github.com/rnodetools/rnodectl/pairing"
)

type WizardTestSuite struct {
	suite.Suite

	scan      *testutils.FakeScanSource
	bonded    *testutils.FakeBondedLister
	cache     *testutils.FakeClassificationStore
	bonder    *testutils.FakeBonder
	persister *testutils.FakePersister
	logger    *logrus.Logger
}

func TestWizardTestSuite(t *testing.T) {
	suite.Run(t, new(WizardTestSuite))
}

func (s *WizardTestSuite) SetupTest() {
	s.scan = &testutils.FakeScanSource{}
	s.bonded = &testutils.FakeBondedLister{}
	s.cache = &testutils.FakeClassificationStore{}
	s.bonder = &testutils.FakeBonder{}
	s.persister = &testutils.FakePersister{}
	s.logger = logrus.New()
	s.logger.SetOutput(io.Discard)
}

func (s *WizardTestSuite) deps() Deps {
	return Deps{
		Reconciler:  discovery.NewReconciler(s.scan, s.bonded, s.cache, s.logger),
		Pairer:      pairing.NewController(s.bonder, s.logger),
		PairOptions: &pairing.Options{PollInterval: time.Millisecond, MaxAttempts: 5},
		Catalog:     presets.Default(),
		Persister:   s.persister,
		Logger:      s.logger,
	}
}

func (s *WizardTestSuite) newWizard() *Wizard {
	w := New(s.deps())
	s.T().Cleanup(w.Close)
	return w
}

// discover runs one discovery pass to completion.
func (s *WizardTestSuite) discover(w *Wizard) {
	w.StartDiscovery(&discovery.Options{ScanDuration: 5 * time.Millisecond, NamePrefix: "RNode"})
	s.waitFor(w, func(sess Session) bool { return !sess.Discovery.Scanning })
}

func (s *WizardTestSuite) waitFor(w *Wizard, cond func(Session) bool) Session {
	require.Eventually(s.T(), func() bool { return cond(w.Snapshot()) },
		2*time.Second, 2*time.Millisecond)
	return w.Snapshot()
}

func (s *WizardTestSuite) TestDiscoveryPopulatesDeviceList() {
	rssi := -58
	s.scan.Sightings = []radio.Sighting{{Name: "RNode A1B2", Address: "AA:BB:CC:DD:EE:01", RSSI: &rssi}}
	s.bonded.Devices = []radio.Sighting{{Name: "RNode C3D4", Address: "AA:BB:CC:DD:EE:02", Bonded: true}}

	w := s.newWizard()
	s.discover(w)

	sess := w.Snapshot()
	s.Require().Len(sess.Discovery.Devices, 2)
	s.Equal("RNode A1B2", sess.Discovery.Devices[0].Name)
	s.Equal(radio.LinkBLE, sess.Discovery.Devices[0].LinkType)
	s.Equal("RNode C3D4", sess.Discovery.Devices[1].Name)
	s.Empty(sess.Discovery.Error)
}

func (s *WizardTestSuite) TestDiscoveryFailureIsDismissable() {
	s.scan.Err = errors.New("adapter powered off")
	s.bonded.Err = errors.New("bluetoothctl missing")

	w := s.newWizard()
	s.discover(w)

	sess := w.Snapshot()
	s.Contains(sess.Discovery.Error, "Device discovery failed")
	s.Empty(sess.Discovery.Devices)

	w.DismissDiscoveryError()
	s.Empty(w.Snapshot().Discovery.Error)
}

func (s *WizardTestSuite) TestPairSelectedMarksDevicePaired() {
	s.scan.Sightings = []radio.Sighting{{Name: "RNode A1B2", Address: "AA:BB:CC:DD:EE:01"}}
	s.bonder.States = []radio.BondState{radio.Bonding, radio.Bonded}

	w := s.newWizard()
	s.discover(w)
	w.SelectDevice("AA:BB:CC:DD:EE:01")

	s.Require().NoError(w.PairSelected())
	sess := s.waitFor(w, func(sess Session) bool { return !sess.Discovery.Pairing })

	s.Empty(sess.Discovery.PairingError)
	s.Require().NotNil(sess.Discovery.Selected)
	s.True(sess.Discovery.Selected.Paired)
	s.True(sess.Discovery.Devices[0].Paired)
	s.Equal([]string{"AA:BB:CC:DD:EE:01"}, s.bonder.Requests())
}

func (s *WizardTestSuite) TestPairSelectedRejectionSurfacesMessage() {
	s.scan.Sightings = []radio.Sighting{{Name: "RNode A1B2", Address: "AA:BB:CC:DD:EE:01"}}
	s.bonder.States = []radio.BondState{radio.Bonding, radio.BondNone}

	w := s.newWizard()
	s.discover(w)
	w.SelectDevice("AA:BB:CC:DD:EE:01")

	s.Require().NoError(w.PairSelected())
	sess := s.waitFor(w, func(sess Session) bool { return !sess.Discovery.Pairing })

	s.Equal("Pairing failed or was cancelled", sess.Discovery.PairingError)
	s.False(sess.Discovery.Devices[0].Paired)

	w.DismissPairingError()
	s.Empty(w.Snapshot().Discovery.PairingError)
}

func (s *WizardTestSuite) TestPairSelectedTimeoutSurfacesMessage() {
	s.scan.Sightings = []radio.Sighting{{Name: "RNode A1B2", Address: "AA:BB:CC:DD:EE:01"}}
	s.bonder.States = []radio.BondState{radio.Bonding}

	w := s.newWizard()
	s.discover(w)
	w.SelectDevice("AA:BB:CC:DD:EE:01")

	s.Require().NoError(w.PairSelected())
	sess := s.waitFor(w, func(sess Session) bool { return !sess.Discovery.Pairing })

	s.Equal("Pairing timed out", sess.Discovery.PairingError)
}

func (s *WizardTestSuite) TestPairSelectedRequiresAResolvedDevice() {
	w := s.newWizard()
	s.Error(w.PairSelected())

	// A hydrated target carries an empty address until a fresh scan
	// resolves it, so pairing is not possible yet.
	edit := NewForEdit(s.deps(), 1, savedConfig())
	s.T().Cleanup(edit.Close)
	s.Error(edit.PairSelected())
	s.Empty(s.bonder.Requests())
}

// walkToReview drives a fresh wizard through manual device entry and custom
// region selection up to the review step.
func (s *WizardTestSuite) walkToReview(w *Wizard) {
	w.SetManualEntry(true, "Bench RNode")
	s.Equal(StepRegionSelection, w.Next().Step)
	w.EnableCustomMode()
	s.Equal(StepReviewConfigure, w.Next().Step)

	w.SetField(FieldName, "Bench interface")
	w.SetField(FieldFrequency, "915000000")
	w.SetField(FieldBandwidth, "125000")
	w.SetField(FieldSpreadingFactor, "8")
	w.SetField(FieldCodingRate, "5")
	w.SetField(FieldTxPower, "17")
}

func (s *WizardTestSuite) TestSaveInsertsNewInterface() {
	w := s.newWizard()
	s.walkToReview(w)

	s.Require().NoError(w.Save())

	sess := w.Snapshot()
	s.True(sess.Review.Saved)
	s.False(sess.Review.Saving)
	s.Empty(sess.Review.SaveError)

	s.Require().Len(s.persister.Inserted, 1)
	cfg := s.persister.Inserted[0]
	s.Equal("Bench interface", cfg.Name)
	s.Equal("Bench RNode", cfg.TargetDevice)
	s.Equal(radio.LinkClassic, cfg.ConnectionMode)
	s.Equal(int64(915000000), cfg.Frequency)
}

func (s *WizardTestSuite) TestSaveRejectsInvalidFields() {
	w := s.newWizard()
	s.walkToReview(w)
	w.SetField(FieldFrequency, "50000000")

	s.Error(w.Save())

	sess := w.Snapshot()
	s.Equal("Frequency must be 137-3000 MHz", sess.Review.Errors.Frequency)
	s.False(sess.Review.Saved)
	s.Empty(s.persister.Inserted)
}

func (s *WizardTestSuite) TestSaveFailureIsRetryable() {
	s.persister.InsertErr = errors.New("disk full")

	w := s.newWizard()
	s.walkToReview(w)

	s.Error(w.Save())
	sess := w.Snapshot()
	s.Equal("Failed to save interface", sess.Review.SaveError)
	s.False(sess.Review.Saved)
	s.False(sess.Review.Saving)

	s.persister.InsertErr = nil
	s.Require().NoError(w.Save())
	sess = w.Snapshot()
	s.True(sess.Review.Saved)
	s.Empty(sess.Review.SaveError)
}

func (s *WizardTestSuite) TestSaveUpdatesWhenEditing() {
	w := NewForEdit(s.deps(), 7, savedConfig())
	s.T().Cleanup(w.Close)

	// The hydrated session satisfies every step predicate already.
	s.Equal(StepRegionSelection, w.Next().Step)
	s.Equal(StepReviewConfigure, w.Next().Step)

	w.SetField(FieldName, "Renamed interface")
	s.Require().NoError(w.Save())

	s.Empty(s.persister.Inserted)
	s.Require().Contains(s.persister.Updated, int64(7))
	updated := s.persister.Updated[7]
	s.Equal("Renamed interface", updated.Name)
	s.Equal("RNode A1B2", updated.TargetDevice)
	s.Equal(radio.LinkBLE, updated.ConnectionMode)
}

func (s *WizardTestSuite) TestSaveRequiresReviewStep() {
	w := s.newWizard()
	w.SetManualEntry(true, "Bench RNode")

	s.Error(w.Save())
	s.Empty(s.persister.Inserted)
	s.False(w.Snapshot().Review.Saved)
}

func (s *WizardTestSuite) TestEditKeepsDisabledStateAndCSMAParams() {
	slot, persistence := 25, 200
	cfg := savedConfig()
	cfg.Enabled = false
	cfg.CSMASlotTimeMS = &slot
	cfg.CSMAPersistence = &persistence

	w := NewForEdit(s.deps(), 7, cfg)
	s.T().Cleanup(w.Close)
	s.Equal(StepRegionSelection, w.Next().Step)
	s.Equal(StepReviewConfigure, w.Next().Step)

	s.Require().NoError(w.Save())

	s.Require().Contains(s.persister.Updated, int64(7))
	updated := s.persister.Updated[7]
	s.False(updated.Enabled)
	s.Require().NotNil(updated.CSMASlotTimeMS)
	s.Equal(25, *updated.CSMASlotTimeMS)
	s.Require().NotNil(updated.CSMAPersistence)
	s.Equal(200, *updated.CSMAPersistence)
}

func (s *WizardTestSuite) TestSnapshotsStreamMutations() {
	w := s.newWizard()

	w.SetManualEntry(true, "Bench RNode")

	select {
	case sess := <-w.Snapshots():
		s.True(sess.Discovery.ManualEntry)
	case <-time.After(time.Second):
		s.Fail("no snapshot published")
	}
}
