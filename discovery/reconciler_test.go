package discovery_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	suitelib "github.com/stretchr/testify/suite"

	"github.com/rnodetools/rnodectl/discovery"
	"github.com/rnodetools/rnodectl/internal/radio"
	"github.com/rnodetools/rnodectl/internal/testutils"
)

type ReconcilerTestSuite struct {
	suitelib.Suite

	scan   *testutils.FakeScanSource
	bonded *testutils.FakeBondedLister
	cache  *testutils.FakeClassificationStore
}

func (suite *ReconcilerTestSuite) SetupTest() {
	suite.scan = &testutils.FakeScanSource{}
	suite.bonded = &testutils.FakeBondedLister{}
	suite.cache = &testutils.FakeClassificationStore{}
}

func (suite *ReconcilerTestSuite) discover() []radio.DiscoveredDevice {
	r := discovery.NewReconciler(suite.scan, suite.bonded, suite.cache, nil)
	devices, err := r.Discover(context.Background(), fastOptions())
	require.NoError(suite.T(), err)
	return devices
}

func fastOptions() *discovery.Options {
	return &discovery.Options{ScanDuration: 10 * time.Millisecond, NamePrefix: "RNode"}
}

func (suite *ReconcilerTestSuite) TestScanSightingIsAuthoritative() {
	suite.scan.Sightings = []radio.Sighting{
		testutils.NewSightingBuilder().
			WithName("RNode 1234").
			WithAddress("AA:BB:CC:DD:EE:FF").
			WithRSSI(-60).
			Build(),
	}
	// Stale history says classic; direct detection must override it.
	suite.cache.Seed("AA:BB:CC:DD:EE:FF", radio.LinkClassic)

	devices := suite.discover()

	suite.Require().Len(devices, 1)
	suite.Equal(radio.LinkBLE, devices[0].LinkType)
	suite.Require().NotNil(devices[0].RSSI)
	suite.Equal(-60, *devices[0].RSSI)

	cached, ok := suite.cache.Get("AA:BB:CC:DD:EE:FF")
	suite.True(ok)
	suite.Equal(radio.LinkBLE, cached)
}

func (suite *ReconcilerTestSuite) TestScanAndBondedMergeToOneRecord() {
	suite.scan.Sightings = []radio.Sighting{
		testutils.NewSightingBuilder().
			WithName("RNode 1234").
			WithAddress("AA:BB:CC:DD:EE:FF").
			WithRSSI(-60).
			Build(),
	}
	suite.bonded.Devices = []radio.Sighting{
		testutils.NewSightingBuilder().
			WithName("RNode 1234").
			WithAddress("AA:BB:CC:DD:EE:FF").
			WithBonded(true).
			Build(),
	}

	devices := suite.discover()

	suite.Require().Len(devices, 1)
	suite.Equal(radio.LinkBLE, devices[0].LinkType)
	suite.True(devices[0].Paired)
	suite.Require().NotNil(devices[0].RSSI)
	suite.Equal(-60, *devices[0].RSSI)
}

func (suite *ReconcilerTestSuite) TestBondedOnlyDeviceWithoutHistoryIsUnknown() {
	suite.bonded.Devices = []radio.Sighting{
		testutils.NewSightingBuilder().
			WithName("RNode 9999").
			WithAddress("11:22:33:44:55:66").
			WithBonded(true).
			Build(),
	}

	devices := suite.discover()

	suite.Require().Len(devices, 1)
	suite.Equal(radio.LinkUnknown, devices[0].LinkType)
	suite.True(devices[0].Paired)
}

func (suite *ReconcilerTestSuite) TestBondedOnlyDeviceTakesCachedClassification() {
	suite.cache.Seed("11:22:33:44:55:66", radio.LinkClassic)
	suite.bonded.Devices = []radio.Sighting{
		testutils.NewSightingBuilder().
			WithName("RNode 9999").
			WithAddress("11:22:33:44:55:66").
			WithBonded(true).
			Build(),
	}

	devices := suite.discover()

	suite.Require().Len(devices, 1)
	suite.Equal(radio.LinkClassic, devices[0].LinkType)
}

func (suite *ReconcilerTestSuite) TestNoDuplicateAddresses() {
	suite.scan.Sightings = []radio.Sighting{
		testutils.NewSightingBuilder().WithName("RNode A").WithAddress("AA:AA:AA:AA:AA:AA").WithRSSI(-50).Build(),
		testutils.NewSightingBuilder().WithName("RNode A").WithAddress("AA:AA:AA:AA:AA:AA").WithRSSI(-48).Build(),
	}
	suite.bonded.Devices = []radio.Sighting{
		testutils.NewSightingBuilder().WithName("RNode A").WithAddress("AA:AA:AA:AA:AA:AA").WithBonded(true).Build(),
	}

	devices := suite.discover()

	suite.Require().Len(devices, 1)
	suite.Require().NotNil(devices[0].RSSI)
	suite.Equal(-48, *devices[0].RSSI) // later sighting wins
}

func (suite *ReconcilerTestSuite) TestInsertionOrderScanFirstThenBondedOnly() {
	suite.scan.Sightings = []radio.Sighting{
		testutils.NewSightingBuilder().WithName("RNode B").WithAddress("BB:BB:BB:BB:BB:BB").Build(),
	}
	suite.bonded.Devices = []radio.Sighting{
		testutils.NewSightingBuilder().WithName("RNode C").WithAddress("CC:CC:CC:CC:CC:CC").WithBonded(true).Build(),
		testutils.NewSightingBuilder().WithName("RNode B").WithAddress("BB:BB:BB:BB:BB:BB").WithBonded(true).Build(),
	}

	devices := suite.discover()

	suite.Require().Len(devices, 2)
	suite.Equal("BB:BB:BB:BB:BB:BB", devices[0].Address)
	suite.Equal("CC:CC:CC:CC:CC:CC", devices[1].Address)
}

func (suite *ReconcilerTestSuite) TestNameFilterExcludesOtherDevices() {
	suite.scan.Sightings = []radio.Sighting{
		testutils.NewSightingBuilder().WithName("Fitness Tracker").WithAddress("DD:DD:DD:DD:DD:DD").Build(),
		testutils.NewSightingBuilder().WithName("RNode 7777").WithAddress("EE:EE:EE:EE:EE:EE").Build(),
	}

	devices := suite.discover()

	suite.Require().Len(devices, 1)
	suite.Equal("RNode 7777", devices[0].Name)
}

func (suite *ReconcilerTestSuite) TestScanFailureStillEnumeratesBondedDevices() {
	suite.scan.Err = radio.ErrScanUnavailable
	suite.bonded.Devices = []radio.Sighting{
		testutils.NewSightingBuilder().WithName("RNode 9999").WithAddress("11:22:33:44:55:66").WithBonded(true).Build(),
	}

	r := discovery.NewReconciler(suite.scan, suite.bonded, suite.cache, nil)
	devices, err := r.Discover(context.Background(), fastOptions())

	suite.Require().Error(err)
	suite.True(errors.Is(err, radio.ErrScanFailed))
	suite.False(errors.Is(err, radio.ErrEnumerationFailed))

	suite.Require().Len(devices, 1)
	suite.Equal(radio.LinkUnknown, devices[0].LinkType)
}

func (suite *ReconcilerTestSuite) TestBothSourcesFailing() {
	suite.scan.Err = radio.ErrScanUnavailable
	suite.bonded.Err = errors.New("permission denied")

	r := discovery.NewReconciler(suite.scan, suite.bonded, suite.cache, nil)
	devices, err := r.Discover(context.Background(), fastOptions())

	suite.Require().Error(err)
	suite.True(errors.Is(err, radio.ErrScanFailed))
	suite.True(errors.Is(err, radio.ErrEnumerationFailed))
	suite.Empty(devices)
}

func (suite *ReconcilerTestSuite) TestEventsStreamIncrementally() {
	suite.scan.Sightings = []radio.Sighting{
		testutils.NewSightingBuilder().WithName("RNode B").WithAddress("BB:BB:BB:BB:BB:BB").Build(),
	}

	r := discovery.NewReconciler(suite.scan, suite.bonded, suite.cache, nil)
	_, err := r.Discover(context.Background(), fastOptions())
	suite.Require().NoError(err)

	select {
	case ev := <-r.Events():
		suite.Equal(discovery.EventNew, ev.Type)
		suite.Equal("BB:BB:BB:BB:BB:BB", ev.Device.Address)
	default:
		suite.Fail("expected a buffered device event")
	}
}

func TestReconcilerTestSuite(t *testing.T) {
	suitelib.Run(t, new(ReconcilerTestSuite))
}
