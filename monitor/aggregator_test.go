package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/netmon/netinfo"
)

func intPtr(v int) *int { return &v }

// fixedClock steps the aggregator clock one second per cycle.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestAggregator() (*Aggregator, *fixedClock) {
	clock := &fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	agg := NewAggregator()
	agg.now = clock.now
	return agg, clock
}

func TestAggregatorApplyStampsFreshFields(t *testing.T) {
	agg, _ := newTestAggregator()

	cycle := newCycle()
	cycle.ServingCell = ok(&netinfo.ServingCell{Technology: netinfo.TechLTE, State: netinfo.StateNoConn})
	cycle.CSQ = ok(&netinfo.CSQReading{RSSI: intPtr(21)})

	state := agg.Apply(cycle)

	require.NotNil(t, state.ServingCell)
	assert.Equal(t, netinfo.TechLTE, state.ServingCell.Technology)
	assert.False(t, state.UpdatedAt(FieldServingCell).IsZero())
	assert.False(t, state.UpdatedAt(FieldCSQ).IsZero())

	// Fields the cycle never produced stay unobserved.
	assert.True(t, state.UpdatedAt(FieldRSRP).IsZero())
	assert.Nil(t, state.Signal.RSRP)
}

func TestAggregatorFailedFieldCarriesForward(t *testing.T) {
	agg, _ := newTestAggregator()

	first := newCycle()
	first.ServingCell = ok(&netinfo.ServingCell{Technology: netinfo.TechLTE, State: netinfo.StateConnect})
	afterFirst := agg.Apply(first)
	firstStamp := afterFirst.UpdatedAt(FieldServingCell)

	// Second cycle fails the serving-cell query: the previous record and
	// its timestamp survive untouched.
	second := newCycle()
	second.CSQ = ok(&netinfo.CSQReading{RSSI: intPtr(18)})
	afterSecond := agg.Apply(second)

	require.NotNil(t, afterSecond.ServingCell)
	assert.Equal(t, netinfo.TechLTE, afterSecond.ServingCell.Technology)
	assert.Equal(t, firstStamp, afterSecond.UpdatedAt(FieldServingCell))
	assert.True(t, afterSecond.UpdatedAt(FieldCSQ).After(firstStamp))
}

func TestAggregatorSuccessfulNilServingCellOverwrites(t *testing.T) {
	agg, _ := newTestAggregator()

	first := newCycle()
	first.ServingCell = ok(&netinfo.ServingCell{Technology: netinfo.TechNRSA, State: netinfo.StateConnect})
	agg.Apply(first)

	// An explicit out-of-service report is fresh data, not a failure:
	// the old cell is replaced by nothing and the stamp advances.
	second := newCycle()
	second.ServingCell = ok[*netinfo.ServingCell](nil)
	state := agg.Apply(second)

	assert.Nil(t, state.ServingCell)
	assert.False(t, state.UpdatedAt(FieldServingCell).IsZero())
}

func TestAggregatorNeighborsReplacedWholesale(t *testing.T) {
	agg, _ := newTestAggregator()

	first := newCycle()
	first.NeighborCells = ok([]netinfo.NeighborCell{
		{Technology: netinfo.TechLTE, PCI: intPtr(218)},
		{Technology: netinfo.TechLTE, PCI: intPtr(123)},
	})
	agg.Apply(first)

	second := newCycle()
	second.NeighborCells = ok([]netinfo.NeighborCell{
		{Technology: netinfo.TechNR, PCI: intPtr(644)},
	})
	state := agg.Apply(second)

	require.Len(t, state.NeighborCells, 1)
	assert.Equal(t, netinfo.TechNR, state.NeighborCells[0].Technology)
}

func TestAggregatorRegistrationPerDomain(t *testing.T) {
	agg, _ := newTestAggregator()

	cycle := newCycle()
	cycle.Registration[netinfo.DomainEPS] = ok(netinfo.RegistrationStatus{
		Domain: netinfo.DomainEPS, State: netinfo.RegHome, RawCode: 1,
	})
	cycle.Registration[netinfo.Domain5GS] = ok(netinfo.RegistrationStatus{
		Domain: netinfo.Domain5GS, State: netinfo.RegSearching, RawCode: 2,
	})
	state := agg.Apply(cycle)

	assert.Equal(t, netinfo.RegHome, state.Registration[netinfo.DomainEPS].State)
	assert.Equal(t, netinfo.RegSearching, state.Registration[netinfo.Domain5GS].State)
	assert.False(t, state.UpdatedAt(FieldRegEPS).IsZero())
	assert.False(t, state.UpdatedAt(FieldReg5GS).IsZero())
	assert.True(t, state.UpdatedAt(FieldRegCS).IsZero())
}

func TestAggregatorTimestampsIncreaseAcrossCycles(t *testing.T) {
	agg, _ := newTestAggregator()

	var stamps []time.Time
	for i := 0; i < 3; i++ {
		cycle := newCycle()
		cycle.Attached = ok(true)
		state := agg.Apply(cycle)
		stamps = append(stamps, state.UpdatedAt(FieldAttach))
	}

	assert.True(t, stamps[1].After(stamps[0]))
	assert.True(t, stamps[2].After(stamps[1]))
}

func TestNetworkStateCloneIsDeep(t *testing.T) {
	agg, _ := newTestAggregator()

	cycle := newCycle()
	cycle.ServingCell = ok(&netinfo.ServingCell{Technology: netinfo.TechLTE, RSRP: intPtr(-97)})
	snapshot := agg.Apply(cycle)

	// Mutating the snapshot must not leak into the aggregator's copy.
	*snapshot.ServingCell.RSRP = 0
	snapshot.ServingCell.Technology = netinfo.TechWCDMA

	fresh := agg.State()
	require.NotNil(t, fresh.ServingCell)
	assert.Equal(t, netinfo.TechLTE, fresh.ServingCell.Technology)
	require.NotNil(t, fresh.ServingCell.RSRP)
	assert.Equal(t, -97, *fresh.ServingCell.RSRP)
}
