package monitor_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/netmon/at"
	"i4.energy/across/netmon/modem"
	"i4.energy/across/netmon/monitor"
	"i4.energy/across/netmon/netinfo"
)

// scriptedCommander answers poll commands from a canned response table.
// Commands without an entry fail with ErrTimeout.
type scriptedCommander struct {
	responses map[string]string
	failWith  map[string]error
	executed  []string
}

func (c *scriptedCommander) Execute(_ context.Context, cmd modem.Command) (string, error) {
	c.executed = append(c.executed, cmd.AT)
	if err, found := c.failWith[cmd.AT]; found {
		return "", err
	}
	if resp, found := c.responses[cmd.AT]; found {
		return resp, nil
	}
	return "", fmt.Errorf("command %q: %w", cmd.AT, modem.ErrTimeout)
}

func happyResponses() map[string]string {
	return map[string]string{
		at.CmdServingCell:   `+QENG: "servingcell","NOCONN","LTE","FDD",262,03,2C30D05,218,1300,3,5,5,C473,-97,-9,-65,11,15,230,38` + "\nOK",
		at.CmdNeighbourCell: `+QENG: "neighbourcell intra","LTE",1300,218,-10,-97,-65,11,38` + "\nOK",
		at.CmdRSRP:          "+QRSRP: -95,-98,-32768,-32768,LTE\nOK",
		at.CmdRSRQ:          "+QRSRQ: -10,-11,-32768,-32768,LTE\nOK",
		at.CmdSINR:          "+QSINR: 14,12,-32768,-32768,LTE\nOK",
		at.CmdCSQ:           "+CSQ: 21,99\nOK",
		at.CmdCregQuery:     "+CREG: 2,1\nOK",
		at.CmdCgregQuery:    "+CGREG: 2,1\nOK",
		at.CmdCeregQuery:    `+CEREG: 2,1,"C473","2C30D05",7` + "\nOK",
		at.CmdC5gregQuery:   "+C5GREG: 2,4\nOK",
		at.CmdSimStatus:     "+CPIN: READY\nOK",
		at.CmdOperator:      `+COPS: 0,0,"Vodafone.de",7` + "\nOK",
		at.CmdAttachState:   "+CGATT: 1\nOK",
		at.CmdTemperature:   `+QTEMP:"modem-ambient-usr","38"` + "\nOK",
		at.CmdCarrierAgg:    `+QCAINFO: "PCC",1300,100,"LTE BAND 3",1,218` + "\nOK",
	}
}

func runOnce(t *testing.T, commander *scriptedCommander) (*monitor.NetworkState, []monitor.Event) {
	t.Helper()

	mon := monitor.New(commander, monitor.Config{Once: true}, zerolog.Nop())

	done := make(chan error, 1)
	go func() { done <- mon.Run(context.Background()) }()

	var (
		snapshot *monitor.NetworkState
		events   []monitor.Event
	)
	snapshots := mon.Snapshots()
	eventCh := mon.Events()
	for snapshots != nil || eventCh != nil {
		select {
		case s, open := <-snapshots:
			if !open {
				snapshots = nil
				continue
			}
			snapshot = s
		case ev, open := <-eventCh:
			if !open {
				eventCh = nil
				continue
			}
			events = append(events, ev)
		case <-time.After(5 * time.Second):
			t.Fatal("monitor did not finish in time")
		}
	}

	require.NoError(t, <-done)
	return snapshot, events
}

func TestMonitorSingleCycle(t *testing.T) {
	commander := &scriptedCommander{responses: happyResponses()}
	snapshot, events := runOnce(t, commander)

	assert.Empty(t, events)
	require.NotNil(t, snapshot)

	require.NotNil(t, snapshot.ServingCell)
	assert.Equal(t, "LTE", snapshot.ServingCell.Technology.String())
	require.Len(t, snapshot.NeighborCells, 1)
	require.NotNil(t, snapshot.Signal.RSRP)
	require.NotNil(t, snapshot.Signal.RSRP.Primary())
	assert.Equal(t, -95, *snapshot.Signal.RSRP.Primary())
	require.NotNil(t, snapshot.Signal.CSQ)
	assert.Nil(t, snapshot.Signal.CSQ.BER, "99 sentinel decodes to nil")
	require.NotNil(t, snapshot.SIMState)
	assert.Equal(t, "READY", *snapshot.SIMState)
	require.NotNil(t, snapshot.Attached)
	assert.True(t, *snapshot.Attached)
	require.NotNil(t, snapshot.Operator)
	assert.Equal(t, "Vodafone.de", snapshot.Operator.Name)
	require.Len(t, snapshot.Temperatures, 1)
	require.Len(t, snapshot.CarrierAgg, 1)

	eps, found := snapshot.Registration[netinfo.DomainEPS]
	require.True(t, found)
	assert.Equal(t, netinfo.RegHome, eps.State)
	require.NotNil(t, eps.TAC)
	assert.Equal(t, "C473", *eps.TAC)
	fiveGS, found := snapshot.Registration[netinfo.Domain5GS]
	require.True(t, found)
	assert.Equal(t, netinfo.RegUnknown, fiveGS.State)
	assert.Equal(t, 4, fiveGS.RawCode)

	// Every command of the fixed cycle ran exactly once, serving cell first.
	assert.Len(t, commander.executed, 15)
	assert.Equal(t, at.CmdServingCell, commander.executed[0])
}

func TestMonitorCommandFailureDegradesGracefully(t *testing.T) {
	commander := &scriptedCommander{
		responses: happyResponses(),
		failWith: map[string]error{
			at.CmdCSQ: fmt.Errorf("command: %w", modem.ErrTimeout),
		},
	}
	snapshot, events := runOnce(t, commander)

	require.NotNil(t, snapshot, "a cycle with failures still yields a snapshot")
	assert.Nil(t, snapshot.Signal.CSQ)
	assert.True(t, snapshot.UpdatedAt(monitor.FieldCSQ).IsZero())
	require.NotNil(t, snapshot.ServingCell, "other fields are unaffected")

	require.Len(t, events, 1)
	assert.Equal(t, monitor.EventCommandFailed, events[0].Kind)
	assert.Equal(t, "csq", events[0].Command)
}

func TestMonitorUnknownTechnologyKeepsStaleCell(t *testing.T) {
	responses := happyResponses()
	responses[at.CmdServingCell] = `+QENG: "servingcell","NOCONN","NR6G","TDD",262,03,1,2,3` + "\nOK"
	commander := &scriptedCommander{responses: responses}

	snapshot, events := runOnce(t, commander)

	require.NotNil(t, snapshot)
	assert.Nil(t, snapshot.ServingCell)
	assert.True(t, snapshot.UpdatedAt(monitor.FieldServingCell).IsZero(), "an unknown variant never counts as fresh data")

	require.NotEmpty(t, events)
	assert.Equal(t, monitor.EventUnknownTech, events[0].Kind)
}

func TestMonitorParseErrorIsPerRecord(t *testing.T) {
	responses := happyResponses()
	responses[at.CmdNeighbourCell] = `+QENG: "neighbourcell intra","LTE",abc,218,-10,-97,-65,11,38
+QENG: "neighbourcell inter","LTE",1849,123,-14,-105,-71,3,21` + "\nOK"
	commander := &scriptedCommander{responses: responses}

	snapshot, events := runOnce(t, commander)

	require.NotNil(t, snapshot)
	require.Len(t, snapshot.NeighborCells, 1, "the healthy sibling line survives")

	require.Len(t, events, 1)
	assert.Equal(t, monitor.EventParseError, events[0].Kind)
	assert.Equal(t, "neighbour-cells", events[0].Command)
}

func TestMonitorTransportFailureIsFatal(t *testing.T) {
	commander := &scriptedCommander{
		responses: happyResponses(),
		failWith: map[string]error{
			at.CmdRSRP: fmt.Errorf("command: %w", modem.ErrTransportIO),
		},
	}

	mon := monitor.New(commander, monitor.Config{Once: true}, zerolog.Nop())
	err := mon.Run(context.Background())
	assert.ErrorIs(t, err, modem.ErrTransportIO)
}

func TestMonitorPeriodicCycles(t *testing.T) {
	commander := &scriptedCommander{responses: happyResponses()}
	mon := monitor.New(commander, monitor.Config{Interval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mon.Run(ctx) }()

	// Collect a few snapshots, then stop.
	var seen int
	for seen < 3 {
		select {
		case _, open := <-mon.Snapshots():
			if !open {
				t.Fatal("snapshot channel closed early")
			}
			seen++
		case <-time.After(5 * time.Second):
			t.Fatal("expected repeated snapshots")
		}
	}
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
}
