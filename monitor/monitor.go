// Package monitor drives the periodic poll of the modem and folds the
// parsed responses into a unified NetworkState.
package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"i4.energy/across/netmon/at"
	"i4.energy/across/netmon/modem"
	"i4.energy/across/netmon/netinfo"
)

// Commander executes one AT command with the session-level retry and
// recovery policy. *modem.Session satisfies it.
type Commander interface {
	Execute(ctx context.Context, cmd modem.Command) (string, error)
}

// EventKind classifies the non-fatal incidents a poll cycle can raise.
type EventKind int

const (
	// EventCommandFailed means a command exhausted its retries.
	EventCommandFailed EventKind = iota
	// EventParseError means a response line could not be decoded.
	EventParseError
	// EventUnknownTech means the modem reported a serving-cell
	// technology this build does not decode yet.
	EventUnknownTech
)

func (k EventKind) String() string {
	switch k {
	case EventCommandFailed:
		return "command-failed"
	case EventParseError:
		return "parse-error"
	case EventUnknownTech:
		return "unknown-technology"
	default:
		return "unknown"
	}
}

// Event is one non-fatal incident observed during polling.
type Event struct {
	Command string
	Kind    EventKind
	Err     error
}

// Config holds the monitor's tunables.
type Config struct {
	// Interval is the pause between poll cycles. Ignored in Once mode.
	Interval time.Duration
	// Once runs a single cycle and returns instead of looping.
	Once bool
}

// Monitor runs poll cycles against a Commander and publishes a
// snapshot per cycle. A cycle always yields a snapshot, even when every
// command in it failed; consumers see carried-forward values with old
// timestamps rather than gaps.
type Monitor struct {
	session Commander
	agg     *Aggregator
	config  Config
	logger  zerolog.Logger

	snapshots chan *NetworkState
	events    chan Event
}

func New(session Commander, config Config, logger zerolog.Logger) *Monitor {
	if config.Interval <= 0 {
		config.Interval = 5 * time.Second
	}
	return &Monitor{
		session:   session,
		agg:       NewAggregator(),
		config:    config,
		logger:    logger,
		snapshots: make(chan *NetworkState, 1),
		events:    make(chan Event, 64),
	}
}

// Snapshots delivers one NetworkState per completed cycle. The channel
// holds a single slot; a slow consumer gets the freshest snapshot, not
// a backlog.
func (m *Monitor) Snapshots() <-chan *NetworkState {
	return m.snapshots
}

// Events delivers the non-fatal incidents of the poll cycles. Events
// are dropped when the channel is full.
func (m *Monitor) Events() <-chan Event {
	return m.events
}

// Run polls until the context is cancelled or the transport dies. Both
// channels are closed on return.
func (m *Monitor) Run(ctx context.Context) error {
	defer close(m.snapshots)
	defer close(m.events)

	if err := m.runCycle(ctx); err != nil {
		return err
	}
	if m.config.Once {
		return nil
	}

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := m.runCycle(ctx); err != nil {
				return err
			}
		}
	}
}

func (m *Monitor) runCycle(ctx context.Context) error {
	started := time.Now()
	cycle := newCycle()

	for _, step := range steps {
		raw, err := m.exec(ctx, step.cmd)
		if err != nil {
			if errors.Is(err, modem.ErrTransportIO) || ctx.Err() != nil {
				return err
			}
			m.emit(Event{Command: step.cmd.Name, Kind: EventCommandFailed, Err: err})
			continue
		}
		step.apply(m, cycle, raw)
	}

	snapshot := m.agg.Apply(cycle)
	m.logger.Debug().
		Dur("elapsed", time.Since(started)).
		Msg("poll cycle complete")

	select {
	case m.snapshots <- snapshot:
	default:
		// replace the stale unconsumed snapshot
		select {
		case <-m.snapshots:
		default:
		}
		m.snapshots <- snapshot
	}
	return nil
}

func (m *Monitor) exec(ctx context.Context, cmd modem.Command) (string, error) {
	return m.session.Execute(ctx, cmd)
}

func (m *Monitor) emit(ev Event) {
	logEv := m.logger.Warn().Str("command", ev.Command).Str("kind", ev.Kind.String())
	if ev.Err != nil {
		logEv = logEv.Err(ev.Err)
	}
	logEv.Msg("poll incident")

	select {
	case m.events <- ev:
	default:
	}
}

func (m *Monitor) emitParseErrors(cmd string, errs []error) {
	for _, err := range errs {
		m.emit(Event{Command: cmd, Kind: EventParseError, Err: err})
	}
}

// step binds one poll command to the cycle slot its response fills.
type step struct {
	cmd   modem.Command
	apply func(m *Monitor, c *Cycle, raw string)
}

// steps is the fixed cycle order: serving cell first so technology
// context is fresh, then signal, then registration and diagnostics.
var steps = []step{
	{
		cmd: modem.Command{Name: "serving-cell", AT: at.CmdServingCell},
		apply: func(m *Monitor, c *Cycle, raw string) {
			cell, err := netinfo.ParseServingCell(raw)
			if err != nil {
				kind := EventParseError
				if errors.Is(err, netinfo.ErrUnknownTechnology) {
					kind = EventUnknownTech
				}
				m.emit(Event{Command: "serving-cell", Kind: kind, Err: err})
				return
			}
			// nil cell with nil error is a genuine out-of-service
			// report and replaces the previous cell.
			c.ServingCell = ok(cell)
		},
	},
	{
		cmd: modem.Command{Name: "neighbour-cells", AT: at.CmdNeighbourCell},
		apply: func(m *Monitor, c *Cycle, raw string) {
			cells, errs := netinfo.ParseNeighbourCells(raw)
			m.emitParseErrors("neighbour-cells", errs)
			c.NeighborCells = ok(cells)
		},
	},
	{
		cmd: modem.Command{Name: "rsrp", AT: at.CmdRSRP},
		apply: func(m *Monitor, c *Cycle, raw string) {
			reading, err := netinfo.ParseRSRP(raw)
			c.RSRP = antennaResult(m, "rsrp", reading, err)
		},
	},
	{
		cmd: modem.Command{Name: "rsrq", AT: at.CmdRSRQ},
		apply: func(m *Monitor, c *Cycle, raw string) {
			reading, err := netinfo.ParseRSRQ(raw)
			c.RSRQ = antennaResult(m, "rsrq", reading, err)
		},
	},
	{
		cmd: modem.Command{Name: "sinr", AT: at.CmdSINR},
		apply: func(m *Monitor, c *Cycle, raw string) {
			reading, err := netinfo.ParseSINR(raw)
			c.SINR = antennaResult(m, "sinr", reading, err)
		},
	},
	{
		cmd: modem.Command{Name: "csq", AT: at.CmdCSQ},
		apply: func(m *Monitor, c *Cycle, raw string) {
			csq, err := netinfo.ParseCSQ(raw)
			if err != nil {
				m.emit(Event{Command: "csq", Kind: EventParseError, Err: err})
				return
			}
			c.CSQ = ok(csq)
		},
	},
	regStep("reg-cs", at.CmdCregQuery, netinfo.DomainCS),
	regStep("reg-ps", at.CmdCgregQuery, netinfo.DomainPS),
	regStep("reg-eps", at.CmdCeregQuery, netinfo.DomainEPS),
	regStep("reg-5gs", at.CmdC5gregQuery, netinfo.Domain5GS),
	{
		cmd: modem.Command{Name: "sim-status", AT: at.CmdSimStatus},
		apply: func(m *Monitor, c *Cycle, raw string) {
			state, err := netinfo.ParseSIMStatus(raw)
			if err != nil {
				m.emit(Event{Command: "sim-status", Kind: EventParseError, Err: err})
				return
			}
			c.SIMState = ok(state)
		},
	},
	{
		cmd: modem.Command{Name: "operator", AT: at.CmdOperator},
		apply: func(m *Monitor, c *Cycle, raw string) {
			op, err := netinfo.ParseOperator(raw)
			if err != nil {
				m.emit(Event{Command: "operator", Kind: EventParseError, Err: err})
				return
			}
			c.Operator = ok(op)
		},
	},
	{
		cmd: modem.Command{Name: "attach", AT: at.CmdAttachState},
		apply: func(m *Monitor, c *Cycle, raw string) {
			attached, err := netinfo.ParseAttach(raw)
			if err != nil || attached == nil {
				m.emit(Event{Command: "attach", Kind: EventParseError, Err: err})
				return
			}
			c.Attached = ok(*attached)
		},
	},
	{
		cmd: modem.Command{Name: "temperature", AT: at.CmdTemperature},
		apply: func(m *Monitor, c *Cycle, raw string) {
			readings, errs := netinfo.ParseTemperatures(raw)
			m.emitParseErrors("temperature", errs)
			c.Temperatures = ok(readings)
		},
	},
	{
		cmd: modem.Command{Name: "carrier-agg", AT: at.CmdCarrierAgg},
		apply: func(m *Monitor, c *Cycle, raw string) {
			comps, errs := netinfo.ParseCarrierAggregation(raw)
			m.emitParseErrors("carrier-agg", errs)
			c.CarrierAgg = ok(comps)
		},
	},
}

func regStep(name, cmd string, domain netinfo.Domain) step {
	return step{
		cmd: modem.Command{Name: name, AT: cmd},
		apply: func(m *Monitor, c *Cycle, raw string) {
			status, err := netinfo.ParseRegistration(domain, raw)
			if err != nil {
				m.emit(Event{Command: name, Kind: EventParseError, Err: err})
				return
			}
			c.Registration[domain] = ok(*status)
		},
	}
}

func antennaResult(m *Monitor, name string, reading *netinfo.AntennaReading, err error) Result[*netinfo.AntennaReading] {
	if err != nil {
		m.emit(Event{Command: name, Kind: EventParseError, Err: err})
		return Result[*netinfo.AntennaReading]{}
	}
	return ok(reading)
}
