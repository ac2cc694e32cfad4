package monitor

import (
	"time"

	"i4.energy/across/netmon/netinfo"
)

// Result carries one field's outcome for a poll cycle. OK reports
// whether the value was successfully obtained this cycle; when false
// the aggregator leaves the previous value and timestamp untouched.
type Result[T any] struct {
	Value T
	OK    bool
}

func ok[T any](v T) Result[T] { return Result[T]{Value: v, OK: true} }

// Cycle is everything one poll pass produced. Fields the cycle did not
// attempt, or attempted and failed, stay zero-valued with OK false.
type Cycle struct {
	ServingCell   Result[*netinfo.ServingCell]
	NeighborCells Result[[]netinfo.NeighborCell]
	RSRP          Result[*netinfo.AntennaReading]
	RSRQ          Result[*netinfo.AntennaReading]
	SINR          Result[*netinfo.AntennaReading]
	CSQ           Result[*netinfo.CSQReading]
	Registration  map[netinfo.Domain]Result[netinfo.RegistrationStatus]
	SIMState      Result[string]
	Operator      Result[*netinfo.OperatorInfo]
	Attached      Result[bool]
	Temperatures  Result[[]netinfo.DiagnosticReading]
	CarrierAgg    Result[[]netinfo.CarrierComponent]
}

func newCycle() *Cycle {
	return &Cycle{Registration: make(map[netinfo.Domain]Result[netinfo.RegistrationStatus])}
}

// Aggregator folds poll cycles into a single NetworkState. Successful
// results overwrite their field and stamp it with the cycle time;
// failed results leave the field as-is, so the state degrades to
// stale-but-present instead of flickering to empty.
type Aggregator struct {
	state *NetworkState
	now   func() time.Time
}

func NewAggregator() *Aggregator {
	return &Aggregator{state: newNetworkState(), now: time.Now}
}

// Apply folds one cycle into the state and returns a snapshot of the
// result. Neighbor cells, temperatures and carrier components are
// replaced wholesale on success; they are list-valued and a partial
// merge would fabricate cells the network never reported together.
func (a *Aggregator) Apply(c *Cycle) *NetworkState {
	now := a.now()
	s := a.state

	if c.ServingCell.OK {
		s.ServingCell = c.ServingCell.Value
		s.Updated[FieldServingCell] = now
	}
	if c.NeighborCells.OK {
		s.NeighborCells = c.NeighborCells.Value
		s.Updated[FieldNeighborCells] = now
	}
	if c.RSRP.OK {
		s.Signal.RSRP = c.RSRP.Value
		s.Updated[FieldRSRP] = now
	}
	if c.RSRQ.OK {
		s.Signal.RSRQ = c.RSRQ.Value
		s.Updated[FieldRSRQ] = now
	}
	if c.SINR.OK {
		s.Signal.SINR = c.SINR.Value
		s.Updated[FieldSINR] = now
	}
	if c.CSQ.OK {
		s.Signal.CSQ = c.CSQ.Value
		s.Updated[FieldCSQ] = now
	}
	for domain, res := range c.Registration {
		if !res.OK {
			continue
		}
		s.Registration[domain] = res.Value
		s.Updated[regField(domain)] = now
	}
	if c.SIMState.OK {
		v := c.SIMState.Value
		s.SIMState = &v
		s.Updated[FieldSIMState] = now
	}
	if c.Operator.OK {
		s.Operator = c.Operator.Value
		s.Updated[FieldOperator] = now
	}
	if c.Attached.OK {
		v := c.Attached.Value
		s.Attached = &v
		s.Updated[FieldAttach] = now
	}
	if c.Temperatures.OK {
		s.Temperatures = c.Temperatures.Value
		s.Updated[FieldTemperatures] = now
	}
	if c.CarrierAgg.OK {
		s.CarrierAgg = c.CarrierAgg.Value
		s.Updated[FieldCarrierAgg] = now
	}

	return s.Clone()
}

// State returns a snapshot of the current accumulated state.
func (a *Aggregator) State() *NetworkState {
	return a.state.Clone()
}

func regField(d netinfo.Domain) Field {
	switch d {
	case netinfo.DomainCS:
		return FieldRegCS
	case netinfo.DomainPS:
		return FieldRegPS
	case netinfo.DomainEPS:
		return FieldRegEPS
	default:
		return FieldReg5GS
	}
}
