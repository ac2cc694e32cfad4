package monitor

import (
	"time"

	"i4.energy/across/netmon/netinfo"
)

// Field names one independently refreshed slot of NetworkState. Each
// slot carries its own last-updated timestamp, so staleness is
// observable by comparison instead of data being silently dropped.
type Field int

const (
	FieldServingCell Field = iota
	FieldNeighborCells
	FieldRSRP
	FieldRSRQ
	FieldSINR
	FieldCSQ
	FieldRegCS
	FieldRegPS
	FieldRegEPS
	FieldReg5GS
	FieldSIMState
	FieldOperator
	FieldAttach
	FieldTemperatures
	FieldCarrierAgg
)

func (f Field) String() string {
	switch f {
	case FieldServingCell:
		return "serving-cell"
	case FieldNeighborCells:
		return "neighbor-cells"
	case FieldRSRP:
		return "rsrp"
	case FieldRSRQ:
		return "rsrq"
	case FieldSINR:
		return "sinr"
	case FieldCSQ:
		return "csq"
	case FieldRegCS:
		return "reg-cs"
	case FieldRegPS:
		return "reg-ps"
	case FieldRegEPS:
		return "reg-eps"
	case FieldReg5GS:
		return "reg-5gs"
	case FieldSIMState:
		return "sim-state"
	case FieldOperator:
		return "operator"
	case FieldAttach:
		return "attach"
	case FieldTemperatures:
		return "temperatures"
	case FieldCarrierAgg:
		return "carrier-agg"
	default:
		return "unknown"
	}
}

// NetworkState is the unified snapshot the poll cycles converge on.
// It is owned and mutated exclusively by the Aggregator; consumers only
// ever see deep copies. A nil/absent value paired with a zero Updated
// entry means "never observed"; a non-zero Updated entry older than the
// latest cycle means "stale, carried forward".
type NetworkState struct {
	ServingCell   *netinfo.ServingCell
	NeighborCells []netinfo.NeighborCell
	Signal        netinfo.SignalMetrics
	Registration  map[netinfo.Domain]netinfo.RegistrationStatus
	SIMState      *string
	Operator      *netinfo.OperatorInfo
	Attached      *bool
	Temperatures  []netinfo.DiagnosticReading
	CarrierAgg    []netinfo.CarrierComponent

	// Updated holds the per-field refresh timestamps.
	Updated map[Field]time.Time
}

func newNetworkState() *NetworkState {
	return &NetworkState{
		Registration: make(map[netinfo.Domain]netinfo.RegistrationStatus),
		Updated:      make(map[Field]time.Time),
	}
}

// UpdatedAt returns the last refresh time of a field; the zero time
// means the field has never been observed.
func (s *NetworkState) UpdatedAt(f Field) time.Time {
	return s.Updated[f]
}

// Clone returns a deep copy safe to hand to consumers while the
// aggregator keeps mutating the original.
func (s *NetworkState) Clone() *NetworkState {
	c := &NetworkState{
		SIMState: copyPtr(s.SIMState),
		Attached: copyPtr(s.Attached),
	}

	if s.ServingCell != nil {
		c.ServingCell = cloneServingCell(s.ServingCell)
	}
	if s.NeighborCells != nil {
		c.NeighborCells = make([]netinfo.NeighborCell, len(s.NeighborCells))
		copy(c.NeighborCells, s.NeighborCells)
	}
	c.Signal = netinfo.SignalMetrics{
		RSRP: cloneAntenna(s.Signal.RSRP),
		RSRQ: cloneAntenna(s.Signal.RSRQ),
		SINR: cloneAntenna(s.Signal.SINR),
	}
	if s.Signal.CSQ != nil {
		c.Signal.CSQ = &netinfo.CSQReading{
			RSSI: copyPtr(s.Signal.CSQ.RSSI),
			BER:  copyPtr(s.Signal.CSQ.BER),
		}
	}
	c.Registration = make(map[netinfo.Domain]netinfo.RegistrationStatus, len(s.Registration))
	for d, r := range s.Registration {
		r.TAC = copyPtr(r.TAC)
		r.CellID = copyPtr(r.CellID)
		c.Registration[d] = r
	}
	if s.Operator != nil {
		op := *s.Operator
		op.Act = copyPtr(op.Act)
		c.Operator = &op
	}
	if s.Temperatures != nil {
		c.Temperatures = make([]netinfo.DiagnosticReading, len(s.Temperatures))
		copy(c.Temperatures, s.Temperatures)
	}
	if s.CarrierAgg != nil {
		c.CarrierAgg = make([]netinfo.CarrierComponent, len(s.CarrierAgg))
		for i, comp := range s.CarrierAgg {
			comp.Channel = copyPtr(comp.Channel)
			comp.Bandwidth = copyPtr(comp.Bandwidth)
			comp.State = copyPtr(comp.State)
			comp.PCI = copyPtr(comp.PCI)
			c.CarrierAgg[i] = comp
		}
	}

	c.Updated = make(map[Field]time.Time, len(s.Updated))
	for f, t := range s.Updated {
		c.Updated[f] = t
	}
	return c
}

func cloneServingCell(cell *netinfo.ServingCell) *netinfo.ServingCell {
	if cell == nil {
		return nil
	}
	c := *cell
	c.Duplex = copyPtr(cell.Duplex)
	c.MCC = copyPtr(cell.MCC)
	c.MNC = copyPtr(cell.MNC)
	c.CellID = copyPtr(cell.CellID)
	c.PCI = copyPtr(cell.PCI)
	c.Channel = copyPtr(cell.Channel)
	c.Band = copyPtr(cell.Band)
	c.Bandwidth = copyPtr(cell.Bandwidth)
	c.TAC = copyPtr(cell.TAC)
	c.SCS = copyPtr(cell.SCS)
	c.RSRP = copyPtr(cell.RSRP)
	c.RSRQ = copyPtr(cell.RSRQ)
	c.RSSI = copyPtr(cell.RSSI)
	c.SINR = copyPtr(cell.SINR)
	c.CQI = copyPtr(cell.CQI)
	c.SrxLev = copyPtr(cell.SrxLev)
	c.Anchor = cloneServingCell(cell.Anchor)
	return &c
}

func cloneAntenna(r *netinfo.AntennaReading) *netinfo.AntennaReading {
	if r == nil {
		return nil
	}
	c := &netinfo.AntennaReading{System: r.System}
	for i, p := range r.Paths {
		c.Paths[i] = copyPtr(p)
	}
	return c
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
