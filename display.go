package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"

	"i4.energy/across/netmon/monitor"
	"i4.energy/across/netmon/netinfo"
)

// renderSnapshot writes a human-readable summary of one network-state
// snapshot. Unreported values render as "-", stale fields carry their
// age so the reader can tell carried-forward data from fresh data.
func renderSnapshot(w io.Writer, s *monitor.NetworkState, now time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Field", "Value", "Age"})

	t.AppendRow(table.Row{"Serving cell", servingSummary(s.ServingCell), age(s, monitor.FieldServingCell, now)})
	t.AppendRow(table.Row{"Neighbors", neighborSummary(s.NeighborCells), age(s, monitor.FieldNeighborCells, now)})
	t.AppendRow(table.Row{"RSRP", antennaSummary(s.Signal.RSRP, "dBm"), age(s, monitor.FieldRSRP, now)})
	t.AppendRow(table.Row{"RSRQ", antennaSummary(s.Signal.RSRQ, "dB"), age(s, monitor.FieldRSRQ, now)})
	t.AppendRow(table.Row{"SINR", antennaSummary(s.Signal.SINR, "dB"), age(s, monitor.FieldSINR, now)})
	t.AppendRow(table.Row{"CSQ", csqSummary(s.Signal.CSQ), age(s, monitor.FieldCSQ, now)})
	t.AppendRow(table.Row{"Reg CS", regSummary(s, netinfo.DomainCS), age(s, monitor.FieldRegCS, now)})
	t.AppendRow(table.Row{"Reg PS", regSummary(s, netinfo.DomainPS), age(s, monitor.FieldRegPS, now)})
	t.AppendRow(table.Row{"Reg EPS", regSummary(s, netinfo.DomainEPS), age(s, monitor.FieldRegEPS, now)})
	t.AppendRow(table.Row{"Reg 5GS", regSummary(s, netinfo.Domain5GS), age(s, monitor.FieldReg5GS, now)})
	t.AppendRow(table.Row{"SIM", lo.FromPtrOr(s.SIMState, "-"), age(s, monitor.FieldSIMState, now)})
	t.AppendRow(table.Row{"Operator", operatorSummary(s.Operator), age(s, monitor.FieldOperator, now)})
	t.AppendRow(table.Row{"Attached", attachSummary(s.Attached), age(s, monitor.FieldAttach, now)})
	t.AppendRow(table.Row{"Temperatures", temperatureSummary(s.Temperatures), age(s, monitor.FieldTemperatures, now)})
	t.AppendRow(table.Row{"Carrier agg", carrierSummary(s.CarrierAgg), age(s, monitor.FieldCarrierAgg, now)})

	t.Render()
}

func age(s *monitor.NetworkState, f monitor.Field, now time.Time) string {
	updated := s.UpdatedAt(f)
	if updated.IsZero() {
		return "never"
	}
	return now.Sub(updated).Round(time.Second).String()
}

func servingSummary(cell *netinfo.ServingCell) string {
	if cell == nil {
		return "out of service"
	}
	parts := []string{cell.Technology.String(), cell.State}
	if cell.MCC != nil && cell.MNC != nil {
		parts = append(parts, *cell.MCC+"/"+*cell.MNC)
	}
	if cell.Band != nil {
		parts = append(parts, "band "+strconv.Itoa(*cell.Band))
	}
	if cell.CellID != nil {
		parts = append(parts, "cell "+*cell.CellID)
	}
	if cell.RSRP != nil {
		parts = append(parts, strconv.Itoa(*cell.RSRP)+" dBm")
	}
	if cell.Anchor != nil {
		parts = append(parts, "anchor "+servingSummary(cell.Anchor))
	}
	return strings.Join(parts, " ")
}

func neighborSummary(cells []netinfo.NeighborCell) string {
	if len(cells) == 0 {
		return "-"
	}
	counts := lo.CountValuesBy(cells, func(c netinfo.NeighborCell) string {
		return c.Technology.String()
	})
	parts := lo.MapToSlice(counts, func(tech string, n int) string {
		return fmt.Sprintf("%d %s", n, tech)
	})
	return strings.Join(parts, ", ")
}

func antennaSummary(r *netinfo.AntennaReading, unit string) string {
	if r == nil {
		return "-"
	}
	paths := lo.Map(r.Paths[:], func(p *int, _ int) string {
		if p == nil {
			return "-"
		}
		return strconv.Itoa(*p)
	})
	return fmt.Sprintf("%s %s (%s)", strings.Join(paths, "/"), unit, r.System)
}

func csqSummary(csq *netinfo.CSQReading) string {
	if csq == nil {
		return "-"
	}
	rssi := "-"
	if csq.RSSI != nil {
		// 0..31 maps onto -113..-51 dBm in 2 dB steps
		rssi = strconv.Itoa(-113+2*(*csq.RSSI)) + " dBm"
	}
	ber := "-"
	if csq.BER != nil {
		ber = strconv.Itoa(*csq.BER)
	}
	return fmt.Sprintf("rssi %s, ber %s", rssi, ber)
}

func regSummary(s *monitor.NetworkState, d netinfo.Domain) string {
	status, found := s.Registration[d]
	if !found {
		return "-"
	}
	out := status.State.String()
	if status.TAC != nil {
		out += " tac " + *status.TAC
	}
	if status.CellID != nil {
		out += " cell " + *status.CellID
	}
	return out
}

func operatorSummary(op *netinfo.OperatorInfo) string {
	if op == nil {
		return "-"
	}
	if op.Act != nil {
		return fmt.Sprintf("%s (act %d)", op.Name, *op.Act)
	}
	return op.Name
}

func attachSummary(attached *bool) string {
	if attached == nil {
		return "-"
	}
	if *attached {
		return "attached"
	}
	return "detached"
}

func temperatureSummary(readings []netinfo.DiagnosticReading) string {
	if len(readings) == 0 {
		return "-"
	}
	parts := lo.Map(readings, func(r netinfo.DiagnosticReading, _ int) string {
		return fmt.Sprintf("%s %d%s", r.Sensor, r.Value, r.Unit)
	})
	return strings.Join(parts, ", ")
}

func carrierSummary(comps []netinfo.CarrierComponent) string {
	if len(comps) == 0 {
		return "-"
	}
	parts := lo.Map(comps, func(c netinfo.CarrierComponent, _ int) string {
		out := c.Role
		if c.Band != "" {
			out += " " + c.Band
		}
		return out
	})
	return strings.Join(parts, ", ")
}
