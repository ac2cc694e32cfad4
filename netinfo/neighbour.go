package netinfo

import (
	"strings"
)

const cmdNeighbourCell = `AT+QENG="neighbourcell"`

// ParseNeighbourCells parses an AT+QENG="neighbourcell" response.
// Each response line is one neighbor; a malformed line produces an
// error for that line only and never invalidates its siblings. The
// returned slice keeps the modem's reporting order.
func ParseNeighbourCells(raw string) ([]NeighborCell, []error) {
	var (
		cells []NeighborCell
		errs  []error
	)

	for _, line := range responseLines(raw) {
		if !strings.HasPrefix(line, "+QENG:") {
			continue
		}
		l := newLineFields(cmdNeighbourCell, line)
		if !strings.HasPrefix(l.at(0), "neighbourcell") {
			continue
		}

		cell, err := parseNeighbourLine(l)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if cell != nil {
			cells = append(cells, *cell)
		}
	}

	return cells, errs
}

func parseNeighbourLine(l *lineFields) (*NeighborCell, error) {
	tech := l.at(1)
	switch {
	case tech == "LTE":
		// "neighbourcell intra"/"neighbourcell inter","LTE",<earfcn>,
		// <pcid>,<rsrq>,<rsrp>,<rssi>,<sinr>,<srxlev>,...
		if l.count() < 8 {
			return nil, parseErrorf(l.command, l.line, "LTE neighbour: expected at least 8 fields, got %d", l.count())
		}
		cell := &NeighborCell{Technology: TechLTE}
		cell.Channel = l.integer(2)
		cell.PCI = l.integer(3)
		cell.RSRQ = l.integerRange(4, -40, 10)
		cell.RSRP = l.integerRange(5, -200, 0)
		cell.RSSI = l.integerRange(6, -200, 0)
		cell.SINR = l.integer(7)
		cell.SrxLev = l.integer(8)
		if err := l.err(); err != nil {
			return nil, err
		}
		return cell, nil

	case tech == "WCDMA":
		// "neighbourcell","WCDMA",<uarfcn>,...,<psc>,<rscp>,<ecno>,<srxlev>
		if l.count() < 8 {
			return nil, parseErrorf(l.command, l.line, "WCDMA neighbour: expected at least 8 fields, got %d", l.count())
		}
		cell := &NeighborCell{Technology: TechWCDMA}
		cell.Channel = l.integer(2)
		cell.PCI = l.integer(5) // PSC
		cell.RSRP = l.integerRange(6, -200, 0) // RSCP
		cell.RSRQ = l.integerRange(7, -40, 10) // ECNO
		cell.SrxLev = l.integer(8)
		if err := l.err(); err != nil {
			return nil, err
		}
		return cell, nil

	case strings.Contains(tech, "NR5G") || strings.Contains(tech, "5G"):
		// "neighbourcell","NR5G",<arfcn>,<pcid>,<rsrp>,<rsrq>,<sinr>
		if l.count() < 6 {
			return nil, parseErrorf(l.command, l.line, "NR neighbour: expected at least 6 fields, got %d", l.count())
		}
		cell := &NeighborCell{Technology: TechNR}
		cell.Channel = l.integer(2)
		cell.PCI = l.integer(3)
		cell.RSRP = l.integerRange(4, -200, 0)
		cell.RSRQ = l.integerRange(5, -40, 10)
		cell.SINR = l.integer(6)
		if err := l.err(); err != nil {
			return nil, err
		}
		return cell, nil

	default:
		// Unknown neighbour technology: skip silently, same stance as
		// the serving-cell forward-compatibility guard.
		return nil, nil
	}
}
