package netinfo

import (
	"strings"
)

const cmdServingCell = `AT+QENG="servingcell"`

// techFromToken maps the discriminator token of a serving-cell line to a
// grammar variant. Tokens this table does not know are reported as
// TechUnknown, never as a failure.
func techFromToken(token string) Technology {
	switch token {
	case "LTE":
		return TechLTE
	case "WCDMA":
		return TechWCDMA
	case "NR5G-SA":
		return TechNRSA
	case "NR5G-NSA":
		return TechNRNSA
	default:
		return TechUnknown
	}
}

// ClassifyTechnology inspects the leading discriminator token of a raw
// serving-cell response and selects the grammar variant that applies.
// In EN-DC mode the header line carries no technology; the continuation
// lines decide instead.
func ClassifyTechnology(raw string) Technology {
	for _, line := range responseLines(raw) {
		if !strings.HasPrefix(line, "+QENG:") {
			continue
		}
		f := splitFields(line)
		switch f[0] {
		case "servingcell":
			if len(f) >= 3 {
				return techFromToken(f[2])
			}
			// Bare header: EN-DC layout, keep scanning.
		case "NR5G-NSA":
			return TechNRNSA
		}
	}
	return TechUnknown
}

// ParseServingCell parses an AT+QENG="servingcell" response into a typed
// record. A nil record with a nil error means the modem is out of
// service (still searching), which is not an error. ErrUnknownTechnology
// is returned for technology tokens without a grammar.
func ParseServingCell(raw string) (*ServingCell, error) {
	var header, nsaLine, anchorLine string
	for _, line := range responseLines(raw) {
		if !strings.HasPrefix(line, "+QENG:") {
			continue
		}
		switch f := splitFields(line); f[0] {
		case "servingcell":
			header = line
		case "NR5G-NSA":
			nsaLine = line
		case "LTE":
			anchorLine = line
		}
	}

	if header == "" {
		return nil, parseErrorf(cmdServingCell, raw, "no serving cell line in response")
	}

	l := newLineFields(cmdServingCell, header)
	state := l.at(1)

	if l.count() >= 3 {
		// Single-line layout: the technology follows the state.
		switch tech := techFromToken(l.at(2)); tech {
		case TechLTE:
			return parseLTECell(l, 3, state)
		case TechWCDMA:
			return parseWCDMACell(l, 3, state)
		case TechNRSA:
			return parseNRSACell(l, 3, state)
		default:
			return nil, ErrUnknownTechnology
		}
	}

	// EN-DC layout: bare "servingcell",<state> header with per-RAT
	// continuation lines.
	if nsaLine != "" {
		cell, err := parseNSACell(newLineFields(cmdServingCell, nsaLine), state)
		if err != nil {
			return nil, err
		}
		if anchorLine != "" {
			// The LTE anchor is optional; a malformed anchor spoils the
			// whole record, a missing one does not.
			anchor, err := parseLTECell(newLineFields(cmdServingCell, anchorLine), 1, state)
			if err != nil {
				return nil, err
			}
			cell.Anchor = anchor
		}
		return cell, nil
	}
	if anchorLine != "" {
		// EN-DC capable but camped on LTE only.
		return parseLTECell(newLineFields(cmdServingCell, anchorLine), 1, state)
	}

	// Header only: not camped on any cell. Out of service, not an error.
	return nil, nil
}

// parseLTECell reads the LTE field layout. start indexes the duplex
// (FDD/TDD) field: 3 for the single-line form, 1 for the EN-DC anchor
// form, which omits the "servingcell",<state> lead-in.
func parseLTECell(l *lineFields, start int, state string) (*ServingCell, error) {
	// ...,<is_tdd>,<mcc>,<mnc>,<cellID>,<pcid>,<earfcn>,<freq_band_ind>,
	// <UL_bandwidth>,<DL_bandwidth>,<tac>,<rsrp>,<rsrq>,<rssi>,<sinr>,
	// [<cqi>,<tx_power>,<srxlev>]
	if l.count() < start+14 {
		return nil, parseErrorf(l.command, l.line, "LTE serving cell: expected at least %d fields, got %d", start+14, l.count())
	}

	cell := &ServingCell{Technology: TechLTE, State: state}
	cell.Duplex = l.str(start)
	cell.MCC = l.digits(start + 1)
	cell.MNC = l.digits(start + 2)
	cell.CellID = l.str(start + 3)
	cell.PCI = l.integer(start + 4)
	cell.Channel = l.integer(start + 5)
	cell.Band = l.integer(start + 6)
	cell.Bandwidth = l.integerRange(start+8, 0, 5) // DL bandwidth code
	cell.TAC = l.str(start + 9)
	cell.RSRP = l.integerRange(start+10, -200, 0)
	cell.RSRQ = l.integerRange(start+11, -40, 10)
	cell.RSSI = l.integerRange(start+12, -200, 0)
	cell.SINR = l.integer(start + 13)
	cell.CQI = l.integer(start + 14)
	cell.SrxLev = l.integer(start + 16)

	if err := l.err(); err != nil {
		return nil, err
	}
	return cell, nil
}

func parseWCDMACell(l *lineFields, start int, state string) (*ServingCell, error) {
	// ...,<mcc>,<mnc>,<lac>,<cellID>,<uarfcn>,<psc>,<rac>,<rscp>,<ecio>,...
	if l.count() < start+9 {
		return nil, parseErrorf(l.command, l.line, "WCDMA serving cell: expected at least %d fields, got %d", start+9, l.count())
	}

	cell := &ServingCell{Technology: TechWCDMA, State: state}
	cell.MCC = l.digits(start)
	cell.MNC = l.digits(start + 1)
	cell.TAC = l.str(start + 2) // LAC
	cell.CellID = l.str(start + 3)
	cell.Channel = l.integer(start + 4)
	cell.PCI = l.integer(start + 5) // PSC
	cell.RSRP = l.integerRange(start+7, -200, 0) // RSCP
	cell.RSRQ = l.integerRange(start+8, -40, 10) // ECIO

	if err := l.err(); err != nil {
		return nil, err
	}
	return cell, nil
}

func parseNRSACell(l *lineFields, start int, state string) (*ServingCell, error) {
	// ...,<duplex>,<mcc>,<mnc>,<cellID>,<pcid>,<tac>,<arfcn>,<band>,
	// <NR_DL_bandwidth>,<rsrp>,<rsrq>,<sinr>,<scs>,<srxlev>
	if l.count() < start+12 {
		return nil, parseErrorf(l.command, l.line, "NR5G-SA serving cell: expected at least %d fields, got %d", start+12, l.count())
	}

	cell := &ServingCell{Technology: TechNRSA, State: state}
	cell.Duplex = l.str(start)
	cell.MCC = l.digits(start + 1)
	cell.MNC = l.digits(start + 2)
	cell.CellID = l.str(start + 3)
	cell.PCI = l.integer(start + 4)
	cell.TAC = l.str(start + 5)
	cell.Channel = l.integer(start + 6)
	cell.Band = l.integer(start + 7)
	cell.Bandwidth = l.integer(start + 8)
	cell.RSRP = l.integerRange(start+9, -200, 0)
	cell.RSRQ = l.integerRange(start+10, -40, 10)
	cell.SINR = l.integer(start + 11)
	cell.SCS = l.integer(start + 12)
	cell.SrxLev = l.integer(start + 13)

	if err := l.err(); err != nil {
		return nil, err
	}
	return cell, nil
}

// parseNSACell reads the "+QENG: "NR5G-NSA",..." continuation line of an
// EN-DC response.
func parseNSACell(l *lineFields, state string) (*ServingCell, error) {
	// "NR5G-NSA",<mcc>,<mnc>,<pcid>,<rsrp>,<sinr>,<rsrq>,<arfcn>,<band>,
	// <NR_DL_bandwidth>,<scs>
	if l.count() < 8 {
		return nil, parseErrorf(l.command, l.line, "NR5G-NSA serving cell: expected at least 8 fields, got %d", l.count())
	}

	cell := &ServingCell{Technology: TechNRNSA, State: state}
	cell.MCC = l.digits(1)
	cell.MNC = l.digits(2)
	cell.PCI = l.integer(3)
	cell.RSRP = l.integerRange(4, -200, 0)
	cell.SINR = l.integer(5)
	cell.RSRQ = l.integerRange(6, -40, 10)
	cell.Channel = l.integer(7)
	cell.Band = l.integer(8)
	cell.Bandwidth = l.integer(9)
	cell.SCS = l.integer(10)

	if err := l.err(); err != nil {
		return nil, err
	}
	return cell, nil
}
