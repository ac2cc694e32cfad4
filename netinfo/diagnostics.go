package netinfo

import (
	"strconv"
	"strings"
)

// ParseTemperatures parses AT+QTEMP output: one +QTEMP:"<sensor>","<value>"
// line per sensor (modem, PA, SIM, board, RF paths). Malformed lines
// produce per-line errors and do not hide their siblings.
func ParseTemperatures(raw string) ([]DiagnosticReading, []error) {
	var (
		readings []DiagnosticReading
		errs     []error
	)

	for _, line := range responseLines(raw) {
		if !strings.HasPrefix(line, "+QTEMP:") {
			continue
		}
		l := newLineFields("AT+QTEMP", line)
		if l.count() < 2 {
			errs = append(errs, parseErrorf("AT+QTEMP", line, "expected 2 fields, got %d", l.count()))
			continue
		}
		value, err := strconv.Atoi(l.at(1))
		if err != nil {
			errs = append(errs, parseErrorf("AT+QTEMP", line, "sensor %q: expected number, got %q", l.at(0), l.at(1)))
			continue
		}
		readings = append(readings, DiagnosticReading{
			Sensor: l.at(0),
			Value:  value,
			Unit:   "C",
		})
	}

	return readings, errs
}

// ParseSIMStatus parses AT+CPIN?: the SIM state string (READY, SIM PIN,
// SIM PUK, ...).
func ParseSIMStatus(raw string) (string, error) {
	line := findLine(raw, "+CPIN:")
	if line == "" {
		return "", parseErrorf("AT+CPIN?", raw, "no +CPIN line in response")
	}
	_, rest, _ := strings.Cut(line, ":")
	state := strings.TrimSpace(rest)
	if state == "" {
		return "", parseErrorf("AT+CPIN?", line, "empty SIM state")
	}
	return state, nil
}

// ParseOperator parses AT+COPS?. A response carrying only the selection
// mode means no operator is selected; that is reported as a nil record,
// not an error.
func ParseOperator(raw string) (*OperatorInfo, error) {
	line := findLine(raw, "+COPS:")
	if line == "" {
		return nil, parseErrorf("AT+COPS?", raw, "no +COPS line in response")
	}

	l := newLineFields("AT+COPS?", line)
	if l.count() < 3 {
		return nil, nil
	}

	info := &OperatorInfo{Name: l.at(2)}
	info.Act = l.integer(3)
	if err := l.err(); err != nil {
		return nil, err
	}
	return info, nil
}

// ParseAttach parses AT+CGATT?: 1 attached, 0 detached.
func ParseAttach(raw string) (*bool, error) {
	line := findLine(raw, "+CGATT:")
	if line == "" {
		return nil, parseErrorf("AT+CGATT?", raw, "no +CGATT line in response")
	}

	l := newLineFields("AT+CGATT?", line)
	state := l.integerRange(0, 0, 1)
	if err := l.err(); err != nil {
		return nil, err
	}
	if state == nil {
		return nil, parseErrorf("AT+CGATT?", line, "missing attach state")
	}
	attached := *state == 1
	return &attached, nil
}

// ParseCarrierAggregation parses AT+QCAINFO: one +QCAINFO: "PCC"/"SCC"
// line per carrier component.
func ParseCarrierAggregation(raw string) ([]CarrierComponent, []error) {
	var (
		components []CarrierComponent
		errs       []error
	)

	for _, line := range responseLines(raw) {
		if !strings.HasPrefix(line, "+QCAINFO:") {
			continue
		}
		l := newLineFields("AT+QCAINFO", line)
		if l.count() < 4 {
			errs = append(errs, parseErrorf("AT+QCAINFO", line, "expected at least 4 fields, got %d", l.count()))
			continue
		}

		// "PCC"/"SCC",<freq>,<bandwidth>,<band>[,<state>,<pci>,...]
		comp := CarrierComponent{Role: l.at(0), Band: l.at(3)}
		comp.Channel = l.integer(1)
		comp.Bandwidth = l.integer(2)
		comp.State = l.integer(4)
		comp.PCI = l.integer(5)
		if err := l.err(); err != nil {
			errs = append(errs, err)
			continue
		}
		components = append(components, comp)
	}

	return components, errs
}
