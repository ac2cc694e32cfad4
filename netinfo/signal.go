package netinfo

import (
	"strings"
)

// pathUnreported is the sentinel Quectel modems use for a receive path
// that currently has no measurement.
const pathUnreported = -32768

// ParseRSRP parses an AT+QRSRP response into a per-path reading.
func ParseRSRP(raw string) (*AntennaReading, error) {
	return parseAntenna(raw, "+QRSRP:", "AT+QRSRP")
}

// ParseRSRQ parses an AT+QRSRQ response into a per-path reading.
func ParseRSRQ(raw string) (*AntennaReading, error) {
	return parseAntenna(raw, "+QRSRQ:", "AT+QRSRQ")
}

// ParseSINR parses an AT+QSINR response into a per-path reading.
func ParseSINR(raw string) (*AntennaReading, error) {
	return parseAntenna(raw, "+QSINR:", "AT+QSINR")
}

// parseAntenna handles the shared layout of the dedicated signal
// queries: <path1>,<path2>,<path3>,<path4>,<sysmode>. The -32768
// sentinel marks a path without a measurement and becomes nil.
func parseAntenna(raw, prefix, command string) (*AntennaReading, error) {
	line := findLine(raw, prefix)
	if line == "" {
		return nil, parseErrorf(command, raw, "no %s line in response", strings.TrimSuffix(prefix, ":"))
	}

	l := newLineFields(command, line)
	if l.count() < 5 {
		return nil, parseErrorf(command, line, "expected 5 fields, got %d", l.count())
	}

	reading := &AntennaReading{System: l.at(4)}
	for i := 0; i < 4; i++ {
		v := l.integer(i)
		if v != nil && *v == pathUnreported {
			v = nil
		}
		reading.Paths[i] = v
	}
	if err := l.err(); err != nil {
		return nil, err
	}
	return reading, nil
}

// ParseCSQ parses an AT+CSQ response. The documented 99 sentinel means
// "not known or not detectable" and yields nil, not the literal value.
func ParseCSQ(raw string) (*CSQReading, error) {
	line := findLine(raw, "+CSQ:")
	if line == "" {
		return nil, parseErrorf("AT+CSQ", raw, "no +CSQ line in response")
	}

	l := newLineFields("AT+CSQ", line)
	if l.count() < 2 {
		return nil, parseErrorf("AT+CSQ", line, "expected 2 fields, got %d", l.count())
	}

	reading := &CSQReading{}
	if rssi := l.integerRange(0, 0, 99); rssi != nil {
		if *rssi > 31 && *rssi != 99 {
			return nil, parseErrorf("AT+CSQ", line, "rssi code %d out of range", *rssi)
		}
		if *rssi != 99 {
			reading.RSSI = rssi
		}
	}
	if ber := l.integerRange(1, 0, 99); ber != nil {
		if *ber > 7 && *ber != 99 {
			return nil, parseErrorf("AT+CSQ", line, "ber code %d out of range", *ber)
		}
		if *ber != 99 {
			reading.BER = ber
		}
	}
	if err := l.err(); err != nil {
		return nil, err
	}
	return reading, nil
}

// findLine returns the first response line with the given prefix, or "".
func findLine(raw, prefix string) string {
	for _, line := range responseLines(raw) {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	return ""
}
