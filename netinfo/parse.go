package netinfo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownTechnology is returned when a serving-cell response carries a
// technology token this package has no grammar for. It is a
// forward-compatibility guard for new firmware, not a parse failure:
// the caller should treat the cycle as having no serving-cell data.
var ErrUnknownTechnology = errors.New("unknown technology variant")

// ParseError describes a malformed record. It is scoped to the single
// record it names; one bad line never invalidates the rest of a cycle.
type ParseError struct {
	Command string
	Line    string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s: %q", e.Command, e.Reason, e.Line)
}

func parseErrorf(command, line, format string, args ...any) *ParseError {
	return &ParseError{Command: command, Line: line, Reason: fmt.Sprintf(format, args...)}
}

// splitFields cuts the "+CMD:" prefix off a response line and splits the
// remainder into comma-separated fields with quotes and padding removed.
func splitFields(line string) []string {
	if _, rest, found := strings.Cut(line, ":"); found {
		line = rest
	}
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = strings.Trim(strings.TrimSpace(p), `"`)
	}
	return parts
}

// responseLines splits a raw command response into its content lines,
// dropping the terminal OK/ERROR token and blanks.
func responseLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "OK" || line == "ERROR" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// lineFields is a bounds-checked cursor over one split response line.
// The first conversion failure is recorded and reported by err(); later
// accessors become no-ops, so parsers can read fields linearly and
// check once at the end.
type lineFields struct {
	command string
	line    string
	parts   []string
	failure *ParseError
}

func newLineFields(command, line string) *lineFields {
	return &lineFields{command: command, line: line, parts: splitFields(line)}
}

func (l *lineFields) err() error {
	if l.failure != nil {
		return l.failure
	}
	return nil
}

func (l *lineFields) fail(format string, args ...any) {
	if l.failure == nil {
		l.failure = parseErrorf(l.command, l.line, format, args...)
	}
}

func (l *lineFields) count() int { return len(l.parts) }

// at returns the raw field or "" when out of bounds.
func (l *lineFields) at(i int) string {
	if i < 0 || i >= len(l.parts) {
		return ""
	}
	return l.parts[i]
}

// str returns the field as-is; empty and "-" both mean unreported.
func (l *lineFields) str(i int) *string {
	s := l.at(i)
	if s == "" || s == "-" {
		return nil
	}
	return &s
}

// digits validates a numeric slot but keeps it as the raw string, for
// values like the MNC where "03" and "030" are distinct. Unreported
// ("-"/empty/out of bounds) yields nil; a non-numeric token records a
// ParseError.
func (l *lineFields) digits(i int) *string {
	s := l.at(i)
	if s == "" || s == "-" {
		return nil
	}
	if _, err := strconv.Atoi(s); err != nil {
		l.fail("field %d: expected number, got %q", i, s)
		return nil
	}
	return &s
}

// integer parses a numeric slot. Unreported ("-"/empty/out of bounds)
// yields nil; a non-numeric token records a ParseError.
func (l *lineFields) integer(i int) *int {
	s := l.at(i)
	if s == "" || s == "-" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		l.fail("field %d: expected number, got %q", i, s)
		return nil
	}
	return &v
}

// integerRange is integer plus a declared-range check.
func (l *lineFields) integerRange(i, lo, hi int) *int {
	v := l.integer(i)
	if v == nil {
		return nil
	}
	if *v < lo || *v > hi {
		l.fail("field %d: value %d out of range [%d, %d]", i, *v, lo, hi)
		return nil
	}
	return v
}
