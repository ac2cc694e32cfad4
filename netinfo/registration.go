package netinfo

// regStates maps the numeric <stat> codes shared by the registration
// queries. CS/PS/EPS/5GS use the same vocabulary with minor code
// differences at the top end; codes outside the table decode to
// RegUnknown while keeping the raw value.
var regStates = map[int]RegState{
	0:  RegNotRegistered,
	1:  RegHome,
	2:  RegSearching,
	3:  RegDenied,
	4:  RegUnknown,
	5:  RegRoaming,
	6:  RegSMSOnlyHome,
	7:  RegSMSOnlyRoaming,
	8:  RegEmergencyOnly,
	9:  RegCSFBNotPreferredHome,
	10: RegCSFBNotPreferredRoaming,
}

func (d Domain) responsePrefix() string {
	switch d {
	case DomainCS:
		return "+CREG:"
	case DomainPS:
		return "+CGREG:"
	case DomainEPS:
		return "+CEREG:"
	case Domain5GS:
		return "+C5GREG:"
	default:
		return ""
	}
}

func (d Domain) command() string {
	switch d {
	case DomainCS:
		return "AT+CREG?"
	case DomainPS:
		return "AT+CGREG?"
	case DomainEPS:
		return "AT+CEREG?"
	case Domain5GS:
		return "AT+C5GREG?"
	default:
		return ""
	}
}

// ParseRegistration parses the query response of one registration
// domain: +CxREG: <n>,<stat>[,<tac>,<ci>,...]. An unmapped <stat> code
// is not a failure; it decodes to RegUnknown with the raw code kept.
func ParseRegistration(domain Domain, raw string) (*RegistrationStatus, error) {
	line := findLine(raw, domain.responsePrefix())
	if line == "" {
		return nil, parseErrorf(domain.command(), raw, "no %s line in response", domain.responsePrefix())
	}

	l := newLineFields(domain.command(), line)
	if l.count() < 2 {
		return nil, parseErrorf(domain.command(), line, "expected at least 2 fields, got %d", l.count())
	}

	code := l.integer(1)
	if err := l.err(); err != nil {
		return nil, err
	}
	if code == nil {
		return nil, parseErrorf(domain.command(), line, "missing registration state code")
	}

	status := &RegistrationStatus{Domain: domain, RawCode: *code}
	state, ok := regStates[*code]
	if !ok {
		state = RegUnknown
	}
	status.State = state

	// Location fields appear once the verbose URC format is enabled.
	if l.count() >= 4 {
		status.TAC = l.str(2)
		status.CellID = l.str(3)
	}

	return status, nil
}
