// Package netinfo turns the modem's loosely structured AT responses into
// typed network-state records. Parsers are pure functions of the raw
// response text: identical input always yields an identical record.
//
// Optional fields are pointers; nil means the modem did not report the
// value ("-" in the response, or a field the technology variant does not
// carry). A zero value is never used to stand in for "unknown".
package netinfo

// Technology identifies the radio access technology of a cell record.
type Technology int

const (
	TechUnknown Technology = iota
	TechLTE
	TechWCDMA
	TechNRSA
	TechNRNSA
	// TechNR covers NR cells whose SA/NSA role is not reported, as in
	// neighbour lists.
	TechNR
)

func (t Technology) String() string {
	switch t {
	case TechLTE:
		return "LTE"
	case TechWCDMA:
		return "WCDMA"
	case TechNRSA:
		return "NR5G-SA"
	case TechNRNSA:
		return "NR5G-NSA"
	case TechNR:
		return "NR5G"
	default:
		return "unknown"
	}
}

// RRC/connection states as reported in the serving-cell response.
const (
	StateSearch  = "SEARCH"  // searching, not camped
	StateLimSrv  = "LIMSRV"  // camped, limited service
	StateNoConn  = "NOCONN"  // camped, RRC idle
	StateConnect = "CONNECT" // RRC connected
)

// ServingCell is the camped cell as reported by AT+QENG="servingcell".
// Which fields are populated depends on Technology; the rest stay nil.
type ServingCell struct {
	Technology Technology
	// State is the RRC/connection state (SEARCH/LIMSRV/NOCONN/CONNECT).
	State string
	// Duplex is "FDD" or "TDD" (LTE, NR-SA).
	Duplex *string
	// MCC and MNC are kept as the raw digit strings: MNC "03" and "030"
	// name different networks, so the leading zeros matter.
	MCC *string
	MNC *string
	// CellID is the cell identity, hex as reported.
	CellID *string
	// PCI is the physical cell id (the PSC for WCDMA).
	PCI *int
	// Channel is the EARFCN (LTE), ARFCN (NR) or UARFCN (WCDMA).
	Channel *int
	Band    *int
	// Bandwidth is the DL bandwidth: a 0..5 code for LTE, MHz for NR.
	Bandwidth *int
	// TAC is the tracking area code (the LAC for WCDMA), hex as reported.
	TAC *string
	// SCS is the sub-carrier spacing in kHz (NR only).
	SCS *int
	// RSRP holds the RSCP for WCDMA, RSRQ holds the ECIO, matching how
	// the modem reuses those slots.
	RSRP   *int
	RSRQ   *int
	RSSI   *int
	SINR   *int
	CQI    *int
	SrxLev *int
	// Anchor is the LTE anchor cell in NR-NSA (EN-DC) mode. Nil when the
	// modem has not reported it yet, which is valid.
	Anchor *ServingCell
}

// NeighborCell is one entry of AT+QENG="neighbourcell". Entries keep the
// order the modem reported them in.
type NeighborCell struct {
	Technology Technology
	// Channel is the EARFCN/ARFCN/UARFCN of the neighbor.
	Channel *int
	// PCI is the physical cell id (PSC for WCDMA).
	PCI *int
	// RSRP holds the RSCP for WCDMA, RSRQ the ECNO.
	RSRP   *int
	RSRQ   *int
	RSSI   *int
	SINR   *int
	SrxLev *int
}

// AntennaReading is a per-receive-path measurement from AT+QRSRP,
// AT+QRSRQ or AT+QSINR. The modem reports four paths plus the system the
// reading belongs to; paths the hardware does not populate are nil.
type AntennaReading struct {
	Paths  [4]*int
	System string
}

// Primary returns the first reported path, the headline value.
func (r *AntennaReading) Primary() *int {
	if r == nil {
		return nil
	}
	for _, p := range r.Paths {
		if p != nil {
			return p
		}
	}
	return nil
}

// CSQReading is the classic AT+CSQ result. RSSI is the 0..31 code and
// BER the 0..7 code; the documented 99 "unknown" sentinel becomes nil.
type CSQReading struct {
	RSSI *int
	BER  *int
}

// SignalMetrics groups the independently sourced signal measurements.
// Each member has its own presence; one failed query does not touch the
// others.
type SignalMetrics struct {
	RSRP *AntennaReading
	RSRQ *AntennaReading
	SINR *AntennaReading
	CSQ  *CSQReading
}

// Domain is a NAS registration domain.
type Domain int

const (
	DomainCS  Domain = iota // circuit switched (AT+CREG?)
	DomainPS                // packet switched (AT+CGREG?)
	DomainEPS               // LTE (AT+CEREG?)
	Domain5GS               // 5G (AT+C5GREG?)
)

func (d Domain) String() string {
	switch d {
	case DomainCS:
		return "CS"
	case DomainPS:
		return "PS"
	case DomainEPS:
		return "EPS"
	case Domain5GS:
		return "5GS"
	default:
		return "unknown"
	}
}

// RegState is the decoded registration state of one domain.
type RegState int

const (
	RegNotRegistered RegState = iota
	RegHome
	RegSearching
	RegDenied
	RegUnknown
	RegRoaming
	RegSMSOnlyHome
	RegSMSOnlyRoaming
	RegEmergencyOnly
	RegCSFBNotPreferredHome
	RegCSFBNotPreferredRoaming
)

func (s RegState) String() string {
	switch s {
	case RegNotRegistered:
		return "not-registered"
	case RegHome:
		return "registered-home"
	case RegSearching:
		return "searching"
	case RegDenied:
		return "denied"
	case RegRoaming:
		return "registered-roaming"
	case RegSMSOnlyHome:
		return "sms-only-home"
	case RegSMSOnlyRoaming:
		return "sms-only-roaming"
	case RegEmergencyOnly:
		return "emergency-only"
	case RegCSFBNotPreferredHome:
		return "csfb-not-preferred-home"
	case RegCSFBNotPreferredRoaming:
		return "csfb-not-preferred-roaming"
	default:
		return "unknown"
	}
}

// RegistrationStatus is the decoded answer of one registration query.
// RawCode is always kept for traceability, including codes the table
// does not know (State is then RegUnknown).
type RegistrationStatus struct {
	Domain  Domain
	State   RegState
	RawCode int
	// TAC (LAC for CS/PS) and CellID, hex as reported, present only when
	// location reporting URCs are enabled.
	TAC    *string
	CellID *string
}

// DiagnosticReading is one named sensor value from AT+QTEMP.
type DiagnosticReading struct {
	Sensor string
	Value  int
	Unit   string
}

// OperatorInfo is the selected operator from AT+COPS?.
type OperatorInfo struct {
	// Name is the operator string in whatever format the modem is set to
	// (long alphanumeric or numeric MCCMNC).
	Name string
	// Act is the access technology code, when reported.
	Act *int
}

// CarrierComponent is one AT+QCAINFO carrier aggregation entry.
type CarrierComponent struct {
	// Role is "PCC" or "SCC".
	Role      string
	Channel   *int
	Bandwidth *int
	// Band is the verbose band name, e.g. "LTE BAND 3".
	Band  string
	State *int
	PCI   *int
}
