package at

const (
	// Terminal Control
	CRLF = "\r\n"

	// Response Codes
	OK       = "OK"
	ERROR    = "ERROR"
	CmeError = "+CME ERROR:"

	// URCs (Unsolicited Result Codes)
	UrcIndication = "+QIND:"
	UrcCall       = "RING"
)

// Initialization commands issued once after the port is opened.
const (
	CmdAt            = "AT"
	CmdEchoOff       = "ATE0"
	CmdVerboseErrors = "AT+CMEE=2"

	// Registration URC enables. Older firmware rejects some of these,
	// which is tolerated during init.
	CmdEnableCregURC   = "AT+CREG=2"
	CmdEnableCgregURC  = "AT+CGREG=2"
	CmdEnableCeregURC  = "AT+CEREG=2"
	CmdEnableC5gregURC = "AT+C5GREG=2"
	CmdServingCellFmt  = `AT+QENG="servingcell",1`
)

// Poll-cycle query commands.
const (
	CmdServingCell   = `AT+QENG="servingcell"`
	CmdNeighbourCell = `AT+QENG="neighbourcell"`
	CmdRSRP          = "AT+QRSRP"
	CmdRSRQ          = "AT+QRSRQ"
	CmdSINR          = "AT+QSINR"
	CmdCSQ           = "AT+CSQ"
	CmdCregQuery     = "AT+CREG?"
	CmdCgregQuery    = "AT+CGREG?"
	CmdCeregQuery    = "AT+CEREG?"
	CmdC5gregQuery   = "AT+C5GREG?"
	CmdSimStatus     = "AT+CPIN?"
	CmdOperator      = "AT+COPS?"
	CmdAttachState   = "AT+CGATT?"
	CmdTemperature   = "AT+QTEMP"
	CmdCarrierAgg    = "AT+QCAINFO"
)

type ResponseType int

const (
	TypeFinal ResponseType = iota // OK, ERROR
	TypeURC                       // Asynchronous notifications
	TypeData                      // Intermediate command output (+QENG: ...)
)
