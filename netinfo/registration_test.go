package netinfo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/netmon/netinfo"
)

func TestParseRegistration(t *testing.T) {
	tests := []struct {
		name      string
		domain    netinfo.Domain
		raw       string
		wantState netinfo.RegState
		wantCode  int
	}{
		{"CS registered home", netinfo.DomainCS, "+CREG: 2,1\r\nOK", netinfo.RegHome, 1},
		{"PS searching", netinfo.DomainPS, "+CGREG: 2,2\r\nOK", netinfo.RegSearching, 2},
		{"EPS roaming", netinfo.DomainEPS, "+CEREG: 2,5\r\nOK", netinfo.RegRoaming, 5},
		{"5GS denied", netinfo.Domain5GS, "+C5GREG: 2,3\r\nOK", netinfo.RegDenied, 3},
		{"CS sms only", netinfo.DomainCS, "+CREG: 2,6\r\nOK", netinfo.RegSMSOnlyHome, 6},
		{"EPS emergency only", netinfo.DomainEPS, "+CEREG: 2,8\r\nOK", netinfo.RegEmergencyOnly, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := netinfo.ParseRegistration(tt.domain, tt.raw)
			require.NoError(t, err)
			require.NotNil(t, status)
			assert.Equal(t, tt.domain, status.Domain)
			assert.Equal(t, tt.wantState, status.State)
			assert.Equal(t, tt.wantCode, status.RawCode)
		})
	}
}

func TestParseRegistrationLocation(t *testing.T) {
	status, err := netinfo.ParseRegistration(netinfo.DomainEPS, `+CEREG: 2,1,"C473","2C30D05",7`+"\r\nOK")
	require.NoError(t, err)
	require.NotNil(t, status)

	assert.Equal(t, netinfo.RegHome, status.State)
	require.NotNil(t, status.TAC)
	assert.Equal(t, "C473", *status.TAC)
	require.NotNil(t, status.CellID)
	assert.Equal(t, "2C30D05", *status.CellID)
}

func TestParseRegistrationWithoutLocation(t *testing.T) {
	status, err := netinfo.ParseRegistration(netinfo.DomainCS, "+CREG: 0,1\r\nOK")
	require.NoError(t, err)
	assert.Nil(t, status.TAC)
	assert.Nil(t, status.CellID)
}

func TestParseRegistrationUnmappedCode(t *testing.T) {
	// Future firmware may add codes; they decode to RegUnknown but the
	// raw value survives for logs.
	status, err := netinfo.ParseRegistration(netinfo.DomainEPS, "+CEREG: 2,14\r\nOK")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, netinfo.RegUnknown, status.State)
	assert.Equal(t, 14, status.RawCode)
}

func TestParseRegistrationMalformed(t *testing.T) {
	tests := []struct {
		name   string
		domain netinfo.Domain
		raw    string
	}{
		{"missing line", netinfo.DomainCS, "OK"},
		{"wrong prefix for domain", netinfo.DomainPS, "+CREG: 2,1\r\nOK"},
		{"non-numeric code", netinfo.DomainCS, "+CREG: 2,x\r\nOK"},
		{"single field", netinfo.DomainCS, "+CREG: 2\r\nOK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := netinfo.ParseRegistration(tt.domain, tt.raw)
			assert.Nil(t, status)
			var parseErr *netinfo.ParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}
