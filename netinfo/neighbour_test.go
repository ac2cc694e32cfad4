package netinfo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/netmon/netinfo"
)

func TestParseNeighbourCells(t *testing.T) {
	raw := `+QENG: "neighbourcell intra","LTE",1300,218,-10,-97,-65,11,38,6,9,2,12
+QENG: "neighbourcell inter","LTE",1849,123,-14,-105,-71,3,21,6,9,2
+QENG: "neighbourcell","WCDMA",10738,4,28,131,-85,-8,14
OK`

	cells, errs := netinfo.ParseNeighbourCells(raw)
	require.Empty(t, errs)
	require.Len(t, cells, 3)

	intra := cells[0]
	assert.Equal(t, netinfo.TechLTE, intra.Technology)
	require.NotNil(t, intra.Channel)
	assert.Equal(t, 1300, *intra.Channel)
	require.NotNil(t, intra.PCI)
	assert.Equal(t, 218, *intra.PCI)
	require.NotNil(t, intra.RSRQ)
	assert.Equal(t, -10, *intra.RSRQ)
	require.NotNil(t, intra.RSRP)
	assert.Equal(t, -97, *intra.RSRP)
	require.NotNil(t, intra.RSSI)
	assert.Equal(t, -65, *intra.RSSI)
	require.NotNil(t, intra.SINR)
	assert.Equal(t, 11, *intra.SINR)
	require.NotNil(t, intra.SrxLev)
	assert.Equal(t, 38, *intra.SrxLev)

	inter := cells[1]
	assert.Equal(t, netinfo.TechLTE, inter.Technology)
	require.NotNil(t, inter.Channel)
	assert.Equal(t, 1849, *inter.Channel)

	wcdma := cells[2]
	assert.Equal(t, netinfo.TechWCDMA, wcdma.Technology)
	require.NotNil(t, wcdma.Channel)
	assert.Equal(t, 10738, *wcdma.Channel)
	require.NotNil(t, wcdma.PCI)
	assert.Equal(t, 131, *wcdma.PCI)
	require.NotNil(t, wcdma.RSRP)
	assert.Equal(t, -85, *wcdma.RSRP)
	require.NotNil(t, wcdma.RSRQ)
	assert.Equal(t, -8, *wcdma.RSRQ)
}

func TestParseNeighbourCellsNR(t *testing.T) {
	raw := `+QENG: "neighbourcell","NR5G",640000,644,-98,-12,18
OK`
	cells, errs := netinfo.ParseNeighbourCells(raw)
	require.Empty(t, errs)
	require.Len(t, cells, 1)

	assert.Equal(t, netinfo.TechNR, cells[0].Technology)
	require.NotNil(t, cells[0].Channel)
	assert.Equal(t, 640000, *cells[0].Channel)
	require.NotNil(t, cells[0].RSRP)
	assert.Equal(t, -98, *cells[0].RSRP)
	require.NotNil(t, cells[0].SINR)
	assert.Equal(t, 18, *cells[0].SINR)
}

func TestParseNeighbourCellsMalformedLine(t *testing.T) {
	// One bad line must not hide its siblings.
	raw := `+QENG: "neighbourcell intra","LTE",abc,218,-10,-97,-65,11,38
+QENG: "neighbourcell inter","LTE",1849,123,-14,-105,-71,3,21
OK`
	cells, errs := netinfo.ParseNeighbourCells(raw)
	require.Len(t, errs, 1)
	var parseErr *netinfo.ParseError
	assert.ErrorAs(t, errs[0], &parseErr)

	require.Len(t, cells, 1)
	require.NotNil(t, cells[0].Channel)
	assert.Equal(t, 1849, *cells[0].Channel)
}

func TestParseNeighbourCellsUnknownTechnology(t *testing.T) {
	raw := `+QENG: "neighbourcell","CDMA2000",283,45,9
OK`
	cells, errs := netinfo.ParseNeighbourCells(raw)
	assert.Empty(t, errs, "unknown neighbour technologies are skipped, not failed")
	assert.Empty(t, cells)
}

func TestParseNeighbourCellsEmpty(t *testing.T) {
	cells, errs := netinfo.ParseNeighbourCells("OK")
	assert.Empty(t, errs)
	assert.Empty(t, cells)
}
